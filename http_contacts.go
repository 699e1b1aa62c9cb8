package contacts

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-router"
	"github.com/nyaruka/phonenumbers"
)

func RegisterContactRoutes[T any](app router.Router[T], controller *ContactController, resolver *SessionResolver) {
	guard := RequireAuth(resolver)

	app.Post("/contacts", controller.Create, guard).SetName("contacts.create")
	app.Get("/contacts", controller.List, guard).SetName("contacts.list")
	app.Get("/contacts/birthdays", controller.UpcomingBirthdays, guard).SetName("contacts.birthdays")
	app.Get("/contacts/:id", controller.Get, guard).SetName("contacts.get")
	app.Put("/contacts/:id", controller.Update, guard).SetName("contacts.update")
	app.Delete("/contacts/:id", controller.Delete, guard).SetName("contacts.delete")
}

type ContactController struct {
	Logger Logger
	Repo   RepositoryManager
}

func NewContactController(repo RepositoryManager) *ContactController {
	return &ContactController{
		Logger: defLogger{},
		Repo:   repo,
	}
}

func (c *ContactController) WithLogger(logger Logger) *ContactController {
	c.Logger = logger
	return c
}

// ContactPayload is shared by create and update
type ContactPayload struct {
	FirstName string     `form:"first_name" json:"first_name"`
	LastName  string     `form:"last_name" json:"last_name"`
	Email     string     `form:"email" json:"email"`
	Phone     string     `form:"phone" json:"phone"`
	Birthday  *time.Time `form:"birthday" json:"birthday"`
	Extra     string     `form:"extra" json:"extra"`
}

// Validate will run validation rules
func (r ContactPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.FirstName, validation.Required, validation.Length(1, 100)),
		validation.Field(&r.LastName, validation.Required, validation.Length(1, 100)),
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Phone, validation.Required, validation.By(validatePhone)),
		validation.Field(&r.Extra, validation.Length(0, 500)),
	)
}

func validatePhone(value any) error {
	raw, _ := value.(string)
	if raw == "" {
		return nil
	}

	num, err := phonenumbers.Parse(raw, "US")
	if err != nil {
		return err
	}

	if !phonenumbers.IsValidNumber(num) {
		return goerrors.New("invalid phone number", goerrors.CategoryValidation)
	}

	return nil
}

// ContactResponse is the public projection of a contact record
type ContactResponse struct {
	ID        int64      `json:"id"`
	FirstName string     `json:"first_name"`
	LastName  string     `json:"last_name"`
	Email     string     `json:"email"`
	Phone     string     `json:"phone"`
	Birthday  *time.Time `json:"birthday,omitempty"`
	Extra     string     `json:"extra,omitempty"`
}

func NewContactResponse(contact *Contact) ContactResponse {
	return ContactResponse{
		ID:        contact.ID,
		FirstName: contact.FirstName,
		LastName:  contact.LastName,
		Email:     contact.Email,
		Phone:     contact.Phone,
		Birthday:  contact.Birthday,
		Extra:     contact.Extra,
	}
}

func newContactListResponse(contacts []*Contact) []ContactResponse {
	out := make([]ContactResponse, 0, len(contacts))
	for _, contact := range contacts {
		out = append(out, NewContactResponse(contact))
	}
	return out
}

func (c *ContactController) Create(ctx router.Context) error {
	user, ok := UserFromRouter(ctx)
	if !ok {
		return RenderError(ctx, goerrors.New("missing authenticated user", goerrors.CategoryAuth).
			WithCode(router.StatusUnauthorized))
	}

	payload := new(ContactPayload)
	if err := ctx.Bind(payload); err != nil {
		return RenderError(ctx, goerrors.Wrap(err, goerrors.CategoryBadInput, "invalid request body").
			WithCode(router.StatusBadRequest))
	}

	if err := payload.Validate(); err != nil {
		return RenderError(ctx, err)
	}

	contact := &Contact{
		OwnerID:   user.ID,
		FirstName: payload.FirstName,
		LastName:  payload.LastName,
		Email:     payload.Email,
		Phone:     payload.Phone,
		Birthday:  payload.Birthday,
		Extra:     payload.Extra,
	}

	contact, err := c.Repo.Contacts().Create(ctx.Context(), contact)
	if err != nil {
		c.Logger.Error("contact create", "error", err, "owner", user.ID)
		return RenderError(ctx, err)
	}

	return ctx.JSON(router.StatusCreated, NewContactResponse(contact))
}

func (c *ContactController) List(ctx router.Context) error {
	user, ok := UserFromRouter(ctx)
	if !ok {
		return RenderError(ctx, goerrors.New("missing authenticated user", goerrors.CategoryAuth).
			WithCode(router.StatusUnauthorized))
	}

	query := ContactQuery{
		Search: ctx.Query("q", ""),
		Skip:   ctx.QueryInt("skip", 0),
		Limit:  ctx.QueryInt("limit", 100),
	}

	contacts, err := c.Repo.Contacts().List(ctx.Context(), user.ID, query)
	if err != nil {
		c.Logger.Error("contact list", "error", err, "owner", user.ID)
		return RenderError(ctx, err)
	}

	return ctx.JSON(router.StatusOK, newContactListResponse(contacts))
}

func (c *ContactController) Get(ctx router.Context) error {
	user, ok := UserFromRouter(ctx)
	if !ok {
		return RenderError(ctx, goerrors.New("missing authenticated user", goerrors.CategoryAuth).
			WithCode(router.StatusUnauthorized))
	}

	id := ctx.ParamsInt("id", 0)
	if id <= 0 {
		return RenderError(ctx, goerrors.New("invalid contact id", goerrors.CategoryBadInput).
			WithCode(router.StatusBadRequest))
	}

	contact, err := c.Repo.Contacts().GetByID(ctx.Context(), user.ID, int64(id))
	if err != nil {
		return RenderError(ctx, err)
	}

	return ctx.JSON(router.StatusOK, NewContactResponse(contact))
}

func (c *ContactController) Update(ctx router.Context) error {
	user, ok := UserFromRouter(ctx)
	if !ok {
		return RenderError(ctx, goerrors.New("missing authenticated user", goerrors.CategoryAuth).
			WithCode(router.StatusUnauthorized))
	}

	id := ctx.ParamsInt("id", 0)
	if id <= 0 {
		return RenderError(ctx, goerrors.New("invalid contact id", goerrors.CategoryBadInput).
			WithCode(router.StatusBadRequest))
	}

	payload := new(ContactPayload)
	if err := ctx.Bind(payload); err != nil {
		return RenderError(ctx, goerrors.Wrap(err, goerrors.CategoryBadInput, "invalid request body").
			WithCode(router.StatusBadRequest))
	}

	if err := payload.Validate(); err != nil {
		return RenderError(ctx, err)
	}

	contact, err := c.Repo.Contacts().GetByID(ctx.Context(), user.ID, int64(id))
	if err != nil {
		return RenderError(ctx, err)
	}

	contact.FirstName = payload.FirstName
	contact.LastName = payload.LastName
	contact.Email = payload.Email
	contact.Phone = payload.Phone
	contact.Birthday = payload.Birthday
	contact.Extra = payload.Extra

	contact, err = c.Repo.Contacts().Update(ctx.Context(), contact)
	if err != nil {
		c.Logger.Error("contact update", "error", err, "owner", user.ID, "id", id)
		return RenderError(ctx, err)
	}

	return ctx.JSON(router.StatusOK, NewContactResponse(contact))
}

func (c *ContactController) Delete(ctx router.Context) error {
	user, ok := UserFromRouter(ctx)
	if !ok {
		return RenderError(ctx, goerrors.New("missing authenticated user", goerrors.CategoryAuth).
			WithCode(router.StatusUnauthorized))
	}

	id := ctx.ParamsInt("id", 0)
	if id <= 0 {
		return RenderError(ctx, goerrors.New("invalid contact id", goerrors.CategoryBadInput).
			WithCode(router.StatusBadRequest))
	}

	contact, err := c.Repo.Contacts().GetByID(ctx.Context(), user.ID, int64(id))
	if err != nil {
		return RenderError(ctx, err)
	}

	if err := c.Repo.Contacts().Delete(ctx.Context(), contact); err != nil {
		c.Logger.Error("contact delete", "error", err, "owner", user.ID, "id", id)
		return RenderError(ctx, err)
	}

	return ctx.NoContent(router.StatusNoContent)
}

func (c *ContactController) UpcomingBirthdays(ctx router.Context) error {
	user, ok := UserFromRouter(ctx)
	if !ok {
		return RenderError(ctx, goerrors.New("missing authenticated user", goerrors.CategoryAuth).
			WithCode(router.StatusUnauthorized))
	}

	days := ctx.QueryInt("days", 7)

	contacts, err := c.Repo.Contacts().ListWithBirthdays(ctx.Context(), user.ID)
	if err != nil {
		c.Logger.Error("contact birthdays", "error", err, "owner", user.ID)
		return RenderError(ctx, err)
	}

	upcoming := UpcomingBirthdays(contacts, time.Now(), days)

	return ctx.JSON(router.StatusOK, newContactListResponse(upcoming))
}
