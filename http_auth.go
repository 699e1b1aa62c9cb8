package contacts

import (
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-router"
)

// RenderError writes err as the JSON error envelope, using the HTTP
// code carried by rich errors and 500 for everything else.
func RenderError(c router.Context, err error) error {
	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		code := richErr.Code
		if code == 0 {
			code = router.StatusInternalServerError
		}
		return c.JSON(code, map[string]any{
			"error": richErr.Message,
		})
	}

	if _, ok := err.(validation.Errors); ok {
		return c.JSON(router.StatusBadRequest, map[string]any{
			"error":  "validation failed",
			"fields": err,
		})
	}

	return c.JSON(router.StatusInternalServerError, map[string]any{
		"error": "internal server error",
	})
}

func RegisterAuthRoutes[T any](app router.Router[T], controller *AuthController) {
	app.Post("/auth/signup", controller.Signup).SetName("auth.signup")
	app.Post("/auth/login", controller.Login).SetName("auth.login")
	app.Post("/auth/refresh", controller.Refresh).SetName("auth.refresh")
	app.Get("/auth/verify", controller.VerifyEmail).SetName("auth.verify.get")
	app.Post("/auth/verify", controller.ResendVerification).SetName("auth.verify.post")
	app.Post("/auth/password/reset", controller.RequestPasswordReset).SetName("auth.pwd-reset.post")
	app.Post("/auth/password/reset/confirm", controller.ConfirmPasswordReset).SetName("auth.pwd-reset-confirm.post")
}

type AuthController struct {
	Logger   Logger
	Repo     RepositoryManager
	Tokens   TokenService
	Auther   *Auther
	Cache    *UserCache
	Notifier *Notifier
	Config   Config
}

type AuthControllerOption func(*AuthController) *AuthController

func NewAuthController(opts ...AuthControllerOption) *AuthController {
	c := &AuthController{
		Logger: defLogger{},
	}

	for _, opt := range opts {
		c = opt(c)
	}

	if c.Repo == nil {
		panic("Missing RepositoryManager in auth controller...")
	}

	if c.Auther == nil {
		panic("Missing Authenticator in auth controller...")
	}

	if c.Tokens == nil {
		panic("Missing TokenService in auth controller...")
	}

	return c
}

// SignupRequest payload
type SignupRequest struct {
	Email    string `form:"email" json:"email"`
	Password string `form:"password" json:"password"`
}

// Validate will run validation rules
func (r SignupRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		// bcrypt only hashes the first 72 bytes, so longer inputs are rejected up front
		validation.Field(&r.Password, validation.Required, validation.Length(8, 72)),
	)
}

// UserResponse is the public projection of a user record
type UserResponse struct {
	ID        int64  `json:"id"`
	Email     string `json:"email"`
	Verified  bool   `json:"is_verified"`
	AvatarURL string `json:"avatar_url,omitempty"`
	Role      string `json:"role"`
}

func NewUserResponse(user *User) UserResponse {
	return UserResponse{
		ID:        user.ID,
		Email:     user.Email,
		Verified:  user.Verified,
		AvatarURL: user.AvatarURL,
		Role:      user.Role,
	}
}

func (a *AuthController) Signup(ctx router.Context) error {
	payload := new(SignupRequest)

	if err := ctx.Bind(payload); err != nil {
		a.Logger.Error("signup parse payload", "error", err)
		return RenderError(ctx, goerrors.Wrap(err, goerrors.CategoryBadInput, "invalid request body").
			WithCode(router.StatusBadRequest))
	}

	if err := payload.Validate(); err != nil {
		return RenderError(ctx, err)
	}

	var res *RegisterUserResponse

	req := RegisterUserMessage{
		Email:    payload.Email,
		Password: payload.Password,
		OnResponse: func(resp *RegisterUserResponse) {
			res = resp
		},
	}

	registerUser := NewRegisterUserHandler(a.Repo, a.Tokens, a.Notifier, a.Config)
	if err := registerUser.Execute(ctx.Context(), req); err != nil {
		a.Logger.Error("signup execute", "error", err)
		return RenderError(ctx, err)
	}

	return ctx.JSON(router.StatusCreated, NewUserResponse(res.User))
}

// LoginRequest payload. The login form sends the email under username.
type LoginRequest struct {
	Username string `form:"username" json:"username"`
	Password string `form:"password" json:"password"`
}

// Validate will run validation rules
func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Username, validation.Required, is.Email),
		validation.Field(&r.Password, validation.Required),
	)
}

func (a *AuthController) Login(ctx router.Context) error {
	payload := new(LoginRequest)

	if err := ctx.Bind(payload); err != nil {
		a.Logger.Error("login parse payload", "error", err)
		return RenderError(ctx, goerrors.Wrap(err, goerrors.CategoryBadInput, "invalid request body").
			WithCode(router.StatusBadRequest))
	}

	if err := payload.Validate(); err != nil {
		return RenderError(ctx, err)
	}

	pair, err := a.Auther.Login(ctx.Context(), payload.Username, payload.Password)
	if err != nil {
		return RenderError(ctx, err)
	}

	return ctx.JSON(router.StatusOK, pair)
}

// RefreshRequest payload
type RefreshRequest struct {
	RefreshToken string `form:"refresh_token" json:"refresh_token"`
}

// Validate will run validation rules
func (r RefreshRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.RefreshToken, validation.Required),
	)
}

func (a *AuthController) Refresh(ctx router.Context) error {
	payload := new(RefreshRequest)

	if err := ctx.Bind(payload); err != nil {
		return RenderError(ctx, goerrors.Wrap(err, goerrors.CategoryBadInput, "invalid request body").
			WithCode(router.StatusBadRequest))
	}

	if err := payload.Validate(); err != nil {
		return RenderError(ctx, err)
	}

	pair, err := a.Auther.Refresh(ctx.Context(), payload.RefreshToken)
	if err != nil {
		return RenderError(ctx, err)
	}

	return ctx.JSON(router.StatusOK, pair)
}

func (a *AuthController) VerifyEmail(ctx router.Context) error {
	token := ctx.Query("token", "")
	if token == "" {
		return RenderError(ctx, goerrors.New("missing token", goerrors.CategoryBadInput).
			WithCode(router.StatusBadRequest))
	}

	var res *VerifyAccountResponse

	req := VerifyAccountMessage{
		Token: token,
		OnResponse: func(resp *VerifyAccountResponse) {
			res = resp
		},
	}

	verifyAccount := NewVerifyAccountHandler(a.Repo, a.Tokens, a.Cache)
	if err := verifyAccount.Execute(ctx.Context(), req); err != nil {
		a.Logger.Error("verify account execute", "error", err)
		return RenderError(ctx, err)
	}

	message := "Email confirmed"
	if res.AlreadyVerified {
		message = "Your email is already confirmed"
	}

	return ctx.JSON(router.StatusOK, map[string]any{
		"message": message,
	})
}

// ResendVerificationRequest payload
type ResendVerificationRequest struct {
	Email string `form:"email" json:"email"`
}

// Validate will run validation rules
func (r ResendVerificationRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
	)
}

func (a *AuthController) ResendVerification(ctx router.Context) error {
	payload := new(ResendVerificationRequest)

	if err := ctx.Bind(payload); err != nil {
		return RenderError(ctx, goerrors.Wrap(err, goerrors.CategoryBadInput, "invalid request body").
			WithCode(router.StatusBadRequest))
	}

	if err := payload.Validate(); err != nil {
		return RenderError(ctx, err)
	}

	req := ResendVerificationMessage{
		Email: payload.Email,
	}

	resend := NewResendVerificationHandler(a.Repo, a.Tokens, a.Notifier, a.Config)
	if err := resend.Execute(ctx.Context(), req); err != nil {
		a.Logger.Error("resend verification execute", "error", err)
		return RenderError(ctx, err)
	}

	return ctx.JSON(router.StatusOK, map[string]any{
		"message": "Check your email for confirmation",
	})
}

// PasswordResetRequest payload
type PasswordResetRequest struct {
	Email string `form:"email" json:"email"`
}

// Validate will run validation rules
func (r PasswordResetRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
	)
}

func (a *AuthController) RequestPasswordReset(ctx router.Context) error {
	payload := new(PasswordResetRequest)

	if err := ctx.Bind(payload); err != nil {
		return RenderError(ctx, goerrors.Wrap(err, goerrors.CategoryBadInput, "invalid request body").
			WithCode(router.StatusBadRequest))
	}

	if err := payload.Validate(); err != nil {
		return RenderError(ctx, err)
	}

	req := InitializePasswordResetMessage{
		Email: payload.Email,
	}

	initPwdReset := NewInitializePasswordResetHandler(a.Repo, a.Tokens, a.Notifier, a.Config)
	if err := initPwdReset.Execute(ctx.Context(), req); err != nil {
		a.Logger.Error("password reset init execute", "error", err)
		return RenderError(ctx, err)
	}

	return ctx.JSON(router.StatusOK, map[string]any{
		"message": "Check your email for the reset link",
	})
}

// PasswordResetConfirmRequest payload
type PasswordResetConfirmRequest struct {
	Token    string `form:"token" json:"token"`
	Password string `form:"password" json:"password"`
}

// Validate will run validation rules
func (r PasswordResetConfirmRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Token, validation.Required),
		validation.Field(&r.Password, validation.Required, validation.Length(8, 72)),
	)
}

func (a *AuthController) ConfirmPasswordReset(ctx router.Context) error {
	payload := new(PasswordResetConfirmRequest)

	if err := ctx.Bind(payload); err != nil {
		return RenderError(ctx, goerrors.Wrap(err, goerrors.CategoryBadInput, "invalid request body").
			WithCode(router.StatusBadRequest))
	}

	if err := payload.Validate(); err != nil {
		return RenderError(ctx, err)
	}

	req := FinalizePasswordResetMessage{
		Token:    payload.Token,
		Password: payload.Password,
	}

	finalizePwdReset := NewFinalizePasswordResetHandler(a.Repo, a.Tokens, a.Cache)
	if err := finalizePwdReset.Execute(ctx.Context(), req); err != nil {
		a.Logger.Error("password reset finalize execute", "error", err)
		return RenderError(ctx, err)
	}

	return ctx.JSON(router.StatusOK, map[string]any{
		"message": "Password updated",
	})
}
