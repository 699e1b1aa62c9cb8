package contacts

import (
	"fmt"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-router"
)

func RegisterUserRoutes[T any](app router.Router[T], controller *UserController, resolver *SessionResolver) {
	app.Get("/users/me", controller.Me, RequireAuth(resolver)).SetName("users.me")
	app.Put("/users/avatar", controller.UpdateAvatar, RequireAuth(resolver), RequireAdmin()).
		SetName("users.avatar")
}

type UserController struct {
	Logger  Logger
	Repo    RepositoryManager
	Cache   *UserCache
	Avatars AvatarStore
}

func NewUserController(repo RepositoryManager, cache *UserCache, avatars AvatarStore) *UserController {
	return &UserController{
		Logger:  defLogger{},
		Repo:    repo,
		Cache:   cache,
		Avatars: avatars,
	}
}

func (u *UserController) WithLogger(logger Logger) *UserController {
	u.Logger = logger
	return u
}

func (u *UserController) Me(ctx router.Context) error {
	user, ok := UserFromRouter(ctx)
	if !ok {
		return RenderError(ctx, goerrors.New("missing authenticated user", goerrors.CategoryAuth).
			WithCode(router.StatusUnauthorized))
	}

	return ctx.JSON(router.StatusOK, NewUserResponse(user))
}

// AvatarUpdateRequest carries the new avatar image
type AvatarUpdateRequest struct {
	ContentType string `json:"content_type"`
	Data        []byte `json:"data"`
}

func (u *UserController) UpdateAvatar(ctx router.Context) error {
	user, ok := UserFromRouter(ctx)
	if !ok {
		return RenderError(ctx, goerrors.New("missing authenticated user", goerrors.CategoryAuth).
			WithCode(router.StatusUnauthorized))
	}

	payload := new(AvatarUpdateRequest)
	if err := ctx.Bind(payload); err != nil {
		return RenderError(ctx, goerrors.Wrap(err, goerrors.CategoryBadInput, "invalid request body").
			WithCode(router.StatusBadRequest))
	}

	if len(payload.Data) == 0 {
		return RenderError(ctx, goerrors.New("missing avatar data", goerrors.CategoryBadInput).
			WithCode(router.StatusBadRequest))
	}

	contentType := payload.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	filename := fmt.Sprintf("%d-%d", user.ID, time.Now().UnixNano())

	url, err := u.Avatars.Put(ctx.Context(), filename, contentType, payload.Data)
	if err != nil {
		u.Logger.Error("avatar upload", "error", err, "user", user.ID)
		return RenderError(ctx, err)
	}

	if err := u.Repo.Users().SetAvatar(ctx.Context(), user, url); err != nil {
		u.Logger.Error("avatar persist", "error", err, "user", user.ID)
		return RenderError(ctx, err)
	}

	u.Cache.Store(ctx.Context(), user)

	return ctx.JSON(router.StatusOK, NewUserResponse(user))
}
