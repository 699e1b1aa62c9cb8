package contacts

import (
	"context"
	"strings"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-router"
)

var userCtxKey = &contextKey{"user"}

type contextKey struct {
	name string
}

// WithContext sets the User in the given context
func WithContext(r context.Context, user *User) context.Context {
	return context.WithValue(r, userCtxKey, user)
}

// FromContext finds the user from the context.
func FromContext(ctx context.Context) (*User, bool) {
	raw, ok := ctx.Value(userCtxKey).(*User)
	return raw, ok
}

// SessionResolver maps a bearer token to the user it belongs to,
// consulting the cache before the database.
type SessionResolver struct {
	tokens TokenService
	cache  *UserCache
	repo   RepositoryManager
	logger Logger
}

func NewSessionResolver(tokens TokenService, cache *UserCache, repo RepositoryManager) *SessionResolver {
	return &SessionResolver{
		tokens: tokens,
		cache:  cache,
		repo:   repo,
		logger: defLogger{},
	}
}

func (s *SessionResolver) WithLogger(logger Logger) *SessionResolver {
	s.logger = logger
	return s
}

// Resolve validates tokenString as an access token and returns the
// owning user. Any failure along the way comes back as an auth error.
func (s *SessionResolver) Resolve(ctx context.Context, tokenString string) (*User, error) {
	claims, err := s.tokens.Validate(tokenString)
	if err != nil {
		return nil, err
	}

	if !claims.HasScope(ScopeAccess) {
		return nil, ErrInvalidScope.Clone().WithMetadata(map[string]any{
			"scope": string(claims.TokenScope()),
		})
	}

	email := claims.Email()
	if email == "" {
		return nil, goerrors.New("token has no subject", goerrors.CategoryAuth).
			WithCode(goerrors.CodeUnauthorized)
	}

	if user, ok := s.cache.Get(ctx, email); ok {
		return user, nil
	}

	user, err := s.repo.Users().GetByEmail(ctx, email)
	if err != nil {
		if IsRecordNotFound(err) {
			return nil, goerrors.Wrap(err, goerrors.CategoryAuth, "unknown token subject").
				WithCode(goerrors.CodeUnauthorized)
		}
		return nil, err
	}

	s.cache.Store(ctx, user)

	return user, nil
}

// RequireAuth guards a route behind a valid bearer access token. The
// resolved user is stored in Locals under "user" and in the request
// context for downstream handlers.
func RequireAuth(resolver *SessionResolver) router.MiddlewareFunc {
	return func(next router.HandlerFunc) router.HandlerFunc {
		return func(c router.Context) error {
			token, err := bearerToken(c)
			if err != nil {
				return err
			}

			user, err := resolver.Resolve(c.Context(), token)
			if err != nil {
				return err
			}

			c.Locals("user", user)
			c.SetContext(WithContext(c.Context(), user))

			return next(c)
		}
	}
}

// RequireAdmin rejects non admin users. It expects RequireAuth to have
// run earlier in the chain.
func RequireAdmin() router.MiddlewareFunc {
	return func(next router.HandlerFunc) router.HandlerFunc {
		return func(c router.Context) error {
			user, ok := UserFromRouter(c)
			if !ok {
				return goerrors.New("missing authenticated user", goerrors.CategoryAuth).
					WithCode(goerrors.CodeUnauthorized)
			}

			if !user.IsAdmin() {
				return goerrors.New("admin role required", goerrors.CategoryAuth).
					WithCode(goerrors.CodeForbidden).
					WithTextCode("ADMIN_REQUIRED")
			}

			return next(c)
		}
	}
}

// UserFromRouter extracts the authenticated user from the router context
func UserFromRouter(c router.Context) (*User, bool) {
	raw := c.Locals("user")
	if raw == nil {
		return nil, false
	}
	user, ok := raw.(*User)
	return user, ok
}

func bearerToken(c router.Context) (string, error) {
	header := c.Header("Authorization")
	if header == "" {
		return "", goerrors.New("missing authorization header", goerrors.CategoryAuth).
			WithCode(goerrors.CodeUnauthorized)
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", goerrors.New("malformed authorization header", goerrors.CategoryAuth).
			WithCode(goerrors.CodeUnauthorized)
	}

	return strings.TrimSpace(parts[1]), nil
}
