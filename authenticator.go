package contacts

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

// TokenPair carries the access/refresh pair returned by login and refresh
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}

type Auther struct {
	tokens     TokenService
	repo       RepositoryManager
	cache      *UserCache
	accessTTL  time.Duration
	refreshTTL time.Duration
	logger     Logger
}

// NewAuthenticator returns a new Authenticator
func NewAuthenticator(tokens TokenService, repo RepositoryManager, cache *UserCache, opts Config) *Auther {
	return &Auther{
		tokens:     tokens,
		repo:       repo,
		cache:      cache,
		accessTTL:  opts.GetAccessTokenTTL(),
		refreshTTL: opts.GetRefreshTokenTTL(),
		logger:     defLogger{},
	}
}

func (s *Auther) WithLogger(logger Logger) *Auther {
	s.logger = logger
	return s
}

// TokenService returns the TokenService instance used by this Authenticator
func (s *Auther) TokenService() TokenService {
	return s.tokens
}

// Login checks the credentials and, for verified users, issues a fresh
// token pair. Unknown emails and bad passwords come back as the same
// unauthorized error so callers cannot probe for accounts.
func (s *Auther) Login(ctx context.Context, email, password string) (*TokenPair, error) {
	user, err := s.repo.Users().GetByEmail(ctx, email)
	if err != nil {
		if IsRecordNotFound(err) {
			s.logger.Error("Login identity lookup failed", "email", email)
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := ComparePasswordAndHash(password, user.PasswordHash); err != nil {
		s.logger.Error("Login password mismatch", "email", email)
		return nil, ErrInvalidCredentials
	}

	if !user.Verified {
		return nil, ErrEmailNotVerified
	}

	pair, err := s.issuePair(user.Email)
	if err != nil {
		return nil, err
	}

	s.cache.Store(ctx, user)

	return pair, nil
}

// Refresh exchanges a valid refresh token for a new pair.
func (s *Auther) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := s.tokens.Validate(refreshToken)
	if err != nil {
		return nil, err
	}

	if !claims.HasScope(ScopeRefresh) {
		return nil, ErrInvalidScope.Clone().WithMetadata(map[string]any{
			"scope": string(claims.TokenScope()),
		})
	}

	email := claims.Email()
	if email == "" {
		return nil, goerrors.New("token has no subject", goerrors.CategoryAuth).
			WithCode(goerrors.CodeUnauthorized)
	}

	user, err := s.repo.Users().GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	pair, err := s.issuePair(user.Email)
	if err != nil {
		return nil, err
	}

	s.cache.Store(ctx, user)

	return pair, nil
}

func (s *Auther) issuePair(email string) (*TokenPair, error) {
	access, err := s.tokens.Issue(email, ScopeAccess, s.accessTTL)
	if err != nil {
		return nil, err
	}

	refresh, err := s.tokens.Issue(email, ScopeRefresh, s.refreshTTL)
	if err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "bearer",
	}, nil
}
