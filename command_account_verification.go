package contacts

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/uptrace/bun"
)

type VerifyAccountMessage struct {
	Token      string `json:"token"`
	OnResponse func(resp *VerifyAccountResponse)
}

func (e VerifyAccountMessage) Type() string { return "user.verify_account" }

type VerifyAccountResponse struct {
	User            *User
	AlreadyVerified bool
	Success         bool
}

type VerifyAccountHandler struct {
	repo   RepositoryManager
	tokens TokenService
	cache  *UserCache
}

func NewVerifyAccountHandler(repo RepositoryManager, tokens TokenService, cache *UserCache) *VerifyAccountHandler {
	return &VerifyAccountHandler{
		repo:   repo,
		tokens: tokens,
		cache:  cache,
	}
}

func (h *VerifyAccountHandler) Execute(ctx context.Context, event VerifyAccountMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during account verification",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *VerifyAccountHandler) execute(ctx context.Context, event VerifyAccountMessage) error {
	resp := &VerifyAccountResponse{}

	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	claims, err := h.tokens.Validate(event.Token)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryBadInput, "invalid verification token").
			WithCode(goerrors.CodeBadRequest)
	}

	if !claims.HasScope(ScopeVerification) {
		return goerrors.New("token is not a verification token", goerrors.CategoryBadInput).
			WithCode(goerrors.CodeBadRequest).
			WithTextCode("INVALID_TOKEN_SCOPE")
	}

	var user *User

	err = h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		user, err = h.repo.Users().GetByEmailTx(ctx, tx, claims.Email())
		if err != nil {
			return err
		}

		if user.Verified {
			resp.AlreadyVerified = true
			return nil
		}

		return h.repo.Users().MarkVerifiedTx(ctx, tx, user)
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "account verification transaction failed")
	}

	h.cache.Store(ctx, user)

	resp.User = user
	resp.Success = true
	if event.OnResponse != nil {
		event.OnResponse(resp)
	}

	return nil
}

type ResendVerificationMessage struct {
	Email      string `json:"email"`
	OnResponse func(resp *ResendVerificationResponse)
}

func (e ResendVerificationMessage) Type() string { return "user.resend_verification" }

type ResendVerificationResponse struct {
	Success bool
}

type ResendVerificationHandler struct {
	repo     RepositoryManager
	tokens   TokenService
	notifier *Notifier
	cfg      Config
}

func NewResendVerificationHandler(repo RepositoryManager, tokens TokenService, notifier *Notifier, cfg Config) *ResendVerificationHandler {
	return &ResendVerificationHandler{
		repo:     repo,
		tokens:   tokens,
		notifier: notifier,
		cfg:      cfg,
	}
}

func (h *ResendVerificationHandler) Execute(ctx context.Context, event ResendVerificationMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled while resending verification",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *ResendVerificationHandler) execute(ctx context.Context, event ResendVerificationMessage) error {
	resp := &ResendVerificationResponse{}

	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	user, err := h.repo.Users().GetByEmail(ctx, event.Email)
	if err != nil {
		return err
	}

	// A fresh token goes out even for verified accounts; the verify
	// flow is idempotent so a stray confirmation is harmless.
	token, err := h.tokens.Issue(user.Email, ScopeVerification, h.cfg.GetVerificationTokenTTL())
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to issue verification token")
	}

	h.notifier.SendVerificationEmail(user.Email, token)

	resp.Success = true
	if event.OnResponse != nil {
		event.OnResponse(resp)
	}

	return nil
}
