// AngelaMos | 2026
// service.go

package auth

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/wemanage-app/backend/internal/core"
)

const resetTokenTTL = 10 * time.Minute

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailExists        = errors.New("email already exists")
	ErrInvalidResetToken  = errors.New("reset token invalid or expired")

	// ErrMissingProviderEmail fires when the identity provider returns
	// a profile without an email; the requested scope should make this
	// impossible, so it is treated as a provider-side failure.
	ErrMissingProviderEmail = errors.New("provider profile has no email")
)

// Account is the auth-facing view of a user record.
type Account struct {
	ID           int64
	Email        string
	Name         string
	PasswordHash *string
	Provider     *string
	ProviderID   *string
	Role         string
	AvatarURL    *string
}

type UserProvider interface {
	GetByID(ctx context.Context, id int64) (*Account, error)
	GetByEmail(ctx context.Context, email string) (*Account, error)
	GetByProvider(
		ctx context.Context,
		provider, providerID string,
	) (*Account, error)
	CreateLocal(
		ctx context.Context,
		email, passwordHash, name, avatarURL string,
	) (*Account, error)
	CreateFederated(
		ctx context.Context,
		email, name, provider, providerID, avatarURL string,
	) (*Account, error)
	LinkProvider(
		ctx context.Context,
		id int64,
		provider, providerID, name, avatarURL string,
	) (*Account, error)
	SetResetToken(
		ctx context.Context,
		id int64,
		tokenHash string,
		expires time.Time,
	) error
	ClearResetToken(ctx context.Context, id int64) error
	GetByResetToken(ctx context.Context, tokenHash string) (*Account, error)
	UpdatePasswordClearReset(
		ctx context.Context,
		id int64,
		passwordHash string,
	) error
}

type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

type Service struct {
	users       UserProvider
	tokens      *TokenManager
	mailer      Mailer
	frontendURL string
}

func NewService(
	users UserProvider,
	tokens *TokenManager,
	mailer Mailer,
	frontendURL string,
) *Service {
	return &Service{
		users:       users,
		tokens:      tokens,
		mailer:      mailer,
		frontendURL: frontendURL,
	}
}

func (s *Service) Register(
	ctx context.Context,
	req RegisterRequest,
) (*AuthResponse, error) {
	passwordHash, err := core.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	account, err := s.users.CreateLocal(
		ctx,
		req.Email,
		passwordHash,
		req.Name,
		placeholderAvatar(req.Email),
	)
	if err != nil {
		if errors.Is(err, core.ErrDuplicateKey) {
			return nil, ErrEmailExists
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	token, err := s.tokens.Issue(account.ID)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	return toAuthResponse(account, token), nil
}

// Login fails identically for an unknown email, a wrong password and a
// federated-only account, and burns the same hashing work in each case.
func (s *Service) Login(
	ctx context.Context,
	req LoginRequest,
) (*AuthResponse, error) {
	account, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.VerifyPasswordTimingSafe(req.Password, nil)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	if !core.VerifyPasswordTimingSafe(req.Password, account.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(account.ID)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	return toAuthResponse(account, token), nil
}

func (s *Service) GetCurrentUser(
	ctx context.Context,
	userID int64,
) (*UserResponse, error) {
	account, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	return toUserResponse(account), nil
}

// ForgotPassword runs the reset issuance. An unknown email is a silent
// no-op so the response cannot be used to enumerate accounts. If the
// email cannot be delivered, the stored token is cleared again: the
// user must never hold a live token they were never told about.
func (s *Service) ForgotPassword(ctx context.Context, email string) error {
	account, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("get user: %w", err)
	}

	token, err := core.GenerateResetToken()
	if err != nil {
		return fmt.Errorf("generate reset token: %w", err)
	}

	expires := time.Now().Add(resetTokenTTL)
	if err := s.users.SetResetToken(ctx, account.ID, core.HashToken(token), expires); err != nil {
		return fmt.Errorf("store reset token: %w", err)
	}

	resetURL := fmt.Sprintf("%s/reset-password/%s", s.frontendURL, token)
	body := fmt.Sprintf(
		"You requested a password reset.\n"+
			"Click the following link (valid for 10 minutes):\n%s\n"+
			"If you did not request this, ignore this email.",
		resetURL,
	)

	if err := s.mailer.Send(ctx, account.Email, "Your WeManage Password Reset Link", body); err != nil {
		//nolint:errcheck // reverting issuance; the send failure is what gets reported
		_ = s.users.ClearResetToken(ctx, account.ID)
		return fmt.Errorf("send reset email: %w", err)
	}

	return nil
}

// ResetPassword consumes a token. Hash and expiry are matched in a
// single lookup, so the caller cannot tell a wrong token from a stale
// one. The password write clears the token fields in the same
// statement, making the token single-use.
func (s *Service) ResetPassword(
	ctx context.Context,
	token, newPassword string,
) error {
	account, err := s.users.GetByResetToken(ctx, core.HashToken(token))
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return ErrInvalidResetToken
		}
		return fmt.Errorf("lookup reset token: %w", err)
	}

	passwordHash, err := core.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	if err := s.users.UpdatePasswordClearReset(ctx, account.ID, passwordHash); err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	return nil
}

// ReconcileGoogleProfile maps a provider profile onto exactly one local
// account. Resolution order is fixed: provider linkage, then email
// (one-time merge into a local account), then creation. Concurrent
// first-time logins can race on the unique constraints; a duplicate-key
// failure is retried as a lookup rather than surfaced.
func (s *Service) ReconcileGoogleProfile(
	ctx context.Context,
	profile *GoogleProfile,
) (*Account, error) {
	account, err := s.users.GetByProvider(
		ctx,
		ProviderGoogle,
		profile.ProviderUserID,
	)
	if err == nil {
		return account, nil
	}
	if !errors.Is(err, core.ErrNotFound) {
		return nil, fmt.Errorf("lookup by provider: %w", err)
	}

	if profile.Email == "" {
		return nil, ErrMissingProviderEmail
	}

	account, err = s.users.GetByEmail(ctx, profile.Email)
	if err == nil {
		return s.linkAccount(ctx, account, profile)
	}
	if !errors.Is(err, core.ErrNotFound) {
		return nil, fmt.Errorf("lookup by email: %w", err)
	}

	return s.createFederatedAccount(ctx, profile)
}

// linkAccount absorbs the federated identity into an existing local
// account. Name and avatar are backfilled only where the local record
// is empty; user-set values always win.
func (s *Service) linkAccount(
	ctx context.Context,
	account *Account,
	profile *GoogleProfile,
) (*Account, error) {
	name := account.Name
	if name == "" {
		name = profile.Name
		if name == "" {
			name = emailLocalPart(profile.Email)
		}
	}

	avatarURL := ""
	if account.AvatarURL != nil {
		avatarURL = *account.AvatarURL
	}
	if avatarURL == "" {
		avatarURL = profile.AvatarURL
		if avatarURL == "" {
			avatarURL = placeholderAvatar(profile.Email)
		}
	}

	linked, err := s.users.LinkProvider(
		ctx,
		account.ID,
		ProviderGoogle,
		profile.ProviderUserID,
		name,
		avatarURL,
	)
	if err != nil {
		if errors.Is(err, core.ErrDuplicateKey) {
			return s.retryAsLookup(ctx, profile)
		}
		return nil, fmt.Errorf("link provider: %w", err)
	}

	return linked, nil
}

func (s *Service) createFederatedAccount(
	ctx context.Context,
	profile *GoogleProfile,
) (*Account, error) {
	name := profile.Name
	if name == "" {
		name = emailLocalPart(profile.Email)
	}

	avatarURL := profile.AvatarURL
	if avatarURL == "" {
		avatarURL = placeholderAvatar(profile.Email)
	}

	account, err := s.users.CreateFederated(
		ctx,
		profile.Email,
		name,
		ProviderGoogle,
		profile.ProviderUserID,
		avatarURL,
	)
	if err != nil {
		if errors.Is(err, core.ErrDuplicateKey) {
			return s.retryAsLookup(ctx, profile)
		}
		return nil, fmt.Errorf("create federated user: %w", err)
	}

	return account, nil
}

// retryAsLookup resolves the account a concurrent request just created
// or linked ahead of us.
func (s *Service) retryAsLookup(
	ctx context.Context,
	profile *GoogleProfile,
) (*Account, error) {
	account, err := s.users.GetByProvider(
		ctx,
		ProviderGoogle,
		profile.ProviderUserID,
	)
	if err == nil {
		return account, nil
	}
	if !errors.Is(err, core.ErrNotFound) {
		return nil, fmt.Errorf("retry lookup by provider: %w", err)
	}

	account, err = s.users.GetByEmail(ctx, profile.Email)
	if err != nil {
		return nil, fmt.Errorf("retry lookup by email: %w", err)
	}

	return account, nil
}

// IssueToken mints a bearer token for an already-reconciled account,
// used at the end of the federated callback.
func (s *Service) IssueToken(account *Account) (string, error) {
	return s.tokens.Issue(account.ID)
}

func placeholderAvatar(email string) string {
	return "https://api.dicebear.com/8.x/bottts-neutral/svg?seed=" +
		url.QueryEscape(email)
}

func emailLocalPart(email string) string {
	if idx := strings.Index(email, "@"); idx > 0 {
		return email[:idx]
	}
	return email
}
