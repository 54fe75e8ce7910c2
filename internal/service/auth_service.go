package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/Diyorbek0204/dern-support/internal/model"
	"github.com/Diyorbek0204/dern-support/internal/repository"
	"github.com/Diyorbek0204/dern-support/internal/utils"
)

// AuthConfig holds the token and hashing parameters of AuthService.
type AuthConfig struct {
	JWTSecret      string
	AccessTTLMin   int
	RefreshTTLDays int
	BcryptCost     int
}

// AuthService registers accounts and issues token pairs.
type AuthService struct {
	users  UserStore
	tokens TokenStore
	cfg    AuthConfig
}

func NewAuthService(users UserStore, tokens TokenStore, cfg AuthConfig) *AuthService {
	return &AuthService{users: users, tokens: tokens, cfg: cfg}
}

// Session is the result of a successful login or refresh.
type Session struct {
	User    *model.User
	Access  utils.AccessToken
	Refresh utils.RefreshToken
}

// ProfileInput carries the user-editable account fields. Empty strings
// mean "leave unchanged" on updates.
type ProfileInput struct {
	FirstName   string
	LastName    string
	Email       string
	Phone       string
	Password    string
	PersonType  string
	CompanyName string
}

// Register creates a self-service account. The role is always user.
func (s *AuthService) Register(ctx context.Context, in ProfileInput) (*model.User, error) {
	if strings.TrimSpace(in.Email) == "" || in.Password == "" {
		return nil, invalid("email and password are required")
	}
	u := &model.User{Role: model.RoleUser, PersonType: model.PersonIndividual, CreatedAt: time.Now().UTC()}
	if err := applyProfile(u, in); err != nil {
		return nil, err
	}
	hash, err := utils.HashPassword(in.Password, s.cfg.BcryptCost)
	if err != nil {
		return nil, err
	}
	u.PasswordHash = hash
	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// Login verifies credentials and issues a fresh token pair.
func (s *AuthService) Login(ctx context.Context, email, password string) (*Session, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return nil, invalid("email and password are required")
	}
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, unauthenticated("invalid email or password")
		}
		return nil, err
	}
	if !utils.VerifyPassword(u.PasswordHash, password) {
		return nil, unauthenticated("invalid email or password")
	}
	return s.issue(ctx, u)
}

// Refresh exchanges a valid refresh token for a new pair, rotating the
// refresh token. The role in the new access token is re-read from the
// user record, so role changes take effect here.
func (s *AuthService) Refresh(ctx context.Context, raw string) (*Session, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, unauthenticated("refresh token missing")
	}
	hash := utils.HashRefreshRaw(raw)
	userID, err := s.tokens.ValidateRefresh(ctx, hash)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, unauthenticated("invalid refresh token")
		}
		return nil, err
	}
	if err := s.tokens.RevokeByHash(ctx, hash); err != nil {
		return nil, err
	}
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, unauthenticated("invalid refresh token")
		}
		return nil, err
	}
	return s.issue(ctx, u)
}

// Logout revokes the presented refresh token. Unknown tokens are ignored.
func (s *AuthService) Logout(ctx context.Context, raw string) error {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	return s.tokens.RevokeByHash(ctx, utils.HashRefreshRaw(raw))
}

// LogoutAll revokes every refresh token of the caller.
func (s *AuthService) LogoutAll(ctx context.Context, caller Caller) error {
	if err := caller.require(); err != nil {
		return err
	}
	return s.tokens.RevokeAllForUser(ctx, caller.ID)
}

// Authenticate resolves a raw access token into a Caller.
func (s *AuthService) Authenticate(raw string) (Caller, error) {
	claims, err := utils.ParseAccessToken(s.cfg.JWTSecret, raw)
	if err != nil {
		return Caller{}, unauthenticated("Invalid or expired token")
	}
	return Caller{ID: claims.Subject, Email: claims.Email, Role: model.Role(claims.Role)}, nil
}

func (s *AuthService) issue(ctx context.Context, u *model.User) (*Session, error) {
	access, err := utils.NewAccessToken(s.cfg.JWTSecret, u.ID, u.Email, string(u.Role), s.cfg.AccessTTLMin)
	if err != nil {
		return nil, err
	}
	refresh, err := utils.NewRefreshToken(s.cfg.RefreshTTLDays)
	if err != nil {
		return nil, err
	}
	if err := s.tokens.StoreRefresh(ctx, u.ID, utils.HashRefreshRaw(refresh.Raw), refresh.Exp); err != nil {
		return nil, err
	}
	return &Session{User: u, Access: access, Refresh: refresh}, nil
}

// applyProfile copies the non-empty fields of in onto u. Password is
// handled by the caller because hashing needs the configured cost.
func applyProfile(u *model.User, in ProfileInput) error {
	if v := strings.TrimSpace(in.FirstName); v != "" {
		u.FirstName = v
	}
	if v := strings.TrimSpace(in.LastName); v != "" {
		u.LastName = v
	}
	if v := strings.ToLower(strings.TrimSpace(in.Email)); v != "" {
		if !strings.Contains(v, "@") {
			return invalid("email is not valid")
		}
		u.Email = v
	}
	if v := strings.TrimSpace(in.Phone); v != "" {
		u.Phone = v
	}
	if v := strings.ToLower(strings.TrimSpace(in.PersonType)); v != "" {
		pt := model.PersonType(v)
		if pt != model.PersonIndividual && pt != model.PersonLegal {
			return invalid("person_type must be individual or legal")
		}
		u.PersonType = pt
	}
	if v := strings.TrimSpace(in.CompanyName); v != "" {
		u.CompanyName = &v
	}
	if u.PersonType != model.PersonLegal {
		u.CompanyName = nil
	}
	return nil
}
