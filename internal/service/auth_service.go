package service

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/iliyamo/incident-report-tracker/internal/model"
	"github.com/iliyamo/incident-report-tracker/internal/repository"
	"github.com/iliyamo/incident-report-tracker/internal/utils"
)

// UserStore is the storage behind authentication.
type UserStore interface {
	Create(ctx context.Context, u *model.User, password string, cost int) error
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByID(ctx context.Context, id int64) (*model.User, error)
	UpdatePushToken(ctx context.Context, id int64, token *string) error
	ListAdminsWithPushToken(ctx context.Context) ([]model.User, error)
}

// RegisterInput carries a registration request.  Role defaults to "user".
type RegisterInput struct {
	Name      string
	Email     string
	Password  string
	Role      string
	PushToken string
}

// Session is the result of a successful register or login.
type Session struct {
	Token     string
	ExpiresAt time.Time
	User      model.User
}

// AuthService registers users, checks credentials and issues session
// tokens signed with HS256.
type AuthService struct {
	users  UserStore
	secret string
	ttl    time.Duration
	cost   int
}

func NewAuthService(users UserStore, secret string, ttl time.Duration, bcryptCost int) *AuthService {
	return &AuthService{users: users, secret: secret, ttl: ttl, cost: bcryptCost}
}

// Register creates the user and opens a session for it.  A registered
// email is a Conflict.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*Session, error) {
	u := model.User{
		Name:  strings.TrimSpace(in.Name),
		Email: repository.NormalizeEmail(in.Email),
		Role:  strings.TrimSpace(in.Role),
	}
	if u.Role == "" {
		u.Role = model.RoleUser
	}
	switch {
	case u.Name == "":
		return nil, invalid("name", "is required")
	case u.Email == "":
		return nil, invalid("email", "is required")
	case in.Password == "":
		return nil, invalid("password", "is required")
	case !model.IsValidRole(u.Role):
		return nil, invalid("role", "must be one of user, admin")
	}
	if err := maxLen("name", u.Name, model.MaxLabelLen); err != nil {
		return nil, err
	}
	if err := maxLen("email", u.Email, model.MaxLabelLen); err != nil {
		return nil, err
	}
	if tok := strings.TrimSpace(in.PushToken); tok != "" {
		u.PushToken = &tok
	}

	if err := s.users.Create(ctx, &u, in.Password, s.cost); err != nil {
		return nil, err
	}
	return s.open(u)
}

// Login checks the credentials.  An unknown email and a wrong password
// return the same ErrInvalidCredentials.  A supplied push token is stored;
// failing to store it does not fail the login.
func (s *AuthService) Login(ctx context.Context, email, password, pushToken string) (*Session, error) {
	if strings.TrimSpace(email) == "" {
		return nil, invalid("email", "is required")
	}
	if password == "" {
		return nil, invalid("password", "is required")
	}

	u, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		utils.VerifyPassword("", password)
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !utils.VerifyPassword(u.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}

	if tok := strings.TrimSpace(pushToken); tok != "" {
		if err := s.users.UpdatePushToken(ctx, u.ID, &tok); err != nil {
			log.WithError(err).WithField("user_id", u.ID).Warn("login: could not store push token")
		} else {
			u.PushToken = &tok
		}
	}
	return s.open(*u)
}

// Verify parses a session token and returns its claims.
func (s *AuthService) Verify(raw string) (*utils.Claims, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, ErrMissingToken
	}
	claims, err := utils.ParseSessionToken(s.secret, raw)
	if err != nil {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// UpdatePushToken sets the caller's own push token.  An empty token clears
// it.
func (s *AuthService) UpdatePushToken(ctx context.Context, userID int64, token string) error {
	var tok *string
	if t := strings.TrimSpace(token); t != "" {
		tok = &t
	}
	return s.users.UpdatePushToken(ctx, userID, tok)
}

// Profile returns the stored user behind a verified session.
func (s *AuthService) Profile(ctx context.Context, userID int64) (*model.User, error) {
	return s.users.GetByID(ctx, userID)
}

// ListAdmins returns the admins that currently receive push notifications.
func (s *AuthService) ListAdmins(ctx context.Context) ([]model.User, error) {
	return s.users.ListAdminsWithPushToken(ctx)
}

func (s *AuthService) open(u model.User) (*Session, error) {
	tok, err := utils.NewSessionToken(s.secret, utils.Claims{
		UserID: u.ID,
		Name:   u.Name,
		Email:  u.Email,
		Role:   u.Role,
	}, s.ttl)
	if err != nil {
		return nil, errors.Wrap(err, "sign session token")
	}
	return &Session{Token: tok.Token, ExpiresAt: tok.Exp, User: u}, nil
}
