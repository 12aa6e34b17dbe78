package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/incident-report-tracker/internal/middleware"
	"github.com/iliyamo/incident-report-tracker/internal/model"
	"github.com/iliyamo/incident-report-tracker/internal/service"
)

// AuthService is the authentication the handler drives.
type AuthService interface {
	Register(ctx context.Context, in service.RegisterInput) (*service.Session, error)
	Login(ctx context.Context, email, password, pushToken string) (*service.Session, error)
	UpdatePushToken(ctx context.Context, userID int64, token string) error
	Profile(ctx context.Context, userID int64) (*model.User, error)
	ListAdmins(ctx context.Context) ([]model.User, error)
}

var _ AuthService = (*service.AuthService)(nil)

// AuthHandler bundles dependencies for auth endpoints.
type AuthHandler struct {
	svc AuthService
}

func NewAuthHandler(svc AuthService) *AuthHandler {
	return &AuthHandler{svc: svc}
}

// ----- DTOs -----

type registerReq struct {
	Name      string `json:"name" validate:"required,max=255"`
	Email     string `json:"email" validate:"required,email,max=255"`
	Password  string `json:"password" validate:"required"`
	Role      string `json:"role" validate:"omitempty,oneof=user admin"`
	PushToken string `json:"push_token"`
}

type loginReq struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required"`
	PushToken string `json:"push_token"`
}

type pushTokenReq struct {
	PushToken string `json:"push_token"`
}

type sessionResp struct {
	Token     string     `json:"token"`
	ExpiresAt time.Time  `json:"expires_at"`
	User      model.User `json:"user"`
}

func newSessionResp(s *service.Session) sessionResp {
	return sessionResp{Token: s.Token, ExpiresAt: s.ExpiresAt, User: s.User}
}

// Register creates the user and returns a session immediately.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := bind(c, &req); err != nil {
		return respondError(c, err)
	}
	ctx, cancel := requestCtx(c)
	defer cancel()
	sess, err := h.svc.Register(ctx, service.RegisterInput{
		Name:      req.Name,
		Email:     req.Email,
		Password:  req.Password,
		Role:      req.Role,
		PushToken: req.PushToken,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, newSessionResp(sess))
}

// Login verifies the credentials and optionally stores a push token.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := bind(c, &req); err != nil {
		return respondError(c, err)
	}
	ctx, cancel := requestCtx(c)
	defer cancel()
	sess, err := h.svc.Login(ctx, req.Email, req.Password, req.PushToken)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, newSessionResp(sess))
}

// UpdatePushToken sets the caller's own push token; an empty value clears
// it.
func (h *AuthHandler) UpdatePushToken(c echo.Context) error {
	uid, ok := middleware.UserID(c)
	if !ok {
		return respondError(c, service.ErrMissingToken)
	}
	var req pushTokenReq
	if err := bind(c, &req); err != nil {
		return respondError(c, err)
	}
	ctx, cancel := requestCtx(c)
	defer cancel()
	if err := h.svc.UpdatePushToken(ctx, uid, req.PushToken); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "push token updated"})
}

// Profile returns the stored user named by the verified claims.
func (h *AuthHandler) Profile(c echo.Context) error {
	claims := middleware.ClaimsFrom(c)
	if claims == nil || claims.UserID <= 0 {
		return respondError(c, service.ErrMissingToken)
	}
	ctx, cancel := requestCtx(c)
	defer cancel()
	u, err := h.svc.Profile(ctx, claims.UserID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, u)
}

// ListAdmins handles GET /users/admins.
func (h *AuthHandler) ListAdmins(c echo.Context) error {
	ctx, cancel := requestCtx(c)
	defer cancel()
	out, err := h.svc.ListAdmins(ctx)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}
