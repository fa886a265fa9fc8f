package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/hoteza-pos/api/internal/auth"
	"github.com/hoteza-pos/api/internal/domain"
	"github.com/hoteza-pos/api/internal/middleware"
	"github.com/hoteza-pos/api/internal/service"
	"go.uber.org/zap"
)

// AccountServicer is the account part of the service layer.
// Satisfied by *service.Accounts; narrow interface for testability.
type AccountServicer interface {
	SignUp(ctx context.Context, in service.SignUpInput) (domain.Account, error)
	Authenticate(email, password string) (domain.Account, error)
	Current(email string) (domain.Account, error)
}

// AuthHandler handles sign-up, login and token endpoints.
type AuthHandler struct {
	svc       AccountServicer
	jwtSecret string
	log       *zap.SugaredLogger
}

func NewAuthHandler(svc AccountServicer, jwtSecret string, log *zap.SugaredLogger) *AuthHandler {
	return &AuthHandler{svc: svc, jwtSecret: jwtSecret, log: nopIfNil(log)}
}

// RegisterRoutes registers the public auth endpoints.
func (h *AuthHandler) RegisterRoutes(r chi.Router) {
	r.Post("/auth/signup", h.SignUp)
	r.Post("/auth/login", h.Login)
	r.Post("/auth/refresh", h.Refresh)
}

// --- Request / Response types ---

type signUpRequest struct {
	Restaurant string `json:"restaurant"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Password   string `json:"password"`
	Location   string `json:"location"`
	Title      string `json:"title"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type tokenResponse struct {
	AccessToken  string          `json:"access_token"`
	RefreshToken string          `json:"refresh_token"`
	User         accountResponse `json:"user"`
}

type accountResponse struct {
	DisplayName string `json:"display_name"`
	Email       string `json:"email"`
	Restaurant  string `json:"restaurant"`
	Location    string `json:"location"`
	Title       string `json:"title"`
}

func toAccountResponse(a domain.Account) accountResponse {
	return accountResponse{
		DisplayName: a.Name,
		Email:       a.Email,
		Restaurant:  a.Restaurant,
		Location:    a.Location,
		Title:       a.Title,
	}
}

// --- Handlers ---

// SignUp handles POST /auth/signup.
func (h *AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	var req signUpRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	acct, err := h.svc.SignUp(r.Context(), service.SignUpInput{
		Restaurant: req.Restaurant,
		Name:       req.Name,
		Email:      req.Email,
		Password:   req.Password,
		Location:   req.Location,
		Title:      req.Title,
	})
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	h.log.Infow("account created", "email", acct.Email, "restaurant", acct.Restaurant)
	h.respondWithTokens(w, http.StatusCreated, acct)
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if req.Email == "" || req.Password == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "email and password are required"})
		return
	}

	acct, err := h.svc.Authenticate(req.Email, req.Password)
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	h.respondWithTokens(w, http.StatusOK, acct)
}

// Refresh exchanges a valid refresh token for a new token pair.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if req.RefreshToken == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "refresh_token is required"})
		return
	}

	email, err := auth.ValidateRefreshToken(h.jwtSecret, req.RefreshToken)
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid refresh token"})
		return
	}

	acct, err := h.svc.Current(email)
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "account not found"})
		return
	}

	h.respondWithTokens(w, http.StatusOK, acct)
}

// Me handles GET /auth/me. Requires the Authenticate middleware.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
		return
	}

	acct, err := h.svc.Current(claims.Email)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, toAccountResponse(acct))
}

// --- Helpers ---

func (h *AuthHandler) respondWithTokens(w http.ResponseWriter, status int, acct domain.Account) {
	accessToken, err := auth.GenerateToken(h.jwtSecret, acct.Email, acct.Name)
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	refreshToken, err := auth.GenerateRefreshToken(h.jwtSecret, acct.Email)
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	writeJSON(w, status, tokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         toAccountResponse(acct),
	})
}
