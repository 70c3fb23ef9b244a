package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/md-rashed-zaman/barberbook/libs/auth"
	"github.com/md-rashed-zaman/barberbook/libs/httpx"
	"github.com/md-rashed-zaman/barberbook/services/auth-service/internal/storage"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLen = 6

type Users interface {
	Register(ctx context.Context, user storage.User, shopName string) error
	GetByEmail(ctx context.Context, email string) (storage.User, error)
}

type AuthHandler struct {
	users    Users
	signer   *auth.Signer
	verifier *auth.Verifier
	logger   *slog.Logger
}

func NewAuthHandler(users Users, signer *auth.Signer, verifier *auth.Verifier, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{users: users, signer: signer, verifier: verifier, logger: logger}
}

func (h *AuthHandler) Routes(mux *http.ServeMux) {
	mux.HandleFunc("/api/v1/auth/register", h.Register)
	mux.HandleFunc("/api/v1/auth/login", h.Login)
	mux.HandleFunc("/api/v1/auth/me", h.Me)
}

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	ShopName string `json:"shopName"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenResponse struct {
	AccessToken string    `json:"accessToken"`
	TokenType   string    `json:"tokenType"`
	ExpiresAt   time.Time `json:"expiresAt"`
	ShopID      string    `json:"shopId"`
}

type meResponse struct {
	UserID string `json:"userId"`
	ShopID string `json:"shopId"`
	Role   string `json:"role"`
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httpx.MethodNotAllowed(w, http.MethodPost)
		return
	}

	var req registerRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	req.ShopName = strings.TrimSpace(req.ShopName)

	fields := map[string]string{}
	if _, err := mail.ParseAddress(req.Email); err != nil || !strings.Contains(req.Email, "@") {
		fields["email"] = "E-mail inválido"
	}
	if len(req.Password) < minPasswordLen {
		fields["password"] = "A senha deve ter pelo menos 6 caracteres"
	}
	if req.ShopName == "" {
		fields["shopName"] = "O nome da barbearia é obrigatório"
	}
	if len(fields) > 0 {
		httpx.WriteFieldErrors(w, "Verifique os campos do formulário.", fields)
		return
	}

	hash, err := hashPassword(req.Password)
	if err != nil {
		h.logger.Error("hash password failed", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "failed to hash password")
		return
	}

	user := storage.User{
		ID:           uuid.NewString(),
		ShopID:       uuid.NewString(),
		Email:        req.Email,
		PasswordHash: hash,
		Role:         auth.RoleOwner,
	}
	if err := h.users.Register(r.Context(), user, req.ShopName); err != nil {
		if errors.Is(err, storage.ErrEmailTaken) {
			httpx.WriteError(w, http.StatusConflict, "email already registered")
			return
		}
		h.logger.Error("register failed", "request_id", httpx.RequestIDFromContext(r.Context()), "err", err)
		httpx.WriteError(w, http.StatusServiceUnavailable, "service unavailable, try again")
		return
	}
	h.logger.Info("shop registered", "shop_id", user.ShopID, "user_id", user.ID)
	h.writeToken(w, http.StatusCreated, user)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httpx.MethodNotAllowed(w, http.MethodPost)
		return
	}

	var req loginRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || req.Password == "" {
		httpx.WriteError(w, http.StatusBadRequest, "email and password required")
		return
	}

	user, err := h.users.GetByEmail(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			httpx.WriteError(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		h.logger.Error("user lookup failed", "request_id", httpx.RequestIDFromContext(r.Context()), "err", err)
		httpx.WriteError(w, http.StatusServiceUnavailable, "service unavailable, try again")
		return
	}
	if err := verifyPassword(user.PasswordHash, req.Password); err != nil {
		httpx.WriteError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	h.writeToken(w, http.StatusOK, user)
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httpx.MethodNotAllowed(w, http.MethodGet)
		return
	}
	token, ok := bearerToken(r)
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "missing or invalid Authorization header")
		return
	}
	claims, err := h.verifier.Verify(token)
	if err != nil {
		httpx.WriteError(w, http.StatusUnauthorized, "invalid token")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, meResponse{
		UserID: claims.Subject,
		ShopID: claims.ShopID,
		Role:   claims.Role,
	})
}

func (h *AuthHandler) writeToken(w http.ResponseWriter, status int, user storage.User) {
	token, exp, err := h.signer.Sign(user.ID, user.ShopID, user.Role)
	if err != nil {
		h.logger.Error("issue token failed", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "failed to issue token")
		return
	}
	httpx.WriteJSON(w, status, tokenResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresAt:   exp.UTC(),
		ShopID:      user.ShopID,
	})
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	return token, token != ""
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func verifyPassword(hash, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}
