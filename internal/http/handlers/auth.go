package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/Tuning-Luna/hairdressing-member-manger-system/internal/auth"
	"github.com/Tuning-Luna/hairdressing-member-manger-system/internal/http/respond"
	"github.com/Tuning-Luna/hairdressing-member-manger-system/internal/models/dto"
)

// AuthHandler owns the operator login endpoint.
type AuthHandler struct {
	operator *auth.Operator
	tokens   *auth.TokenManager
	log      *logrus.Logger
}

// NewAuthHandler constructs the handler.
func NewAuthHandler(operator *auth.Operator, tokens *auth.TokenManager, log *logrus.Logger) *AuthHandler {
	return &AuthHandler{operator: operator, tokens: tokens, log: log}
}

// Register attaches auth routes to the mux.
func (h *AuthHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /login", h.handleLogin)
}

func (h *AuthHandler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	username := strings.TrimSpace(req.Username)
	if username == "" || req.Password == "" {
		respond.Error(w, http.StatusBadRequest, "username and password are required")
		return
	}
	if !h.operator.Authenticate(username, req.Password) {
		h.log.WithField("username", username).Warn("login failed")
		respond.Error(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	token, err := h.tokens.Generate(username)
	if err != nil {
		h.log.WithError(err).Error("generate token")
		respond.Error(w, http.StatusInternalServerError, "failed to generate token")
		return
	}
	respond.JSON(w, http.StatusOK, "login successful", dto.LoginResponse{
		Token:     token,
		ExpiresIn: int64(h.tokens.TTL().Seconds()),
	})
}
