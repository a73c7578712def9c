package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/imonsheikh/women-three-piece-server/internal/gate"
)

type AuthHandler struct {
	tokens *gate.Tokens
	logger *slog.Logger
}

func NewAuthHandler(tokens *gate.Tokens, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{tokens: tokens, logger: logger}
}

type tokenRequestDTO struct {
	Email string `json:"email"`
}

// IssueToken mints an access token for the given email. Registration and
// credential checks live in the user API, outside this server's core.
func (h *AuthHandler) IssueToken(w http.ResponseWriter, r *http.Request) {
	var req tokenRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Email) == "" {
		respondError(w, http.StatusBadRequest, "missing_email", "email is required")
		return
	}

	token, err := h.tokens.Issue(req.Email)
	if err != nil {
		h.logger.Error("failed to issue token", "error", err)
		respondInternal(w)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"token": token})
}
