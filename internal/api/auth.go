package api

import (
	"database/sql"
	"net/http"

	"golang.org/x/crypto/bcrypt"

	"github.com/disenocorptpc-dot/wonderwoods/internal/auth"
	"github.com/disenocorptpc-dot/wonderwoods/internal/store"
)

// AuthHandler issues anonymous session tokens.
type AuthHandler struct {
	DB        *sql.DB
	JWTSecret string
}

type sessionRequest struct {
	AccessKey string `json:"accessKey"`
}

// CreateSession handles POST /api/auth/session. Sessions are
// anonymous; when the server was initialized with an access key the
// caller must present it, otherwise any request gets a session.
func (h *AuthHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	var req sessionRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	hash, err := store.GetAccessKeyHash(r.Context(), h.DB)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to check access key")
		return
	}
	if hash != "" {
		if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(req.AccessKey)); err != nil {
			jsonError(w, http.StatusUnauthorized, "invalid access key")
			return
		}
	}

	token, err := auth.GenerateToken(h.JWTSecret)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to create session")
		return
	}

	jsonResponse(w, http.StatusOK, map[string]string{"token": token})
}
