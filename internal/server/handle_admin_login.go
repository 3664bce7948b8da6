package server

import (
	"crypto/subtle"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// AdminCredentials is the single admin account, configured through the
// environment.
type AdminCredentials struct {
	Email        string
	PasswordHash string
}

// AdminLoginRequest is the request body for POST /api/admin/login.
type AdminLoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AdminMeResponse is the response for GET /api/admin/me.
type AdminMeResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

const adminID = "admin"

func handleAdminLogin(logger *slog.Logger, creds AdminCredentials, sessions SessionStore, ttl time.Duration) http.HandlerFunc {
	wantEmail := strings.ToLower(strings.TrimSpace(creds.Email))

	return func(w http.ResponseWriter, r *http.Request) {
		var req AdminLoginRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		req.Email = strings.TrimSpace(strings.ToLower(req.Email))
		if req.Email == "" || req.Password == "" {
			writeError(w, http.StatusBadRequest, "email and password are required")
			return
		}

		emailOK := subtle.ConstantTimeCompare([]byte(req.Email), []byte(wantEmail)) == 1
		pwErr := bcrypt.CompareHashAndPassword([]byte(creds.PasswordHash), []byte(req.Password))
		if !emailOK || pwErr != nil {
			writeError(w, http.StatusUnauthorized, "invalid credentials")
			return
		}

		sessionID, err := sessions.Create(r.Context(), AdminSession{
			AdminID:   adminID,
			Email:     req.Email,
			ExpiresAt: time.Now().Add(ttl).UTC(),
		})
		if err != nil {
			writeDomainError(w, r, logger, err)
			return
		}

		http.SetCookie(w, &http.Cookie{
			Name:     adminCookieName,
			Value:    sessionID,
			Path:     "/",
			MaxAge:   int(ttl / time.Second),
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})

		logger.Info("admin logged in", "email", req.Email)
		writeData(w, http.StatusOK, AdminMeResponse{
			ID:    adminID,
			Email: req.Email,
		})
	}
}

func handleAdminMe() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess := adminFrom(r)
		writeData(w, http.StatusOK, AdminMeResponse{
			ID:    sess.AdminID,
			Email: sess.Email,
		})
	}
}
