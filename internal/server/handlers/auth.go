// Handles admin login and logout.

package handlers

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/sarkari/portal/internal/server/dto"
	"github.com/sarkari/portal/internal/server/reqctx"
	"github.com/sarkari/portal/internal/storage"
)

const (
	// TokenCookie is the cookie carrying the admin session token.
	TokenCookie     = "sarkari_admin_token"
	tokenExpiration = 2 * time.Hour
)

var (
	errInvalidToken  = errors.New("invalid token")
	errInvalidClaims = errors.New("invalid claims")
)

// AuthHandler handles admin authentication requests.
type AuthHandler struct {
	admin     storage.AdminConfig
	jwtSecret []byte
	now       func() time.Time
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(cfg *Config, now func() time.Time) *AuthHandler {
	if now == nil {
		now = time.Now
	}
	return &AuthHandler{admin: cfg.Admin, jwtSecret: cfg.JWTSecret, now: now}
}

// Login checks the admin credentials and sets the session cookie.
func (h *AuthHandler) Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error) {
	if !h.checkCredentials(req.Username, req.Password) {
		slog.WarnContext(ctx, "Admin login failed", "username", req.Username, "ip", reqctx.ClientIP(ctx))
		return nil, dto.NewAPIError(http.StatusUnauthorized, dto.ErrorCodeUnauthorized, "Invalid username or password")
	}
	expires := h.now().Add(tokenExpiration)
	token, err := h.GenerateToken(req.Username, expires)
	if err != nil {
		return nil, dto.InternalWithError("Failed to generate token", err)
	}
	slog.InfoContext(ctx, "Admin logged in", "username", req.Username, "ip", reqctx.ClientIP(ctx))
	resp := &dto.LoginResponse{Success: true, Username: req.Username, ExpiresAt: expires.UTC().Format(time.RFC3339)}
	resp.SetCookie(&http.Cookie{
		Name:     TokenCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(tokenExpiration.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
	return resp, nil
}

// Logout clears the session cookie.
func (h *AuthHandler) Logout(ctx context.Context, req *dto.EmptyRequest) (*dto.LoginResponse, error) {
	resp := &dto.LoginResponse{Success: true}
	resp.SetCookie(&http.Cookie{Name: TokenCookie, Path: "/", MaxAge: -1, HttpOnly: true, SameSite: http.SameSiteStrictMode})
	return resp, nil
}

// GenerateToken signs an HS256 token for username.
func (h *AuthHandler) GenerateToken(username string, expires time.Time) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": username,
		"iat": h.now().Unix(),
		"exp": expires.Unix(),
	})
	return token.SignedString(h.jwtSecret)
}

// VerifyToken returns the admin username of a valid token.
func (h *AuthHandler) VerifyToken(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return h.jwtSecret, nil
	}, jwt.WithTimeFunc(h.now))
	if err != nil || !token.Valid {
		return "", errInvalidToken
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", errInvalidClaims
	}
	sub, err := claims.GetSubject()
	if err != nil || sub == "" || sub != h.admin.Username {
		return "", errInvalidClaims
	}
	return sub, nil
}

// checkCredentials compares against the configured admin. A hash starting
// with "$2" is bcrypt, anything else is the plain password.
func (h *AuthHandler) checkCredentials(username, password string) bool {
	if h.admin.Username == "" || h.admin.PasswordHash == "" {
		return false
	}
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(h.admin.Username)) == 1
	var passOK bool
	if strings.HasPrefix(h.admin.PasswordHash, "$2") {
		passOK = bcrypt.CompareHashAndPassword([]byte(h.admin.PasswordHash), []byte(password)) == nil
	} else {
		passOK = subtle.ConstantTimeCompare([]byte(password), []byte(h.admin.PasswordHash)) == 1
	}
	return userOK && passOK
}
