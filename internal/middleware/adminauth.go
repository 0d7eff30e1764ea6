package middleware

import (
	"crypto/subtle"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/dgrijalva/jwt-go"
	"golang.org/x/crypto/bcrypt"

	"github.com/hydrovacfinder/directory/internal/config"
	"github.com/hydrovacfinder/directory/pkg/logger"
)

const sessionTTL = 12 * time.Hour

// AdminAuth authenticates the admin dashboard: a shared credential is
// exchanged for a signed session token, and protected routes require that
// token as a bearer header.
type AdminAuth struct {
	password     string
	passwordHash string
	secret       []byte
	log          *logger.Logger
}

// NewAdminAuth creates the admin authenticator. Returns nil when no
// credential is configured, which disables every admin route.
func NewAdminAuth(cfg config.AdminConfig, log *logger.Logger) *AdminAuth {
	if cfg.Password == "" && cfg.PasswordHash == "" {
		return nil
	}
	if log == nil {
		log = logger.NewDefault("adminauth")
	}
	secret := cfg.JWTSecret
	if secret == "" {
		// Without an explicit secret, sessions do not survive restarts.
		secret = fmt.Sprintf("ephemeral-%d", time.Now().UnixNano())
	}
	return &AdminAuth{
		password:     cfg.Password,
		passwordHash: cfg.PasswordHash,
		secret:       []byte(secret),
		log:          log,
	}
}

// Login checks the submitted password and, on success, issues a session
// token. The hash credential takes precedence over the plaintext one.
func (a *AdminAuth) Login(password string) (string, error) {
	if !a.check(password) {
		return "", fmt.Errorf("invalid credentials")
	}

	now := time.Now().UTC()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.StandardClaims{
		Subject:   "admin",
		IssuedAt:  now.Unix(),
		ExpiresAt: now.Add(sessionTTL).Unix(),
	})
	signed, err := token.SignedString(a.secret)
	if err != nil {
		return "", err
	}

	a.log.Info("admin session issued")
	return signed, nil
}

func (a *AdminAuth) check(password string) bool {
	if a.passwordHash != "" {
		return bcrypt.CompareHashAndPassword([]byte(a.passwordHash), []byte(password)) == nil
	}
	return subtle.ConstantTimeCompare([]byte(a.password), []byte(password)) == 1
}

// Verify validates a session token.
func (a *AdminAuth) Verify(tokenString string) error {
	token, err := jwt.ParseWithClaims(tokenString, &jwt.StandardClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return a.secret, nil
	})
	if err != nil {
		return err
	}
	if !token.Valid {
		return fmt.Errorf("invalid session token")
	}
	return nil
}

// Handler guards admin routes with the bearer session token.
func (a *AdminAuth) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		scheme, token, found := strings.Cut(header, " ")
		if !found || !strings.EqualFold(scheme, "Bearer") {
			unauthorized(w)
			return
		}
		if err := a.Verify(token); err != nil {
			a.log.WithError(err).Warn("admin session rejected")
			unauthorized(w)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	w.Write([]byte(`{"error":"unauthorized"}`))
}
