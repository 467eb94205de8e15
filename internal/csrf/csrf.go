// Package csrf protects HTML form posts with signed, cookie-bound tokens.
package csrf

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	// CookieName holds the per-browser nonce that tokens are bound to.
	CookieName = "katalog_csrf"
	// FormField is the hidden form field carrying the token.
	FormField = "csrf_token"
	// HeaderName may carry the token instead of the form field.
	HeaderName = "X-CSRF-Token"
)

// TokenExpiry is how long a rendered form stays submittable.
const TokenExpiry = 12 * time.Hour

// ErrInvalidToken is returned for missing, expired, forged or foreign tokens.
var ErrInvalidToken = errors.New("invalid form token")

// Claims are the signed contents of a form token.
type Claims struct {
	jwt.RegisteredClaims
}

// GenerateToken signs a token bound to nonce.
func GenerateToken(key, nonce string) (string, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   nonce,
			ExpiresAt: jwt.NewNumericDate(now.Add(TokenExpiry)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(key))
	if err != nil {
		return "", fmt.Errorf("signing form token: %w", err)
	}
	return signed, nil
}

// ValidateToken checks the signature, expiry and nonce binding of a token.
func ValidateToken(key, nonce, tokenStr string) error {
	if tokenStr == "" || nonce == "" {
		return ErrInvalidToken
	}

	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(key), nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Subject != nonce {
		return ErrInvalidToken
	}
	return nil
}

type contextKey struct{}

// Protector issues tokens and rejects unsafe requests without a valid one.
type Protector struct {
	key    string
	secure bool
	failed http.Handler
}

// New creates a Protector signing with key. failed renders rejected
// requests; nil means a plain 403.
func New(key string, secure bool, failed http.Handler) *Protector {
	if failed == nil {
		failed = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "invalid form token", http.StatusForbidden)
		})
	}
	return &Protector{key: key, secure: secure, failed: failed}
}

// Middleware ensures a nonce cookie and validates tokens on unsafe methods.
// The form must already be parsed when it runs.
func (p *Protector) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		nonce := ""
		if c, err := r.Cookie(CookieName); err == nil {
			nonce = c.Value
		}

		switch r.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			if nonce == "" {
				var err error
				if nonce, err = newNonce(); err != nil {
					http.Error(w, "internal error", http.StatusInternalServerError)
					return
				}
				http.SetCookie(w, &http.Cookie{
					Name:     CookieName,
					Value:    nonce,
					Path:     "/",
					HttpOnly: true,
					Secure:   p.secure,
					SameSite: http.SameSiteLaxMode,
				})
			}
		default:
			submitted := r.Header.Get(HeaderName)
			if submitted == "" {
				submitted = r.PostFormValue(FormField)
			}
			if err := ValidateToken(p.key, nonce, submitted); err != nil {
				p.failed.ServeHTTP(w, r)
				return
			}
		}

		ctx := context.WithValue(r.Context(), contextKey{}, nonce)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Token returns a fresh token for the request's nonce, for embedding in a form.
// It returns "" outside the middleware.
func (p *Protector) Token(r *http.Request) string {
	nonce, _ := r.Context().Value(contextKey{}).(string)
	if nonce == "" {
		return ""
	}
	token, err := GenerateToken(p.key, nonce)
	if err != nil {
		return ""
	}
	return token
}

func newNonce() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
