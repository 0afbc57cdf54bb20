// ABOUTME: JWT bearer sessions for the HTTP API
// ABOUTME: Issues HS256 tokens at login and resolves the user on every request
package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/harperreed/medcrm/crm"
	"github.com/harperreed/medcrm/models"
)

type UserClaims struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenIssuer(secret []byte, ttl time.Duration) *TokenIssuer {
	return &TokenIssuer{secret: secret, ttl: ttl, now: time.Now}
}

func (t *TokenIssuer) Issue(user *models.User) (string, time.Time, error) {
	now := t.now()
	expires := now.Add(t.ttl)
	claims := UserClaims{
		UserID: user.ID,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, expires, nil
}

func (t *TokenIssuer) Validate(tokenString string) (*UserClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &UserClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return t.secret, nil
	}, jwt.WithTimeFunc(t.now))
	if err != nil {
		return nil, err
	}
	if claims, ok := token.Claims.(*UserClaims); ok && token.Valid && claims.UserID != "" {
		return claims, nil
	}
	return nil, jwt.ErrTokenSignatureInvalid
}

type ctxKey struct{}

func userFrom(ctx context.Context) *models.User {
	u, _ := ctx.Value(ctxKey{}).(*models.User)
	return u
}

// authenticate resolves the bearer token to the current account. Tokens
// of deleted accounts stop working immediately.
func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		raw, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || raw == "" {
			writeError(w, fmt.Errorf("%w: missing bearer token", crm.ErrUnauthenticated))
			return
		}
		claims, err := s.tokens.Validate(raw)
		if err != nil {
			writeError(w, fmt.Errorf("%w: %v", crm.ErrUnauthenticated, err))
			return
		}
		user, err := s.svc.ResolveSession(r.Context(), &models.User{ID: claims.UserID})
		if err != nil {
			writeError(w, err)
			return
		}
		if user == nil {
			writeError(w, fmt.Errorf("%w: account no longer exists", crm.ErrUnauthenticated))
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, user)))
	})
}

type loginRequest struct {
	UserID   string `json:"userId"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
	User      *models.User `json:"user"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	req, err := decode[loginRequest](r)
	if err != nil {
		writeError(w, err)
		return
	}
	user, err := s.svc.Login(r.Context(), req.UserID, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	token, expires, err := s.tokens.Issue(user)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, loginResponse{Token: token, ExpiresAt: expires, User: user})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, userFrom(r.Context()))
}

type passwordRequest struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

// handlePassword completes a forced change, or changes the password after
// checking the old one.
func (s *Server) handlePassword(w http.ResponseWriter, r *http.Request) {
	req, err := decode[passwordRequest](r)
	if err != nil {
		writeError(w, err)
		return
	}
	me := userFrom(r.Context())
	var updated *models.User
	if me.MustChangePassword {
		updated, err = s.svc.ChangePassword(r.Context(), me, req.NewPassword)
	} else {
		updated, err = s.svc.ChangeOwnPassword(r.Context(), me, req.OldPassword, req.NewPassword)
	}
	if err != nil {
		if errors.Is(err, crm.ErrInvalidCredentials) {
			err = fmt.Errorf("%w: current password is wrong", crm.ErrValidation)
		}
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}
