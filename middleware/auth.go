package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/fairwayleague/fantasy-golf/models"
	"github.com/fairwayleague/fantasy-golf/repositories"
	"github.com/golang-jwt/jwt/v4"
)

type contextKey string

const userContextKey contextKey = "currentUser"

const jwtClaimUserID = "user_id"

// Authenticator проверяет Bearer-токен и кладёт текущего пользователя в
// контекст запроса. Пользователь загружается из БД на каждый запрос, чтобы
// смена роли и отзыв одобрения действовали немедленно, а не по истечении
// токена.
type Authenticator struct {
	secret   []byte
	userRepo repositories.UserRepository
	logger   *slog.Logger
}

func NewAuthenticator(secret string, userRepo repositories.UserRepository, logger *slog.Logger) *Authenticator {
	return &Authenticator{
		secret:   []byte(secret),
		userRepo: userRepo,
		logger:   logger,
	}
}

func (a *Authenticator) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			writeAuthError(w, http.StatusUnauthorized, "missing or malformed authorization header")
			return
		}
		tokenString := strings.TrimPrefix(header, "Bearer ")

		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return a.secret, nil
		})
		if err != nil || !token.Valid {
			writeAuthError(w, http.StatusUnauthorized, "invalid or expired token")
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			writeAuthError(w, http.StatusUnauthorized, "invalid token claims")
			return
		}
		userIDFloat, ok := claims[jwtClaimUserID].(float64)
		if !ok || userIDFloat != float64(int(userIDFloat)) || int(userIDFloat) <= 0 {
			writeAuthError(w, http.StatusUnauthorized, "invalid user id claim")
			return
		}

		user, err := a.userRepo.GetByID(r.Context(), int(userIDFloat))
		if err != nil {
			if errors.Is(err, repositories.ErrUserNotFound) {
				writeAuthError(w, http.StatusUnauthorized, "account no longer exists")
				return
			}
			a.logger.Error("failed to load user for auth", slog.Any("error", err))
			writeAuthError(w, http.StatusInternalServerError, "internal server error")
			return
		}
		if !user.Approved {
			writeAuthError(w, http.StatusForbidden, "account is pending approval")
			return
		}
		user.PasswordHash = ""

		ctx := context.WithValue(r.Context(), userContextKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireRole пропускает запрос, только если роль текущего пользователя не
// ниже указанной.
func RequireRole(role models.UserRole) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := UserFromContext(r.Context())
			if !ok {
				writeAuthError(w, http.StatusUnauthorized, "authentication required")
				return
			}
			if !user.Role.AtLeast(role) {
				writeAuthError(w, http.StatusForbidden, "insufficient permissions")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// UserFromContext возвращает пользователя, положенного Authenticate.
func UserFromContext(ctx context.Context) (*models.User, bool) {
	user, ok := ctx.Value(userContextKey).(*models.User)
	return user, ok
}

func writeAuthError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
