package middleware

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// AuthCookie — имя cookie с JWT сессии.
const AuthCookie = "auth_token"

const tokenTTL = 24 * time.Hour

type ctxKey string

const userIDKey ctxKey = "user_id"

// Claims — полезная нагрузка токена.
type Claims struct {
	jwt.RegisteredClaims
	UserID int64 `json:"user_id"`
}

// BuildJWT подписывает токен пользователя HS256.
func BuildJWT(userID int64, secret string) (string, error) {
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(tokenTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
		UserID: userID,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// ParseJWT проверяет подпись и срок действия, возвращает user_id.
func ParseJWT(tokenString, secret string) (int64, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return 0, err
	}
	if !token.Valid {
		return 0, fmt.Errorf("invalid token")
	}
	return claims.UserID, nil
}

// SetLoginCookie выставляет cookie с токеном пользователя.
func SetLoginCookie(w http.ResponseWriter, userID int64, secret string) error {
	token, err := BuildJWT(userID, secret)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     AuthCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Now().Add(tokenTTL),
	})
	return nil
}

// WithAuth кладёт user_id в контекст, если cookie валидна. Анонимные запросы пропускаются дальше:
// решение о 401 принимает хендлер.
func WithAuth(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			c, err := r.Cookie(AuthCookie)
			if err != nil || c.Value == "" {
				next.ServeHTTP(w, r)
				return
			}
			userID, err := ParseJWT(c.Value, secret)
			if err != nil {
				if logger != nil {
					logger.Debugw("auth cookie rejected", "error", err)
				}
				next.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userIDKey, userID)))
		})
	}
}

// GetUserIDFromContext возвращает user_id авторизованного запроса.
func GetUserIDFromContext(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(userIDKey).(int64)
	return id, ok
}
