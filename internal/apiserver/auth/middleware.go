package auth

import (
	"log"
	"net/http"
	"strings"

	"zensync/internal/shared/model"
)

// 免认证路由白名单（前缀匹配）
var publicPrefixes = []string{
	"/userApi/user",
	"/userApi/login",
	"/userApi/refresh",
	"/projectApi/auth/youtube/callback",
	"/health",
	"/metrics",
	"/ws/",
}

func isPublicRoute(path string) bool {
	for _, prefix := range publicPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// Middleware 创建 JWT 认证中间件
func Middleware(cfg Config) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isPublicRoute(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			// 提取 Bearer Token
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				http.Error(w, `{"error":"missing authorization header"}`, http.StatusUnauthorized)
				return
			}
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				http.Error(w, `{"error":"invalid authorization header"}`, http.StatusUnauthorized)
				return
			}

			claims, err := ParseToken(cfg, parts[1])
			if err != nil {
				log.Printf("[auth] token parse error: %v", err)
				http.Error(w, `{"error":"invalid or expired token"}`, http.StatusUnauthorized)
				return
			}
			if claims.Type != "access" {
				http.Error(w, `{"error":"invalid token type"}`, http.StatusUnauthorized)
				return
			}

			user := &AuthUser{
				ID:       claims.Subject,
				Email:    claims.Email,
				UserType: model.UserType(claims.UserType),
			}
			next.ServeHTTP(w, r.WithContext(WithAuthUser(r.Context(), user)))
		})
	}
}

// CreatorOnly 仅内容创作者可访问
func CreatorOnly(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := GetAuthUser(r.Context())
		if user == nil || !user.IsCreator() {
			http.Error(w, `{"error":"creator access required"}`, http.StatusForbidden)
			return
		}
		next(w, r)
	}
}

// EditorOnly 仅剪辑师可访问
func EditorOnly(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := GetAuthUser(r.Context())
		if user == nil || !user.IsEditor() {
			http.Error(w, `{"error":"editor access required"}`, http.StatusForbidden)
			return
		}
		next(w, r)
	}
}
