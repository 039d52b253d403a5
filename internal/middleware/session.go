// Package middleware はHTTPミドルウェアを提供する。
package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/hitoshi/classpulse/internal/model"
)

// SessionCookieName はセッショントークンを保持するCookieの名前。
const SessionCookieName = "session_id"

// contextKey はコンテキストに値を格納するための型安全なキー。
type contextKey string

// principalContextKey はリクエストコンテキストに認証主体を格納するためのキー。
var principalContextKey = contextKey("principal")

// Principal は認証済みリクエストの主体を表す。
type Principal struct {
	UserID string
	Role   model.Role
}

// IsAdmin は主体が管理者かどうかを返す。
func (p Principal) IsAdmin() bool {
	return p.Role == model.RoleAdmin
}

// CurrentUserResolver はセッショントークンからユーザーを解決するインターフェース。
// auth.Serviceの部分集合として定義する。
type CurrentUserResolver interface {
	GetCurrentUser(ctx context.Context, sessionID string) (*model.User, error)
}

// NewSessionMiddleware はセッショントークンを検証するミドルウェアを返す。
// トークンはHTTP Only CookieまたはAuthorization: Bearerヘッダーから読み取る。
// 認証済み主体（ユーザーIDと役割）をリクエストコンテキストに注入する。
// 未認証リクエストには401 Unauthorizedを返す。
func NewSessionMiddleware(resolver CurrentUserResolver) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := TokenFromRequest(r)
			if token == "" {
				writeUnauthorized(w)
				return
			}

			user, err := resolver.GetCurrentUser(r.Context(), token)
			if err != nil {
				writeUnauthorized(w)
				return
			}

			ctx := ContextWithPrincipal(r.Context(), Principal{
				UserID: user.ID,
				Role:   user.Role,
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// NewRequireAdminMiddleware は管理者のみ通過させるミドルウェアを返す。
// SessionMiddlewareの後に配置する。
func NewRequireAdminMiddleware() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, err := PrincipalFromContext(r.Context())
			if err != nil {
				writeUnauthorized(w)
				return
			}
			if !p.IsAdmin() {
				WriteErrorResponse(w, http.StatusForbidden, model.NewForbiddenError())
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// TokenFromRequest はリクエストからセッショントークンを取り出す。
// Cookieを優先し、無い場合はAuthorization: Bearerヘッダーを参照する。
func TokenFromRequest(r *http.Request) string {
	if cookie, err := r.Cookie(SessionCookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	authz := r.Header.Get("Authorization")
	if after, ok := strings.CutPrefix(authz, "Bearer "); ok {
		return strings.TrimSpace(after)
	}
	return ""
}

// PrincipalFromContext はリクエストコンテキストから認証主体を取得する。
// セッションミドルウェアを通過したリクエストでのみ有効。
func PrincipalFromContext(ctx context.Context) (Principal, error) {
	p, ok := ctx.Value(principalContextKey).(Principal)
	if !ok || p.UserID == "" {
		return Principal{}, fmt.Errorf("principal not found in context")
	}
	return p, nil
}

// ContextWithPrincipal はコンテキストに認証主体を注入する。
// テストやミドルウェア以外のコンテキスト生成で使用する。
func ContextWithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalContextKey, p)
}

// writeUnauthorized は401の統一エラーレスポンスを書き込む。
func writeUnauthorized(w http.ResponseWriter) {
	WriteErrorResponse(w, http.StatusUnauthorized, &model.APIError{
		Code:     "UNAUTHORIZED",
		Message:  "認証が必要です。",
		Category: "auth",
		Action:   "ログインしてください。",
	})
}
