package handler

import (
	"html/template"
	"net/http"

	"github.com/hitoshi/classpulse/internal/guard"
	"github.com/hitoshi/classpulse/internal/middleware"
)

// pageTemplate はページシェルのHTMLテンプレート。
// 実際の画面はフロントエンドが描画するため、サーバー側は
// アクセス判定済みの最小限のシェルのみを返す。
var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="ja">
<head>
<meta charset="utf-8">
<title>{{.Title}} - ClassPulse</title>
</head>
<body>
<div id="root" data-page="{{.Path}}"></div>
</body>
</html>
`))

// pageTitles はページパスごとの表示タイトル。
var pageTitles = map[string]string{
	guard.PathLogin:          "ログイン",
	guard.PathSignup:         "新規登録",
	guard.PathDashboard:      "ダッシュボード",
	guard.PathCourses:        "コース一覧",
	guard.PathProfile:        "プロフィール",
	guard.PathAdminDashboard: "管理ダッシュボード",
	guard.PathAdminFeedback:  "フィードバック管理",
	guard.PathAdminUsers:     "ユーザー管理",
	guard.PathAdminCourses:   "コース管理",
}

// PageHandler はページ配信とアクセス判定のHTTPハンドラー。
// 判定ロジック自体はguardパッケージの純粋関数に委ね、
// ここではセッション解決とリダイレクト・描画への変換のみを行う。
type PageHandler struct {
	resolver middleware.CurrentUserResolver
}

// NewPageHandler はPageHandlerを生成する。
func NewPageHandler(resolver middleware.CurrentUserResolver) *PageHandler {
	return &PageHandler{resolver: resolver}
}

// ServeProtectedPage は保護ページへのリクエストを処理する。
// 未認証はログインへ、役割外はその役割のランディングへリダイレクトする。
func (h *PageHandler) ServeProtectedPage(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Path
	in := h.resolveInput(r)

	allowed, known := guard.AllowedRoles(path)
	if !known {
		http.NotFound(w, r)
		return
	}

	decision := guard.Decide(in, allowed)
	switch decision.Action {
	case guard.ActionRedirect:
		http.Redirect(w, r, decision.RedirectTo, http.StatusFound)
	case guard.ActionRender:
		h.renderPage(w, path)
	default:
		// サーバー側ではセッション解決が同期的に完了するため、
		// 読み込み中状態には到達しない。
		h.renderPage(w, path)
	}
}

// ServeAuthPage はログイン・新規登録ページへのリクエストを処理する。
// 認証済みユーザーは役割ごとのランディングへリダイレクトする。
func (h *PageHandler) ServeAuthPage(w http.ResponseWriter, r *http.Request) {
	in := h.resolveInput(r)
	if in.State == guard.StateAuthenticated {
		http.Redirect(w, r, guard.DefaultLanding(in.Role), http.StatusFound)
		return
	}
	h.renderPage(w, r.URL.Path)
}

// resolveInput はリクエストのセッショントークンからguard.Inputを構築する。
func (h *PageHandler) resolveInput(r *http.Request) guard.Input {
	in := guard.Input{
		State: guard.StateAnonymous,
		Path:  r.URL.Path,
	}

	token := middleware.TokenFromRequest(r)
	if token == "" {
		return in
	}

	user, err := h.resolver.GetCurrentUser(r.Context(), token)
	if err != nil {
		// 無効なセッションは未認証として扱う
		return in
	}

	in.State = guard.StateAuthenticated
	in.Role = user.Role
	return in
}

// renderPage はページシェルを描画する。
func (h *PageHandler) renderPage(w http.ResponseWriter, path string) {
	title, ok := pageTitles[path]
	if !ok {
		// コース詳細などの可変パスは親ページのタイトルを使う
		title = pageTitles[guard.PathCourses]
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	pageTemplate.Execute(w, struct {
		Title string
		Path  string
	}{
		Title: title,
		Path:  path,
	})
}
