// Package guard はページ表示可否を判定するアクセスポリシーを提供する。
// 判定は (セッション状態, 要求パス, パスの許可役割) のみに依存する純粋関数で、
// HTTP層はこの判定結果をリダイレクトまたは描画に変換するだけの薄い層とする。
package guard

import (
	"net/url"
	"strings"

	"github.com/hitoshi/classpulse/internal/model"
)

// State はセッションの解決状態を表す。
type State int

const (
	// StateResolving はセッションの復元中であることを示す。
	// リダイレクト判断はまだ行わない。
	StateResolving State = iota
	// StateAnonymous は未認証であることを示す。
	StateAnonymous
	// StateAuthenticated は認証済みであることを示す。
	StateAuthenticated
)

// Action は判定結果の種別を表す。
type Action int

const (
	// ActionLoading は読み込み中表示を描画することを示す。
	ActionLoading Action = iota
	// ActionRedirect はRedirectToへのリダイレクトを示す。
	ActionRedirect
	// ActionRender は要求されたページの描画を示す。
	ActionRender
)

// Decision はアクセス判定の結果。
type Decision struct {
	Action     Action
	RedirectTo string
}

// Input はアクセス判定への入力。
type Input struct {
	State State
	Role  model.Role // StateAuthenticatedの場合のみ有効
	Path  string
}

// ページパス定数。
const (
	PathLogin          = "/login"
	PathSignup         = "/signup"
	PathRoot           = "/"
	PathDashboard      = "/dashboard"
	PathCourses        = "/courses"
	PathProfile        = "/profile"
	PathAdminDashboard = "/admin/dashboard"
	PathAdminFeedback  = "/admin/feedback"
	PathAdminUsers     = "/admin/users"
	PathAdminCourses   = "/admin/courses"
)

// routeRoles はページパスごとの許可役割テーブル。
// ルート(/)とダッシュボードは両役割に許可し、Decide内の
// デフォルトランディング規則で役割ごとの行き先に振り分ける。
var routeRoles = map[string][]model.Role{
	PathRoot:           {model.RoleStudent, model.RoleAdmin},
	PathDashboard:      {model.RoleStudent, model.RoleAdmin},
	PathCourses:        {model.RoleStudent},
	PathProfile:        {model.RoleStudent},
	PathAdminDashboard: {model.RoleAdmin},
	PathAdminFeedback:  {model.RoleAdmin},
	PathAdminUsers:     {model.RoleAdmin},
	PathAdminCourses:   {model.RoleAdmin},
}

// AllowedRoles は指定パスの許可役割を返す。
// コース詳細（/courses/{id}）のような可変パスはプレフィックスで解決する。
// 未知のパスの場合はfalseを返す。
func AllowedRoles(path string) ([]model.Role, bool) {
	if roles, ok := routeRoles[path]; ok {
		return roles, true
	}
	if strings.HasPrefix(path, PathCourses+"/") {
		return routeRoles[PathCourses], true
	}
	return nil, false
}

// DefaultLanding は役割ごとのデフォルトランディングページを返す。
func DefaultLanding(role model.Role) string {
	switch role {
	case model.RoleAdmin:
		return PathAdminDashboard
	case model.RoleStudent:
		return PathDashboard
	default:
		// 未定義の役割はログインへ戻す
		return PathLogin
	}
}

// LoginRedirect は元の要求パスを持ち回るログインページのURLを返す。
// ログイン成功後に元のページへ戻るために使用する。
func LoginRedirect(fromPath string) string {
	if fromPath == "" || fromPath == PathRoot {
		return PathLogin
	}
	return PathLogin + "?from=" + url.QueryEscape(fromPath)
}

// Decide は (セッション状態, 要求パス, 許可役割) からページの表示可否を判定する。
//
// 規則:
//  1. 解決中は読み込み表示（リダイレクト判断をしない）
//  2. 未認証はログインへリダイレクト（元パスを保持）
//  3. 役割が許可されていない場合はその役割のデフォルトランディングへ
//  4. 許可されている場合でも、ルートまたは汎用ダッシュボードへの要求は
//     管理者のみ管理ダッシュボードへ振り分ける（学生はそのまま表示）
func Decide(in Input, allowed []model.Role) Decision {
	switch in.State {
	case StateResolving:
		return Decision{Action: ActionLoading}

	case StateAnonymous:
		return Decision{Action: ActionRedirect, RedirectTo: LoginRedirect(in.Path)}

	case StateAuthenticated:
		if !roleAllowed(in.Role, allowed) {
			return Decision{Action: ActionRedirect, RedirectTo: DefaultLanding(in.Role)}
		}
		if (in.Path == PathRoot || in.Path == PathDashboard) && in.Role == model.RoleAdmin {
			return Decision{Action: ActionRedirect, RedirectTo: PathAdminDashboard}
		}
		if in.Path == PathRoot {
			// 学生のルート要求はダッシュボードへ
			return Decision{Action: ActionRedirect, RedirectTo: PathDashboard}
		}
		return Decision{Action: ActionRender}

	default:
		return Decision{Action: ActionRedirect, RedirectTo: PathLogin}
	}
}

// roleAllowed はroleが許可リストに含まれるかを返す。
func roleAllowed(role model.Role, allowed []model.Role) bool {
	for _, r := range allowed {
		if r == role {
			return true
		}
	}
	return false
}
