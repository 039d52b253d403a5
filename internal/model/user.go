// Package model はドメインモデルを定義する。
package model

import "time"

// Role はユーザーの役割を表す。学生と管理者の2値のみを取る。
type Role string

const (
	// RoleStudent は受講生。コースの閲覧とフィードバック投稿ができる。
	RoleStudent Role = "student"
	// RoleAdmin は管理者。コース・ユーザー・フィードバックの管理ができる。
	RoleAdmin Role = "admin"
)

// Valid はRoleが定義済みの値かどうかを返す。
func (r Role) Valid() bool {
	switch r {
	case RoleStudent, RoleAdmin:
		return true
	default:
		return false
	}
}

// User はサービス利用ユーザーを表す。
// PasswordHashはbcryptハッシュ。APIレスポンスには含めない。
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         Role

	// プロフィール任意項目
	PhoneNumber       string
	DateOfBirth       *time.Time
	Address           string
	ProfilePictureURL string

	// IsBlocked が true のユーザーはログインもセッション継続もできない。
	IsBlocked bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Session はユーザーのログインセッションを表す。
// IDがそのまま認証トークンとしてCookie/Authorizationヘッダーで流通する。
type Session struct {
	ID        string
	UserID    string
	ExpiresAt time.Time
	CreatedAt time.Time
}
