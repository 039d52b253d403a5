// Package repository はデータ永続化のインターフェースを定義する。
// 実装はプロセス内メモリストア。呼び出し契約（context受け渡し、
// 未検出時nil返却）は将来ネットワーク越しのバックエンドに
// 置き換えても変わらないように設計している。
package repository

import (
	"context"

	"github.com/hitoshi/classpulse/internal/model"
)

// UserRepository はユーザーデータの永続化インターフェース。
type UserRepository interface {
	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.User, error)

	// FindByEmail はメールアドレスでユーザーを検索する。
	// 完全一致（大文字小文字を区別）で照合する。見つからない場合はnilを返す。
	FindByEmail(ctx context.Context, email string) (*model.User, error)

	// List は全ユーザーのコピーを返す。
	List(ctx context.Context) ([]*model.User, error)

	// Create はユーザーを作成する。
	Create(ctx context.Context, user *model.User) error

	// Update はユーザーを上書き更新する。存在しない場合はエラーを返す。
	Update(ctx context.Context, user *model.User) error

	// DeleteByID は指定IDのユーザーを削除する。存在しない場合は何もしない。
	DeleteByID(ctx context.Context, id string) error
}

// CourseRepository はコースデータの永続化インターフェース。
type CourseRepository interface {
	// FindByID は指定IDのコースを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Course, error)

	// List は全コースのコピーを返す。
	List(ctx context.Context) ([]*model.Course, error)

	// Create はコースを作成する。
	Create(ctx context.Context, course *model.Course) error

	// Update はコースを上書き更新する。存在しない場合はエラーを返す。
	Update(ctx context.Context, course *model.Course) error

	// DeleteByID は指定IDのコースを削除する。存在しない場合は何もしない。
	DeleteByID(ctx context.Context, id string) error
}

// FeedbackRepository はフィードバックデータの永続化インターフェース。
type FeedbackRepository interface {
	// FindByID は指定IDのフィードバックを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Feedback, error)

	// FindByStudentAndCourse は学生IDとコースIDでフィードバックを検索する。
	// 重複投稿チェックに使用する。見つからない場合はnilを返す。
	FindByStudentAndCourse(ctx context.Context, studentID, courseID string) (*model.Feedback, error)

	// List は全フィードバックのコピーを返す。
	List(ctx context.Context) ([]*model.Feedback, error)

	// ListByStudent は指定学生のフィードバック一覧を返す。
	ListByStudent(ctx context.Context, studentID string) ([]*model.Feedback, error)

	// Create はフィードバックを作成する。
	Create(ctx context.Context, fb *model.Feedback) error

	// Update はフィードバックを上書き更新する。存在しない場合はエラーを返す。
	Update(ctx context.Context, fb *model.Feedback) error

	// DeleteByID は指定IDのフィードバックを削除する。存在しない場合は何もしない。
	DeleteByID(ctx context.Context, id string) error

	// DeleteByStudentID は指定学生の全フィードバックを削除する。
	// ユーザー削除時のカスケード削除に使用する。
	DeleteByStudentID(ctx context.Context, studentID string) error
}

// SessionRepository はセッションデータの永続化インターフェース。
type SessionRepository interface {
	// Create はセッションを作成する。
	Create(ctx context.Context, session *model.Session) error
	// FindByID は指定IDのセッションを取得する。期限切れの場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Session, error)
	// DeleteByID は指定IDのセッションを削除する。
	DeleteByID(ctx context.Context, id string) error
	// DeleteByUserID は指定ユーザーの全セッションを削除する。
	DeleteByUserID(ctx context.Context, userID string) error
}
