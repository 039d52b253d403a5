// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: auth, validation, course, feedback, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeInvalidCredentials = "INVALID_CREDENTIALS"
	ErrCodeDuplicateEmail     = "DUPLICATE_EMAIL"
	ErrCodeUserNotFound       = "USER_NOT_FOUND"
	ErrCodeCourseNotFound     = "COURSE_NOT_FOUND"
	ErrCodeFeedbackNotFound   = "FEEDBACK_NOT_FOUND"
	ErrCodeDuplicateReview    = "DUPLICATE_REVIEW"
	ErrCodeInvalidRating      = "INVALID_RATING"
	ErrCodeInvalidVideoURL    = "INVALID_VIDEO_URL"
	ErrCodeForbidden          = "FORBIDDEN"
)

// NewInvalidCredentialsError は認証失敗エラーを生成する。
// メールアドレス不一致・パスワード不一致・ブロック済みユーザーを区別しない。
// 区別するとアカウントの存在が外部から推測できてしまうため。
func NewInvalidCredentialsError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidCredentials,
		Message:  "メールアドレスまたはパスワードが正しくありません。",
		Category: "auth",
		Action:   "入力内容を確認して再度お試しください。",
	}
}

// NewDuplicateEmailError はメールアドレス重複エラーを生成する。
func NewDuplicateEmailError(email string) *APIError {
	return &APIError{
		Code:     ErrCodeDuplicateEmail,
		Message:  fmt.Sprintf("このメールアドレスは既に登録されています: %s", email),
		Category: "validation",
		Action:   "別のメールアドレスを使用するか、ログインしてください。",
	}
}

// NewUserNotFoundError はユーザーが見つからない場合のエラーを生成する。
func NewUserNotFoundError(userID string) *APIError {
	return &APIError{
		Code:     ErrCodeUserNotFound,
		Message:  fmt.Sprintf("指定されたユーザーが見つかりません: %s", userID),
		Category: "auth",
		Action:   "ユーザーIDを確認してください。",
	}
}

// NewCourseNotFoundError はコースが見つからない場合のエラーを生成する。
func NewCourseNotFoundError(courseID string) *APIError {
	return &APIError{
		Code:     ErrCodeCourseNotFound,
		Message:  fmt.Sprintf("指定されたコースが見つかりません: %s", courseID),
		Category: "course",
		Action:   "コースIDを確認してください。",
	}
}

// NewFeedbackNotFoundError はフィードバックが見つからない場合のエラーを生成する。
func NewFeedbackNotFoundError(feedbackID string) *APIError {
	return &APIError{
		Code:     ErrCodeFeedbackNotFound,
		Message:  fmt.Sprintf("指定されたフィードバックが見つかりません: %s", feedbackID),
		Category: "feedback",
		Action:   "フィードバックIDを確認してください。",
	}
}

// NewDuplicateReviewError は同一コースへの重複投稿エラーを生成する。
func NewDuplicateReviewError() *APIError {
	return &APIError{
		Code:     ErrCodeDuplicateReview,
		Message:  "このコースには既にフィードバックを投稿しています。",
		Category: "feedback",
		Action:   "既存のフィードバックを編集してください。",
	}
}

// NewInvalidRatingError は評価値が範囲外の場合のエラーを生成する。
func NewInvalidRatingError(rating int) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidRating,
		Message:  fmt.Sprintf("無効な評価値です: %d", rating),
		Category: "validation",
		Action:   fmt.Sprintf("評価は%dから%dの整数で指定してください。", RatingMin, RatingMax),
	}
}

// NewInvalidVideoURLError は動画URLが不正な場合のエラーを生成する。
func NewInvalidVideoURLError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidVideoURL,
		Message:  fmt.Sprintf("無効な動画URLです: %s", reason),
		Category: "validation",
		Action:   "http:// または https:// で始まる公開URLを入力してください。",
	}
}

// NewForbiddenError は権限不足エラーを生成する。
func NewForbiddenError() *APIError {
	return &APIError{
		Code:     ErrCodeForbidden,
		Message:  "この操作を行う権限がありません。",
		Category: "auth",
		Action:   "管理者アカウントでログインするか、自分のデータのみ操作してください。",
	}
}
