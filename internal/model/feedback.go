package model

import "time"

// 評価値の許容範囲。
const (
	RatingMin = 1
	RatingMax = 5
)

// Feedback は学生1人によるコース1件への評価イベントを表す。
// (StudentID, CourseID) の組み合わせは作成時に一意であることが保証される。
// StudentName/CourseNameは作成時点のスナップショットであり、
// 元のユーザー・コースが変更/削除されても書き換えられない。
type Feedback struct {
	ID          string
	StudentID   string
	StudentName string
	CourseID    string
	CourseName  string
	Rating      int
	Message     string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
