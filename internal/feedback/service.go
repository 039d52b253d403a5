// Package feedback はコースフィードバックのドメインロジックを提供する。
package feedback

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/classpulse/internal/model"
	"github.com/hitoshi/classpulse/internal/repository"
	"github.com/hitoshi/classpulse/internal/security"
)

// MetricsRecorder はフィードバックイベントのメトリクス記録インターフェース。
// nilの場合は記録しない。
type MetricsRecorder interface {
	RecordFeedbackCreated(rating int)
}

// Update はフィードバック更新の部分指定。nilのフィールドは変更しない。
// 評価と本文のみが更新可能。学生・コースへの参照と名前スナップショットは
// 作成後は変更不可。
type Update struct {
	Rating  *int
	Message *string
}

// Service はフィードバック管理のサービス層。
type Service struct {
	feedbackRepo repository.FeedbackRepository
	userRepo     repository.UserRepository
	courseRepo   repository.CourseRepository
	sanitizer    security.MessageSanitizerService
	metrics      MetricsRecorder
}

// NewService はServiceの新しいインスタンスを生成する。metricsはnil可。
func NewService(
	feedbackRepo repository.FeedbackRepository,
	userRepo repository.UserRepository,
	courseRepo repository.CourseRepository,
	sanitizer security.MessageSanitizerService,
	metrics MetricsRecorder,
) *Service {
	return &Service{
		feedbackRepo: feedbackRepo,
		userRepo:     userRepo,
		courseRepo:   courseRepo,
		sanitizer:    sanitizer,
		metrics:      metrics,
	}
}

// List は全フィードバックを返す。
func (s *Service) List(ctx context.Context) ([]*model.Feedback, error) {
	fbs, err := s.feedbackRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("フィードバック一覧の取得に失敗しました: %w", err)
	}
	return fbs, nil
}

// ListByStudent は指定学生のフィードバック一覧を返す。
func (s *Service) ListByStudent(ctx context.Context, studentID string) ([]*model.Feedback, error) {
	fbs, err := s.feedbackRepo.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("フィードバック一覧の取得に失敗しました: %w", err)
	}
	return fbs, nil
}

// Create は学生のフィードバックを新規作成する。
// 学生・コースが存在しない場合はNOT_FOUND、既に同じ(学生, コース)の
// フィードバックが存在する場合はDUPLICATE_REVIEW、評価が範囲外の場合は
// INVALID_RATINGエラーを返す。
// 学生名・コース名は作成時点の値をスナップショットとして保存する。
func (s *Service) Create(ctx context.Context, studentID, courseID string, rating int, message string) (*model.Feedback, error) {
	if rating < model.RatingMin || rating > model.RatingMax {
		return nil, model.NewInvalidRatingError(rating)
	}

	student, err := s.userRepo.FindByID(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("学生の検索に失敗しました: %w", err)
	}
	if student == nil {
		return nil, model.NewUserNotFoundError(studentID)
	}

	course, err := s.courseRepo.FindByID(ctx, courseID)
	if err != nil {
		return nil, fmt.Errorf("コースの検索に失敗しました: %w", err)
	}
	if course == nil {
		return nil, model.NewCourseNotFoundError(courseID)
	}

	existing, err := s.feedbackRepo.FindByStudentAndCourse(ctx, studentID, courseID)
	if err != nil {
		return nil, fmt.Errorf("既存フィードバックの検索に失敗しました: %w", err)
	}
	if existing != nil {
		return nil, model.NewDuplicateReviewError()
	}

	now := time.Now()
	fb := &model.Feedback{
		ID:          uuid.New().String(),
		StudentID:   student.ID,
		StudentName: student.Name,
		CourseID:    course.ID,
		CourseName:  course.Name,
		Rating:      rating,
		Message:     s.sanitizer.Sanitize(message),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.feedbackRepo.Create(ctx, fb); err != nil {
		return nil, fmt.Errorf("フィードバックの作成に失敗しました: %w", err)
	}

	if s.metrics != nil {
		s.metrics.RecordFeedbackCreated(rating)
	}
	slog.Info("feedback created",
		slog.String("feedback_id", fb.ID),
		slog.String("student_id", fb.StudentID),
		slog.String("course_id", fb.CourseID),
		slog.Int("rating", fb.Rating),
	)
	return fb, nil
}

// UpdateFor はフィードバックを部分更新する。
// 更新できるのは投稿者本人と管理者のみ。評価と本文以外は変更されない。
func (s *Service) UpdateFor(ctx context.Context, actorID string, actorRole model.Role, id string, upd Update) (*model.Feedback, error) {
	fb, err := s.feedbackRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("フィードバックの取得に失敗しました: %w", err)
	}
	if fb == nil {
		return nil, model.NewFeedbackNotFoundError(id)
	}
	if !canModify(actorID, actorRole, fb) {
		return nil, model.NewForbiddenError()
	}

	if upd.Rating != nil {
		if *upd.Rating < model.RatingMin || *upd.Rating > model.RatingMax {
			return nil, model.NewInvalidRatingError(*upd.Rating)
		}
		fb.Rating = *upd.Rating
	}
	if upd.Message != nil {
		fb.Message = s.sanitizer.Sanitize(*upd.Message)
	}
	fb.UpdatedAt = time.Now()

	if err := s.feedbackRepo.Update(ctx, fb); err != nil {
		return nil, fmt.Errorf("フィードバックの更新に失敗しました: %w", err)
	}
	return fb, nil
}

// DeleteFor はフィードバックを削除する。削除できるのは投稿者本人と管理者のみ。
// 既に存在しない場合は何もしない。
func (s *Service) DeleteFor(ctx context.Context, actorID string, actorRole model.Role, id string) error {
	fb, err := s.feedbackRepo.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("フィードバックの取得に失敗しました: %w", err)
	}
	if fb == nil {
		return nil
	}
	if !canModify(actorID, actorRole, fb) {
		return model.NewForbiddenError()
	}

	if err := s.feedbackRepo.DeleteByID(ctx, id); err != nil {
		return fmt.Errorf("フィードバックの削除に失敗しました: %w", err)
	}

	slog.Info("feedback deleted",
		slog.String("feedback_id", id),
		slog.String("actor_id", actorID),
	)
	return nil
}

// canModify はactorがフィードバックを変更できるかを判定する。
func canModify(actorID string, actorRole model.Role, fb *model.Feedback) bool {
	if actorRole == model.RoleAdmin {
		return true
	}
	return fb.StudentID == actorID
}
