// Package user はユーザー管理のドメインロジックを提供する。
package user

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hitoshi/classpulse/internal/model"
	"github.com/hitoshi/classpulse/internal/repository"
)

// FeedbackDeleter はフィードバックの一括削除インターフェース。
type FeedbackDeleter interface {
	DeleteByStudentID(ctx context.Context, studentID string) error
}

// SessionDeleter はセッションの一括削除インターフェース。
type SessionDeleter interface {
	DeleteByUserID(ctx context.Context, userID string) error
}

// ProfileUpdate はプロフィール更新の部分指定。
// nilのフィールドは変更しない。
type ProfileUpdate struct {
	Name              *string
	PhoneNumber       *string
	DateOfBirth       *time.Time
	Address           *string
	ProfilePictureURL *string
}

// Service はユーザー管理のサービス層。
// 一覧取得、プロフィール更新、ブロック、退会処理のビジネスロジックを提供する。
type Service struct {
	userRepo        repository.UserRepository
	sessionDeleter  SessionDeleter
	feedbackDeleter FeedbackDeleter
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(
	userRepo repository.UserRepository,
	sessionDeleter SessionDeleter,
	feedbackDeleter FeedbackDeleter,
) *Service {
	return &Service{
		userRepo:        userRepo,
		sessionDeleter:  sessionDeleter,
		feedbackDeleter: feedbackDeleter,
	}
}

// List は全ユーザーを返す。
func (s *Service) List(ctx context.Context) ([]*model.User, error) {
	users, err := s.userRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("ユーザー一覧の取得に失敗しました: %w", err)
	}
	return users, nil
}

// Get は指定IDのユーザーを返す。存在しない場合はUSER_NOT_FOUNDエラーを返す。
func (s *Service) Get(ctx context.Context, id string) (*model.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("ユーザーの取得に失敗しました: %w", err)
	}
	if user == nil {
		return nil, model.NewUserNotFoundError(id)
	}
	return user, nil
}

// UpdateProfile はユーザーのプロフィールを部分更新する。
// メールアドレス・役割・ブロック状態はこの操作では変更できない。
func (s *Service) UpdateProfile(ctx context.Context, id string, upd ProfileUpdate) (*model.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("ユーザーの取得に失敗しました: %w", err)
	}
	if user == nil {
		return nil, model.NewUserNotFoundError(id)
	}

	if upd.Name != nil {
		user.Name = *upd.Name
	}
	if upd.PhoneNumber != nil {
		user.PhoneNumber = *upd.PhoneNumber
	}
	if upd.DateOfBirth != nil {
		dob := *upd.DateOfBirth
		user.DateOfBirth = &dob
	}
	if upd.Address != nil {
		user.Address = *upd.Address
	}
	if upd.ProfilePictureURL != nil {
		user.ProfilePictureURL = *upd.ProfilePictureURL
	}
	user.UpdatedAt = time.Now()

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("プロフィールの更新に失敗しました: %w", err)
	}
	return user, nil
}

// SetBlocked はユーザーのブロック状態を変更する。
// ブロック時はそのユーザーの全セッションを破棄し、即時にアクセスを遮断する。
func (s *Service) SetBlocked(ctx context.Context, id string, blocked bool) (*model.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("ユーザーの取得に失敗しました: %w", err)
	}
	if user == nil {
		return nil, model.NewUserNotFoundError(id)
	}

	user.IsBlocked = blocked
	user.UpdatedAt = time.Now()
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("ブロック状態の更新に失敗しました: %w", err)
	}

	if blocked && s.sessionDeleter != nil {
		if err := s.sessionDeleter.DeleteByUserID(ctx, id); err != nil {
			return nil, fmt.Errorf("セッションの削除に失敗しました: %w", err)
		}
	}

	slog.Info("user block state changed",
		slog.String("user_id", id),
		slog.Bool("is_blocked", blocked),
	)
	return user, nil
}

// Delete はユーザーの退会処理を実行する。
// 削除順序: feedback → sessions → user。
// ユーザーのフィードバックも併せて削除し、孤児レコードを残さない。
func (s *Service) Delete(ctx context.Context, id string) error {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("ユーザーの取得に失敗しました: %w", err)
	}
	if user == nil {
		return model.NewUserNotFoundError(id)
	}

	slog.Info("deleting user",
		slog.String("user_id", id),
	)

	// 1. フィードバックを削除
	if s.feedbackDeleter != nil {
		if err := s.feedbackDeleter.DeleteByStudentID(ctx, id); err != nil {
			return fmt.Errorf("フィードバックの削除に失敗しました: %w", err)
		}
	}

	// 2. セッションを削除
	if s.sessionDeleter != nil {
		if err := s.sessionDeleter.DeleteByUserID(ctx, id); err != nil {
			return fmt.Errorf("セッションの削除に失敗しました: %w", err)
		}
	}

	// 3. ユーザーを削除
	if err := s.userRepo.DeleteByID(ctx, id); err != nil {
		return fmt.Errorf("ユーザーの削除に失敗しました: %w", err)
	}

	slog.Info("user deleted",
		slog.String("user_id", id),
	)
	return nil
}
