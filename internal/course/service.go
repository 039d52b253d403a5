// Package course はコースカタログ管理のドメインロジックを提供する。
package course

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

// Update はコース更新の部分指定。nilのフィールドは変更しない。
type Update struct {
	Name        *string
	Description *string
	VideoURL    *string
}

// Service はコース管理のサービス層。
// 作成・更新は管理者のみが行う前提で、権限チェックはHTTP層が担う。
type Service struct {
	courseRepo   repository.CourseRepository
	urlValidator security.URLValidatorService
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(courseRepo repository.CourseRepository, urlValidator security.URLValidatorService) *Service {
	return &Service{
		courseRepo:   courseRepo,
		urlValidator: urlValidator,
	}
}

// List は全コースを返す。
func (s *Service) List(ctx context.Context) ([]*model.Course, error) {
	courses, err := s.courseRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("コース一覧の取得に失敗しました: %w", err)
	}
	return courses, nil
}

// Get は指定IDのコースを返す。存在しない場合はCOURSE_NOT_FOUNDエラーを返す。
func (s *Service) Get(ctx context.Context, id string) (*model.Course, error) {
	course, err := s.courseRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("コースの取得に失敗しました: %w", err)
	}
	if course == nil {
		return nil, model.NewCourseNotFoundError(id)
	}
	return course, nil
}

// Create は新規コースを作成する。
// 動画URLが指定されている場合は安全性を検証する。
func (s *Service) Create(ctx context.Context, name, description, videoURL string) (*model.Course, error) {
	if err := s.urlValidator.ValidateVideoURL(videoURL); err != nil {
		return nil, model.NewInvalidVideoURLError(err.Error())
	}

	now := time.Now()
	course := &model.Course{
		ID:          uuid.New().String(),
		Name:        name,
		Description: description,
		VideoURL:    videoURL,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.courseRepo.Create(ctx, course); err != nil {
		return nil, fmt.Errorf("コースの作成に失敗しました: %w", err)
	}

	slog.Info("course created",
		slog.String("course_id", course.ID),
		slog.String("name", course.Name),
	)
	return course, nil
}

// Update はコースを部分更新する。存在しない場合はCOURSE_NOT_FOUNDエラーを返す。
func (s *Service) Update(ctx context.Context, id string, upd Update) (*model.Course, error) {
	course, err := s.courseRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("コースの取得に失敗しました: %w", err)
	}
	if course == nil {
		return nil, model.NewCourseNotFoundError(id)
	}

	if upd.Name != nil {
		course.Name = *upd.Name
	}
	if upd.Description != nil {
		course.Description = *upd.Description
	}
	if upd.VideoURL != nil {
		if err := s.urlValidator.ValidateVideoURL(*upd.VideoURL); err != nil {
			return nil, model.NewInvalidVideoURLError(err.Error())
		}
		course.VideoURL = *upd.VideoURL
	}
	course.UpdatedAt = time.Now()

	if err := s.courseRepo.Update(ctx, course); err != nil {
		return nil, fmt.Errorf("コースの更新に失敗しました: %w", err)
	}
	return course, nil
}

// Delete は指定IDのコースを削除する。存在しない場合は何もしない。
// 既存フィードバックはコース名のスナップショットを保持したまま残る。
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.courseRepo.DeleteByID(ctx, id); err != nil {
		return fmt.Errorf("コースの削除に失敗しました: %w", err)
	}

	slog.Info("course deleted", slog.String("course_id", id))
	return nil
}
