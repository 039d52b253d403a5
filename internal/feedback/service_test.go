package feedback

import (
	"context"
	"errors"
	"testing"

	"github.com/hitoshi/classpulse/internal/model"
	"github.com/hitoshi/classpulse/internal/repository"
	"github.com/hitoshi/classpulse/internal/security"
)

// --- モック定義 ---

type mockFeedbackRepo struct {
	findByIDFn               func(ctx context.Context, id string) (*model.Feedback, error)
	findByStudentAndCourseFn func(ctx context.Context, studentID, courseID string) (*model.Feedback, error)
	createFn                 func(ctx context.Context, fb *model.Feedback) error
	updateFn                 func(ctx context.Context, fb *model.Feedback) error
	deleteByIDFn             func(ctx context.Context, id string) error
}

func (m *mockFeedbackRepo) FindByID(ctx context.Context, id string) (*model.Feedback, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return nil, nil
}

func (m *mockFeedbackRepo) FindByStudentAndCourse(ctx context.Context, studentID, courseID string) (*model.Feedback, error) {
	if m.findByStudentAndCourseFn != nil {
		return m.findByStudentAndCourseFn(ctx, studentID, courseID)
	}
	return nil, nil
}

func (m *mockFeedbackRepo) List(_ context.Context) ([]*model.Feedback, error) {
	return nil, nil
}

func (m *mockFeedbackRepo) ListByStudent(_ context.Context, _ string) ([]*model.Feedback, error) {
	return nil, nil
}

func (m *mockFeedbackRepo) Create(ctx context.Context, fb *model.Feedback) error {
	if m.createFn != nil {
		return m.createFn(ctx, fb)
	}
	return nil
}

func (m *mockFeedbackRepo) Update(ctx context.Context, fb *model.Feedback) error {
	if m.updateFn != nil {
		return m.updateFn(ctx, fb)
	}
	return nil
}

func (m *mockFeedbackRepo) DeleteByID(ctx context.Context, id string) error {
	if m.deleteByIDFn != nil {
		return m.deleteByIDFn(ctx, id)
	}
	return nil
}

func (m *mockFeedbackRepo) DeleteByStudentID(_ context.Context, _ string) error {
	return nil
}

type mockUserRepo struct {
	findByIDFn func(ctx context.Context, id string) (*model.User, error)
}

func (m *mockUserRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return nil, nil
}

func (m *mockUserRepo) FindByEmail(_ context.Context, _ string) (*model.User, error) {
	return nil, nil
}

func (m *mockUserRepo) List(_ context.Context) ([]*model.User, error) { return nil, nil }

func (m *mockUserRepo) Create(_ context.Context, _ *model.User) error { return nil }

func (m *mockUserRepo) Update(_ context.Context, _ *model.User) error { return nil }

func (m *mockUserRepo) DeleteByID(_ context.Context, _ string) error { return nil }

type mockCourseRepo struct {
	findByIDFn func(ctx context.Context, id string) (*model.Course, error)
}

func (m *mockCourseRepo) FindByID(ctx context.Context, id string) (*model.Course, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return nil, nil
}

func (m *mockCourseRepo) List(_ context.Context) ([]*model.Course, error) { return nil, nil }

func (m *mockCourseRepo) Create(_ context.Context, _ *model.Course) error { return nil }

func (m *mockCourseRepo) Update(_ context.Context, _ *model.Course) error { return nil }

func (m *mockCourseRepo) DeleteByID(_ context.Context, _ string) error { return nil }

// --- compile-time interface checks ---
var _ repository.FeedbackRepository = (*mockFeedbackRepo)(nil)
var _ repository.UserRepository = (*mockUserRepo)(nil)
var _ repository.CourseRepository = (*mockCourseRepo)(nil)

// --- ヘルパー ---

func testStudentRepo() *mockUserRepo {
	return &mockUserRepo{
		findByIDFn: func(_ context.Context, id string) (*model.User, error) {
			if id == "student-1" {
				return &model.User{ID: "student-1", Name: "テスト学生", Role: model.RoleStudent}, nil
			}
			return nil, nil
		},
	}
}

func testCourseRepo() *mockCourseRepo {
	return &mockCourseRepo{
		findByIDFn: func(_ context.Context, id string) (*model.Course, error) {
			if id == "course-1" {
				return &model.Course{ID: "course-1", Name: "Go入門"}, nil
			}
			return nil, nil
		},
	}
}

func newTestService(fbRepo *mockFeedbackRepo) *Service {
	return NewService(fbRepo, testStudentRepo(), testCourseRepo(), security.NewMessageSanitizer(), nil)
}

// --- テスト ---

func TestCreate_SnapshotsNames(t *testing.T) {
	var created *model.Feedback
	fbRepo := &mockFeedbackRepo{
		createFn: func(_ context.Context, fb *model.Feedback) error {
			created = fb
			return nil
		},
	}
	svc := newTestService(fbRepo)

	fb, err := svc.Create(context.Background(), "student-1", "course-1", 5, "とても良かったです")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if created == nil {
		t.Fatal("feedback should be persisted")
	}
	// 学生名とコース名は作成時点のスナップショット
	if fb.StudentName != "テスト学生" {
		t.Errorf("StudentName = %q, want %q", fb.StudentName, "テスト学生")
	}
	if fb.CourseName != "Go入門" {
		t.Errorf("CourseName = %q, want %q", fb.CourseName, "Go入門")
	}
	if fb.Rating != 5 {
		t.Errorf("Rating = %d, want 5", fb.Rating)
	}
}

func TestCreate_SanitizesMessage(t *testing.T) {
	svc := newTestService(&mockFeedbackRepo{})

	fb, err := svc.Create(context.Background(), "student-1", "course-1", 4,
		`良い講座でした<script>alert("xss")</script>`)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if fb.Message != "良い講座でした" {
		t.Errorf("Message = %q, script tag should be stripped", fb.Message)
	}
}

func TestCreate_InvalidRating(t *testing.T) {
	for _, rating := range []int{0, -1, 6, 100} {
		svc := newTestService(&mockFeedbackRepo{})

		_, err := svc.Create(context.Background(), "student-1", "course-1", rating, "")
		assertAPIErrorCode(t, err, model.ErrCodeInvalidRating)
	}
}

func TestCreate_DuplicateReview(t *testing.T) {
	fbRepo := &mockFeedbackRepo{
		findByStudentAndCourseFn: func(_ context.Context, _, _ string) (*model.Feedback, error) {
			return &model.Feedback{ID: "fb-existing"}, nil
		},
	}
	svc := newTestService(fbRepo)

	_, err := svc.Create(context.Background(), "student-1", "course-1", 3, "二回目")
	assertAPIErrorCode(t, err, model.ErrCodeDuplicateReview)
}

func TestCreate_UnknownStudent(t *testing.T) {
	svc := newTestService(&mockFeedbackRepo{})

	_, err := svc.Create(context.Background(), "ghost", "course-1", 3, "")
	assertAPIErrorCode(t, err, model.ErrCodeUserNotFound)
}

func TestCreate_UnknownCourse(t *testing.T) {
	svc := newTestService(&mockFeedbackRepo{})

	_, err := svc.Create(context.Background(), "student-1", "ghost-course", 3, "")
	assertAPIErrorCode(t, err, model.ErrCodeCourseNotFound)
}

func TestUpdateFor_OwnerCanUpdate(t *testing.T) {
	existing := &model.Feedback{
		ID:          "fb-1",
		StudentID:   "student-1",
		StudentName: "テスト学生",
		CourseID:    "course-1",
		CourseName:  "Go入門",
		Rating:      3,
		Message:     "普通でした",
	}

	var saved *model.Feedback
	fbRepo := &mockFeedbackRepo{
		findByIDFn: func(_ context.Context, _ string) (*model.Feedback, error) {
			return existing, nil
		},
		updateFn: func(_ context.Context, fb *model.Feedback) error {
			saved = fb
			return nil
		},
	}
	svc := newTestService(fbRepo)

	newRating := 5
	updated, err := svc.UpdateFor(context.Background(), "student-1", model.RoleStudent, "fb-1", Update{Rating: &newRating})
	if err != nil {
		t.Fatalf("UpdateFor() error = %v", err)
	}
	if saved == nil {
		t.Fatal("feedback should be persisted")
	}
	if updated.Rating != 5 {
		t.Errorf("Rating = %d, want 5", updated.Rating)
	}
	// 構造フィールド（参照・スナップショット）は変更されない
	if updated.StudentID != "student-1" || updated.CourseID != "course-1" {
		t.Error("references should be unchanged")
	}
	if updated.StudentName != "テスト学生" || updated.CourseName != "Go入門" {
		t.Error("name snapshots should be unchanged")
	}
	if updated.Message != "普通でした" {
		t.Errorf("Message = %q, should be unchanged", updated.Message)
	}
}

func TestUpdateFor_OtherStudentForbidden(t *testing.T) {
	fbRepo := &mockFeedbackRepo{
		findByIDFn: func(_ context.Context, _ string) (*model.Feedback, error) {
			return &model.Feedback{ID: "fb-1", StudentID: "student-1"}, nil
		},
	}
	svc := newTestService(fbRepo)

	newRating := 1
	_, err := svc.UpdateFor(context.Background(), "student-2", model.RoleStudent, "fb-1", Update{Rating: &newRating})
	assertAPIErrorCode(t, err, model.ErrCodeForbidden)
}

func TestUpdateFor_AdminCanUpdateAny(t *testing.T) {
	fbRepo := &mockFeedbackRepo{
		findByIDFn: func(_ context.Context, _ string) (*model.Feedback, error) {
			return &model.Feedback{ID: "fb-1", StudentID: "student-1", Rating: 3}, nil
		},
	}
	svc := newTestService(fbRepo)

	msg := "管理者が修正"
	if _, err := svc.UpdateFor(context.Background(), "admin-1", model.RoleAdmin, "fb-1", Update{Message: &msg}); err != nil {
		t.Fatalf("admin update should succeed, got %v", err)
	}
}

func TestUpdateFor_InvalidRating(t *testing.T) {
	fbRepo := &mockFeedbackRepo{
		findByIDFn: func(_ context.Context, _ string) (*model.Feedback, error) {
			return &model.Feedback{ID: "fb-1", StudentID: "student-1", Rating: 3}, nil
		},
	}
	svc := newTestService(fbRepo)

	bad := 9
	_, err := svc.UpdateFor(context.Background(), "student-1", model.RoleStudent, "fb-1", Update{Rating: &bad})
	assertAPIErrorCode(t, err, model.ErrCodeInvalidRating)
}

func TestUpdateFor_NotFound(t *testing.T) {
	svc := newTestService(&mockFeedbackRepo{})

	newRating := 3
	_, err := svc.UpdateFor(context.Background(), "student-1", model.RoleStudent, "missing", Update{Rating: &newRating})
	assertAPIErrorCode(t, err, model.ErrCodeFeedbackNotFound)
}

func TestDeleteFor_OwnerCanDelete(t *testing.T) {
	var deletedID string
	fbRepo := &mockFeedbackRepo{
		findByIDFn: func(_ context.Context, _ string) (*model.Feedback, error) {
			return &model.Feedback{ID: "fb-1", StudentID: "student-1"}, nil
		},
		deleteByIDFn: func(_ context.Context, id string) error {
			deletedID = id
			return nil
		},
	}
	svc := newTestService(fbRepo)

	if err := svc.DeleteFor(context.Background(), "student-1", model.RoleStudent, "fb-1"); err != nil {
		t.Fatalf("DeleteFor() error = %v", err)
	}
	if deletedID != "fb-1" {
		t.Errorf("deletedID = %q, want %q", deletedID, "fb-1")
	}
}

func TestDeleteFor_OtherStudentForbidden(t *testing.T) {
	fbRepo := &mockFeedbackRepo{
		findByIDFn: func(_ context.Context, _ string) (*model.Feedback, error) {
			return &model.Feedback{ID: "fb-1", StudentID: "student-1"}, nil
		},
	}
	svc := newTestService(fbRepo)

	err := svc.DeleteFor(context.Background(), "student-2", model.RoleStudent, "fb-1")
	assertAPIErrorCode(t, err, model.ErrCodeForbidden)
}

func TestDeleteFor_MissingIsNoop(t *testing.T) {
	deleted := false
	fbRepo := &mockFeedbackRepo{
		deleteByIDFn: func(_ context.Context, _ string) error {
			deleted = true
			return nil
		},
	}
	svc := newTestService(fbRepo)

	// 存在しないフィードバックの削除はエラーにならない（冪等）
	if err := svc.DeleteFor(context.Background(), "student-1", model.RoleStudent, "missing"); err != nil {
		t.Fatalf("DeleteFor() error = %v", err)
	}
	if deleted {
		t.Error("repository delete should not be invoked for missing feedback")
	}
}

// assertAPIErrorCode はエラーが指定コードのAPIErrorであることを検証する。
func assertAPIErrorCode(t *testing.T, err error, code string) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected APIError with code %q, got nil", code)
	}
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *model.APIError, got %T: %v", err, err)
	}
	if apiErr.Code != code {
		t.Errorf("error code = %q, want %q", apiErr.Code, code)
	}
}
