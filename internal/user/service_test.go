package user

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hitoshi/classpulse/internal/model"
	"github.com/hitoshi/classpulse/internal/repository"
)

// --- モック定義 ---

type mockUserRepo struct {
	findByIDFn   func(ctx context.Context, id string) (*model.User, error)
	listFn       func(ctx context.Context) ([]*model.User, error)
	updateFn     func(ctx context.Context, user *model.User) error
	deleteByIDFn func(ctx context.Context, id string) error
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

func (m *mockUserRepo) List(ctx context.Context) ([]*model.User, error) {
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	return nil, nil
}

func (m *mockUserRepo) Create(_ context.Context, _ *model.User) error {
	return nil
}

func (m *mockUserRepo) Update(ctx context.Context, user *model.User) error {
	if m.updateFn != nil {
		return m.updateFn(ctx, user)
	}
	return nil
}

func (m *mockUserRepo) DeleteByID(ctx context.Context, id string) error {
	if m.deleteByIDFn != nil {
		return m.deleteByIDFn(ctx, id)
	}
	return nil
}

type mockSessionDeleter struct {
	deleteByUserIDFn func(ctx context.Context, userID string) error
}

func (m *mockSessionDeleter) DeleteByUserID(ctx context.Context, userID string) error {
	if m.deleteByUserIDFn != nil {
		return m.deleteByUserIDFn(ctx, userID)
	}
	return nil
}

type mockFeedbackDeleter struct {
	deleteByStudentIDFn func(ctx context.Context, studentID string) error
}

func (m *mockFeedbackDeleter) DeleteByStudentID(ctx context.Context, studentID string) error {
	if m.deleteByStudentIDFn != nil {
		return m.deleteByStudentIDFn(ctx, studentID)
	}
	return nil
}

// --- compile-time interface checks ---
var _ repository.UserRepository = (*mockUserRepo)(nil)
var _ SessionDeleter = (*mockSessionDeleter)(nil)
var _ FeedbackDeleter = (*mockFeedbackDeleter)(nil)

func existingUser() *model.User {
	return &model.User{
		ID:    "user-1",
		Name:  "テストユーザー",
		Email: "user@example.com",
		Role:  model.RoleStudent,
	}
}

// --- テスト ---

func TestUpdateProfile_PartialUpdate(t *testing.T) {
	user := existingUser()
	user.PhoneNumber = "090-0000-0000"

	var saved *model.User
	userRepo := &mockUserRepo{
		findByIDFn: func(_ context.Context, _ string) (*model.User, error) {
			return user, nil
		},
		updateFn: func(_ context.Context, u *model.User) error {
			saved = u
			return nil
		},
	}

	svc := NewService(userRepo, nil, nil)

	newName := "改名後"
	dob := time.Date(2000, 4, 1, 0, 0, 0, 0, time.UTC)
	updated, err := svc.UpdateProfile(context.Background(), user.ID, ProfileUpdate{
		Name:        &newName,
		DateOfBirth: &dob,
	})
	if err != nil {
		t.Fatalf("UpdateProfile() error = %v", err)
	}
	if saved == nil {
		t.Fatal("user should be persisted")
	}
	if updated.Name != newName {
		t.Errorf("Name = %q, want %q", updated.Name, newName)
	}
	if updated.DateOfBirth == nil || !updated.DateOfBirth.Equal(dob) {
		t.Errorf("DateOfBirth = %v, want %v", updated.DateOfBirth, dob)
	}
	// 指定されていないフィールドは維持される
	if updated.PhoneNumber != "090-0000-0000" {
		t.Errorf("PhoneNumber = %q, should be unchanged", updated.PhoneNumber)
	}
	if updated.Email != user.Email {
		t.Errorf("Email = %q, should be unchanged", updated.Email)
	}
}

func TestUpdateProfile_UserNotFound(t *testing.T) {
	svc := NewService(&mockUserRepo{}, nil, nil)

	name := "誰か"
	_, err := svc.UpdateProfile(context.Background(), "missing", ProfileUpdate{Name: &name})
	assertAPIErrorCode(t, err, model.ErrCodeUserNotFound)
}

func TestSetBlocked_RevokesSessions(t *testing.T) {
	user := existingUser()
	var revokedUserID string

	userRepo := &mockUserRepo{
		findByIDFn: func(_ context.Context, _ string) (*model.User, error) {
			return user, nil
		},
	}
	sessions := &mockSessionDeleter{
		deleteByUserIDFn: func(_ context.Context, userID string) error {
			revokedUserID = userID
			return nil
		},
	}

	svc := NewService(userRepo, sessions, nil)

	updated, err := svc.SetBlocked(context.Background(), user.ID, true)
	if err != nil {
		t.Fatalf("SetBlocked() error = %v", err)
	}
	if !updated.IsBlocked {
		t.Error("user should be blocked")
	}
	if revokedUserID != user.ID {
		t.Errorf("sessions of %q should be revoked, got %q", user.ID, revokedUserID)
	}
}

func TestSetBlocked_UnblockKeepsSessions(t *testing.T) {
	user := existingUser()
	user.IsBlocked = true

	sessionsCalled := false
	userRepo := &mockUserRepo{
		findByIDFn: func(_ context.Context, _ string) (*model.User, error) {
			return user, nil
		},
	}
	sessions := &mockSessionDeleter{
		deleteByUserIDFn: func(_ context.Context, _ string) error {
			sessionsCalled = true
			return nil
		},
	}

	svc := NewService(userRepo, sessions, nil)

	updated, err := svc.SetBlocked(context.Background(), user.ID, false)
	if err != nil {
		t.Fatalf("SetBlocked() error = %v", err)
	}
	if updated.IsBlocked {
		t.Error("user should be unblocked")
	}
	// ブロック解除ではセッションを破棄しない
	if sessionsCalled {
		t.Error("unblocking should not revoke sessions")
	}
}

func TestDelete_CascadeOrder(t *testing.T) {
	user := existingUser()
	var order []string

	userRepo := &mockUserRepo{
		findByIDFn: func(_ context.Context, _ string) (*model.User, error) {
			return user, nil
		},
		deleteByIDFn: func(_ context.Context, _ string) error {
			order = append(order, "user")
			return nil
		},
	}
	sessions := &mockSessionDeleter{
		deleteByUserIDFn: func(_ context.Context, _ string) error {
			order = append(order, "sessions")
			return nil
		},
	}
	feedbacks := &mockFeedbackDeleter{
		deleteByStudentIDFn: func(_ context.Context, _ string) error {
			order = append(order, "feedback")
			return nil
		},
	}

	svc := NewService(userRepo, sessions, feedbacks)

	if err := svc.Delete(context.Background(), user.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	want := []string{"feedback", "sessions", "user"}
	if len(order) != len(want) {
		t.Fatalf("cascade order = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("cascade order = %v, want %v", order, want)
		}
	}
}

func TestDelete_UserNotFound(t *testing.T) {
	svc := NewService(&mockUserRepo{}, &mockSessionDeleter{}, &mockFeedbackDeleter{})

	err := svc.Delete(context.Background(), "missing")
	assertAPIErrorCode(t, err, model.ErrCodeUserNotFound)
}

func TestDelete_FeedbackFailureAborts(t *testing.T) {
	user := existingUser()
	userDeleted := false

	userRepo := &mockUserRepo{
		findByIDFn: func(_ context.Context, _ string) (*model.User, error) {
			return user, nil
		},
		deleteByIDFn: func(_ context.Context, _ string) error {
			userDeleted = true
			return nil
		},
	}
	feedbacks := &mockFeedbackDeleter{
		deleteByStudentIDFn: func(_ context.Context, _ string) error {
			return errors.New("storage failure")
		},
	}

	svc := NewService(userRepo, &mockSessionDeleter{}, feedbacks)

	if err := svc.Delete(context.Background(), user.ID); err == nil {
		t.Error("feedback deletion failure should abort the cascade")
	}
	if userDeleted {
		t.Error("user should not be deleted when the cascade fails")
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
