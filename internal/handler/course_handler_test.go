package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/hitoshi/classpulse/internal/course"
	"github.com/hitoshi/classpulse/internal/model"
)

// --- モック定義 ---

type mockCourseService struct {
	listFn   func(ctx context.Context) ([]*model.Course, error)
	getFn    func(ctx context.Context, id string) (*model.Course, error)
	createFn func(ctx context.Context, name, description, videoURL string) (*model.Course, error)
	updateFn func(ctx context.Context, id string, upd course.Update) (*model.Course, error)
	deleteFn func(ctx context.Context, id string) error
}

func (m *mockCourseService) List(ctx context.Context) ([]*model.Course, error) {
	return m.listFn(ctx)
}

func (m *mockCourseService) Get(ctx context.Context, id string) (*model.Course, error) {
	return m.getFn(ctx, id)
}

func (m *mockCourseService) Create(ctx context.Context, name, description, videoURL string) (*model.Course, error) {
	return m.createFn(ctx, name, description, videoURL)
}

func (m *mockCourseService) Update(ctx context.Context, id string, upd course.Update) (*model.Course, error) {
	return m.updateFn(ctx, id, upd)
}

func (m *mockCourseService) Delete(ctx context.Context, id string) error {
	return m.deleteFn(ctx, id)
}

var _ CourseServiceInterface = (*mockCourseService)(nil)

type mockDescriptionGenerator struct {
	generateFn func(ctx context.Context, courseName string) string
}

func (m *mockDescriptionGenerator) GenerateDescription(ctx context.Context, courseName string) string {
	return m.generateFn(ctx, courseName)
}

var _ DescriptionGenerator = (*mockDescriptionGenerator)(nil)

func testCourse() *model.Course {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	return &model.Course{
		ID:          "course-1",
		Name:        "Go入門",
		Description: "Goの基礎を学ぶコースです。",
		VideoURL:    "https://example.com/intro.mp4",
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// --- テスト ---

func TestListCourses_Success(t *testing.T) {
	svc := &mockCourseService{
		listFn: func(_ context.Context) ([]*model.Course, error) {
			return []*model.Course{testCourse()}, nil
		},
	}
	h := NewCourseHandler(svc, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/courses", nil)
	rec := httptest.NewRecorder()
	h.ListCourses(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp []courseResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp) != 1 || resp[0].ID != "course-1" {
		t.Errorf("response = %+v", resp)
	}
}

func TestGetCourse_NotFound(t *testing.T) {
	svc := &mockCourseService{
		getFn: func(_ context.Context, id string) (*model.Course, error) {
			return nil, model.NewCourseNotFoundError(id)
		},
	}
	h := NewCourseHandler(svc, nil)

	req := requestWithPrincipal(http.MethodGet, "/api/courses/missing", "", studentPrincipal,
		map[string]string{"id": "missing"})
	rec := httptest.NewRecorder()
	h.GetCourse(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	if resp := decodeErrorResponse(t, rec); resp.Code != model.ErrCodeCourseNotFound {
		t.Errorf("code = %q", resp.Code)
	}
}

func TestCreateCourse_Success(t *testing.T) {
	svc := &mockCourseService{
		createFn: func(_ context.Context, name, description, videoURL string) (*model.Course, error) {
			if name != "Go入門" || videoURL != "https://example.com/intro.mp4" {
				t.Errorf("create args = (%q, %q, %q)", name, description, videoURL)
			}
			return testCourse(), nil
		},
	}
	h := NewCourseHandler(svc, nil)

	body := `{"name":"Go入門","description":"Goの基礎を学ぶコースです。","videoUrl":"https://example.com/intro.mp4"}`
	req := httptest.NewRequest(http.MethodPost, "/api/courses", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.CreateCourse(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", rec.Code, rec.Body.String())
	}
}

func TestCreateCourse_MissingName(t *testing.T) {
	h := NewCourseHandler(&mockCourseService{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/courses", strings.NewReader(`{"description":"説明のみ"}`))
	rec := httptest.NewRecorder()
	h.CreateCourse(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestCreateCourse_UnsafeVideoURL(t *testing.T) {
	svc := &mockCourseService{
		createFn: func(_ context.Context, _, _, _ string) (*model.Course, error) {
			return nil, model.NewInvalidVideoURLError("プライベートIPアドレスは指定できません")
		},
	}
	h := NewCourseHandler(svc, nil)

	body := `{"name":"Go入門","videoUrl":"http://192.168.1.1/video.mp4"}`
	req := httptest.NewRequest(http.MethodPost, "/api/courses", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.CreateCourse(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if resp := decodeErrorResponse(t, rec); resp.Code != model.ErrCodeInvalidVideoURL {
		t.Errorf("code = %q", resp.Code)
	}
}

func TestUpdateCourse_PartialBody(t *testing.T) {
	var gotUpd course.Update
	svc := &mockCourseService{
		updateFn: func(_ context.Context, id string, upd course.Update) (*model.Course, error) {
			gotUpd = upd
			return testCourse(), nil
		},
	}
	h := NewCourseHandler(svc, nil)

	req := requestWithPrincipal(http.MethodPatch, "/api/courses/course-1", `{"name":"Go実践"}`, adminPrincipal,
		map[string]string{"id": "course-1"})
	rec := httptest.NewRecorder()
	h.UpdateCourse(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if gotUpd.Name == nil || *gotUpd.Name != "Go実践" {
		t.Errorf("Name = %v", gotUpd.Name)
	}
	if gotUpd.Description != nil || gotUpd.VideoURL != nil {
		t.Errorf("unspecified fields should stay nil: %+v", gotUpd)
	}
}

func TestDeleteCourse_Success(t *testing.T) {
	var deletedID string
	svc := &mockCourseService{
		deleteFn: func(_ context.Context, id string) error {
			deletedID = id
			return nil
		},
	}
	h := NewCourseHandler(svc, nil)

	req := requestWithPrincipal(http.MethodDelete, "/api/courses/course-1", "", adminPrincipal,
		map[string]string{"id": "course-1"})
	rec := httptest.NewRecorder()
	h.DeleteCourse(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rec.Code)
	}
	if deletedID != "course-1" {
		t.Errorf("deleted ID = %q", deletedID)
	}
}

func TestGenerateDescription_ReturnsGeneratedText(t *testing.T) {
	gen := &mockDescriptionGenerator{
		generateFn: func(_ context.Context, courseName string) string {
			if courseName != "Go入門" {
				t.Errorf("courseName = %q", courseName)
			}
			return "実践的なGoの基礎コースです。"
		},
	}
	h := NewCourseHandler(&mockCourseService{}, gen)

	req := httptest.NewRequest(http.MethodPost, "/api/courses/description",
		strings.NewReader(`{"courseName":"Go入門"}`))
	rec := httptest.NewRecorder()
	h.GenerateDescription(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp["description"] != "実践的なGoの基礎コースです。" {
		t.Errorf("description = %q", resp["description"])
	}
}

func TestGenerateDescription_MissingCourseName(t *testing.T) {
	h := NewCourseHandler(&mockCourseService{}, &mockDescriptionGenerator{})

	req := httptest.NewRequest(http.MethodPost, "/api/courses/description", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	h.GenerateDescription(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}
