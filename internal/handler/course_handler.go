package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/classpulse/internal/course"
	"github.com/hitoshi/classpulse/internal/model"
)

// CourseServiceInterface はコースハンドラーが必要とするサービスインターフェース。
type CourseServiceInterface interface {
	List(ctx context.Context) ([]*model.Course, error)
	Get(ctx context.Context, id string) (*model.Course, error)
	Create(ctx context.Context, name, description, videoURL string) (*model.Course, error)
	Update(ctx context.Context, id string, upd course.Update) (*model.Course, error)
	Delete(ctx context.Context, id string) error
}

// DescriptionGenerator はコース説明文のAI生成インターフェース。
// 失敗時はエラーではなくフォールバック文言を返す。
type DescriptionGenerator interface {
	GenerateDescription(ctx context.Context, courseName string) string
}

// CourseHandler はコース管理のHTTPハンドラー。
type CourseHandler struct {
	service   CourseServiceInterface
	generator DescriptionGenerator
}

// NewCourseHandler はCourseHandlerを生成する。
func NewCourseHandler(service CourseServiceInterface, generator DescriptionGenerator) *CourseHandler {
	return &CourseHandler{
		service:   service,
		generator: generator,
	}
}

// createCourseRequest はコース作成リクエストのボディ。
type createCourseRequest struct {
	Name        string `json:"name" validate:"required,max=200"`
	Description string `json:"description" validate:"max=5000"`
	VideoURL    string `json:"videoUrl" validate:"omitempty,max=2048"`
}

// updateCourseRequest はコース更新リクエストのボディ。
// 指定されたフィールドのみを更新する。
type updateCourseRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=200"`
	Description *string `json:"description" validate:"omitempty,max=5000"`
	VideoURL    *string `json:"videoUrl" validate:"omitempty,max=2048"`
}

// generateDescriptionRequest は説明文AI生成リクエストのボディ。
type generateDescriptionRequest struct {
	CourseName string `json:"courseName" validate:"required,max=200"`
}

// courseResponse はコース情報のAPIレスポンス。
type courseResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	VideoURL    string `json:"videoUrl,omitempty"`
	CreatedAt   string `json:"createdAt"`
	UpdatedAt   string `json:"updatedAt"`
}

// ListCourses は全コース一覧を返す。
// GET /api/courses
func (h *CourseHandler) ListCourses(w http.ResponseWriter, r *http.Request) {
	courses, err := h.service.List(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	resp := make([]courseResponse, 0, len(courses))
	for _, c := range courses {
		resp = append(resp, toCourseResponse(c))
	}
	writeJSON(w, http.StatusOK, resp)
}

// GetCourse はコース詳細を返す。
// GET /api/courses/:id
func (h *CourseHandler) GetCourse(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	c, err := h.service.Get(r.Context(), id)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toCourseResponse(c))
}

// CreateCourse はコースを作成する。
// POST /api/courses（管理者のみ）
func (h *CourseHandler) CreateCourse(w http.ResponseWriter, r *http.Request) {
	var req createCourseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestBody(w)
		return
	}
	if err := validate.Struct(req); err != nil {
		writeValidationError(w, err)
		return
	}

	c, err := h.service.Create(r.Context(), req.Name, req.Description, req.VideoURL)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toCourseResponse(c))
}

// UpdateCourse はコースを部分更新する。
// PATCH /api/courses/:id（管理者のみ）
func (h *CourseHandler) UpdateCourse(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req updateCourseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestBody(w)
		return
	}
	if err := validate.Struct(req); err != nil {
		writeValidationError(w, err)
		return
	}

	c, err := h.service.Update(r.Context(), id, course.Update{
		Name:        req.Name,
		Description: req.Description,
		VideoURL:    req.VideoURL,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toCourseResponse(c))
}

// DeleteCourse はコースを削除する。
// 既存のフィードバックはコース名のスナップショットを保持したまま残る。
// DELETE /api/courses/:id（管理者のみ）
func (h *CourseHandler) DeleteCourse(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.service.Delete(r.Context(), id); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// GenerateDescription はコース名から説明文をAI生成する。
// 生成失敗時もエラーにはならず、フォールバック文言が返る。
// POST /api/courses/description（管理者のみ、AI専用レート制限）
func (h *CourseHandler) GenerateDescription(w http.ResponseWriter, r *http.Request) {
	var req generateDescriptionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestBody(w)
		return
	}
	if err := validate.Struct(req); err != nil {
		writeValidationError(w, err)
		return
	}

	description := h.generator.GenerateDescription(r.Context(), req.CourseName)
	writeJSON(w, http.StatusOK, map[string]string{
		"description": description,
	})
}

// toCourseResponse はmodel.CourseからAPIレスポンスに変換する。
func toCourseResponse(c *model.Course) courseResponse {
	return courseResponse{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
		VideoURL:    c.VideoURL,
		CreatedAt:   c.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:   c.UpdatedAt.UTC().Format(time.RFC3339),
	}
}
