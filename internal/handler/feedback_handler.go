package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/classpulse/internal/feedback"
	"github.com/hitoshi/classpulse/internal/middleware"
	"github.com/hitoshi/classpulse/internal/model"
)

// FeedbackServiceInterface はフィードバックハンドラーが必要とするサービスインターフェース。
type FeedbackServiceInterface interface {
	List(ctx context.Context) ([]*model.Feedback, error)
	ListByStudent(ctx context.Context, studentID string) ([]*model.Feedback, error)
	Create(ctx context.Context, studentID, courseID string, rating int, message string) (*model.Feedback, error)
	UpdateFor(ctx context.Context, actorID string, actorRole model.Role, id string, upd feedback.Update) (*model.Feedback, error)
	DeleteFor(ctx context.Context, actorID string, actorRole model.Role, id string) error
}

// FeedbackSummarizer はフィードバック本文のAI要約インターフェース。
// 失敗時はエラーではなくフォールバック文言を返す。
type FeedbackSummarizer interface {
	SummarizeFeedback(ctx context.Context, messages []string) string
}

// FeedbackHandler はフィードバック管理のHTTPハンドラー。
type FeedbackHandler struct {
	service    FeedbackServiceInterface
	summarizer FeedbackSummarizer
}

// NewFeedbackHandler はFeedbackHandlerを生成する。
func NewFeedbackHandler(service FeedbackServiceInterface, summarizer FeedbackSummarizer) *FeedbackHandler {
	return &FeedbackHandler{
		service:    service,
		summarizer: summarizer,
	}
}

// createFeedbackRequest はフィードバック投稿リクエストのボディ。
type createFeedbackRequest struct {
	CourseID string `json:"courseId" validate:"required"`
	Rating   int    `json:"rating" validate:"required,min=1,max=5"`
	Message  string `json:"message" validate:"max=5000"`
}

// updateFeedbackRequest はフィードバック更新リクエストのボディ。
// 評価と本文のみが更新可能。
type updateFeedbackRequest struct {
	Rating  *int    `json:"rating" validate:"omitempty,min=1,max=5"`
	Message *string `json:"message" validate:"omitempty,max=5000"`
}

// summarizeFeedbackRequest はフィードバックAI要約リクエストのボディ。
type summarizeFeedbackRequest struct {
	Messages []string `json:"messages"`
}

// feedbackResponse はフィードバック情報のAPIレスポンス。
// 学生名とコース名は投稿時点のスナップショット。
type feedbackResponse struct {
	ID          string `json:"id"`
	StudentID   string `json:"studentId"`
	StudentName string `json:"studentName"`
	CourseID    string `json:"courseId"`
	CourseName  string `json:"courseName"`
	Rating      int    `json:"rating"`
	Message     string `json:"message"`
	CreatedAt   string `json:"createdAt"`
	UpdatedAt   string `json:"updatedAt"`
}

// ListFeedback は全フィードバック一覧を新しい順で返す。
// GET /api/feedback（管理者のみ）
func (h *FeedbackHandler) ListFeedback(w http.ResponseWriter, r *http.Request) {
	fbs, err := h.service.List(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toFeedbackResponses(fbs))
}

// ListMyFeedback はログイン中の学生自身のフィードバック一覧を返す。
// GET /api/my/feedback
func (h *FeedbackHandler) ListMyFeedback(w http.ResponseWriter, r *http.Request) {
	p, err := middleware.PrincipalFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}

	fbs, err := h.service.ListByStudent(r.Context(), p.UserID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toFeedbackResponses(fbs))
}

// CreateFeedback はフィードバックを投稿する。
// 同一学生が同一コースに二重投稿した場合はDUPLICATE_REVIEWエラーを返す。
// POST /api/feedback
func (h *FeedbackHandler) CreateFeedback(w http.ResponseWriter, r *http.Request) {
	p, err := middleware.PrincipalFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}

	var req createFeedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestBody(w)
		return
	}
	if err := validate.Struct(req); err != nil {
		writeValidationError(w, err)
		return
	}

	fb, err := h.service.Create(r.Context(), p.UserID, req.CourseID, req.Rating, req.Message)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toFeedbackResponse(fb))
}

// UpdateFeedback はフィードバックを部分更新する。投稿者本人または管理者のみ。
// PATCH /api/feedback/:id
func (h *FeedbackHandler) UpdateFeedback(w http.ResponseWriter, r *http.Request) {
	p, err := middleware.PrincipalFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}

	id := chi.URLParam(r, "id")

	var req updateFeedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestBody(w)
		return
	}
	if err := validate.Struct(req); err != nil {
		writeValidationError(w, err)
		return
	}

	fb, err := h.service.UpdateFor(r.Context(), p.UserID, p.Role, id, feedback.Update{
		Rating:  req.Rating,
		Message: req.Message,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toFeedbackResponse(fb))
}

// DeleteFeedback はフィードバックを削除する。投稿者本人または管理者のみ。
// DELETE /api/feedback/:id
func (h *FeedbackHandler) DeleteFeedback(w http.ResponseWriter, r *http.Request) {
	p, err := middleware.PrincipalFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}

	id := chi.URLParam(r, "id")

	if err := h.service.DeleteFor(r.Context(), p.UserID, p.Role, id); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ExportFeedback は全フィードバックをCSVファイルとしてダウンロードさせる。
// GET /api/feedback/export（管理者のみ）
func (h *FeedbackHandler) ExportFeedback(w http.ResponseWriter, r *http.Request) {
	fbs, err := h.service.List(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	filename := "feedback_" + time.Now().UTC().Format("2006-01-02") + ".csv"
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)

	if err := feedback.WriteCSV(w, fbs); err != nil {
		// ヘッダー送信後のためステータスは変更できない。ログのみ残す。
		slog.Error("failed to write feedback csv", slog.String("error", err.Error()))
	}
}

// SummarizeFeedback は選択されたフィードバック本文をAI要約する。
// 要約失敗時もエラーにはならず、フォールバック文言が返る。
// POST /api/feedback/summary（管理者のみ、AI専用レート制限）
func (h *FeedbackHandler) SummarizeFeedback(w http.ResponseWriter, r *http.Request) {
	var req summarizeFeedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestBody(w)
		return
	}

	summary := h.summarizer.SummarizeFeedback(r.Context(), req.Messages)
	writeJSON(w, http.StatusOK, map[string]string{
		"summary": summary,
	})
}

// toFeedbackResponse はmodel.FeedbackからAPIレスポンスに変換する。
func toFeedbackResponse(fb *model.Feedback) feedbackResponse {
	return feedbackResponse{
		ID:          fb.ID,
		StudentID:   fb.StudentID,
		StudentName: fb.StudentName,
		CourseID:    fb.CourseID,
		CourseName:  fb.CourseName,
		Rating:      fb.Rating,
		Message:     fb.Message,
		CreatedAt:   fb.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:   fb.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

// toFeedbackResponses はフィードバックのスライスをAPIレスポンスに変換する。
func toFeedbackResponses(fbs []*model.Feedback) []feedbackResponse {
	resp := make([]feedbackResponse, 0, len(fbs))
	for _, fb := range fbs {
		resp = append(resp, toFeedbackResponse(fb))
	}
	return resp
}
