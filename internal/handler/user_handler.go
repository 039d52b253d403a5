package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/classpulse/internal/middleware"
	"github.com/hitoshi/classpulse/internal/model"
	"github.com/hitoshi/classpulse/internal/user"
)

// UserServiceInterface はユーザーハンドラーが必要とするサービスインターフェース。
type UserServiceInterface interface {
	List(ctx context.Context) ([]*model.User, error)
	Get(ctx context.Context, id string) (*model.User, error)
	UpdateProfile(ctx context.Context, id string, upd user.ProfileUpdate) (*model.User, error)
	SetBlocked(ctx context.Context, id string, blocked bool) (*model.User, error)
	Delete(ctx context.Context, id string) error
}

// UserHandler はユーザー管理のHTTPハンドラー。
type UserHandler struct {
	service UserServiceInterface
}

// NewUserHandler はUserHandlerを生成する。
func NewUserHandler(service UserServiceInterface) *UserHandler {
	return &UserHandler{service: service}
}

// updateProfileRequest はプロフィール更新リクエストのボディ。
// 指定されたフィールドのみを更新する。
type updateProfileRequest struct {
	Name              *string `json:"name" validate:"omitempty,min=1,max=100"`
	PhoneNumber       *string `json:"phoneNumber" validate:"omitempty,max=30"`
	DateOfBirth       *string `json:"dateOfBirth" validate:"omitempty"`
	Address           *string `json:"address" validate:"omitempty,max=200"`
	ProfilePictureURL *string `json:"profilePictureUrl" validate:"omitempty,max=2048"`
}

// setBlockedRequest はブロック状態変更リクエストのボディ。
type setBlockedRequest struct {
	Blocked *bool `json:"blocked" validate:"required"`
}

// ListUsers は全ユーザー一覧を返す。
// GET /api/users（管理者のみ）
func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.List(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	resp := make([]userResponse, 0, len(users))
	for _, u := range users {
		resp = append(resp, toUserResponse(u))
	}
	writeJSON(w, http.StatusOK, resp)
}

// GetUser はユーザー詳細を返す。本人または管理者のみ参照できる。
// GET /api/users/:id
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	p, err := middleware.PrincipalFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}

	id := chi.URLParam(r, "id")
	if id != p.UserID && !p.IsAdmin() {
		writeAPIErrorResponse(w, http.StatusForbidden, model.NewForbiddenError())
		return
	}

	u, err := h.service.Get(r.Context(), id)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toUserResponse(u))
}

// UpdateProfile はプロフィールを部分更新する。本人または管理者のみ更新できる。
// PATCH /api/users/:id
func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	p, err := middleware.PrincipalFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}

	id := chi.URLParam(r, "id")
	if id != p.UserID && !p.IsAdmin() {
		writeAPIErrorResponse(w, http.StatusForbidden, model.NewForbiddenError())
		return
	}

	var req updateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestBody(w)
		return
	}
	if err := validate.Struct(req); err != nil {
		writeValidationError(w, err)
		return
	}

	upd := user.ProfileUpdate{
		Name:              req.Name,
		PhoneNumber:       req.PhoneNumber,
		Address:           req.Address,
		ProfilePictureURL: req.ProfilePictureURL,
	}
	if req.DateOfBirth != nil {
		dob, parseErr := time.Parse(dateOfBirthFormat, *req.DateOfBirth)
		if parseErr != nil {
			writeAPIErrorResponse(w, http.StatusBadRequest, &model.APIError{
				Code:     "VALIDATION_FAILED",
				Message:  "生年月日の形式が不正です。YYYY-MM-DD形式で指定してください。",
				Category: "validation",
				Action:   "入力内容を確認してください。",
			})
			return
		}
		upd.DateOfBirth = &dob
	}

	updated, err := h.service.UpdateProfile(r.Context(), id, upd)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toUserResponse(updated))
}

// SetBlocked はユーザーのブロック状態を変更する。
// ブロックされたユーザーの既存セッションは即座に無効化される。
// PUT /api/users/:id/blocked（管理者のみ）
func (h *UserHandler) SetBlocked(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req setBlockedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestBody(w)
		return
	}
	if err := validate.Struct(req); err != nil {
		writeValidationError(w, err)
		return
	}

	updated, err := h.service.SetBlocked(r.Context(), id, *req.Blocked)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toUserResponse(updated))
}

// DeleteUser はユーザーを削除する。
// 当該ユーザーのフィードバックとセッションも連動して削除される。
// DELETE /api/users/:id（管理者のみ）
func (h *UserHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.service.Delete(r.Context(), id); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
