package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/hitoshi/classpulse/internal/model"
)

// MemoryFeedbackRepo はFeedbackRepositoryのメモリ実装。
type MemoryFeedbackRepo struct {
	mu       sync.RWMutex
	feedback map[string]*model.Feedback
}

// NewMemoryFeedbackRepo はMemoryFeedbackRepoの新しいインスタンスを生成する。
func NewMemoryFeedbackRepo() *MemoryFeedbackRepo {
	return &MemoryFeedbackRepo{
		feedback: make(map[string]*model.Feedback),
	}
}

// FindByID は指定IDのフィードバックを取得する。見つからない場合はnilを返す。
func (r *MemoryFeedbackRepo) FindByID(ctx context.Context, id string) (*model.Feedback, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	fb, ok := r.feedback[id]
	if !ok {
		return nil, nil
	}
	clone := *fb
	return &clone, nil
}

// FindByStudentAndCourse は学生IDとコースIDでフィードバックを検索する。
func (r *MemoryFeedbackRepo) FindByStudentAndCourse(ctx context.Context, studentID, courseID string) (*model.Feedback, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, fb := range r.feedback {
		if fb.StudentID == studentID && fb.CourseID == courseID {
			clone := *fb
			return &clone, nil
		}
	}
	return nil, nil
}

// List は全フィードバックのコピーを作成日時の新しい順で返す。
func (r *MemoryFeedbackRepo) List(ctx context.Context) ([]*model.Feedback, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	res := make([]*model.Feedback, 0, len(r.feedback))
	for _, fb := range r.feedback {
		clone := *fb
		res = append(res, &clone)
	}
	sortFeedbackNewestFirst(res)
	return res, nil
}

// ListByStudent は指定学生のフィードバック一覧を作成日時の新しい順で返す。
func (r *MemoryFeedbackRepo) ListByStudent(ctx context.Context, studentID string) ([]*model.Feedback, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var res []*model.Feedback
	for _, fb := range r.feedback {
		if fb.StudentID == studentID {
			clone := *fb
			res = append(res, &clone)
		}
	}
	sortFeedbackNewestFirst(res)
	return res, nil
}

// Create はフィードバックを作成する。同一IDが既に存在する場合はエラーを返す。
func (r *MemoryFeedbackRepo) Create(ctx context.Context, fb *model.Feedback) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.feedback[fb.ID]; ok {
		return fmt.Errorf("フィードバックIDが重複しています: %s", fb.ID)
	}
	clone := *fb
	r.feedback[fb.ID] = &clone
	return nil
}

// Update はフィードバックを上書き更新する。存在しない場合はエラーを返す。
func (r *MemoryFeedbackRepo) Update(ctx context.Context, fb *model.Feedback) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.feedback[fb.ID]; !ok {
		return fmt.Errorf("更新対象のフィードバックが存在しません: %s", fb.ID)
	}
	clone := *fb
	r.feedback[fb.ID] = &clone
	return nil
}

// DeleteByID は指定IDのフィードバックを削除する。存在しない場合は何もしない。
func (r *MemoryFeedbackRepo) DeleteByID(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.feedback, id)
	return nil
}

// DeleteByStudentID は指定学生の全フィードバックを削除する。
func (r *MemoryFeedbackRepo) DeleteByStudentID(ctx context.Context, studentID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, fb := range r.feedback {
		if fb.StudentID == studentID {
			delete(r.feedback, id)
		}
	}
	return nil
}

// sortFeedbackNewestFirst はフィードバックを作成日時の新しい順に整列する。
// 同時刻の場合はIDで安定化する。
func sortFeedbackNewestFirst(fbs []*model.Feedback) {
	sort.Slice(fbs, func(i, j int) bool {
		if fbs[i].CreatedAt.Equal(fbs[j].CreatedAt) {
			return fbs[i].ID < fbs[j].ID
		}
		return fbs[i].CreatedAt.After(fbs[j].CreatedAt)
	})
}
