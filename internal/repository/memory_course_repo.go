package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/hitoshi/classpulse/internal/model"
)

// MemoryCourseRepo はCourseRepositoryのメモリ実装。
type MemoryCourseRepo struct {
	mu      sync.RWMutex
	courses map[string]*model.Course
}

// NewMemoryCourseRepo はMemoryCourseRepoの新しいインスタンスを生成する。
func NewMemoryCourseRepo() *MemoryCourseRepo {
	return &MemoryCourseRepo{
		courses: make(map[string]*model.Course),
	}
}

// FindByID は指定IDのコースを取得する。見つからない場合はnilを返す。
func (r *MemoryCourseRepo) FindByID(ctx context.Context, id string) (*model.Course, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.courses[id]
	if !ok {
		return nil, nil
	}
	clone := *c
	return &clone, nil
}

// List は全コースのコピーを作成日時順で返す。
func (r *MemoryCourseRepo) List(ctx context.Context) ([]*model.Course, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	res := make([]*model.Course, 0, len(r.courses))
	for _, c := range r.courses {
		clone := *c
		res = append(res, &clone)
	}
	sort.Slice(res, func(i, j int) bool {
		if res[i].CreatedAt.Equal(res[j].CreatedAt) {
			return res[i].ID < res[j].ID
		}
		return res[i].CreatedAt.Before(res[j].CreatedAt)
	})
	return res, nil
}

// Create はコースを作成する。同一IDが既に存在する場合はエラーを返す。
func (r *MemoryCourseRepo) Create(ctx context.Context, course *model.Course) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.courses[course.ID]; ok {
		return fmt.Errorf("コースIDが重複しています: %s", course.ID)
	}
	clone := *course
	r.courses[course.ID] = &clone
	return nil
}

// Update はコースを上書き更新する。存在しない場合はエラーを返す。
func (r *MemoryCourseRepo) Update(ctx context.Context, course *model.Course) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.courses[course.ID]; !ok {
		return fmt.Errorf("更新対象のコースが存在しません: %s", course.ID)
	}
	clone := *course
	r.courses[course.ID] = &clone
	return nil
}

// DeleteByID は指定IDのコースを削除する。存在しない場合は何もしない。
// コースに紐づくフィードバックは削除しない。フィードバック側が
// コース名のスナップショットを保持しているため、履歴として参照可能なまま残る。
func (r *MemoryCourseRepo) DeleteByID(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.courses, id)
	return nil
}
