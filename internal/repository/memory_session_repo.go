package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/hitoshi/classpulse/internal/model"
)

// MemorySessionRepo はSessionRepositoryのメモリ実装。
// 期限切れセッションは参照時に遅延削除する。
type MemorySessionRepo struct {
	mu       sync.RWMutex
	sessions map[string]*model.Session

	// now はテストで時刻を差し替えるためのフック。
	now func() time.Time
}

// NewMemorySessionRepo はMemorySessionRepoの新しいインスタンスを生成する。
func NewMemorySessionRepo() *MemorySessionRepo {
	return &MemorySessionRepo{
		sessions: make(map[string]*model.Session),
		now:      time.Now,
	}
}

// Create はセッションを作成する。
func (r *MemorySessionRepo) Create(ctx context.Context, session *model.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sessions[session.ID]; ok {
		return fmt.Errorf("セッションIDが重複しています")
	}
	clone := *session
	r.sessions[session.ID] = &clone
	return nil
}

// FindByID は指定IDのセッションを取得する。
// 見つからない場合および期限切れの場合はnilを返す。
// 期限切れセッションはこのタイミングで削除する。
func (r *MemorySessionRepo) FindByID(ctx context.Context, id string) (*model.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[id]
	if !ok {
		return nil, nil
	}
	if r.now().After(s.ExpiresAt) {
		delete(r.sessions, id)
		return nil, nil
	}
	clone := *s
	return &clone, nil
}

// DeleteByID は指定IDのセッションを削除する。存在しない場合は何もしない。
func (r *MemorySessionRepo) DeleteByID(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.sessions, id)
	return nil
}

// DeleteByUserID は指定ユーザーの全セッションを削除する。
func (r *MemorySessionRepo) DeleteByUserID(ctx context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, s := range r.sessions {
		if s.UserID == userID {
			delete(r.sessions, id)
		}
	}
	return nil
}
