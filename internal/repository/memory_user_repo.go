package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/hitoshi/classpulse/internal/model"
)

// MemoryUserRepo はUserRepositoryのメモリ実装。
// 全レコードを読み書きともコピーで受け渡し、呼び出し元が
// ストア内部の状態を直接変更できないようにする。
type MemoryUserRepo struct {
	mu    sync.RWMutex
	users map[string]*model.User
}

// NewMemoryUserRepo はMemoryUserRepoの新しいインスタンスを生成する。
func NewMemoryUserRepo() *MemoryUserRepo {
	return &MemoryUserRepo{
		users: make(map[string]*model.User),
	}
}

// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
func (r *MemoryUserRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	return cloneUser(u), nil
}

// FindByEmail はメールアドレス完全一致でユーザーを検索する。
func (r *MemoryUserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, nil
}

// List は全ユーザーのコピーを作成日時順で返す。
func (r *MemoryUserRepo) List(ctx context.Context) ([]*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	res := make([]*model.User, 0, len(r.users))
	for _, u := range r.users {
		res = append(res, cloneUser(u))
	}
	sort.Slice(res, func(i, j int) bool {
		if res[i].CreatedAt.Equal(res[j].CreatedAt) {
			return res[i].ID < res[j].ID
		}
		return res[i].CreatedAt.Before(res[j].CreatedAt)
	})
	return res, nil
}

// Create はユーザーを作成する。同一IDが既に存在する場合はエラーを返す。
func (r *MemoryUserRepo) Create(ctx context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[user.ID]; ok {
		return fmt.Errorf("ユーザーIDが重複しています: %s", user.ID)
	}
	r.users[user.ID] = cloneUser(user)
	return nil
}

// Update はユーザーを上書き更新する。存在しない場合はエラーを返す。
func (r *MemoryUserRepo) Update(ctx context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[user.ID]; !ok {
		return fmt.Errorf("更新対象のユーザーが存在しません: %s", user.ID)
	}
	r.users[user.ID] = cloneUser(user)
	return nil
}

// DeleteByID は指定IDのユーザーを削除する。存在しない場合は何もしない。
func (r *MemoryUserRepo) DeleteByID(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.users, id)
	return nil
}

// cloneUser はUserのディープコピーを返す。
func cloneUser(u *model.User) *model.User {
	c := *u
	if u.DateOfBirth != nil {
		dob := *u.DateOfBirth
		c.DateOfBirth = &dob
	}
	return &c
}
