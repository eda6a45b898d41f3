package services_test

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/bionicotaku/hidescore-services-catalog/internal/models/po"
	"github.com/bionicotaku/hidescore-services-catalog/internal/repositories"

	"github.com/bionicotaku/lingo-utils/txmanager"
	"github.com/google/uuid"
)

// memUsers 是 UserStore 的内存实现；删除用户时级联清理 memCatalog 中的评分。
type memUsers struct {
	mu     sync.Mutex
	users  map[uuid.UUID]*po.User
	cat    *memCatalog
	locked []uuid.UUID
}

func newMemUsers(cat *memCatalog) *memUsers {
	return &memUsers{users: map[uuid.UUID]*po.User{}, cat: cat}
}

func (m *memUsers) add(email, name string, admin bool) *po.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	u := &po.User{ID: uuid.New(), Email: email, DisplayName: name, IsAdmin: admin, CreatedAt: time.Now()}
	m.users[u.ID] = u
	return u
}

func (m *memUsers) Create(_ context.Context, _ txmanager.Session, user *po.User) (*po.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.users {
		if existing.Email == user.Email {
			return nil, repositories.ErrEmailTaken
		}
	}
	clone := *user
	if clone.ID == uuid.Nil {
		clone.ID = uuid.New()
	}
	clone.CreatedAt = time.Now()
	m.users[clone.ID] = &clone
	out := clone
	return &out, nil
}

func (m *memUsers) FindByID(_ context.Context, _ txmanager.Session, id uuid.UUID) (*po.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, repositories.ErrUserNotFound
	}
	clone := *u
	return &clone, nil
}

func (m *memUsers) LockByID(ctx context.Context, sess txmanager.Session, id uuid.UUID) (*po.User, error) {
	u, err := m.FindByID(ctx, sess, id)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	m.locked = append(m.locked, id)
	m.mu.Unlock()
	return u, nil
}

func (m *memUsers) FindByEmail(_ context.Context, _ txmanager.Session, email string) (*po.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			clone := *u
			return &clone, nil
		}
	}
	return nil, repositories.ErrUserNotFound
}

func (m *memUsers) List(context.Context, txmanager.Session) ([]*po.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*po.User, 0, len(m.users))
	for _, u := range m.users {
		clone := *u
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (m *memUsers) Update(_ context.Context, _ txmanager.Session, user *po.User) (*po.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[user.ID]; !ok {
		return nil, repositories.ErrUserNotFound
	}
	clone := *user
	m.users[user.ID] = &clone
	out := clone
	return &out, nil
}

func (m *memUsers) Delete(_ context.Context, _ txmanager.Session, id uuid.UUID) error {
	m.mu.Lock()
	if _, ok := m.users[id]; !ok {
		m.mu.Unlock()
		return repositories.ErrUserNotFound
	}
	delete(m.users, id)
	m.mu.Unlock()
	if m.cat != nil {
		m.cat.deleteRatingsByUser(id)
	}
	return nil
}

func (m *memUsers) Count(context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.users)), nil
}

// memComments 是 CommentStore 的内存实现。
type memComments struct {
	mu       sync.Mutex
	comments map[uuid.UUID]*po.Comment
	cat      *memCatalog
	users    *memUsers
}

func newMemComments(cat *memCatalog, users *memUsers) *memComments {
	return &memComments{comments: map[uuid.UUID]*po.Comment{}, cat: cat, users: users}
}

func (m *memComments) Create(_ context.Context, _ txmanager.Session, comment *po.Comment) (*po.Comment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	clone := *comment
	if clone.ID == uuid.Nil {
		clone.ID = uuid.New()
	}
	clone.CreatedAt = time.Now()
	m.comments[clone.ID] = &clone
	out := clone
	return &out, nil
}

func (m *memComments) FindByID(_ context.Context, _ txmanager.Session, id uuid.UUID) (*po.Comment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.comments[id]
	if !ok {
		return nil, repositories.ErrCommentNotFound
	}
	clone := *c
	return &clone, nil
}

func (m *memComments) Delete(_ context.Context, _ txmanager.Session, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.comments[id]; !ok {
		return repositories.ErrCommentNotFound
	}
	delete(m.comments, id)
	return nil
}

func (m *memComments) ListByContent(ctx context.Context, sess txmanager.Session, contentID uuid.UUID) ([]*po.CommentWithAuthor, error) {
	return m.list(ctx, sess, func(c *po.Comment) bool { return c.ContentID == contentID })
}

func (m *memComments) ListByUser(ctx context.Context, sess txmanager.Session, userID uuid.UUID) ([]*po.CommentWithAuthor, error) {
	return m.list(ctx, sess, func(c *po.Comment) bool { return c.UserID == userID })
}

func (m *memComments) list(ctx context.Context, sess txmanager.Session, match func(*po.Comment) bool) ([]*po.CommentWithAuthor, error) {
	m.mu.Lock()
	var matched []po.Comment
	for _, c := range m.comments {
		if match(c) {
			matched = append(matched, *c)
		}
	}
	m.mu.Unlock()

	out := make([]*po.CommentWithAuthor, 0, len(matched))
	for _, c := range matched {
		entry := &po.CommentWithAuthor{Comment: c}
		if u, err := m.users.FindByID(ctx, sess, c.UserID); err == nil {
			entry.AuthorName = u.DisplayName
		}
		if item, err := m.cat.FindByID(ctx, sess, c.ContentID); err == nil {
			entry.ContentKind = item.Kind
		}
		out = append(out, entry)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}
