package services_test

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/bionicotaku/hidescore-services-catalog/internal/models/po"
	"github.com/bionicotaku/hidescore-services-catalog/internal/repositories"

	"github.com/bionicotaku/lingo-utils/txmanager"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type noopTxManager struct{}

type noopSession struct{}

func (noopSession) Tx() pgx.Tx               { return nil }
func (noopSession) Context() context.Context { return context.Background() }

func (noopTxManager) WithinTx(ctx context.Context, _ txmanager.TxOptions, fn func(context.Context, txmanager.Session) error) error {
	return fn(ctx, noopSession{})
}

func (noopTxManager) WithinReadOnlyTx(ctx context.Context, _ txmanager.TxOptions, fn func(context.Context, txmanager.Session) error) error {
	return fn(ctx, noopSession{})
}

// memCatalog 是内容、评分与 Outbox 的内存实现，聚合计算与 SQL 版本保持同一语义。
type memCatalog struct {
	mu            sync.Mutex
	contents      map[uuid.UUID]*po.ContentItem
	ratings       map[uuid.UUID]*po.Rating
	outbox        []repositories.OutboxMessage
	failRecompute bool
}

func newMemCatalog() *memCatalog {
	return &memCatalog{
		contents: map[uuid.UUID]*po.ContentItem{},
		ratings:  map[uuid.UUID]*po.Rating{},
	}
}

func (m *memCatalog) addContent(kind po.ContentKind, title string, year int32, genres ...string) *po.ContentItem {
	m.mu.Lock()
	defer m.mu.Unlock()
	item := &po.ContentItem{
		ID:          uuid.New(),
		Kind:        kind,
		Title:       title,
		Description: title + " description",
		ReleaseYear: year,
		Genres:      genres,
		CreatedAt:   time.Now(),
	}
	m.contents[item.ID] = item
	return item
}

func (m *memCatalog) content(id uuid.UUID) po.ContentItem {
	m.mu.Lock()
	defer m.mu.Unlock()
	return *m.contents[id]
}

func (m *memCatalog) events() []repositories.OutboxMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]repositories.OutboxMessage(nil), m.outbox...)
}

// ---- RatingContentStore / ContentReader / ContentWriter ----

func (m *memCatalog) FindByID(_ context.Context, _ txmanager.Session, id uuid.UUID) (*po.ContentItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	item, ok := m.contents[id]
	if !ok {
		return nil, repositories.ErrContentNotFound
	}
	clone := *item
	return &clone, nil
}

func (m *memCatalog) LockByID(ctx context.Context, sess txmanager.Session, id uuid.UUID) (*po.ContentItem, error) {
	return m.FindByID(ctx, sess, id)
}

func (m *memCatalog) RecomputeRatingAggregate(_ context.Context, _ txmanager.Session, id uuid.UUID) (*po.RatingAggregate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failRecompute {
		return nil, errors.New("recompute exploded")
	}
	item, ok := m.contents[id]
	if !ok {
		return nil, repositories.ErrContentNotFound
	}
	var (
		sum   float64
		count int32
	)
	for _, r := range m.ratings {
		if r.ContentID == id {
			sum += r.Value
			count++
		}
	}
	item.RatingCount = count
	item.AverageRating = 0
	if count > 0 {
		item.AverageRating = sum / float64(count)
	}
	return &po.RatingAggregate{ContentID: id, AverageRating: item.AverageRating, RatingCount: item.RatingCount}, nil
}

func (m *memCatalog) List(_ context.Context, _ txmanager.Session, kind po.ContentKind, filter repositories.ContentFilter) ([]*po.ContentItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*po.ContentItem
	for _, item := range m.contents {
		if item.Kind == kind {
			clone := *item
			out = append(out, &clone)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if filter.Sort == repositories.SortRating {
			return out[i].AverageRating > out[j].AverageRating
		}
		return out[i].RatingCount > out[j].RatingCount
	})
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (m *memCatalog) Similar(_ context.Context, _ txmanager.Session, item *po.ContentItem, limit int) ([]*po.ContentItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*po.ContentItem{}
	for _, candidate := range m.contents {
		if candidate.ID == item.ID || candidate.Kind != item.Kind || !sharesGenre(candidate.Genres, item.Genres) {
			continue
		}
		clone := *candidate
		out = append(out, &clone)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (m *memCatalog) Create(_ context.Context, _ txmanager.Session, item *po.ContentItem) (*po.ContentItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	clone := *item
	if clone.ID == uuid.Nil {
		clone.ID = uuid.New()
	}
	clone.CreatedAt = time.Now()
	m.contents[clone.ID] = &clone
	out := clone
	return &out, nil
}

func (m *memCatalog) Update(_ context.Context, _ txmanager.Session, item *po.ContentItem) (*po.ContentItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.contents[item.ID]
	if !ok || existing.Kind != item.Kind {
		return nil, repositories.ErrContentNotFound
	}
	clone := *item
	clone.AverageRating = existing.AverageRating
	clone.RatingCount = existing.RatingCount
	m.contents[item.ID] = &clone
	out := clone
	return &out, nil
}

func (m *memCatalog) Delete(_ context.Context, _ txmanager.Session, kind po.ContentKind, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.contents[id]
	if !ok || existing.Kind != kind {
		return repositories.ErrContentNotFound
	}
	delete(m.contents, id)
	for rid, r := range m.ratings {
		if r.ContentID == id {
			delete(m.ratings, rid)
		}
	}
	return nil
}

func (m *memCatalog) CountByKind(_ context.Context, kind po.ContentKind) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, item := range m.contents {
		if item.Kind == kind {
			n++
		}
	}
	return n, nil
}

// ---- OutboxWriter ----

func (m *memCatalog) Enqueue(_ context.Context, _ txmanager.Session, msg repositories.OutboxMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.outbox = append(m.outbox, msg)
	return nil
}

// memRatings 实现 RatingStore，与 memCatalog 共享评分表。
type memRatings struct {
	cat *memCatalog
}

func (r memRatings) Upsert(_ context.Context, _ txmanager.Session, rating *po.Rating) (*repositories.UpsertResult, error) {
	r.cat.mu.Lock()
	defer r.cat.mu.Unlock()
	if _, ok := r.cat.contents[rating.ContentID]; !ok {
		return nil, repositories.ErrReferenceNotFound
	}
	for _, existing := range r.cat.ratings {
		if existing.UserID == rating.UserID && existing.ContentID == rating.ContentID {
			existing.Value = rating.Value
			existing.Review = rating.Review
			existing.UpdatedAt = time.Now()
			clone := *existing
			return &repositories.UpsertResult{Rating: &clone, Inserted: false}, nil
		}
	}
	clone := *rating
	if clone.ID == uuid.Nil {
		clone.ID = uuid.New()
	}
	clone.CreatedAt = time.Now()
	clone.UpdatedAt = clone.CreatedAt
	r.cat.ratings[clone.ID] = &clone
	out := clone
	return &repositories.UpsertResult{Rating: &out, Inserted: true}, nil
}

func (r memRatings) FindByID(_ context.Context, _ txmanager.Session, id uuid.UUID) (*po.Rating, error) {
	r.cat.mu.Lock()
	defer r.cat.mu.Unlock()
	existing, ok := r.cat.ratings[id]
	if !ok {
		return nil, repositories.ErrRatingNotFound
	}
	clone := *existing
	return &clone, nil
}

func (r memRatings) Update(_ context.Context, _ txmanager.Session, id uuid.UUID, value *float64, review *string) (*po.Rating, error) {
	r.cat.mu.Lock()
	defer r.cat.mu.Unlock()
	existing, ok := r.cat.ratings[id]
	if !ok {
		return nil, repositories.ErrRatingNotFound
	}
	if value != nil {
		existing.Value = *value
	}
	if review != nil {
		existing.Review = review
	}
	clone := *existing
	return &clone, nil
}

func (r memRatings) Delete(_ context.Context, _ txmanager.Session, id uuid.UUID) (*po.Rating, error) {
	r.cat.mu.Lock()
	defer r.cat.mu.Unlock()
	existing, ok := r.cat.ratings[id]
	if !ok {
		return nil, repositories.ErrRatingNotFound
	}
	delete(r.cat.ratings, id)
	return existing, nil
}

func (r memRatings) ListByContent(_ context.Context, _ txmanager.Session, contentID uuid.UUID) ([]*po.Rating, error) {
	r.cat.mu.Lock()
	defer r.cat.mu.Unlock()
	var out []*po.Rating
	for _, existing := range r.cat.ratings {
		if existing.ContentID == contentID {
			clone := *existing
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (r memRatings) ListByUser(_ context.Context, _ txmanager.Session, userID uuid.UUID) ([]*po.RatingWithContent, error) {
	r.cat.mu.Lock()
	defer r.cat.mu.Unlock()
	var out []*po.RatingWithContent
	for _, existing := range r.cat.ratings {
		if existing.UserID != userID {
			continue
		}
		item := r.cat.contents[existing.ContentID]
		out = append(out, &po.RatingWithContent{Rating: *existing, ContentKind: item.Kind, ContentTitle: item.Title})
	}
	return out, nil
}

func (r memRatings) ContentIDsByUser(_ context.Context, _ txmanager.Session, userID uuid.UUID) ([]uuid.UUID, error) {
	r.cat.mu.Lock()
	defer r.cat.mu.Unlock()
	seen := map[uuid.UUID]struct{}{}
	var out []uuid.UUID
	for _, existing := range r.cat.ratings {
		if existing.UserID != userID {
			continue
		}
		if _, ok := seen[existing.ContentID]; ok {
			continue
		}
		seen[existing.ContentID] = struct{}{}
		out = append(out, existing.ContentID)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out, nil
}

func (r memRatings) Count(context.Context) (int64, error) {
	r.cat.mu.Lock()
	defer r.cat.mu.Unlock()
	return int64(len(r.cat.ratings)), nil
}

// deleteRatingsByUser 模拟外键级联。
func (m *memCatalog) deleteRatingsByUser(userID uuid.UUID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, r := range m.ratings {
		if r.UserID == userID {
			delete(m.ratings, id)
		}
	}
}

func sharesGenre(a, b []string) bool {
	for _, x := range a {
		for _, y := range b {
			if x == y {
				return true
			}
		}
	}
	return false
}
