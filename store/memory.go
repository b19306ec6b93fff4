package store

import (
	"context"
	"slices"
	"sync"
	"sync/atomic"
	"time"
)

// MemoryRepository keeps records in process. Ids come from a counter shared by all owners
// and are never reused.
type MemoryRepository[T any, P Record[T]] struct {
	mu     sync.RWMutex
	nextID atomic.Uint64
	rows   map[uint]T
	now    func() time.Time
}

func NewMemoryRepository[T any, P Record[T]]() *MemoryRepository[T, P] {
	return &MemoryRepository[T, P]{
		rows: make(map[uint]T),
		now:  time.Now,
	}
}

func (r *MemoryRepository[T, P]) Create(ctx context.Context, rec *T) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	meta := P(rec).Meta()
	now := r.now()

	r.mu.Lock()
	defer r.mu.Unlock()
	meta.ID = uint(r.nextID.Add(1))
	meta.CreatedAt = now
	meta.UpdatedAt = now
	r.rows[meta.ID] = *rec
	return nil
}

func (r *MemoryRepository[T, P]) List(ctx context.Context, userID uint) ([]T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	out := make([]T, 0)
	for _, row := range r.rows {
		if P(&row).Meta().UserID == userID {
			out = append(out, row)
		}
	}
	r.mu.RUnlock()

	slices.SortFunc(out, func(a, b T) int {
		return int(P(&a).Meta().ID) - int(P(&b).Meta().ID)
	})
	return out, nil
}

func (r *MemoryRepository[T, P]) Get(ctx context.Context, id, userID uint) (*T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	row, ok := r.owned(id, userID)
	if !ok {
		return nil, ErrNotFound
	}
	return &row, nil
}

func (r *MemoryRepository[T, P]) Update(ctx context.Context, id, userID uint, apply func(*T) error) (*T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.owned(id, userID)
	if !ok {
		return nil, ErrNotFound
	}
	before := *P(&row).Meta()
	if err := apply(&row); err != nil {
		return nil, err
	}
	meta := P(&row).Meta()
	meta.ID, meta.UserID, meta.CreatedAt = before.ID, before.UserID, before.CreatedAt
	meta.UpdatedAt = r.now()
	r.rows[id] = row
	return &row, nil
}

func (r *MemoryRepository[T, P]) Delete(ctx context.Context, id, userID uint) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.owned(id, userID); !ok {
		return false, nil
	}
	delete(r.rows, id)
	return true, nil
}

// owned must be called with the lock held.
func (r *MemoryRepository[T, P]) owned(id, userID uint) (T, bool) {
	row, ok := r.rows[id]
	if !ok || P(&row).Meta().UserID != userID {
		var zero T
		return zero, false
	}
	return row, true
}
