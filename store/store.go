package store

import (
	"context"
	"errors"

	"github.com/yourusername/freelancedesk/models"
	"gorm.io/gorm"
)

// ErrNotFound is returned for missing ids and for ids owned by another user alike.
var ErrNotFound = errors.New("record not found")

// Record is the pointer side of a stored entity.
type Record[T any] interface {
	*T
	Meta() *models.Base
}

// Repository is owner-scoped CRUD over one entity type.
type Repository[T any] interface {
	Create(ctx context.Context, rec *T) error
	List(ctx context.Context, userID uint) ([]T, error)
	Get(ctx context.Context, id, userID uint) (*T, error)
	// Update loads the owned record, hands it to apply and persists the result.
	// An error from apply aborts the update.
	Update(ctx context.Context, id, userID uint, apply func(*T) error) (*T, error)
	Delete(ctx context.Context, id, userID uint) (bool, error)
}

type Store struct {
	Clients  Repository[models.Client]
	Invoices Repository[models.Invoice]
	Expenses Repository[models.Expense]
	Payments Repository[models.Payment]
}

func NewMemory() *Store {
	return &Store{
		Clients:  NewMemoryRepository[models.Client](),
		Invoices: NewMemoryRepository[models.Invoice](),
		Expenses: NewMemoryRepository[models.Expense](),
		Payments: NewMemoryRepository[models.Payment](),
	}
}

func NewGorm(db *gorm.DB) *Store {
	return &Store{
		Clients:  NewGormRepository[models.Client](db),
		Invoices: NewGormRepository[models.Invoice](db),
		Expenses: NewGormRepository[models.Expense](db),
		Payments: NewGormRepository[models.Payment](db),
	}
}

// Models lists every persisted entity, in migration order.
func Models() []any {
	return []any{&models.Client{}, &models.Invoice{}, &models.Expense{}, &models.Payment{}}
}
