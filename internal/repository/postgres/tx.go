package postgres

import (
	"context"

	"github.com/nedu/taskhub/internal/repository"
	"gorm.io/gorm"
)

type txManager struct {
	db *gorm.DB
}

// NewTxManager wraps the connection's transaction support. The
// callback gets repositories bound to the transaction; returning an
// error aborts and fully unwinds every write made through them.
func NewTxManager(db *gorm.DB) *txManager {
	return &txManager{db: db}
}

func (m *txManager) WithinTransaction(ctx context.Context, fn func(repos *repository.Repositories) error) error {
	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewRepositories(tx))
	})
}
