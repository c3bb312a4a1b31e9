package repo

import (
	"context"

	"gorm.io/gorm"
)

// Base carries the connection every domain repository is bound to. Inside a
// transaction the repository is rebuilt with WithTx so all reads and writes
// share the same tx.
type Base struct {
	db *gorm.DB
}

func NewBase(db *gorm.DB) Base {
	return Base{db: db}
}

// DB returns the connection bound to ctx.
func (b Base) DB(ctx context.Context) *gorm.DB {
	if ctx == nil {
		return b.db
	}
	return b.db.WithContext(ctx)
}

// WithTx rebinds the base to tx. A nil tx keeps the current connection.
func (b Base) WithTx(tx *gorm.DB) Base {
	if tx == nil {
		return b
	}
	return Base{db: tx}
}

// Exists reports whether a row with the given id exists in table.
func (b Base) Exists(ctx context.Context, table string, id any) (bool, error) {
	var count int64
	if err := b.DB(ctx).Table(table).Where("id = ?", id).Limit(1).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
