package db

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestIsDuplicateKeyErr(t *testing.T) {
	assert.False(t, IsDuplicateKeyErr(nil))
	assert.False(t, IsDuplicateKeyErr(errors.New("connection reset")))
	assert.True(t, IsDuplicateKeyErr(gorm.ErrDuplicatedKey))
	assert.True(t, IsDuplicateKeyErr(fmt.Errorf("insert invoice: %w", &pgconn.PgError{Code: "23505"})))
	assert.False(t, IsDuplicateKeyErr(&pgconn.PgError{Code: "23503"}))
	assert.True(t, IsDuplicateKeyErr(errors.New("Error 1062 (23000): Duplicate entry")))
	assert.True(t, IsDuplicateKeyErr(errors.New("UNIQUE constraint failed: invoices.contract_id")))
}

type uniqueRow struct {
	ID   int64  `gorm:"primaryKey"`
	Code string `gorm:"uniqueIndex"`
}

func TestNewTestIsolatedAndTranslatesDuplicates(t *testing.T) {
	first, err := NewTest()
	require.NoError(t, err)
	second, err := NewTest()
	require.NoError(t, err)

	require.NoError(t, first.AutoMigrate(&uniqueRow{}))
	require.NoError(t, first.Create(&uniqueRow{ID: 1, Code: "wifi"}).Error)

	err = first.Create(&uniqueRow{ID: 2, Code: "wifi"}).Error
	require.Error(t, err)
	assert.True(t, IsDuplicateKeyErr(err))

	assert.False(t, second.Migrator().HasTable(&uniqueRow{}))
}
