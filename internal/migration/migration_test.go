package migration

import (
	"io/fs"
	"strings"
	"testing"

	categorydomain "github.com/smallbiznis/rentbook/internal/category/domain"
	"github.com/smallbiznis/rentbook/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedMigrationsArePaired(t *testing.T) {
	entries, err := fs.ReadDir(embeddedMigrations, migrationsDir)
	require.NoError(t, err)

	ups, downs := 0, 0
	for _, e := range entries {
		switch {
		case strings.HasSuffix(e.Name(), ".up.sql"):
			ups++
		case strings.HasSuffix(e.Name(), ".down.sql"):
			downs++
		}
	}
	assert.Equal(t, ups, downs)
	assert.GreaterOrEqual(t, ups, 2)
}

func TestRunAutoMigratesAndSeedsOnSQLite(t *testing.T) {
	conn, err := db.NewTest()
	require.NoError(t, err)

	require.NoError(t, Run(conn, db.TypeSQLitePure))
	// A second run is a no-op.
	require.NoError(t, Run(conn, db.TypeSQLitePure))

	for _, model := range Models() {
		assert.True(t, conn.Migrator().HasTable(model))
	}

	var count int64
	require.NoError(t, conn.Model(&categorydomain.ExpenseCategory{}).Where("code = ?", "other").Count(&count).Error)
	assert.Equal(t, int64(3), count)
}
