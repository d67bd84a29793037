package migrations

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:  logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })
	return db
}

func TestAutoMigrate_FreshDatabaseTwice(t *testing.T) {
	db := openTestDB(t)

	require.NoError(t, AutoMigrate(db))
	require.NoError(t, AutoMigrate(db))

	var ids []string
	require.NoError(t, db.Model(&MigrationRecord{}).Order("id").Pluck("id", &ids).Error)
	assert.Equal(t, []string{"001_reminder_indexes", "002_leaderboard_indexes"}, ids)
}

func TestMigratorRun_DependencyOrder(t *testing.T) {
	db := openTestDB(t)
	var ran []string
	step := func(id string, deps ...string) Migration {
		return Migration{
			ID:        id,
			Name:      id,
			DependsOn: deps,
			Up: func(*gorm.DB) error {
				ran = append(ran, id)
				return nil
			},
		}
	}

	m := &Migrator{db: db, migrations: []Migration{step("a"), step("b", "a"), step("c", "a", "b")}}
	require.NoError(t, m.Run())
	assert.Equal(t, []string{"a", "b", "c"}, ran)

	// dependency declared on a later migration
	broken := &Migrator{db: db, migrations: []Migration{step("d", "e"), step("e")}}
	err := broken.Run()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "depends on e")
}
