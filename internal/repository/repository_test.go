package repository

import (
	"testing"

	"github.com/mingle/mingle-backend/internal/domain"
	"github.com/mingle/mingle-backend/pkg/logger"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	logger.Init("test")

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	// A single connection keeps the in-memory database stable across
	// goroutines
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&domain.User{},
		&domain.Group{},
		&domain.Conversation{},
		&domain.Participant{},
		&domain.Message{},
		&domain.Gift{},
		&domain.UserBlock{},
		&domain.Notification{},
	))
	return db
}

func seedUsers(t *testing.T, db *gorm.DB, nicknames ...string) []*domain.User {
	t.Helper()
	users := make([]*domain.User, 0, len(nicknames))
	for _, nickname := range nicknames {
		u := &domain.User{Nickname: nickname}
		require.NoError(t, db.Create(u).Error)
		users = append(users, u)
	}
	return users
}
