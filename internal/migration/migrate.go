package migration

import (
	"github.com/mingle/mingle-backend/internal/domain"
	"github.com/mingle/mingle-backend/pkg/logger"
	"gorm.io/gorm"
)

// Run applies the schema for all chat models
func Run(db *gorm.DB) error {
	err := db.AutoMigrate(
		&domain.User{},
		&domain.Group{},
		&domain.Conversation{},
		&domain.Participant{},
		&domain.Message{},
		&domain.Gift{},
		&domain.UserBlock{},
		&domain.Notification{},
	)
	if err != nil {
		return err
	}
	logger.GetLogger().Info().Msg("database migration complete")
	return nil
}
