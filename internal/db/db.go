package db

import (
	"fmt"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	glog "gorm.io/gorm/logger"

	"github.com/chatmultimodel/backend/internal/conv"
	"github.com/chatmultimodel/backend/internal/models"
	"github.com/chatmultimodel/backend/internal/settings"
)

// Open connects to the configured database. driver is "sqlite" (default,
// dsn is a file path or file::memory: URI) or "mysql" (dsn in go-sql-driver
// format).
func Open(driver, dsn string) (*gorm.DB, error) {
	cfg := &gorm.Config{
		Logger:         glog.Default.LogMode(glog.Silent),
		TranslateError: true,
	}

	switch driver {
	case "", "sqlite":
		return gorm.Open(sqlite.Open(dsn), cfg)
	case "mysql":
		return gorm.Open(mysql.Open(dsn), cfg)
	default:
		return nil, fmt.Errorf("db: unsupported driver %q", driver)
	}
}

// Migrate creates the four tables backing the persistence subsystem.
func Migrate(gdb *gorm.DB) error {
	return gdb.AutoMigrate(
		&models.User{},
		&conv.Conversation{},
		&conv.Message{},
		&settings.UserSettings{},
	)
}
