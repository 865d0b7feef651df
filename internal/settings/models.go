package settings

import (
	"time"

	"gorm.io/datatypes"
)

// Defaults applied on lazy creation, matching the deployed inference host.
const (
	DefaultModel       = "llama2"
	DefaultTemperature = 0.7
)

// UserSettings holds per-user preferences. At most one row per user; the
// unique index plus upsert-on-conflict keeps it that way under concurrent
// first reads.
type UserSettings struct {
	ID             uint64                      `gorm:"primaryKey;autoIncrement" json:"-"`
	UserID         uint64                      `gorm:"uniqueIndex;not null" json:"-"`
	DefaultModel   string                      `gorm:"type:varchar(128);not null" json:"default_model"`
	Temperature    float64                     `gorm:"not null" json:"temperature"`
	FavoriteModels datatypes.JSONSlice[string] `json:"favorite_models"`
	CreatedAt      time.Time                   `json:"-"`
	UpdatedAt      time.Time                   `json:"-"`
}

func (UserSettings) TableName() string { return "user_settings" }
