package settings

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/chatmultimodel/backend/internal/apperr"
	"github.com/chatmultimodel/backend/internal/logger"
)

type Service struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewService(db *gorm.DB, log *logger.Logger) *Service {
	return &Service{db: db, log: log.With("service", "settings")}
}

// GetOrCreate returns the user's settings row, creating it with defaults on
// first read. ON CONFLICT DO NOTHING against the user_id unique index means
// exactly one row wins under concurrent first reads; the follow-up read
// returns whichever row committed.
func (s *Service) GetOrCreate(ctx context.Context, userID uint64) (*UserSettings, error) {
	row := UserSettings{
		UserID:         userID,
		DefaultModel:   DefaultModel,
		Temperature:    DefaultTemperature,
		FavoriteModels: []string{},
	}
	if err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoNothing: true,
		}).
		Create(&row).Error; err != nil {
		s.log.Error("store failure", "op", "get_or_create", "err", err)
		return nil, apperr.Persistence(err)
	}

	var out UserSettings
	if err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&out).Error; err != nil {
		s.log.Error("store failure", "op", "get_or_create", "err", err)
		return nil, apperr.Persistence(err)
	}
	return &out, nil
}

// Save updates only the supplied fields and returns the resulting row.
// Last write wins; a user is assumed to hold at most one settings-editing
// session at a time, which is documented rather than enforced.
func (s *Service) Save(ctx context.Context, userID uint64, model *string, temperature *float64, favorites []string) (*UserSettings, error) {
	if model != nil && strings.TrimSpace(*model) == "" {
		return nil, apperr.Validationf("model name required")
	}
	if temperature != nil && (*temperature < 0.0 || *temperature > 1.0) {
		return nil, apperr.Validationf("temperature %v outside [0.0, 1.0]", *temperature)
	}

	row, err := s.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if model != nil {
		updates["default_model"] = strings.TrimSpace(*model)
	}
	if temperature != nil {
		updates["temperature"] = *temperature
	}
	if favorites != nil {
		row.FavoriteModels = favorites
		updates["favorite_models"] = row.FavoriteModels
	}
	if len(updates) == 0 {
		return row, nil
	}

	if err := s.db.WithContext(ctx).
		Model(&UserSettings{}).
		Where("user_id = ?", userID).
		Updates(updates).Error; err != nil {
		s.log.Error("store failure", "op", "save", "err", err)
		return nil, apperr.Persistence(err)
	}

	var out UserSettings
	if err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&out).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrNotFound
		}
		s.log.Error("store failure", "op", "save", "err", err)
		return nil, apperr.Persistence(err)
	}
	return &out, nil
}
