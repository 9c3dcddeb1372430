package cache

import (
	"context"
	"errors"
	"time"

	"github.com/yeremiapane/pastelaria-api/models"
	"github.com/yeremiapane/pastelaria-api/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DBStore keeps entries in the cache_dados table. Expired rows stay until
// the next Sweep but are never returned.
type DBStore struct {
	DB  *gorm.DB
	now func() time.Time
}

func NewDBStore(db *gorm.DB) *DBStore {
	return &DBStore{DB: db, now: utils.NowUTC}
}

func (s *DBStore) Get(ctx context.Context, key string) (string, bool, error) {
	var entry models.CacheEntry
	err := s.DB.WithContext(ctx).
		Where("chave = ? AND expires_at > ?", key, s.now()).
		Take(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return entry.Valor, true, nil
}

func (s *DBStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	entry := models.CacheEntry{
		Chave:     key,
		Valor:     value,
		ExpiresAt: s.now().Add(ttl),
	}
	return s.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "chave"}},
		DoUpdates: clause.AssignmentColumns([]string{"valor", "expires_at"}),
	}).Create(&entry).Error
}

func (s *DBStore) Delete(ctx context.Context, key string) error {
	return s.DB.WithContext(ctx).Where("chave = ?", key).Delete(&models.CacheEntry{}).Error
}

func (s *DBStore) DeletePattern(ctx context.Context, pattern string) (int64, error) {
	result := s.DB.WithContext(ctx).Where("chave LIKE ?", pattern).Delete(&models.CacheEntry{})
	return result.RowsAffected, result.Error
}

func (s *DBStore) Sweep(ctx context.Context) (int64, error) {
	result := s.DB.WithContext(ctx).Where("expires_at < ?", s.now()).Delete(&models.CacheEntry{})
	return result.RowsAffected, result.Error
}
