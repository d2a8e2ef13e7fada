package storage

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/angelmondragon/storefront/pkg/db/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SQLStore persists durable keys in the kv_entries table under one namespace.
type SQLStore struct {
	db        *gorm.DB
	namespace string
	now       func() time.Time
}

// NewSQLStore binds the store to an open connection. The table must already
// exist (see pkg/migrate).
func NewSQLStore(db *gorm.DB, namespace string) *SQLStore {
	namespace = strings.TrimSpace(namespace)
	if namespace == "" {
		namespace = "default"
	}
	return &SQLStore{db: db, namespace: namespace, now: time.Now}
}

func (s *SQLStore) Get(ctx context.Context, key string) (string, bool, error) {
	var entry models.KVEntry
	err := s.db.WithContext(ctx).
		Where("namespace = ? AND key = ?", s.namespace, key).
		First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return entry.Value, true, nil
}

func (s *SQLStore) Set(ctx context.Context, key, value string) error {
	entry := models.KVEntry{
		Namespace: s.namespace,
		Key:       key,
		Value:     value,
		UpdatedAt: s.now().UTC(),
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "namespace"}, {Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&entry).Error
}

func (s *SQLStore) Remove(ctx context.Context, key string) error {
	return s.db.WithContext(ctx).
		Where("namespace = ? AND key = ?", s.namespace, key).
		Delete(&models.KVEntry{}).Error
}

// Close is a no-op; the connection is owned by pkg/db.
func (s *SQLStore) Close() error { return nil }
