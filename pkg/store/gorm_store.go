package store

import (
	"fmt"
	"strings"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"edumate/pkg/domain"
)

// GormStore implements Store using GORM + Postgres. The handle is opened
// once at construction and shared for the store's lifetime; every method
// runs as its own transaction, so sequential calls from one caller
// observe a linearizable view.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore opens the database and runs auto-migrations.
func NewGormStore(dsn string) (*GormStore, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, fmt.Errorf("%w: empty dsn", ErrUnavailable)
	}
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if err := db.AutoMigrate(&ContentModel{}); err != nil {
		return nil, fmt.Errorf("%w: auto migrate: %v", ErrUnavailable, err)
	}
	return &GormStore{db: db}, nil
}

// Create persists a new record and returns it with the assigned ID.
func (s *GormStore) Create(c domain.NewContent) (domain.ContentRecord, error) {
	rec := recordFromNew(c)
	model := contentToModel(rec)
	model.ID = 0
	if err := s.db.Create(&model).Error; err != nil {
		return domain.ContentRecord{}, fmt.Errorf("%w: %v", ErrWriteFailed, err)
	}
	rec.ID = model.ID
	return rec, nil
}

// ListAll returns every record in insertion (id) order.
func (s *GormStore) ListAll() ([]domain.ContentRecord, error) {
	var models []ContentModel
	if err := s.db.Order("id ASC").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("%w: %v", ErrReadFailed, err)
	}
	res := make([]domain.ContentRecord, 0, len(models))
	for _, m := range models {
		res = append(res, contentFromModel(m))
	}
	return res, nil
}

// GetByID retrieves one record.
func (s *GormStore) GetByID(id int64) (domain.ContentRecord, bool, error) {
	var model ContentModel
	if err := s.db.First(&model, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return domain.ContentRecord{}, false, nil
		}
		return domain.ContentRecord{}, false, fmt.Errorf("%w: %v", ErrReadFailed, err)
	}
	return contentFromModel(model), true, nil
}

// DeleteByID removes one record. Absent IDs are a no-op.
func (s *GormStore) DeleteByID(id int64) error {
	if err := s.db.Delete(&ContentModel{}, "id = ?", id).Error; err != nil {
		return fmt.Errorf("%w: %v", ErrDeleteFailed, err)
	}
	return nil
}

// ClearAll removes every record.
func (s *GormStore) ClearAll() error {
	if err := s.db.Where("1 = 1").Delete(&ContentModel{}).Error; err != nil {
		return fmt.Errorf("%w: %v", ErrDeleteFailed, err)
	}
	return nil
}

func recordFromNew(c domain.NewContent) domain.ContentRecord {
	title := strings.TrimSpace(c.Title)
	if title == "" {
		title = PlaceholderTitle
	}
	return domain.ContentRecord{
		Title:        title,
		Type:         c.Type,
		Result:       c.Result,
		OriginalText: c.OriginalText,
		FileType:     c.FileType,
		Timestamp:    c.Timestamp,
		Options:      c.Options,
	}
}
