package store

import (
	"encoding/json"

	"gorm.io/datatypes"

	"edumate/pkg/domain"
)

// ContentModel is the GORM row backing one ContentRecord.
type ContentModel struct {
	ID           int64          `gorm:"primaryKey;autoIncrement"`
	Title        string         `gorm:"not null"`
	Type         string         `gorm:"not null;index"`
	Result       string         `gorm:"not null"`
	OriginalText string         `gorm:"not null"`
	FileType     string         `gorm:"not null"`
	Timestamp    int64          `gorm:"not null;index"`
	Options      datatypes.JSON `gorm:"type:jsonb"`
}

// TableName keeps the table name aligned with the record store name
// used by earlier revisions of the app.
func (ContentModel) TableName() string { return "contents" }

func contentToModel(r domain.ContentRecord) ContentModel {
	m := ContentModel{
		ID:           r.ID,
		Title:        r.Title,
		Type:         string(r.Type),
		Result:       r.Result,
		OriginalText: r.OriginalText,
		FileType:     r.FileType,
		Timestamp:    r.Timestamp,
	}
	if len(r.Options) > 0 {
		if raw, err := json.Marshal(r.Options); err == nil {
			m.Options = datatypes.JSON(raw)
		}
	}
	return m
}

func contentFromModel(m ContentModel) domain.ContentRecord {
	r := domain.ContentRecord{
		ID:           m.ID,
		Title:        m.Title,
		Type:         domain.OperationKind(m.Type),
		Result:       m.Result,
		OriginalText: m.OriginalText,
		FileType:     m.FileType,
		Timestamp:    m.Timestamp,
	}
	if len(m.Options) > 0 {
		var opts map[string]string
		if err := json.Unmarshal(m.Options, &opts); err == nil && len(opts) > 0 {
			r.Options = opts
		}
	}
	return r
}
