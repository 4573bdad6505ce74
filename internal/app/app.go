// Package app wires the store, gateway and object storage into the
// operations the HTTP layer exposes.
package app

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"edumate/internal/util"
	"edumate/pkg/ai"
	"edumate/pkg/domain"
	"edumate/pkg/export"
	"edumate/pkg/ingest"
	"edumate/pkg/stats"
	"edumate/pkg/storage"
	"edumate/pkg/store"
)

// MinTextLen is the minimum input length accepted for processing.
const MinTextLen = 10

// directInputTitle labels records created from pasted text rather than
// an uploaded file.
const directInputTitle = "Direct text input"

// archiveURLTTL bounds how long a presigned archive link stays valid.
const archiveURLTTL = 15 * time.Minute

// Config holds runtime configuration for the core application.
type Config struct {
	DatabaseURL string
	Store       store.Store
	Gateway     *ai.Gateway
	Objects     storage.ObjectStore
}

// App is the core application service tying storage and domain logic
// together.
type App struct {
	store   store.Store
	gateway *ai.Gateway
	objects storage.ObjectStore
}

// New constructs the application. The store is built exactly once here;
// an injected Store wins, otherwise DatabaseURL selects postgres.
func New(cfg Config) (*App, error) {
	if cfg.Gateway == nil {
		return nil, fmt.Errorf("transformation gateway required")
	}

	dataStore := cfg.Store
	if dataStore == nil {
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("database URL required (no store injected)")
		}
		var err error
		dataStore, err = store.NewGormStore(cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("init postgres store: %w", err)
		}
	}

	return &App{
		store:   dataStore,
		gateway: cfg.Gateway,
		objects: cfg.Objects,
	}, nil
}

// ProcessInput describes one transformation request over pasted text.
type ProcessInput struct {
	Title   string
	Kind    domain.OperationKind
	Text    string
	Options ai.Options
}

// Process runs one transformation and persists the result as a new
// record. Progress events are logged at debug level.
func (a *App) Process(ctx context.Context, in ProcessInput) (domain.ContentRecord, error) {
	text := strings.TrimSpace(in.Text)
	if len(text) < MinTextLen {
		return domain.ContentRecord{}, ErrTextTooShort
	}

	logger := util.LoggerFromContext(ctx)
	result, err := a.gateway.Transform(ctx, in.Kind, text, in.Options, func(ev ai.ProgressEvent) {
		logger.Debug("transform_progress", "phase", string(ev.Phase), "message", ev.Message)
	})
	if err != nil {
		return domain.ContentRecord{}, err
	}

	title := strings.TrimSpace(in.Title)
	if title == "" {
		title = directInputTitle
	}
	record, err := a.store.Create(domain.NewContent{
		Title:        title,
		Type:         in.Kind,
		Result:       result,
		OriginalText: text,
		FileType:     "text/plain",
		Timestamp:    time.Now().UnixMilli(),
		Options:      in.Options.Map(),
	})
	if err != nil {
		return domain.ContentRecord{}, fmt.Errorf("save content: %w", err)
	}
	return record, nil
}

// UploadInput describes one transformation request over an uploaded
// file.
type UploadInput struct {
	Filename string
	Data     []byte
	Kind     domain.OperationKind
	Options  ai.Options
}

// ProcessUpload extracts text from the file, runs the transformation
// and persists the result. When object storage is configured the
// original file is kept alongside for later retrieval.
func (a *App) ProcessUpload(ctx context.Context, in UploadInput) (domain.ContentRecord, error) {
	text, err := ingest.Extract(in.Filename, in.Data)
	if err != nil {
		return domain.ContentRecord{}, err
	}
	if len(text) < MinTextLen {
		return domain.ContentRecord{}, ErrTextTooShort
	}

	logger := util.LoggerFromContext(ctx)
	result, err := a.gateway.Transform(ctx, in.Kind, text, in.Options, func(ev ai.ProgressEvent) {
		logger.Debug("transform_progress", "phase", string(ev.Phase), "message", ev.Message)
	})
	if err != nil {
		return domain.ContentRecord{}, err
	}

	record, err := a.store.Create(domain.NewContent{
		Title:        filepath.Base(in.Filename),
		Type:         in.Kind,
		Result:       result,
		OriginalText: text,
		FileType:     ingest.MIMEType(in.Filename),
		Timestamp:    time.Now().UnixMilli(),
		Options:      in.Options.Map(),
	})
	if err != nil {
		return domain.ContentRecord{}, fmt.Errorf("save content: %w", err)
	}

	if a.objects != nil {
		key := fmt.Sprintf("uploads/%d/%s", record.ID, filepath.Base(in.Filename))
		if err := a.objects.Put(ctx, key, bytes.NewReader(in.Data), int64(len(in.Data)), ingest.MIMEType(in.Filename)); err != nil {
			// The record is already saved; losing the original file is
			// not fatal.
			logger.Warn("failed to archive original upload", "key", key, "err", err)
		}
	}
	return record, nil
}

// ListContent returns stored records, optionally filtered to one
// operation kind.
func (a *App) ListContent(kind string) ([]domain.ContentRecord, error) {
	records, err := a.store.ListAll()
	if err != nil {
		return nil, err
	}
	return stats.FilterByType(records, kind), nil
}

// GetContent fetches one record by id.
func (a *App) GetContent(id int64) (domain.ContentRecord, error) {
	record, ok, err := a.store.GetByID(id)
	if err != nil {
		return domain.ContentRecord{}, err
	}
	if !ok {
		return domain.ContentRecord{}, ErrContentNotFound
	}
	return record, nil
}

// DeleteContent removes one record by id. Deleting an absent id is not
// an error.
func (a *App) DeleteContent(id int64) error {
	return a.store.DeleteByID(id)
}

// ClearAll removes every record. The destructive-action confirmation is
// the transport layer's concern.
func (a *App) ClearAll() error {
	return a.store.ClearAll()
}

// Overview bundles aggregate counters with the most recent records.
type Overview struct {
	Stats  stats.AggregateStats   `json:"stats"`
	Recent []domain.ContentRecord `json:"recentActivity"`
}

// GetOverview derives counters and recent activity from the full record
// set. A non-positive limit falls back to the default of five.
func (a *App) GetOverview(recentLimit int) (Overview, error) {
	records, err := a.store.ListAll()
	if err != nil {
		return Overview{}, err
	}
	return Overview{
		Stats:  stats.Compute(records),
		Recent: stats.RecentActivity(records, recentLimit),
	}, nil
}

// ExportData renders the full record set as a portable JSON document.
func (a *App) ExportData(now time.Time) ([]byte, error) {
	records, err := a.store.ListAll()
	if err != nil {
		return nil, err
	}
	return export.Marshal(export.Build(records, now))
}

// ImportData restores records from an export document. Each record gets
// a fresh id so imports never collide with existing rows. Returns the
// number of records imported.
func (a *App) ImportData(data []byte) (int, error) {
	doc, err := export.Parse(data)
	if err != nil {
		return 0, err
	}
	imported := 0
	for _, rec := range doc.Content {
		if _, err := a.store.Create(domain.NewContent{
			Title:        rec.Title,
			Type:         rec.Type,
			Result:       rec.Result,
			OriginalText: rec.OriginalText,
			FileType:     rec.FileType,
			Timestamp:    rec.Timestamp,
			Options:      rec.Options,
		}); err != nil {
			return imported, fmt.Errorf("import record %d: %w", rec.ID, err)
		}
		imported++
	}
	return imported, nil
}

// ArchiveExport uploads the current export document to object storage
// and returns a time-limited download URL.
func (a *App) ArchiveExport(ctx context.Context) (string, error) {
	if a.objects == nil {
		return "", ErrArchiveUnavailable
	}
	data, err := a.ExportData(time.Now())
	if err != nil {
		return "", err
	}
	key := fmt.Sprintf("exports/edumate-export-%s.json", time.Now().UTC().Format("20060102T150405Z"))
	if err := a.objects.Put(ctx, key, bytes.NewReader(data), int64(len(data)), "application/json"); err != nil {
		return "", fmt.Errorf("archive export: %w", err)
	}
	url, err := a.objects.PresignGet(ctx, key, archiveURLTTL)
	if err != nil {
		return "", fmt.Errorf("presign export: %w", err)
	}
	return url, nil
}
