package app

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"edumate/pkg/ai"
	"edumate/pkg/domain"
	"edumate/pkg/export"
	"edumate/pkg/store"
)

func newTestApp(t *testing.T) *App {
	t.Helper()
	a, err := New(Config{
		Store:   store.NewMemoryStore(),
		Gateway: ai.NewGateway(ai.NewHeuristicBackend()),
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return a
}

const sampleText = "The water cycle describes how water moves between oceans, the atmosphere and land. Evaporation lifts moisture into the air. Condensation forms clouds. Precipitation returns water to the surface."

func TestProcessCreatesRecord(t *testing.T) {
	a := newTestApp(t)

	rec, err := a.Process(context.Background(), ProcessInput{
		Kind: domain.OpSummarize,
		Text: sampleText,
	})
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if rec.ID == 0 {
		t.Fatal("expected assigned id")
	}
	if rec.Title != "Direct text input" {
		t.Fatalf("unexpected default title %q", rec.Title)
	}
	if rec.Type != domain.OpSummarize {
		t.Fatalf("unexpected type %q", rec.Type)
	}
	if rec.Result == "" {
		t.Fatal("expected non-empty result")
	}
	if rec.Timestamp == 0 {
		t.Fatal("expected timestamp")
	}
}

func TestProcessRejectsShortText(t *testing.T) {
	a := newTestApp(t)

	_, err := a.Process(context.Background(), ProcessInput{
		Kind: domain.OpSummarize,
		Text: "  short  ",
	})
	if !errors.Is(err, ErrTextTooShort) {
		t.Fatalf("expected ErrTextTooShort, got %v", err)
	}
}

func TestProcessRejectsUnknownKind(t *testing.T) {
	a := newTestApp(t)

	_, err := a.Process(context.Background(), ProcessInput{
		Kind: domain.OperationKind("translate"),
		Text: sampleText,
	})
	if !errors.Is(err, ai.ErrUnknownOperation) {
		t.Fatalf("expected ErrUnknownOperation, got %v", err)
	}
}

func TestProcessUploadExtractsText(t *testing.T) {
	a := newTestApp(t)

	rec, err := a.ProcessUpload(context.Background(), UploadInput{
		Filename: "notes.txt",
		Data:     []byte(sampleText),
		Kind:     domain.OpQuestions,
	})
	if err != nil {
		t.Fatalf("ProcessUpload: %v", err)
	}
	if rec.Title != "notes.txt" {
		t.Fatalf("unexpected title %q", rec.Title)
	}
	if rec.FileType != "text/plain" {
		t.Fatalf("unexpected fileType %q", rec.FileType)
	}
	if !strings.Contains(rec.Result, "Q1:") {
		t.Fatalf("expected generated questions, got %q", rec.Result)
	}
}

func TestListContentFiltersByKind(t *testing.T) {
	a := newTestApp(t)
	ctx := context.Background()

	if _, err := a.Process(ctx, ProcessInput{Kind: domain.OpSummarize, Text: sampleText}); err != nil {
		t.Fatalf("Process: %v", err)
	}
	if _, err := a.Process(ctx, ProcessInput{Kind: domain.OpProofread, Text: sampleText}); err != nil {
		t.Fatalf("Process: %v", err)
	}

	all, err := a.ListContent("all")
	if err != nil {
		t.Fatalf("ListContent: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 records, got %d", len(all))
	}

	summaries, err := a.ListContent("summarize")
	if err != nil {
		t.Fatalf("ListContent: %v", err)
	}
	if len(summaries) != 1 || summaries[0].Type != domain.OpSummarize {
		t.Fatalf("unexpected filter result: %+v", summaries)
	}
}

func TestGetAndDeleteContent(t *testing.T) {
	a := newTestApp(t)

	rec, err := a.Process(context.Background(), ProcessInput{Kind: domain.OpSimplify, Text: sampleText})
	if err != nil {
		t.Fatalf("Process: %v", err)
	}

	got, err := a.GetContent(rec.ID)
	if err != nil {
		t.Fatalf("GetContent: %v", err)
	}
	if got.ID != rec.ID {
		t.Fatalf("expected id %d, got %d", rec.ID, got.ID)
	}

	if err := a.DeleteContent(rec.ID); err != nil {
		t.Fatalf("DeleteContent: %v", err)
	}
	if _, err := a.GetContent(rec.ID); !errors.Is(err, ErrContentNotFound) {
		t.Fatalf("expected ErrContentNotFound, got %v", err)
	}
	if err := a.DeleteContent(rec.ID); err != nil {
		t.Fatalf("expected idempotent delete, got %v", err)
	}
}

func TestGetOverviewCountsAndRecency(t *testing.T) {
	a := newTestApp(t)
	ctx := context.Background()

	for i := 0; i < 7; i++ {
		if _, err := a.Process(ctx, ProcessInput{Kind: domain.OpSummarize, Text: sampleText}); err != nil {
			t.Fatalf("Process: %v", err)
		}
	}

	ov, err := a.GetOverview(0)
	if err != nil {
		t.Fatalf("GetOverview: %v", err)
	}
	if ov.Stats.Total != 7 || ov.Stats.Summaries != 7 {
		t.Fatalf("unexpected stats: %+v", ov.Stats)
	}
	if len(ov.Recent) != 5 {
		t.Fatalf("expected 5 recent records, got %d", len(ov.Recent))
	}
}

func TestExportImportRoundTrip(t *testing.T) {
	a := newTestApp(t)
	ctx := context.Background()

	if _, err := a.Process(ctx, ProcessInput{Kind: domain.OpSummarize, Text: sampleText}); err != nil {
		t.Fatalf("Process: %v", err)
	}
	if _, err := a.Process(ctx, ProcessInput{Kind: domain.OpQuestions, Text: sampleText}); err != nil {
		t.Fatalf("Process: %v", err)
	}

	data, err := a.ExportData(time.Now())
	if err != nil {
		t.Fatalf("ExportData: %v", err)
	}
	var doc export.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("unmarshal export: %v", err)
	}
	if doc.Version != export.Version || doc.TotalItems != 2 {
		t.Fatalf("unexpected document metadata: %+v", doc)
	}

	if err := a.ClearAll(); err != nil {
		t.Fatalf("ClearAll: %v", err)
	}
	n, err := a.ImportData(data)
	if err != nil {
		t.Fatalf("ImportData: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 imported records, got %d", n)
	}

	restored, err := a.ListContent("")
	if err != nil {
		t.Fatalf("ListContent: %v", err)
	}
	if len(restored) != 2 {
		t.Fatalf("expected 2 restored records, got %d", len(restored))
	}
	// Imported records get fresh ids, never reusing cleared ones.
	for _, rec := range restored {
		if rec.ID <= 2 {
			t.Fatalf("expected fresh id, got %d", rec.ID)
		}
	}
}

func TestImportRejectsInvalidDocument(t *testing.T) {
	a := newTestApp(t)

	if _, err := a.ImportData([]byte(`{"totalItems":3,"content":[]}`)); !errors.Is(err, export.ErrItemCountMismatch) {
		t.Fatalf("expected ErrItemCountMismatch, got %v", err)
	}
	if _, err := a.ImportData([]byte(`not json`)); !errors.Is(err, export.ErrInvalidDocument) {
		t.Fatalf("expected ErrInvalidDocument, got %v", err)
	}
}

func TestArchiveExportWithoutStorage(t *testing.T) {
	a := newTestApp(t)

	if _, err := a.ArchiveExport(context.Background()); !errors.Is(err, ErrArchiveUnavailable) {
		t.Fatalf("expected ErrArchiveUnavailable, got %v", err)
	}
}
