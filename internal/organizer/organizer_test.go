package organizer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kno2gether/screenshot-organizer/internal/classifier"
	"github.com/kno2gether/screenshot-organizer/internal/history"
	"github.com/kno2gether/screenshot-organizer/internal/scanner"
)

type fakeClassifier struct {
	fn func(imagePath string) (string, error)
}

func (f *fakeClassifier) Classify(_ context.Context, imagePath string) (string, error) {
	return f.fn(imagePath)
}

type fakeHistory struct {
	records []history.Record
}

func (f *fakeHistory) Add(r history.Record) error {
	f.records = append(f.records, r)
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeImage(t *testing.T, dir, name string, modTime time.Time) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("img"), 0644))
	require.NoError(t, os.Chtimes(path, modTime, modTime))
	return path
}

func constClassifier(response string) *fakeClassifier {
	return &fakeClassifier{fn: func(string) (string, error) { return response, nil }}
}

func TestRunRenamesAllFiles(t *testing.T) {
	dir := t.TempDir()
	base := time.Date(2024, 1, 1, 9, 30, 0, 0, time.Local)
	writeImage(t, dir, "shot1.png", base)
	writeImage(t, dir, "shot2.png", base.Add(time.Minute))
	writeImage(t, dir, "shot3.png", base.Add(2*time.Minute))

	p := NewProcessor(constClassifier(`{"category": "code_editor"}`), nil, testLogger())
	summary, err := p.Run(context.Background(), dir)
	require.NoError(t, err)

	assert.Equal(t, 3, summary.Renamed)
	assert.Zero(t, summary.Degraded)
	assert.Zero(t, summary.Failed)

	assert.FileExists(t, filepath.Join(dir, "code_editor_20240101_093000.png"))
	assert.FileExists(t, filepath.Join(dir, "code_editor_20240101_093100.png"))
	assert.FileExists(t, filepath.Join(dir, "code_editor_20240101_093200.png"))
}

func TestRunDegradesOnUnparseableResponse(t *testing.T) {
	dir := t.TempDir()
	ts := time.Date(2024, 1, 1, 9, 30, 0, 0, time.Local)
	writeImage(t, dir, "shot.png", ts)

	p := NewProcessor(constClassifier("I have no idea what this is."), nil, testLogger())
	summary, err := p.Run(context.Background(), dir)
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Degraded)
	assert.Zero(t, summary.Renamed)
	assert.Zero(t, summary.Failed)
	assert.FileExists(t, filepath.Join(dir, "unknown_error_20240101_093000.png"))

	require.Len(t, summary.Outcomes, 1)
	assert.True(t, summary.Outcomes[0].Degraded)
	assert.Error(t, summary.Outcomes[0].Err)
}

func TestRunReportsTransportFailure(t *testing.T) {
	dir := t.TempDir()
	ts := time.Date(2024, 1, 1, 9, 30, 0, 0, time.Local)
	path := writeImage(t, dir, "shot.png", ts)

	cl := &fakeClassifier{fn: func(string) (string, error) {
		return "", fmt.Errorf("%w: connection refused", classifier.ErrConnection)
	}}
	p := NewProcessor(cl, nil, testLogger())
	summary, err := p.Run(context.Background(), dir)
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Failed)
	assert.Zero(t, summary.Degraded)
	// The file keeps its original name: a transport failure must not assign
	// the sentinel category.
	assert.FileExists(t, path)

	require.Len(t, summary.Outcomes, 1)
	assert.Equal(t, StageClassify, summary.Outcomes[0].Stage)
	assert.True(t, errors.Is(summary.Outcomes[0].Err, classifier.ErrConnection))
}

func TestRunContinuesAfterFailure(t *testing.T) {
	dir := t.TempDir()
	base := time.Date(2024, 1, 1, 9, 30, 0, 0, time.Local)
	writeImage(t, dir, "bad.png", base)
	writeImage(t, dir, "good.png", base.Add(time.Minute))

	cl := &fakeClassifier{fn: func(imagePath string) (string, error) {
		if filepath.Base(imagePath) == "bad.png" {
			return "", fmt.Errorf("%w: no route to host", classifier.ErrConnection)
		}
		return `{"category": "chat"}`, nil
	}}
	p := NewProcessor(cl, nil, testLogger())
	summary, err := p.Run(context.Background(), dir)
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Failed)
	assert.Equal(t, 1, summary.Renamed)
	assert.FileExists(t, filepath.Join(dir, "bad.png"))
	assert.FileExists(t, filepath.Join(dir, "chat_20240101_093100.png"))
}

func TestRunAvoidsCollisions(t *testing.T) {
	dir := t.TempDir()
	ts := time.Date(2024, 1, 1, 9, 30, 0, 0, time.Local)
	writeImage(t, dir, "first.png", ts)
	writeImage(t, dir, "second.png", ts)

	p := NewProcessor(constClassifier(`{"category": "browser"}`), nil, testLogger())
	summary, err := p.Run(context.Background(), dir)
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Renamed)
	assert.FileExists(t, filepath.Join(dir, "browser_20240101_093000.png"))
	assert.FileExists(t, filepath.Join(dir, "browser_20240101_093000_1.png"))
}

func TestRerunSkipsOrganizedFiles(t *testing.T) {
	dir := t.TempDir()
	base := time.Date(2024, 1, 1, 9, 30, 0, 0, time.Local)
	writeImage(t, dir, "shot1.png", base)
	writeImage(t, dir, "shot2.png", base.Add(time.Minute))

	p := NewProcessor(constClassifier(`{"category": "document"}`), nil, testLogger())
	summary, err := p.Run(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Renamed)

	summary, err = p.Run(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Skipped)
	assert.Zero(t, summary.Renamed)
	assert.FileExists(t, filepath.Join(dir, "document_20240101_093000.png"))
	assert.FileExists(t, filepath.Join(dir, "document_20240101_093100.png"))
}

func TestRunBadDirectory(t *testing.T) {
	p := NewProcessor(constClassifier(`{"category": "chat"}`), nil, testLogger())
	_, err := p.Run(context.Background(), filepath.Join(t.TempDir(), "nope"))
	assert.True(t, errors.Is(err, scanner.ErrNotFound))
	assert.True(t, IsFatal(err))
}

func TestRunRecordsHistory(t *testing.T) {
	dir := t.TempDir()
	base := time.Date(2024, 1, 1, 9, 30, 0, 0, time.Local)
	writeImage(t, dir, "ok.png", base)
	writeImage(t, dir, "unreachable.png", base.Add(time.Minute))

	cl := &fakeClassifier{fn: func(imagePath string) (string, error) {
		if filepath.Base(imagePath) == "unreachable.png" {
			return "", fmt.Errorf("%w: connection refused", classifier.ErrConnection)
		}
		return `{"category": "receipt", "subcategory": "payment"}`, nil
	}}
	sink := &fakeHistory{}
	p := NewProcessor(cl, sink, testLogger())
	_, err := p.Run(context.Background(), dir)
	require.NoError(t, err)

	require.Len(t, sink.records, 2)
	assert.Equal(t, "renamed", sink.records[0].Outcome)
	assert.Equal(t, "receipt", sink.records[0].Category)
	assert.Equal(t, "payment", sink.records[0].Subcategory)
	assert.Equal(t, "failed", sink.records[1].Outcome)
	assert.Contains(t, sink.records[1].Reason, "unreachable")
}

func TestRunStopsOnCancelledContext(t *testing.T) {
	dir := t.TempDir()
	writeImage(t, dir, "shot.png", time.Date(2024, 1, 1, 9, 30, 0, 0, time.Local))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := NewProcessor(constClassifier(`{"category": "chat"}`), nil, testLogger())
	summary, err := p.Run(ctx, dir)
	require.NoError(t, err)
	assert.Empty(t, summary.Outcomes)
	assert.FileExists(t, filepath.Join(dir, "shot.png"))
}
