package session

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/vision-demo-mcp/internal/config"
	"github.com/ironsheep/vision-demo-mcp/internal/cverr"
	"github.com/ironsheep/vision-demo-mcp/internal/events"
	"github.com/ironsheep/vision-demo-mcp/internal/pipeline"
	"github.com/ironsheep/vision-demo-mcp/internal/vision"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\x0dIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")

var fixedTime = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestSession(t *testing.T, sleep pipeline.SleepFunc) (*Session, *[]events.Notification) {
	t.Helper()
	if sleep == nil {
		sleep = func(ctx context.Context, _ time.Duration) error { return ctx.Err() }
	}
	logger := quietLogger()
	bus := events.New()

	var mu sync.Mutex
	notes := &[]events.Notification{}
	require.NoError(t, bus.OnNotification(func(n events.Notification) {
		mu.Lock()
		*notes = append(*notes, n)
		mu.Unlock()
	}))

	s := New(Options{
		Config:    config.Default(),
		Runner:    pipeline.NewRunner(pipeline.WithSleep(sleep), pipeline.WithLogger(logger)),
		Bus:       bus,
		Generator: vision.NewGenerator(func() time.Time { return fixedTime }),
		Logger:    logger,
	})
	return s, notes
}

func TestNewImageRef(t *testing.T) {
	tests := []struct {
		name     string
		data     []byte
		declared string
		wantMIME string
		wantErr  bool
	}{
		{name: "declared png", data: pngHeader, declared: "image/png", wantMIME: "image/png"},
		{name: "sniffed png", data: pngHeader, wantMIME: "image/png"},
		{name: "octet stream sniffed", data: pngHeader, declared: "application/octet-stream", wantMIME: "image/png"},
		{name: "declared text", data: []byte("hello"), declared: "text/plain", wantErr: true},
		{name: "sniffed text", data: []byte("just some words"), wantErr: true},
		{name: "empty", data: nil, declared: "image/png", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ref, err := NewImageRef("photo.png", tt.data, tt.declared)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, cverr.IsKind(err, cverr.KindInvalidInput))
				assert.Equal(t, InvalidImageMessage, cverr.UserMessage(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantMIME, ref.MimeType)
			assert.Equal(t, int64(len(tt.data)), ref.Size)
			assert.Equal(t, "photo.png", ref.FileName)
			assert.NotEmpty(t, ref.ID)
			assert.True(t, strings.HasPrefix(ref.DataURI, "data:image/png;base64,"))
		})
	}
}

func TestReadImageFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "street.png")
	require.NoError(t, os.WriteFile(path, pngHeader, 0o644))

	ref, err := ReadImageFile(path)
	require.NoError(t, err)
	assert.Equal(t, "street.png", ref.FileName)
	assert.Equal(t, "image/png", ref.MimeType)

	_, err = ReadImageFile(filepath.Join(dir, "missing.png"))
	assert.True(t, cverr.IsKind(err, cverr.KindInvalidInput))
}

func TestSession_IngestRejectsNonImage(t *testing.T) {
	s, notes := newTestSession(t, nil)

	_, err := s.Ingest("first.png", pngHeader, "image/png")
	require.NoError(t, err)
	before := s.Image()

	_, err = s.Ingest("notes.txt", []byte("plain text"), "text/plain")
	require.Error(t, err)
	assert.True(t, cverr.IsKind(err, cverr.KindInvalidInput))

	assert.Equal(t, before, s.Image(), "rejected upload must not replace the active image")
	require.Len(t, *notes, 1)
	assert.Equal(t, InvalidImageMessage, (*notes)[0].Message)
	assert.Equal(t, events.SeverityError, (*notes)[0].Severity)
}

func TestSession_IngestClearsAnalysisKeepsResults(t *testing.T) {
	s, _ := newTestSession(t, nil)
	ctx := context.Background()

	_, err := s.Ingest("a.png", pngHeader, "image/png")
	require.NoError(t, err)
	_, err = s.Detect(ctx, nil)
	require.NoError(t, err)
	_, err = s.Analyze()
	require.NoError(t, err)
	require.NotNil(t, s.Snapshot().Analysis)

	_, err = s.Ingest("b.png", pngHeader, "image/png")
	require.NoError(t, err)

	snap := s.Snapshot()
	assert.Nil(t, snap.Analysis)
	assert.Len(t, snap.Detections, 5)
	assert.Equal(t, "b.png", snap.ImageName())
}

func TestSession_DetectWithoutImageIsSkipped(t *testing.T) {
	s, notes := newTestSession(t, nil)

	var progress []pipeline.Progress
	_, err := s.Detect(context.Background(), pipeline.ObserverFunc(func(p pipeline.Progress) {
		progress = append(progress, p)
	}))
	assert.True(t, cverr.IsKind(err, cverr.KindSkipped))
	assert.Empty(t, progress)
	assert.Empty(t, *notes)
	assert.Empty(t, s.Snapshot().Detections)

	_, err = s.Classify(context.Background(), nil)
	assert.True(t, cverr.IsKind(err, cverr.KindSkipped))
}

func TestSession_DetectReplacesResults(t *testing.T) {
	s, _ := newTestSession(t, nil)
	ctx := context.Background()
	_, err := s.Ingest("a.png", pngHeader, "image/png")
	require.NoError(t, err)

	var progress []pipeline.Progress
	results, err := s.Detect(ctx, pipeline.ObserverFunc(func(p pipeline.Progress) {
		progress = append(progress, p)
	}))
	require.NoError(t, err)
	require.Len(t, results, 5)
	require.Len(t, progress, 5)
	assert.Equal(t, 100.0, progress[4].Percent)
	for _, r := range results {
		assert.Equal(t, "yolo", r.Model)
		assert.GreaterOrEqual(t, r.Confidence, 0.5)
	}

	require.NoError(t, s.SetThreshold(0.8))
	s.SetModels("ssd", "")
	results, err = s.Detect(ctx, nil)
	require.NoError(t, err)

	snap := s.Snapshot()
	assert.Equal(t, results, snap.Detections)
	for _, r := range snap.Detections {
		assert.GreaterOrEqual(t, r.Confidence, 0.8)
		assert.Equal(t, "ssd", r.Model)
	}
	assert.Less(t, len(snap.Detections), 5)
}

func TestSession_DetectNothingAboveThreshold(t *testing.T) {
	s, notes := newTestSession(t, nil)
	_, err := s.Ingest("a.png", pngHeader, "image/png")
	require.NoError(t, err)
	require.NoError(t, s.SetThreshold(1))

	results, err := s.Detect(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, results)
	require.Len(t, *notes, 1)
	assert.Equal(t, NoDetectionsMessage, (*notes)[0].Message)
}

func TestSession_Classify(t *testing.T) {
	s, _ := newTestSession(t, nil)
	_, err := s.Ingest("a.png", pngHeader, "image/png")
	require.NoError(t, err)
	s.SetModels("", "efficientnet")

	results, err := s.Classify(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, results, 5)
	assert.Equal(t, "Golden Retriever", results[0].Class)
	assert.Equal(t, "efficientnet", results[0].Model)

	sum := s.Summary()
	assert.Equal(t, 5, sum.Classifications)
	assert.Equal(t, 0, sum.ObjectsDetected)
	assert.Equal(t, "a.png", sum.Image)
}

func TestSession_FailureReleasesFlagAndNotifies(t *testing.T) {
	s, notes := newTestSession(t, func(context.Context, time.Duration) error {
		return errors.New("boom")
	})
	_, err := s.Ingest("a.png", pngHeader, "image/png")
	require.NoError(t, err)

	var runs []events.RunEvent
	require.NoError(t, s.Bus().OnRun(func(e events.RunEvent) { runs = append(runs, e) }))

	_, err = s.Detect(context.Background(), nil)
	require.Error(t, err)
	assert.True(t, cverr.IsKind(err, cverr.KindProcessing))
	assert.False(t, s.IsProcessing())

	require.Len(t, *notes, 1)
	assert.Equal(t, "Detection failed: boom", (*notes)[0].Message)
	assert.Equal(t, events.SeverityError, (*notes)[0].Severity)

	require.Len(t, runs, 2)
	assert.Equal(t, events.RunStarted, runs[0].Phase)
	assert.Equal(t, events.RunFailed, runs[1].Phase)
}

func TestSession_SecondRunWhileProcessingIsSkipped(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once

	s, _ := newTestSession(t, func(ctx context.Context, _ time.Duration) error {
		once.Do(func() { close(entered) })
		select {
		case <-release:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	})
	_, err := s.Ingest("a.png", pngHeader, "image/png")
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		_, err := s.Detect(context.Background(), nil)
		done <- err
	}()

	<-entered
	assert.True(t, s.IsProcessing())
	assert.True(t, s.Snapshot().Processing)

	_, err = s.Classify(context.Background(), nil)
	assert.True(t, cverr.IsKind(err, cverr.KindSkipped))

	close(release)
	require.NoError(t, <-done)
	assert.False(t, s.IsProcessing())
	assert.Empty(t, s.Snapshot().Classifications)
}

func TestSession_SetThresholdValidates(t *testing.T) {
	s, _ := newTestSession(t, nil)

	for _, v := range []float64{-0.1, 1.01} {
		err := s.SetThreshold(v)
		assert.True(t, cverr.IsKind(err, cverr.KindInvalidInput), "threshold %v", v)
	}
	assert.Equal(t, 0.5, s.Settings().ConfidenceThreshold)

	require.NoError(t, s.SetThreshold(0))
	assert.Equal(t, 0.0, s.Settings().ConfidenceThreshold)
}

func TestSession_AnalyzeCaches(t *testing.T) {
	s, _ := newTestSession(t, nil)

	_, err := s.Analyze()
	assert.True(t, cverr.IsKind(err, cverr.KindSkipped))

	_, err = s.Ingest("a.png", pngHeader, "image/png")
	require.NoError(t, err)

	first, err := s.Analyze()
	require.NoError(t, err)
	second, err := s.Analyze()
	require.NoError(t, err)
	assert.Equal(t, first, second)
	require.NotNil(t, s.Snapshot().Analysis)
	assert.Equal(t, first.Palette, s.Snapshot().Analysis.Palette)
}
