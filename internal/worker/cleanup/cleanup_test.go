package cleanup

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"
)

// --- モック定義 ---

type mockSessionDeleter struct {
	mu      sync.Mutex
	calls   int
	lastNow time.Time
	deleted int64
	err     error
}

func (m *mockSessionDeleter) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	m.lastNow = now
	return m.deleted, m.err
}

func (m *mockSessionDeleter) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

type mockMetrics struct {
	mu      sync.Mutex
	cleaned []int64
}

func (m *mockMetrics) RecordProgressSaved()               {}
func (m *mockMetrics) RecordProgressSaveFailure(string)   {}
func (m *mockMetrics) RecordLogin(bool)                   {}
func (m *mockMetrics) RecordSignup(bool)                  {}
func (m *mockMetrics) RecordHTTPStatus(int)               {}
func (m *mockMetrics) RecordRequestLatency(time.Duration) {}

func (m *mockMetrics) RecordSessionsCleaned(count int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cleaned = append(m.cleaned, count)
}

func newTestLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewJSONHandler(buf, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
}

// --- テスト ---

func TestCleanupJob_Run_DeletesExpiredSessions(t *testing.T) {
	var buf bytes.Buffer
	deleter := &mockSessionDeleter{deleted: 3}
	mc := &mockMetrics{}
	job := NewCleanupJob(deleter, mc, newTestLogger(&buf))

	fixed := time.Date(2026, 10, 18, 3, 0, 0, 0, time.UTC)
	job.now = func() time.Time { return fixed }

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	if !deleter.lastNow.Equal(fixed) {
		t.Errorf("DeleteExpired now = %v, want %v", deleter.lastNow, fixed)
	}
	if len(mc.cleaned) != 1 || mc.cleaned[0] != 3 {
		t.Errorf("RecordSessionsCleaned = %v, want [3]", mc.cleaned)
	}

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("failed to parse log: %v", err)
	}
	if entry["deleted_count"] != float64(3) {
		t.Errorf("deleted_count = %v, want 3", entry["deleted_count"])
	}
}

func TestCleanupJob_Run_NothingToDelete(t *testing.T) {
	var buf bytes.Buffer
	job := NewCleanupJob(&mockSessionDeleter{}, nil, newTestLogger(&buf))

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
}

func TestCleanupJob_Run_ReturnsStorageError(t *testing.T) {
	var buf bytes.Buffer
	deleter := &mockSessionDeleter{err: errors.New("connection refused")}
	mc := &mockMetrics{}
	job := NewCleanupJob(deleter, mc, newTestLogger(&buf))

	err := job.Run(context.Background())
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !errors.Is(err, deleter.err) {
		t.Errorf("error should wrap cause: %v", err)
	}
	if len(mc.cleaned) != 0 {
		t.Errorf("metrics should not be recorded on failure: %v", mc.cleaned)
	}

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("failed to parse log: %v", err)
	}
	if entry["level"] != "ERROR" {
		t.Errorf("level = %v, want ERROR", entry["level"])
	}
}

func TestCleanupJob_Start_RunsImmediatelyAndStopsOnCancel(t *testing.T) {
	var buf bytes.Buffer
	deleter := &mockSessionDeleter{}
	job := NewCleanupJob(deleter, nil, newTestLogger(&buf))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		job.Start(ctx, 10*time.Millisecond)
		close(done)
	}()

	deadline := time.Now().Add(time.Second)
	for deleter.callCount() < 2 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Start did not return after cancel")
	}

	if deleter.callCount() < 2 {
		t.Errorf("DeleteExpired calls = %d, want at least 2", deleter.callCount())
	}
}

func TestCleanupJob_Start_ContinuesAfterFailure(t *testing.T) {
	var buf bytes.Buffer
	deleter := &mockSessionDeleter{err: errors.New("db down")}
	job := NewCleanupJob(deleter, nil, newTestLogger(&buf))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	job.Start(ctx, 10*time.Millisecond)

	if deleter.callCount() < 2 {
		t.Errorf("DeleteExpired calls = %d, want at least 2", deleter.callCount())
	}
}
