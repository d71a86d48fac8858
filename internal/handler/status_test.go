package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Bajtii/Object-detection/internal/logger"
	"github.com/Bajtii/Object-detection/internal/service/notify"
	"github.com/Bajtii/Object-detection/internal/service/pipeline"
)

type fakeState struct{ state notify.State }

func (f fakeState) Snapshot() notify.State { return f.state }

type fakeStats struct{ stats pipeline.Stats }

func (f fakeStats) Stats() pipeline.Stats { return f.stats }

type fakeViewers int

func (f fakeViewers) GetClientCount() int { return int(f) }

// ========================================
// Health Tests
// ========================================

func TestHealthHandler(t *testing.T) {
	rec := httptest.NewRecorder()
	HealthHandler()(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
	if rec.Body.String() != "OK" {
		t.Errorf("expected body OK, got %q", rec.Body.String())
	}
}

// ========================================
// Status Tests
// ========================================

func TestStatusHandler(t *testing.T) {
	sentAt := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	state := fakeState{notify.State{LastSentAt: sentAt, LastPayload: "detected: dog(77%)", HasSent: true}}
	stats := fakeStats{pipeline.Stats{Cycles: 10, Notified: 2, Suppressed: 5, NoMessage: 2, AcquireErrors: 1}}

	h := StatusHandler("abc", time.Now().Add(-time.Minute), state, stats, fakeViewers(3), logger.Nop())
	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodGet, "/api/status", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("unexpected content type %q", ct)
	}

	var body struct {
		InstanceID   string `json:"instanceId"`
		Viewers      int    `json:"viewers"`
		Notification struct {
			LastPayload string `json:"lastPayload"`
			HasSent     bool   `json:"hasSent"`
		} `json:"notification"`
		Loop struct {
			Cycles        int64 `json:"cycles"`
			Suppressed    int64 `json:"suppressed"`
			AcquireErrors int64 `json:"acquireErrors"`
		} `json:"loop"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}

	if body.InstanceID != "abc" {
		t.Errorf("expected instance abc, got %q", body.InstanceID)
	}
	if body.Viewers != 3 {
		t.Errorf("expected 3 viewers, got %d", body.Viewers)
	}
	if !body.Notification.HasSent || body.Notification.LastPayload != "detected: dog(77%)" {
		t.Errorf("unexpected notification status: %+v", body.Notification)
	}
	if body.Loop.Cycles != 10 || body.Loop.Suppressed != 5 || body.Loop.AcquireErrors != 1 {
		t.Errorf("unexpected loop status: %+v", body.Loop)
	}
}

func TestStatusHandler_NoViewers(t *testing.T) {
	h := StatusHandler("abc", time.Now(), fakeState{}, fakeStats{}, nil, logger.Nop())
	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodGet, "/api/status", nil))

	var body map[string]interface{}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["viewers"] != float64(0) {
		t.Errorf("expected 0 viewers, got %v", body["viewers"])
	}
}
