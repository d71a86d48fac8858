package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/Bajtii/Object-detection/internal/dto"
	"github.com/Bajtii/Object-detection/internal/logger"
	"github.com/Bajtii/Object-detection/internal/service/notify"
	"github.com/Bajtii/Object-detection/internal/service/pipeline"
)

// StateSource exposes the notifier state.
type StateSource interface {
	Snapshot() notify.State
}

// StatsSource exposes the loop counters.
type StatsSource interface {
	Stats() pipeline.Stats
}

// ViewerCounter reports connected websocket viewers.
type ViewerCounter interface {
	GetClientCount() int
}

// HealthHandler answers liveness probes.
func HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Write([]byte("OK"))
	}
}

// StatusHandler returns the notifier state, loop counters and viewer count as JSON.
func StatusHandler(instanceID string, started time.Time, state StateSource, stats StatsSource, viewers ViewerCounter, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		st := state.Snapshot()
		ls := stats.Stats()

		status := dto.Status{
			InstanceID: instanceID,
			Uptime:     time.Since(started).Round(time.Second).String(),
			Notification: dto.NotificationStatus{
				LastSentAt:  st.LastSentAt,
				LastPayload: st.LastPayload,
				HasSent:     st.HasSent,
			},
			Loop: dto.LoopStatus{
				Cycles:         ls.Cycles,
				Notified:       ls.Notified,
				Suppressed:     ls.Suppressed,
				NoMessage:      ls.NoMessage,
				AcquireErrors:  ls.AcquireErrors,
				DetectErrors:   ls.DetectErrors,
				DispatchErrors: ls.DispatchErrors,
				LastCycleAt:    ls.LastCycleAt,
			},
		}
		if viewers != nil {
			status.Viewers = viewers.GetClientCount()
		}

		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Cache-Control", "no-cache")
		if err := json.NewEncoder(w).Encode(status); err != nil {
			logger.Error("Failed to encode status: %v", err)
		}
	}
}
