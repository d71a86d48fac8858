package dto

import (
	"encoding/json"
	"time"
)

// NotificationStatus is the monitor view of the notifier state.
type NotificationStatus struct {
	LastSentAt  time.Time `json:"lastSentAt"`
	LastPayload string    `json:"lastPayload"`
	HasSent     bool      `json:"hasSent"`
}

// MarshalJSON renders lastSentAt as null until something was sent.
func (n NotificationStatus) MarshalJSON() ([]byte, error) {
	type Alias NotificationStatus
	var sentAt *string
	if n.HasSent {
		s := n.LastSentAt.Format(time.RFC3339Nano)
		sentAt = &s
	}
	return json.Marshal(&struct {
		LastSentAt *string `json:"lastSentAt"`
		Alias
	}{
		LastSentAt: sentAt,
		Alias:      (Alias)(n),
	})
}

// LoopStatus mirrors the acquisition loop counters.
type LoopStatus struct {
	Cycles         int64     `json:"cycles"`
	Notified       int64     `json:"notified"`
	Suppressed     int64     `json:"suppressed"`
	NoMessage      int64     `json:"noMessage"`
	AcquireErrors  int64     `json:"acquireErrors"`
	DetectErrors   int64     `json:"detectErrors"`
	DispatchErrors int64     `json:"dispatchErrors"`
	LastCycleAt    time.Time `json:"lastCycleAt"`
}

// Status is returned by /api/status.
type Status struct {
	InstanceID   string             `json:"instanceId"`
	Uptime       string             `json:"uptime"`
	Notification NotificationStatus `json:"notification"`
	Loop         LoopStatus         `json:"loop"`
	Viewers      int                `json:"viewers"`
}
