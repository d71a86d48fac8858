package dto

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestNotificationStatus_NullBeforeFirstSend(t *testing.T) {
	data, err := json.Marshal(NotificationStatus{})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(data), `"lastSentAt":null`) {
		t.Errorf("expected null lastSentAt, got %s", data)
	}
	if !strings.Contains(string(data), `"hasSent":false`) {
		t.Errorf("expected hasSent false, got %s", data)
	}
}

func TestNotificationStatus_FormatsSentAt(t *testing.T) {
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	data, err := json.Marshal(NotificationStatus{
		LastSentAt:  at,
		LastPayload: "detected: person(90%)",
		HasSent:     true,
	})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded["lastSentAt"] != "2024-05-01T12:00:00Z" {
		t.Errorf("unexpected lastSentAt: %v", decoded["lastSentAt"])
	}
	if decoded["lastPayload"] != "detected: person(90%)" {
		t.Errorf("unexpected lastPayload: %v", decoded["lastPayload"])
	}
}
