package model

import "time"

// Notification describes a message that was delivered to the notify endpoint.
type Notification struct {
	Message  string    `json:"message"`
	SentAt   time.Time `json:"sent_at"`
	Endpoint string    `json:"endpoint"`
}
