// Package notify sends detection summaries to the camera's notify endpoint.
//
// Every candidate passes two gates in order: a debounce gate that drops a
// message identical to the last one delivered, and a rate-limit gate that
// drops anything arriving less than MinInterval after the last delivery.
// Suppressed messages are dropped, never queued. Only a successful dispatch
// moves the state forward, so a failed message stays eligible next cycle.
package notify

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/Bajtii/Object-detection/internal/logger"
	"github.com/Bajtii/Object-detection/internal/model"

	"github.com/benbjohnson/clock"
)

const (
	// DefaultTimeout bounds a single dispatch.
	DefaultTimeout = 3 * time.Second
	// DefaultMinInterval is the minimum gap between two deliveries.
	DefaultMinInterval = 700 * time.Millisecond
	// DefaultParam is the query parameter carrying the message.
	DefaultParam = "msg"
)

// Outcome is the decision taken for one candidate message.
type Outcome int

const (
	OutcomeSent Outcome = iota
	OutcomeDuplicate
	OutcomeRateLimited
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSent:
		return "sent"
	case OutcomeDuplicate:
		return "duplicate"
	case OutcomeRateLimited:
		return "rate_limited"
	case OutcomeFailed:
		return "failed"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// Suppressed reports whether the message was dropped by one of the gates.
func (o Outcome) Suppressed() bool {
	return o == OutcomeDuplicate || o == OutcomeRateLimited
}

// State is the debounce and rate-limit memory. It only changes on a
// successful dispatch and is never persisted.
type State struct {
	LastSentAt  time.Time `json:"last_sent_at"`
	LastPayload string    `json:"last_payload"`
	HasSent     bool      `json:"has_sent"`
}

// Listener is told about every delivered notification. Implementations
// must not block.
type Listener interface {
	NotificationSent(n model.Notification)
}

// Options configures a NotifierService.
type Options struct {
	Endpoint    string
	Param       string
	MinInterval time.Duration
	Timeout     time.Duration
	Client      *http.Client
	Clock       clock.Clock
	Logger      *logger.Logger
	Listeners   []Listener
}

// NotifierService owns the notification state and performs dispatches.
type NotifierService struct {
	endpoint    *url.URL
	param       string
	minInterval time.Duration
	timeout     time.Duration
	client      *http.Client
	clock       clock.Clock
	logger      *logger.Logger

	mu    sync.Mutex // guards state for the whole read-decide-write
	state State

	listenersMu sync.RWMutex
	listeners   []Listener
}

// NewNotifierService validates the endpoint and applies defaults.
func NewNotifierService(opts Options) (*NotifierService, error) {
	endpoint, err := url.Parse(opts.Endpoint)
	if err != nil {
		return nil, fmt.Errorf("invalid notify endpoint %q: %w", opts.Endpoint, err)
	}
	if !endpoint.IsAbs() {
		return nil, fmt.Errorf("notify endpoint must be absolute: %q", opts.Endpoint)
	}

	s := &NotifierService{
		endpoint:    endpoint,
		param:       opts.Param,
		minInterval: opts.MinInterval,
		timeout:     opts.Timeout,
		client:      opts.Client,
		clock:       opts.Clock,
		logger:      opts.Logger,
		listeners:   append([]Listener(nil), opts.Listeners...),
	}
	if s.param == "" {
		s.param = DefaultParam
	}
	if s.timeout <= 0 {
		s.timeout = DefaultTimeout
	}
	if s.client == nil {
		s.client = &http.Client{}
	}
	if s.clock == nil {
		s.clock = clock.New()
	}
	if s.logger == nil {
		s.logger = logger.Nop()
	}
	return s, nil
}

// AddListener registers l for delivered notifications.
func (s *NotifierService) AddListener(l Listener) {
	s.listenersMu.Lock()
	defer s.listenersMu.Unlock()
	s.listeners = append(s.listeners, l)
}

// Notify runs msg through the debounce and rate-limit gates and dispatches
// it when both pass. The returned error is set only for OutcomeFailed.
func (s *NotifierService) Notify(ctx context.Context, msg string) (Outcome, error) {
	outcome, sent, err := s.gateAndDispatch(ctx, msg)
	if outcome == OutcomeSent {
		s.publish(sent)
	}
	return outcome, err
}

// gateAndDispatch holds mu for the whole read-decide-write so that two
// candidates can never both pass the gates.
func (s *NotifierService) gateAndDispatch(ctx context.Context, msg string) (Outcome, model.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()

	if s.state.HasSent && msg == s.state.LastPayload {
		return OutcomeDuplicate, model.Notification{}, nil
	}
	if s.state.HasSent && now.Sub(s.state.LastSentAt) < s.minInterval {
		return OutcomeRateLimited, model.Notification{}, nil
	}

	target := s.buildURL(msg)
	s.logger.Info("[->notify] %s", target)

	if err := s.dispatch(ctx, target); err != nil {
		if ctx.Err() != nil {
			s.logger.Debug("Notify abandoned: %v", err)
		} else {
			s.logger.Error("[NOTIFY ERROR] %v", err)
		}
		return OutcomeFailed, model.Notification{}, err
	}

	s.state = State{LastSentAt: now, LastPayload: msg, HasSent: true}
	return OutcomeSent, model.Notification{Message: msg, SentAt: now, Endpoint: s.endpoint.String()}, nil
}

// Snapshot returns a copy of the current state. It waits for an in-flight
// dispatch to finish, so it can block for up to the dispatch timeout.
func (s *NotifierService) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *NotifierService) publish(n model.Notification) {
	s.listenersMu.RLock()
	defer s.listenersMu.RUnlock()
	for _, l := range s.listeners {
		l.NotificationSent(n)
	}
}
