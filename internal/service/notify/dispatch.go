package notify

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// UserAgent is sent with every outbound request; some camera firmwares
// reject requests without a browser-like agent.
const UserAgent = "Mozilla/5.0"

// ErrStatus is returned when the endpoint answers with a non-2xx status.
var ErrStatus = errors.New("notify endpoint returned non-success status")

// EncodeMessage percent-encodes msg keeping only RFC 3986 unreserved
// characters; spaces become %20.
func EncodeMessage(msg string) string {
	return strings.ReplaceAll(url.QueryEscape(msg), "+", "%20")
}

// buildURL appends <param>=<encoded msg> to the endpoint, keeping any
// query the endpoint already carries.
func (s *NotifierService) buildURL(msg string) string {
	u := *s.endpoint
	pair := s.param + "=" + EncodeMessage(msg)
	if u.RawQuery == "" {
		u.RawQuery = pair
	} else {
		u.RawQuery = u.RawQuery + "&" + pair
	}
	return u.String()
}

func (s *NotifierService) dispatch(ctx context.Context, target string) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return fmt.Errorf("failed to build notify request: %w", err)
	}
	req.Header.Set("User-Agent", UserAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("notify request failed: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: %d", ErrStatus, resp.StatusCode)
	}
	return nil
}
