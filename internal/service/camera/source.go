// Package camera fetches still JPEG frames from a networked camera and
// decodes them with OpenCV.
package camera

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/Bajtii/Object-detection/internal/config"
	"github.com/Bajtii/Object-detection/internal/logger"
	"github.com/Bajtii/Object-detection/internal/model"

	"gocv.io/x/gocv"
)

const (
	// DefaultFetchTimeout bounds one frame request.
	DefaultFetchTimeout = 5 * time.Second
	// maxFrameBytes caps a single JPEG body.
	maxFrameBytes = 16 << 20
	userAgent     = "Mozilla/5.0"
)

var (
	// ErrStatus is returned when the camera answers with a non-2xx status.
	ErrStatus = errors.New("camera returned non-success status")
	// ErrDecode is returned when the body is not a decodable image.
	ErrDecode = errors.New("failed to decode image")
)

// MatFrame is a decoded frame backed by a gocv.Mat.
type MatFrame struct {
	mat gocv.Mat
}

// NewMatFrame takes ownership of mat.
func NewMatFrame(mat gocv.Mat) *MatFrame {
	return &MatFrame{mat: mat}
}

// Mat returns the underlying matrix; it stays owned by the frame.
func (f *MatFrame) Mat() gocv.Mat { return f.mat }

func (f *MatFrame) Width() int  { return f.mat.Cols() }
func (f *MatFrame) Height() int { return f.mat.Rows() }

func (f *MatFrame) Close() error { return f.mat.Close() }

// SourceService pulls frames over HTTP.
type SourceService struct {
	url     string
	timeout time.Duration
	client  *http.Client
	logger  *logger.Logger
}

// NewSourceService creates a camera source from config.
func NewSourceService(cfg *config.Config, logger *logger.Logger) *SourceService {
	timeout := cfg.FetchTimeout
	if timeout <= 0 {
		timeout = DefaultFetchTimeout
	}
	return &SourceService{
		url:     cfg.CameraURL,
		timeout: timeout,
		client:  &http.Client{},
		logger:  logger,
	}
}

// FetchFrame downloads and decodes one frame.
func (s *SourceService) FetchFrame(ctx context.Context) (model.Frame, error) {
	data, err := s.FetchJPEG(ctx)
	if err != nil {
		return nil, err
	}
	return Decode(data)
}

// FetchJPEG downloads the raw image bytes within the fetch timeout.
func (s *SourceService) FetchJPEG(ctx context.Context) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build camera request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("camera request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %d", ErrStatus, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxFrameBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read camera body: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty body", ErrDecode)
	}
	return data, nil
}

// Decode turns JPEG bytes into a color frame.
func Decode(data []byte) (*MatFrame, error) {
	mat, err := gocv.IMDecode(data, gocv.IMReadColor)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	if mat.Empty() {
		mat.Close()
		return nil, fmt.Errorf("%w: decoded image is empty", ErrDecode)
	}
	return NewMatFrame(mat), nil
}
