package pipeline

import (
	"context"

	"github.com/Bajtii/Object-detection/internal/model"
	"github.com/Bajtii/Object-detection/internal/service/notify"
)

// ImageSource yields one decoded frame per call.
type ImageSource interface {
	FetchFrame(ctx context.Context) (model.Frame, error)
}

// Detector runs inference on a frame and returns post-NMS detections in
// detector order. Implementations honour ctx as their latency bound.
type Detector interface {
	Detect(ctx context.Context, frame model.Frame) ([]model.RawDetection, error)
}

// Notifier decides whether a summary may be sent and sends it.
type Notifier interface {
	Notify(ctx context.Context, msg string) (notify.Outcome, error)
}
