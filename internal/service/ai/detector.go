package ai

import (
	"context"
	"errors"
	"fmt"
	"image"
	"os"
	"sync"
	"time"

	"github.com/Bajtii/Object-detection/internal/config"
	"github.com/Bajtii/Object-detection/internal/logger"
	"github.com/Bajtii/Object-detection/internal/model"

	"gocv.io/x/gocv"
)

const (
	// DefaultConfThreshold is the minimum class score for a candidate.
	DefaultConfThreshold = 0.5
	// DefaultNMSThreshold is the IoU above which overlapping boxes collapse.
	DefaultNMSThreshold = 0.3
	// DefaultInputSize is the square blob size fed to the network.
	DefaultInputSize = 320
	// DefaultTimeout bounds one inference.
	DefaultTimeout = 2 * time.Second
)

var (
	// ErrNotInitialized is returned when the network failed to load.
	ErrNotInitialized = errors.New("detection network not initialized")
	// ErrDetectorBusy is returned while an abandoned inference is still running.
	ErrDetectorBusy = errors.New("detector busy with a previous frame")
	// ErrUnsupportedFrame is returned for frames not backed by a gocv.Mat.
	ErrUnsupportedFrame = errors.New("frame is not backed by a gocv.Mat")
)

// matFrame is satisfied by camera.MatFrame.
type matFrame interface {
	Mat() gocv.Mat
}

// DetectorService runs a Darknet YOLO network through OpenCV DNN.
type DetectorService struct {
	net         gocv.Net
	outputNames []string
	modelConfig string
	modelPath   string

	confThreshold float32
	nmsThreshold  float32
	inputSize     int
	timeout       time.Duration

	busy   sync.Mutex // held for the whole inference, including abandoned ones
	logger *logger.Logger
}

type inference struct {
	detections []model.RawDetection
	err        error
}

// NewDetectorService loads the network described by cfg.
func NewDetectorService(cfg *config.Config, logger *logger.Logger) (*DetectorService, error) {
	s := &DetectorService{
		modelConfig:   cfg.ModelConfig,
		modelPath:     cfg.ModelWeights,
		confThreshold: float32(cfg.ConfThreshold),
		nmsThreshold:  float32(cfg.NMSThreshold),
		inputSize:     cfg.InputSize,
		timeout:       cfg.DetectTimeout,
		logger:        logger,
	}
	if s.confThreshold <= 0 {
		s.confThreshold = DefaultConfThreshold
	}
	if s.nmsThreshold <= 0 {
		s.nmsThreshold = DefaultNMSThreshold
	}
	if s.inputSize <= 0 {
		s.inputSize = DefaultInputSize
	}
	if s.timeout <= 0 {
		s.timeout = DefaultTimeout
	}

	if err := s.initializeNet(); err != nil {
		return nil, err
	}
	return s, nil
}

// initializeNet loads the Darknet network and resolves its output layers.
func (s *DetectorService) initializeNet() error {
	if _, err := os.Stat(s.modelConfig); os.IsNotExist(err) {
		return fmt.Errorf("config file not found: %s", s.modelConfig)
	}
	if _, err := os.Stat(s.modelPath); os.IsNotExist(err) {
		return fmt.Errorf("model file not found: %s", s.modelPath)
	}

	net := gocv.ReadNetFromDarknet(s.modelConfig, s.modelPath)
	if net.Empty() {
		return fmt.Errorf("failed to load network")
	}

	errBackend := net.SetPreferableBackend(gocv.NetBackendDefault)
	errTarget := net.SetPreferableTarget(gocv.NetTargetCPU)
	if errBackend != nil || errTarget != nil {
		net.Close()
		return fmt.Errorf("failed to set preferable backend or target")
	}

	layerNames := net.GetLayerNames()
	for _, id := range net.GetUnconnectedOutLayers() {
		if id-1 >= 0 && id-1 < len(layerNames) {
			s.outputNames = append(s.outputNames, layerNames[id-1])
		}
	}
	if len(s.outputNames) == 0 {
		net.Close()
		return fmt.Errorf("network has no output layers")
	}

	s.net = net
	s.logger.Info("Detection network initialized (%d output layers, input %dx%d)", len(s.outputNames), s.inputSize, s.inputSize)
	return nil
}

// Detect runs the network on frame. The call returns when inference
// finishes or ctx/the detector timeout expires, whichever comes first.
func (s *DetectorService) Detect(ctx context.Context, frame model.Frame) ([]model.RawDetection, error) {
	mf, ok := frame.(matFrame)
	if !ok {
		return nil, ErrUnsupportedFrame
	}
	if len(s.outputNames) == 0 {
		return nil, ErrNotInitialized
	}
	if !s.busy.TryLock() {
		return nil, ErrDetectorBusy
	}

	// The clone lets an abandoned inference outlive the caller's frame.
	img := mf.Mat().Clone()
	done := make(chan inference, 1)
	go func() {
		defer s.busy.Unlock()
		defer img.Close()
		dets, err := s.infer(img)
		done <- inference{detections: dets, err: err}
	}()

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	select {
	case r := <-done:
		return r.detections, r.err
	case <-ctx.Done():
		return nil, fmt.Errorf("detection aborted: %w", ctx.Err())
	}
}

func (s *DetectorService) infer(img gocv.Mat) ([]model.RawDetection, error) {
	if img.Empty() {
		return nil, fmt.Errorf("input image is empty")
	}

	blob := gocv.BlobFromImage(img, 1.0/255.0, image.Pt(s.inputSize, s.inputSize), gocv.NewScalar(0, 0, 0, 0), true, false)
	defer blob.Close()

	s.net.SetInput(blob, "")
	outputs := s.net.ForwardLayers(s.outputNames)
	defer func() {
		for i := range outputs {
			outputs[i].Close()
		}
	}()

	var (
		cands  []candidate
		boxes  []image.Rectangle
		scores []float32
	)
	width, height := img.Cols(), img.Rows()
	for _, out := range outputs {
		cols := out.Cols()
		row := make([]float32, cols)
		for r := 0; r < out.Rows(); r++ {
			for c := 0; c < cols; c++ {
				row[c] = out.GetFloatAt(r, c)
			}
			if cand, ok := parseYOLORow(row, width, height, s.confThreshold); ok {
				cands = append(cands, cand)
				boxes = append(boxes, cand.box)
				scores = append(scores, cand.confidence)
			}
		}
	}

	if len(cands) == 0 {
		return nil, nil
	}

	keep := gocv.NMSBoxes(boxes, scores, s.confThreshold, s.nmsThreshold)
	detections := toRawDetections(cands, keep)
	s.logger.Debug("Detected %d objects (%d candidates)", len(detections), len(cands))
	return detections, nil
}

// Close releases the network. It waits for any in-flight inference.
func (s *DetectorService) Close() error {
	s.busy.Lock()
	defer s.busy.Unlock()
	if len(s.outputNames) == 0 {
		return nil
	}
	s.outputNames = nil
	return s.net.Close()
}
