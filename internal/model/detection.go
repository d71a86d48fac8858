package model

import "math"

// BBox is a bounding box in source image pixels.
type BBox struct {
	X int `json:"x"`
	Y int `json:"y"`
	W int `json:"w"`
	H int `json:"h"`
}

// RawDetection is one post-NMS candidate returned by a detector.
type RawDetection struct {
	ClassID    int     `json:"class_id"`
	Confidence float32 `json:"confidence"`
	Box        BBox    `json:"bbox"`
}

// LabeledDetection is a detection with its human label and confidence in whole percent.
type LabeledDetection struct {
	Label             string `json:"label"`
	ConfidencePercent int    `json:"confidence_percent"`
}

// DetectionBatch holds the labeled detections of one cycle in detector order.
type DetectionBatch []LabeledDetection

// ConfidencePercent floors confidence*100 into [0,100].
func ConfidencePercent(confidence float32) int {
	scaled := float32(confidence * 100)
	pct := int(math.Floor(float64(scaled)))
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return pct
}
