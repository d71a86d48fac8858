package pipeline

import (
	"github.com/Bajtii/Object-detection/internal/classes"
	"github.com/Bajtii/Object-detection/internal/model"

	"github.com/samber/lo"
)

// ClassesOfInterest is an allowlist of labels. A nil set matches every label.
type ClassesOfInterest map[string]struct{}

// NewClassesOfInterest builds the allowlist; no labels means match all (nil).
func NewClassesOfInterest(labels []string) ClassesOfInterest {
	if len(labels) == 0 {
		return nil
	}
	set := make(ClassesOfInterest, len(labels))
	for _, l := range labels {
		set[l] = struct{}{}
	}
	return set
}

// Allows reports whether label passes the allowlist.
func (c ClassesOfInterest) Allows(label string) bool {
	if c == nil {
		return true
	}
	_, ok := c[label]
	return ok
}

// LabelDetections maps raw detections to labels and whole-percent confidences.
func LabelDetections(raw []model.RawDetection, names classes.Names) model.DetectionBatch {
	return lo.Map(raw, func(d model.RawDetection, _ int) model.LabeledDetection {
		return model.LabeledDetection{
			Label:             names.Label(d.ClassID),
			ConfidencePercent: model.ConfidencePercent(d.Confidence),
		}
	})
}

// FilterBatch keeps entries allowed by interest, preserving order.
// With no allowlist the input is returned unchanged.
func FilterBatch(batch model.DetectionBatch, interest ClassesOfInterest) model.DetectionBatch {
	if interest == nil {
		return batch
	}
	return lo.Filter(batch, func(d model.LabeledDetection, _ int) bool {
		return interest.Allows(d.Label)
	})
}
