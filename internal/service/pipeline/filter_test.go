package pipeline

import (
	"testing"

	"github.com/Bajtii/Object-detection/internal/classes"
	"github.com/Bajtii/Object-detection/internal/model"
)

func TestLabelDetections(t *testing.T) {
	names := classes.Names{"person", "bicycle", "car"}
	raw := []model.RawDetection{
		{ClassID: 2, Confidence: 0.88},
		{ClassID: 0, Confidence: 0.955},
		{ClassID: 7, Confidence: 0.5},
	}

	batch := LabelDetections(raw, names)

	expected := model.DetectionBatch{
		{Label: "car", ConfidencePercent: 88},
		{Label: "person", ConfidencePercent: 95},
		{Label: "7", ConfidencePercent: 50},
	}
	if len(batch) != len(expected) {
		t.Fatalf("Expected %d entries, got %d", len(expected), len(batch))
	}
	for i := range expected {
		if batch[i] != expected[i] {
			t.Errorf("batch[%d] = %+v, expected %+v", i, batch[i], expected[i])
		}
	}
}

func TestFilterBatch_NoInterestReturnsInput(t *testing.T) {
	batch := model.DetectionBatch{
		{Label: "dog", ConfidencePercent: 80},
		{Label: "person", ConfidencePercent: 90},
	}

	out := FilterBatch(batch, NewClassesOfInterest(nil))

	if len(out) != 2 || out[0].Label != "dog" || out[1].Label != "person" {
		t.Errorf("Expected unchanged batch, got %+v", out)
	}
}

func TestFilterBatch_KeepsOnlyInterestingInOrder(t *testing.T) {
	batch := model.DetectionBatch{
		{Label: "cat", ConfidencePercent: 60},
		{Label: "dog", ConfidencePercent: 80},
		{Label: "person", ConfidencePercent: 90},
		{Label: "cat", ConfidencePercent: 99},
	}

	out := FilterBatch(batch, NewClassesOfInterest([]string{"cat", "person"}))

	labels := []string{"cat", "person", "cat"}
	if len(out) != len(labels) {
		t.Fatalf("Expected %d entries, got %+v", len(labels), out)
	}
	for i, l := range labels {
		if out[i].Label != l {
			t.Errorf("out[%d] = %q, expected %q", i, out[i].Label, l)
		}
	}
}

func TestFilterBatch_NothingInteresting(t *testing.T) {
	batch := model.DetectionBatch{{Label: "dog", ConfidencePercent: 80}}

	if out := FilterBatch(batch, NewClassesOfInterest([]string{"person"})); len(out) != 0 {
		t.Errorf("Expected empty batch, got %+v", out)
	}
}

func TestClassesOfInterest_Allows(t *testing.T) {
	var all ClassesOfInterest
	if !all.Allows("anything") {
		t.Error("nil set must allow every label")
	}

	some := NewClassesOfInterest([]string{"person"})
	if !some.Allows("person") || some.Allows("Person") {
		t.Error("Allowlist must match labels exactly")
	}
}
