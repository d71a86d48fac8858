package pipeline

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Bajtii/Object-detection/internal/model"

	"github.com/samber/lo"
)

const messagePrefix = "detected: "

// BuildMessage formats a batch as "detected: person(95%), laptop(88%)".
// An empty batch yields no message. topK > 0 keeps only the topK most
// confident entries, still emitted in batch order.
func BuildMessage(batch model.DetectionBatch, topK int) (string, bool) {
	if len(batch) == 0 {
		return "", false
	}

	selected := []model.LabeledDetection(batch)
	if topK > 0 && topK < len(batch) {
		selected = topKInOrder(batch, topK)
	}

	parts := lo.Map(selected, func(d model.LabeledDetection, _ int) string {
		return fmt.Sprintf("%s(%d%%)", d.Label, d.ConfidencePercent)
	})
	return messagePrefix + strings.Join(parts, ", "), true
}

func topKInOrder(batch model.DetectionBatch, k int) []model.LabeledDetection {
	idx := lo.Range(len(batch))
	sort.SliceStable(idx, func(a, b int) bool {
		return batch[idx[a]].ConfidencePercent > batch[idx[b]].ConfidencePercent
	})
	keep := idx[:k]
	sort.Ints(keep)

	return lo.Map(keep, func(i int, _ int) model.LabeledDetection {
		return batch[i]
	})
}
