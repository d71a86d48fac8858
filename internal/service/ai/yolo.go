package ai

import (
	"image"

	"github.com/Bajtii/Object-detection/internal/model"
)

// candidate is a thresholded YOLO row before non-maximum suppression.
type candidate struct {
	classID    int
	confidence float32
	box        image.Rectangle
}

// parseYOLORow reads one Darknet output row laid out as
// [cx, cy, w, h, objectness, score_0 ... score_n] with coordinates
// normalised to the input image. ok is false when the best class score does
// not exceed threshold.
func parseYOLORow(row []float32, width, height int, threshold float32) (candidate, bool) {
	if len(row) <= 5 {
		return candidate{}, false
	}

	scores := row[5:]
	classID := 0
	for i, s := range scores {
		if s > scores[classID] {
			classID = i
		}
	}
	confidence := scores[classID]
	if confidence <= threshold {
		return candidate{}, false
	}

	w := int(row[2] * float32(width))
	h := int(row[3] * float32(height))
	x := int(row[0]*float32(width) - float32(w)/2)
	y := int(row[1]*float32(height) - float32(h)/2)

	return candidate{
		classID:    classID,
		confidence: confidence,
		box:        image.Rect(x, y, x+w, y+h),
	}, true
}

// toRawDetections keeps the candidates selected by NMS in the order NMS
// returned them.
func toRawDetections(cands []candidate, keep []int) []model.RawDetection {
	out := make([]model.RawDetection, 0, len(keep))
	for _, i := range keep {
		if i < 0 || i >= len(cands) {
			continue
		}
		c := cands[i]
		out = append(out, model.RawDetection{
			ClassID:    c.classID,
			Confidence: c.confidence,
			Box: model.BBox{
				X: c.box.Min.X,
				Y: c.box.Min.Y,
				W: c.box.Dx(),
				H: c.box.Dy(),
			},
		})
	}
	return out
}
