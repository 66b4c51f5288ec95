package algo

import (
	"math"
	"time"

	"github.com/huangsam/queuewait/schema"
)

// Scaling constants for the encoded features.
const (
	queueScale    = 512.0     // divisor before squashing positions and lengths
	labelHorizonH = 14.0      // hours mapped onto the sigmoid's steep region
	msPerHour     = 3_600_000 // milliseconds in an hour
)

// Sigmoid is the logistic function.
func Sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}

// Logit is the inverse of Sigmoid.
func Logit(y float64) float64 {
	return -math.Log(1/y - 1)
}

// CalendarFeatures returns hour/23, weekday/6 (Monday is 0) and minute/59 for
// a millisecond timestamp read as UTC.
func CalendarFeatures(ms uint64) (hour, weekday, minute float64) {
	t := time.UnixMilli(int64(ms)).UTC()
	dow := (int(t.Weekday()) + 6) % 7
	return float64(t.Hour()) / 23, float64(dow) / 6, float64(t.Minute()) / 59
}

// SquashQueue maps a position or length into (0, 1).
func SquashQueue(v uint16) float64 {
	return Sigmoid(float64(v) / queueScale)
}

// EncodeInputs turns an example into the model's input vector.
func EncodeInputs(ex schema.TrainingExample) []float64 {
	inputs := make([]float64, 0, schema.FeatureCount)
	inputs = appendSnapshot(inputs, ex.StartTime, ex.StartPosition, ex.StartLength)
	inputs = appendSnapshot(inputs, ex.CurrentTime, ex.CurrentPosition, ex.CurrentLength)
	return inputs
}

func appendSnapshot(dst []float64, ms uint64, position, length uint16) []float64 {
	hour, dow, minute := CalendarFeatures(ms)
	return append(dst, hour, dow, minute, SquashQueue(position), SquashQueue(length))
}

// EncodeLabel squashes a remaining wait in milliseconds into (0, 1).
func EncodeLabel(ms uint64) float64 {
	return Sigmoid(float64(ms) / msPerHour / labelHorizonH)
}

// EncodeTargets returns the model's target vector for an example.
func EncodeTargets(ex schema.TrainingExample) []float64 {
	return []float64{EncodeLabel(ex.ElapsedMs)}
}

// Encode returns the full training sample for an example.
func Encode(ex schema.TrainingExample) schema.Sample {
	return schema.Sample{Inputs: EncodeInputs(ex), Targets: EncodeTargets(ex)}
}

// DecodeHours maps a model output back to hours. Outputs of 0 or 1 decode to
// negative or positive infinity.
func DecodeHours(y float64) float64 {
	return Logit(y) * labelHorizonH
}

// EncodeHours is the inverse of DecodeHours.
func EncodeHours(hours float64) float64 {
	return Sigmoid(hours / labelHorizonH)
}
