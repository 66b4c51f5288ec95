package algo

import "math"

// survivalPoint is one row of the measured survival table.
type survivalPoint struct {
	length uint16
	prob   float64
}

// survivalTable holds the per-second probability that a queued client stays
// in the queue, measured at a few queue lengths. Sorted by length.
var survivalTable = []survivalPoint{
	{93, 0.9998618838664679},
	{207, 0.9999220416881794},
	{231, 0.9999234240704379},
	{257, 0.9999291667668093},
	{412, 0.9999410569845172},
	{418, 0.9999168965649361},
	{486, 0.9999440195022513},
	{506, 0.9999262577896301},
	{550, 0.9999462301738332},
	{586, 0.999938895110192},
	{666, 0.9999219189483673},
	{758, 0.9999473463335498},
	{789, 0.9999337457796981},
	{826, 0.9999279556964097},
}

// queueOffset smooths the position ratio for short queues.
const queueOffset = 150.0

// Survival returns the interpolated survival probability for a queue length.
// Lengths below the table return 0 and lengths at or beyond its end return
// the last probability.
func Survival(length uint16) float64 {
	first, last := survivalTable[0], survivalTable[len(survivalTable)-1]
	switch {
	case length < first.length:
		return 0
	case length >= last.length:
		return last.prob
	}

	for i := 1; i < len(survivalTable); i++ {
		hi := survivalTable[i]
		if hi.length <= length {
			continue
		}
		lo := survivalTable[i-1]
		slope := (hi.prob - lo.prob) / float64(hi.length-lo.length)
		return lo.prob + slope*float64(length-lo.length)
	}
	return last.prob
}

// EstimateSeconds returns the baseline estimate of the remaining wait in
// seconds for a client at position in a queue of the given length.
// Unknown survival (lengths below the table) yields 0.
func EstimateSeconds(position, length uint16) float64 {
	s := Survival(length)
	if s <= 0 || s >= 1 {
		return 0
	}
	b := math.Log(s)
	at := func(p uint16) float64 {
		return math.Log((float64(p)+queueOffset)/(float64(length)+queueOffset)) / b
	}
	return at(0) - at(position)
}

// EstimateHours is EstimateSeconds in hours.
func EstimateHours(position, length uint16) float64 {
	return EstimateSeconds(position, length) / 3600
}
