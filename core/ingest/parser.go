package ingest

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"iter"
	"strconv"
	"strings"

	"github.com/huangsam/queuewait/schema"
)

// Parse errors for a single log source.
var (
	ErrHeaderUnresolved = errors.New("no line resolves to a valid header")
	ErrNoObservations   = errors.New("header found but no valid observations follow")
	ErrRead             = errors.New("failed to read log")
)

// maxLineBytes bounds a single log line. Longer lines are skipped.
const maxLineBytes = 1024 * 1024

// ParseRun reads one observation log into a run.
//
// Lines before the header are skipped. After the header, each line becomes a
// candidate observation; fields that fail to parse keep their zero value and
// candidates equal to the zero sentinel are dropped. The first valid
// observation becomes the start, the rest are kept in order.
func ParseRun(r io.Reader) (schema.Run, error) {
	lr := &lineReader{br: bufio.NewReader(r)}

	header, ok := scanHeader(lr)
	if lr.err != nil {
		return schema.Run{}, fmt.Errorf("%w: %w", ErrRead, lr.err)
	}
	if !ok {
		return schema.Run{}, ErrHeaderUnresolved
	}

	var run schema.Run
	found := false
	for obs := range observations(lr, header) {
		if !found {
			run.Start = obs
			found = true
			continue
		}
		run.Subsequent = append(run.Subsequent, obs)
	}
	if lr.err != nil {
		return schema.Run{}, fmt.Errorf("%w: %w", ErrRead, lr.err)
	}
	if !found {
		return schema.Run{}, ErrNoObservations
	}
	return run, nil
}

// lineReader yields lines of any length up to maxLineBytes and records the
// first read error other than io.EOF.
type lineReader struct {
	br  *bufio.Reader
	err error
}

// next returns the next line, terminator included. It reports false at
// the end of input or on a read error.
func (lr *lineReader) next() (string, bool) {
	for {
		line, tooLong, err := lr.readLine()
		if err != nil && !errors.Is(err, io.EOF) {
			lr.err = err
			return "", false
		}
		if tooLong {
			if err != nil {
				return "", false
			}
			continue
		}
		if err != nil && len(line) == 0 {
			return "", false
		}
		return string(line), true
	}
}

// readLine reads through the next newline. Once a line exceeds maxLineBytes
// the rest of it is discarded and tooLong is set.
func (lr *lineReader) readLine() (line []byte, tooLong bool, err error) {
	for {
		chunk, err := lr.br.ReadSlice('\n')
		if !tooLong {
			if len(line)+len(chunk) > maxLineBytes {
				tooLong, line = true, nil
			} else {
				line = append(line, chunk...)
			}
		}
		if errors.Is(err, bufio.ErrBufferFull) {
			continue
		}
		return line, tooLong, err
	}
}

// scanHeader consumes lines until one resolves to a header.
func scanHeader(lr *lineReader) ([]schema.Field, bool) {
	for {
		line, ok := lr.next()
		if !ok {
			return nil, false
		}
		if header, ok := ResolveHeader(line); ok {
			return header, true
		}
	}
}

// observations yields every non-sentinel observation left in the reader.
func observations(lr *lineReader, header []schema.Field) iter.Seq[schema.Observation] {
	return func(yield func(schema.Observation) bool) {
		for {
			line, ok := lr.next()
			if !ok {
				return
			}
			obs := ParseObservation(line, header)
			if obs.IsZero() {
				continue
			}
			if !yield(obs) {
				return
			}
		}
	}
}

// ParseObservation pairs the comma separated values of a row with the header.
// Values beyond the header, or header fields beyond the values, are ignored.
func ParseObservation(line string, header []schema.Field) schema.Observation {
	var obs schema.Observation
	values := strings.Split(trimLineEnding(line), ",")
	for i, field := range header {
		if i >= len(values) {
			break
		}
		setField(&obs, field, values[i])
	}
	return obs
}

// setField parses val into the given field, leaving it untouched on failure.
func setField(obs *schema.Observation, field schema.Field, val string) {
	val = strings.TrimPrefix(val, "+")
	switch field {
	case schema.TimeField:
		if v, err := strconv.ParseUint(val, 10, 64); err == nil {
			obs.Time = v
		}
	case schema.PositionField:
		if v, err := strconv.ParseUint(val, 10, 16); err == nil {
			obs.Position = uint16(v)
		}
	case schema.LengthField:
		if v, err := strconv.ParseUint(val, 10, 16); err == nil {
			obs.Length = uint16(v)
		}
	}
}
