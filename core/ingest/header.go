// Package ingest turns observation logs into runs.
package ingest

import (
	"strings"

	"github.com/huangsam/queuewait/schema"
)

// fieldAliases maps lowercase column names to the field they carry.
var fieldAliases = map[string]schema.Field{
	"time":                 schema.TimeField,
	"position":             schema.PositionField,
	"length":               schema.LengthField,
	"currentqueuelength":   schema.LengthField,
	"current_queue_length": schema.LengthField,
}

// ResolveHeader maps each comma separated column of a header line to its field.
// It returns false when any column is unknown or when two columns resolve to
// the same field.
func ResolveHeader(line string) ([]schema.Field, bool) {
	line = trimLineEnding(line)

	var fields []schema.Field
	seen := make(map[schema.Field]bool, 3)
	for name := range strings.SplitSeq(line, ",") {
		field, ok := fieldAliases[strings.ToLower(name)]
		if !ok || seen[field] {
			return nil, false
		}
		seen[field] = true
		fields = append(fields, field)
	}
	return fields, true
}

// trimLineEnding strips a single trailing "\n" or "\r\n".
func trimLineEnding(line string) string {
	if s, ok := strings.CutSuffix(line, "\n"); ok {
		line = s
		line = strings.TrimSuffix(line, "\r")
	}
	return line
}
