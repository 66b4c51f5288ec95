package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObservationIsZero(t *testing.T) {
	assert.True(t, Observation{}.IsZero())
	assert.False(t, Observation{Time: 1}.IsZero())
	assert.False(t, Observation{Position: 1}.IsZero())
	assert.False(t, Observation{Length: 1}.IsZero())
}

func TestRunEnd(t *testing.T) {
	t.Run("empty subsequent", func(t *testing.T) {
		_, err := Run{Start: Observation{Time: 100}}.End()
		assert.ErrorIs(t, err, ErrEmptyRun)
	})

	t.Run("last subsequent is the end", func(t *testing.T) {
		run := Run{
			Start:      Observation{Time: 100, Position: 5, Length: 10},
			Subsequent: []Observation{{Time: 150, Position: 3, Length: 10}, {Time: 200, Length: 10}},
		}
		end, err := run.End()
		require.NoError(t, err)
		assert.Equal(t, Observation{Time: 200, Length: 10}, end)
	})
}

func TestRunClone(t *testing.T) {
	run := Run{Start: Observation{Time: 1}, Subsequent: []Observation{{Time: 2}}}
	clone := run.Clone()
	clone.Subsequent[0].Time = 99
	assert.Equal(t, uint64(2), run.Subsequent[0].Time)
}

func TestFieldString(t *testing.T) {
	assert.Equal(t, "time", TimeField.String())
	assert.Equal(t, "position", PositionField.String())
	assert.Equal(t, "length", LengthField.String())
	assert.Equal(t, "unknown", Field(42).String())
}
