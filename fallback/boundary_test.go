package fallback

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quiet() BoundaryBuilderOption {
	return WithLogger(nil)
}

func TestGuardPassesThroughSuccess(t *testing.T) {
	b := NewBoundary(quiet())
	calls := 0
	require.NoError(t, b.Guard(func() error {
		calls++
		return nil
	}))
	assert.Equal(t, 1, calls)
	assert.False(t, b.Tripped())
	assert.Empty(t, b.Message())
	assert.NoError(t, b.Err())
}

func TestGuardCapturesReturnedError(t *testing.T) {
	b := NewBoundary(quiet())
	boom := errors.New("texture upload failed")

	err := b.Guard(func() error { return boom })
	assert.ErrorIs(t, err, boom)
	assert.True(t, b.Tripped())
	assert.Equal(t, "Something went wrong:\ntexture upload failed", b.Message())
}

func TestGuardRecoversPanics(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  string
	}{
		{name: "string", value: "index out of range", want: "index out of range"},
		{name: "error", value: fmt.Errorf("renderer: %w", errors.New("device lost")), want: "renderer: device lost"},
		{name: "other", value: 42, want: "42"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewBoundary(quiet())
			err := b.Guard(func() error { panic(tt.value) })

			var pe *PanicError
			require.ErrorAs(t, err, &pe)
			assert.NotEmpty(t, pe.Stack)
			assert.True(t, b.Tripped())
			assert.Equal(t, Heading+"\n"+tt.want, b.Message())
		})
	}
}

func TestPanicErrorUnwrap(t *testing.T) {
	inner := errors.New("inner")
	b := NewBoundary(quiet())
	err := b.Guard(func() error { panic(inner) })
	assert.ErrorIs(t, err, inner)
}

func TestBoundaryStaysTrippedOnFirstFault(t *testing.T) {
	var logged []string
	b := NewBoundary(WithLogger(func(format string, args ...any) {
		logged = append(logged, fmt.Sprintf(format, args...))
	}))

	first := errors.New("first")
	_ = b.Guard(func() error { return first })
	_ = b.Guard(func() error { panic("second") })
	b.Trip(errors.New("third"))
	b.Trip(nil)

	assert.Equal(t, first, b.Err())
	assert.Equal(t, "Something went wrong:\nfirst", b.Message())
	assert.Len(t, logged, 1, "only the captured fault is logged")

	// guarded work still runs and reports its own fault
	err := b.Guard(func() error { return errors.New("later") })
	assert.EqualError(t, err, "later")
	assert.Equal(t, first, b.Err())
}

func TestTripNilKeepsBoundaryClear(t *testing.T) {
	b := NewBoundary(quiet())
	b.Trip(nil)
	assert.False(t, b.Tripped())
}
