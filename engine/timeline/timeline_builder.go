package timeline

// TimelineBuilderOption is a functional option for configuring a Timeline during construction.
type TimelineBuilderOption func(*timeline)

// WithOnComplete sets the callback fired once when the playhead passes the end of the timeline.
// Kill with no targets disarms it.
//
// Parameters:
//   - fn: the completion callback
//
// Returns:
//   - TimelineBuilderOption: functional option to set the completion callback
func WithOnComplete(fn func()) TimelineBuilderOption {
	return func(t *timeline) {
		t.onComplete = fn
	}
}
