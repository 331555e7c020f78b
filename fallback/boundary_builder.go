package fallback

// BoundaryBuilderOption is a functional option for configuring a Boundary.
type BoundaryBuilderOption func(*boundary)

// WithLogger replaces the function the captured fault is logged with.
//
// Parameters:
//   - logger: a Printf style function, nil silences the boundary
//
// Returns:
//   - BoundaryBuilderOption: option function to apply
func WithLogger(logger func(format string, args ...any)) BoundaryBuilderOption {
	return func(b *boundary) {
		if logger == nil {
			logger = func(string, ...any) {}
		}
		b.logger = logger
	}
}
