package coin

import (
	"fmt"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/flip/engine/environment"
)

// Assets is the outcome of Prepare.
type Assets struct {
	Coin *Coin
	Err  error
}

// Prepare bakes the environment map and composes the coin on a background goroutine, both spread
// over the pool. The result is delivered once on the returned channel, so the frame loop can poll it
// without blocking and upload on its own goroutine.
//
// Parameters:
//   - pool: the worker pool
//   - env: the environment to bake
//
// Returns:
//   - <-chan Assets: receives exactly one value
func Prepare(pool worker.DynamicWorkerPool, env environment.Environment) <-chan Assets {
	out := make(chan Assets, 1)
	go func() {
		if err := env.Bake(pool); err != nil {
			out <- Assets{Err: fmt.Errorf("failed to bake environment: %w", err)}
			return
		}
		c, err := Compose(pool)
		if err != nil {
			out <- Assets{Err: err}
			return
		}
		out <- Assets{Coin: c}
	}()
	return out
}
