package coin

// Controller ties a composed coin to the frame loop: the sequencer animates the root and the
// spinner turns the spiral groups. Both are created on Mount and dropped on Unmount.
type Controller interface {
	// Mount creates the sequencer and spinner and starts the first cycle. No-op while mounted.
	Mount()

	// Unmount stops the sequencer and the spinner and drops them. No-op when not mounted.
	Unmount()

	// Update is the per-frame hook: the sequencer advances by dt, then the spinner steps once.
	// No-op when not mounted.
	//
	// Parameters:
	//   - dt: the frame time in seconds
	Update(dt float32)

	// Mounted reports whether the controller is mounted.
	Mounted() bool

	// Sequencer returns the mounted sequencer, nil when not mounted.
	Sequencer() Sequencer

	// Spinner returns the mounted spinner, nil when not mounted.
	Spinner() Spinner
}

type controller struct {
	coin *Coin

	sequencerOptions []SequencerBuilderOption
	spinnerOptions   []SpinnerBuilderOption

	sequencer Sequencer
	spinner   Spinner
}

var _ Controller = &controller{}

// NewController creates an unmounted Controller for c.
//
// Parameters:
//   - c: the composed coin
//   - options: functional options to configure the controller
//
// Returns:
//   - Controller: the new controller
func NewController(c *Coin, options ...ControllerBuilderOption) Controller {
	if c == nil || c.Root == nil || c.FrontSpiral == nil || c.BackSpiral == nil {
		panic("coin: NewController requires a composed Coin")
	}
	ctl := &controller{coin: c}
	for _, opt := range options {
		opt(ctl)
	}
	return ctl
}

func (c *controller) Mount() {
	if c.sequencer != nil {
		return
	}
	c.sequencer = NewSequencer(c.coin.Root.Transform(), c.sequencerOptions...)
	c.spinner = NewSpinner(c.coin.FrontSpiral.Transform(), c.coin.BackSpiral.Transform(), c.spinnerOptions...)
	c.sequencer.Start()
}

func (c *controller) Unmount() {
	if c.sequencer == nil {
		return
	}
	c.sequencer.Stop()
	c.spinner.Stop()
	c.sequencer, c.spinner = nil, nil
}

func (c *controller) Update(dt float32) {
	if c.sequencer == nil {
		return
	}
	c.sequencer.Update(dt)
	c.spinner.Step()
}

func (c *controller) Mounted() bool {
	return c.sequencer != nil
}

func (c *controller) Sequencer() Sequencer {
	return c.sequencer
}

func (c *controller) Spinner() Spinner {
	return c.spinner
}

// ControllerBuilderOption is a functional option for configuring a Controller during construction.
type ControllerBuilderOption func(*controller)

// WithSequencerOptions sets the options every mounted sequencer is created with.
func WithSequencerOptions(options ...SequencerBuilderOption) ControllerBuilderOption {
	return func(c *controller) {
		c.sequencerOptions = append(c.sequencerOptions, options...)
	}
}

// WithSpinnerOptions sets the options every mounted spinner is created with.
func WithSpinnerOptions(options ...SpinnerBuilderOption) ControllerBuilderOption {
	return func(c *controller) {
		c.spinnerOptions = append(c.spinnerOptions, options...)
	}
}
