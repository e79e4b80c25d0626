package di

// Logger receives debug messages as the Container registers and resolves
// bindings. It is satisfied by most leveled logging libraries, either
// directly or through a small adapter.
type Logger interface {
	Debugf(format string, args ...any)
}

// WithLogger sets the [Logger] the Container reports registration,
// resolution, and close events to. Child scopes created with
// [Container.NewScope] inherit the parent's logger.
//
// By default the Container logs nothing.
func WithLogger(l Logger) ContainerOption {
	return newContainerOption(orderLogger, func(c *Container) error {
		c.logger = l
		return nil
	})
}

type nopLogger struct{}

func (nopLogger) Debugf(string, ...any) {}
