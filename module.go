package di

// A Module is a collection of container options.
// It can be used to export a re-usable group of related bindings.
//
// Example:
//
//	var StorageModule = di.Module{
//		di.WithBinding(NewDB),
//		di.WithBinding(NewStore),
//		di.WithAlias[Store, *SQLStore](),
//	}
type Module []ContainerOption

func (Module) applyContainer(c *Container) error { return nil }
func (Module) order() optionOrder                { return orderLogger }

// WithModule applies the options in a [Module] when calling [NewContainer]
// or [Container.NewScope].
//
// Example:
//
//	c, err := di.NewContainer(
//		di.WithModule(StorageModule),
//		di.WithBinding(NewHandler),
//	)
func WithModule(m Module) ContainerOption {
	return m
}

// flattenModules expands modules, including modules nested inside modules,
// into a flat option list. The Module values themselves are kept; applying
// them is a no-op.
func flattenModules(opts []ContainerOption) []ContainerOption {
	flat := make([]ContainerOption, 0, len(opts))
	for _, opt := range opts {
		flat = append(flat, opt)
		if mod, ok := opt.(Module); ok {
			flat = append(flat, flattenModules(mod)...)
		}
	}

	return flat
}
