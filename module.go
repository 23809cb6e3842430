package di

// A Module is a collection of store options.
// It can be used to export a re-usable group of related registrations.
//
// Example:
//
//	var HandlersModule = di.Module{
//		di.WithRegistration(userHandler, handlerOfUser),
//		di.WithRegistration(auditHandler, handlerOfEvent),
//	}
type Module []StoreOption

func (Module) applyStore(*Store) error { return nil }
func (Module) order() optionOrder      { return orderConfig }

// WithModule applies the options in a [Module] when calling [NewStore] or [Store.NewChild].
//
// Example:
//
//	s, err := di.NewStore(index,
//		di.WithModule(HandlersModule), // var HandlersModule di.Module
//		di.WithRegistration(fallback, handlerOfEvent),
//	)
func WithModule(m Module) StoreOption {
	return m
}

// flattenModules expands modules in place, recursively, keeping the order of options.
func flattenModules(opts []StoreOption) []StoreOption {
	out := make([]StoreOption, 0, len(opts))
	for _, opt := range opts {
		if mod, ok := opt.(Module); ok {
			out = append(out, flattenModules(mod)...)
			continue
		}
		out = append(out, opt)
	}

	return out
}
