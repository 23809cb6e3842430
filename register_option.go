package di

// RegisterOption can be used when calling [Store.Register] or [WithRegistration].
//
// Available options:
//   - [AllowMultiple] overrides the configured multiplicity for one registration.
//   - [Replace] replaces existing registrations for the service type.
type RegisterOption interface {
	applyRegister(*registerConfig)
}

type registerConfig struct {
	allowMultiple *AllowMultiple
	replace       bool
}

type registerOption func(*registerConfig)

func (o registerOption) applyRegister(cfg *registerConfig) {
	o(cfg)
}

func (a AllowMultiple) applyRegister(cfg *registerConfig) {
	cfg.allowMultiple = &a
}

// Replace replaces every existing registration for the exact service type
// with the new one. Duplicate registration checks are skipped.
func Replace() RegisterOption {
	return registerOption(func(cfg *registerConfig) {
		cfg.replace = true
	})
}
