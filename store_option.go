package di

import (
	"log/slog"

	"github.com/sectrean/di-registry/internal/errors"
	"github.com/sectrean/di-registry/typesys"
)

// StoreOption is used to configure a new [Store] when calling [NewStore] or [Store.NewChild].
type StoreOption interface {
	order() optionOrder
	applyStore(*Store) error
}

type optionOrder int8

const (
	orderConfig optionOrder = iota
	orderRegistration
)

func newStoreOption(order optionOrder, fn func(*Store) error) StoreOption {
	return storeOption{fn: fn, ord: order}
}

type storeOption struct {
	fn  func(*Store) error
	ord optionOrder
}

func (o storeOption) order() optionOrder {
	return o.ord
}

func (o storeOption) applyStore(s *Store) error {
	return o.fn(s)
}

// WithParent chains the new [Store] to parent.
//
// The new store sees every registration of the parent. Registrations made with the new
// store are isolated from the parent. Both stores must share the same [Index].
func WithParent(parent *Store) StoreOption {
	return newStoreOption(orderConfig, func(s *Store) error {
		if parent == nil {
			return errors.New("with parent: parent is nil")
		}
		if parent.index != s.index {
			return errors.New("with parent: parent uses a different index")
		}

		s.parent = parent
		return nil
	})
}

// WithOptions sets the options read by the [Store].
// Without this option, a child store uses its parent's options.
func WithOptions(r OptionsReader) StoreOption {
	return newStoreOption(orderConfig, func(s *Store) error {
		s.options = r
		s.optionsSet = true
		return nil
	})
}

// WithLogger sets the logger used by the [Store].
// Registrations and misses are logged at debug level.
func WithLogger(logger *slog.Logger) StoreOption {
	return newStoreOption(orderConfig, func(s *Store) error {
		if logger == nil {
			return errors.New("with logger: logger is nil")
		}

		s.logger = logger
		return nil
	})
}

// WithRegistration registers p for serviceType when the [Store] is created.
// Registrations are applied after every other option, in the order given.
//
// Example:
//
//	s, err := di.NewStore(index,
//		di.WithRegistration(handler, handlerIface),
//		di.WithRegistration(emptyHandlers, handlerList, di.AllowMultiple(false)),
//	)
func WithRegistration(p Producer, serviceType *typesys.Type, opts ...RegisterOption) StoreOption {
	return newStoreOption(orderRegistration, func(s *Store) error {
		err := s.Register(p, serviceType, opts...)
		if err != nil {
			return errors.Wrap(err, "with registration")
		}
		return nil
	})
}
