package di

import (
	"github.com/sectrean/di-registry/internal/errors"
	"github.com/sectrean/di-registry/typesys"
)

// Producer is anything that can be registered with a [Store].
//
// The store never inspects a Producer beyond these methods. How a producer
// actually constructs a value is up to the caller.
type Producer interface {
	// DeclaredType is the type the producer was declared to create.
	DeclaredType() *typesys.Type

	// SupportsType returns true if the producer can serve requests for t.
	SupportsType(t *typesys.Type) bool

	// UseFallback returns true for placeholder producers, such as an empty collection,
	// that should only be used when no other producer matches.
	UseFallback() bool
}

// TypeProducer is a [Producer] for a declared host type.
// It supports every type its declared type is assignable to.
type TypeProducer struct {
	declared *typesys.Type
	name     string
	value    any
	fallback bool
}

var _ Producer = (*TypeProducer)(nil)

// NewProducer creates a [TypeProducer] for the declared type.
//
// Available options:
//   - [AsFallback] marks the producer as a fallback.
//   - [WithName] sets the name used in logs and diagnostics.
//   - [WithValue] attaches a value that the producer stands for.
func NewProducer(declared *typesys.Type, opts ...ProducerOption) (*TypeProducer, error) {
	if declared == nil {
		return nil, errors.New("di.NewProducer: declared type is nil")
	}

	p := &TypeProducer{declared: declared}
	for _, opt := range opts {
		opt.applyProducer(p)
	}

	return p, nil
}

// MustNewProducer is like [NewProducer] but panics on error.
func MustNewProducer(declared *typesys.Type, opts ...ProducerOption) *TypeProducer {
	p, err := NewProducer(declared, opts...)
	if err != nil {
		panic(err)
	}
	return p
}

// DeclaredType implements [Producer].
func (p *TypeProducer) DeclaredType() *typesys.Type {
	return p.declared
}

// SupportsType implements [Producer].
func (p *TypeProducer) SupportsType(t *typesys.Type) bool {
	return typesys.AssignableTo(p.declared, t)
}

// UseFallback implements [Producer].
func (p *TypeProducer) UseFallback() bool {
	return p.fallback
}

// Name returns the name set with [WithName], or the declared type name.
func (p *TypeProducer) Name() string {
	if p.name != "" {
		return p.name
	}
	return p.declared.String()
}

// Value returns the value set with [WithValue].
func (p *TypeProducer) Value() any {
	return p.value
}

func (p *TypeProducer) String() string {
	if p.fallback {
		return p.Name() + " (fallback)"
	}
	return p.Name()
}

// ProducerOption is used to configure a [TypeProducer] when calling [NewProducer].
type ProducerOption interface {
	applyProducer(*TypeProducer)
}

type producerOption func(*TypeProducer)

func (o producerOption) applyProducer(p *TypeProducer) {
	o(p)
}

// AsFallback marks the producer as a fallback.
// Fallback producers are only returned when no other producer matches.
func AsFallback() ProducerOption {
	return producerOption(func(p *TypeProducer) {
		p.fallback = true
	})
}

// WithName sets the name of the producer.
func WithName(name string) ProducerOption {
	return producerOption(func(p *TypeProducer) {
		p.name = name
	})
}

// WithValue attaches a value to the producer.
//
// Example:
//
//	p, err := di.NewProducer(handlerType, di.WithValue(NewHandler))
func WithValue(val any) ProducerOption {
	return producerOption(func(p *TypeProducer) {
		p.value = val
	})
}
