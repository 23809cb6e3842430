package di

import (
	"reflect"
	"sync/atomic"

	"github.com/puzpuzpuz/xsync/v3"

	"github.com/sectrean/di-registry/typesys"
)

// Covariance enables substituting more derived type arguments for covariant type parameters.
// The default is true.
type Covariance bool

// Contravariance enables substituting more general type arguments for contravariant type parameters.
// The default is true.
type Contravariance bool

// OpenGenericLookup appends the open generic definition as the last candidate for a closed
// generic type, so registrations against the definition match every instantiation.
// The default is true.
type OpenGenericLookup bool

// IncludeUnknownTypes keeps variant candidates that have never been registered or resolved.
// By default only closed types already known to the [Index] are candidates.
type IncludeUnknownTypes bool

// AllowMultiple allows more than one registration for the same exact service type.
// The default is true.
//
// AllowMultiple can be set on [Options] for a scope, or used directly as a [RegisterOption]
// to override the configured value for a single registration.
type AllowMultiple bool

// OptionsReader is the read side of an options store.
//
// Option returns the value stored for the option type at exactly the given scope.
// A nil scope is the global scope. Use [GetOption] to read with scope fallback.
type OptionsReader interface {
	Option(option reflect.Type, scope *typesys.Type) (any, bool)
}

// versionedOptions is implemented by options stores that can tell when they change.
// Candidate sequences are only cached for versioned stores.
type versionedOptions interface {
	Version() uint64
}

// GetOption reads the option of type T for scope.
//
// The most specific value wins: the closed type itself, then its open generic
// definition, then the global value.
func GetOption[T any](r OptionsReader, scope *typesys.Type) (T, bool) {
	var zero T
	if r == nil {
		return zero, false
	}

	key := reflect.TypeFor[T]()
	for _, s := range scopeChain(scope) {
		val, ok := r.Option(key, s)
		if !ok {
			continue
		}
		if v, ok := val.(T); ok {
			return v, true
		}
	}

	return zero, false
}

// GetOptionOr is like [GetOption] but returns def if the option is not set.
func GetOptionOr[T any](r OptionsReader, scope *typesys.Type, def T) T {
	if v, ok := GetOption[T](r, scope); ok {
		return v
	}
	return def
}

func scopeChain(scope *typesys.Type) []*typesys.Type {
	switch {
	case scope == nil:
		return []*typesys.Type{nil}
	case scope.Definition() != nil:
		return []*typesys.Type{scope, scope.Definition(), nil}
	default:
		return []*typesys.Type{scope, nil}
	}
}

// Options is an in-memory options store.
//
// Values are keyed by their Go type and a scope. Reads do not take locks.
//
// Example:
//
//	opts := di.NewOptions()
//	opts.Set(di.Contravariance(false))               // global
//	opts.Set(di.AllowMultiple(false), intType)       // one type
//	opts.Set(di.Covariance(false), enumerableDef)    // every instantiation of a definition
type Options struct {
	values  *xsync.MapOf[optionKey, any]
	version atomic.Uint64
}

type optionKey struct {
	option reflect.Type
	scope  *typesys.Type
}

var _ OptionsReader = (*Options)(nil)

// NewOptions creates an empty [Options] store.
func NewOptions() *Options {
	return &Options{
		values: xsync.NewMapOf[optionKey, any](),
	}
}

// Set stores value for each scope, or globally if no scope is given.
func (o *Options) Set(value any, scopes ...*typesys.Type) {
	t := reflect.TypeOf(value)
	if len(scopes) == 0 {
		scopes = []*typesys.Type{nil}
	}

	for _, s := range scopes {
		o.values.Store(optionKey{option: t, scope: s}, value)
	}
	o.version.Add(1)
}

// Unset removes the option of the same type as value for each scope, or globally.
func (o *Options) Unset(value any, scopes ...*typesys.Type) {
	t := reflect.TypeOf(value)
	if len(scopes) == 0 {
		scopes = []*typesys.Type{nil}
	}

	for _, s := range scopes {
		o.values.Delete(optionKey{option: t, scope: s})
	}
	o.version.Add(1)
}

// Option implements [OptionsReader].
func (o *Options) Option(option reflect.Type, scope *typesys.Type) (any, bool) {
	return o.values.Load(optionKey{option: option, scope: scope})
}

// Version increases on every change.
func (o *Options) Version() uint64 {
	return o.version.Load()
}
