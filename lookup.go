package di

import (
	"github.com/sectrean/di-registry/internal/errors"
	"github.com/sectrean/di-registry/typesys"
)

// Lookup allows you to fetch producers.
//
// Lookup is implemented by *Store.
type Lookup interface {
	// Fetch returns the best producer for t, or false if nothing matches.
	Fetch(t *typesys.Type) (Producer, bool)

	// FetchAll returns every producer for t.
	FetchAll(t *typesys.Type) []Producer

	// Candidates returns the candidate sequence checked for t.
	Candidates(t *typesys.Type) []CandidateEntry
}

// FetchAs fetches the producer for t and converts it to P.
//
// It returns false if nothing matches or the producer is not a P.
func FetchAs[P Producer](l Lookup, t *typesys.Type) (P, bool) {
	var zero P
	p, ok := l.Fetch(t)
	if !ok {
		return zero, false
	}

	typed, ok := p.(P)
	return typed, ok
}

// MustFetch fetches the producer for t.
//
// If nothing matches, this function will panic.
func MustFetch(l Lookup, t *typesys.Type) Producer {
	p, ok := l.Fetch(t)
	if !ok {
		panic(errors.Wrapf(ErrNotFound, "di.MustFetch %s", t))
	}
	return p
}
