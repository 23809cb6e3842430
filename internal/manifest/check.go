package manifest

import (
	"slices"

	"github.com/sectrean/di-registry"
	"github.com/sectrean/di-registry/internal/errors"
)

// CheckResult is the outcome of one [CheckDecl].
type CheckResult struct {
	Check CheckDecl

	// Got is the name of the fetched producer, or empty.
	Got string

	// GotAll holds the names of every fetched producer if the check lists All.
	GotAll []string

	Err error
}

// OK returns true if the check passed.
func (r CheckResult) OK() bool {
	return r.Err == nil
}

// Check runs the checks declared in the manifest against the store.
func (r *Registry) Check() []CheckResult {
	results := make([]CheckResult, 0, len(r.checks))
	for _, c := range r.checks {
		results = append(results, r.check(c))
	}
	return results
}

func (r *Registry) check(c CheckDecl) CheckResult {
	res := CheckResult{Check: c}

	t, err := r.Universe.Parse(c.Fetch)
	if err != nil {
		res.Err = err
		return res
	}

	if p, ok := r.Store.Fetch(t); ok {
		res.Got = ProducerName(p)
	}

	switch {
	case c.Expect == "" && res.Got != "":
		res.Err = errors.Errorf("fetch %s: expected no producer, got %q", t, res.Got)
		return res
	case c.Expect != "" && res.Got == "":
		res.Err = errors.Wrapf(di.ErrNotFound, "fetch %s: expected %q", t, c.Expect)
		return res
	case c.Expect != res.Got:
		res.Err = errors.Errorf("fetch %s: expected %q, got %q", t, c.Expect, res.Got)
		return res
	}

	if c.All == nil {
		return res
	}

	for _, p := range r.Store.FetchAll(t) {
		res.GotAll = append(res.GotAll, ProducerName(p))
	}
	if !slices.Equal(c.All, res.GotAll) {
		res.Err = errors.Errorf("fetch all %s: expected %q, got %q", t, c.All, res.GotAll)
	}

	return res
}

// ProducerName returns the name of a [di.TypeProducer], or the declared type of any
// other producer.
func ProducerName(p di.Producer) string {
	if tp, ok := p.(*di.TypeProducer); ok {
		return tp.Name()
	}
	return p.DeclaredType().String()
}
