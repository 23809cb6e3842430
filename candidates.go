package di

import (
	"slices"

	"github.com/hashicorp/go-set/v3"
	"github.com/puzpuzpuz/xsync/v3"

	"github.com/sectrean/di-registry/typesys"
)

// CandidateEntry is one type to probe against a registration store.
type CandidateEntry struct {
	Descriptor *TypeDescriptor

	// IsVariantMatch is true if the candidate needed a variance substitution
	// rather than being an exact structural match.
	IsVariantMatch bool
}

func (e CandidateEntry) String() string {
	if e.IsVariantMatch {
		return e.Descriptor.String() + " (variant)"
	}
	return e.Descriptor.String()
}

// Generator is the Candidate Sequence Generator. It computes, for a requested type,
// the ordered and deduplicated sequence of types to probe.
//
// The sequence is:
//  1. the requested type itself,
//  2. for closed generics and arrays, every variant-compatible closed type already known
//     to the [Index], combining the substitutions of each type argument with the last
//     argument varying fastest,
//  3. the open generic definition.
//
// Results are cached until the Index grows or the options change.
// A Generator is safe for concurrent use.
type Generator struct {
	index   *Index
	options OptionsReader
	memo    *xsync.MapOf[*TypeDescriptor, memoEntry]
}

type memoEntry struct {
	generation uint64
	version    uint64
	entries    []CandidateEntry
}

// NewGenerator creates a [Generator] that reads options from r. r may be nil.
func NewGenerator(index *Index, r OptionsReader) *Generator {
	return &Generator{
		index:   index,
		options: r,
		memo:    xsync.NewMapOf[*TypeDescriptor, memoEntry](),
	}
}

// Candidates returns the candidate sequence for requested.
//
// The first entry is always requested itself. The returned slice is owned by the caller.
func (g *Generator) Candidates(requested *TypeDescriptor) []CandidateEntry {
	if requested == nil {
		return nil
	}

	vo, versioned := g.options.(versionedOptions)
	if g.options == nil {
		versioned = true
	}

	var version uint64
	if vo != nil {
		version = vo.Version()
	}
	generation := g.index.Generation()

	if versioned {
		if m, ok := g.memo.Load(requested); ok && m.generation == generation && m.version == version {
			return slices.Clone(m.entries)
		}
	}

	entries := g.generate(requested)

	if versioned {
		g.memo.Store(requested, memoEntry{
			generation: generation,
			version:    version,
			entries:    entries,
		})
	}

	return slices.Clone(entries)
}

func (g *Generator) generate(requested *TypeDescriptor) []CandidateEntry {
	if !requested.IsGeneric() {
		return []CandidateEntry{{Descriptor: requested}}
	}

	c := &candidateSearch{
		g:        g,
		visiting: set.New[searchKey](0),
	}

	seen := set.New[*TypeDescriptor](8)
	var out []CandidateEntry
	for _, e := range c.closures(requested, Forward, g.includeUnknown(requested)) {
		if seen.Insert(e.Descriptor) {
			out = append(out, e)
		}
	}

	if def := requested.definition; def != nil && g.openGenericLookup(requested) {
		if seen.Insert(def) {
			out = append(out, CandidateEntry{Descriptor: def})
		}
	}

	return out
}

func (g *Generator) openGenericLookup(d *TypeDescriptor) bool {
	return bool(GetOptionOr(g.options, d.typ, OpenGenericLookup(true)))
}

func (g *Generator) includeUnknown(d *TypeDescriptor) bool {
	return bool(GetOptionOr(g.options, d.typ, IncludeUnknownTypes(false)))
}

// varianceEnabled returns the variance to use for a parameter whose effective
// variance is v, inside the closed generic scope.
func (g *Generator) varianceEnabled(scope *TypeDescriptor, v typesys.Variance) typesys.Variance {
	switch v {
	case typesys.Covariant:
		if !GetOptionOr(g.options, scope.typ, Covariance(true)) {
			return typesys.Invariant
		}
	case typesys.Contravariant:
		if !GetOptionOr(g.options, scope.typ, Contravariance(true)) {
			return typesys.Invariant
		}
	}
	return v
}

// candidateSearch holds the state of a single candidate generation.
type candidateSearch struct {
	g *Generator

	// visiting holds the substitutions currently being expanded.
	// Covariant walks can reach a generic type that contains the argument being
	// substituted, so re-entering an expansion falls back to the identity.
	visiting *set.Set[searchKey]
}

type searchKey struct {
	d *TypeDescriptor
	v typesys.Variance
}

// closures returns t followed by every known closed type of t's definition whose
// type arguments are compatible substitutions of t's arguments.
// If materialize is set, unknown combinations are created and indexed as well.
func (c *candidateSearch) closures(t *TypeDescriptor, dir Direction, materialize bool) []CandidateEntry {
	def := t.definition
	n := len(t.args)

	seqs := make([][]CandidateEntry, n)
	for i, arg := range t.args {
		v := c.g.varianceEnabled(t, dir.Apply(ParameterVariance(def, i)))
		seqs[i] = c.substitutions(arg, v)
	}

	out := []CandidateEntry{{Descriptor: t}}

	// Odometer over the substitution lists. Position n-1 varies fastest.
	// The all-zero combination is t itself and was added above.
	pos := make([]int, n)
	args := make([]*TypeDescriptor, n)
	for next(pos, seqs) {
		variant := false
		for i, p := range pos {
			args[i] = seqs[i][p].Descriptor
			variant = variant || seqs[i][p].IsVariantMatch
		}

		closed := c.g.closedType(def, args, materialize)
		if closed == nil {
			continue
		}

		out = append(out, CandidateEntry{
			Descriptor:     closed,
			IsVariantMatch: variant,
		})
	}

	return out
}

// substitutions returns the compatible substitutions of arg in a position with effective
// variance v. Each generic substitution is expanded in turn with its own variant closures.
func (c *candidateSearch) substitutions(arg *TypeDescriptor, v typesys.Variance) []CandidateEntry {
	if v == typesys.Invariant {
		return []CandidateEntry{{Descriptor: arg}}
	}

	key := searchKey{d: arg, v: v}
	if !c.visiting.Insert(key) {
		return []CandidateEntry{{Descriptor: arg}}
	}
	defer c.visiting.Remove(key)

	seen := set.New[*TypeDescriptor](4)
	var out []CandidateEntry

	for s := range c.g.index.CompatibleSubstitutions(arg, v, Forward) {
		stepVariant := s != arg
		if seen.Insert(s) {
			out = append(out, CandidateEntry{Descriptor: s, IsVariantMatch: stepVariant})
		}

		if !s.IsGeneric() {
			continue
		}

		// Nested closures never materialize types: new types would show up
		// in the walks still in progress.
		for _, e := range c.closures(s, directionOf(v), false)[1:] {
			if seen.Insert(e.Descriptor) {
				out = append(out, CandidateEntry{
					Descriptor:     e.Descriptor,
					IsVariantMatch: e.IsVariantMatch || stepVariant,
				})
			}
		}
	}

	return out
}

// closedType returns the descriptor for def closed over args if the index knows it.
// If includeUnknown is set, the closed type is created and indexed.
func (g *Generator) closedType(def *TypeDescriptor, args []*TypeDescriptor, includeUnknown bool) *TypeDescriptor {
	if d, ok := def.closedInstance(args); ok {
		return d
	}
	if !includeUnknown {
		return nil
	}

	types := make([]*typesys.Type, len(args))
	for i, a := range args {
		types[i] = a.typ
	}

	ct, err := def.typ.Close(types...)
	if err != nil {
		return nil
	}
	return g.index.For(ct)
}

// next advances pos to the next combination. It returns false when every
// combination has been produced.
func next(pos []int, seqs [][]CandidateEntry) bool {
	for i := len(pos) - 1; i >= 0; i-- {
		pos[i]++
		if pos[i] < len(seqs[i]) {
			return true
		}
		pos[i] = 0
	}
	return false
}
