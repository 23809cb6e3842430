package di

import (
	"cmp"
	"log/slog"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/puzpuzpuz/xsync/v3"

	"github.com/sectrean/di-registry/internal/errors"
	"github.com/sectrean/di-registry/typesys"
)

// Store is a variance-aware registration store.
//
// Producers are registered against a service type. Fetching a type walks its candidate
// sequence (see [Generator]) and returns the producers registered for the first matching
// candidate, so a producer registered for IHandler[Base] also serves IHandler[Derived] when the
// type parameter is contravariant.
//
// Stores can be chained: a child store sees every registration of its parent and can
// override them for some candidates. Fetches are safe for concurrent use with each other
// and with Register.
type Store struct {
	index   *Index
	parent  *Store
	options OptionsReader
	gen     *Generator
	logger  *slog.Logger

	// optionsSet is true if WithOptions was used.
	// Otherwise the options and the generator are inherited from the parent.
	optionsSet bool

	entries *xsync.MapOf[*TypeDescriptor, *containerEntry]
	mu      sync.Mutex
	seq     atomic.Uint64
}

var _ Lookup = (*Store)(nil)

// NewStore creates a new [Store] backed by index.
//
// Available options:
//   - [WithParent] chains the store to a parent store.
//   - [WithOptions] sets the options store read by the store.
//   - [WithLogger] sets the logger.
//   - [WithRegistration] registers a producer.
//   - [WithModule] applies a [Module] of options.
func NewStore(index *Index, opts ...StoreOption) (*Store, error) {
	if index == nil {
		return nil, errors.Wrap(ErrNilIndex, "di.NewStore")
	}

	s := newStore(index)

	err := s.applyOptions(opts)
	if err != nil {
		return nil, errors.Wrap(err, "di.NewStore")
	}

	return s, nil
}

func newStore(index *Index) *Store {
	return &Store{
		index:   index,
		logger:  slog.New(slog.DiscardHandler),
		entries: xsync.NewMapOf[*TypeDescriptor, *containerEntry](),
	}
}

func (s *Store) applyOptions(opts []StoreOption) error {
	// Flatten any modules before sorting and applying options
	opts = flattenModules(opts)

	// Use stable sort because the registration order matters
	slices.SortStableFunc(opts, func(a, b StoreOption) int {
		return cmp.Compare(a.order(), b.order())
	})

	var errs errors.MultiError
	inherited := false
	for _, o := range opts {
		if o.order() > orderConfig && !inherited {
			s.inherit()
			inherited = true
		}

		errs = errs.Append(o.applyStore(s))
	}
	if !inherited {
		s.inherit()
	}

	return errs.Join()
}

// inherit fills in settings that were not configured from the parent.
func (s *Store) inherit() {
	switch {
	case s.optionsSet || s.parent == nil:
		s.gen = NewGenerator(s.index, s.options)
	default:
		s.options = s.parent.options
		s.gen = s.parent.gen
	}
}

// NewChild creates a new [Store] that uses s as its parent.
//
// Registrations made with the child are isolated from the parent and sibling stores.
// The child shares the parent's options and logger unless other options are provided.
func (s *Store) NewChild(opts ...StoreOption) (*Store, error) {
	child := newStore(s.index)
	child.parent = s
	child.logger = s.logger

	err := child.applyOptions(opts)
	if err != nil {
		return nil, errors.Wrap(err, "di.Store.NewChild")
	}

	return child, nil
}

// Index returns the index backing the store.
func (s *Store) Index() *Index {
	return s.index
}

// Parent returns the parent store, or nil.
func (s *Store) Parent() *Store {
	return s.parent
}

// Registration describes one registered producer.
type Registration struct {
	// ID uniquely identifies the registration.
	ID uuid.UUID

	// Seq is the registration order within the store that holds it.
	Seq uint64

	ServiceType *typesys.Type
	Producer    Producer
}

// containerEntry holds the registrations for one container key: a non-generic type
// or an open generic definition. Registrations are grouped by exact service type.
type containerEntry struct {
	lists *xsync.MapOf[*TypeDescriptor, *registrationList]

	// types holds the exact service types in first registration order.
	types descriptorList
}

func newContainerEntry() *containerEntry {
	return &containerEntry{
		lists: xsync.NewMapOf[*TypeDescriptor, *registrationList](),
	}
}

// registrationList is a copy-on-write list of registrations.
// Writers must hold the store lock.
type registrationList struct {
	p atomic.Pointer[[]*Registration]
}

func (l *registrationList) load() []*Registration {
	if regs := l.p.Load(); regs != nil {
		return *regs
	}
	return nil
}

func (l *registrationList) add(r *Registration) {
	cur := l.load()
	next := make([]*Registration, len(cur), len(cur)+1)
	copy(next, cur)
	next = append(next, r)
	l.p.Store(&next)
}

func (l *registrationList) replace(r *Registration) {
	next := []*Registration{r}
	l.p.Store(&next)
}

// containerKey returns the open generic definition of a closed generic or array,
// otherwise the type itself.
func containerKey(d *TypeDescriptor) *TypeDescriptor {
	if d.IsGeneric() {
		return d.definition
	}
	return d
}

// Register registers p for serviceType.
//
// It returns an error wrapping [ErrTypeMismatch] if p does not support serviceType, and
// [ErrDuplicateRegistration] if serviceType is already registered with this store and the
// effective [AllowMultiple] option is false. Nothing is changed if an error is returned.
//
// Available options:
//   - [AllowMultiple] overrides the configured option for this registration.
//   - [Replace] replaces existing registrations for serviceType.
func (s *Store) Register(p Producer, serviceType *typesys.Type, opts ...RegisterOption) error {
	if p == nil {
		return errors.New("di.Store.Register: producer is nil")
	}
	if serviceType == nil {
		return errors.Errorf("di.Store.Register %s: service type is nil", p.DeclaredType())
	}

	var cfg registerConfig
	for _, opt := range opts {
		opt.applyRegister(&cfg)
	}

	if !p.SupportsType(serviceType) {
		return errors.Wrapf(ErrTypeMismatch, "di.Store.Register %s: producer %s", serviceType, p.DeclaredType())
	}

	d := s.index.For(serviceType)
	key := containerKey(d)

	allowMultiple := bool(GetOptionOr(s.options, serviceType, AllowMultiple(true)))
	if cfg.allowMultiple != nil {
		allowMultiple = bool(*cfg.allowMultiple)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entry, _ := s.entries.Load(key)
	var list *registrationList
	if entry != nil {
		list, _ = entry.lists.Load(d)
	}

	if list != nil && len(list.load()) > 0 && !allowMultiple && !cfg.replace {
		return errors.Wrapf(ErrDuplicateRegistration, "di.Store.Register %s", serviceType)
	}

	reg := &Registration{
		ID:          uuid.New(),
		Seq:         s.seq.Add(1),
		ServiceType: serviceType,
		Producer:    p,
	}

	if entry == nil {
		entry = newContainerEntry()
		s.entries.Store(key, entry)
	}
	if list == nil {
		list = &registrationList{}
		entry.lists.Store(d, list)
		entry.types.add(d)
	}

	if cfg.replace {
		list.replace(reg)
	} else {
		list.add(reg)
	}

	s.logger.Debug("registered producer",
		slog.String("service_type", serviceType.String()),
		slog.Any("producer", p),
		slog.Bool("fallback", p.UseFallback()),
		slog.String("id", reg.ID.String()),
	)

	return nil
}

// registrations returns the registrations for exactly d in this store, without parents.
func (s *Store) registrations(d *TypeDescriptor) []*Registration {
	entry, ok := s.entries.Load(containerKey(d))
	if !ok {
		return nil
	}

	list, ok := entry.lists.Load(d)
	if !ok {
		return nil
	}

	return list.load()
}

// Fetch returns the producer for t.
//
// Candidates are checked in order. For each candidate, the store is checked before its
// parents. The first non-fallback producer found is returned, in registration order.
// If only fallback producers are found, the one from the nearest store is returned,
// preferring earlier candidates.
//
// It returns false if nothing matches.
func (s *Store) Fetch(t *typesys.Type) (Producer, bool) {
	req := s.index.For(t)
	if req == nil {
		return nil, false
	}

	var fallback Producer
	fallbackDepth := -1

	for _, c := range s.gen.Candidates(req) {
		depth := 0
		for scope := s; scope != nil; scope = scope.parent {
			for _, reg := range scope.registrations(c.Descriptor) {
				if !reg.Producer.UseFallback() {
					return reg.Producer, true
				}

				if fallbackDepth < 0 || depth < fallbackDepth {
					fallback = reg.Producer
					fallbackDepth = depth
				}
			}
			depth++
		}
	}

	if fallback != nil {
		return fallback, true
	}

	s.logger.Debug("no producer found", slog.String("type", t.String()))
	return nil, false
}

// FetchAll returns every producer for t.
//
// Producers are returned in candidate order, then registration order. For each candidate,
// only the nearest store with producers for it contributes. Fallback producers are only
// returned if there are no other producers.
func (s *Store) FetchAll(t *typesys.Type) []Producer {
	req := s.index.For(t)
	if req == nil {
		return nil
	}

	var producers []Producer
	var fallbacks []Producer

	for _, c := range s.gen.Candidates(req) {
		for scope := s; scope != nil; scope = scope.parent {
			regs := scope.registrations(c.Descriptor)
			found := false
			for _, reg := range regs {
				if reg.Producer.UseFallback() {
					if len(producers) == 0 {
						fallbacks = append(fallbacks, reg.Producer)
					}
					continue
				}

				producers = append(producers, reg.Producer)
				found = true
			}

			if found {
				break
			}
		}
	}

	if len(producers) == 0 {
		return fallbacks
	}
	return producers
}

// Contains returns true if [Store.Fetch] would find a producer for t.
func (s *Store) Contains(t *typesys.Type) bool {
	_, ok := s.Fetch(t)
	return ok
}

// Candidates returns the candidate sequence the store uses for t.
func (s *Store) Candidates(t *typesys.Type) []CandidateEntry {
	req := s.index.For(t)
	if req == nil {
		return nil
	}
	return s.gen.Candidates(req)
}

// Registrations returns the registrations for exactly t, nearest store first.
func (s *Store) Registrations(t *typesys.Type) []Registration {
	d := s.index.For(t)
	if d == nil {
		return nil
	}

	var out []Registration
	for scope := s; scope != nil; scope = scope.parent {
		for _, reg := range scope.registrations(d) {
			out = append(out, *reg)
		}
	}
	return out
}

// ServiceTypes returns every service type registered with this store, without parents,
// grouped by container key.
func (s *Store) ServiceTypes() []*typesys.Type {
	var entries []*containerEntry
	var keys []*TypeDescriptor
	s.entries.Range(func(k *TypeDescriptor, e *containerEntry) bool {
		keys = append(keys, k)
		entries = append(entries, e)
		return true
	})

	idx := make([]int, len(keys))
	for i := range idx {
		idx[i] = i
	}
	slices.SortFunc(idx, func(a, b int) int {
		return cmp.Compare(keys[a].id, keys[b].id)
	})

	var out []*typesys.Type
	for _, i := range idx {
		for _, d := range entries[i].types.load() {
			out = append(out, d.typ)
		}
	}
	return out
}
