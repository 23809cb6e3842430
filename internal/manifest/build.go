package manifest

import (
	"github.com/hashicorp/go-set/v3"

	"github.com/sectrean/di-registry"
	"github.com/sectrean/di-registry/internal/errors"
	"github.com/sectrean/di-registry/typesys"
)

// Registry is a built manifest.
type Registry struct {
	Universe *typesys.Universe
	Index    *di.Index
	Options  *di.Options
	Store    *di.Store

	checks []CheckDecl
}

var kinds = map[string]typesys.Kind{
	"class":     typesys.ClassKind,
	"interface": typesys.InterfaceKind,
	"struct":    typesys.StructKind,
	"delegate":  typesys.DelegateKind,
}

var optionValues = map[string]func(bool) any{
	"covariance":            func(v bool) any { return di.Covariance(v) },
	"contravariance":        func(v bool) any { return di.Contravariance(v) },
	"open_generic_lookup":   func(v bool) any { return di.OpenGenericLookup(v) },
	"include_unknown_types": func(v bool) any { return di.IncludeUnknownTypes(v) },
	"allow_multiple":        func(v bool) any { return di.AllowMultiple(v) },
}

// Build declares the manifest types in a new universe, sets the options and registers
// the producers with a new store. opts are passed to [di.NewStore] after [di.WithOptions].
func (m *Manifest) Build(opts ...di.StoreOption) (*Registry, error) {
	r := &Registry{
		Universe: typesys.NewUniverse(),
		Index:    di.NewIndex(),
		Options:  di.NewOptions(),
		checks:   m.Checks,
	}

	if err := r.defineTypes(m.Types); err != nil {
		return nil, errors.Wrap(err, "build manifest")
	}
	if err := r.setOptions(m.Options); err != nil {
		return nil, errors.Wrap(err, "build manifest")
	}

	storeOpts := make([]di.StoreOption, 0, len(opts)+1)
	storeOpts = append(storeOpts, di.WithOptions(r.Options))
	storeOpts = append(storeOpts, opts...)

	s, err := di.NewStore(r.Index, storeOpts...)
	if err != nil {
		return nil, errors.Wrap(err, "build manifest")
	}
	r.Store = s

	if err := r.register(m.Registrations); err != nil {
		return nil, errors.Wrap(err, "build manifest")
	}

	return r, nil
}

func (r *Registry) defineTypes(decls []TypeDecl) error {
	u := r.Universe
	defs := make([]*typesys.Type, len(decls))

	var errs errors.MultiError
	for i, decl := range decls {
		var opts []typesys.DefineOption
		if len(decl.Params) > 0 {
			params := make([]typesys.TypeParam, len(decl.Params))
			for j, p := range decl.Params {
				switch p.Variance {
				case "in":
					params[j] = typesys.In(p.Name)
				case "out":
					params[j] = typesys.Out(p.Name)
				default:
					params[j] = typesys.Inv(p.Name)
				}
			}
			opts = append(opts, typesys.TypeParams(params...))
		}
		if decl.Extends != "" || len(decl.Implements) > 0 {
			opts = append(opts, typesys.Supertypes(supertypes(u, decl)))
		}

		t, err := u.Define(decl.Name, kinds[decl.Kind], opts...)
		if err != nil {
			errs = errs.Append(errors.Wrapf(err, "types[%d]", i))
			continue
		}
		defs[i] = t
	}
	if len(errs) > 0 {
		return errs.Join()
	}

	// Supertypes are resolved lazily, so check them now that every name is declared.
	for i, decl := range decls {
		err := checkSupertypes(u, decl, defs[i])
		errs = errs.Append(errors.Wrapf(err, "types[%d] %s", i, decl.Name))
	}
	if len(errs) > 0 {
		return errs.Join()
	}

	return checkCycles(u, decls, defs)
}

// paramEnv maps the type parameter names of decl to args.
func paramEnv(decl TypeDecl, args []*typesys.Type) map[string]*typesys.Type {
	if len(args) != len(decl.Params) {
		return nil
	}

	env := make(map[string]*typesys.Type, len(args))
	for i, p := range decl.Params {
		env[p.Name] = args[i]
	}
	return env
}

func supertypes(u *typesys.Universe, decl TypeDecl) typesys.SupertypesFunc {
	return func(_ *typesys.Type, args []*typesys.Type) typesys.Declaration {
		env := paramEnv(decl, args)

		// Names were checked by checkSupertypes.
		var d typesys.Declaration
		if decl.Extends != "" {
			d.Base, _ = u.ParseWith(decl.Extends, env)
		}
		for _, name := range decl.Implements {
			if t, err := u.ParseWith(name, env); err == nil {
				d.Interfaces = append(d.Interfaces, t)
			}
		}
		return d
	}
}

func checkSupertypes(u *typesys.Universe, decl TypeDecl, def *typesys.Type) error {
	env := paramEnv(decl, def.ParamTypes())

	if decl.Extends != "" {
		if decl.Kind != "class" {
			return errors.Errorf("extends %s: only classes can extend a class", decl.Extends)
		}

		base, err := u.ParseWith(decl.Extends, env)
		if err != nil {
			return errors.Wrap(err, "extends")
		}
		if base.Kind() != typesys.ClassKind || base.IsGenericDefinition() {
			return errors.Errorf("extends %s: not a class", base)
		}
	}

	for _, name := range decl.Implements {
		iface, err := u.ParseWith(name, env)
		if err != nil {
			return errors.Wrap(err, "implements")
		}
		if iface.Kind() != typesys.InterfaceKind || iface.IsGenericDefinition() {
			return errors.Errorf("implements %s: not an interface", iface)
		}
		if iface == def || iface.Definition() == def {
			return errors.Errorf("implements %s: type implements itself", iface)
		}
	}

	return nil
}

// checkCycles rejects declarations where a type is its own supertype,
// comparing generic types by definition.
func checkCycles(u *typesys.Universe, decls []TypeDecl, defs []*typesys.Type) error {
	edges := make(map[*typesys.Type][]*typesys.Type, len(defs))
	for i, decl := range decls {
		env := paramEnv(decl, defs[i].ParamTypes())

		names := decl.Implements
		if decl.Extends != "" {
			names = append([]string{decl.Extends}, names...)
		}
		for _, name := range names {
			t, err := u.ParseWith(name, env)
			if err != nil {
				continue
			}
			if t.Definition() != nil {
				t = t.Definition()
			}
			edges[defs[i]] = append(edges[defs[i]], t)
		}
	}

	done := set.New[*typesys.Type](len(defs))
	var visit func(t *typesys.Type, path *set.Set[*typesys.Type]) error
	visit = func(t *typesys.Type, path *set.Set[*typesys.Type]) error {
		if done.Contains(t) {
			return nil
		}
		if path.Contains(t) {
			return errors.Errorf("type %s: cyclic supertypes", t)
		}

		path.Insert(t)
		for _, next := range edges[t] {
			if err := visit(next, path); err != nil {
				return err
			}
		}
		path.Remove(t)

		done.Insert(t)
		return nil
	}

	for _, t := range defs {
		if err := visit(t, set.New[*typesys.Type](0)); err != nil {
			return err
		}
	}
	return nil
}

func (r *Registry) setOptions(decls []OptionDecl) error {
	var errs errors.MultiError
	for i, decl := range decls {
		value := optionValues[decl.Name](decl.Value)

		if decl.Scope == "" {
			r.Options.Set(value)
			continue
		}

		scope, err := r.Universe.Parse(decl.Scope)
		if err != nil {
			errs = errs.Append(errors.Wrapf(err, "options[%d] %s", i, decl.Name))
			continue
		}
		r.Options.Set(value, scope)
	}

	return errs.Join()
}

func (r *Registry) register(decls []RegistrationDecl) error {
	var errs errors.MultiError
	for i, decl := range decls {
		err := r.registerOne(decl)
		errs = errs.Append(errors.Wrapf(err, "registrations[%d]", i))
	}

	return errs.Join()
}

func (r *Registry) registerOne(decl RegistrationDecl) error {
	declared, err := r.Universe.Parse(decl.Producer)
	if err != nil {
		return errors.Wrap(err, "producer")
	}

	service := declared
	if decl.Service != "" {
		service, err = r.Universe.Parse(decl.Service)
		if err != nil {
			return errors.Wrap(err, "service")
		}
	}

	var producerOpts []di.ProducerOption
	if decl.Name != "" {
		producerOpts = append(producerOpts, di.WithName(decl.Name))
	}
	if decl.Fallback {
		producerOpts = append(producerOpts, di.AsFallback())
	}

	p, err := di.NewProducer(declared, producerOpts...)
	if err != nil {
		return err
	}

	var registerOpts []di.RegisterOption
	if decl.Replace {
		registerOpts = append(registerOpts, di.Replace())
	}
	if decl.AllowMultiple != nil {
		registerOpts = append(registerOpts, di.AllowMultiple(*decl.AllowMultiple))
	}

	return r.Store.Register(p, service, registerOpts...)
}
