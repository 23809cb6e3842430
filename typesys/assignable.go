package typesys

// AllSupertypes returns every base class and interface of t, transitively, in
// breadth-first order. The result does not include t.
func AllSupertypes(t *Type) []*Type {
	if t == nil {
		return nil
	}

	var out []*Type
	seen := map[*Type]struct{}{t: {}}
	queue := []*Type{t}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		next := cur.Interfaces()
		if b := cur.Base(); b != nil {
			next = append([]*Type{b}, next...)
		}

		for _, s := range next {
			if _, ok := seen[s]; ok {
				continue
			}
			seen[s] = struct{}{}
			out = append(out, s)
			queue = append(queue, s)
		}
	}

	return out
}

// AssignableTo returns true if a value of type src can be used where dst is expected.
//
// This holds if src is dst, if dst is one of src's supertypes, or if one of src's
// supertypes (or src itself) is a variant-compatible instantiation of the same
// generic definition as dst. Arrays of reference types are covariant in their element.
//
// For two generic definitions, src is assignable to dst if src closed over its own type
// parameters implements dst closed over the same parameters in the same order.
func AssignableTo(src, dst *Type) bool {
	if src == nil || dst == nil {
		return false
	}
	if src == dst {
		return true
	}
	if src.u != dst.u {
		return false
	}

	if src.IsGenericDefinition() || dst.IsGenericDefinition() {
		if !src.IsGenericDefinition() || !dst.IsGenericDefinition() {
			return false
		}
		if src.NumParams() != dst.NumParams() {
			return false
		}

		self, err := src.Close(src.paramTypes...)
		if err != nil {
			return false
		}
		target, err := dst.Close(src.paramTypes...)
		if err != nil {
			return false
		}
		return AssignableTo(self, target)
	}

	if dst == src.u.object && src.kind != ParamKind {
		return true
	}

	if variantMatch(src, dst) {
		return true
	}
	for _, s := range AllSupertypes(src) {
		if s == dst || variantMatch(s, dst) {
			return true
		}
	}

	return false
}

// variantMatch checks if s and d are instantiations of the same definition whose
// type arguments are compatible under the declared variance.
func variantMatch(s, d *Type) bool {
	if s.def == nil || s.def != d.def {
		return false
	}

	for i, p := range s.def.params {
		a, b := s.args[i], d.args[i]
		if a == b {
			continue
		}

		// Variance only applies to reference type arguments.
		if !a.IsReference() || !b.IsReference() {
			return false
		}

		switch p.Variance {
		case Covariant:
			if !AssignableTo(a, b) {
				return false
			}
		case Contravariant:
			if !AssignableTo(b, a) {
				return false
			}
		default:
			return false
		}
	}

	return true
}
