package typesys

import (
	"strings"

	"github.com/sectrean/di-registry/internal/errors"
)

// ErrUnknownType is returned when a type name does not refer to a declared type.
var ErrUnknownType = errors.New("unknown type")

// Parse returns the type with the given name.
//
// The syntax mirrors [Type.Name]:
//
//	Base             a declared type
//	IGeneric[int]    a closed generic
//	IGeneric[]       an open definition (Func[,] for two parameters); IGeneric also works
//	[]Base           an array
//	[]               the array definition
//
// Closed generics and arrays are created as needed.
func (u *Universe) Parse(name string) (*Type, error) {
	return u.ParseWith(name, nil)
}

// ParseWith is like [Universe.Parse] but resolves names found in env first.
// This is used to refer to type parameters when declaring supertypes.
func (u *Universe) ParseWith(name string, env map[string]*Type) (*Type, error) {
	p := &typeParser{u: u, env: env, src: name}
	return p.parse()
}

func (p *typeParser) parse() (*Type, error) {
	name := p.src
	t, err := p.parseType()
	if err != nil {
		return nil, errors.Wrapf(err, "parse %q", name)
	}

	p.skipSpace()
	if p.pos < len(p.src) {
		return nil, errors.Errorf("parse %q: unexpected %q at offset %d", name, p.src[p.pos:], p.pos)
	}

	return t, nil
}

// Resolve is like [Universe.Parse] but never creates types. Closed generics and arrays
// must already exist, otherwise the error wraps [ErrUnknownType].
func (u *Universe) Resolve(name string) (*Type, error) {
	p := &typeParser{u: u, src: name, existing: true}
	return p.parse()
}

// MustParse is like [Universe.Parse] but panics if there is an error.
func (u *Universe) MustParse(name string) *Type {
	t, err := u.Parse(name)
	if err != nil {
		panic(err)
	}
	return t
}

type typeParser struct {
	u   *Universe
	env map[string]*Type
	src string
	pos int

	// existing disallows creating closed generics and arrays.
	existing bool
}

func (p *typeParser) parseType() (*Type, error) {
	p.skipSpace()

	if strings.HasPrefix(p.src[p.pos:], "[]") {
		p.pos += 2
		p.skipSpace()
		if p.done() || p.peek() == ',' || p.peek() == ']' {
			return p.u.arrayDef, nil
		}

		elem, err := p.parseType()
		if err != nil {
			return nil, err
		}
		return p.close(p.u.arrayDef, elem)
	}

	ident := p.parseIdent()
	if ident == "" {
		return nil, errors.Errorf("expected type name at offset %d", p.pos)
	}

	t, ok := p.env[ident]
	if !ok {
		t, ok = p.u.Lookup(ident)
	}
	if !ok {
		return nil, errors.Wrapf(ErrUnknownType, "%s", ident)
	}

	p.skipSpace()
	if p.done() || p.peek() != '[' {
		return t, nil
	}
	p.pos++

	if !t.IsGenericDefinition() {
		return nil, errors.Errorf("%s is not a generic definition", t)
	}

	// Open definition: Name[] or Name[,]
	commas := 0
	for {
		p.skipSpace()
		if p.done() {
			return nil, errors.New("unexpected end of input")
		}
		if p.peek() == ',' {
			commas++
			p.pos++
			continue
		}
		break
	}
	if p.peek() == ']' {
		if commas != t.NumParams()-1 {
			return nil, errors.Errorf("%s: expected %d type parameters", t, t.NumParams())
		}
		p.pos++
		return t, nil
	}
	if commas > 0 {
		return nil, errors.Errorf("unexpected ',' at offset %d", p.pos)
	}

	var args []*Type
	for {
		arg, err := p.parseType()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)

		p.skipSpace()
		if p.done() {
			return nil, errors.New("unexpected end of input")
		}

		switch p.peek() {
		case ',':
			p.pos++
		case ']':
			p.pos++
			return p.close(t, args...)
		default:
			return nil, errors.Errorf("unexpected %q at offset %d", p.peek(), p.pos)
		}
	}
}

func (p *typeParser) close(def *Type, args ...*Type) (*Type, error) {
	if !p.existing {
		return p.u.close(def, args)
	}

	t, ok := p.u.lookupClosed(def, args)
	if !ok {
		return nil, errors.Wrapf(ErrUnknownType, "%s", closedName(def, args))
	}
	return t, nil
}

func (p *typeParser) parseIdent() string {
	start := p.pos
	for !p.done() {
		switch p.peek() {
		case '[', ']', ',', ' ', '\t', '\r', '\n':
			return p.src[start:p.pos]
		}
		p.pos++
	}
	return p.src[start:p.pos]
}

func (p *typeParser) skipSpace() {
	for !p.done() && strings.IndexByte(" \t\r\n", p.peek()) >= 0 {
		p.pos++
	}
}

func (p *typeParser) peek() byte {
	return p.src[p.pos]
}

func (p *typeParser) done() bool {
	return p.pos >= len(p.src)
}
