// Package manifest loads YAML files that declare a type universe, scoped options and
// registrations, and builds a [di.Store] from them.
//
// Example:
//
//	types:
//	  - name: Base
//	    kind: class
//	  - name: Derived
//	    kind: class
//	    extends: Base
//	  - name: IHandler
//	    kind: interface
//	    params:
//	      - name: T
//	        variance: in
//	options:
//	  - name: allow_multiple
//	    value: false
//	    scope: IHandler[]
//	registrations:
//	  - producer: IHandler[Base]
//	    name: base handler
//	checks:
//	  - fetch: IHandler[Derived]
//	    expect: base handler
package manifest

import (
	"bytes"
	"io"
	"os"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/sectrean/di-registry/internal/errors"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("yaml"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Manifest is the root of a manifest file.
type Manifest struct {
	Types         []TypeDecl         `yaml:"types" validate:"dive"`
	Options       []OptionDecl       `yaml:"options" validate:"dive"`
	Registrations []RegistrationDecl `yaml:"registrations" validate:"dive"`
	Checks        []CheckDecl        `yaml:"checks" validate:"dive"`
}

// TypeDecl declares a named type.
//
// Extends and Implements use the type name syntax of [typesys.Universe.Parse] and may refer
// to the type's own parameters, for example IEnumerable[T].
type TypeDecl struct {
	Name       string      `yaml:"name" validate:"required"`
	Kind       string      `yaml:"kind" validate:"required,oneof=class interface struct delegate"`
	Params     []ParamDecl `yaml:"params" validate:"dive"`
	Extends    string      `yaml:"extends"`
	Implements []string    `yaml:"implements" validate:"dive,required"`
}

// ParamDecl declares a type parameter. Variance is empty for invariant parameters.
type ParamDecl struct {
	Name     string `yaml:"name" validate:"required"`
	Variance string `yaml:"variance" validate:"omitempty,oneof=in out"`
}

// OptionDecl sets an option globally, or for Scope if it is set.
type OptionDecl struct {
	Name  string `yaml:"name" validate:"required,oneof=covariance contravariance open_generic_lookup include_unknown_types allow_multiple"`
	Value bool   `yaml:"value"`
	Scope string `yaml:"scope"`
}

// RegistrationDecl registers a producer declared as Producer for Service.
// Service defaults to the producer type.
type RegistrationDecl struct {
	Producer      string `yaml:"producer" validate:"required"`
	Service       string `yaml:"service"`
	Name          string `yaml:"name"`
	Fallback      bool   `yaml:"fallback"`
	Replace       bool   `yaml:"replace"`
	AllowMultiple *bool  `yaml:"allow_multiple"`
}

// CheckDecl is an expected lookup result.
//
// Expect is the name of the producer Fetch should return. If Expect is empty, the fetch
// must find nothing. All lists the producer names FetchAll should return, in order.
type CheckDecl struct {
	Fetch  string   `yaml:"fetch" validate:"required"`
	Expect string   `yaml:"expect"`
	All    []string `yaml:"all"`
}

// LoadFile reads and validates the manifest at path.
func LoadFile(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "load manifest %s", path)
	}

	m, err := Parse(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrapf(err, "load manifest %s", path)
	}
	return m, nil
}

// Parse decodes and validates a manifest. Unknown fields are rejected.
func Parse(r io.Reader) (*Manifest, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var m Manifest
	if err := dec.Decode(&m); err != nil && !errors.Is(err, io.EOF) {
		return nil, errors.Wrap(err, "decode")
	}

	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// Validate checks the field constraints of the manifest.
// Type names are checked when the manifest is built.
func (m *Manifest) Validate() error {
	err := validate.Struct(m)
	if err == nil {
		return nil
	}

	var valErrs validator.ValidationErrors
	if !errors.As(err, &valErrs) {
		return errors.Wrap(err, "validate")
	}

	var errs errors.MultiError
	for _, ve := range valErrs {
		field := strings.TrimPrefix(ve.Namespace(), "Manifest.")
		errs = errs.Append(errors.Errorf("%s: %s", field, formatValidationError(ve)))
	}
	return errs.Wrap("validate")
}

func formatValidationError(ve validator.FieldError) string {
	switch ve.Tag() {
	case "required":
		return "required"
	case "oneof":
		return "must be one of: " + ve.Param()
	default:
		if ve.Param() != "" {
			return "failed " + ve.Tag() + "=" + ve.Param() + " validation"
		}
		return "failed " + ve.Tag() + " validation"
	}
}
