package dihttp

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorilla/schema"

	"github.com/sectrean/di-registry"
	"github.com/sectrean/di-registry/dicontext"
	"github.com/sectrean/di-registry/internal/errors"
	"github.com/sectrean/di-registry/typesys"
)

var queryDecoder = schema.NewDecoder()

func init() {
	queryDecoder.IgnoreUnknownKeys(true)
}

// CandidateResponse is one entry of the candidates response.
type CandidateResponse struct {
	Type    string `json:"type"`
	Kind    string `json:"kind"`
	Variant bool   `json:"variant"`
}

// ProducerResponse describes a fetched producer.
type ProducerResponse struct {
	DeclaredType string `json:"declared_type"`
	Name         string `json:"name"`
	Fallback     bool   `json:"fallback"`
}

// RegistrationResponse describes a registration.
type RegistrationResponse struct {
	ID          uuid.UUID        `json:"id"`
	Seq         uint64           `json:"seq"`
	ServiceType string           `json:"service_type"`
	Producer    ProducerResponse `json:"producer"`
}

// ErrorResponse is written for failed requests.
type ErrorResponse struct {
	Error string `json:"error"`
}

type candidatesQuery struct {
	VariantOnly bool `schema:"variant_only"`
}

type fetchQuery struct {
	All bool `schema:"all"`
}

type diagnostics struct {
	lookup di.Lookup
	store  *di.Store
	u      *typesys.Universe
	logger *slog.Logger
}

// NewDiagnosticsHandler creates an [http.Handler] that reports how a [di.Store] resolves
// types. Type names in paths use the [typesys.Universe.Parse] syntax, for example
// IHandler[Order] or []Base. Names are resolved with [typesys.Universe.Resolve], so
// requests never create types: closed generics and arrays that do not exist yet are
// reported as not found.
//
// Routes:
//   - GET /candidates/{type}: the candidate sequence. ?variant_only=true drops exact matches.
//   - GET /fetch/{type}: the fetched producer. ?all=true returns every producer.
//   - GET /registrations/{type}: the registrations for the exact type.
//   - GET /types: the service types registered with the store.
//
// If the request context carries a [di.Lookup], for example from [NewRequestStoreMiddleware],
// candidates and fetches use it instead of s.
func NewDiagnosticsHandler(
	s *di.Store,
	u *typesys.Universe,
	opts ...DiagnosticsOption,
) (http.Handler, error) {
	if s == nil {
		return nil, errors.New("dihttp.NewDiagnosticsHandler: store is nil")
	}
	if u == nil {
		return nil, errors.New("dihttp.NewDiagnosticsHandler: universe is nil")
	}

	d := &diagnostics{
		lookup: s,
		store:  s,
		u:      u,
		logger: slog.Default(),
	}

	var errs errors.MultiError
	for _, opt := range opts {
		errs = errs.Append(opt.applyDiagnostics(d))
	}
	if err := errs.Wrap("dihttp.NewDiagnosticsHandler"); err != nil {
		return nil, err
	}

	r := chi.NewRouter()
	r.Get("/candidates/{type}", d.candidates)
	r.Get("/fetch/{type}", d.fetch)
	r.Get("/registrations/{type}", d.registrations)
	r.Get("/types", d.types)

	return r, nil
}

// DiagnosticsOption is used to configure the handler created by [NewDiagnosticsHandler].
type DiagnosticsOption interface {
	applyDiagnostics(*diagnostics) error
}

type diagnosticsOption func(*diagnostics) error

func (o diagnosticsOption) applyDiagnostics(d *diagnostics) error {
	return o(d)
}

// WithDiagnosticsLogger sets the logger used to report request errors.
// The default is [slog.Default()].
func WithDiagnosticsLogger(logger *slog.Logger) DiagnosticsOption {
	return diagnosticsOption(func(d *diagnostics) error {
		if logger == nil {
			return errors.New("WithDiagnosticsLogger: logger is nil")
		}

		d.logger = logger
		return nil
	})
}

func (d *diagnostics) lookupFor(r *http.Request) di.Lookup {
	if l := dicontext.Lookup(r.Context()); l != nil {
		return l
	}
	return d.lookup
}

func (d *diagnostics) parseType(w http.ResponseWriter, r *http.Request) (*typesys.Type, bool) {
	name, err := url.PathUnescape(chi.URLParam(r, "type"))
	if err != nil {
		d.writeError(w, r, http.StatusBadRequest, errors.Wrap(err, "invalid type"))
		return nil, false
	}

	t, err := d.u.Resolve(name)
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, typesys.ErrUnknownType) {
			status = http.StatusNotFound
		}
		d.writeError(w, r, status, err)
		return nil, false
	}

	return t, true
}

func (d *diagnostics) candidates(w http.ResponseWriter, r *http.Request) {
	var q candidatesQuery
	if err := queryDecoder.Decode(&q, r.URL.Query()); err != nil {
		d.writeError(w, r, http.StatusBadRequest, err)
		return
	}

	t, ok := d.parseType(w, r)
	if !ok {
		return
	}

	res := []CandidateResponse{}
	for _, e := range d.lookupFor(r).Candidates(t) {
		if q.VariantOnly && !e.IsVariantMatch {
			continue
		}
		res = append(res, CandidateResponse{
			Type:    e.Descriptor.String(),
			Kind:    e.Descriptor.Kind().String(),
			Variant: e.IsVariantMatch,
		})
	}

	d.writeJSON(w, r, http.StatusOK, res)
}

func (d *diagnostics) fetch(w http.ResponseWriter, r *http.Request) {
	var q fetchQuery
	if err := queryDecoder.Decode(&q, r.URL.Query()); err != nil {
		d.writeError(w, r, http.StatusBadRequest, err)
		return
	}

	t, ok := d.parseType(w, r)
	if !ok {
		return
	}

	l := d.lookupFor(r)

	if q.All {
		res := []ProducerResponse{}
		for _, p := range l.FetchAll(t) {
			res = append(res, producerResponse(p))
		}
		d.writeJSON(w, r, http.StatusOK, res)
		return
	}

	p, found := l.Fetch(t)
	if !found {
		d.writeError(w, r, http.StatusNotFound, errors.Wrapf(di.ErrNotFound, "fetch %s", t))
		return
	}

	d.writeJSON(w, r, http.StatusOK, producerResponse(p))
}

func (d *diagnostics) registrations(w http.ResponseWriter, r *http.Request) {
	t, ok := d.parseType(w, r)
	if !ok {
		return
	}

	res := []RegistrationResponse{}
	for _, reg := range d.store.Registrations(t) {
		res = append(res, RegistrationResponse{
			ID:          reg.ID,
			Seq:         reg.Seq,
			ServiceType: reg.ServiceType.String(),
			Producer:    producerResponse(reg.Producer),
		})
	}

	d.writeJSON(w, r, http.StatusOK, res)
}

func (d *diagnostics) types(w http.ResponseWriter, r *http.Request) {
	res := []string{}
	for _, t := range d.store.ServiceTypes() {
		res = append(res, t.String())
	}

	d.writeJSON(w, r, http.StatusOK, res)
}

func producerResponse(p di.Producer) ProducerResponse {
	res := ProducerResponse{
		DeclaredType: p.DeclaredType().String(),
		Name:         p.DeclaredType().String(),
		Fallback:     p.UseFallback(),
	}
	if tp, ok := p.(*di.TypeProducer); ok {
		res.Name = tp.Name()
	}
	return res
}

func (d *diagnostics) writeError(w http.ResponseWriter, r *http.Request, status int, err error) {
	if status >= http.StatusInternalServerError {
		d.logger.ErrorContext(r.Context(), "diagnostics request failed", "error", err)
	}
	d.writeJSON(w, r, status, ErrorResponse{Error: err.Error()})
}

func (d *diagnostics) writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		d.logger.ErrorContext(r.Context(), "error writing diagnostics response", "error", err)
	}
}
