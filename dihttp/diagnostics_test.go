package dihttp_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sectrean/di-registry"
	"github.com/sectrean/di-registry/dihttp"
	"github.com/sectrean/di-registry/internal/testtypes"
	"github.com/sectrean/di-registry/internal/testutils"
	"github.com/sectrean/di-registry/typesys"
)

func Test_NewDiagnosticsHandler(t *testing.T) {
	f := testtypes.NewFixture()

	t.Run("nil store", func(t *testing.T) {
		h, err := dihttp.NewDiagnosticsHandler(nil, f.U)
		testutils.LogError(t, err)

		assert.Nil(t, h)
		assert.EqualError(t, err, "dihttp.NewDiagnosticsHandler: store is nil")
	})

	t.Run("nil universe", func(t *testing.T) {
		h, err := dihttp.NewDiagnosticsHandler(newStore(t), nil)
		testutils.LogError(t, err)

		assert.Nil(t, h)
		assert.EqualError(t, err, "dihttp.NewDiagnosticsHandler: universe is nil")
	})

	t.Run("nil logger", func(t *testing.T) {
		h, err := dihttp.NewDiagnosticsHandler(newStore(t), f.U,
			dihttp.WithDiagnosticsLogger(nil),
		)
		testutils.LogError(t, err)

		assert.Nil(t, h)
		assert.EqualError(t, err, "dihttp.NewDiagnosticsHandler: WithDiagnosticsLogger: logger is nil")
	})
}

func Test_DiagnosticsHandler(t *testing.T) {
	f := testtypes.NewFixture()

	baseHandler := di.MustNewProducer(f.IContravariant.MustClose(f.Base), di.WithName("base handler"))
	fallbackHandler := di.MustNewProducer(f.IContravariant.MustClose(f.Object), di.AsFallback())

	s := newStore(t,
		di.WithRegistration(baseHandler, f.IContravariant.MustClose(f.Base)),
		di.WithRegistration(fallbackHandler, f.IContravariant.MustClose(f.Object)),
		di.WithRegistration(di.MustNewProducer(f.Service), f.IService),
	)

	// Closed types named in requests must already exist
	f.IContravariant.MustClose(f.Grandchild)
	f.IContravariant.MustClose(f.Child)
	f.IContravariant.MustClose(f.Other)

	h, err := dihttp.NewDiagnosticsHandler(s, f.U)
	require.NoError(t, err)

	t.Run("candidates", func(t *testing.T) {
		res := serve(t, h, "/candidates/IContravariant[Grandchild]")
		require.Equal(t, http.StatusOK, res.Code)
		assert.Equal(t, "application/json", res.Header().Get("Content-Type"))

		var got []dihttp.CandidateResponse
		decode(t, res, &got)
		assert.Equal(t, []dihttp.CandidateResponse{
			{Type: "IContravariant[Grandchild]", Kind: "ClosedGeneric"},
			{Type: "IContravariant[Base]", Kind: "ClosedGeneric", Variant: true},
			{Type: "IContravariant[object]", Kind: "ClosedGeneric", Variant: true},
			{Type: "IContravariant[]", Kind: "OpenGenericDefinition"},
		}, got)
	})

	t.Run("candidates variant only", func(t *testing.T) {
		res := serve(t, h, "/candidates/IContravariant[Grandchild]?variant_only=true")
		require.Equal(t, http.StatusOK, res.Code)

		var got []dihttp.CandidateResponse
		decode(t, res, &got)
		assert.Equal(t, []dihttp.CandidateResponse{
			{Type: "IContravariant[Base]", Kind: "ClosedGeneric", Variant: true},
			{Type: "IContravariant[object]", Kind: "ClosedGeneric", Variant: true},
		}, got)
	})

	t.Run("candidates bad query", func(t *testing.T) {
		res := serve(t, h, "/candidates/Base?variant_only=maybe")
		assert.Equal(t, http.StatusBadRequest, res.Code)
	})

	t.Run("unknown type", func(t *testing.T) {
		res := serve(t, h, "/candidates/Nope")
		require.Equal(t, http.StatusNotFound, res.Code)

		var got dihttp.ErrorResponse
		decode(t, res, &got)
		assert.Contains(t, got.Error, "unknown type")
	})

	t.Run("closed type not created", func(t *testing.T) {
		for _, path := range []string{
			"/candidates/IContravariant[Service]",
			"/fetch/IGeneric[[]Base]",
			"/registrations/[]Other",
		} {
			res := serve(t, h, path)
			assert.Equal(t, http.StatusNotFound, res.Code, path)
		}

		for _, name := range []string{"IContravariant[Service]", "IGeneric[[]Base]", "[]Base", "[]Other"} {
			_, err := f.U.Resolve(name)
			assert.ErrorIs(t, err, typesys.ErrUnknownType, name)
		}
	})

		t.Run("invalid type name", func(t *testing.T) {
		res := serve(t, h, "/fetch/IGeneric[int")
		require.Equal(t, http.StatusBadRequest, res.Code)

		var got dihttp.ErrorResponse
		decode(t, res, &got)
		assert.Contains(t, got.Error, `parse "IGeneric[int"`)
	})

	t.Run("fetch", func(t *testing.T) {
		res := serve(t, h, "/fetch/IContravariant[Grandchild]")
		require.Equal(t, http.StatusOK, res.Code)

		var got dihttp.ProducerResponse
		decode(t, res, &got)
		assert.Equal(t, dihttp.ProducerResponse{
			DeclaredType: "IContravariant[Base]",
			Name:         "base handler",
		}, got)
	})

	t.Run("fetch fallback", func(t *testing.T) {
		res := serve(t, h, "/fetch/IContravariant[Other]")
		require.Equal(t, http.StatusOK, res.Code)

		var got dihttp.ProducerResponse
		decode(t, res, &got)
		assert.Equal(t, dihttp.ProducerResponse{
			DeclaredType: "IContravariant[object]",
			Name:         "IContravariant[object]",
			Fallback:     true,
		}, got)
	})

	t.Run("fetch all", func(t *testing.T) {
		res := serve(t, h, "/fetch/IContravariant[Child]?all=true")
		require.Equal(t, http.StatusOK, res.Code)

		var got []dihttp.ProducerResponse
		decode(t, res, &got)
		assert.Equal(t, []dihttp.ProducerResponse{
			{DeclaredType: "IContravariant[Base]", Name: "base handler"},
		}, got)
	})

	t.Run("fetch all empty", func(t *testing.T) {
		res := serve(t, h, "/fetch/Other?all=true")
		require.Equal(t, http.StatusOK, res.Code)
		assert.JSONEq(t, "[]", res.Body.String())
	})

	t.Run("fetch not found", func(t *testing.T) {
		res := serve(t, h, "/fetch/Other")
		require.Equal(t, http.StatusNotFound, res.Code)

		var got dihttp.ErrorResponse
		decode(t, res, &got)
		assert.Equal(t, "fetch Other: no producer found", got.Error)
	})

	t.Run("registrations", func(t *testing.T) {
		res := serve(t, h, "/registrations/IContravariant[Base]")
		require.Equal(t, http.StatusOK, res.Code)

		var got []dihttp.RegistrationResponse
		decode(t, res, &got)
		require.Len(t, got, 1)

		assert.NotEqual(t, uuid.Nil, got[0].ID)
		assert.Equal(t, uint64(1), got[0].Seq)
		assert.Equal(t, "IContravariant[Base]", got[0].ServiceType)
		assert.Equal(t, "base handler", got[0].Producer.Name)
	})

	t.Run("registrations exact type only", func(t *testing.T) {
		res := serve(t, h, "/registrations/IContravariant[Grandchild]")
		require.Equal(t, http.StatusOK, res.Code)
		assert.JSONEq(t, "[]", res.Body.String())
	})

	t.Run("types", func(t *testing.T) {
		res := serve(t, h, "/types")
		require.Equal(t, http.StatusOK, res.Code)

		var got []string
		decode(t, res, &got)
		assert.ElementsMatch(t, []string{
			"IContravariant[Base]",
			"IContravariant[object]",
			"IService",
		}, got)
	})

	t.Run("method not allowed", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/types", http.NoBody)
		res := httptest.NewRecorder()
		h.ServeHTTP(res, req)

		assert.Equal(t, http.StatusMethodNotAllowed, res.Code)
	})
}

func Test_DiagnosticsHandler_RequestStore(t *testing.T) {
	f := testtypes.NewFixture()
	parent := newStore(t)

	h, err := dihttp.NewDiagnosticsHandler(parent, f.U)
	require.NoError(t, err)

	mw, err := dihttp.NewRequestStoreMiddleware(parent,
		dihttp.WithStoreOptions(
			di.WithRegistration(di.MustNewProducer(f.Other, di.WithName("request other")), f.Other),
		),
	)
	require.NoError(t, err)

	t.Run("uses request store", func(t *testing.T) {
		res := serve(t, mw(h), "/fetch/Other")
		require.Equal(t, http.StatusOK, res.Code)

		var got dihttp.ProducerResponse
		decode(t, res, &got)
		assert.Equal(t, "request other", got.Name)
	})

	t.Run("without middleware", func(t *testing.T) {
		res := serve(t, h, "/fetch/Other")
		assert.Equal(t, http.StatusNotFound, res.Code)
	})
}

func serve(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()

	req, err := http.NewRequest(http.MethodGet, path, http.NoBody)
	require.NoError(t, err)

	res := httptest.NewRecorder()
	h.ServeHTTP(res, req)
	return res
}

func decode(t *testing.T, res *httptest.ResponseRecorder, v any) {
	t.Helper()

	err := json.NewDecoder(res.Body).Decode(v)
	require.NoError(t, err)
}
