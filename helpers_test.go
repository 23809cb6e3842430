package di_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sectrean/di-registry"
	"github.com/sectrean/di-registry/typesys"
)

func newStore(t *testing.T, opts ...di.StoreOption) *di.Store {
	t.Helper()

	s, err := di.NewStore(di.NewIndex(), opts...)
	require.NoError(t, err)
	return s
}

func candidateNames(entries []di.CandidateEntry) []string {
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.String()
	}
	return names
}

func descriptorNames(ds []*di.TypeDescriptor) []string {
	names := make([]string, len(ds))
	for i, d := range ds {
		names[i] = d.String()
	}
	return names
}

func typeNames(ts []*typesys.Type) []string {
	names := make([]string, len(ts))
	for i, t := range ts {
		names[i] = t.String()
	}
	return names
}

// isSubsequence returns true if sub appears in seq in the same relative order.
func isSubsequence(sub, seq []string) bool {
	i := 0
	for _, s := range seq {
		if i < len(sub) && sub[i] == s {
			i++
		}
	}
	return i == len(sub)
}
