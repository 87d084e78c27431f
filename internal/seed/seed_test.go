package seed

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDrawIsDeterministic(t *testing.T) {
	a := Draw(42, 7, 3, 0, 0)
	b := Draw(42, 7, 3, 0, 0)
	require.Equal(t, a, b)
}

func TestDrawRangeIsHalfOpenUnit(t *testing.T) {
	for c := uint64(0); c < 2000; c++ {
		u := Draw(c, 123, 456, 1, 2)
		require.GreaterOrEqual(t, u, 0.0)
		require.Less(t, u, 1.0)
	}
}

func TestDrawVariesWithEachCoordinate(t *testing.T) {
	base := Draw(0, 1, 1, 1, 1)

	require.NotEqual(t, base, Draw(1, 1, 1, 1, 1), "counter")
	require.NotEqual(t, base, Draw(0, 2, 1, 1, 1), "entityID")
	require.NotEqual(t, base, Draw(0, 1, 2, 1, 1), "variableID")
	require.NotEqual(t, base, Draw(0, 1, 1, 2, 1), "s3")
	require.NotEqual(t, base, Draw(0, 1, 1, 1, 2), "s4")
}

func TestEntityIDIsStableAndDistinct(t *testing.T) {
	require.Equal(t, EntityID("cyber"), EntityID("cyber"))
	require.NotEqual(t, EntityID("cyber"), EntityID("fire"))
}

func TestOccurrenceAndSeverityVarsDiffer(t *testing.T) {
	e := EntityID("leaf-1")
	require.NotEqual(t, OccurrenceVar(e), SeverityVar(e))
}

func TestIndependenceOfOffsets(t *testing.T) {
	// Permuting the severity stream (by drawing at a different
	// counter) must not change the occurrence stream's value at a
	// fixed counter.
	e := EntityID("leaf-1")
	occAt5 := Draw(5, e, OccurrenceVar(e), 0, 0)

	_ = Draw(17, e, SeverityVar(e), 0, 0) // unrelated severity draw

	require.Equal(t, occAt5, Draw(5, e, OccurrenceVar(e), 0, 0))
}

func TestDrawRarelyCollidesAcrossManyAddresses(t *testing.T) {
	seen := make(map[float64]bool)
	dup := 0
	for c := uint64(0); c < 500; c++ {
		u := Draw(c, EntityID("leaf"), OccurrenceVar(EntityID("leaf")), 11, 22)
		if seen[u] {
			dup++
		}
		seen[u] = true
	}
	require.Less(t, dup, 2, "collisions across 500 counters should be vanishingly rare")
}
