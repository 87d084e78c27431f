// Package seed implements the core's deterministic four-coordinate
// PRNG addressing scheme. draw(counter, entityId, variableId, s3, s4)
// is a pure, total hash-then-uniform function: the same address always
// produces the same sample, and distinct addresses are uncorrelated,
// regardless of evaluation order or worker count.
//
// This is deliberately NOT a stateful, seed-then-advance generator
// (like math/rand.Rand) — advancing shared state across parallel
// workers would make the result depend on scheduling order. Each draw
// is addressed independently, the same way a hash table looks up a
// key: by value, not by position in some sequence.
package seed

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"
)

// Fixed, distinct variable-id offsets that keep one leaf's occurrence
// stream and severity stream independent of each other. Any leaf's
// occurrence draw uses entityId^occOffset, its severity draw
// entityId^sevOffset; since the offsets differ, XOR-ing them into the
// same entityId always yields two different variableIds.
const (
	occOffset uint64 = 0x9E3779B97F4A7C15
	sevOffset uint64 = 0xC2B2AE3D27D4EB4F
)

// EntityID derives the fixed, portable 64-bit entity identifier for a
// leaf's string id. Two distinct ids MUST hash to distinct entityIds;
// xxhash's avalanche behavior makes collisions astronomically
// unlikely for the string-id cardinalities a risk tree has.
func EntityID(leafID string) uint64 {
	return xxhash.Sum64String(leafID)
}

// OccurrenceVar returns the variableId for entityId's occurrence
// stream.
func OccurrenceVar(entityID uint64) uint64 {
	return entityID ^ occOffset
}

// SeverityVar returns the variableId for entityId's severity stream.
func SeverityVar(entityID uint64) uint64 {
	return entityID ^ sevOffset
}

// Draw returns a uniformly distributed sample in [0, 1) for the
// address (counter, entityID, variableID, s3, s4). Pure and total: no
// I/O, no shared state, safe to call concurrently from any number of
// goroutines in any order.
func Draw(counter uint64, entityID, variableID, s3, s4 uint64) float64 {
	var buf [40]byte
	binary.LittleEndian.PutUint64(buf[0:8], counter)
	binary.LittleEndian.PutUint64(buf[8:16], entityID)
	binary.LittleEndian.PutUint64(buf[16:24], variableID)
	binary.LittleEndian.PutUint64(buf[24:32], s3)
	binary.LittleEndian.PutUint64(buf[32:40], s4)

	h := xxhash.Sum64(buf[:])
	// Use the top 53 bits for the same precision math/rand's Float64
	// uses, then scale into [0, 1).
	return float64(h>>11) / (1 << 53)
}
