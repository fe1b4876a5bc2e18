// Package idgen generates 64-bit identifiers that are unique within a
// process lifetime and sort roughly by creation order.
//
// Identifier layout (most significant bits first):
//
//	[ 40 bits millisecond unix timestamp ][ 12 bits counter ][ 12 bits random ]
//
// The timestamp occupies the high bits so that lexicographic/numeric ordering
// of ids follows creation order. The counter is bumped on every call and the
// internal timestamp is advanced to max(now, prev+1), so two ids produced by
// the same generator are never equal even within one millisecond. The random
// bits reduce the collision probability between independent generators.
package idgen

import (
	"math/rand"
	"sync/atomic"
	"time"
)

// ID is an opaque 64-bit identifier.
type ID uint64

const (
	counterMask  = 0x0FFF
	counterShift = 12
	stampShift   = 24
)

// Generator produces process-unique identifiers.
type Generator interface {
	Next() ID
}

// TimestampRandGenerator is a single-owner identifier generator.
//
// It is not safe for concurrent use; use AtomicGenerator when ids are
// requested from multiple goroutines.
type TimestampRandGenerator struct {
	counter uint16
	stamp   uint64
}

// NewTimestampRand returns a generator seeded with the current time and a
// random counter offset.
func NewTimestampRand() *TimestampRandGenerator {
	return &TimestampRandGenerator{
		counter: uint16(rand.Uint32()),
		stamp:   unixMillis(),
	}
}

// Next returns the next identifier.
func (g *TimestampRandGenerator) Next() ID {
	g.counter++
	g.stamp = max(unixMillis(), g.stamp+1)

	random := uint64(rand.Uint32()) & counterMask
	return ID(g.stamp<<stampShift |
		uint64(g.counter&counterMask)<<counterShift |
		random)
}

// AtomicGenerator is a Generator safe for concurrent use.
//
// The counter and timestamp are advanced with atomic operations; the layout
// of the produced ids is identical to TimestampRandGenerator.
type AtomicGenerator struct {
	counter atomic.Uint32
	stamp   atomic.Uint64
}

// NewAtomic returns a concurrency-safe generator.
func NewAtomic() *AtomicGenerator {
	g := &AtomicGenerator{}
	g.counter.Store(rand.Uint32())
	g.stamp.Store(unixMillis())
	return g
}

// Next returns the next identifier.
func (g *AtomicGenerator) Next() ID {
	counter := g.counter.Add(1)

	// Advance the stamp to at least now, and past the previous value so ids
	// from this generator stay strictly increasing.
	var stamp uint64
	for {
		prev := g.stamp.Load()
		stamp = max(unixMillis(), prev+1)
		if g.stamp.CompareAndSwap(prev, stamp) {
			break
		}
	}

	random := uint64(rand.Uint32()) & counterMask
	return ID(stamp<<stampShift |
		uint64(counter&counterMask)<<counterShift |
		random)
}

func unixMillis() uint64 {
	return uint64(time.Now().UnixMilli())
}
