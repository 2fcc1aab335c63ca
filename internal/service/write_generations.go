package service

import (
	"sync/atomic"

	"github.com/cespare/xxhash/v2"
)

const generationStripes = 64

// writeGenerations counts writes per job id stripe. Striping keeps memory
// fixed; a collision only costs a skipped cache fill.
type writeGenerations struct {
	stripes [generationStripes]atomic.Uint64
}

func (g *writeGenerations) stripe(jobID string) *atomic.Uint64 {
	return &g.stripes[xxhash.Sum64String(jobID)%generationStripes]
}

func (g *writeGenerations) current(jobID string) uint64 {
	return g.stripe(jobID).Load()
}

func (g *writeGenerations) bump(jobID string) {
	g.stripe(jobID).Add(1)
}
