package otg

import (
	"math"
	"sort"
)

// profileSet collects the feasible candidate profiles found by a step-1
// solver. It is fixed-size scratch; the theoretical maximum number of
// distinct feasible durations per axis is five.
type profileSet struct {
	profiles [8]Profile
	n        int
}

// add stores a candidate, mirroring it back first when it was computed on
// mirrored inputs. Candidates duplicating an already stored duration are
// dropped; overlapping families can rediscover the same profile.
func (ps *profileSet) add(p *Profile, mirrored bool) {
	if ps.n == len(ps.profiles) {
		return
	}
	d := p.tSum[6]
	for i := 0; i < ps.n; i++ {
		if math.Abs(ps.profiles[i].tSum[6]-d) < epsLimits*math.Max(1, d) {
			return
		}
	}
	ps.profiles[ps.n] = *p
	if mirrored {
		ps.profiles[ps.n].mirror()
	}
	ps.n++
}

// blockInterval is an open range of durations (left, right) in which the
// axis cannot reach its target. The profile achieving the right edge is
// stored so that synchronization can reuse it without a step-2 solve.
type blockInterval struct {
	left, right float64
	profile     Profile
}

// block describes the achievable durations of one axis after step 1: the
// minimum duration with its profile, plus up to two blocked intervals above
// it. Durations at or beyond tMin are achievable unless they fall strictly
// inside a blocked interval.
type block struct {
	tMin float64
	pMin Profile

	a, b       blockInterval
	hasA, hasB bool
}

// newBlock derives the block from the set of feasible step-1 candidates. The
// candidate count is odd for any solvable axis; consecutive pairs above the
// minimum delimit the blocked intervals.
func newBlock(ps *profileSet, blk *block) bool {
	if ps.n == 0 {
		return false
	}
	sort.Slice(ps.profiles[:ps.n], func(i, k int) bool {
		return ps.profiles[i].tSum[6] < ps.profiles[k].tSum[6]
	})

	*blk = block{tMin: ps.profiles[0].tSum[6], pMin: ps.profiles[0]}
	if ps.n >= 3 {
		blk.a = blockInterval{
			left:    ps.profiles[1].tSum[6],
			right:   ps.profiles[2].tSum[6],
			profile: ps.profiles[2],
		}
		blk.hasA = true
	}
	if ps.n >= 5 {
		blk.b = blockInterval{
			left:    ps.profiles[3].tSum[6],
			right:   ps.profiles[4].tSum[6],
			profile: ps.profiles[4],
		}
		blk.hasB = true
	}
	return true
}

// isBlocked reports whether the axis cannot reach its target in exactly t.
func (b *block) isBlocked(t float64) bool {
	if t < b.tMin-epsSync {
		return true
	}
	if b.hasA && t > b.a.left+epsSync && t < b.a.right-epsSync {
		return true
	}
	if b.hasB && t > b.b.left+epsSync && t < b.b.right-epsSync {
		return true
	}
	return false
}

// synchronizeBlocks picks the common trajectory duration: the smallest
// candidate at or above every axis's minimum (and the requested minimum
// duration) that no axis blocks. Candidates are the per-axis minima, the
// blocked-interval right edges, and the lower bound itself; with discrete
// durations every candidate is rounded up to a multiple of the control cycle.
//
// When the chosen duration exactly matches a stored profile of some axis,
// that axis is the limiting degree of freedom and its profile is installed
// directly; otherwise limiting is -1 and every axis needs a step-2 solve.
func synchronizeBlocks(
	blocks []block,
	enabled []bool,
	minDuration float64,
	hasMinDuration bool,
	discrete bool,
	deltaTime float64,
	profiles []Profile,
	candidates []float64,
) (tSync float64, limiting int, ok bool) {
	if len(blocks) == 1 && enabled[0] && !hasMinDuration && !discrete {
		profiles[0] = blocks[0].pMin
		return blocks[0].tMin, 0, true
	}

	lower := 0.0
	for d := range blocks {
		if enabled[d] && blocks[d].tMin > lower {
			lower = blocks[d].tMin
		}
	}
	if hasMinDuration && minDuration > lower {
		lower = minDuration
	}

	candidates = candidates[:0]
	candidates = append(candidates, lower)
	for d := range blocks {
		if !enabled[d] {
			continue
		}
		candidates = append(candidates, blocks[d].tMin)
		if blocks[d].hasA {
			candidates = append(candidates, blocks[d].a.right)
		}
		if blocks[d].hasB {
			candidates = append(candidates, blocks[d].b.right)
		}
	}
	if discrete {
		for i, c := range candidates {
			candidates[i] = math.Ceil(c/deltaTime-epsSync) * deltaTime
		}
	}
	sort.Float64s(candidates)

	found := false
	for _, t := range candidates {
		if t < lower-epsSync {
			continue
		}
		blocked := false
		for d := range blocks {
			if enabled[d] && blocks[d].isBlocked(t) {
				blocked = true
				break
			}
		}
		if !blocked {
			tSync = t
			found = true
			break
		}
	}
	if !found {
		return 0, -1, false
	}

	for d := range blocks {
		if enabled[d] && math.Abs(blocks[d].tMin-tSync) < epsSync {
			profiles[d] = blocks[d].pMin
			return tSync, d, true
		}
	}
	for d := range blocks {
		if !enabled[d] {
			continue
		}
		if blocks[d].hasA && math.Abs(blocks[d].a.right-tSync) < epsSync {
			profiles[d] = blocks[d].a.profile
			return tSync, d, true
		}
		if blocks[d].hasB && math.Abs(blocks[d].b.right-tSync) < epsSync {
			profiles[d] = blocks[d].b.profile
			return tSync, d, true
		}
	}
	return tSync, -1, true
}
