/*
DESCRIPTION
  golomb.go implements the FFV1 Golomb-Rice coder (draft-ietf-cellar-ffv1
  section 3.8.2, Golomb Rice Mode): an adaptive VLC decoder with run-length
  coding of smooth regions.

AUTHORS
  Saxon Nelson-Milton <saxon@ausocean.org>, The Australian Ocean Laboratory (AusOcean)

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package ffv1dec

import "github.com/ausocean/ffv1/codec/ffv1/ffv1dec/bits"

// GolombState holds the adaptive state for a single VLC context.
//
// See: 3.8.2.4. Initial Values for the VLC context state
type GolombState struct {
	Drift     int32
	ErrorSum  int32
	Bias      int32
	Count     int32
}

// NewGolombState returns a GolombState with its documented initial values.
func NewGolombState() GolombState {
	return GolombState{ErrorSum: 4, Count: 1}
}

// GolombCoder is an instance of a Golomb-Rice coder as described in section
// 3.8.2, Golomb Rice Mode.
type GolombCoder struct {
	r        *bits.BitReader
	runMode  int
	runCount int
	runIndex int
	x        uint32
	w        uint32
}

// NewGolombCoder creates a new Golomb-Rice coder reading from buf.
func NewGolombCoder(buf []byte) *GolombCoder {
	return &GolombCoder{r: bits.NewBitReader(buf)}
}

// NewPlane resets the run index and records the plane width, and must be
// called once per plane (or once per slice, for RGB's interleaved planes).
//
// See: 3.8.2.2.1. Run Length Coding
func (g *GolombCoder) NewPlane(width uint32) {
	g.w = width
	g.runIndex = 0
}

// newRun resets run-mode tracking at the start of a fresh run.
func (g *GolombCoder) newRun() {
	g.runMode = 0
	g.runCount = 0
}

// NewLine resets the column position and starts a fresh run, since runs are
// horizontal and cannot cross a line boundary.
func (g *GolombCoder) NewLine() {
	g.newRun()
	g.x = 0
}

// SG decodes the next Golomb-Rice coded signed sample difference, given the
// (already sign-normalised, i.e. non-negative) context index.
//
// See: * 3.8.2. Golomb Rice Mode
//      * 4. Bitstream
func (g *GolombCoder) SG(context int32, state *GolombState, bitsWidth uint) int32 {
	// 3.8.2.2. Run Mode
	if context == 0 && g.runMode == 0 {
		g.runMode = 1
	}

	if g.runMode == 0 {
		g.x++
		return g.GetVLCSymbol(state, bitsWidth)
	}

	// 3.8.2.2.1. Run Length Coding
	if g.runCount == 0 && g.runMode == 1 {
		if g.r.U(1) == 1 {
			g.runCount = 1 << log2Run[g.runIndex]
			if g.x+uint32(g.runCount) <= g.w {
				g.runIndex++
			}
		} else {
			if log2Run[g.runIndex] != 0 {
				g.runCount = int(g.r.U(log2Run[g.runIndex]))
			} else {
				g.runCount = 0
			}
			if g.runIndex != 0 {
				g.runIndex--
			}
			g.runMode = 2
		}
	}

	g.runCount--
	if g.runCount < 0 {
		g.newRun()
		diff := g.GetVLCSymbol(state, bitsWidth)
		// 3.8.2.2.2. Level Coding
		if diff >= 0 {
			diff++
		}
		g.x++
		return diff
	}

	g.x++
	return 0
}

// GetVLCSymbol decodes the next Golomb-Rice coded symbol.
//
// See: 3.8.2.3. Scalar Mode
func (g *GolombCoder) GetVLCSymbol(state *GolombState, bitsWidth uint) int32 {
	k := uint(0)
	i := state.Count
	for i < state.ErrorSum {
		k++
		i += i
	}

	v := g.GetSRGolomb(k, bitsWidth)

	if 2*state.Drift < -state.Count {
		v = -1 - v
	}

	ret := SignExtend(v+state.Bias, bitsWidth)

	state.ErrorSum += abs32(v)
	state.Drift += v
	if state.Count == 128 {
		state.Count >>= 1
		state.Drift >>= 1
		state.ErrorSum >>= 1
	}
	state.Count++

	if state.Drift <= -state.Count {
		state.Bias = max32(state.Bias-1, -128)
		state.Drift = max32(state.Drift+state.Count, -state.Count+1)
	} else if state.Drift > 0 {
		state.Bias = min32(state.Bias+1, 127)
		state.Drift = min32(state.Drift-state.Count, 0)
	}

	return ret
}

// GetSRGolomb decodes the next signed Golomb-Rice code.
//
// See: 3.8.2.1. Signed Golomb Rice Codes
func (g *GolombCoder) GetSRGolomb(k uint, bitsWidth uint) int32 {
	v := g.GetURGolomb(k, bitsWidth)
	if v&1 == 1 {
		return -(v >> 1) - 1
	}
	return v >> 1
}

// GetURGolomb decodes the next unsigned Golomb-Rice code, escaping to a
// fixed-width read after 12 unary prefix bits.
//
// See: 3.8.2.1. Signed Golomb Rice Codes
func (g *GolombCoder) GetURGolomb(k uint, bitsWidth uint) int32 {
	for prefix := int32(0); prefix < 12; prefix++ {
		if g.r.U(1) == 1 {
			return int32(g.r.U(k)) + (prefix << k)
		}
	}
	return int32(g.r.U(bitsWidth)) + 11
}

// SignExtend sign-extends the low bitsWidth bits of n to a full 32-bit
// signed integer.
func SignExtend(n int32, bitsWidth uint) int32 {
	if bitsWidth == 8 {
		return int32(int8(n))
	}
	shift := 32 - bitsWidth
	return n << shift >> shift
}

func abs32(n int32) int32 {
	if n < 0 {
		return -n
	}
	return n
}

func max32(a, b int32) int32 {
	if a > b {
		return a
	}
	return b
}
