/*
DESCRIPTION
  rangecoder.go implements the FFV1 binary range coder (draft-ietf-cellar-ffv1
  section 3.8.1, Range Coding Mode): a binary arithmetic coder with a
  256-entry adaptive state-transition table, plus the unsigned/signed integer
  symbol extraction built on top of it.

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

// contextSize is the number of adaptive state bytes in a single range-coder
// context vector (section 4, Bitstream).
const contextSize = 32

// RangeCoder is a binary range coder as described in Martin, G. Nigel N.,
// "Range encoding: an algorithm for removing redundancy from a digitised
// message.", and specialised per draft-ietf-cellar-ffv1 section 3.8.1.
type RangeCoder struct {
	buf        []byte
	pos        int
	low        uint16
	rng        uint16
	zeroState  [256]byte
	oneState   [256]byte
}

// NewRangeCoder creates a range coder reading from buf.
//
// See: 3.8.1. Range Coding Mode
func NewRangeCoder(buf []byte) *RangeCoder {
	// Figure 14/13.
	low := uint16(buf[0])<<8 | uint16(buf[1])
	rng := uint16(0xFF00)
	pos := 2

	// Figure 15.
	if low >= rng {
		low = rng
		pos = len(buf) - 1
	}

	c := &RangeCoder{buf: buf, pos: pos, low: low, rng: rng}
	// 3.8.1.3. Initial Values for the Context Model
	c.SetTable(&defaultStateTransition)
	return c
}

// refill tops up low/rng from the buffer once rng has dropped below 0x100.
//
// See: Figure 12.
func (c *RangeCoder) refill() {
	if c.rng >= 0x100 {
		return
	}
	c.rng <<= 8
	c.low <<= 8
	if c.pos < len(c.buf) {
		c.low += uint16(c.buf[c.pos])
		c.pos++
	}
}

// Get decodes a single bit using the adaptive context state at *state,
// updating *state in place.
//
// See: Figure 10.
func (c *RangeCoder) Get(state *byte) bool {
	rangeoff := uint16((uint32(c.rng) * uint32(*state)) >> 8)
	c.rng -= rangeoff
	if c.low < c.rng {
		*state = c.zeroState[*state]
		c.refill()
		return false
	}
	c.low -= c.rng
	*state = c.oneState[*state]
	c.rng = rangeoff
	c.refill()
	return true
}

// UR decodes the next unsigned range-coded scalar symbol.
//
// See: 4. Bitstream
func (c *RangeCoder) UR(state []byte) uint32 {
	return uint32(c.symbol(state, false))
}

// SR decodes the next signed range-coded scalar symbol.
//
// See: 4. Bitstream
func (c *RangeCoder) SR(state []byte) int32 {
	return c.symbol(state, true)
}

// BR decodes the next range-coded boolean symbol.
//
// See: 4. Bitstream
func (c *RangeCoder) BR(state []byte) bool {
	return c.Get(&state[0])
}

// symbol decodes the next range-coded scalar symbol.
//
// See: 3.8.1.2. Range Non Binary Values
func (c *RangeCoder) symbol(state []byte, signed bool) int32 {
	if c.Get(&state[0]) {
		return 0
	}

	e := int32(0)
	for c.Get(&state[1+min32(e, 9)]) {
		e++
		if e > 31 {
			panic("ffv1dec: range coder exponent overflow")
		}
	}

	a := uint32(1)
	for i := e - 1; i >= 0; i-- {
		a *= 2
		if c.Get(&state[22+min32(i, 9)]) {
			a++
		}
	}

	if signed && c.Get(&state[11+min32(e, 10)]) {
		return -int32(a)
	}
	return int32(a)
}

// SetTable installs table as the coder's one-state transition table and
// derives the complementary zero-state table from it.
//
// See: 3.8.1.4. State Transition Table
func (c *RangeCoder) SetTable(table *[256]byte) {
	c.oneState = *table
	for i := 1; i < 255; i++ {
		c.zeroState[i] = byte(256 - int(c.oneState[256-i]))
	}
}

// SentinelEnd consumes the range coder's termination sequence, so a
// following Golomb-Rice coder (if any) can locate a byte boundary.
//
// See: 3.8.1.1.1. Termination
func (c *RangeCoder) SentinelEnd() {
	state := byte(129)
	c.Get(&state)
}

// Pos returns the current byte position in the bitstream.
func (c *RangeCoder) Pos() int {
	if c.rng < 0x100 {
		return c.pos - 1
	}
	return c.pos
}

func min32(a, b int32) int32 {
	if a < b {
		return a
	}
	return b
}
