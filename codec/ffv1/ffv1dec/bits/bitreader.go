/*
DESCRIPTION
  bitreader.go provides an MSB-first bit reader over an in-memory byte buffer,
  as used by the Golomb-Rice coder (draft-ietf-cellar-ffv1 section 3.8.2).

AUTHORS
  Saxon Nelson-Milton <saxon@ausocean.org>, The Australian Ocean Laboratory (AusOcean)

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package bits provides an MSB-first bit reader over a fully-buffered byte
// slice. Unlike an io.Reader-backed reader, it never blocks; reading past the
// end of the buffer yields zero bits rather than panicking or erroring, since
// a malformed slice payload must not be able to crash the decoder and the
// caller (the Golomb coder) has no use for a truncation error mid-symbol.
package bits

import "fmt"

// BitReader reads bits MSB-first from a byte slice. It buffers up to 32 bits
// at a time in bitBuf and never reads more than one byte ahead of what is
// needed to satisfy the current request.
type BitReader struct {
	buf       []byte
	pos       int
	bitBuf    uint32
	bitsInBuf uint
}

// NewBitReader returns a new BitReader over buf.
func NewBitReader(buf []byte) *BitReader {
	return &BitReader{buf: buf}
}

// U reads count bits (0-32) from the stream and returns them in the
// least-significant bits of the result. count must not exceed 32; this is an
// invariant violation (a caller bug), not a data-dependent error, so it
// panics per the bit reader's documented contract.
//
// Requests that would need the accumulator to hold more than 24 bits of
// backlog are split into a 16-bit read followed by a (count-16)-bit read, so
// the internal 32-bit accumulator never needs to hold more than 32 bits of
// freshly-buffered data at once.
func (r *BitReader) U(count uint) uint32 {
	if count > 32 {
		panic(fmt.Sprintf("bits: cannot read %d bits, maximum is 32", count))
	}
	for count > r.bitsInBuf {
		var b byte
		if r.pos < len(r.buf) {
			b = r.buf[r.pos]
		}
		r.pos++
		r.bitBuf = r.bitBuf<<8 | uint32(b)
		r.bitsInBuf += 8

		if r.bitsInBuf > 24 {
			if count <= r.bitsInBuf {
				break
			}
			return r.U(16)<<16 | r.U(count-16)
		}
	}
	r.bitsInBuf -= count
	return (r.bitBuf >> r.bitsInBuf) & (uint32(1)<<count - 1)
}

// Pos returns the number of bytes consumed from the underlying buffer so far,
// including any byte currently buffered but not yet fully drained.
func (r *BitReader) Pos() int {
	return r.pos
}
