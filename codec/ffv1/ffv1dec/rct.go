/*
DESCRIPTION
  rct.go implements the inverse JPEG2000 reversible colour transform (RCT)
  used by FFV1's RGB coding mode, in its three bit-depth variants.

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

// rct8From16 converts one slice rectangle from 9-bit JPEG2000-RCT (held
// widened in 16-bit scratch planes) to planar 8-bit GBR(A), writing into dst.
//
// See: 3.7.2.1. RGB
func rct8From16(dst [][]uint8, src [][]uint16, width, height, stride, offset int) {
	y, cb, cr := src[0][offset:], src[1][offset:], src[2][offset:]
	for row := 0; row < height; row++ {
		for col := 0; col < width; col++ {
			i := row*stride + col
			cbtmp := cb[i] - 1<<8
			crtmp := cr[i] - 1<<8
			green := y[i] - (cbtmp+crtmp)>>2
			red := crtmp + green
			blue := cbtmp + green
			dst[0][offset+i] = uint8(green)
			dst[1][offset+i] = uint8(blue)
			dst[2][offset+i] = uint8(red)
		}
	}
	if len(src) == 4 {
		s, d := src[3][offset:], dst[3][offset:]
		for row := 0; row < height; row++ {
			for col := 0; col < width; col++ {
				i := row*stride + col
				d[i] = uint8(s[i])
			}
		}
	}
}

// rct16InPlace converts one slice rectangle from 10-to-16-bit JPEG2000-RCT
// to planar GBR(A), in place within dst's own 16-bit scratch planes.
//
// Per-sample write order matters here: green/blue/red for a given position
// are all computed from the pre-transform values before any of the three are
// overwritten, so reusing dst as both source and destination is safe.
//
// See: 3.7.2.1. RGB
func rct16InPlace(dst [][]uint16, width, height, stride, offset, bits int) {
	shift := uint(bits)
	for row := 0; row < height; row++ {
		for col := 0; col < width; col++ {
			i := row*stride + col
			cbtmp := (dst[1][offset+i] - 1) << shift
			crtmp := (dst[2][offset+i] - 1) << shift
			blue := dst[0][offset+i] - (cbtmp+crtmp)>>2
			red := crtmp + blue
			green := cbtmp + blue
			dst[0][offset+i] = green
			dst[1][offset+i] = blue
			dst[2][offset+i] = red
		}
	}
}

// rct16From32 converts one slice rectangle from 17-bit JPEG2000-RCT (held
// widened in 32-bit scratch planes) to planar 16-bit GBR(A), writing into
// dst.
//
// See: 3.7.2.1. RGB
func rct16From32(dst [][]uint16, src [][]uint32, width, height, stride, offset int) {
	y, cb, cr := src[0][offset:], src[1][offset:], src[2][offset:]
	for row := 0; row < height; row++ {
		for col := 0; col < width; col++ {
			i := row*stride + col
			cbtmp := cb[i] - 1<<16
			crtmp := cr[i] - 1<<16
			green := y[i] - (cbtmp+crtmp)>>2
			red := crtmp + green
			blue := cbtmp + green
			dst[0][offset+i] = uint16(green)
			dst[1][offset+i] = uint16(blue)
			dst[2][offset+i] = uint16(red)
		}
	}
	if len(src) == 4 {
		s, d := src[3][offset:], dst[3][offset:]
		for row := 0; row < height; row++ {
			for col := 0; col < width; col++ {
				i := row*stride + col
				d[i] = uint16(s[i])
			}
		}
	}
}
