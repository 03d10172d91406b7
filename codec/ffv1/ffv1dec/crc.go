/*
DESCRIPTION
  crc.go implements the CRC-32/MPEG-2 checksum used to validate the
  configuration record and, per slice, the slice payload.

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

import "hash/crc32"

// crc32MPEG2Poly is the non-reflected CRC-32/MPEG-2 polynomial.
const crc32MPEG2Poly = 0x04C11DB7

// crc32MPEG2Table is the MSB-first lookup table for crc32MPEG2Poly.
var crc32MPEG2Table = crc32MakeTableMSB(crc32MPEG2Poly)

// crc32MPEG2 computes the CRC-32/MPEG-2 checksum of b: non-reflected input
// and output, initial value of all ones, no final XOR.
//
// See: * 4.2.2. configuration_record_crc_parity
//      * 4.8.3. slice_crc_parity
func crc32MPEG2(b []byte) uint32 {
	return crc32UpdateMSB(0xFFFFFFFF, crc32MPEG2Table, b)
}

// crc32MakeTableMSB builds an MSB-first crc32.Table for the given
// non-reflected polynomial.
func crc32MakeTableMSB(poly uint32) *crc32.Table {
	var t crc32.Table
	for i := range t {
		crc := uint32(i) << 24
		for j := 0; j < 8; j++ {
			if crc&0x80000000 != 0 {
				crc = (crc << 1) ^ poly
			} else {
				crc <<= 1
			}
		}
		t[i] = crc
	}
	return &t
}

// crc32UpdateMSB runs the MSB-first CRC update over p starting from crc.
func crc32UpdateMSB(crc uint32, tab *crc32.Table, p []byte) uint32 {
	for _, v := range p {
		crc = tab[byte(crc>>24)^v] ^ (crc << 8)
	}
	return crc
}
