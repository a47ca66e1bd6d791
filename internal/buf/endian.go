// Package buf contains bounds-checked slice helpers and endian-safe
// encode/decode routines shared by every section of the database format.
//
// The wire format mixes endianness by design (spec §4.1): section headers
// and offsets are little-endian, while IP-tree records and typed-value
// payloads are big-endian. Rather than let each package reach for
// encoding/binary directly, both endiannesses live side by side here so a
// reader only has to learn one helper surface.
package buf

import "encoding/binary"

// U16LE reads a little-endian uint16 from b. Returns 0 when b is too short.
func U16LE(b []byte) uint16 {
	if len(b) < 2 {
		return 0
	}
	return binary.LittleEndian.Uint16(b)
}

// U32LE reads a little-endian uint32 from b. Returns 0 when b is too short.
func U32LE(b []byte) uint32 {
	if len(b) < 4 {
		return 0
	}
	return binary.LittleEndian.Uint32(b)
}

// U64LE reads a little-endian uint64 from b. Returns 0 when b is too short.
func U64LE(b []byte) uint64 {
	if len(b) < 8 {
		return 0
	}
	return binary.LittleEndian.Uint64(b)
}

// I32LE reads a little-endian int32 from b. Returns 0 when b is too short.
func I32LE(b []byte) int32 {
	if len(b) < 4 {
		return 0
	}
	return int32(binary.LittleEndian.Uint32(b))
}

// PutU16LE writes v to b[0:2] in little-endian order.
func PutU16LE(b []byte, v uint16) { binary.LittleEndian.PutUint16(b, v) }

// PutU32LE writes v to b[0:4] in little-endian order.
func PutU32LE(b []byte, v uint32) { binary.LittleEndian.PutUint32(b, v) }

// PutU64LE writes v to b[0:8] in little-endian order.
func PutU64LE(b []byte, v uint64) { binary.LittleEndian.PutUint64(b, v) }

// U16BE reads a big-endian uint16 from b. Returns 0 when b is too short.
func U16BE(b []byte) uint16 {
	if len(b) < 2 {
		return 0
	}
	return binary.BigEndian.Uint16(b)
}

// U32BE reads a big-endian uint32 from b. Returns 0 when b is too short.
func U32BE(b []byte) uint32 {
	if len(b) < 4 {
		return 0
	}
	return binary.BigEndian.Uint32(b)
}

// U64BE reads a big-endian uint64 from b. Returns 0 when b is too short.
func U64BE(b []byte) uint64 {
	if len(b) < 8 {
		return 0
	}
	return binary.BigEndian.Uint64(b)
}

// U128BE reads a 16-byte big-endian unsigned integer from b as (high, low).
// Returns (0, 0) when b is too short.
func U128BE(b []byte) (hi, lo uint64) {
	if len(b) < 16 {
		return 0, 0
	}
	return binary.BigEndian.Uint64(b[0:8]), binary.BigEndian.Uint64(b[8:16])
}

// PutU16BE writes v to b[0:2] in big-endian order.
func PutU16BE(b []byte, v uint16) { binary.BigEndian.PutUint16(b, v) }

// PutU32BE writes v to b[0:4] in big-endian order.
func PutU32BE(b []byte, v uint32) { binary.BigEndian.PutUint32(b, v) }

// PutU64BE writes v to b[0:8] in big-endian order.
func PutU64BE(b []byte, v uint64) { binary.BigEndian.PutUint64(b, v) }

// PutU128BE writes a 16-byte big-endian unsigned integer to b[0:16].
func PutU128BE(b []byte, hi, lo uint64) {
	binary.BigEndian.PutUint64(b[0:8], hi)
	binary.BigEndian.PutUint64(b[8:16], lo)
}

// U24BE reads a 3-byte big-endian unsigned integer from b.
// Returns 0 when b is too short. Used for 24-bit IP-tree records.
func U24BE(b []byte) uint32 {
	if len(b) < 3 {
		return 0
	}
	return uint32(b[0])<<16 | uint32(b[1])<<8 | uint32(b[2])
}

// PutU24BE writes the low 24 bits of v to b[0:3] in big-endian order.
func PutU24BE(b []byte, v uint32) {
	b[0] = byte(v >> 16)
	b[1] = byte(v >> 8)
	b[2] = byte(v)
}
