package dataval

import (
	"fmt"
	"sort"
	"unicode/utf8"

	"github.com/matchydb/matchy/internal/buf"
)

// header describes a decoded control byte: the value's Kind, its payload
// size in bytes (meaningless for Pointer, which encodes its own width),
// and the offset immediately following the control-byte-and-size prefix.
type header struct {
	kind     Kind
	size     int
	ptrClass int // 0..3, only meaningful when kind == KindPointer
	ptrHigh3 int // only meaningful when kind == KindPointer
	next     int
}

// decodeHeader parses the control byte (and any extended-type or
// multi-byte size bytes) at offset off within section.
func decodeHeader(section []byte, off int) (header, error) {
	b, ok := buf.Slice(section, off, 1)
	if !ok {
		return header{}, fmt.Errorf("dataval: control byte at %d: %w", off, ErrTruncated)
	}
	control := b[0]
	typeID := Kind(control >> 5)
	sizeField := int(control & 0x1f)
	pos := off + 1

	kind := typeID
	if typeID == 0 {
		eb, ok := buf.Slice(section, pos, 1)
		if !ok {
			return header{}, fmt.Errorf("dataval: extended type byte at %d: %w", pos, ErrTruncated)
		}
		ext := int(eb[0]) + extendedBias
		if ext > 0xff {
			return header{}, fmt.Errorf("dataval: extended type %d at %d: %w", ext, pos, ErrUnknownType)
		}
		kind = Kind(ext)
		pos++
	}

	if kind == KindPointer {
		class := (sizeField & 0x18) >> 3
		high3 := sizeField & 0x07
		extra := class + 1
		if class == 3 {
			extra = 4
		}
		if !buf.Has(section, pos, extra) {
			return header{}, fmt.Errorf("dataval: pointer payload at %d: %w", pos, ErrTruncated)
		}
		pos += extra
		return header{kind: kind, ptrClass: class, ptrHigh3: high3, size: extra, next: pos}, nil
	}

	size := sizeField
	switch {
	case sizeField == 29:
		eb, ok := buf.Slice(section, pos, 1)
		if !ok {
			return header{}, fmt.Errorf("dataval: size byte at %d: %w", pos, ErrTruncated)
		}
		size = 29 + int(eb[0])
		pos++
	case sizeField == 30:
		eb, ok := buf.Slice(section, pos, 2)
		if !ok {
			return header{}, fmt.Errorf("dataval: size bytes at %d: %w", pos, ErrTruncated)
		}
		size = 29 + 256 + int(buf.U16BE(eb))
		pos += 2
	case sizeField == 31:
		eb, ok := buf.Slice(section, pos, 3)
		if !ok {
			return header{}, fmt.Errorf("dataval: size bytes at %d: %w", pos, ErrTruncated)
		}
		size = 29 + 256 + 65536 + int(buf.U24BE(eb))
		pos += 3
	}
	if size < 0 {
		return header{}, fmt.Errorf("dataval: size field at %d: %w", off, ErrSizeOverflow)
	}
	return header{kind: kind, size: size, next: pos}, nil
}

// Decode reads the typed value beginning at offset within section,
// transparently following Pointer values. section is the typed-data
// section's own byte range (offsets are relative to its start, per spec
// §4.1/§4.2).
func Decode(section []byte, offset int) (Value, error) {
	return decodeAt(section, offset, 0)
}

func decodeAt(section []byte, offset int, depth int) (Value, error) {
	if depth > MaxDecodeDepth {
		return Value{}, fmt.Errorf("dataval: decoding at %d: %w", offset, ErrDepthExceeded)
	}
	h, err := decodeHeader(section, offset)
	if err != nil {
		return Value{}, err
	}

	if h.kind == KindPointer {
		target, err := decodePointerTarget(section, offset, h)
		if err != nil {
			return Value{}, err
		}
		if target >= uint64(offset) {
			return Value{}, fmt.Errorf("dataval: pointer at %d targets %d: %w", offset, target, ErrForwardPointer)
		}
		return decodeAt(section, int(target), depth+1)
	}

	payload, ok := buf.Slice(section, h.next, h.size)
	if !ok {
		return Value{}, fmt.Errorf("dataval: %s payload at %d (size %d): %w", h.kind, h.next, h.size, ErrTruncated)
	}

	switch h.kind {
	case KindString:
		if !utf8.Valid(payload) {
			return Value{}, fmt.Errorf("dataval: string at %d: %w", h.next, ErrInvalidUTF8)
		}
		return Value{Kind: KindString, Str: string(payload)}, nil
	case KindBytes:
		return Value{Kind: KindBytes, Bytes: append([]byte(nil), payload...)}, nil
	case KindBool:
		return Value{Kind: KindBool, Bool: h.size != 0}, nil
	case KindUint16:
		return Value{Kind: KindUint16, U16: uint16(decodeUintBE(payload))}, nil
	case KindUint32:
		return Value{Kind: KindUint32, U32: uint32(decodeUintBE(payload))}, nil
	case KindUint64:
		return Value{Kind: KindUint64, U64: decodeUintBE(payload)}, nil
	case KindUint128:
		hi, lo := decodeUint128BE(payload)
		return Value{Kind: KindUint128, U128Hi: hi, U128Lo: lo}, nil
	case KindInt32:
		return Value{Kind: KindInt32, I32: int32(decodeUintBE(payload))}, nil
	case KindFloat32:
		if len(payload) != 4 {
			return Value{}, fmt.Errorf("dataval: float32 at %d has %d bytes, want 4", h.next, len(payload))
		}
		return Value{Kind: KindFloat32, F32: decodeFloat32BE(payload)}, nil
	case KindFloat64:
		if len(payload) != 8 {
			return Value{}, fmt.Errorf("dataval: float64 at %d has %d bytes, want 8", h.next, len(payload))
		}
		return Value{Kind: KindFloat64, F64: decodeFloat64BE(payload)}, nil
	case KindArray:
		return decodeArray(section, h, depth)
	case KindMap:
		return decodeMap(section, h, depth)
	default:
		return Value{}, fmt.Errorf("dataval: kind %d at %d: %w", h.kind, offset, ErrUnknownType)
	}
}

func decodePointerTarget(section []byte, offset int, h header) (uint64, error) {
	pb, ok := buf.Slice(section, h.next-h.size, h.size)
	if !ok {
		return 0, fmt.Errorf("dataval: pointer payload at %d: %w", offset, ErrTruncated)
	}
	switch h.ptrClass {
	case 0:
		return uint64(h.ptrHigh3)<<8 | uint64(pb[0]), nil
	case 1:
		v := uint64(h.ptrHigh3)<<16 | uint64(buf.U16BE(pb))
		return v + 2048, nil
	case 2:
		v := uint64(h.ptrHigh3)<<24 | uint64(buf.U24BE(pb))
		return v + 526336, nil
	case 3:
		return uint64(buf.U32BE(pb)), nil
	default:
		return 0, fmt.Errorf("dataval: invalid pointer size class %d", h.ptrClass)
	}
}

func decodeArray(section []byte, h header, depth int) (Value, error) {
	items := make([]Value, 0, h.size)
	pos := h.next
	for i := 0; i < h.size; i++ {
		v, err := decodeAt(section, pos, depth+1)
		if err != nil {
			return Value{}, err
		}
		items = append(items, v)
		n, err := encodedLen(section, pos)
		if err != nil {
			return Value{}, err
		}
		pos += n
	}
	return Value{Kind: KindArray, Array: items}, nil
}

func decodeMap(section []byte, h header, depth int) (Value, error) {
	entries := make([]MapEntry, 0, h.size)
	pos := h.next
	for i := 0; i < h.size; i++ {
		keyVal, err := decodeAt(section, pos, depth+1)
		if err != nil {
			return Value{}, err
		}
		if keyVal.Kind != KindString {
			return Value{}, fmt.Errorf("dataval: map key at %d: %w", pos, ErrNonStringKey)
		}
		n, err := encodedLen(section, pos)
		if err != nil {
			return Value{}, err
		}
		pos += n

		val, err := decodeAt(section, pos, depth+1)
		if err != nil {
			return Value{}, err
		}
		entries = append(entries, MapEntry{Key: keyVal.Str, Value: val})
		n, err = encodedLen(section, pos)
		if err != nil {
			return Value{}, err
		}
		pos += n
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Key < entries[j].Key })
	return Value{Kind: KindMap, Map: entries}, nil
}

// encodedLen returns the number of bytes the value starting at offset
// occupies on the wire, without following pointers — used to step over a
// sibling element inside an Array or Map.
func encodedLen(section []byte, offset int) (int, error) {
	h, err := decodeHeader(section, offset)
	if err != nil {
		return 0, err
	}
	switch h.kind {
	case KindPointer:
		return h.next - offset, nil
	case KindArray:
		pos := h.next
		for i := 0; i < h.size; i++ {
			n, err := encodedLen(section, pos)
			if err != nil {
				return 0, err
			}
			pos += n
		}
		return pos - offset, nil
	case KindMap:
		pos := h.next
		for i := 0; i < h.size*2; i++ {
			n, err := encodedLen(section, pos)
			if err != nil {
				return 0, err
			}
			pos += n
		}
		return pos - offset, nil
	default:
		return h.next + h.size - offset, nil
	}
}

func decodeUintBE(b []byte) uint64 {
	var v uint64
	for _, c := range b {
		v = v<<8 | uint64(c)
	}
	return v
}

func decodeUint128BE(b []byte) (hi, lo uint64) {
	if len(b) <= 8 {
		return 0, decodeUintBE(b)
	}
	split := len(b) - 8
	return decodeUintBE(b[:split]), decodeUintBE(b[split:])
}
