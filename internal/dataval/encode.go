package dataval

import "sort"

// Encoder serializes Values into a single growing byte buffer, structurally
// deduplicating identical encoded forms (spec §4.2: "Encoder contract").
// Every value — scalar or container — is hashed by its own exact encoded
// bytes; a repeat encoding returns the existing offset instead of appending.
//
// Children of Array and Map values are always referenced by Pointer once
// encoded, never embedded inline a second time: this is what makes the
// dedup table effective for nested structures (e.g. a repeated
// {"country":"US"} map across many IP entries shares one set of bytes for
// both the string and the map itself), and it keeps every pointer target
// strictly earlier in the buffer than the pointer itself, satisfying the
// no-forward-pointers invariant (spec §3) for free.
type Encoder struct {
	buf   []byte
	dedup map[string]int
}

// NewEncoder returns an Encoder with an empty backing buffer.
func NewEncoder() *Encoder {
	return &Encoder{dedup: make(map[string]int)}
}

// Bytes returns the encoder's backing buffer. The slice is shared, not
// copied; callers must not retain it across further Encode calls unless
// they know the buffer hasn't been reallocated underneath.
func (e *Encoder) Bytes() []byte { return e.buf }

// Len returns the current size of the backing buffer.
func (e *Encoder) Len() int { return len(e.buf) }

// Encode appends v's encoding (or reuses an existing identical encoding)
// and returns its offset within the encoder's buffer.
func (e *Encoder) Encode(v Value) int {
	enc := e.encodeValueBytes(v)
	key := string(enc)
	if off, ok := e.dedup[key]; ok {
		return off
	}
	off := len(e.buf)
	e.buf = append(e.buf, enc...)
	e.dedup[key] = off
	return off
}

func (e *Encoder) encodeValueBytes(v Value) []byte {
	switch v.Kind {
	case KindString:
		payload := []byte(v.Str)
		return append(controlBytes(KindString, len(payload)), payload...)
	case KindBytes:
		return append(controlBytes(KindBytes, len(v.Bytes)), v.Bytes...)
	case KindBool:
		size := 0
		if v.Bool {
			size = 1
		}
		return controlBytes(KindBool, size)
	case KindUint16:
		payload := []byte{byte(v.U16 >> 8), byte(v.U16)}
		return append(controlBytes(KindUint16, len(payload)), payload...)
	case KindUint32:
		payload := []byte{byte(v.U32 >> 24), byte(v.U32 >> 16), byte(v.U32 >> 8), byte(v.U32)}
		return append(controlBytes(KindUint32, len(payload)), payload...)
	case KindUint64:
		payload := make([]byte, 8)
		putU64BE(payload, v.U64)
		return append(controlBytes(KindUint64, len(payload)), payload...)
	case KindUint128:
		payload := make([]byte, 16)
		putU64BE(payload[0:8], v.U128Hi)
		putU64BE(payload[8:16], v.U128Lo)
		return append(controlBytes(KindUint128, len(payload)), payload...)
	case KindInt32:
		u := uint32(v.I32)
		payload := []byte{byte(u >> 24), byte(u >> 16), byte(u >> 8), byte(u)}
		return append(controlBytes(KindInt32, len(payload)), payload...)
	case KindFloat32:
		payload := encodeFloat32BE(v.F32)
		return append(controlBytes(KindFloat32, len(payload)), payload...)
	case KindFloat64:
		payload := encodeFloat64BE(v.F64)
		return append(controlBytes(KindFloat64, len(payload)), payload...)
	case KindArray:
		out := controlBytes(KindArray, len(v.Array))
		for _, item := range v.Array {
			childOff := e.Encode(item)
			out = append(out, encodePointerBytes(childOff)...)
		}
		return out
	case KindMap:
		entries := append([]MapEntry(nil), v.Map...)
		sort.Slice(entries, func(i, j int) bool { return entries[i].Key < entries[j].Key })
		out := controlBytes(KindMap, len(entries))
		for _, entry := range entries {
			keyOff := e.Encode(String(entry.Key))
			out = append(out, encodePointerBytes(keyOff)...)
			valOff := e.Encode(entry.Value)
			out = append(out, encodePointerBytes(valOff)...)
		}
		return out
	default:
		return nil
	}
}

func putU64BE(b []byte, v uint64) {
	for i := 7; i >= 0; i-- {
		b[i] = byte(v)
		v >>= 8
	}
}

func isNativeKind(k Kind) bool { return k >= 1 && k <= 7 }

// controlBytes encodes the control byte (and any extended-type or
// multi-byte size bytes) for kind/size. It does not include the payload.
func controlBytes(kind Kind, size int) []byte {
	var typeField byte
	var hasExt bool
	var extByte byte
	if isNativeKind(kind) {
		typeField = byte(kind)
	} else {
		typeField = 0
		hasExt = true
		extByte = byte(int(kind) - extendedBias)
	}

	var sizeField byte
	var extra []byte
	switch {
	case size <= 28:
		sizeField = byte(size)
	case size < 29+256:
		sizeField = 29
		extra = []byte{byte(size - 29)}
	case size < 29+256+65536:
		sizeField = 30
		rel := size - 29 - 256
		extra = []byte{byte(rel >> 8), byte(rel)}
	default:
		sizeField = 31
		rel := size - 29 - 256 - 65536
		extra = []byte{byte(rel >> 16), byte(rel >> 8), byte(rel)}
	}

	out := make([]byte, 0, 2+len(extra))
	out = append(out, (typeField<<5)|sizeField)
	if hasExt {
		out = append(out, extByte)
	}
	out = append(out, extra...)
	return out
}

// encodePointerBytes encodes a Pointer value targeting offset, choosing the
// smallest of the four size classes described in spec §4.2.
func encodePointerBytes(offset int) []byte {
	off := uint64(offset)
	const (
		class0Max = 1 << 11
		class1Max = (1 << 19) + 2048
		class2Max = (1 << 27) + 526336
	)
	switch {
	case off < class0Max:
		high3 := byte((off >> 8) & 0x7)
		b1 := byte(off)
		control := (byte(KindPointer) << 5) | (0 << 3) | high3
		return []byte{control, b1}
	case off < class1Max:
		rel := off - 2048
		high3 := byte((rel >> 16) & 0x7)
		control := (byte(KindPointer) << 5) | (1 << 3) | high3
		return []byte{control, byte(rel >> 8), byte(rel)}
	case off < class2Max:
		rel := off - 526336
		high3 := byte((rel >> 24) & 0x7)
		control := (byte(KindPointer) << 5) | (2 << 3) | high3
		return []byte{control, byte(rel >> 16), byte(rel >> 8), byte(rel)}
	default:
		control := (byte(KindPointer) << 5) | (3 << 3)
		return []byte{control, byte(off >> 24), byte(off >> 16), byte(off >> 8), byte(off)}
	}
}
