// Package dataval implements the typed data section codec (spec §4.2): a
// control-byte-tagged encoding of 13 value kinds with pointer-based
// deduplication, extending the type/size scheme of the MMDB format this
// database's on-disk layout is built on.
//
// The encoding mirrors the teacher's internal/format value-record decoders
// (internal/format/vk.go): every field is read through a checked accessor
// that returns a structured error instead of panicking, and every decoded
// value is a plain Go struct rather than an interface, since the set of
// kinds is closed and known at compile time (spec §9, "dynamic dispatch
// elimination").
package dataval

import "fmt"

// Kind identifies the type of an encoded value. Values 1..7 are native
// control-byte types; 8..15 are extended types (control-byte type 0, with
// the actual kind in the following byte, biased by -7 per spec §4.2).
type Kind byte

const (
	KindPointer Kind = 1
	KindString  Kind = 2
	KindFloat64 Kind = 3
	KindBytes   Kind = 4
	KindUint16  Kind = 5
	KindUint32  Kind = 6
	KindMap     Kind = 7
	KindInt32   Kind = 8
	KindUint64  Kind = 9
	KindUint128 Kind = 10
	KindArray   Kind = 11
	KindBool    Kind = 14
	KindFloat32 Kind = 15
)

func (k Kind) String() string {
	switch k {
	case KindPointer:
		return "pointer"
	case KindString:
		return "string"
	case KindFloat64:
		return "float64"
	case KindBytes:
		return "bytes"
	case KindUint16:
		return "uint16"
	case KindUint32:
		return "uint32"
	case KindMap:
		return "map"
	case KindInt32:
		return "int32"
	case KindUint64:
		return "uint64"
	case KindUint128:
		return "uint128"
	case KindArray:
		return "array"
	case KindBool:
		return "bool"
	case KindFloat32:
		return "float32"
	default:
		return fmt.Sprintf("kind(%d)", byte(k))
	}
}

// extendedBias is added to the byte following a type-0 control byte to
// recover the real Kind (and subtracted from the Kind when encoding).
const extendedBias = 7

// MapEntry is one key/value pair of a Map value. Map values are decoded (and
// encoded) with entries in sorted-by-key order, so a MapEntry slice rather
// than a Go map preserves that order without relying on map iteration.
type MapEntry struct {
	Key   string
	Value Value
}

// Value is a decoded typed value. Exactly one field group is meaningful,
// selected by Kind; this mirrors the teacher's preference for a closed,
// switch-dispatched struct over an interface{} or implicit `any`.
type Value struct {
	Kind Kind

	Str    string
	Bytes  []byte
	Bool   bool
	U16    uint16
	U32    uint32
	U64    uint64
	U128Hi uint64
	U128Lo uint64
	I32    int32
	F32    float32
	F64    float64
	Array  []Value
	Map    []MapEntry
}

// String constructs a String value.
func String(s string) Value { return Value{Kind: KindString, Str: s} }

// BytesValue constructs a Bytes value. The slice is not copied.
func BytesValue(b []byte) Value { return Value{Kind: KindBytes, Bytes: b} }

// BoolValue constructs a Bool value.
func BoolValue(b bool) Value { return Value{Kind: KindBool, Bool: b} }

// Uint16Value constructs a Uint16 value.
func Uint16Value(v uint16) Value { return Value{Kind: KindUint16, U16: v} }

// Uint32Value constructs a Uint32 value.
func Uint32Value(v uint32) Value { return Value{Kind: KindUint32, U32: v} }

// Uint64Value constructs a Uint64 value.
func Uint64Value(v uint64) Value { return Value{Kind: KindUint64, U64: v} }

// Uint128Value constructs a Uint128 value from its big-endian halves.
func Uint128Value(hi, lo uint64) Value { return Value{Kind: KindUint128, U128Hi: hi, U128Lo: lo} }

// Int32Value constructs an Int32 value.
func Int32Value(v int32) Value { return Value{Kind: KindInt32, I32: v} }

// Float32Value constructs a Float32 value.
func Float32Value(v float32) Value { return Value{Kind: KindFloat32, F32: v} }

// Float64Value constructs a Float64 value.
func Float64Value(v float64) Value { return Value{Kind: KindFloat64, F64: v} }

// ArrayValue constructs an Array value.
func ArrayValue(items []Value) Value { return Value{Kind: KindArray, Array: items} }

// MapValue constructs a Map value. Entries need not be pre-sorted; Encode
// sorts them by key before writing.
func MapValue(entries []MapEntry) Value { return Value{Kind: KindMap, Map: entries} }

// Get returns the value for key within a Map value, and whether it was
// found. Get on a non-Map value always returns (Value{}, false).
func (v Value) Get(key string) (Value, bool) {
	if v.Kind != KindMap {
		return Value{}, false
	}
	for _, e := range v.Map {
		if e.Key == key {
			return e.Value, true
		}
	}
	return Value{}, false
}
