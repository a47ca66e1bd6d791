package dataval

import "math/big"

// Native converts v into the plain Go value encoding/json already knows
// how to marshal (string, []byte, bool, the fixed-width integer and float
// types, []interface{}, map[string]interface{}), for the CLI's
// --json/--data output paths.
// Uint128 has no native Go integer wide enough to hold it, so it
// converts through math/big and is marshaled as its decimal string.
func (v Value) Native() interface{} {
	switch v.Kind {
	case KindString:
		return v.Str
	case KindBytes:
		return v.Bytes
	case KindBool:
		return v.Bool
	case KindUint16:
		return v.U16
	case KindUint32:
		return v.U32
	case KindUint64:
		return v.U64
	case KindUint128:
		hi := new(big.Int).Lsh(new(big.Int).SetUint64(v.U128Hi), 64)
		return hi.Add(hi, new(big.Int).SetUint64(v.U128Lo)).String()
	case KindInt32:
		return v.I32
	case KindFloat32:
		return v.F32
	case KindFloat64:
		return v.F64
	case KindArray:
		out := make([]interface{}, len(v.Array))
		for i, item := range v.Array {
			out[i] = item.Native()
		}
		return out
	case KindMap:
		out := make(map[string]interface{}, len(v.Map))
		for _, entry := range v.Map {
			out[entry.Key] = entry.Value.Native()
		}
		return out
	default:
		return nil
	}
}
