package dataval

import (
	"fmt"
	"sort"

	"golang.org/x/text/language"
)

// ErrInvalidLanguageTag is returned when a metadata description map's key is
// not a well-formed BCP-47 language tag.
var ErrInvalidLanguageTag = fmt.Errorf("dataval: invalid BCP-47 language tag")

// EncodeDescription builds the Map value for metadata's
// description: Map<lang, String> field (spec §5, MetadataRecord), validating
// every key as a BCP-47 tag via golang.org/x/text/language before encoding.
func EncodeDescription(byLang map[string]string) (Value, error) {
	keys := make([]string, 0, len(byLang))
	for k := range byLang {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	entries := make([]MapEntry, 0, len(keys))
	for _, k := range keys {
		if _, err := language.Parse(k); err != nil {
			return Value{}, fmt.Errorf("%w: %q: %v", ErrInvalidLanguageTag, k, err)
		}
		entries = append(entries, MapEntry{Key: k, Value: String(byLang[k])})
	}
	return MapValue(entries), nil
}

// DecodeDescription reads a description Map value back into a lang->string
// map. Tags that fail to parse are kept verbatim rather than rejected: a
// database built by a newer matchy version may carry tags this build
// doesn't recognize, and dropping the description entirely would lose more
// than it protects.
func DecodeDescription(v Value) (map[string]string, error) {
	if v.Kind != KindMap {
		return nil, fmt.Errorf("dataval: description is %s, want map", v.Kind)
	}
	out := make(map[string]string, len(v.Map))
	for _, e := range v.Map {
		if e.Value.Kind != KindString {
			return nil, fmt.Errorf("dataval: description[%q] is %s, want string", e.Key, e.Value.Kind)
		}
		out[e.Key] = e.Value.Str
	}
	return out, nil
}
