package extract

import "net/netip"

// extractIPv6 finds ':' anchors, grows outward while bytes belong to the
// IPv6 character class (hex digits, ':', and a trailing embedded IPv4
// dotted quad), then validates the candidate with net/netip — the
// original extractor left IPv6 as a documented follow-up; this package
// supplements it using the same anchor-and-grow shape as extractIPv4.
func (e *Extractor) extractIPv6(line []byte, out []Match) []Match {
	if !e.config.ExtractIPv6 {
		return out
	}

	lastEnd := 0
	for i := 0; i < len(line); i++ {
		if line[i] != ':' {
			continue
		}
		start := i
		for start > 0 && isIPv6Char(line[start-1]) {
			start--
		}
		end := i
		for end < len(line) && isIPv6Char(line[end]) {
			end++
		}
		if start < lastEnd {
			continue
		}
		if end-start < 2 {
			continue
		}

		if e.config.RequireWordBoundaries {
			if start > 0 && !isWordBoundary(line[start-1]) {
				continue
			}
			if end < len(line) && !isWordBoundary(line[end]) {
				continue
			}
		}

		candidate := string(line[start:end])
		addr, err := netip.ParseAddr(candidate)
		if err != nil || !addr.Is6() {
			continue
		}
		out = append(out, Match{Kind: KindIPv6, Text: candidate, Start: start, End: end})
		lastEnd = end
	}
	return out
}

func isIPv6Char(b byte) bool {
	return isHexDigit(b) || b == ':' || b == '.'
}
