package extract

import "strconv"

// extractIPv4 finds '.' anchors, confirms a dense window of at least
// three dots around each candidate (a strong IPv4 signal), then attempts
// a full parse from the start of that digit run (spec §4.9).
func (e *Extractor) extractIPv4(line []byte, out []Match) []Match {
	if !e.config.ExtractIPv4 {
		return out
	}

	lastEnd := 0
	for i := 0; i < len(line); i++ {
		if line[i] != '.' {
			continue
		}
		dotPos := i
		if dotPos == 0 || dotPos+6 > len(line) {
			continue
		}
		if !isDigit(line[dotPos-1]) || !isDigit(line[dotPos+1]) {
			continue
		}

		windowStart := dotPos - 3
		if windowStart < 0 {
			windowStart = 0
		}
		windowEnd := dotPos + 12
		if windowEnd > len(line) {
			windowEnd = len(line)
		}
		dotCount := 0
		for _, b := range line[windowStart:windowEnd] {
			if b == '.' {
				dotCount++
			}
		}
		if dotCount < 3 {
			continue
		}

		start := dotPos
		for start > 0 && (isDigit(line[start-1]) || line[start-1] == '.') {
			start--
		}
		if start < lastEnd {
			continue
		}

		if text, end, ok := e.tryParseIPv4(line, start); ok {
			out = append(out, Match{Kind: KindIPv4, Text: text, Start: start, End: end})
			lastEnd = end
		}
	}
	return out
}

// tryParseIPv4 parses exactly four dot-separated 0-255 octets starting at
// start, enforcing word boundaries if configured.
func (e *Extractor) tryParseIPv4(line []byte, start int) (string, int, bool) {
	if e.config.RequireWordBoundaries && start > 0 && !isWordBoundary(line[start-1]) {
		return "", 0, false
	}

	pos := start
	for octet := 0; octet < 4; octet++ {
		digitStart := pos
		digits := 0
		for pos < len(line) && isDigit(line[pos]) && digits < 3 {
			pos++
			digits++
		}
		if digits == 0 {
			return "", 0, false
		}
		val, err := strconv.Atoi(string(line[digitStart:pos]))
		if err != nil || val > 255 {
			return "", 0, false
		}
		if octet < 3 {
			if pos >= len(line) || line[pos] != '.' {
				return "", 0, false
			}
			pos++
		}
	}

	if e.config.RequireWordBoundaries && pos < len(line) && !isWordBoundary(line[pos]) {
		return "", 0, false
	}
	return string(line[start:pos]), pos, true
}
