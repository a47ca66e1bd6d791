package extract

// extractDomains finds every TLD suffix occurrence, expands each
// backwards to the start of the full domain, and validates the result
// (spec §4.9, "Validator"). Line must already be valid UTF-8 text.
func (e *Extractor) extractDomains(line []byte, out []Match) []Match {
	if !e.config.ExtractDomains {
		return out
	}
	hasDot := false
	for _, b := range line {
		if b == '.' {
			hasDot = true
			break
		}
	}
	if !hasDot {
		return out
	}

	tldMatches, err := embeddedTLDMatcher().FindLiteralMatches(string(line))
	if err != nil {
		return out
	}

	for _, m := range tldMatches {
		start, end, ok := e.expandDomainBackwards(line, m.End)
		if !ok {
			continue
		}
		if !e.isValidDomain(line[start:end]) {
			continue
		}
		out = append(out, Match{Kind: KindDomain, Text: string(line[start:end]), Start: start, End: end})
	}
	return out
}

// expandDomainBackwards walks left from tldEnd while bytes are valid
// domain characters, then checks word-boundary requirements.
func (e *Extractor) expandDomainBackwards(line []byte, tldEnd int) (int, int, bool) {
	if tldEnd == 0 {
		return 0, 0, false
	}
	start := tldEnd
	for start > 0 && isDomainChar(line[start-1]) {
		start--
	}

	if e.config.RequireWordBoundaries {
		if start > 0 && !isWordBoundary(line[start-1]) {
			return 0, 0, false
		}
		if tldEnd < len(line) && !isWordBoundary(line[tldEnd]) {
			return 0, 0, false
		}
	}

	if start >= tldEnd {
		return 0, 0, false
	}
	return start, tldEnd, true
}

// isValidDomain checks label shape and the minimum label count (spec
// §4.9, "domain labels non-empty, alphanumeric + hyphen, hyphen not at
// label ends, at least min_labels").
func (e *Extractor) isValidDomain(domain []byte) bool {
	labelCount := 0
	labelStart := 0
	for i, b := range domain {
		if b == '.' {
			if !isValidLabel(domain[labelStart:i]) {
				return false
			}
			labelCount++
			labelStart = i + 1
		}
	}
	if !isValidLabel(domain[labelStart:]) {
		return false
	}
	labelCount++
	return labelCount >= e.config.MinDomainLabels
}

func isValidLabel(label []byte) bool {
	if len(label) == 0 {
		return false
	}
	if label[0] == '-' || label[len(label)-1] == '-' {
		return false
	}
	for _, b := range label {
		if !isAlphaNumeric(b) && b != '-' {
			return false
		}
	}
	return true
}
