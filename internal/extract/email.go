package extract

import "bytes"

// extractEmails finds '@' anchors and grows the local part backwards and
// the domain part forwards, requiring the domain part to contain a dot
// (spec §4.9).
func (e *Extractor) extractEmails(line []byte, out []Match) []Match {
	if !e.config.ExtractEmails {
		return out
	}
	for i := 0; i < len(line); i++ {
		if line[i] != '@' {
			continue
		}
		if start, end, ok := e.extractEmailAt(line, i); ok {
			out = append(out, Match{Kind: KindEmail, Text: string(line[start:end]), Start: start, End: end})
		}
	}
	return out
}

func (e *Extractor) extractEmailAt(line []byte, atPos int) (int, int, bool) {
	start := atPos
	for start > 0 && isEmailLocalChar(line[start-1]) {
		start--
	}
	if start == atPos {
		return 0, 0, false
	}
	if e.config.RequireWordBoundaries && start > 0 && !isWordBoundary(line[start-1]) {
		return 0, 0, false
	}

	end := atPos + 1
	for end < len(line) && isDomainChar(line[end]) {
		end++
	}
	if end == atPos+1 {
		return 0, 0, false
	}
	if e.config.RequireWordBoundaries && end < len(line) && !isWordBoundary(line[end]) {
		return 0, 0, false
	}

	domainPart := line[atPos+1 : end]
	if !bytes.ContainsRune(domainPart, '.') {
		return 0, 0, false
	}
	return start, end, true
}
