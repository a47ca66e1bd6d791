package extract

// isDomainChar reports whether b can appear inside a domain label or
// between labels (spec §4.9, "Boundary scan").
func isDomainChar(b byte) bool {
	return isAlphaNumeric(b) || b == '-' || b == '.'
}

func isEmailLocalChar(b byte) bool {
	return isAlphaNumeric(b) || b == '.' || b == '-' || b == '_' || b == '+'
}

func isAlphaNumeric(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

func isHexDigit(b byte) bool {
	return isDigit(b) || (b >= 'a' && b <= 'f') || (b >= 'A' && b <= 'F')
}

// isWordBoundary reports whether b is a character that may legally sit
// just outside an extracted match (spec §4.9, "require_word_boundaries").
func isWordBoundary(b byte) bool {
	switch b {
	case ' ', '\t', '\n', '\r', '\v', '\f':
		return true
	case '/', ',', ';', ':', '(', ')', '[', ']', '{', '}', '<', '>', '"', '\'':
		return true
	default:
		return false
	}
}
