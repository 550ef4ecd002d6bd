package core

import "strings"

// ForbiddenWords may not appear in user-authored titles and texts.
var ForbiddenWords = []string{
	"казино", "криптовалюта", "крипта", "биржа", "обман", "полиция", "радар",
	"casino", "cryptocurrency", "crypto", "exchange", "scam", "police", "radar",
}

// CleanString strips the surrounding whitespace of form input; emails and other
// case-insensitive identifiers are lowered as well.
func CleanString(s string, lower ...bool) string {
	s = strings.TrimSpace(s)
	if len(lower) == 0 || !lower[0] {
		return s
	}
	return strings.ToLower(s)
}

// ContainsForbiddenWords reports whether `s` contains any of ForbiddenWords, ignoring case.
// Words are matched as substrings: "crypto" also rejects "cryptography".
func ContainsForbiddenWords(s string) bool {
	s = strings.ToLower(s)
	for _, w := range ForbiddenWords {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
