package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// Prefixes of the human-readable sequential identifiers.
const (
	PrefixEmployee = "EMP"
	PrefixClient   = "CLI"
	PrefixProject  = "PROJ"
	PrefixDocument = "DOC"
)

// NextSequentialID derives the identifier following last. An empty or
// unparsable last yields the first identifier of the sequence. The numeric
// part is zero-padded to three digits and grows past 999 without truncation.
func NextSequentialID(prefix, last string) string {
	n := 0
	if suffix, ok := strings.CutPrefix(last, prefix); ok {
		if parsed, err := strconv.Atoi(suffix); err == nil && parsed >= 0 {
			n = parsed
		}
	}
	return fmt.Sprintf("%s%03d", prefix, n+1)
}
