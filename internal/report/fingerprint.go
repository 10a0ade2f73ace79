package report

import (
	"encoding/hex"
	"strconv"
	"strings"

	"golang.org/x/crypto/blake2b"

	"lipidgenesis/internal/blend"
)

// Fingerprint identifies a blend input: a hex blake2b-256 digest over the
// oils in name order, their percentages, the line and the occasion. Oils at
// zero percent do not change it.
func Fingerprint(percentages blend.Percentages, line, occasion string) string {
	var b strings.Builder
	for _, oil := range percentages.Oils() {
		value := percentages[oil]
		if value == 0 {
			continue
		}
		b.WriteString(oil)
		b.WriteByte('=')
		b.WriteString(strconv.FormatFloat(value, 'g', -1, 64))
		b.WriteByte('\n')
	}
	b.WriteString("line=")
	b.WriteString(strings.ToLower(strings.TrimSpace(line)))
	b.WriteString("\noccasion=")
	b.WriteString(strings.ToLower(strings.TrimSpace(occasion)))

	sum := blake2b.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}
