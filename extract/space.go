package extract

import (
	"regexp"
	"strings"
)

// spaceRunes widens RE2's ASCII \s to the separators flattened Chinese pages
// put between header fields, such as U+3000 and U+00A0.
const spaceRunes = `\s\v\x{85}\p{Z}`

// mustCompile compiles expr with every \s, inside or outside a character
// class, matching spaceRunes.
func mustCompile(expr string) *regexp.Regexp {
	var b strings.Builder
	inClass := false
	for i := 0; i < len(expr); i++ {
		c := expr[i]
		switch {
		case c == '\\' && i+1 < len(expr):
			next := expr[i+1]
			i++
			if next != 's' {
				b.WriteByte(c)
				b.WriteByte(next)
				continue
			}
			if inClass {
				b.WriteString(spaceRunes)
			} else {
				b.WriteString("[" + spaceRunes + "]")
			}
			continue
		case c == '[' && !inClass:
			inClass = true
		case c == ']' && inClass:
			inClass = false
		}
		b.WriteByte(c)
	}
	return regexp.MustCompile(b.String())
}
