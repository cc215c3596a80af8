package preprocessing

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// tokenPattern matches runs of two or more word characters.
var tokenPattern = regexp.MustCompile(`[\p{L}\p{N}_]{2,}`)

// Lower lowercases s. A fresh Caser is used per call since Casers are not
// safe for concurrent use.
func Lower(s string) string {
	return cases.Lower(language.Und).String(s)
}

func Upper(s string) string {
	return cases.Upper(language.Und).String(s)
}

// Lines splits raw file content into lowercased, trimmed, non-empty lines.
func Lines(content string) []string {
	lowered := Lower(strings.TrimSpace(content))
	var lines []string
	for _, line := range strings.Split(lowered, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}

func Tokenize(text string) []string {
	return tokenPattern.FindAllString(Lower(text), -1)
}
