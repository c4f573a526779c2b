package document

import (
	"fmt"
	"regexp"
)

// fieldRe builds a first-match extractor for key: "value" fields with
// either quote style.
func fieldRe(key string) *regexp.Regexp {
	return regexp.MustCompile(regexp.QuoteMeta(key) + `\s*:\s*["']([^"']*)["']`)
}

// ExtractField returns the first key: "value" occurrence in the lines.
func ExtractField(lines []string, key string) (string, bool) {
	re := fieldRe(key)
	for _, line := range lines {
		if m := re.FindStringSubmatch(stripComment(line)); m != nil {
			return m[1], true
		}
	}
	return "", false
}

// RewriteField replaces the value of the first key: "value" occurrence,
// preserving indentation, quoting, and any trailing comma or comment. The
// input slice is not modified.
func RewriteField(lines []string, key, value string) ([]string, bool) {
	re := regexp.MustCompile(`(` + regexp.QuoteMeta(key) + `\s*:\s*["'])[^"']*(["'])`)
	out := make([]string, len(lines))
	copy(out, lines)
	for i, line := range out {
		if re.MatchString(stripComment(line)) {
			out[i] = re.ReplaceAllString(line, fmt.Sprintf("${1}%s${2}", value))
			return out, true
		}
	}
	return out, false
}
