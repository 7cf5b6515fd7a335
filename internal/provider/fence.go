package provider

import (
	"regexp"
	"strings"
)

var fenceRe = regexp.MustCompile("(?s)^```[\\w+#.-]*[ \\t]*\\r?\\n(.*?)\\r?\\n?```$")

// StripFence removes one code fence enclosing the whole text. Text with
// several fenced blocks or prose around the fence is returned trimmed but
// otherwise unchanged.
func StripFence(code string) string {
	trimmed := strings.TrimSpace(code)
	if strings.Count(trimmed, "```") != 2 {
		return trimmed
	}
	m := fenceRe.FindStringSubmatch(trimmed)
	if m == nil {
		return trimmed
	}
	return m[1]
}
