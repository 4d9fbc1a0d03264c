package vanilla

import (
	"sort"
	"strings"
)

func controlID(name string) string {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return ""
	}
	return "of-" + trimmed
}

// sanitizeClassList drops tokens that would collide with the renderer's own
// "of-" identifiers.
func sanitizeClassList(value string) string {
	tokens := strings.Fields(value)
	keep := tokens[:0]
	for _, token := range tokens {
		if strings.HasPrefix(token, "of-") {
			continue
		}
		keep = append(keep, token)
	}
	return strings.Join(keep, " ")
}

func cssVarsStyle(vars map[string]string) string {
	if len(vars) == 0 {
		return ""
	}
	keys := make([]string, 0, len(vars))
	for key := range vars {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, key := range keys {
		name := strings.TrimSpace(key)
		if !strings.HasPrefix(name, "--") {
			name = "--" + name
		}
		value := strings.NewReplacer(";", "", "{", "", "}", "", "<", "").Replace(vars[key])
		b.WriteString(name)
		b.WriteString(": ")
		b.WriteString(strings.TrimSpace(value))
		b.WriteString("; ")
	}
	return strings.TrimSpace(b.String())
}

func splitLines(message string) []string {
	var out []string
	for _, line := range strings.Split(message, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}
