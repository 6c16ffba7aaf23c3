package pipeline

import "regexp"

var variablePattern = regexp.MustCompile(`\{\{\s*([A-Za-z_$][A-Za-z0-9_$]*)\s*\}\}`)

// ExtractVariables returns the distinct names referenced as {{name}} in
// text, in order of first appearance. It never returns nil.
func ExtractVariables(text string) []string {
	names := []string{}
	if text == "" {
		return names
	}
	seen := make(map[string]struct{})
	for _, m := range variablePattern.FindAllStringSubmatch(text, -1) {
		name := m[1]
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}
	return names
}
