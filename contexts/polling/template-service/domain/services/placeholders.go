package services

import "regexp"

// Placeholders are `{identifier}` tokens. Anything that does not match the
// identifier shape, including stray or nested braces, is literal text.
var placeholderPattern = regexp.MustCompile(`\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// ExtractVariables returns each distinct placeholder name once, at its first
// occurrence position across the given texts, scanned left to right.
func ExtractVariables(texts ...string) []string {
	seen := make(map[string]struct{})
	var names []string
	for _, text := range texts {
		for _, match := range placeholderPattern.FindAllStringSubmatch(text, -1) {
			name := match[1]
			if _, ok := seen[name]; ok {
				continue
			}
			seen[name] = struct{}{}
			names = append(names, name)
		}
	}
	return names
}

// Substitute replaces every placeholder occurrence with its bound value in a
// single pass over the original text. Substituted values are never
// re-scanned, so a value containing `{x}` stays literal. The second return
// lists placeholder names that had no binding.
func Substitute(text string, bindings map[string]string) (string, []string) {
	var unbound []string
	out := placeholderPattern.ReplaceAllStringFunc(text, func(token string) string {
		name := token[1 : len(token)-1]
		value, ok := bindings[name]
		if !ok {
			unbound = append(unbound, name)
			return token
		}
		return value
	})
	return out, unbound
}
