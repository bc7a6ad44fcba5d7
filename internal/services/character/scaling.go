package character

import (
	"strings"

	"github.com/KirkDiggler/dnd-character-engine/internal/rules"
)

// ResolveScaling substitutes {placeholder} tokens in feature text using
// the feature's scaling table. Each placeholder takes the value of the
// breakpoint with the highest min_level at or below the character's
// level. A placeholder with no qualifying breakpoint, or no table entry
// at all, is left as the literal token so missing data is visible
// instead of silently blank.
func ResolveScaling(text string, scaling map[string][]rules.Breakpoint, level int) string {
	if len(scaling) == 0 || !strings.Contains(text, "{") {
		return text
	}

	resolved := text
	for name, breakpoints := range scaling {
		token := "{" + name + "}"
		if !strings.Contains(resolved, token) {
			continue
		}
		value, ok := scalingValueAt(breakpoints, level)
		if !ok {
			continue
		}
		resolved = strings.ReplaceAll(resolved, token, value)
	}
	return resolved
}

// scalingValueAt picks the breakpoint value for a level. Breakpoints
// need not be sorted in rule data.
func scalingValueAt(breakpoints []rules.Breakpoint, level int) (string, bool) {
	best := -1
	value := ""
	for _, bp := range breakpoints {
		if bp.MinLevel <= level && bp.MinLevel > best {
			best = bp.MinLevel
			value = bp.Value
		}
	}
	if best < 0 {
		return "", false
	}
	return value, true
}
