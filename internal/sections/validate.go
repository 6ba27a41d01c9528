package sections

import (
	"fmt"
)

// Validate compares the structure of a body before and after a free-form model
// rewrite. It returns human-readable warnings; an empty result means the
// rewrite kept every section and at least half of the bullets.
func Validate(before, after string) []string {
	b := Parse(before)
	a := Parse(after)

	var warnings []string
	if len(b) > 0 && len(a) == 0 {
		return []string{"rewrite produced no sections"}
	}

	if len(a) < len(b) {
		warnings = append(warnings, fmt.Sprintf("section count dropped from %d to %d", len(b), len(a)))
	}

	bb, ab := BulletCount(b), BulletCount(a)
	if bb > 0 && ab*2 < bb {
		warnings = append(warnings, fmt.Sprintf("bullet count dropped from %d to %d", bb, ab))
	}
	return warnings
}
