package upload

import "strings"

// Role identifies one of the three standardized camera views the model
// expects.
type Role int

const (
	RoleFront Role = iota
	RoleOpen
	RoleLateral
)

func (r Role) String() string {
	switch r {
	case RoleFront:
		return "front"
	case RoleOpen:
		return "open"
	case RoleLateral:
		return "lateral"
	default:
		return "unknown"
	}
}

// ResolveRoles assigns each role an index into filenames.
//
// Filename substring matches ("front", "open", "lat", case-insensitive)
// win first, one upload per role. Unmatched uploads then fill any
// still-empty roles in upload order. Roles left over after that are
// duplicated from the first resolved role, preferring front, then open,
// then lateral, so inference always sees three views when at least one
// upload came in. ok is false only for an empty input.
func ResolveRoles(filenames []string) (slots [3]int, ok bool) {
	slots = [3]int{-1, -1, -1}
	matched := make([]bool, len(filenames))

	for i, name := range filenames {
		lower := strings.ToLower(name)
		switch {
		case strings.Contains(lower, "front") && slots[RoleFront] < 0:
			slots[RoleFront] = i
			matched[i] = true
		case strings.Contains(lower, "open") && slots[RoleOpen] < 0:
			slots[RoleOpen] = i
			matched[i] = true
		case strings.Contains(lower, "lat") && slots[RoleLateral] < 0:
			slots[RoleLateral] = i
			matched[i] = true
		}
	}

	for i := range filenames {
		if matched[i] {
			continue
		}
		for r := RoleFront; r <= RoleLateral; r++ {
			if slots[r] < 0 {
				slots[r] = i
				matched[i] = true
				break
			}
		}
	}

	source := -1
	for r := RoleFront; r <= RoleLateral; r++ {
		if slots[r] >= 0 {
			source = slots[r]
			break
		}
	}
	if source < 0 {
		return slots, false
	}
	for r := RoleFront; r <= RoleLateral; r++ {
		if slots[r] < 0 {
			slots[r] = source
		}
	}
	return slots, true
}
