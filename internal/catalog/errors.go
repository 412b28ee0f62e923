package catalog

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound is matched by every *NotFoundError
var ErrNotFound = errors.New("not found")

// NotFoundError reports a lookup of an id the catalog does not contain
type NotFoundError struct {
	Kind string
	ID   int
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Kind, e.ID)
}

func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}

// IntegrityError lists every problem found while loading a catalog. A catalog
// with integrity problems must never be served.
type IntegrityError struct {
	Problems []string
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("catalog integrity: %d problem(s): %s", len(e.Problems), strings.Join(e.Problems, "; "))
}

func (e *IntegrityError) addf(format string, args ...any) {
	e.Problems = append(e.Problems, fmt.Sprintf(format, args...))
}

// Validation error codes
const (
	CodeUnknownBoon          = "unknown_boon"
	CodeUnknownAspect        = "unknown_aspect"
	CodeUnknownWeapon        = "unknown_weapon"
	CodeUnknownFamiliar      = "unknown_familiar"
	CodeAspectRequired       = "aspect_required"
	CodeAspectWeaponMismatch = "aspect_weapon_mismatch"
	CodeSlotCollision        = "slot_collision"
	CodeMaxCountExceeded     = "max_count_exceeded"
	CodePrerequisiteUnmet    = "prerequisite_unmet"
	CodeIncompatible         = "incompatible_boons"
)

// ValidationError describes one violated rule of a selection
type ValidationError struct {
	Code    string `json:"code"`
	Field   string `json:"field"`
	Message string `json:"message"`
	BoonIDs []int  `json:"boonIds,omitempty"`
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// ValidationErrors is the full list of problems found in a request
type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	msgs := make([]string, len(v))
	for i, e := range v {
		msgs[i] = e.Error()
	}
	return strings.Join(msgs, "; ")
}

// Err returns v as an error, or nil when there are no problems
func (v ValidationErrors) Err() error {
	if len(v) == 0 {
		return nil
	}
	return v
}

// HasCode reports whether any error carries code
func (v ValidationErrors) HasCode(code string) bool {
	for _, e := range v {
		if e.Code == code {
			return true
		}
	}
	return false
}

func checkIntegrity(raw RawData) error {
	problems := &IntegrityError{}

	gods := make(map[int]bool, len(raw.Gods))
	for _, g := range raw.Gods {
		if gods[g.ID] {
			problems.addf("duplicate god id %d", g.ID)
		}
		gods[g.ID] = true
	}

	weapons := make(map[int]bool, len(raw.Weapons))
	for _, w := range raw.Weapons {
		if weapons[w.ID] {
			problems.addf("duplicate weapon id %d", w.ID)
		}
		weapons[w.ID] = true
	}

	aspects := make(map[int]bool, len(raw.Aspects))
	for _, a := range raw.Aspects {
		if aspects[a.ID] {
			problems.addf("duplicate aspect id %d", a.ID)
		}
		aspects[a.ID] = true
		if !weapons[a.WeaponID] {
			problems.addf("aspect %d references unknown weapon %d", a.ID, a.WeaponID)
		}
	}

	familiars := make(map[int]bool, len(raw.Familiars))
	for _, f := range raw.Familiars {
		if familiars[f.ID] {
			problems.addf("duplicate familiar id %d", f.ID)
		}
		familiars[f.ID] = true
		if f.GodID != nil && !gods[*f.GodID] {
			problems.addf("familiar %d references unknown god %d", f.ID, *f.GodID)
		}
	}

	boons := make(map[int]bool, len(raw.Boons))
	for _, b := range raw.Boons {
		if boons[b.ID] {
			problems.addf("duplicate boon id %d", b.ID)
		}
		boons[b.ID] = true
	}

	refs := references{gods: gods, weapons: weapons, aspects: aspects, boons: boons}
	for _, b := range raw.Boons {
		if b.GodID != nil && !gods[*b.GodID] {
			problems.addf("boon %d references unknown god %d", b.ID, *b.GodID)
		}
		if !b.Category.IsValid() {
			problems.addf("boon %d has unknown category %q", b.ID, b.Category)
		}
		if !b.Slot.IsValid() {
			problems.addf("boon %d has unknown slot %q", b.ID, b.Slot)
		}
		if b.Category == CategoryCore && b.Slot == SlotNone {
			problems.addf("core boon %d has no slot", b.ID)
		}
		if b.Category.requiresPrerequisite() && b.Prerequisite.IsEmpty() {
			problems.addf("%s boon %d has no prerequisite", b.Category, b.ID)
		}
		if b.MaxCount < 0 {
			problems.addf("boon %d has negative max count", b.ID)
		}
		for _, other := range b.Incompatible {
			if other == b.ID {
				problems.addf("boon %d is incompatible with itself", b.ID)
			} else if !boons[other] {
				problems.addf("boon %d is incompatible with unknown boon %d", b.ID, other)
			}
		}
		refs.check(problems, b.ID, b.Prerequisite)
	}

	checkCycles(problems, raw.Boons)

	if len(problems.Problems) > 0 {
		return problems
	}
	return nil
}

type references struct {
	gods, weapons, aspects, boons map[int]bool
}

func (r references) check(problems *IntegrityError, boonID int, e Expression) {
	switch e.Op {
	case OpAlways:
	case OpBoon:
		if e.ID == boonID {
			problems.addf("boon %d requires itself", boonID)
		} else if !r.boons[e.ID] {
			problems.addf("boon %d requires unknown boon %d", boonID, e.ID)
		}
	case OpGod:
		if !r.gods[e.ID] {
			problems.addf("boon %d requires unknown god %d", boonID, e.ID)
		}
		if e.Count < 0 {
			problems.addf("boon %d has a negative god count", boonID)
		}
	case OpAspect:
		if !r.aspects[e.ID] {
			problems.addf("boon %d requires unknown aspect %d", boonID, e.ID)
		}
	case OpWeapon:
		if !r.weapons[e.ID] {
			problems.addf("boon %d requires unknown weapon %d", boonID, e.ID)
		}
	case OpAnd, OpOr:
		if len(e.Args) == 0 {
			problems.addf("boon %d has an empty %q expression", boonID, e.Op)
		}
		for _, arg := range e.Args {
			if arg.IsEmpty() {
				problems.addf("boon %d has an empty operand in %q", boonID, e.Op)
				continue
			}
			r.check(problems, boonID, arg)
		}
	default:
		problems.addf("boon %d has unknown expression op %q", boonID, e.Op)
	}
}

// checkCycles keeps boon references acyclic. Every boon leaf counts, including
// those under an or, since a selection could otherwise hold two boons that
// only unlock each other.
func checkCycles(problems *IntegrityError, boons []Boon) {
	edges := make(map[int][]int, len(boons))
	for _, b := range boons {
		for _, leaf := range b.Prerequisite.Leaves() {
			if leaf.Op == OpBoon && leaf.ID != b.ID {
				edges[b.ID] = append(edges[b.ID], leaf.ID)
			}
		}
	}

	const (
		unvisited = iota
		visiting
		done
	)
	marks := make(map[int]int, len(boons))
	var visit func(id int) bool
	visit = func(id int) bool {
		switch marks[id] {
		case visiting:
			return true
		case done:
			return false
		}
		marks[id] = visiting
		for _, dep := range edges[id] {
			if visit(dep) {
				marks[id] = done
				return true
			}
		}
		marks[id] = done
		return false
	}

	for _, b := range boons {
		if marks[b.ID] == unvisited && visit(b.ID) {
			problems.addf("boon %d depends on a prerequisite cycle", b.ID)
		}
	}
}
