package catalog

import (
	"fmt"
)

// Validate checks a finished selection as a whole and returns every violated
// rule. A nil result means the build is consistent.
//
// Each selected boon's prerequisite is evaluated against the rest of the
// selection. Load rejects catalogs whose boon references form a cycle, so
// every selection accepted here can be assembled one boon at a time.
func Validate(c *Catalog, sel Selection) ValidationErrors {
	errs := checkReferences(c, sel)

	errs = append(errs, validateAspect(c, sel)...)

	var known []Boon
	for _, id := range sel.Distinct() {
		if b, ok := c.Boon(id); ok {
			known = append(known, b)
		}
	}

	errs = append(errs, validateSlots(known)...)
	errs = append(errs, validateCounts(known, sel.Counts())...)

	st := newState(c, sel)
	for _, b := range known {
		missing, ok := b.Prerequisite.unmet(st.without(b))
		if !ok {
			continue
		}
		errs = append(errs, ValidationError{
			Code:    CodePrerequisiteUnmet,
			Field:   "boonIds",
			Message: fmt.Sprintf("%s requires %s", b.Name, missing.Describe(c)),
			BoonIDs: []int{b.ID},
		})
	}

	for i, a := range known {
		for _, b := range known[i+1:] {
			if c.Incompatible(a.ID, b.ID) {
				errs = append(errs, ValidationError{
					Code:    CodeIncompatible,
					Field:   "boonIds",
					Message: fmt.Sprintf("%s cannot be taken with %s", a.Name, b.Name),
					BoonIDs: []int{a.ID, b.ID},
				})
			}
		}
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

func validateAspect(c *Catalog, sel Selection) ValidationErrors {
	if sel.AspectID == 0 {
		return ValidationErrors{{
			Code:    CodeAspectRequired,
			Field:   "aspectId",
			Message: "a build must equip a weapon aspect",
		}}
	}
	aspect, ok := c.Aspect(sel.AspectID)
	if !ok || sel.WeaponID == 0 || aspect.WeaponID == sel.WeaponID {
		return nil
	}
	weapon, ok := c.Weapon(sel.WeaponID)
	if !ok {
		return nil
	}
	return ValidationErrors{{
		Code:    CodeAspectWeaponMismatch,
		Field:   "aspectId",
		Message: fmt.Sprintf("%s is not an aspect of %s", aspect.Name, weapon.Name),
	}}
}

func validateSlots(boons []Boon) ValidationErrors {
	bySlot := make(map[Slot][]Boon)
	for _, b := range boons {
		if b.exclusive() {
			bySlot[b.Slot] = append(bySlot[b.Slot], b)
		}
	}

	var errs ValidationErrors
	for _, slot := range AllSlots {
		holders := bySlot[slot]
		if len(holders) < 2 {
			continue
		}
		ids := make([]int, len(holders))
		names := make([]string, len(holders))
		for i, b := range holders {
			ids[i] = b.ID
			names[i] = b.Name
		}
		errs = append(errs, ValidationError{
			Code:    CodeSlotCollision,
			Field:   "boonIds",
			Message: fmt.Sprintf("%s slot is taken by %s", slot, joinPhrases(names, "and")),
			BoonIDs: ids,
		})
	}
	return errs
}

func validateCounts(boons []Boon, counts map[int]int) ValidationErrors {
	var errs ValidationErrors
	for _, b := range boons {
		if n := counts[b.ID]; n > b.MaxCount {
			errs = append(errs, ValidationError{
				Code:    CodeMaxCountExceeded,
				Field:   "boonIds",
				Message: fmt.Sprintf("%s selected %d times, at most %d allowed", b.Name, n, b.MaxCount),
				BoonIDs: []int{b.ID},
			})
		}
	}
	return errs
}
