package catalog

import (
	"sort"
)

// SelectedBoon is a boon already in the selection
type SelectedBoon struct {
	Boon  Boon `json:"boon"`
	Count int  `json:"count"`
}

// BlockReason lists every condition keeping a boon out of reach. All fields
// that apply are set at once.
type BlockReason struct {
	// SlotOccupiedBy is the selected boon holding the same exclusive slot
	SlotOccupiedBy *int `json:"slotOccupiedBy,omitempty"`
	// MissingPrerequisite is the part of the boon's expression that is still
	// false, with already satisfied operands pruned.
	MissingPrerequisite *Expression `json:"missingPrerequisite,omitempty"`
	ConflictsWith       []int       `json:"conflictsWith,omitempty"`
}

// Blocked reports whether any condition is set
func (r BlockReason) Blocked() bool {
	return r.SlotOccupiedBy != nil || r.MissingPrerequisite != nil || len(r.ConflictsWith) > 0
}

type BlockedBoon struct {
	Boon   Boon        `json:"boon"`
	Reason BlockReason `json:"reason"`
}

// Availability partitions every catalog boon into exactly one of Selected,
// Available and Blocked. Each list is ordered by boon id.
type Availability struct {
	Selected  []SelectedBoon `json:"selected"`
	Available []Boon         `json:"available"`
	Blocked   []BlockedBoon  `json:"blocked"`
}

// ComputeAvailable decides, for every boon in c, whether it is already
// selected, may be added to sel next, or is blocked and why.
//
// Prerequisites only ever look at boons that are already selected, so one
// pass over the catalog is enough. The result depends only on the multiset of
// selected ids, never on their order. Unknown ids in sel are reported as
// ValidationErrors.
func ComputeAvailable(c *Catalog, sel Selection) (*Availability, error) {
	if errs := checkReferences(c, sel); len(errs) > 0 {
		return nil, errs
	}

	st := newState(c, sel)
	selected := sel.Distinct()
	sort.Ints(selected)

	occupants := make(map[Slot]int)
	for _, id := range selected {
		b, _ := c.Boon(id)
		if !b.exclusive() {
			continue
		}
		if _, taken := occupants[b.Slot]; !taken {
			occupants[b.Slot] = id
		}
	}

	result := &Availability{
		Selected:  []SelectedBoon{},
		Available: []Boon{},
		Blocked:   []BlockedBoon{},
	}
	for _, b := range c.boons {
		if n := st.boons[b.ID]; n > 0 {
			result.Selected = append(result.Selected, SelectedBoon{Boon: b, Count: n})
			continue
		}

		reason := blockReason(c, st, b, selected, occupants)
		if reason.Blocked() {
			result.Blocked = append(result.Blocked, BlockedBoon{Boon: b, Reason: reason})
		} else {
			result.Available = append(result.Available, b)
		}
	}
	return result, nil
}

func blockReason(c *Catalog, st *state, b Boon, selected []int, occupants map[Slot]int) BlockReason {
	var reason BlockReason

	if b.exclusive() {
		if holder, ok := occupants[b.Slot]; ok && holder != b.ID {
			holder := holder
			reason.SlotOccupiedBy = &holder
		}
	}

	if missing, ok := b.Prerequisite.unmet(st); ok {
		reason.MissingPrerequisite = &missing
	}

	for _, id := range selected {
		if c.Incompatible(b.ID, id) {
			reason.ConflictsWith = append(reason.ConflictsWith, id)
		}
	}

	return reason
}

// CanSelect reports whether boonID could be added to sel right now. Selecting
// another copy of an already selected boon is allowed while its MaxCount has
// not been reached.
func CanSelect(c *Catalog, sel Selection, boonID int) (bool, error) {
	b, ok := c.Boon(boonID)
	if !ok {
		return false, &NotFoundError{Kind: "boon", ID: boonID}
	}
	if n := sel.Counts()[boonID]; n > 0 {
		return n < b.MaxCount, nil
	}
	avail, err := ComputeAvailable(c, sel)
	if err != nil {
		return false, err
	}
	for _, a := range avail.Available {
		if a.ID == boonID {
			return true, nil
		}
	}
	return false, nil
}
