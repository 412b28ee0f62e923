package catalog

// Selection is the working state of a build: the boons taken so far plus the
// equipped weapon aspect and familiar. BoonIDs keeps insertion order for
// display; every rule treats it as a multiset. WeaponID may be left zero, in
// which case the weapon implied by AspectID is used.
type Selection struct {
	WeaponID   int   `json:"weaponId,omitempty"`
	AspectID   int   `json:"aspectId,omitempty"`
	FamiliarID *int  `json:"familiarId,omitempty"`
	BoonIDs    []int `json:"boonIds"`
}

// NewSelection creates a selection holding only boons
func NewSelection(boonIDs ...int) Selection {
	return Selection{BoonIDs: append([]int(nil), boonIDs...)}
}

// With returns a copy of s with boonID appended
func (s Selection) With(boonID int) Selection {
	next := s
	next.BoonIDs = make([]int, 0, len(s.BoonIDs)+1)
	next.BoonIDs = append(next.BoonIDs, s.BoonIDs...)
	next.BoonIDs = append(next.BoonIDs, boonID)
	return next
}

// Counts returns how many times each boon was selected
func (s Selection) Counts() map[int]int {
	counts := make(map[int]int, len(s.BoonIDs))
	for _, id := range s.BoonIDs {
		counts[id]++
	}
	return counts
}

// Distinct returns the selected boon ids without repeats, in first-selected
// order.
func (s Selection) Distinct() []int {
	seen := make(map[int]bool, len(s.BoonIDs))
	ids := make([]int, 0, len(s.BoonIDs))
	for _, id := range s.BoonIDs {
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	return ids
}

// checkReferences reports selection ids that do not exist in c
func checkReferences(c *Catalog, s Selection) ValidationErrors {
	var errs ValidationErrors
	for _, id := range s.Distinct() {
		if _, ok := c.Boon(id); !ok {
			errs = append(errs, ValidationError{
				Code:    CodeUnknownBoon,
				Field:   "boonIds",
				Message: (&NotFoundError{Kind: "boon", ID: id}).Error(),
				BoonIDs: []int{id},
			})
		}
	}
	if s.WeaponID != 0 {
		if _, ok := c.Weapon(s.WeaponID); !ok {
			errs = append(errs, ValidationError{
				Code:    CodeUnknownWeapon,
				Field:   "weaponId",
				Message: (&NotFoundError{Kind: "weapon", ID: s.WeaponID}).Error(),
			})
		}
	}
	if s.AspectID != 0 {
		if _, ok := c.Aspect(s.AspectID); !ok {
			errs = append(errs, ValidationError{
				Code:    CodeUnknownAspect,
				Field:   "aspectId",
				Message: (&NotFoundError{Kind: "aspect", ID: s.AspectID}).Error(),
			})
		}
	}
	if s.FamiliarID != nil {
		if _, ok := c.Familiar(*s.FamiliarID); !ok {
			errs = append(errs, ValidationError{
				Code:    CodeUnknownFamiliar,
				Field:   "familiarId",
				Message: (&NotFoundError{Kind: "familiar", ID: *s.FamiliarID}).Error(),
			})
		}
	}
	return errs
}
