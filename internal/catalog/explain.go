package catalog

// Predicate is one leaf condition of a boon's expression together with its
// rendered text
type Predicate struct {
	Expression  Expression `json:"expression"`
	Description string     `json:"description"`
}

type BoonRef struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// PrerequisiteDetails is the static, selection independent description of
// what a boon needs.
type PrerequisiteDetails struct {
	Boon         Boon        `json:"boon"`
	Expression   Expression  `json:"expression"`
	Summary      string      `json:"summary"`
	Conditions   []string    `json:"conditions"`
	Predicates   []Predicate `json:"predicates"`
	Slot         Slot        `json:"slot,omitempty"`
	Category     Category    `json:"category"`
	MaxCount     int         `json:"maxCount"`
	Incompatible []BoonRef   `json:"incompatible"`
}

// ExplainPrerequisites renders the prerequisite tree of boonID. Predicates
// lists exactly the leaves ComputeAvailable evaluates for the boon, in the
// same order.
func ExplainPrerequisites(c *Catalog, boonID int) (*PrerequisiteDetails, error) {
	b, ok := c.Boon(boonID)
	if !ok {
		return nil, &NotFoundError{Kind: "boon", ID: boonID}
	}

	details := &PrerequisiteDetails{
		Boon:         b,
		Expression:   b.Prerequisite,
		Conditions:   []string{},
		Predicates:   []Predicate{},
		Slot:         b.Slot,
		Category:     b.Category,
		MaxCount:     b.MaxCount,
		Incompatible: []BoonRef{},
	}

	if b.Prerequisite.IsEmpty() {
		details.Summary = "no prerequisites"
	} else {
		details.Summary = "requires " + b.Prerequisite.Describe(c)
		if b.Prerequisite.Op == OpAnd {
			for _, arg := range b.Prerequisite.Args {
				details.Conditions = append(details.Conditions, arg.Describe(c))
			}
		} else {
			details.Conditions = append(details.Conditions, b.Prerequisite.Describe(c))
		}
	}

	for _, leaf := range b.Prerequisite.Leaves() {
		details.Predicates = append(details.Predicates, Predicate{
			Expression:  leaf,
			Description: leaf.Describe(c),
		})
	}

	for _, id := range b.Incompatible {
		other, _ := c.Boon(id)
		details.Incompatible = append(details.Incompatible, BoonRef{ID: id, Name: other.Name})
	}

	return details, nil
}
