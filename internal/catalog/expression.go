package catalog

import (
	"fmt"
	"strings"
)

// Op tags an Expression node
type Op string

const (
	// OpAlways is the empty expression; it holds for every selection.
	OpAlways Op = ""
	OpBoon   Op = "boon"
	OpGod    Op = "god"
	OpAspect Op = "aspect"
	OpWeapon Op = "weapon"
	OpAnd    Op = "and"
	OpOr     Op = "or"
)

// Expression is a prerequisite condition over a selection. It is a closed
// tagged union: ID is the boon, god, aspect or weapon a leaf refers to, Count
// is the minimum number of boons for OpGod (0 is read as 1), and Args holds the
// operands of OpAnd and OpOr.
type Expression struct {
	Op    Op           `json:"op,omitempty" yaml:"op,omitempty"`
	ID    int          `json:"id,omitempty" yaml:"id,omitempty"`
	Count int          `json:"count,omitempty" yaml:"count,omitempty"`
	Args  []Expression `json:"args,omitempty" yaml:"args,omitempty"`
}

func Always() Expression {
	return Expression{}
}

func BoonSelected(boonID int) Expression {
	return Expression{Op: OpBoon, ID: boonID}
}

func AtLeastOneFrom(godID int) Expression {
	return Expression{Op: OpGod, ID: godID, Count: 1}
}

func AtLeastNFrom(godID, n int) Expression {
	return Expression{Op: OpGod, ID: godID, Count: n}
}

func AspectEquipped(aspectID int) Expression {
	return Expression{Op: OpAspect, ID: aspectID}
}

func WeaponEquipped(weaponID int) Expression {
	return Expression{Op: OpWeapon, ID: weaponID}
}

func And(args ...Expression) Expression {
	return Expression{Op: OpAnd, Args: args}
}

func Or(args ...Expression) Expression {
	return Expression{Op: OpOr, Args: args}
}

// IsEmpty reports whether the expression places no condition at all
func (e Expression) IsEmpty() bool {
	return e.Op == OpAlways
}

func (e Expression) isLeaf() bool {
	return e.Op != OpAnd && e.Op != OpOr
}

func (e Expression) minimum() int {
	if e.Count < 1 {
		return 1
	}
	return e.Count
}

// state is the view of a selection that predicates are evaluated against
type state struct {
	boons    map[int]int
	gods     map[int]int
	aspectID int
	weaponID int
}

func newState(c *Catalog, sel Selection) *state {
	st := &state{
		boons:    sel.Counts(),
		gods:     make(map[int]int),
		aspectID: sel.AspectID,
		weaponID: sel.WeaponID,
	}
	if st.weaponID == 0 && sel.AspectID != 0 {
		if a, ok := c.Aspect(sel.AspectID); ok {
			st.weaponID = a.WeaponID
		}
	}
	for id := range st.boons {
		if b, ok := c.Boon(id); ok && b.GodID != nil {
			st.gods[*b.GodID]++
		}
	}
	return st
}

// without returns the state as it was before b was taken
func (st *state) without(b Boon) *state {
	next := &state{
		boons:    make(map[int]int, len(st.boons)),
		gods:     make(map[int]int, len(st.gods)),
		aspectID: st.aspectID,
		weaponID: st.weaponID,
	}
	for id, n := range st.boons {
		if id != b.ID {
			next.boons[id] = n
		}
	}
	for id, n := range st.gods {
		next.gods[id] = n
	}
	if _, ok := st.boons[b.ID]; ok && b.GodID != nil {
		next.gods[*b.GodID]--
	}
	return next
}

// holds evaluates a single leaf predicate
func (e Expression) holds(st *state) bool {
	switch e.Op {
	case OpAlways:
		return true
	case OpBoon:
		return st.boons[e.ID] > 0
	case OpGod:
		return st.gods[e.ID] >= e.minimum()
	case OpAspect:
		return st.aspectID == e.ID
	case OpWeapon:
		return st.weaponID == e.ID
	}
	return false
}

// unmet returns the part of e that is still false for st, pruned so that
// satisfied operands of an And are dropped. The second result is false when e
// holds.
func (e Expression) unmet(st *state) (Expression, bool) {
	switch e.Op {
	case OpAnd:
		var missing []Expression
		for _, arg := range e.Args {
			if m, ok := arg.unmet(st); ok {
				missing = append(missing, m)
			}
		}
		switch len(missing) {
		case 0:
			return Expression{}, false
		case 1:
			return missing[0], true
		}
		return And(missing...), true
	case OpOr:
		missing := make([]Expression, 0, len(e.Args))
		for _, arg := range e.Args {
			m, ok := arg.unmet(st)
			if !ok {
				return Expression{}, false
			}
			missing = append(missing, m)
		}
		if len(missing) == 1 {
			return missing[0], true
		}
		return Or(missing...), true
	}
	if e.holds(st) {
		return Expression{}, false
	}
	return e, true
}

func (e Expression) eval(st *state) bool {
	_, blocked := e.unmet(st)
	return !blocked
}

// Evaluate reports whether e holds for sel
func (e Expression) Evaluate(c *Catalog, sel Selection) bool {
	return e.eval(newState(c, sel))
}

// Leaves returns every leaf predicate in e, depth first. The empty
// expression has none.
func (e Expression) Leaves() []Expression {
	if e.IsEmpty() {
		return nil
	}
	if e.isLeaf() {
		return []Expression{e}
	}
	var out []Expression
	for _, arg := range e.Args {
		out = append(out, arg.Leaves()...)
	}
	return out
}

// Describe renders e as a short English phrase using catalog names
func (e Expression) Describe(c *Catalog) string {
	switch e.Op {
	case OpAlways:
		return "nothing"
	case OpBoon:
		if b, ok := c.Boon(e.ID); ok {
			return b.Name
		}
		return fmt.Sprintf("boon #%d", e.ID)
	case OpGod:
		name := fmt.Sprintf("god #%d", e.ID)
		if g, ok := c.God(e.ID); ok {
			name = g.Name
		}
		if n := e.minimum(); n > 1 {
			return fmt.Sprintf("%d boons from %s", n, name)
		}
		return "one boon from " + name
	case OpAspect:
		if a, ok := c.Aspect(e.ID); ok {
			return a.Name + " equipped"
		}
		return fmt.Sprintf("aspect #%d equipped", e.ID)
	case OpWeapon:
		if w, ok := c.Weapon(e.ID); ok {
			return w.Name + " equipped"
		}
		return fmt.Sprintf("weapon #%d equipped", e.ID)
	case OpAnd:
		return joinPhrases(describeArgs(c, e.Args), "and")
	case OpOr:
		parts := describeArgs(c, e.Args)
		if len(parts) == 2 {
			return "either " + parts[0] + " or " + parts[1]
		}
		return "one of " + joinPhrases(parts, "or")
	}
	return string(e.Op)
}

func describeArgs(c *Catalog, args []Expression) []string {
	parts := make([]string, len(args))
	for i, arg := range args {
		parts[i] = arg.Describe(c)
		if !arg.isLeaf() {
			parts[i] = "(" + parts[i] + ")"
		}
	}
	return parts
}

func joinPhrases(parts []string, conj string) string {
	switch len(parts) {
	case 0:
		return ""
	case 1:
		return parts[0]
	}
	return strings.Join(parts[:len(parts)-1], ", ") + " " + conj + " " + parts[len(parts)-1]
}
