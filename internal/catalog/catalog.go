// Package catalog holds the immutable game reference data (gods, boons,
// weapons, aspects, familiars) and the rule engine that decides which boons a
// partially built loadout may take next.
//
// A Catalog is built once with Load and never mutated afterwards, so a single
// instance can be shared by every request goroutine without locking. Nothing in
// this package performs I/O.
package catalog

import (
	"slices"
	"sort"
)

// Category groups boons by how they are unlocked
type Category string

const (
	CategoryCore      Category = "core"
	CategoryDuo       Category = "duo"
	CategoryLegendary Category = "legendary"
	CategoryChaos     Category = "chaos"
	CategoryHammer    Category = "hammer"
	CategoryInfusion  Category = "infusion"
)

// AllCategories contains all valid categories in display order
var AllCategories = []Category{
	CategoryCore, CategoryDuo, CategoryLegendary, CategoryChaos, CategoryHammer, CategoryInfusion,
}

// IsValid checks if a category is known
func (c Category) IsValid() bool {
	return slices.Contains(AllCategories, c)
}

// requiresPrerequisite reports whether boons of this category can never be
// offered without some other boon already taken.
func (c Category) requiresPrerequisite() bool {
	return c == CategoryDuo || c == CategoryLegendary
}

// Slot is a loadout position. SlotNone means the boon stacks independently.
type Slot string

const (
	SlotNone    Slot = ""
	SlotAttack  Slot = "attack"
	SlotSpecial Slot = "special"
	SlotCast    Slot = "cast"
	SlotDash    Slot = "dash"
	SlotCall    Slot = "call"
	SlotSprint  Slot = "sprint"
	SlotMagick  Slot = "magick"
)

// AllSlots contains all occupiable slots in loadout order
var AllSlots = []Slot{SlotAttack, SlotSpecial, SlotCast, SlotDash, SlotCall, SlotSprint, SlotMagick}

// IsValid checks if a slot is known. SlotNone is valid.
func (s Slot) IsValid() bool {
	switch s {
	case SlotNone, SlotAttack, SlotSpecial, SlotCast, SlotDash, SlotCall, SlotSprint, SlotMagick:
		return true
	}
	return false
}

type God struct {
	ID   int    `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
}

type Weapon struct {
	ID   int    `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
}

// Aspect is a variant form of a weapon. A build equips exactly one.
type Aspect struct {
	ID       int    `json:"id" yaml:"id"`
	WeaponID int    `json:"weaponId" yaml:"weapon_id"`
	Name     string `json:"name" yaml:"name"`
}

type Familiar struct {
	ID    int    `json:"id" yaml:"id"`
	Name  string `json:"name" yaml:"name"`
	GodID *int   `json:"godId,omitempty" yaml:"god_id,omitempty"`
}

// Boon is a selectable ability. GodID is nil for boons any god can offer.
//
// MaxCount is how many copies of the boon a selection may hold (0 is read as
// 1). SlotExempt boons never take part in slot exclusivity, neither blocking
// nor being blocked by other boons sharing their slot.
type Boon struct {
	ID           int        `json:"id" yaml:"id"`
	Name         string     `json:"name" yaml:"name"`
	Description  string     `json:"description,omitempty" yaml:"description,omitempty"`
	GodID        *int       `json:"godId,omitempty" yaml:"god_id,omitempty"`
	Category     Category   `json:"category" yaml:"category"`
	Slot         Slot       `json:"slot,omitempty" yaml:"slot,omitempty"`
	Prerequisite Expression `json:"prerequisite" yaml:"prerequisite,omitempty"`
	Incompatible []int      `json:"incompatible,omitempty" yaml:"incompatible,omitempty"`
	MaxCount     int        `json:"maxCount" yaml:"max_count,omitempty"`
	SlotExempt   bool       `json:"slotExempt,omitempty" yaml:"slot_exempt,omitempty"`
}

// exclusive reports whether the boon competes for its slot
func (b Boon) exclusive() bool {
	return b.Slot != SlotNone && !b.SlotExempt
}

// RawData is the unvalidated input to Load, as produced by the seed file or
// the database.
type RawData struct {
	Gods      []God      `json:"gods" yaml:"gods"`
	Weapons   []Weapon   `json:"weapons" yaml:"weapons"`
	Aspects   []Aspect   `json:"aspects" yaml:"aspects"`
	Familiars []Familiar `json:"familiars" yaml:"familiars"`
	Boons     []Boon     `json:"boons" yaml:"boons"`
}

// Catalog is the validated, read-only snapshot. Slices returned by its
// methods are shared and must not be modified.
type Catalog struct {
	gods      []God
	weapons   []Weapon
	aspects   []Aspect
	familiars []Familiar
	boons     []Boon

	godIndex      map[int]int
	weaponIndex   map[int]int
	aspectIndex   map[int]int
	familiarIndex map[int]int
	boonIndex     map[int]int

	boonsByGod      map[int][]Boon
	boonsByCategory map[Category][]Boon
	boonsBySlot     map[Slot][]Boon
	aspectsByWeapon map[int][]Aspect

	incompatible map[int]map[int]bool
}

// Load validates raw and builds a Catalog. Any dangling reference or
// impossible combination is reported in a single *IntegrityError.
func Load(raw RawData) (*Catalog, error) {
	if err := checkIntegrity(raw); err != nil {
		return nil, err
	}

	c := &Catalog{
		gods:            append([]God(nil), raw.Gods...),
		weapons:         append([]Weapon(nil), raw.Weapons...),
		aspects:         append([]Aspect(nil), raw.Aspects...),
		familiars:       append([]Familiar(nil), raw.Familiars...),
		boons:           make([]Boon, len(raw.Boons)),
		godIndex:        make(map[int]int, len(raw.Gods)),
		weaponIndex:     make(map[int]int, len(raw.Weapons)),
		aspectIndex:     make(map[int]int, len(raw.Aspects)),
		familiarIndex:   make(map[int]int, len(raw.Familiars)),
		boonIndex:       make(map[int]int, len(raw.Boons)),
		boonsByGod:      make(map[int][]Boon),
		boonsByCategory: make(map[Category][]Boon),
		boonsBySlot:     make(map[Slot][]Boon),
		aspectsByWeapon: make(map[int][]Aspect),
		incompatible:    make(map[int]map[int]bool),
	}

	sort.Slice(c.gods, func(i, j int) bool { return c.gods[i].ID < c.gods[j].ID })
	sort.Slice(c.weapons, func(i, j int) bool { return c.weapons[i].ID < c.weapons[j].ID })
	sort.Slice(c.aspects, func(i, j int) bool { return c.aspects[i].ID < c.aspects[j].ID })
	sort.Slice(c.familiars, func(i, j int) bool { return c.familiars[i].ID < c.familiars[j].ID })

	// Incompatibility is declared on either side but enforced on both.
	for _, b := range raw.Boons {
		for _, other := range b.Incompatible {
			c.markIncompatible(b.ID, other)
		}
	}

	copy(c.boons, raw.Boons)
	sort.Slice(c.boons, func(i, j int) bool { return c.boons[i].ID < c.boons[j].ID })
	for i := range c.boons {
		b := &c.boons[i]
		if b.MaxCount < 1 {
			b.MaxCount = 1
		}
		b.Incompatible = c.incompatibleWith(b.ID)
	}

	for i, g := range c.gods {
		c.godIndex[g.ID] = i
	}
	for i, w := range c.weapons {
		c.weaponIndex[w.ID] = i
	}
	for i, a := range c.aspects {
		c.aspectIndex[a.ID] = i
		c.aspectsByWeapon[a.WeaponID] = append(c.aspectsByWeapon[a.WeaponID], a)
	}
	for i, f := range c.familiars {
		c.familiarIndex[f.ID] = i
	}
	for i, b := range c.boons {
		c.boonIndex[b.ID] = i
		if b.GodID != nil {
			c.boonsByGod[*b.GodID] = append(c.boonsByGod[*b.GodID], b)
		}
		c.boonsByCategory[b.Category] = append(c.boonsByCategory[b.Category], b)
		if b.Slot != SlotNone {
			c.boonsBySlot[b.Slot] = append(c.boonsBySlot[b.Slot], b)
		}
	}

	return c, nil
}

func (c *Catalog) markIncompatible(a, b int) {
	if c.incompatible[a] == nil {
		c.incompatible[a] = make(map[int]bool)
	}
	if c.incompatible[b] == nil {
		c.incompatible[b] = make(map[int]bool)
	}
	c.incompatible[a][b] = true
	c.incompatible[b][a] = true
}

func (c *Catalog) incompatibleWith(id int) []int {
	set := c.incompatible[id]
	if len(set) == 0 {
		return nil
	}
	ids := make([]int, 0, len(set))
	for other := range set {
		ids = append(ids, other)
	}
	sort.Ints(ids)
	return ids
}

// Incompatible reports whether two boons are mutually exclusive
func (c *Catalog) Incompatible(a, b int) bool {
	return c.incompatible[a][b]
}

func (c *Catalog) Gods() []God {
	return c.gods
}

func (c *Catalog) Weapons() []Weapon {
	return c.weapons
}

func (c *Catalog) Aspects() []Aspect {
	return c.aspects
}

func (c *Catalog) Familiars() []Familiar {
	return c.familiars
}

// Boons returns every boon ordered by id
func (c *Catalog) Boons() []Boon {
	return c.boons
}

func (c *Catalog) BoonCount() int {
	return len(c.boons)
}

// Raw returns the normalized data the catalog was built from, suitable for
// persisting back to storage.
func (c *Catalog) Raw() RawData {
	return RawData{
		Gods:      c.gods,
		Weapons:   c.weapons,
		Aspects:   c.aspects,
		Familiars: c.familiars,
		Boons:     c.boons,
	}
}

func (c *Catalog) BoonsByGod(godID int) []Boon {
	return c.boonsByGod[godID]
}

func (c *Catalog) BoonsByCategory(cat Category) []Boon {
	return c.boonsByCategory[cat]
}

func (c *Catalog) BoonsBySlot(slot Slot) []Boon {
	return c.boonsBySlot[slot]
}

func (c *Catalog) AspectsByWeapon(weaponID int) []Aspect {
	return c.aspectsByWeapon[weaponID]
}

func (c *Catalog) God(id int) (God, bool) {
	i, ok := c.godIndex[id]
	if !ok {
		return God{}, false
	}
	return c.gods[i], true
}

func (c *Catalog) Weapon(id int) (Weapon, bool) {
	i, ok := c.weaponIndex[id]
	if !ok {
		return Weapon{}, false
	}
	return c.weapons[i], true
}

func (c *Catalog) Aspect(id int) (Aspect, bool) {
	i, ok := c.aspectIndex[id]
	if !ok {
		return Aspect{}, false
	}
	return c.aspects[i], true
}

func (c *Catalog) Familiar(id int) (Familiar, bool) {
	i, ok := c.familiarIndex[id]
	if !ok {
		return Familiar{}, false
	}
	return c.familiars[i], true
}

func (c *Catalog) Boon(id int) (Boon, bool) {
	i, ok := c.boonIndex[id]
	if !ok {
		return Boon{}, false
	}
	return c.boons[i], true
}
