package testutil

import (
	"testing"

	"github.com/dom/hades-build-planner/internal/catalog"
)

// Ids of the sample catalog
const (
	GodZeus     = 1
	GodHera     = 2
	GodPoseidon = 3

	WeaponStaff  = 1
	WeaponBlades = 2

	AspectStaffMelinoe  = 11
	AspectStaffCirce    = 12
	AspectBladesMelinoe = 21

	FamiliarFrinos = 1

	BoonZeusAttack     = 101
	BoonZeusSpecial    = 102
	BoonHeraAttack     = 201
	BoonHeraCast       = 202
	BoonPoseidonSprint = 301
	BoonZeusHeraDuo    = 1001
	BoonZeusLegendary  = 1101
	BoonChaosBlessing  = 1301
	BoonChaosCurse     = 1302
	BoonStaffHammer    = 1401
)

func intPtr(v int) *int {
	return &v
}

// SampleCatalog returns a small catalog touching every rule of the engine:
// a slot shared by two gods, a duo, a legendary, an incompatible pair, a
// stackable boon and a weapon-bound hammer.
func SampleCatalog() catalog.RawData {
	return catalog.RawData{
		Gods: []catalog.God{
			{ID: GodZeus, Name: "Zeus"},
			{ID: GodHera, Name: "Hera"},
			{ID: GodPoseidon, Name: "Poseidon"},
		},
		Weapons: []catalog.Weapon{
			{ID: WeaponStaff, Name: "Witch's Staff"},
			{ID: WeaponBlades, Name: "Sister Blades"},
		},
		Aspects: []catalog.Aspect{
			{ID: AspectStaffMelinoe, WeaponID: WeaponStaff, Name: "Aspect of Melinoë (Staff)"},
			{ID: AspectStaffCirce, WeaponID: WeaponStaff, Name: "Aspect of Circe"},
			{ID: AspectBladesMelinoe, WeaponID: WeaponBlades, Name: "Aspect of Melinoë (Blades)"},
		},
		Familiars: []catalog.Familiar{
			{ID: FamiliarFrinos, Name: "Frinos"},
		},
		Boons: []catalog.Boon{
			{ID: BoonZeusAttack, Name: "Heaven Strike", GodID: intPtr(GodZeus), Category: catalog.CategoryCore, Slot: catalog.SlotAttack},
			{ID: BoonZeusSpecial, Name: "Heaven Flourish", GodID: intPtr(GodZeus), Category: catalog.CategoryCore, Slot: catalog.SlotSpecial},
			{ID: BoonHeraAttack, Name: "Sworn Strike", GodID: intPtr(GodHera), Category: catalog.CategoryCore, Slot: catalog.SlotAttack},
			{ID: BoonHeraCast, Name: "Engagement Ring", GodID: intPtr(GodHera), Category: catalog.CategoryCore, Slot: catalog.SlotCast},
			{ID: BoonPoseidonSprint, Name: "Breaker Sprint", GodID: intPtr(GodPoseidon), Category: catalog.CategoryCore, Slot: catalog.SlotSprint},
			{
				ID:           BoonZeusHeraDuo,
				Name:         "King's Ransom",
				Category:     catalog.CategoryDuo,
				Prerequisite: catalog.And(catalog.AtLeastOneFrom(GodZeus), catalog.AtLeastOneFrom(GodHera)),
			},
			{
				ID:           BoonZeusLegendary,
				Name:         "Fated Strike",
				GodID:        intPtr(GodZeus),
				Category:     catalog.CategoryLegendary,
				Prerequisite: catalog.AtLeastNFrom(GodZeus, 2),
			},
			{ID: BoonChaosBlessing, Name: "Chaos Strike", Category: catalog.CategoryChaos, Incompatible: []int{BoonChaosCurse}, MaxCount: 3},
			{ID: BoonChaosCurse, Name: "Chaos Pain", Category: catalog.CategoryChaos},
			{
				ID:           BoonStaffHammer,
				Name:         "Double Tap",
				Category:     catalog.CategoryHammer,
				Prerequisite: catalog.WeaponEquipped(WeaponStaff),
			},
		},
	}
}

// LoadSampleCatalog builds the in-memory catalog from SampleCatalog
func LoadSampleCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()

	cat, err := catalog.Load(SampleCatalog())
	if err != nil {
		t.Fatalf("failed to load sample catalog: %v", err)
	}
	return cat
}

// StaffSelection is a selection with the staff equipped and boonIDs taken
func StaffSelection(boonIDs ...int) catalog.Selection {
	return catalog.Selection{
		WeaponID: WeaponStaff,
		AspectID: AspectStaffMelinoe,
		BoonIDs:  append([]int{}, boonIDs...),
	}
}
