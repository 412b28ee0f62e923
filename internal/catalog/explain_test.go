package catalog_test

import (
	"testing"

	"github.com/dom/hades-build-planner/internal/catalog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExplainPrerequisites(t *testing.T) {
	c := testCatalog(t)

	tests := []struct {
		name       string
		boonID     int
		summary    string
		conditions []string
	}{
		{
			name:       "duo",
			boonID:     boonSeaStorm,
			summary:    "requires one boon from Zeus and one boon from Poseidon",
			conditions: []string{"one boon from Zeus", "one boon from Poseidon"},
		},
		{
			name:       "legendary with alternatives",
			boonID:     boonSplittingBolt,
			summary:    "requires either Lightning Strike or Thunder Flourish",
			conditions: []string{"either Lightning Strike or Thunder Flourish"},
		},
		{
			name:       "god count",
			boonID:     boonDivineProtection,
			summary:    "requires 2 boons from Athena",
			conditions: []string{"2 boons from Athena"},
		},
		{
			name:       "aspect",
			boonID:     boonNemesisCrit,
			summary:    "requires Aspect of Nemesis equipped",
			conditions: []string{"Aspect of Nemesis equipped"},
		},
		{
			name:       "no prerequisite",
			boonID:     boonLightningStrike,
			summary:    "no prerequisites",
			conditions: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			details, err := catalog.ExplainPrerequisites(c, tt.boonID)
			require.NoError(t, err)
			assert.Equal(t, tt.boonID, details.Boon.ID)
			assert.Equal(t, tt.summary, details.Summary)
			assert.Equal(t, tt.conditions, details.Conditions)
		})
	}

	t.Run("SlotCategoryAndIncompatible", func(t *testing.T) {
		details, err := catalog.ExplainPrerequisites(c, boonBoilingBlood)
		require.NoError(t, err)
		assert.Equal(t, catalog.CategoryChaos, details.Category)
		assert.Equal(t, catalog.SlotNone, details.Slot)
		assert.Equal(t, 1, details.MaxCount)
		assert.Equal(t, []catalog.BoonRef{{ID: boonSoulTonic, Name: "Soul Tonic"}}, details.Incompatible)
	})

	t.Run("NestedExpression", func(t *testing.T) {
		raw := testRaw()
		raw.Boons = append(raw.Boons, catalog.Boon{
			ID: 960, Name: "Blade Storm", Category: catalog.CategoryDuo,
			Prerequisite: catalog.And(
				catalog.AtLeastOneFrom(godZeus),
				catalog.Or(
					catalog.BoonSelected(boonTempestStrike),
					catalog.BoonSelected(boonTempestFlourish),
					catalog.AtLeastNFrom(godAthena, 2),
				),
				catalog.WeaponEquipped(weaponBlade),
			),
		})
		cat, err := catalog.Load(raw)
		require.NoError(t, err)

		details, err := catalog.ExplainPrerequisites(cat, 960)
		require.NoError(t, err)
		assert.Equal(t,
			"requires one boon from Zeus, (one of Tempest Strike, Tempest Flourish or 2 boons from Athena) and Stygian Blade equipped",
			details.Summary)
		assert.Len(t, details.Conditions, 3)
		assert.Len(t, details.Predicates, 5)
		assert.Equal(t, "Stygian Blade equipped", details.Predicates[4].Description)
	})

	t.Run("UnknownBoon", func(t *testing.T) {
		_, err := catalog.ExplainPrerequisites(c, 999)
		assert.ErrorIs(t, err, catalog.ErrNotFound)
	})
}

// The explainer must describe exactly the predicates the resolver evaluates.
func TestExplainPrerequisites_MatchesResolver(t *testing.T) {
	c := testCatalog(t)

	for _, b := range c.Boons() {
		details, err := catalog.ExplainPrerequisites(c, b.ID)
		require.NoError(t, err)

		leaves := b.Prerequisite.Leaves()
		require.Len(t, details.Predicates, len(leaves))
		for i, p := range details.Predicates {
			assert.Equal(t, leaves[i], p.Expression)
		}
	}

	for _, sel := range propertySelections() {
		a := compute(t, c, sel)
		for _, blocked := range a.Blocked {
			if blocked.Reason.MissingPrerequisite == nil {
				continue
			}
			details, err := catalog.ExplainPrerequisites(c, blocked.Boon.ID)
			require.NoError(t, err)

			explained := make([]catalog.Expression, len(details.Predicates))
			for i, p := range details.Predicates {
				explained[i] = p.Expression
			}
			for _, leaf := range blocked.Reason.MissingPrerequisite.Leaves() {
				assert.Contains(t, explained, leaf)
			}
		}
	}
}
