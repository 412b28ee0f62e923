package service_test

import (
	"context"
	"testing"

	"github.com/dom/hades-build-planner/internal/catalog"
	"github.com/dom/hades-build-planner/internal/service"
	"github.com/dom/hades-build-planner/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCatalogService(t *testing.T) *service.CatalogService {
	t.Helper()
	return service.NewCatalogService(testutil.LoadSampleCatalog(t))
}

func TestCatalogService_Lookups(t *testing.T) {
	svc := newCatalogService(t)
	ctx := context.Background()

	god, err := svc.GetGod(ctx, testutil.GodPoseidon)
	require.NoError(t, err)
	assert.Equal(t, "Poseidon", god.Name)

	_, err = svc.GetGod(ctx, 404)
	assert.ErrorIs(t, err, catalog.ErrNotFound)

	weapon, err := svc.GetWeapon(ctx, testutil.WeaponStaff)
	require.NoError(t, err)
	assert.Len(t, weapon.Aspects, 2)

	_, err = svc.GetWeapon(ctx, 404)
	var notFound *catalog.NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "weapon", notFound.Kind)

	boon, err := svc.GetBoon(ctx, testutil.BoonZeusHeraDuo)
	require.NoError(t, err)
	assert.Equal(t, catalog.CategoryDuo, boon.Category)

	assert.Len(t, svc.ListGods(ctx), 3)
	assert.Len(t, svc.ListWeapons(ctx), 2)
	assert.Len(t, svc.ListFamiliars(ctx), 1)
}

func TestCatalogService_ListBoons(t *testing.T) {
	svc := newCatalogService(t)
	ctx := context.Background()

	category := func(c catalog.Category) *catalog.Category { return &c }
	slot := func(s catalog.Slot) *catalog.Slot { return &s }
	god := func(id int) *int { return &id }

	tests := []struct {
		name    string
		filter  service.BoonFilter
		wantIDs []int
		wantErr error
		wantMsg string
	}{
		{
			name:    "legendary category",
			filter:  service.BoonFilter{Category: category(catalog.CategoryLegendary)},
			wantIDs: []int{testutil.BoonZeusLegendary},
		},
		{
			name:    "god and slot",
			filter:  service.BoonFilter{GodID: god(testutil.GodHera), Slot: slot(catalog.SlotCast)},
			wantIDs: []int{testutil.BoonHeraCast},
		},
		{
			name:    "slot and category",
			filter:  service.BoonFilter{Slot: slot(catalog.SlotAttack), Category: category(catalog.CategoryCore)},
			wantIDs: []int{testutil.BoonZeusAttack, testutil.BoonHeraAttack},
		},
		{
			name:    "empty result is not nil",
			filter:  service.BoonFilter{Slot: slot(catalog.SlotMagick)},
			wantIDs: []int{},
		},
		{
			name:    "unknown category",
			filter:  service.BoonFilter{Category: category("epic")},
			wantErr: service.ErrInvalidCategory,
			wantMsg: "[core duo legendary chaos hammer infusion]",
		},
		{
			name:    "slot none cannot be filtered on",
			filter:  service.BoonFilter{Slot: slot(catalog.SlotNone)},
			wantErr: service.ErrInvalidSlot,
		},
		{
			name:    "unknown god",
			filter:  service.BoonFilter{GodID: god(12)},
			wantErr: catalog.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			boons, err := svc.ListBoons(ctx, tt.filter)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				if tt.wantMsg != "" {
					assert.Contains(t, err.Error(), tt.wantMsg)
				}
				return
			}

			require.NoError(t, err)
			ids := make([]int, len(boons))
			for i, b := range boons {
				ids[i] = b.ID
			}
			assert.Equal(t, tt.wantIDs, ids)
		})
	}
}

func TestCatalogService_GetAvailableBoons(t *testing.T) {
	svc := newCatalogService(t)
	ctx := context.Background()

	avail, err := svc.GetAvailableBoons(ctx, testutil.StaffSelection(testutil.BoonZeusAttack, testutil.BoonZeusSpecial))
	require.NoError(t, err)
	assert.Contains(t, testutil.AvailableIDs(avail), testutil.BoonZeusLegendary)
	assert.Contains(t, testutil.BlockedIDs(avail), testutil.BoonHeraAttack)

	_, err = svc.GetAvailableBoons(ctx, testutil.StaffSelection(99999))
	var verrs catalog.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.True(t, verrs.HasCode(catalog.CodeUnknownBoon))
}

func TestCatalogService_CanSelect(t *testing.T) {
	svc := newCatalogService(t)
	ctx := context.Background()

	ok, err := svc.CanSelect(ctx, testutil.StaffSelection(testutil.BoonHeraAttack), testutil.BoonZeusAttack)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = svc.CanSelect(ctx, testutil.StaffSelection(), testutil.BoonStaffHammer)
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = svc.CanSelect(ctx, testutil.StaffSelection(), 7)
	assert.ErrorIs(t, err, catalog.ErrNotFound)
}

func TestCatalogService_ValidateBuild(t *testing.T) {
	svc := newCatalogService(t)
	ctx := context.Background()

	valid := svc.ValidateBuild(ctx, testutil.StaffSelection(testutil.BoonZeusAttack))
	assert.True(t, valid.Valid)
	assert.NotNil(t, valid.Errors)
	assert.Empty(t, valid.Errors)

	invalid := svc.ValidateBuild(ctx, testutil.StaffSelection(testutil.BoonChaosBlessing, testutil.BoonChaosCurse))
	assert.False(t, invalid.Valid)
	require.Len(t, invalid.Errors, 1)
	assert.Equal(t, catalog.CodeIncompatible, invalid.Errors[0].Code)
	assert.Equal(t, []int{testutil.BoonChaosBlessing, testutil.BoonChaosCurse}, invalid.Errors[0].BoonIDs)
}

func TestCatalogService_GetPrerequisiteDetails(t *testing.T) {
	svc := newCatalogService(t)
	ctx := context.Background()

	details, err := svc.GetPrerequisiteDetails(ctx, testutil.BoonStaffHammer)
	require.NoError(t, err)
	assert.Equal(t, "requires Witch's Staff equipped", details.Summary)
	require.Len(t, details.Predicates, 1)
	assert.Equal(t, catalog.OpWeapon, details.Predicates[0].Expression.Op)

	details, err = svc.GetPrerequisiteDetails(ctx, testutil.BoonChaosCurse)
	require.NoError(t, err)
	require.Len(t, details.Incompatible, 1)
	assert.Equal(t, "Chaos Strike", details.Incompatible[0].Name)

	_, err = svc.GetPrerequisiteDetails(ctx, 1)
	assert.ErrorIs(t, err, catalog.ErrNotFound)
}
