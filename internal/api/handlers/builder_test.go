package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/dom/hades-build-planner/internal/api/handlers"
	"github.com/dom/hades-build-planner/internal/catalog"
	"github.com/dom/hades-build-planner/internal/service"
	"github.com/dom/hades-build-planner/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func postJSON(t *testing.T, url string, body interface{}) *http.Response {
	t.Helper()

	data, err := json.Marshal(body)
	require.NoError(t, err)

	resp, err := http.Post(url, "application/json", bytes.NewBuffer(data))
	require.NoError(t, err)
	return resp
}

func intPtr(v int) *int {
	return &v
}

func staffRequest(boonIDs ...int) handlers.SelectionRequest {
	return handlers.SelectionRequest{
		WeaponID: testutil.WeaponStaff,
		AspectID: testutil.AspectStaffMelinoe,
		BoonIDs:  boonIDs,
	}
}

func TestBuilderHandler_Available(t *testing.T) {
	ts := testutil.NewTestServer(t)

	tests := []struct {
		name              string
		request           interface{}
		expectedStatus    int
		expectedSelected  []int
		expectedAvailable []int
		expectedCodes     []string
		checkBlocked      func(*testing.T, []catalog.BlockedBoon)
	}{
		{
			name:             "empty selection offers every unconditional boon",
			request:          staffRequest(),
			expectedStatus:   http.StatusOK,
			expectedSelected: []int{},
			expectedAvailable: []int{
				testutil.BoonZeusAttack, testutil.BoonZeusSpecial, testutil.BoonHeraAttack,
				testutil.BoonHeraCast, testutil.BoonPoseidonSprint, testutil.BoonChaosBlessing,
				testutil.BoonChaosCurse, testutil.BoonStaffHammer,
			},
			checkBlocked: func(t *testing.T, blocked []catalog.BlockedBoon) {
				require.Len(t, blocked, 2)
				assert.Equal(t, testutil.BoonZeusHeraDuo, blocked[0].Boon.ID)
				assert.NotNil(t, blocked[0].Reason.MissingPrerequisite)
				assert.Nil(t, blocked[0].Reason.SlotOccupiedBy)
			},
		},
		{
			name:             "taken slot blocks the other attack boon",
			request:          staffRequest(testutil.BoonZeusAttack),
			expectedStatus:   http.StatusOK,
			expectedSelected: []int{testutil.BoonZeusAttack},
			expectedAvailable: []int{
				testutil.BoonZeusSpecial, testutil.BoonHeraCast, testutil.BoonPoseidonSprint,
				testutil.BoonChaosBlessing, testutil.BoonChaosCurse, testutil.BoonStaffHammer,
			},
			checkBlocked: func(t *testing.T, blocked []catalog.BlockedBoon) {
				require.NotEmpty(t, blocked)
				assert.Equal(t, testutil.BoonHeraAttack, blocked[0].Boon.ID)
				require.NotNil(t, blocked[0].Reason.SlotOccupiedBy)
				assert.Equal(t, testutil.BoonZeusAttack, *blocked[0].Reason.SlotOccupiedBy)
			},
		},
		{
			name:             "two gods unlock their duo",
			request:          staffRequest(testutil.BoonZeusAttack, testutil.BoonHeraCast),
			expectedStatus:   http.StatusOK,
			expectedSelected: []int{testutil.BoonZeusAttack, testutil.BoonHeraCast},
			expectedAvailable: []int{
				testutil.BoonZeusSpecial, testutil.BoonPoseidonSprint, testutil.BoonZeusHeraDuo,
				testutil.BoonChaosBlessing, testutil.BoonChaosCurse, testutil.BoonStaffHammer,
			},
		},
		{
			name:             "incompatible boon is blocked",
			request:          staffRequest(testutil.BoonChaosBlessing),
			expectedStatus:   http.StatusOK,
			expectedSelected: []int{testutil.BoonChaosBlessing},
			checkBlocked: func(t *testing.T, blocked []catalog.BlockedBoon) {
				var found bool
				for _, b := range blocked {
					if b.Boon.ID == testutil.BoonChaosCurse {
						found = true
						assert.Equal(t, []int{testutil.BoonChaosBlessing}, b.Reason.ConflictsWith)
					}
				}
				assert.True(t, found, "chaos curse should be blocked")
			},
		},
		{
			name:           "unknown boon id",
			request:        staffRequest(555),
			expectedStatus: http.StatusUnprocessableEntity,
			expectedCodes:  []string{catalog.CodeUnknownBoon},
		},
		{
			name:           "zero boon id",
			request:        staffRequest(0),
			expectedStatus: http.StatusUnprocessableEntity,
			expectedCodes:  []string{catalog.CodeUnknownBoon},
		},
		{
			name: "negative ids",
			request: handlers.SelectionRequest{
				WeaponID: -2,
				AspectID: testutil.AspectStaffMelinoe,
				BoonIDs:  []int{-1},
			},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedCodes:  []string{catalog.CodeUnknownBoon, catalog.CodeUnknownWeapon},
		},
		{
			name:           "malformed body",
			request:        "not a selection",
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := postJSON(t, ts.APIURL("/builder/available"), tt.request)
			defer resp.Body.Close()

			require.Equal(t, tt.expectedStatus, resp.StatusCode)
			if tt.expectedCodes != nil {
				testutil.AssertValidationCodes(t, resp, tt.expectedCodes...)
				return
			}
			if tt.expectedStatus != http.StatusOK {
				return
			}

			var avail catalog.Availability
			testutil.AssertJSONResponse(t, resp, &avail)

			if tt.expectedSelected != nil {
				selected := make([]int, len(avail.Selected))
				for i, s := range avail.Selected {
					selected[i] = s.Boon.ID
				}
				assert.Equal(t, tt.expectedSelected, selected)
			}
			if tt.expectedAvailable != nil {
				assert.Equal(t, tt.expectedAvailable, testutil.AvailableIDs(&avail))
			}
			if tt.checkBlocked != nil {
				tt.checkBlocked(t, avail.Blocked)
			}

			total := len(avail.Selected) + len(avail.Available) + len(avail.Blocked)
			assert.Equal(t, ts.Catalog.BoonCount(), total, "every boon lands in exactly one list")
		})
	}
}

func TestBuilderHandler_Available_OrderIndependent(t *testing.T) {
	ts := testutil.NewTestServer(t)

	fetch := func(ids ...int) []byte {
		resp := postJSON(t, ts.APIURL("/builder/available"), staffRequest(ids...))
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var buf bytes.Buffer
		_, err := buf.ReadFrom(resp.Body)
		require.NoError(t, err)
		return buf.Bytes()
	}

	forward := fetch(testutil.BoonZeusAttack, testutil.BoonHeraCast, testutil.BoonChaosBlessing)
	backward := fetch(testutil.BoonChaosBlessing, testutil.BoonHeraCast, testutil.BoonZeusAttack)

	assert.JSONEq(t, string(forward), string(backward))
}

func TestBuilderHandler_CanSelect(t *testing.T) {
	ts := testutil.NewTestServer(t)

	tests := []struct {
		name           string
		selection      handlers.SelectionRequest
		boonID         int
		expectedStatus int
		expected       bool
	}{
		{
			name:           "free slot",
			selection:      staffRequest(),
			boonID:         testutil.BoonZeusAttack,
			expectedStatus: http.StatusOK,
			expected:       true,
		},
		{
			name:           "slot already taken",
			selection:      staffRequest(testutil.BoonZeusAttack),
			boonID:         testutil.BoonHeraAttack,
			expectedStatus: http.StatusOK,
			expected:       false,
		},
		{
			name:           "legendary after two boons of its god",
			selection:      staffRequest(testutil.BoonZeusAttack, testutil.BoonZeusSpecial),
			boonID:         testutil.BoonZeusLegendary,
			expectedStatus: http.StatusOK,
			expected:       true,
		},
		{
			name:           "another copy of a stacking boon",
			selection:      staffRequest(testutil.BoonChaosBlessing, testutil.BoonChaosBlessing),
			boonID:         testutil.BoonChaosBlessing,
			expectedStatus: http.StatusOK,
			expected:       true,
		},
		{
			name:           "stacking boon at its limit",
			selection:      staffRequest(testutil.BoonChaosBlessing, testutil.BoonChaosBlessing, testutil.BoonChaosBlessing),
			boonID:         testutil.BoonChaosBlessing,
			expectedStatus: http.StatusOK,
			expected:       false,
		},
		{
			name: "hammer needs its weapon",
			selection: handlers.SelectionRequest{
				AspectID: testutil.AspectBladesMelinoe,
			},
			boonID:         testutil.BoonStaffHammer,
			expectedStatus: http.StatusOK,
			expected:       false,
		},
		{
			name:           "unknown boon",
			selection:      staffRequest(),
			boonID:         8080,
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "missing boon id",
			selection:      staffRequest(),
			boonID:         0,
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := handlers.CanSelectRequest{SelectionRequest: tt.selection, BoonID: tt.boonID}
			resp := postJSON(t, ts.APIURL("/builder/can-select"), req)
			defer resp.Body.Close()

			require.Equal(t, tt.expectedStatus, resp.StatusCode)
			if tt.expectedStatus != http.StatusOK {
				return
			}

			var result handlers.CanSelectResponse
			testutil.AssertJSONResponse(t, resp, &result)
			assert.Equal(t, tt.boonID, result.BoonID)
			assert.Equal(t, tt.expected, result.CanSelect)
		})
	}
}

func TestBuilderHandler_Validate(t *testing.T) {
	ts := testutil.NewTestServer(t)

	tests := []struct {
		name          string
		selection     handlers.SelectionRequest
		expectedValid bool
		expectedCodes []string
	}{
		{
			name:          "consistent build",
			selection:     staffRequest(testutil.BoonZeusAttack, testutil.BoonZeusSpecial, testutil.BoonZeusLegendary, testutil.BoonStaffHammer),
			expectedValid: true,
		},
		{
			name:          "no aspect",
			selection:     handlers.SelectionRequest{BoonIDs: []int{testutil.BoonZeusAttack}},
			expectedCodes: []string{catalog.CodeAspectRequired},
		},
		{
			name: "aspect of another weapon",
			selection: handlers.SelectionRequest{
				WeaponID: testutil.WeaponBlades,
				AspectID: testutil.AspectStaffCirce,
			},
			expectedCodes: []string{catalog.CodeAspectWeaponMismatch},
		},
		{
			name:          "two attack boons",
			selection:     staffRequest(testutil.BoonZeusAttack, testutil.BoonHeraAttack),
			expectedCodes: []string{catalog.CodeSlotCollision},
		},
		{
			name:          "duo without its second god",
			selection:     staffRequest(testutil.BoonZeusAttack, testutil.BoonZeusHeraDuo),
			expectedCodes: []string{catalog.CodePrerequisiteUnmet},
		},
		{
			name:          "incompatible chaos boons",
			selection:     staffRequest(testutil.BoonChaosBlessing, testutil.BoonChaosCurse),
			expectedCodes: []string{catalog.CodeIncompatible},
		},
		{
			name:          "one copy too many",
			selection:     staffRequest(testutil.BoonPoseidonSprint, testutil.BoonPoseidonSprint),
			expectedCodes: []string{catalog.CodeMaxCountExceeded},
		},
		{
			name:          "unknown ids are reported, not rejected",
			selection:     staffRequest(31337),
			expectedCodes: []string{catalog.CodeUnknownBoon},
		},
		{
			name:          "zero and negative boon ids",
			selection:     staffRequest(0, -5),
			expectedCodes: []string{catalog.CodeUnknownBoon},
		},
		{
			name: "negative aspect and zero familiar",
			selection: handlers.SelectionRequest{
				AspectID:   -3,
				FamiliarID: intPtr(0),
			},
			expectedCodes: []string{catalog.CodeUnknownAspect, catalog.CodeUnknownFamiliar},
		},
		{
			name:          "every problem at once",
			selection:     handlers.SelectionRequest{BoonIDs: []int{testutil.BoonZeusAttack, testutil.BoonHeraAttack, testutil.BoonZeusHeraDuo, testutil.BoonChaosBlessing, testutil.BoonChaosCurse}},
			expectedCodes: []string{catalog.CodeAspectRequired, catalog.CodeSlotCollision, catalog.CodeIncompatible},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := postJSON(t, ts.APIURL("/builder/validate"), tt.selection)
			defer resp.Body.Close()

			require.Equal(t, http.StatusOK, resp.StatusCode)

			var result service.ValidationResult
			testutil.AssertJSONResponse(t, resp, &result)

			assert.Equal(t, tt.expectedValid, result.Valid)
			if tt.expectedValid {
				assert.Empty(t, result.Errors)
			}
			for _, code := range tt.expectedCodes {
				assert.True(t, result.Errors.HasCode(code), "expected %s in %v", code, result.Errors)
			}
		})
	}
}
