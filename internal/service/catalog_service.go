package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dom/hades-build-planner/internal/catalog"
	"github.com/dom/hades-build-planner/internal/metrics"
)

var (
	ErrInvalidCategory = errors.New("invalid boon category")
	ErrInvalidSlot     = errors.New("invalid boon slot")
)

// CatalogService is the query facade over the loaded catalog. It holds no
// state besides the immutable snapshot and may be called concurrently.
type CatalogService struct {
	catalog *catalog.Catalog
}

func NewCatalogService(cat *catalog.Catalog) *CatalogService {
	return &CatalogService{catalog: cat}
}

// Catalog returns the snapshot the service answers from
func (s *CatalogService) Catalog() *catalog.Catalog {
	return s.catalog
}

type BoonFilter struct {
	GodID    *int
	Category *catalog.Category
	Slot     *catalog.Slot
}

// WeaponDetails is a weapon together with its aspects
type WeaponDetails struct {
	catalog.Weapon
	Aspects []catalog.Aspect `json:"aspects"`
}

type ValidationResult struct {
	Valid  bool                     `json:"valid"`
	Errors catalog.ValidationErrors `json:"errors"`
}

func (s *CatalogService) ListGods(ctx context.Context) []catalog.God {
	return s.catalog.Gods()
}

func (s *CatalogService) GetGod(ctx context.Context, id int) (catalog.God, error) {
	god, ok := s.catalog.God(id)
	if !ok {
		return catalog.God{}, &catalog.NotFoundError{Kind: "god", ID: id}
	}
	return god, nil
}

func (s *CatalogService) ListWeapons(ctx context.Context) []WeaponDetails {
	weapons := s.catalog.Weapons()
	out := make([]WeaponDetails, len(weapons))
	for i, w := range weapons {
		out[i] = s.weaponDetails(w)
	}
	return out
}

func (s *CatalogService) GetWeapon(ctx context.Context, id int) (WeaponDetails, error) {
	weapon, ok := s.catalog.Weapon(id)
	if !ok {
		return WeaponDetails{}, &catalog.NotFoundError{Kind: "weapon", ID: id}
	}
	return s.weaponDetails(weapon), nil
}

func (s *CatalogService) weaponDetails(w catalog.Weapon) WeaponDetails {
	aspects := s.catalog.AspectsByWeapon(w.ID)
	if aspects == nil {
		aspects = []catalog.Aspect{}
	}
	return WeaponDetails{Weapon: w, Aspects: aspects}
}

func (s *CatalogService) ListFamiliars(ctx context.Context) []catalog.Familiar {
	return s.catalog.Familiars()
}

func (s *CatalogService) GetBoon(ctx context.Context, id int) (catalog.Boon, error) {
	boon, ok := s.catalog.Boon(id)
	if !ok {
		return catalog.Boon{}, &catalog.NotFoundError{Kind: "boon", ID: id}
	}
	return boon, nil
}

// ListBoons returns boons matching every set field of filter, ordered by id
func (s *CatalogService) ListBoons(ctx context.Context, filter BoonFilter) ([]catalog.Boon, error) {
	start := time.Now()

	if filter.Category != nil && !filter.Category.IsValid() {
		metrics.ObserveBuilder(metrics.OpListBoons, metrics.ResultInvalid, start)
		return nil, fmt.Errorf("%w: %q, want one of %v", ErrInvalidCategory, *filter.Category, catalog.AllCategories)
	}
	if filter.Slot != nil && (*filter.Slot == catalog.SlotNone || !filter.Slot.IsValid()) {
		metrics.ObserveBuilder(metrics.OpListBoons, metrics.ResultInvalid, start)
		return nil, fmt.Errorf("%w: %q", ErrInvalidSlot, *filter.Slot)
	}
	if filter.GodID != nil {
		if _, ok := s.catalog.God(*filter.GodID); !ok {
			metrics.ObserveBuilder(metrics.OpListBoons, metrics.ResultInvalid, start)
			return nil, &catalog.NotFoundError{Kind: "god", ID: *filter.GodID}
		}
	}

	var source []catalog.Boon
	switch {
	case filter.GodID != nil:
		source = s.catalog.BoonsByGod(*filter.GodID)
	case filter.Slot != nil:
		source = s.catalog.BoonsBySlot(*filter.Slot)
	case filter.Category != nil:
		source = s.catalog.BoonsByCategory(*filter.Category)
	default:
		source = s.catalog.Boons()
	}

	boons := make([]catalog.Boon, 0, len(source))
	for _, b := range source {
		if filter.Category != nil && b.Category != *filter.Category {
			continue
		}
		if filter.Slot != nil && b.Slot != *filter.Slot {
			continue
		}
		boons = append(boons, b)
	}

	metrics.ObserveBuilder(metrics.OpListBoons, metrics.ResultOK, start)
	return boons, nil
}

// GetAvailableBoons partitions the catalog for sel
func (s *CatalogService) GetAvailableBoons(ctx context.Context, sel catalog.Selection) (*catalog.Availability, error) {
	start := time.Now()

	result, err := catalog.ComputeAvailable(s.catalog, sel)
	if err != nil {
		metrics.ObserveBuilder(metrics.OpAvailable, metrics.ResultInvalid, start)
		return nil, err
	}

	metrics.ObserveBuilder(metrics.OpAvailable, metrics.ResultOK, start)
	return result, nil
}

// CanSelect reports whether boonID may be added to sel. An unknown boon is a
// *catalog.NotFoundError.
func (s *CatalogService) CanSelect(ctx context.Context, sel catalog.Selection, boonID int) (bool, error) {
	start := time.Now()

	ok, err := catalog.CanSelect(s.catalog, sel, boonID)
	if err != nil {
		metrics.ObserveBuilder(metrics.OpCanSelect, metrics.ResultInvalid, start)
		return false, err
	}

	metrics.ObserveBuilder(metrics.OpCanSelect, metrics.ResultOK, start)
	return ok, nil
}

func (s *CatalogService) GetPrerequisiteDetails(ctx context.Context, boonID int) (*catalog.PrerequisiteDetails, error) {
	start := time.Now()

	details, err := catalog.ExplainPrerequisites(s.catalog, boonID)
	if err != nil {
		metrics.ObserveBuilder(metrics.OpExplain, metrics.ResultInvalid, start)
		return nil, err
	}

	metrics.ObserveBuilder(metrics.OpExplain, metrics.ResultOK, start)
	return details, nil
}

// ValidateBuild checks a finished selection. Rule violations are reported in
// the result, never as an error.
func (s *CatalogService) ValidateBuild(ctx context.Context, sel catalog.Selection) *ValidationResult {
	start := time.Now()

	errs := catalog.Validate(s.catalog, sel)
	if errs == nil {
		errs = catalog.ValidationErrors{}
	}
	result := &ValidationResult{Valid: len(errs) == 0, Errors: errs}

	if result.Valid {
		metrics.ObserveBuilder(metrics.OpValidate, metrics.ResultOK, start)
	} else {
		metrics.ObserveBuilder(metrics.OpValidate, metrics.ResultInvalid, start)
	}
	return result
}
