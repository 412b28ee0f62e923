package postgres

import (
	"context"
	"fmt"

	"github.com/dom/hades-build-planner/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type catalogRepository struct {
	db *gorm.DB
}

func NewCatalogRepository(db *gorm.DB) *catalogRepository {
	return &catalogRepository{db: db}
}

// ReplaceAll upserts every row and removes rows that are no longer part of
// the catalog. Boons go first on delete and last on insert so references
// never dangle mid-transaction.
func (r *catalogRepository) ReplaceAll(ctx context.Context, rows *domain.CatalogRows) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := prune(tx, &domain.Boon{}, boonIDs(rows.Boons)); err != nil {
			return err
		}
		if err := prune(tx, &domain.Familiar{}, familiarIDs(rows.Familiars)); err != nil {
			return err
		}
		if err := prune(tx, &domain.Aspect{}, aspectIDs(rows.Aspects)); err != nil {
			return err
		}
		if err := prune(tx, &domain.Weapon{}, weaponIDs(rows.Weapons)); err != nil {
			return err
		}
		if err := prune(tx, &domain.God{}, godIDs(rows.Gods)); err != nil {
			return err
		}

		if err := upsertAll(tx, rows.Gods); err != nil {
			return fmt.Errorf("upsert gods: %w", err)
		}
		if err := upsertAll(tx, rows.Weapons); err != nil {
			return fmt.Errorf("upsert weapons: %w", err)
		}
		if err := upsertAll(tx, rows.Aspects); err != nil {
			return fmt.Errorf("upsert aspects: %w", err)
		}
		if err := upsertAll(tx, rows.Familiars); err != nil {
			return fmt.Errorf("upsert familiars: %w", err)
		}
		if err := upsertAll(tx, rows.Boons); err != nil {
			return fmt.Errorf("upsert boons: %w", err)
		}
		return nil
	})
}

func upsertAll[T any](tx *gorm.DB, rows []*T) error {
	if len(rows) == 0 {
		return nil
	}
	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).CreateInBatches(rows, 200).Error
}

func prune(tx *gorm.DB, model any, keep []int) error {
	if len(keep) == 0 {
		return tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(model).Error
	}
	return tx.Where("id NOT IN ?", keep).Delete(model).Error
}

func (r *catalogRepository) Load(ctx context.Context) (*domain.CatalogRows, error) {
	db := r.db.WithContext(ctx)
	rows := &domain.CatalogRows{}

	if err := db.Order("id ASC").Find(&rows.Gods).Error; err != nil {
		return nil, err
	}
	if err := db.Order("id ASC").Find(&rows.Weapons).Error; err != nil {
		return nil, err
	}
	if err := db.Order("id ASC").Find(&rows.Aspects).Error; err != nil {
		return nil, err
	}
	if err := db.Order("id ASC").Find(&rows.Familiars).Error; err != nil {
		return nil, err
	}
	if err := db.Order("id ASC").Find(&rows.Boons).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *catalogRepository) CountBoons(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Boon{}).Count(&count).Error
	return count, err
}

func godIDs(rows []*domain.God) []int {
	ids := make([]int, len(rows))
	for i, row := range rows {
		ids[i] = row.ID
	}
	return ids
}

func weaponIDs(rows []*domain.Weapon) []int {
	ids := make([]int, len(rows))
	for i, row := range rows {
		ids[i] = row.ID
	}
	return ids
}

func aspectIDs(rows []*domain.Aspect) []int {
	ids := make([]int, len(rows))
	for i, row := range rows {
		ids[i] = row.ID
	}
	return ids
}

func familiarIDs(rows []*domain.Familiar) []int {
	ids := make([]int, len(rows))
	for i, row := range rows {
		ids[i] = row.ID
	}
	return ids
}

func boonIDs(rows []*domain.Boon) []int {
	ids := make([]int, len(rows))
	for i, row := range rows {
		ids[i] = row.ID
	}
	return ids
}
