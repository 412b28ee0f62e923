package postgres

import (
	"context"
	"fmt"

	"github.com/dom/hades-build-planner/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type buildRepository struct {
	db *gorm.DB
}

func NewBuildRepository(db *gorm.DB) *buildRepository {
	return &buildRepository{db: db}
}

func (r *buildRepository) Create(ctx context.Context, build *domain.Build) error {
	return r.db.WithContext(ctx).Create(build).Error
}

func (r *buildRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Build, error) {
	var build domain.Build
	err := r.db.WithContext(ctx).
		Preload("User").
		First(&build, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &build, nil
}

func (r *buildRepository) GetByShareCode(ctx context.Context, code string) (*domain.Build, error) {
	var build domain.Build
	err := r.db.WithContext(ctx).
		Preload("User").
		First(&build, "share_code = ?", code).Error
	if err != nil {
		return nil, err
	}
	return &build, nil
}

// Update saves every column except LikeCount, which only the like repository
// maintains.
func (r *buildRepository) Update(ctx context.Context, build *domain.Build) error {
	return r.db.WithContext(ctx).
		Omit("like_count", "User").
		Save(build).Error
}

func (r *buildRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&domain.BuildFavorite{}, "build_id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Delete(&domain.BuildLike{}, "build_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&domain.Build{}, "id = ?", id).Error
	})
}

func (r *buildRepository) ListPublic(ctx context.Context, filter domain.BuildFilter) ([]*domain.Build, error) {
	query := r.db.WithContext(ctx).
		Preload("User").
		Where("visibility = ?", domain.VisibilityPublic)

	if filter.GodID != nil {
		query = query.Where("god_ids @> ?::jsonb", fmt.Sprintf("[%d]", *filter.GodID))
	}
	if filter.WeaponID != nil {
		query = query.Where("weapon_id = ?", *filter.WeaponID)
	}
	if filter.Tier != nil {
		query = query.Where("tier = ?", *filter.Tier)
	}

	var builds []*domain.Build
	err := query.
		Order(clause.OrderByColumn{Column: clause.Column{Name: "like_count"}, Desc: true}).
		Order("created_at DESC").
		Limit(filter.Limit).
		Offset(filter.Offset).
		Find(&builds).Error
	if err != nil {
		return nil, err
	}
	return builds, nil
}

func (r *buildRepository) GetByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*domain.Build, error) {
	var builds []*domain.Build
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("updated_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&builds).Error
	if err != nil {
		return nil, err
	}
	return builds, nil
}
