package postgres

import (
	"context"

	"github.com/dom/hades-build-planner/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type buildFavoriteRepository struct {
	db *gorm.DB
}

func NewBuildFavoriteRepository(db *gorm.DB) *buildFavoriteRepository {
	return &buildFavoriteRepository{db: db}
}

func (r *buildFavoriteRepository) Add(ctx context.Context, fav *domain.BuildFavorite) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(fav).Error
}

func (r *buildFavoriteRepository) Remove(ctx context.Context, userID, buildID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Delete(&domain.BuildFavorite{}, "user_id = ? AND build_id = ?", userID, buildID).Error
}

func (r *buildFavoriteRepository) Exists(ctx context.Context, userID, buildID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&domain.BuildFavorite{}).
		Where("user_id = ? AND build_id = ?", userID, buildID).
		Count(&count).Error
	return count > 0, err
}

func (r *buildFavoriteRepository) GetBuildsByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*domain.Build, error) {
	var builds []*domain.Build
	err := r.db.WithContext(ctx).
		Preload("User").
		Joins("JOIN build_favorites ON build_favorites.build_id = builds.id").
		Where("build_favorites.user_id = ?", userID).
		Order("build_favorites.created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&builds).Error
	if err != nil {
		return nil, err
	}
	return builds, nil
}

type buildLikeRepository struct {
	db *gorm.DB
}

func NewBuildLikeRepository(db *gorm.DB) *buildLikeRepository {
	return &buildLikeRepository{db: db}
}

func (r *buildLikeRepository) Add(ctx context.Context, like *domain.BuildLike) (bool, error) {
	added := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(like)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return nil
		}
		added = true
		return tx.Model(&domain.Build{}).
			Where("id = ?", like.BuildID).
			UpdateColumn("like_count", gorm.Expr("like_count + 1")).Error
	})
	return added, err
}

func (r *buildLikeRepository) Remove(ctx context.Context, userID, buildID uuid.UUID) (bool, error) {
	removed := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Delete(&domain.BuildLike{}, "user_id = ? AND build_id = ?", userID, buildID)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return nil
		}
		removed = true
		return tx.Model(&domain.Build{}).
			Where("id = ? AND like_count > 0", buildID).
			UpdateColumn("like_count", gorm.Expr("like_count - 1")).Error
	})
	return removed, err
}

func (r *buildLikeRepository) Exists(ctx context.Context, userID, buildID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&domain.BuildLike{}).
		Where("user_id = ? AND build_id = ?", userID, buildID).
		Count(&count).Error
	return count > 0, err
}
