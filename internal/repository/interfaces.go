package repository

import (
	"context"

	"github.com/dom/hades-build-planner/internal/domain"
	"github.com/google/uuid"
)

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByDisplayName(ctx context.Context, displayName string) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
}

type SessionRepository interface {
	Create(ctx context.Context, session *domain.UserSession) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.UserSession, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.UserSession, error)
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteByUserID(ctx context.Context, userID uuid.UUID) error
}

// CatalogRepository stores the game catalog. ReplaceAll swaps the whole
// catalog in one transaction so readers never observe a partial import.
type CatalogRepository interface {
	ReplaceAll(ctx context.Context, rows *domain.CatalogRows) error
	Load(ctx context.Context) (*domain.CatalogRows, error)
	CountBoons(ctx context.Context) (int64, error)
}

type BuildRepository interface {
	Create(ctx context.Context, build *domain.Build) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Build, error)
	GetByShareCode(ctx context.Context, code string) (*domain.Build, error)
	Update(ctx context.Context, build *domain.Build) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListPublic(ctx context.Context, filter domain.BuildFilter) ([]*domain.Build, error)
	GetByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*domain.Build, error)
}

type BuildFavoriteRepository interface {
	Add(ctx context.Context, fav *domain.BuildFavorite) error
	Remove(ctx context.Context, userID, buildID uuid.UUID) error
	Exists(ctx context.Context, userID, buildID uuid.UUID) (bool, error)
	GetBuildsByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*domain.Build, error)
}

// BuildLikeRepository keeps Build.LikeCount in step with the like rows. Add
// and Remove report whether anything changed.
type BuildLikeRepository interface {
	Add(ctx context.Context, like *domain.BuildLike) (bool, error)
	Remove(ctx context.Context, userID, buildID uuid.UUID) (bool, error)
	Exists(ctx context.Context, userID, buildID uuid.UUID) (bool, error)
}

type Repositories struct {
	User          UserRepository
	Session       SessionRepository
	Catalog       CatalogRepository
	Build         BuildRepository
	BuildFavorite BuildFavoriteRepository
	BuildLike     BuildLikeRepository
}
