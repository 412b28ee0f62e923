package postgres

import (
	"github.com/dom/hades-build-planner/internal/domain"
	"github.com/dom/hades-build-planner/internal/repository"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func NewConnection(databaseURL string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(databaseURL), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Info),
	})
	if err != nil {
		return nil, err
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	return db, nil
}

// Migrate creates or updates every table
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&domain.User{},
		&domain.UserSession{},
		&domain.God{},
		&domain.Weapon{},
		&domain.Aspect{},
		&domain.Familiar{},
		&domain.Boon{},
		&domain.Build{},
		&domain.BuildFavorite{},
		&domain.BuildLike{},
	)
}

func NewRepositories(db *gorm.DB) *repository.Repositories {
	return &repository.Repositories{
		User:          NewUserRepository(db),
		Session:       NewSessionRepository(db),
		Catalog:       NewCatalogRepository(db),
		Build:         NewBuildRepository(db),
		BuildFavorite: NewBuildFavoriteRepository(db),
		BuildLike:     NewBuildLikeRepository(db),
	}
}
