package service

import (
	"github.com/dom/hades-build-planner/internal/catalog"
	"github.com/dom/hades-build-planner/internal/config"
	"github.com/dom/hades-build-planner/internal/repository"
)

type Services struct {
	Auth    *AuthService
	Catalog *CatalogService
	Build   *BuildService
}

// NewServices wires every service. cat must already be loaded; notifier may
// be nil.
func NewServices(repos *repository.Repositories, cfg *config.Config, cat *catalog.Catalog, notifier BuildNotifier) *Services {
	return &Services{
		Auth:    NewAuthService(repos.User, repos.Session, cfg),
		Catalog: NewCatalogService(cat),
		Build:   NewBuildService(repos.Build, repos.BuildFavorite, repos.BuildLike, cat, notifier),
	}
}
