package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dom/hades-build-planner/internal/catalog"
	"github.com/dom/hades-build-planner/internal/domain"
	"github.com/dom/hades-build-planner/internal/metrics"
	"github.com/dom/hades-build-planner/internal/repository"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// BuildValidationError is returned when a build's selection breaks a
// catalog rule. Errors lists every violation.
type BuildValidationError struct {
	Errors catalog.ValidationErrors
}

func (e *BuildValidationError) Error() string {
	return fmt.Sprintf("build selection is invalid: %v", e.Errors)
}

// BuildNotifier is told about builds that just became public
type BuildNotifier interface {
	BuildPublished(build *domain.Build)
}

type BuildService struct {
	buildRepo    repository.BuildRepository
	favoriteRepo repository.BuildFavoriteRepository
	likeRepo     repository.BuildLikeRepository
	catalog      *catalog.Catalog
	notifier     BuildNotifier
}

func NewBuildService(
	buildRepo repository.BuildRepository,
	favoriteRepo repository.BuildFavoriteRepository,
	likeRepo repository.BuildLikeRepository,
	cat *catalog.Catalog,
	notifier BuildNotifier,
) *BuildService {
	return &BuildService{
		buildRepo:    buildRepo,
		favoriteRepo: favoriteRepo,
		likeRepo:     likeRepo,
		catalog:      cat,
		notifier:     notifier,
	}
}

type BuildInput struct {
	Name        string
	Description string
	Difficulty  int
	Visibility  domain.Visibility
	Tier        domain.Tier
	Selection   catalog.Selection
}

func (s *BuildService) CreateBuild(ctx context.Context, userID uuid.UUID, input BuildInput) (*domain.Build, error) {
	build := &domain.Build{
		ID:        uuid.New(),
		ShareCode: generateShareCode(),
		UserID:    userID,
	}
	if err := s.apply(build, input); err != nil {
		return nil, err
	}

	if err := s.buildRepo.Create(ctx, build); err != nil {
		return nil, err
	}

	if build.Visibility == domain.VisibilityPublic {
		s.notify(build)
	}
	return build, nil
}

func (s *BuildService) UpdateBuild(ctx context.Context, userID, buildID uuid.UUID, input BuildInput) (*domain.Build, error) {
	build, err := s.getOwned(ctx, userID, buildID)
	if err != nil {
		return nil, err
	}

	wasPublic := build.Visibility == domain.VisibilityPublic
	if err := s.apply(build, input); err != nil {
		return nil, err
	}

	if err := s.buildRepo.Update(ctx, build); err != nil {
		return nil, err
	}

	if !wasPublic && build.Visibility == domain.VisibilityPublic {
		s.notify(build)
	}
	return build, nil
}

// apply copies input onto build after checking metadata and selection
func (s *BuildService) apply(build *domain.Build, input BuildInput) error {
	build.Name = strings.TrimSpace(input.Name)
	build.Description = input.Description
	build.Difficulty = input.Difficulty
	build.Visibility = input.Visibility
	if build.Visibility == "" {
		build.Visibility = domain.VisibilityPublic
	}
	build.Tier = input.Tier

	if err := build.Validate(); err != nil {
		return err
	}

	if errs := catalog.Validate(s.catalog, input.Selection); len(errs) > 0 {
		metrics.BuildRejected()
		return &BuildValidationError{Errors: errs}
	}

	return build.SetSelection(s.catalog, input.Selection)
}

func (s *BuildService) DeleteBuild(ctx context.Context, userID, buildID uuid.UUID) error {
	if _, err := s.getOwned(ctx, userID, buildID); err != nil {
		return err
	}
	return s.buildRepo.Delete(ctx, buildID)
}

// GetBuild looks a build up by id or share code. viewerID is nil for
// anonymous readers; private builds are reported as not found to anyone but
// their owner.
func (s *BuildService) GetBuild(ctx context.Context, viewerID *uuid.UUID, idOrCode string) (*domain.Build, error) {
	var (
		build *domain.Build
		err   error
	)
	if id, parseErr := uuid.Parse(idOrCode); parseErr == nil {
		build, err = s.buildRepo.GetByID(ctx, id)
	} else {
		build, err = s.buildRepo.GetByShareCode(ctx, strings.ToUpper(idOrCode))
	}
	if err != nil {
		return nil, notFound(err)
	}

	if !build.IsVisibleTo(viewerID) {
		return nil, domain.ErrBuildNotFound
	}
	return build, nil
}

func (s *BuildService) ListPublicBuilds(ctx context.Context, filter domain.BuildFilter) ([]*domain.Build, error) {
	filter.Limit, filter.Offset = Page(filter.Limit, filter.Offset)
	return s.buildRepo.ListPublic(ctx, filter)
}

func (s *BuildService) GetUserBuilds(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*domain.Build, error) {
	limit, offset = Page(limit, offset)
	return s.buildRepo.GetByUserID(ctx, userID, limit, offset)
}

func (s *BuildService) FavoriteBuild(ctx context.Context, userID, buildID uuid.UUID) error {
	if _, err := s.GetBuild(ctx, &userID, buildID.String()); err != nil {
		return err
	}
	return s.favoriteRepo.Add(ctx, &domain.BuildFavorite{
		UserID:    userID,
		BuildID:   buildID,
		CreatedAt: time.Now(),
	})
}

func (s *BuildService) UnfavoriteBuild(ctx context.Context, userID, buildID uuid.UUID) error {
	return s.favoriteRepo.Remove(ctx, userID, buildID)
}

func (s *BuildService) GetFavoriteBuilds(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*domain.Build, error) {
	limit, offset = Page(limit, offset)
	builds, err := s.favoriteRepo.GetBuildsByUserID(ctx, userID, limit, offset)
	if err != nil {
		return nil, err
	}

	// A favorited build may have been made private since.
	visible := make([]*domain.Build, 0, len(builds))
	for _, b := range builds {
		if b.IsVisibleTo(&userID) {
			visible = append(visible, b)
		}
	}
	return visible, nil
}

// LikeBuild is idempotent and returns the build with its updated like count
func (s *BuildService) LikeBuild(ctx context.Context, userID, buildID uuid.UUID) (*domain.Build, error) {
	if _, err := s.GetBuild(ctx, &userID, buildID.String()); err != nil {
		return nil, err
	}
	if _, err := s.likeRepo.Add(ctx, &domain.BuildLike{
		UserID:    userID,
		BuildID:   buildID,
		CreatedAt: time.Now(),
	}); err != nil {
		return nil, err
	}
	return s.GetBuild(ctx, &userID, buildID.String())
}

func (s *BuildService) UnlikeBuild(ctx context.Context, userID, buildID uuid.UUID) (*domain.Build, error) {
	if _, err := s.likeRepo.Remove(ctx, userID, buildID); err != nil {
		return nil, err
	}
	return s.GetBuild(ctx, &userID, buildID.String())
}

// Reactions reports whether the user has liked and favorited the build.
func (s *BuildService) Reactions(ctx context.Context, userID, buildID uuid.UUID) (liked, favorited bool, err error) {
	if liked, err = s.likeRepo.Exists(ctx, userID, buildID); err != nil {
		return false, false, err
	}
	if favorited, err = s.favoriteRepo.Exists(ctx, userID, buildID); err != nil {
		return false, false, err
	}
	return liked, favorited, nil
}

func (s *BuildService) getOwned(ctx context.Context, userID, buildID uuid.UUID) (*domain.Build, error) {
	build, err := s.buildRepo.GetByID(ctx, buildID)
	if err != nil {
		return nil, notFound(err)
	}
	if build.UserID != userID {
		return nil, domain.ErrNotBuildOwner
	}
	return build, nil
}

func (s *BuildService) notify(build *domain.Build) {
	if s.notifier != nil {
		s.notifier.BuildPublished(build)
	}
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.ErrBuildNotFound
	}
	return err
}

// Page applies the default and maximum page size
func Page(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

func generateShareCode() string {
	bytes := make([]byte, 4)
	rand.Read(bytes)
	return strings.ToUpper(hex.EncodeToString(bytes))
}
