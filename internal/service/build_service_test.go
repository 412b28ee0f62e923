package service_test

import (
	"context"
	"sync"
	"testing"

	"github.com/dom/hades-build-planner/internal/catalog"
	"github.com/dom/hades-build-planner/internal/domain"
	"github.com/dom/hades-build-planner/internal/repository/postgres"
	"github.com/dom/hades-build-planner/internal/service"
	"github.com/dom/hades-build-planner/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingNotifier struct {
	mu     sync.Mutex
	builds []*domain.Build
}

func (n *recordingNotifier) BuildPublished(build *domain.Build) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.builds = append(n.builds, build)
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.builds)
}

func newBuildService(t *testing.T) (*service.BuildService, *testutil.TestDB, *recordingNotifier) {
	t.Helper()

	testDB := testutil.NewTestDB(t)
	repos := postgres.NewRepositories(testDB.DB)
	notifier := &recordingNotifier{}
	svc := service.NewBuildService(repos.Build, repos.BuildFavorite, repos.BuildLike, testutil.LoadSampleCatalog(t), notifier)
	return svc, testDB, notifier
}

func buildInput(name string, visibility domain.Visibility, boonIDs ...int) service.BuildInput {
	return service.BuildInput{
		Name:       name,
		Visibility: visibility,
		Selection:  testutil.StaffSelection(boonIDs...),
	}
}

func TestBuildService_CreateBuild(t *testing.T) {
	svc, testDB, notifier := newBuildService(t)
	ctx := context.Background()

	tests := []struct {
		name        string
		input       service.BuildInput
		wantErr     error
		wantCodes   []string
		wantNotices int
	}{
		{
			name:        "public build is announced",
			input:       buildInput("  Storm  ", domain.VisibilityPublic, testutil.BoonZeusAttack),
			wantNotices: 1,
		},
		{
			name:        "visibility defaults to public",
			input:       buildInput("Default", "", testutil.BoonHeraCast),
			wantNotices: 1,
		},
		{
			name:  "private build is not announced",
			input: buildInput("Quiet", domain.VisibilityPrivate, testutil.BoonZeusAttack),
		},
		{
			name:    "blank name",
			input:   buildInput("   ", domain.VisibilityPublic),
			wantErr: domain.ErrBuildNameRequired,
		},
		{
			name: "bad tier",
			input: service.BuildInput{
				Name:      "Tiered",
				Tier:      "x",
				Selection: testutil.StaffSelection(),
			},
			wantErr: domain.ErrInvalidTier,
		},
		{
			name:      "selection breaking rules",
			input:     buildInput("Greedy", domain.VisibilityPublic, testutil.BoonZeusAttack, testutil.BoonHeraAttack),
			wantCodes: []string{catalog.CodeSlotCollision},
		},
		{
			name: "no aspect",
			input: service.BuildInput{
				Name:      "Bare hands",
				Selection: catalog.NewSelection(testutil.BoonZeusAttack),
			},
			wantCodes: []string{catalog.CodeAspectRequired},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			testDB.Truncate(t)
			notifier.builds = nil
			owner, _ := testutil.NewUserBuilder().Build(t, testDB.DB)

			build, err := svc.CreateBuild(ctx, owner.ID, tt.input)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			if tt.wantCodes != nil {
				var buildErr *service.BuildValidationError
				require.ErrorAs(t, err, &buildErr)
				for _, code := range tt.wantCodes {
					assert.True(t, buildErr.Errors.HasCode(code), "expected %s in %v", code, buildErr.Errors)
				}
				return
			}

			require.NoError(t, err)
			assert.NotEmpty(t, build.ShareCode)
			assert.Equal(t, owner.ID, build.UserID)
			assert.NotContains(t, build.Name, " ", "name is trimmed")
			assert.Equal(t, tt.wantNotices, notifier.count())

			stored, err := svc.GetBuild(ctx, &owner.ID, build.ID.String())
			require.NoError(t, err)
			sel, err := stored.Selection()
			require.NoError(t, err)
			assert.Equal(t, tt.input.Selection.BoonIDs, sel.BoonIDs)
		})
	}
}

func TestBuildService_UpdateBuild(t *testing.T) {
	svc, testDB, notifier := newBuildService(t)
	ctx := context.Background()

	owner, _ := testutil.NewUserBuilder().Build(t, testDB.DB)
	other, _ := testutil.NewUserBuilder().Build(t, testDB.DB)

	build, err := svc.CreateBuild(ctx, owner.ID, buildInput("Hidden gem", domain.VisibilityPrivate, testutil.BoonZeusAttack))
	require.NoError(t, err)
	require.Equal(t, 0, notifier.count())

	_, err = svc.UpdateBuild(ctx, other.ID, build.ID, buildInput("Stolen", domain.VisibilityPublic))
	assert.ErrorIs(t, err, domain.ErrNotBuildOwner)

	_, err = svc.UpdateBuild(ctx, owner.ID, uuid.New(), buildInput("Ghost", domain.VisibilityPublic))
	assert.ErrorIs(t, err, domain.ErrBuildNotFound)

	updated, err := svc.UpdateBuild(ctx, owner.ID, build.ID,
		buildInput("Revealed", domain.VisibilityPublic, testutil.BoonZeusAttack, testutil.BoonZeusSpecial, testutil.BoonZeusLegendary))
	require.NoError(t, err)
	assert.Equal(t, "Revealed", updated.Name)
	assert.Equal(t, build.ShareCode, updated.ShareCode)
	assert.Equal(t, 1, notifier.count(), "going public is announced")

	_, err = svc.UpdateBuild(ctx, owner.ID, build.ID, buildInput("Still public", domain.VisibilityPublic, testutil.BoonZeusAttack))
	require.NoError(t, err)
	assert.Equal(t, 1, notifier.count(), "staying public is not announced again")
}

func TestBuildService_DeleteBuild(t *testing.T) {
	svc, testDB, _ := newBuildService(t)
	ctx := context.Background()

	owner, _ := testutil.NewUserBuilder().Build(t, testDB.DB)
	other, _ := testutil.NewUserBuilder().Build(t, testDB.DB)

	build := testutil.NewBuildBuilder().WithOwner(owner).Build(t, testDB.DB)
	require.NoError(t, svc.FavoriteBuild(ctx, other.ID, build.ID))
	_, err := svc.LikeBuild(ctx, other.ID, build.ID)
	require.NoError(t, err)

	assert.ErrorIs(t, svc.DeleteBuild(ctx, other.ID, build.ID), domain.ErrNotBuildOwner)
	require.NoError(t, svc.DeleteBuild(ctx, owner.ID, build.ID))

	_, err = svc.GetBuild(ctx, &owner.ID, build.ID.String())
	assert.ErrorIs(t, err, domain.ErrBuildNotFound)

	favorites, err := svc.GetFavoriteBuilds(ctx, other.ID, 0, 0)
	require.NoError(t, err)
	assert.Empty(t, favorites)
}

func TestBuildService_GetBuild(t *testing.T) {
	svc, testDB, _ := newBuildService(t)
	ctx := context.Background()

	owner, _ := testutil.NewUserBuilder().Build(t, testDB.DB)
	stranger, _ := testutil.NewUserBuilder().Build(t, testDB.DB)

	unlisted := testutil.NewBuildBuilder().WithOwner(owner).WithVisibility(domain.VisibilityUnlisted).Build(t, testDB.DB)
	private := testutil.NewBuildBuilder().WithOwner(owner).WithVisibility(domain.VisibilityPrivate).Build(t, testDB.DB)

	tests := []struct {
		name     string
		viewer   *uuid.UUID
		idOrCode string
		wantErr  error
	}{
		{name: "unlisted by share code", idOrCode: unlisted.ShareCode},
		{name: "unlisted by id", viewer: &stranger.ID, idOrCode: unlisted.ID.String()},
		{name: "private for owner", viewer: &owner.ID, idOrCode: private.ShareCode},
		{name: "private for stranger", viewer: &stranger.ID, idOrCode: private.ID.String(), wantErr: domain.ErrBuildNotFound},
		{name: "private anonymous", idOrCode: private.ShareCode, wantErr: domain.ErrBuildNotFound},
		{name: "unknown id", idOrCode: uuid.New().String(), wantErr: domain.ErrBuildNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			build, err := svc.GetBuild(ctx, tt.viewer, tt.idOrCode)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, build.User)
			assert.Equal(t, owner.DisplayName, build.User.DisplayName)
		})
	}
}

func TestBuildService_Likes(t *testing.T) {
	svc, testDB, _ := newBuildService(t)
	ctx := context.Background()

	owner, _ := testutil.NewUserBuilder().Build(t, testDB.DB)
	fans := make([]*domain.User, 3)
	for i := range fans {
		fans[i], _ = testutil.NewUserBuilder().Build(t, testDB.DB)
	}
	build := testutil.NewBuildBuilder().WithOwner(owner).Build(t, testDB.DB)

	var wg sync.WaitGroup
	for _, fan := range fans {
		wg.Add(1)
		go func(userID uuid.UUID) {
			defer wg.Done()
			_, err := svc.LikeBuild(ctx, userID, build.ID)
			assert.NoError(t, err)
		}(fan.ID)
	}
	wg.Wait()

	liked, err := svc.LikeBuild(ctx, fans[0].ID, build.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, liked.LikeCount, "a repeated like is ignored")

	unliked, err := svc.UnlikeBuild(ctx, fans[1].ID, build.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, unliked.LikeCount)

	unliked, err = svc.UnlikeBuild(ctx, fans[1].ID, build.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, unliked.LikeCount, "unliking twice changes nothing")

	liked0, _, err := svc.Reactions(ctx, fans[0].ID, build.ID)
	require.NoError(t, err)
	assert.True(t, liked0)

	liked1, _, err := svc.Reactions(ctx, fans[1].ID, build.ID)
	require.NoError(t, err)
	assert.False(t, liked1)
}

func TestBuildService_Favorites(t *testing.T) {
	svc, testDB, _ := newBuildService(t)
	ctx := context.Background()

	owner, _ := testutil.NewUserBuilder().Build(t, testDB.DB)
	fan, _ := testutil.NewUserBuilder().Build(t, testDB.DB)

	first := testutil.NewBuildBuilder().WithOwner(owner).WithName("first").Build(t, testDB.DB)
	second := testutil.NewBuildBuilder().WithOwner(owner).WithName("second").Build(t, testDB.DB)
	private := testutil.NewBuildBuilder().WithOwner(owner).WithVisibility(domain.VisibilityPrivate).Build(t, testDB.DB)

	require.NoError(t, svc.FavoriteBuild(ctx, fan.ID, first.ID))
	require.NoError(t, svc.FavoriteBuild(ctx, fan.ID, second.ID))
	require.NoError(t, svc.FavoriteBuild(ctx, fan.ID, second.ID), "favoriting twice is harmless")
	assert.ErrorIs(t, svc.FavoriteBuild(ctx, fan.ID, private.ID), domain.ErrBuildNotFound)

	favorites, err := svc.GetFavoriteBuilds(ctx, fan.ID, 10, 0)
	require.NoError(t, err)
	assert.Len(t, favorites, 2)

	liked, favorited, err := svc.Reactions(ctx, fan.ID, second.ID)
	require.NoError(t, err)
	assert.False(t, liked)
	assert.True(t, favorited)

	// A favorite made private afterwards disappears from the list
	require.NoError(t, testDB.DB.Model(&domain.Build{}).Where("id = ?", first.ID).Update("visibility", domain.VisibilityPrivate).Error)
	favorites, err = svc.GetFavoriteBuilds(ctx, fan.ID, 10, 0)
	require.NoError(t, err)
	require.Len(t, favorites, 1)
	assert.Equal(t, second.ID, favorites[0].ID)

	require.NoError(t, svc.UnfavoriteBuild(ctx, fan.ID, second.ID))
	favorites, err = svc.GetFavoriteBuilds(ctx, fan.ID, 10, 0)
	require.NoError(t, err)
	assert.Empty(t, favorites)
}

func TestBuildService_ListPublicBuilds(t *testing.T) {
	svc, testDB, _ := newBuildService(t)
	ctx := context.Background()

	owner, _ := testutil.NewUserBuilder().Build(t, testDB.DB)
	for i := 0; i < 3; i++ {
		testutil.NewBuildBuilder().WithOwner(owner).WithLikeCount(i).Build(t, testDB.DB)
	}
	testutil.NewBuildBuilder().WithOwner(owner).WithVisibility(domain.VisibilityPrivate).WithLikeCount(100).Build(t, testDB.DB)

	builds, err := svc.ListPublicBuilds(ctx, domain.BuildFilter{})
	require.NoError(t, err)
	require.Len(t, builds, 3)
	assert.Equal(t, 2, builds[0].LikeCount)
	assert.Equal(t, 0, builds[2].LikeCount)

	mine, err := svc.GetUserBuilds(ctx, owner.ID, 0, 0)
	require.NoError(t, err)
	assert.Len(t, mine, 4, "the author sees private builds too")
}

func TestPage(t *testing.T) {
	tests := []struct {
		name       string
		limit      int
		offset     int
		wantLimit  int
		wantOffset int
	}{
		{name: "defaults", limit: 0, offset: 0, wantLimit: 20, wantOffset: 0},
		{name: "kept", limit: 50, offset: 10, wantLimit: 50, wantOffset: 10},
		{name: "clamped", limit: 1000, offset: -5, wantLimit: 100, wantOffset: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			limit, offset := service.Page(tt.limit, tt.offset)
			assert.Equal(t, tt.wantLimit, limit)
			assert.Equal(t, tt.wantOffset, offset)
		})
	}
}
