package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/dom/hades-build-planner/internal/api/middleware"
	"github.com/dom/hades-build-planner/internal/domain"
	"github.com/dom/hades-build-planner/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type BuildHandler struct {
	buildService *service.BuildService
}

func NewBuildHandler(buildService *service.BuildService) *BuildHandler {
	return &BuildHandler{buildService: buildService}
}

type BuildRequest struct {
	Name        string           `json:"name" validate:"required,max=80"`
	Description string           `json:"description" validate:"max=2000"`
	Difficulty  int              `json:"difficulty" validate:"gte=0,lte=64"`
	Visibility  string           `json:"visibility" validate:"omitempty,oneof=public unlisted private"`
	Tier        string           `json:"tier" validate:"omitempty,oneof=s a b c d"`
	Selection   SelectionRequest `json:"selection"`
}

func (req BuildRequest) input() service.BuildInput {
	return service.BuildInput{
		Name:        req.Name,
		Description: req.Description,
		Difficulty:  req.Difficulty,
		Visibility:  domain.Visibility(req.Visibility),
		Tier:        domain.Tier(req.Tier),
		Selection:   req.Selection.Selection(),
	}
}

type BuildResponse struct {
	ID          string        `json:"id"`
	ShareCode   string        `json:"shareCode"`
	UserID      string        `json:"userId"`
	Author      *UserResponse `json:"author,omitempty"`
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Difficulty  int           `json:"difficulty"`
	Visibility  string        `json:"visibility"`
	Tier        string        `json:"tier,omitempty"`
	WeaponID    int           `json:"weaponId"`
	AspectID    int           `json:"aspectId"`
	FamiliarID  *int          `json:"familiarId"`
	BoonIDs     []int         `json:"boonIds"`
	GodIDs      []int         `json:"godIds"`
	LikeCount   int           `json:"likeCount"`
	Liked       *bool         `json:"liked,omitempty"`
	Favorited   *bool         `json:"favorited,omitempty"`
	CreatedAt   time.Time     `json:"createdAt"`
	UpdatedAt   time.Time     `json:"updatedAt"`
}

type BuildsResponse struct {
	Builds []BuildResponse `json:"builds"`
	Limit  int             `json:"limit"`
	Offset int             `json:"offset"`
}

func newBuildResponse(build *domain.Build) BuildResponse {
	resp := BuildResponse{
		ID:          build.ID.String(),
		ShareCode:   build.ShareCode,
		UserID:      build.UserID.String(),
		Name:        build.Name,
		Description: build.Description,
		Difficulty:  build.Difficulty,
		Visibility:  string(build.Visibility),
		Tier:        string(build.Tier),
		WeaponID:    build.WeaponID,
		AspectID:    build.AspectID,
		FamiliarID:  build.FamiliarID,
		BoonIDs:     []int{},
		GodIDs:      []int{},
		LikeCount:   build.LikeCount,
		CreatedAt:   build.CreatedAt,
		UpdatedAt:   build.UpdatedAt,
	}
	if build.User != nil {
		author := newUserResponse(build.User)
		resp.Author = &author
	}
	if len(build.BoonIDs) > 0 {
		json.Unmarshal(build.BoonIDs, &resp.BoonIDs)
	}
	if len(build.GodIDs) > 0 {
		json.Unmarshal(build.GodIDs, &resp.GodIDs)
	}
	return resp
}

func newBuildsResponse(builds []*domain.Build, limit, offset int) BuildsResponse {
	resp := BuildsResponse{
		Builds: make([]BuildResponse, len(builds)),
		Limit:  limit,
		Offset: offset,
	}
	for i, b := range builds {
		resp.Builds[i] = newBuildResponse(b)
	}
	return resp
}

// pagination reads ?limit= and ?offset=
func pagination(r *http.Request) (int, int) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	return service.Page(limit, offset)
}

func buildIDParam(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "Invalid build ID", http.StatusBadRequest)
		return uuid.Nil, false
	}
	return id, true
}

// List returns public builds, most liked first. Supports ?god=, ?weapon=
// and ?tier= filters.
func (h *BuildHandler) List(w http.ResponseWriter, r *http.Request) {
	var filter domain.BuildFilter
	query := r.URL.Query()

	if v := query.Get("god"); v != "" {
		godID, err := strconv.Atoi(v)
		if err != nil {
			http.Error(w, "Invalid god", http.StatusBadRequest)
			return
		}
		filter.GodID = &godID
	}
	if v := query.Get("weapon"); v != "" {
		weaponID, err := strconv.Atoi(v)
		if err != nil {
			http.Error(w, "Invalid weapon", http.StatusBadRequest)
			return
		}
		filter.WeaponID = &weaponID
	}
	if v := query.Get("tier"); v != "" {
		tier := domain.Tier(v)
		if !tier.IsValid() {
			http.Error(w, "Invalid tier", http.StatusBadRequest)
			return
		}
		filter.Tier = &tier
	}
	filter.Limit, filter.Offset = pagination(r)

	builds, err := h.buildService.ListPublicBuilds(r.Context(), filter)
	if err != nil {
		writeError(w, "build.List", err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(newBuildsResponse(builds, filter.Limit, filter.Offset))
}

// Get accepts a build id or share code
func (h *BuildHandler) Get(w http.ResponseWriter, r *http.Request) {
	idOrCode := chi.URLParam(r, "id")

	viewerID := middleware.GetOptionalUserID(r.Context())
	build, err := h.buildService.GetBuild(r.Context(), viewerID, idOrCode)
	if err != nil {
		writeError(w, "build.Get", err)
		return
	}

	resp := newBuildResponse(build)
	if viewerID != nil {
		liked, favorited, err := h.buildService.Reactions(r.Context(), *viewerID, build.ID)
		if err != nil {
			writeError(w, "build.Get", err)
			return
		}
		resp.Liked, resp.Favorited = &liked, &favorited
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

func (h *BuildHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req BuildRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	build, err := h.buildService.CreateBuild(r.Context(), userID, req.input())
	if err != nil {
		writeError(w, "build.Create", err)
		return
	}

	log.Printf("Build %s (%s) created by %s", build.ID, build.ShareCode, userID)
	writeJSON(w, http.StatusCreated, newBuildResponse(build))
}

func (h *BuildHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	buildID, ok := buildIDParam(w, r)
	if !ok {
		return
	}

	var req BuildRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	build, err := h.buildService.UpdateBuild(r.Context(), userID, buildID, req.input())
	if err != nil {
		writeError(w, "build.Update", err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(newBuildResponse(build))
}

func (h *BuildHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	buildID, ok := buildIDParam(w, r)
	if !ok {
		return
	}

	if err := h.buildService.DeleteBuild(r.Context(), userID, buildID); err != nil {
		writeError(w, "build.Delete", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *BuildHandler) Favorite(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	buildID, ok := buildIDParam(w, r)
	if !ok {
		return
	}

	if err := h.buildService.FavoriteBuild(r.Context(), userID, buildID); err != nil {
		writeError(w, "build.Favorite", err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]bool{"favorited": true})
}

func (h *BuildHandler) Unfavorite(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	buildID, ok := buildIDParam(w, r)
	if !ok {
		return
	}

	if err := h.buildService.UnfavoriteBuild(r.Context(), userID, buildID); err != nil {
		writeError(w, "build.Unfavorite", err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]bool{"favorited": false})
}

func (h *BuildHandler) Like(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	buildID, ok := buildIDParam(w, r)
	if !ok {
		return
	}

	build, err := h.buildService.LikeBuild(r.Context(), userID, buildID)
	if err != nil {
		writeError(w, "build.Like", err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(newBuildResponse(build))
}

func (h *BuildHandler) Unlike(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	buildID, ok := buildIDParam(w, r)
	if !ok {
		return
	}

	build, err := h.buildService.UnlikeBuild(r.Context(), userID, buildID)
	if err != nil {
		writeError(w, "build.Unlike", err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(newBuildResponse(build))
}

func (h *BuildHandler) GetUserBuilds(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	limit, offset := pagination(r)
	builds, err := h.buildService.GetUserBuilds(r.Context(), userID, limit, offset)
	if err != nil {
		writeError(w, "build.GetUserBuilds", err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(newBuildsResponse(builds, limit, offset))
}

func (h *BuildHandler) GetFavorites(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	limit, offset := pagination(r)
	builds, err := h.buildService.GetFavoriteBuilds(r.Context(), userID, limit, offset)
	if err != nil {
		writeError(w, "build.GetFavorites", err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(newBuildsResponse(builds, limit, offset))
}
