package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/dom/hades-build-planner/internal/service"
)

// BuilderHandler exposes the boon engine for builds in progress. Nothing is
// stored.
type BuilderHandler struct {
	catalogService *service.CatalogService
}

func NewBuilderHandler(catalogService *service.CatalogService) *BuilderHandler {
	return &BuilderHandler{catalogService: catalogService}
}

type CanSelectRequest struct {
	SelectionRequest
	BoonID int `json:"boonId" validate:"required,gt=0"`
}

type CanSelectResponse struct {
	BoonID    int  `json:"boonId"`
	CanSelect bool `json:"canSelect"`
}

func (h *BuilderHandler) Available(w http.ResponseWriter, r *http.Request) {
	var req SelectionRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	availability, err := h.catalogService.GetAvailableBoons(r.Context(), req.Selection())
	if err != nil {
		writeError(w, "builder.Available", err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(availability)
}

func (h *BuilderHandler) CanSelect(w http.ResponseWriter, r *http.Request) {
	var req CanSelectRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	ok, err := h.catalogService.CanSelect(r.Context(), req.Selection(), req.BoonID)
	if err != nil {
		writeError(w, "builder.CanSelect", err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(CanSelectResponse{BoonID: req.BoonID, CanSelect: ok})
}

// Validate always answers 200; rule violations are listed in the body
func (h *BuilderHandler) Validate(w http.ResponseWriter, r *http.Request) {
	var req SelectionRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	result := h.catalogService.ValidateBuild(r.Context(), req.Selection())

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}
