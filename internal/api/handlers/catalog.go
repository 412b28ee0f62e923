package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/dom/hades-build-planner/internal/catalog"
	"github.com/dom/hades-build-planner/internal/service"
	"github.com/go-chi/chi/v5"
)

type CatalogHandler struct {
	catalogService *service.CatalogService
}

func NewCatalogHandler(catalogService *service.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalogService: catalogService}
}

type GodsResponse struct {
	Gods []catalog.God `json:"gods"`
}

type WeaponsResponse struct {
	Weapons []service.WeaponDetails `json:"weapons"`
}

type FamiliarsResponse struct {
	Familiars []catalog.Familiar `json:"familiars"`
}

type BoonsResponse struct {
	Boons []catalog.Boon `json:"boons"`
}

// intParam parses a positive integer URL parameter. On failure it writes a
// 400 and returns false.
func intParam(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	v, err := strconv.Atoi(chi.URLParam(r, name))
	if err != nil || v <= 0 {
		http.Error(w, "Invalid "+name, http.StatusBadRequest)
		return 0, false
	}
	return v, true
}

func (h *CatalogHandler) ListGods(w http.ResponseWriter, r *http.Request) {
	resp := GodsResponse{Gods: h.catalogService.ListGods(r.Context())}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

func (h *CatalogHandler) GetGod(w http.ResponseWriter, r *http.Request) {
	id, ok := intParam(w, r, "id")
	if !ok {
		return
	}

	god, err := h.catalogService.GetGod(r.Context(), id)
	if err != nil {
		writeError(w, "catalog.GetGod", err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(god)
}

func (h *CatalogHandler) GetGodBoons(w http.ResponseWriter, r *http.Request) {
	id, ok := intParam(w, r, "id")
	if !ok {
		return
	}

	boons, err := h.catalogService.ListBoons(r.Context(), service.BoonFilter{GodID: &id})
	if err != nil {
		writeError(w, "catalog.GetGodBoons", err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(BoonsResponse{Boons: boons})
}

func (h *CatalogHandler) ListWeapons(w http.ResponseWriter, r *http.Request) {
	resp := WeaponsResponse{Weapons: h.catalogService.ListWeapons(r.Context())}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

func (h *CatalogHandler) GetWeapon(w http.ResponseWriter, r *http.Request) {
	id, ok := intParam(w, r, "id")
	if !ok {
		return
	}

	weapon, err := h.catalogService.GetWeapon(r.Context(), id)
	if err != nil {
		writeError(w, "catalog.GetWeapon", err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(weapon)
}

func (h *CatalogHandler) ListFamiliars(w http.ResponseWriter, r *http.Request) {
	resp := FamiliarsResponse{Familiars: h.catalogService.ListFamiliars(r.Context())}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// ListBoons supports ?god=, ?category= and ?slot= filters
func (h *CatalogHandler) ListBoons(w http.ResponseWriter, r *http.Request) {
	var filter service.BoonFilter
	query := r.URL.Query()

	if v := query.Get("god"); v != "" {
		godID, err := strconv.Atoi(v)
		if err != nil {
			http.Error(w, "Invalid god", http.StatusBadRequest)
			return
		}
		filter.GodID = &godID
	}
	if v := query.Get("category"); v != "" {
		category := catalog.Category(v)
		filter.Category = &category
	}
	if v := query.Get("slot"); v != "" {
		slot := catalog.Slot(v)
		filter.Slot = &slot
	}

	boons, err := h.catalogService.ListBoons(r.Context(), filter)
	if err != nil {
		writeError(w, "catalog.ListBoons", err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(BoonsResponse{Boons: boons})
}

func (h *CatalogHandler) GetBoon(w http.ResponseWriter, r *http.Request) {
	id, ok := intParam(w, r, "id")
	if !ok {
		return
	}

	boon, err := h.catalogService.GetBoon(r.Context(), id)
	if err != nil {
		writeError(w, "catalog.GetBoon", err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(boon)
}

func (h *CatalogHandler) GetPrerequisites(w http.ResponseWriter, r *http.Request) {
	id, ok := intParam(w, r, "id")
	if !ok {
		return
	}

	details, err := h.catalogService.GetPrerequisiteDetails(r.Context(), id)
	if err != nil {
		writeError(w, "catalog.GetPrerequisites", err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(details)
}
