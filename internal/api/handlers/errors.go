package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/dom/hades-build-planner/internal/catalog"
	"github.com/dom/hades-build-planner/internal/domain"
	"github.com/dom/hades-build-planner/internal/service"
	"github.com/go-playground/validator/v10"
)

// requestValidate checks struct tags on request bodies
var requestValidate = validator.New()

// SelectionRequest is the selection part of builder and build requests.
// The boon limit only bounds request size. Ids are not range checked here;
// the engine reports unknown ones as structured validation errors.
type SelectionRequest struct {
	WeaponID   int   `json:"weaponId"`
	AspectID   int   `json:"aspectId"`
	FamiliarID *int  `json:"familiarId"`
	BoonIDs    []int `json:"boonIds" validate:"max=200"`
}

func (s SelectionRequest) Selection() catalog.Selection {
	return catalog.Selection{
		WeaponID:   s.WeaponID,
		AspectID:   s.AspectID,
		FamiliarID: s.FamiliarID,
		BoonIDs:    append([]int{}, s.BoonIDs...),
	}
}

// ValidationErrorResponse is the 422 body for selections that break catalog
// rules
type ValidationErrorResponse struct {
	Error  string                   `json:"error"`
	Errors catalog.ValidationErrors `json:"errors"`
}

// decodeAndValidate reads a JSON body into v and checks its validate tags.
// On failure it writes a 400 and returns false.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return false
	}
	if err := requestValidate.Struct(v); err != nil {
		http.Error(w, describeValidation(err), http.StatusBadRequest)
		return false
	}
	return true
}

func describeValidation(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return "Invalid request"
	}
	msgs := make([]string, len(verrs))
	for i, fe := range verrs {
		msgs[i] = fmt.Sprintf("%s failed %s", fe.Namespace(), fe.Tag())
	}
	return "Invalid request: " + strings.Join(msgs, ", ")
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError maps service and engine errors to responses. op names the
// handler in the log line.
func writeError(w http.ResponseWriter, op string, err error) {
	var (
		verrs     catalog.ValidationErrors
		buildErr  *service.BuildValidationError
		notFound  *catalog.NotFoundError
		integrity *catalog.IntegrityError
	)

	switch {
	case errors.As(err, &buildErr):
		writeJSON(w, http.StatusUnprocessableEntity, ValidationErrorResponse{
			Error:  "Build selection is invalid",
			Errors: buildErr.Errors,
		})
	case errors.As(err, &verrs):
		writeJSON(w, http.StatusUnprocessableEntity, ValidationErrorResponse{
			Error:  "Selection is invalid",
			Errors: verrs,
		})
	case errors.As(err, &notFound):
		http.Error(w, notFound.Error(), http.StatusNotFound)
	case errors.Is(err, domain.ErrBuildNotFound):
		http.Error(w, "Build not found", http.StatusNotFound)
	case errors.Is(err, domain.ErrNotBuildOwner):
		http.Error(w, "Only the author can change this build", http.StatusForbidden)
	case errors.Is(err, service.ErrInvalidCategory),
		errors.Is(err, service.ErrInvalidSlot),
		errors.Is(err, domain.ErrBuildNameRequired),
		errors.Is(err, domain.ErrInvalidVisibility),
		errors.Is(err, domain.ErrInvalidTier),
		errors.Is(err, domain.ErrInvalidDifficulty):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.As(err, &integrity):
		log.Printf("ERROR [%s] catalog integrity: %v", op, err)
		http.Error(w, "Catalog is unavailable", http.StatusServiceUnavailable)
	default:
		log.Printf("ERROR [%s]: %v", op, err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}
