package domain

import (
	"encoding/json"
	"time"

	"github.com/dom/hades-build-planner/internal/catalog"
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Visibility controls who can see a build
type Visibility string

const (
	VisibilityPublic   Visibility = "public"
	VisibilityUnlisted Visibility = "unlisted"
	VisibilityPrivate  Visibility = "private"
)

// IsValid checks if a visibility is valid
func (v Visibility) IsValid() bool {
	switch v {
	case VisibilityPublic, VisibilityUnlisted, VisibilityPrivate:
		return true
	}
	return false
}

// Tier is the author's own ranking of a build
type Tier string

const (
	TierS Tier = "s"
	TierA Tier = "a"
	TierB Tier = "b"
	TierC Tier = "c"
	TierD Tier = "d"
)

// AllTiers contains all valid tiers from best to worst
var AllTiers = []Tier{TierS, TierA, TierB, TierC, TierD}

// IsValid checks if a tier is valid. The empty tier means unranked.
func (t Tier) IsValid() bool {
	switch t {
	case "", TierS, TierA, TierB, TierC, TierD:
		return true
	}
	return false
}

// MaxDifficulty is the highest heat level a build can be rated for
const MaxDifficulty = 64

type Build struct {
	ID          uuid.UUID      `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	ShareCode   string         `json:"shareCode" gorm:"uniqueIndex;not null"`
	UserID      uuid.UUID      `json:"userId" gorm:"type:uuid;not null;index"`
	Name        string         `json:"name" gorm:"not null"`
	Description string         `json:"description"`
	Difficulty  int            `json:"difficulty" gorm:"not null;default:0"`
	Visibility  Visibility     `json:"visibility" gorm:"type:varchar(10);not null;default:'public';index"`
	Tier        Tier           `json:"tier" gorm:"type:varchar(2)"`
	WeaponID    int            `json:"weaponId" gorm:"not null;index"`
	AspectID    int            `json:"aspectId" gorm:"not null"`
	FamiliarID  *int           `json:"familiarId"`
	BoonIDs     datatypes.JSON `json:"boonIds" gorm:"type:jsonb;not null;default:'[]'"`
	GodIDs      datatypes.JSON `json:"godIds" gorm:"type:jsonb;not null;default:'[]'"` // gods of the selected boons, for filtering
	LikeCount   int            `json:"likeCount" gorm:"not null;default:0"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`

	// Relations
	User *User `json:"user,omitempty" gorm:"foreignKey:UserID"`
}

// Validate checks the metadata of a build. The selection itself is checked
// against the catalog by the build service.
func (b *Build) Validate() error {
	if b.Name == "" {
		return ErrBuildNameRequired
	}
	if !b.Visibility.IsValid() {
		return ErrInvalidVisibility
	}
	if !b.Tier.IsValid() {
		return ErrInvalidTier
	}
	if b.Difficulty < 0 || b.Difficulty > MaxDifficulty {
		return ErrInvalidDifficulty
	}
	return nil
}

// Selection decodes the stored loadout
func (b *Build) Selection() (catalog.Selection, error) {
	sel := catalog.Selection{
		WeaponID:   b.WeaponID,
		AspectID:   b.AspectID,
		FamiliarID: b.FamiliarID,
		BoonIDs:    []int{},
	}
	if len(b.BoonIDs) > 0 {
		if err := json.Unmarshal(b.BoonIDs, &sel.BoonIDs); err != nil {
			return catalog.Selection{}, err
		}
	}
	return sel, nil
}

// SetSelection stores sel on the build, resolving the gods of its boons from c
func (b *Build) SetSelection(c *catalog.Catalog, sel catalog.Selection) error {
	boonIDs := sel.BoonIDs
	if boonIDs == nil {
		boonIDs = []int{}
	}
	boonJSON, err := json.Marshal(boonIDs)
	if err != nil {
		return err
	}

	godIDs := []int{}
	seen := make(map[int]bool)
	for _, id := range sel.Distinct() {
		boon, ok := c.Boon(id)
		if !ok || boon.GodID == nil || seen[*boon.GodID] {
			continue
		}
		seen[*boon.GodID] = true
		godIDs = append(godIDs, *boon.GodID)
	}
	godJSON, err := json.Marshal(godIDs)
	if err != nil {
		return err
	}

	weaponID := sel.WeaponID
	if weaponID == 0 {
		if aspect, ok := c.Aspect(sel.AspectID); ok {
			weaponID = aspect.WeaponID
		}
	}

	b.WeaponID = weaponID
	b.AspectID = sel.AspectID
	b.FamiliarID = sel.FamiliarID
	b.BoonIDs = boonJSON
	b.GodIDs = godJSON
	return nil
}

// IsVisibleTo reports whether userID may read the build. A nil userID is an
// anonymous reader.
func (b *Build) IsVisibleTo(userID *uuid.UUID) bool {
	if b.Visibility != VisibilityPrivate {
		return true
	}
	return userID != nil && *userID == b.UserID
}

// BuildFavorite bookmarks a build for a user
type BuildFavorite struct {
	UserID    uuid.UUID `json:"userId" gorm:"type:uuid;primaryKey"`
	BuildID   uuid.UUID `json:"buildId" gorm:"type:uuid;primaryKey;index"`
	CreatedAt time.Time `json:"createdAt"`

	Build *Build `json:"build,omitempty" gorm:"foreignKey:BuildID;constraint:OnDelete:CASCADE"`
}

// BuildLike is a public endorsement, counted on Build.LikeCount
type BuildLike struct {
	UserID    uuid.UUID `json:"userId" gorm:"type:uuid;primaryKey"`
	BuildID   uuid.UUID `json:"buildId" gorm:"type:uuid;primaryKey;index"`
	CreatedAt time.Time `json:"createdAt"`

	Build *Build `json:"build,omitempty" gorm:"foreignKey:BuildID;constraint:OnDelete:CASCADE"`
}

// BuildFilter narrows a listing of public builds
type BuildFilter struct {
	GodID    *int
	WeaponID *int
	Tier     *Tier
	Limit    int
	Offset   int
}
