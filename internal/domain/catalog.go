package domain

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/dom/hades-build-planner/internal/catalog"
	"gorm.io/datatypes"
)

// God, Weapon, Aspect, Familiar and Boon are the persisted rows of the game
// catalog. Ids are assigned by the seed file, never by the database.

type God struct {
	ID       int       `json:"id" gorm:"primaryKey;autoIncrement:false"`
	Name     string    `json:"name" gorm:"not null"`
	SyncedAt time.Time `json:"syncedAt"`
}

type Weapon struct {
	ID       int       `json:"id" gorm:"primaryKey;autoIncrement:false"`
	Name     string    `json:"name" gorm:"not null"`
	SyncedAt time.Time `json:"syncedAt"`
}

type Aspect struct {
	ID       int       `json:"id" gorm:"primaryKey;autoIncrement:false"`
	WeaponID int       `json:"weaponId" gorm:"not null;index"`
	Name     string    `json:"name" gorm:"not null"`
	SyncedAt time.Time `json:"syncedAt"`
}

type Familiar struct {
	ID       int       `json:"id" gorm:"primaryKey;autoIncrement:false"`
	Name     string    `json:"name" gorm:"not null"`
	GodID    *int      `json:"godId"`
	SyncedAt time.Time `json:"syncedAt"`
}

type Boon struct {
	ID           int            `json:"id" gorm:"primaryKey;autoIncrement:false"`
	Name         string         `json:"name" gorm:"not null"`
	Description  string         `json:"description"`
	GodID        *int           `json:"godId" gorm:"index"`
	Category     string         `json:"category" gorm:"type:varchar(20);not null"`
	Slot         string         `json:"slot" gorm:"type:varchar(20)"`
	Prerequisite datatypes.JSON `json:"prerequisite" gorm:"type:jsonb;default:'{}'"` // catalog.Expression
	Incompatible datatypes.JSON `json:"incompatible" gorm:"type:jsonb;default:'[]'"` // []int
	MaxCount     int            `json:"maxCount" gorm:"not null;default:1"`
	SlotExempt   bool           `json:"slotExempt" gorm:"not null;default:false"`
	SyncedAt     time.Time      `json:"syncedAt"`
}

// CatalogRows is the complete persisted catalog
type CatalogRows struct {
	Gods      []*God
	Weapons   []*Weapon
	Aspects   []*Aspect
	Familiars []*Familiar
	Boons     []*Boon
}

// IsEmpty reports whether no boon has been stored yet
func (r *CatalogRows) IsEmpty() bool {
	return len(r.Boons) == 0
}

// NewCatalogRows converts loaded catalog data into rows stamped with syncedAt
func NewCatalogRows(raw catalog.RawData, syncedAt time.Time) (*CatalogRows, error) {
	rows := &CatalogRows{}
	for _, g := range raw.Gods {
		rows.Gods = append(rows.Gods, &God{ID: g.ID, Name: g.Name, SyncedAt: syncedAt})
	}
	for _, w := range raw.Weapons {
		rows.Weapons = append(rows.Weapons, &Weapon{ID: w.ID, Name: w.Name, SyncedAt: syncedAt})
	}
	for _, a := range raw.Aspects {
		rows.Aspects = append(rows.Aspects, &Aspect{ID: a.ID, WeaponID: a.WeaponID, Name: a.Name, SyncedAt: syncedAt})
	}
	for _, f := range raw.Familiars {
		rows.Familiars = append(rows.Familiars, &Familiar{ID: f.ID, Name: f.Name, GodID: f.GodID, SyncedAt: syncedAt})
	}
	for _, b := range raw.Boons {
		prereqJSON, err := json.Marshal(b.Prerequisite)
		if err != nil {
			return nil, fmt.Errorf("encode prerequisite of boon %d: %w", b.ID, err)
		}
		incompatible := b.Incompatible
		if incompatible == nil {
			incompatible = []int{}
		}
		incompatibleJSON, err := json.Marshal(incompatible)
		if err != nil {
			return nil, fmt.Errorf("encode incompatible of boon %d: %w", b.ID, err)
		}
		rows.Boons = append(rows.Boons, &Boon{
			ID:           b.ID,
			Name:         b.Name,
			Description:  b.Description,
			GodID:        b.GodID,
			Category:     string(b.Category),
			Slot:         string(b.Slot),
			Prerequisite: prereqJSON,
			Incompatible: incompatibleJSON,
			MaxCount:     b.MaxCount,
			SlotExempt:   b.SlotExempt,
			SyncedAt:     syncedAt,
		})
	}
	return rows, nil
}

// RawData converts the rows back into input for catalog.Load
func (r *CatalogRows) RawData() (catalog.RawData, error) {
	var raw catalog.RawData
	for _, g := range r.Gods {
		raw.Gods = append(raw.Gods, catalog.God{ID: g.ID, Name: g.Name})
	}
	for _, w := range r.Weapons {
		raw.Weapons = append(raw.Weapons, catalog.Weapon{ID: w.ID, Name: w.Name})
	}
	for _, a := range r.Aspects {
		raw.Aspects = append(raw.Aspects, catalog.Aspect{ID: a.ID, WeaponID: a.WeaponID, Name: a.Name})
	}
	for _, f := range r.Familiars {
		raw.Familiars = append(raw.Familiars, catalog.Familiar{ID: f.ID, Name: f.Name, GodID: f.GodID})
	}
	for _, b := range r.Boons {
		boon := catalog.Boon{
			ID:          b.ID,
			Name:        b.Name,
			Description: b.Description,
			GodID:       b.GodID,
			Category:    catalog.Category(b.Category),
			Slot:        catalog.Slot(b.Slot),
			MaxCount:    b.MaxCount,
			SlotExempt:  b.SlotExempt,
		}
		if len(b.Prerequisite) > 0 {
			if err := json.Unmarshal(b.Prerequisite, &boon.Prerequisite); err != nil {
				return catalog.RawData{}, fmt.Errorf("decode prerequisite of boon %d: %w", b.ID, err)
			}
		}
		if len(b.Incompatible) > 0 {
			if err := json.Unmarshal(b.Incompatible, &boon.Incompatible); err != nil {
				return catalog.RawData{}, fmt.Errorf("decode incompatible of boon %d: %w", b.ID, err)
			}
		}
		raw.Boons = append(raw.Boons, boon)
	}
	return raw, nil
}
