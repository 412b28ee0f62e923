package websocket

import (
	"encoding/json"
	"time"

	"github.com/dom/hades-build-planner/internal/catalog"
	"github.com/dom/hades-build-planner/internal/service"
)

type MessageType string

const (
	// Client to Server
	MessageTypeSetSelection MessageType = "SET_SELECTION"
	MessageTypeSelectBoon   MessageType = "SELECT_BOON"
	MessageTypeRemoveBoon   MessageType = "REMOVE_BOON"
	MessageTypeValidate     MessageType = "VALIDATE"
	MessageTypeSyncState    MessageType = "SYNC_STATE"

	// Server to Client
	MessageTypeAvailability     MessageType = "AVAILABILITY"
	MessageTypeValidationResult MessageType = "VALIDATION_RESULT"
	MessageTypeBuildPublished   MessageType = "BUILD_PUBLISHED"
	MessageTypeError            MessageType = "ERROR"
)

// Error codes sent in ErrorPayload
const (
	ErrCodeInvalidPayload   = "INVALID_PAYLOAD"
	ErrCodeUnknownMessage   = "UNKNOWN_MESSAGE"
	ErrCodeInvalidSelection = "INVALID_SELECTION"
	ErrCodeBoonUnavailable  = "BOON_UNAVAILABLE"
	ErrCodeBoonNotSelected  = "BOON_NOT_SELECTED"
)

type Message struct {
	Type      MessageType     `json:"type"`
	Payload   json.RawMessage `json:"payload"`
	Timestamp int64           `json:"timestamp"`
	Seq       int             `json:"seq,omitempty"`
}

func NewMessage(msgType MessageType, payload interface{}) (*Message, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &Message{
		Type:      msgType,
		Payload:   payloadBytes,
		Timestamp: time.Now().UnixMilli(),
	}, nil
}

// Client to Server payloads

// SetSelectionPayload replaces the client's working selection
type SetSelectionPayload struct {
	WeaponID   int   `json:"weaponId"`
	AspectID   int   `json:"aspectId"`
	FamiliarID *int  `json:"familiarId"`
	BoonIDs    []int `json:"boonIds"`
}

func (p SetSelectionPayload) Selection() catalog.Selection {
	return catalog.Selection{
		WeaponID:   p.WeaponID,
		AspectID:   p.AspectID,
		FamiliarID: p.FamiliarID,
		BoonIDs:    append([]int{}, p.BoonIDs...),
	}
}

type BoonPayload struct {
	BoonID int `json:"boonId"`
}

// Server to Client payloads

// AvailabilityPayload is sent after every change to the working selection
type AvailabilityPayload struct {
	Selection    catalog.Selection     `json:"selection"`
	Availability *catalog.Availability `json:"availability"`
}

type ValidationResultPayload struct {
	Selection catalog.Selection `json:"selection"`
	*service.ValidationResult
}

type BuildPublishedPayload struct {
	ID        string `json:"id"`
	ShareCode string `json:"shareCode"`
	Name      string `json:"name"`
	UserID    string `json:"userId"`
	WeaponID  int    `json:"weaponId"`
	AspectID  int    `json:"aspectId"`
	Tier      string `json:"tier,omitempty"`
}

type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	// Errors is set for INVALID_SELECTION
	Errors catalog.ValidationErrors `json:"errors,omitempty"`
}
