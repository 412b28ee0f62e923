package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/dom/hades-build-planner/internal/catalog"
	"github.com/dom/hades-build-planner/internal/metrics"
	"github.com/dom/hades-build-planner/internal/service"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 * 1024
)

// Client is one live editor connection. Its working selection is owned by
// the ReadPump goroutine.
type Client struct {
	hub       *Hub
	conn      *websocket.Conn
	send      chan []byte
	mu        sync.Mutex
	closed    bool
	userID    uuid.UUID
	catalog   *service.CatalogService
	selection catalog.Selection
}

func NewClient(hub *Hub, conn *websocket.Conn, userID uuid.UUID, catalogService *service.CatalogService) *Client {
	return &Client{
		hub:       hub,
		conn:      conn,
		send:      make(chan []byte, 256),
		userID:    userID,
		catalog:   catalogService,
		selection: catalog.NewSelection(),
	}
}

func (c *Client) ReadPump() {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("websocket error: %v", err)
			}
			break
		}

		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			log.Printf("failed to unmarshal message: %v", err)
			c.sendError(ErrCodeInvalidPayload, "Invalid message")
			continue
		}

		c.handleMessage(&msg)
	}
}

func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			if err := w.Close(); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) handleMessage(msg *Message) {
	ctx := context.Background()
	start := time.Now()

	switch msg.Type {
	case MessageTypeSetSelection:
		var payload SetSelectionPayload
		if err := json.Unmarshal(msg.Payload, &payload); err != nil {
			c.sendError(ErrCodeInvalidPayload, "Invalid set selection payload")
			return
		}
		c.updateSelection(ctx, payload.Selection(), start)

	case MessageTypeSelectBoon:
		var payload BoonPayload
		if err := json.Unmarshal(msg.Payload, &payload); err != nil {
			c.sendError(ErrCodeInvalidPayload, "Invalid select boon payload")
			return
		}
		ok, err := c.catalog.CanSelect(ctx, c.selection, payload.BoonID)
		if err != nil {
			c.sendEngineError(err, start)
			return
		}
		if !ok {
			metrics.ObserveBuilder(metrics.OpLiveUpdate, metrics.ResultInvalid, start)
			c.sendError(ErrCodeBoonUnavailable, fmt.Sprintf("boon %d cannot be selected", payload.BoonID))
			return
		}
		c.updateSelection(ctx, c.selection.With(payload.BoonID), start)

	case MessageTypeRemoveBoon:
		var payload BoonPayload
		if err := json.Unmarshal(msg.Payload, &payload); err != nil {
			c.sendError(ErrCodeInvalidPayload, "Invalid remove boon payload")
			return
		}
		next, ok := withoutOne(c.selection, payload.BoonID)
		if !ok {
			metrics.ObserveBuilder(metrics.OpLiveUpdate, metrics.ResultInvalid, start)
			c.sendError(ErrCodeBoonNotSelected, fmt.Sprintf("boon %d is not selected", payload.BoonID))
			return
		}
		c.updateSelection(ctx, next, start)

	case MessageTypeSyncState:
		c.updateSelection(ctx, c.selection, start)

	case MessageTypeValidate:
		// An empty payload validates the working selection.
		sel := c.selection
		if len(msg.Payload) > 0 && string(msg.Payload) != "null" {
			var payload SetSelectionPayload
			if err := json.Unmarshal(msg.Payload, &payload); err != nil {
				c.sendError(ErrCodeInvalidPayload, "Invalid validate payload")
				return
			}
			sel = payload.Selection()
		}
		result := c.catalog.ValidateBuild(ctx, sel)
		c.sendMessage(MessageTypeValidationResult, ValidationResultPayload{
			Selection:        sel,
			ValidationResult: result,
		})

	default:
		c.sendError(ErrCodeUnknownMessage, fmt.Sprintf("Unknown message type %q", msg.Type))
	}
}

// updateSelection recomputes availability for sel and makes it the working
// selection. A selection referencing unknown ids is rejected and the previous
// one kept.
func (c *Client) updateSelection(ctx context.Context, sel catalog.Selection, start time.Time) {
	availability, err := c.catalog.GetAvailableBoons(ctx, sel)
	if err != nil {
		c.sendEngineError(err, start)
		return
	}

	c.selection = sel
	metrics.ObserveBuilder(metrics.OpLiveUpdate, metrics.ResultOK, start)
	c.sendMessage(MessageTypeAvailability, AvailabilityPayload{
		Selection:    sel,
		Availability: availability,
	})
}

func (c *Client) sendEngineError(err error, start time.Time) {
	metrics.ObserveBuilder(metrics.OpLiveUpdate, metrics.ResultInvalid, start)

	var verrs catalog.ValidationErrors
	if errors.As(err, &verrs) {
		c.sendMessage(MessageTypeError, ErrorPayload{
			Code:    ErrCodeInvalidSelection,
			Message: "Selection references unknown catalog entries",
			Errors:  verrs,
		})
		return
	}
	c.sendError(ErrCodeInvalidSelection, err.Error())
}

// withoutOne removes the most recent copy of boonID
func withoutOne(sel catalog.Selection, boonID int) (catalog.Selection, bool) {
	for i := len(sel.BoonIDs) - 1; i >= 0; i-- {
		if sel.BoonIDs[i] != boonID {
			continue
		}
		next := sel
		next.BoonIDs = make([]int, 0, len(sel.BoonIDs)-1)
		next.BoonIDs = append(next.BoonIDs, sel.BoonIDs[:i]...)
		next.BoonIDs = append(next.BoonIDs, sel.BoonIDs[i+1:]...)
		return next, true
	}
	return sel, false
}

func (c *Client) sendError(code, message string) {
	c.sendMessage(MessageTypeError, ErrorPayload{
		Code:    code,
		Message: message,
	})
}

func (c *Client) sendMessage(msgType MessageType, payload interface{}) {
	msg, err := NewMessage(msgType, payload)
	if err != nil {
		log.Printf("failed to build %s message: %v", msgType, err)
		return
	}
	c.Send(msg)
}

func (c *Client) Send(msg *Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("failed to marshal message: %v", err)
		return
	}
	c.trySend(data)
}

// trySend drops the message when the client is not keeping up or has been
// closed
func (c *Client) trySend(data []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return false
	}
	select {
	case c.send <- data:
		return true
	default:
		return false
	}
}

// Close stops WritePump. Safe to call more than once.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

func (c *Client) UserID() uuid.UUID {
	return c.userID
}
