package handlers

import (
	"log"
	"net/http"

	"github.com/dom/hades-build-planner/internal/service"
	"github.com/dom/hades-build-planner/internal/websocket"
	ws "github.com/gorilla/websocket"
)

type WebSocketHandler struct {
	hub            *websocket.Hub
	authService    *service.AuthService
	catalogService *service.CatalogService
	upgrader       ws.Upgrader
}

// NewWebSocketHandler creates the live editor endpoint. With anyOrigin unset
// the upgrader only accepts same-origin browsers.
func NewWebSocketHandler(hub *websocket.Hub, authService *service.AuthService, catalogService *service.CatalogService, anyOrigin bool) *WebSocketHandler {
	upgrader := ws.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
	}
	if anyOrigin {
		upgrader.CheckOrigin = func(r *http.Request) bool {
			return true
		}
	}

	return &WebSocketHandler{
		hub:            hub,
		authService:    authService,
		catalogService: catalogService,
		upgrader:       upgrader,
	}
}

func (h *WebSocketHandler) Handle(w http.ResponseWriter, r *http.Request) {
	// Get token from query parameter
	token := r.URL.Query().Get("token")
	if token == "" {
		http.Error(w, "Token required", http.StatusUnauthorized)
		return
	}

	claims, err := h.authService.ValidateToken(token)
	if err != nil {
		http.Error(w, "Invalid token", http.StatusUnauthorized)
		return
	}

	userID, err := claims.UserID()
	if err != nil {
		http.Error(w, "Invalid user ID", http.StatusUnauthorized)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade error: %v", err)
		return
	}

	client := websocket.NewClient(h.hub, conn, userID, h.catalogService)
	h.hub.Register(client)

	go client.WritePump()
	go client.ReadPump()
}
