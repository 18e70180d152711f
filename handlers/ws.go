package handlers

import (
	"encoding/json"
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/olahol/melody"
)

// WSHandler pushes live update signals to clients watching a split, so two
// people assigning items on the same receipt see each other's changes.
type WSHandler struct {
	M *melody.Melody
}

func NewWSHandler() *WSHandler {
	m := melody.New()

	m.Config.MaxMessageSize = 1024 * 1024

	// Keep-alive for cloud hosts that drop idle connections.
	m.Config.PingPeriod = 30 * time.Second
	m.Config.PongWait = 60 * time.Second

	m.HandleConnect(func(s *melody.Session) {
		receiptID, _ := s.Get("receipt_id")
		log.Printf("Client connected to receipt: %v", receiptID)
	})

	m.HandleDisconnect(func(s *melody.Session) {
		receiptID, _ := s.Get("receipt_id")
		log.Printf("Client disconnected from receipt: %v", receiptID)
	})

	m.HandleError(func(s *melody.Session, err error) {
		log.Printf("WebSocket error: %v", err)
	})

	return &WSHandler{M: m}
}

// HandleWS upgrades the request and pins the session to a receipt. The
// receipt id travels as a session key so concurrent upgrades to different
// receipts never see each other's id.
func (h *WSHandler) HandleWS(c *gin.Context) {
	keys := map[string]interface{}{"receipt_id": c.Param("id")}
	if err := h.M.HandleRequestWithKeys(c.Writer, c.Request, keys); err != nil {
		log.Printf("Failed to upgrade websocket: %v", err)
	}
}

// BroadcastUpdate signals every client watching this receipt.
func (h *WSHandler) BroadcastUpdate(receiptID, updateType, userWhoUpdated string) {
	msg, err := json.Marshal(gin.H{"type": updateType, "user": userWhoUpdated})
	if err != nil {
		return
	}

	err = h.M.BroadcastFilter(msg, func(q *melody.Session) bool {
		id, exists := q.Get("receipt_id")
		return exists && id == receiptID
	})
	if err != nil {
		log.Printf("Error broadcasting to receipt %s: %v", receiptID, err)
	}
}
