package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/syncboard/syncboard/internal/realtime"
	"github.com/syncboard/syncboard/pkg/middleware"
)

// RealtimeHandler relays ephemeral presence events (cursor, typing) from a
// client to a document channel. Delivery is best-effort; the endpoint reports
// success even when the realtime backend is down.
type RealtimeHandler struct {
	notifier realtime.Notifier
}

func NewRealtimeHandler(n realtime.Notifier) *RealtimeHandler {
	if n == nil {
		n = realtime.NopNotifier{}
	}
	return &RealtimeHandler{notifier: n}
}

// Register routes under /realtime
func (h *RealtimeHandler) Register(rg *gin.RouterGroup) {
	rg.POST("/realtime", h.Broadcast)
}

// Broadcast publishes a client event, stamped with the sender's identity so
// receivers can attribute cursors and typing indicators.
func (h *RealtimeHandler) Broadcast(c *gin.Context) {
	claims := middleware.CurrentClaims(c)
	var req struct {
		ChannelName string                 `json:"channelName"`
		EventName   string                 `json:"eventName"`
		Data        map[string]interface{} `json:"data"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.ChannelName == "" || req.EventName == "" || req.Data == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required fields"})
		return
	}

	payload := make(map[string]interface{}, len(req.Data)+3)
	for k, v := range req.Data {
		payload[k] = v
	}
	payload["userId"] = claims.UserID
	payload["userName"] = claims.Name
	payload["avatarColor"] = claims.AvatarColor

	realtime.Fire(h.notifier, req.ChannelName, req.EventName, payload)

	c.JSON(http.StatusOK, gin.H{"success": true})
}
