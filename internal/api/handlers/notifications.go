package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/your-org/reunite/internal/storage"
	"github.com/your-org/reunite/pkg/dto"
)

// queuePublishTimeout bounds background persistence and relay calls that run
// detached from a request context.
const queuePublishTimeout = 5 * time.Second

type NotificationHandler struct {
	db storage.NotificationStore
}

func NewNotificationHandler(db storage.NotificationStore) *NotificationHandler {
	return &NotificationHandler{db: db}
}

// List returns pending notifications, newest first. Dashboards load this on
// page load; live updates arrive over the websocket.
func (h *NotificationHandler) List(c *gin.Context) {
	notifications, err := h.db.ListNotifications(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server Error"})
		return
	}

	resp := make([]dto.NotificationResponse, 0, len(notifications))
	for _, n := range notifications {
		resp = append(resp, dto.NotificationResponse{
			ID:         n.ID,
			PersonID:   n.PersonID,
			PersonName: n.PersonName,
			Snapshot:   n.Snapshot,
			CameraName: n.CameraName,
			IsRead:     n.IsRead,
			CreatedAt:  n.CreatedAt.Format(time.RFC3339),
		})
	}

	c.JSON(http.StatusOK, gin.H{"notifications": resp, "total": len(resp)})
}
