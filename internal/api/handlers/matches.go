package handlers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/your-org/reunite/internal/api/ws"
	"github.com/your-org/reunite/internal/models"
	"github.com/your-org/reunite/internal/observability"
	"github.com/your-org/reunite/internal/queue"
	"github.com/your-org/reunite/internal/recognition"
	"github.com/your-org/reunite/internal/storage"
	"github.com/your-org/reunite/pkg/dto"
)

// SearchNotifier pushes a search-status change to the recognition service in
// the background. Its failures never reach the resolution path.
type SearchNotifier interface {
	NotifySearchStatus(personID, action string)
}

// EventPublisher relays lifecycle events to external consumers (NATS).
type EventPublisher interface {
	Publish(ctx context.Context, subject string, data interface{}) error
}

// MatchHandler owns the match-notification lifecycle: ingestion from the
// recognition service and staff resolution of pending notifications.
type MatchHandler struct {
	db       storage.Store
	hub      ws.Broadcaster
	notifier SearchNotifier
	events   EventPublisher
}

func NewMatchHandler(db storage.Store, hub ws.Broadcaster, notifier SearchNotifier, events EventPublisher) *MatchHandler {
	return &MatchHandler{db: db, hub: hub, notifier: notifier, events: events}
}

func (h *MatchHandler) relay(subject string, data interface{}) {
	if h.events == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), queuePublishTimeout)
	defer cancel()
	if err := h.events.Publish(ctx, subject, data); err != nil {
		slog.Warn("relay event", "subject", subject, "error", err)
	}
}

// ReportMatch ingests a match report from the recognition service, persists
// the notification, and broadcasts it to connected dashboards. The response
// commits only to persistence; broadcast is best-effort.
func (h *MatchHandler) ReportMatch(c *gin.Context) {
	var req dto.MatchReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Bad Request: invalid JSON body"})
		return
	}

	// Validate field by field so the error names the first missing one.
	if req.MongoID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Bad Request: Missing required field [mongo_id]"})
		return
	}
	if req.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Bad Request: Missing required field [name]"})
		return
	}
	if req.Snapshot == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Bad Request: Missing required field [snapshot]"})
		return
	}

	personID, err := uuid.Parse(req.MongoID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Bad Request: Invalid field [mongo_id]"})
		return
	}

	cameraName := req.CameraName
	if cameraName == "" {
		cameraName = models.DefaultCameraName
	}

	n := &models.Notification{
		PersonID:   personID,
		PersonName: req.Name,
		Snapshot:   req.Snapshot,
		CameraName: cameraName,
	}
	if err := h.db.CreateNotification(c.Request.Context(), n); err != nil {
		slog.Error("save notification", "person_id", req.MongoID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to save notification."})
		return
	}

	observability.MatchesReported.Inc()
	slog.Info("match report saved", "notification_id", n.ID, "person", n.PersonName, "camera", n.CameraName)

	h.hub.Broadcast(&dto.WSEvent{
		Type: dto.EventNewMatchFound,
		Data: dto.NewMatchEvent{
			NotificationID: n.ID,
			PersonID:       req.MongoID,
			Name:           n.PersonName,
			Snapshot:       n.Snapshot,
		},
	})
	h.relay(queue.SubjectMatchReported, n)

	c.JSON(http.StatusOK, gin.H{"message": "Match received, saved, and broadcasted."})
}

// Resolve applies a staff decision to a pending notification.
//
// The accept path takes the notification atomically (delete-and-return), so
// a second resolution of the same notification fails with 404 instead of
// re-mutating the person. If the person mutation then fails, the taken
// notification is put back so the match is not silently lost.
func (h *MatchHandler) Resolve(c *gin.Context) {
	personID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid person id."})
		return
	}

	var req dto.ResolveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Bad Request: invalid JSON body"})
		return
	}

	switch req.Action {
	case recognition.ActionAccept:
		h.resolveAccept(c, personID, req.NotificationID)
	case recognition.ActionResearch:
		h.resolveResearch(c, personID, req.NotificationID)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid action."})
	}
}

func (h *MatchHandler) resolveAccept(c *gin.Context, personID uuid.UUID, notificationID string) {
	ctx := c.Request.Context()

	nID, err := uuid.Parse(notificationID)
	if err != nil {
		// An unparseable id cannot reference a live notification.
		c.JSON(http.StatusNotFound, gin.H{"message": "Associated notification not found."})
		return
	}

	n, err := h.db.TakeNotification(ctx, nID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "Associated notification not found."})
			return
		}
		slog.Error("take notification", "notification_id", nID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server Error"})
		return
	}

	person, err := h.db.MarkPersonFound(ctx, personID, n.Snapshot, n.CameraName)
	if err != nil {
		h.restoreNotification(n)
		if errors.Is(err, storage.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "Person not found"})
			return
		}
		slog.Error("mark person found", "person_id", personID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server Error"})
		return
	}

	slog.Info("person marked found",
		"person", person.FullName, "person_id", person.ID, "camera", person.FoundOnCamera)

	h.notifier.NotifySearchStatus(personID.String(), recognition.ActionAccept)

	found := dto.PersonFoundEvent{
		PersonID:   n.PersonID.String(),
		Name:       n.PersonName,
		Snapshot:   n.Snapshot,
		CameraName: n.CameraName,
	}
	h.hub.Broadcast(&dto.WSEvent{Type: dto.EventPersonFound, Data: found})
	h.relay(queue.SubjectPersonFound, found)

	observability.NotificationsResolved.WithLabelValues(recognition.ActionAccept).Inc()
	c.JSON(http.StatusOK, gin.H{"message": fmt.Sprintf("Status for %s updated to Found.", person.FullName)})
}

func (h *MatchHandler) resolveResearch(c *gin.Context, personID uuid.UUID, notificationID string) {
	h.notifier.NotifySearchStatus(personID.String(), recognition.ActionResearch)

	// Callers that only know the person id send no notification id; that is
	// not an error, and neither is the notification already being gone.
	if nID, err := uuid.Parse(notificationID); err == nil {
		if _, err := h.db.TakeNotification(c.Request.Context(), nID); err != nil && !errors.Is(err, storage.ErrNotFound) {
			slog.Error("delete notification", "notification_id", nID, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Server Error"})
			return
		}
	}

	h.relay(queue.SubjectPersonResearch, gin.H{"person_id": personID})

	observability.NotificationsResolved.WithLabelValues(recognition.ActionResearch).Inc()
	c.JSON(http.StatusOK, gin.H{"message": "Re-search initiated."})
}

// restoreNotification puts a taken notification back after a failed person
// mutation. Best-effort: losing it is logged, never surfaced.
func (h *MatchHandler) restoreNotification(n *models.Notification) {
	ctx, cancel := context.WithTimeout(context.Background(), queuePublishTimeout)
	defer cancel()
	if err := h.db.CreateNotification(ctx, n); err != nil {
		slog.Error("restore notification after failed accept", "notification_id", n.ID, "error", err)
	}
}
