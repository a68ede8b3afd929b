package dto

import "github.com/google/uuid"

// MatchReportRequest is the payload the recognition service posts when a live
// camera detection matches a reported person. Field names are part of the
// service-to-service contract.
type MatchReportRequest struct {
	MongoID    string `json:"mongo_id"`
	Name       string `json:"name"`
	Snapshot   string `json:"snapshot"`
	CameraName string `json:"camera_name"`
}

// ResolveRequest is the staff decision on a pending match.
type ResolveRequest struct {
	Action         string `json:"action"`
	NotificationID string `json:"notificationId"`
}

// WebSocket event types pushed to connected dashboard sessions.
const (
	EventNewMatchFound = "new_match_found"
	EventPersonFound   = "person_found"
)

// WSEvent is the envelope for realtime dashboard messages.
type WSEvent struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// NewMatchEvent announces a freshly persisted notification.
type NewMatchEvent struct {
	NotificationID uuid.UUID `json:"notificationId"`
	PersonID       string    `json:"mongo_id"`
	Name           string    `json:"name"`
	Snapshot       string    `json:"snapshot"`
}

// PersonFoundEvent lets other connected clients retract a resolved card.
type PersonFoundEvent struct {
	PersonID   string `json:"_id"`
	Name       string `json:"name"`
	Snapshot   string `json:"snapshot"`
	CameraName string `json:"cameraName"`
}

// NotificationResponse is one pending notification on the dashboard reload
// path.
type NotificationResponse struct {
	ID         uuid.UUID `json:"id"`
	PersonID   uuid.UUID `json:"person_id"`
	PersonName string    `json:"person_name"`
	Snapshot   string    `json:"snapshot"`
	CameraName string    `json:"camera_name"`
	IsRead     bool      `json:"is_read"`
	CreatedAt  string    `json:"created_at"`
}
