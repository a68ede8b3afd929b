package models

import (
	"time"

	"github.com/google/uuid"
)

// DefaultCameraName is recorded when the recognition service reports a match
// without naming the camera. Part of the ingestion contract.
const DefaultCameraName = "N/A"

// Notification is the transient record of one pending match report. It is
// created by match ingestion and removed by staff resolution; it never
// outlives its resolution.
type Notification struct {
	ID         uuid.UUID `json:"id" db:"id"`
	PersonID   uuid.UUID `json:"person_id" db:"person_id"`
	PersonName string    `json:"person_name" db:"person_name"`
	Snapshot   string    `json:"snapshot" db:"snapshot"` // base64 jpeg from the camera
	CameraName string    `json:"camera_name" db:"camera_name"`
	IsRead     bool      `json:"is_read" db:"is_read"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}
