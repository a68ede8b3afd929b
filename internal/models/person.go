package models

import (
	"time"

	"github.com/google/uuid"
)

type PersonStatus string

const (
	StatusLost  PersonStatus = "Lost"
	StatusFound PersonStatus = "Found"
)

// AdultAge is the age at which guardian details stop being required.
const AdultAge = 18

type Person struct {
	ID                    uuid.UUID    `json:"id" db:"id"`
	FullName              string       `json:"full_name" db:"full_name"`
	Age                   int          `json:"age" db:"age"`
	PersonContactNumber   string       `json:"person_contact_number,omitempty" db:"person_contact_number"`
	LastSeenLocation      string       `json:"last_seen_location" db:"last_seen_location"`
	LastSeenTime          time.Time    `json:"last_seen_time" db:"last_seen_time"`
	IdentificationDetails string       `json:"identification_details" db:"identification_details"`
	IsMinor               bool         `json:"is_minor" db:"is_minor"`
	GuardianType          string       `json:"guardian_type,omitempty" db:"guardian_type"`
	GuardianDetails       string       `json:"guardian_details,omitempty" db:"guardian_details"`
	ReporterName          string       `json:"reporter_name" db:"reporter_name"`
	ReporterRelation      string       `json:"reporter_relation" db:"reporter_relation"`
	ReporterContactNumber string       `json:"reporter_contact_number" db:"reporter_contact_number"`
	Status                PersonStatus `json:"status" db:"status"`
	FoundSnapshot         string       `json:"found_snapshot,omitempty" db:"found_snapshot"`
	FoundOnCamera         string       `json:"found_on_camera,omitempty" db:"found_on_camera"`
	CreatedAt             time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt             time.Time    `json:"updated_at" db:"updated_at"`
}

// PersonImage is one uploaded photo of a reported person. The bytes live in
// object storage under ObjectKey; only the key and content type are kept here.
type PersonImage struct {
	ID          uuid.UUID `json:"id" db:"id"`
	PersonID    uuid.UUID `json:"person_id" db:"person_id"`
	ObjectKey   string    `json:"object_key" db:"object_key"`
	ContentType string    `json:"content_type" db:"content_type"`
	Position    int       `json:"position" db:"position"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// FaceEmbedding is the vector the recognition service computed for one
// accepted report image. Written once at report time, excluded from the
// default person reads.
type FaceEmbedding struct {
	ID        uuid.UUID `json:"id" db:"id"`
	PersonID  uuid.UUID `json:"person_id" db:"person_id"`
	Embedding []float32 `json:"-" db:"embedding"`
	SourceKey string    `json:"source_key" db:"source_key"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
