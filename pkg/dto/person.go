package dto

import "github.com/google/uuid"

type PersonResponse struct {
	ID                    uuid.UUID `json:"id"`
	FullName              string    `json:"full_name"`
	Age                   int       `json:"age"`
	PersonContactNumber   string    `json:"person_contact_number,omitempty"`
	LastSeenLocation      string    `json:"last_seen_location"`
	LastSeenTime          string    `json:"last_seen_time"`
	IdentificationDetails string    `json:"identification_details"`
	IsMinor               bool      `json:"is_minor"`
	GuardianType          string    `json:"guardian_type,omitempty"`
	GuardianDetails       string    `json:"guardian_details,omitempty"`
	ReporterName          string    `json:"reporter_name"`
	ReporterRelation      string    `json:"reporter_relation"`
	ReporterContactNumber string    `json:"reporter_contact_number"`
	Status                string    `json:"status"`
	FoundSnapshot         string    `json:"found_snapshot,omitempty"`
	FoundOnCamera         string    `json:"found_on_camera,omitempty"`
	CreatedAt             string    `json:"created_at"`
	// DisplayImage is the first photo as a data URL, for list cards.
	DisplayImage string `json:"display_image,omitempty"`
	// ImageList holds every photo as a data URL, for the detail view.
	ImageList []string `json:"image_list,omitempty"`
}

type PersonListResponse struct {
	Persons []PersonResponse `json:"persons"`
	Total   int              `json:"total"`
}
