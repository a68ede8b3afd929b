package storage

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/your-org/reunite/internal/models"
)

var (
	// ErrNotFound is returned when the requested record does not exist.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate is returned when a unique constraint is violated.
	ErrDuplicate = errors.New("already exists")
)

type PersonSort string

const (
	SortNewest  PersonSort = "newest"
	SortOldest  PersonSort = "oldest"
	SortAgeAsc  PersonSort = "age_asc"
	SortAgeDesc PersonSort = "age_desc"
)

// PersonQuery filters and orders the dashboard person listing.
type PersonQuery struct {
	Search string
	Sort   PersonSort
}

type PersonStore interface {
	// CreatePerson persists the person with its image records and one
	// embedding per image, atomically.
	CreatePerson(ctx context.Context, p *models.Person, images []models.PersonImage, embeddings [][]float32) error
	GetPerson(ctx context.Context, id uuid.UUID) (*models.Person, error)
	ListPersons(ctx context.Context, q PersonQuery) ([]models.Person, error)
	ListFoundPersons(ctx context.Context) ([]models.Person, error)
	ListPersonImages(ctx context.Context, personID uuid.UUID) ([]models.PersonImage, error)
	// MarkPersonFound flips a Lost person to Found and records the snapshot
	// and camera from the resolved notification. A person that is already
	// Found is returned unchanged; the transition happens at most once.
	MarkPersonFound(ctx context.Context, id uuid.UUID, snapshot, cameraName string) (*models.Person, error)
}

type NotificationStore interface {
	CreateNotification(ctx context.Context, n *models.Notification) error
	ListNotifications(ctx context.Context) ([]models.Notification, error)
	// TakeNotification removes the notification and returns its prior value
	// in one atomic operation, so two concurrent resolutions cannot both
	// observe it.
	TakeNotification(ctx context.Context, id uuid.UUID) (*models.Notification, error)
}

type StaffStore interface {
	CreateStaff(ctx context.Context, s *models.Staff) error
	GetStaffByStaffID(ctx context.Context, staffID string) (*models.Staff, error)
	GetStaffByPhone(ctx context.Context, phone string) (*models.Staff, error)
}

// Store is the full persistence surface the handlers are wired against.
type Store interface {
	PersonStore
	NotificationStore
	StaffStore
}
