package storage

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/your-org/reunite/internal/models"
)

// MemoryStore is an in-memory Store used by tests and local development.
// Semantics match PostgresStore, including the atomic notification take.
type MemoryStore struct {
	mu            sync.Mutex
	persons       map[uuid.UUID]models.Person
	images        map[uuid.UUID][]models.PersonImage
	embeddings    map[uuid.UUID][]models.FaceEmbedding
	notifications map[uuid.UUID]models.Notification
	staff         map[uuid.UUID]models.Staff
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		persons:       make(map[uuid.UUID]models.Person),
		images:        make(map[uuid.UUID][]models.PersonImage),
		embeddings:    make(map[uuid.UUID][]models.FaceEmbedding),
		notifications: make(map[uuid.UUID]models.Notification),
		staff:         make(map[uuid.UUID]models.Staff),
	}
}

func (s *MemoryStore) CreatePerson(_ context.Context, p *models.Person, images []models.PersonImage, embeddings [][]float32) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	now := time.Now()
	p.Status = models.StatusLost
	p.CreatedAt = now
	p.UpdatedAt = now
	s.persons[p.ID] = *p

	for i := range images {
		img := &images[i]
		if img.ID == uuid.Nil {
			img.ID = uuid.New()
		}
		img.PersonID = p.ID
		img.Position = i
		img.CreatedAt = now
		s.images[p.ID] = append(s.images[p.ID], *img)

		if i < len(embeddings) && len(embeddings[i]) > 0 {
			s.embeddings[p.ID] = append(s.embeddings[p.ID], models.FaceEmbedding{
				ID:        uuid.New(),
				PersonID:  p.ID,
				Embedding: embeddings[i],
				SourceKey: img.ObjectKey,
				CreatedAt: now,
			})
		}
	}
	return nil
}

func (s *MemoryStore) GetPerson(_ context.Context, id uuid.UUID) (*models.Person, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.persons[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &p, nil
}

func (s *MemoryStore) ListPersons(_ context.Context, q PersonQuery) ([]models.Person, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var persons []models.Person
	needle := strings.ToLower(q.Search)
	for _, p := range s.persons {
		if needle != "" &&
			!strings.Contains(strings.ToLower(p.FullName), needle) &&
			!strings.Contains(strings.ToLower(p.LastSeenLocation), needle) {
			continue
		}
		persons = append(persons, p)
	}

	sort.Slice(persons, func(i, j int) bool {
		switch q.Sort {
		case SortOldest:
			return persons[i].CreatedAt.Before(persons[j].CreatedAt)
		case SortAgeAsc:
			return persons[i].Age < persons[j].Age
		case SortAgeDesc:
			return persons[i].Age > persons[j].Age
		default:
			return persons[i].CreatedAt.After(persons[j].CreatedAt)
		}
	})
	return persons, nil
}

func (s *MemoryStore) ListFoundPersons(_ context.Context) ([]models.Person, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var persons []models.Person
	for _, p := range s.persons {
		if p.Status == models.StatusFound {
			persons = append(persons, p)
		}
	}
	sort.Slice(persons, func(i, j int) bool {
		return persons[i].CreatedAt.After(persons[j].CreatedAt)
	})
	return persons, nil
}

func (s *MemoryStore) ListPersonImages(_ context.Context, personID uuid.UUID) ([]models.PersonImage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	images := make([]models.PersonImage, len(s.images[personID]))
	copy(images, s.images[personID])
	return images, nil
}

func (s *MemoryStore) MarkPersonFound(_ context.Context, id uuid.UUID, snapshot, cameraName string) (*models.Person, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.persons[id]
	if !ok {
		return nil, ErrNotFound
	}
	if p.Status == models.StatusFound {
		return &p, nil
	}
	p.Status = models.StatusFound
	p.FoundSnapshot = snapshot
	p.FoundOnCamera = cameraName
	p.UpdatedAt = time.Now()
	s.persons[id] = p
	return &p, nil
}

func (s *MemoryStore) CreateNotification(_ context.Context, n *models.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	if n.CameraName == "" {
		n.CameraName = models.DefaultCameraName
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}
	s.notifications[n.ID] = *n
	return nil
}

func (s *MemoryStore) ListNotifications(_ context.Context) ([]models.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var notifications []models.Notification
	for _, n := range s.notifications {
		notifications = append(notifications, n)
	}
	sort.Slice(notifications, func(i, j int) bool {
		return notifications[i].CreatedAt.After(notifications[j].CreatedAt)
	})
	return notifications, nil
}

func (s *MemoryStore) TakeNotification(_ context.Context, id uuid.UUID) (*models.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.notifications[id]
	if !ok {
		return nil, ErrNotFound
	}
	delete(s.notifications, id)
	return &n, nil
}

func (s *MemoryStore) CreateStaff(_ context.Context, st *models.Staff) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.staff {
		if existing.StaffID == st.StaffID || existing.PhoneNumber == st.PhoneNumber {
			return ErrDuplicate
		}
	}
	if st.ID == uuid.Nil {
		st.ID = uuid.New()
	}
	if st.Role == "" {
		st.Role = models.RoleGroundStaff
	}
	if st.AssignedZone == "" {
		st.AssignedZone = "General"
	}
	st.IsActive = true
	st.CreatedAt = time.Now()
	s.staff[st.ID] = *st
	return nil
}

func (s *MemoryStore) GetStaffByStaffID(_ context.Context, staffID string) (*models.Staff, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, st := range s.staff {
		if st.StaffID == staffID {
			staff := st
			return &staff, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) GetStaffByPhone(_ context.Context, phone string) (*models.Staff, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, st := range s.staff {
		if st.PhoneNumber == phone {
			staff := st
			return &staff, nil
		}
	}
	return nil, ErrNotFound
}
