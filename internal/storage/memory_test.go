package storage

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/your-org/reunite/internal/models"
)

func newLostPerson(t *testing.T, s *MemoryStore, name string, age int) *models.Person {
	t.Helper()
	p := &models.Person{
		FullName:              name,
		Age:                   age,
		PersonContactNumber:   "555-0100",
		LastSeenLocation:      "Central Station",
		LastSeenTime:          time.Now(),
		IdentificationDetails: "red jacket",
		ReporterName:          "Reporter",
		ReporterRelation:      "Friend",
		ReporterContactNumber: "555-0101",
	}
	require.NoError(t, s.CreatePerson(context.Background(), p, nil, nil))
	return p
}

func TestCreatePersonDefaults(t *testing.T) {
	s := NewMemoryStore()
	p := newLostPerson(t, s, "Asha", 30)

	assert.NotEqual(t, uuid.Nil, p.ID)
	assert.Equal(t, models.StatusLost, p.Status)
	assert.False(t, p.CreatedAt.IsZero())
}

func TestCreatePersonStoresImagesAndEmbeddings(t *testing.T) {
	s := NewMemoryStore()
	p := &models.Person{FullName: "Asha", Age: 30}
	images := []models.PersonImage{
		{ObjectKey: "persons/x/0_a.jpg", ContentType: "image/jpeg"},
		{ObjectKey: "persons/x/1_b.jpg", ContentType: "image/jpeg"},
		{ObjectKey: "persons/x/2_c.jpg", ContentType: "image/jpeg"},
	}
	embeddings := [][]float32{{0.1}, {0.2}, {0.3}}
	require.NoError(t, s.CreatePerson(context.Background(), p, images, embeddings))

	stored, err := s.ListPersonImages(context.Background(), p.ID)
	require.NoError(t, err)
	require.Len(t, stored, 3)
	for i, img := range stored {
		assert.Equal(t, i, img.Position)
		assert.Equal(t, p.ID, img.PersonID)
	}
	assert.Len(t, s.embeddings[p.ID], 3)
}

func TestMarkPersonFoundIsOneWay(t *testing.T) {
	s := NewMemoryStore()
	p := newLostPerson(t, s, "Asha", 30)

	found, err := s.MarkPersonFound(context.Background(), p.ID, "snap-1", "Gate 4")
	require.NoError(t, err)
	assert.Equal(t, models.StatusFound, found.Status)
	assert.Equal(t, "snap-1", found.FoundSnapshot)
	assert.Equal(t, "Gate 4", found.FoundOnCamera)

	// Second transition attempt must not overwrite the original sighting.
	again, err := s.MarkPersonFound(context.Background(), p.ID, "snap-2", "Gate 9")
	require.NoError(t, err)
	assert.Equal(t, "snap-1", again.FoundSnapshot)
	assert.Equal(t, "Gate 4", again.FoundOnCamera)
}

func TestMarkPersonFoundUnknown(t *testing.T) {
	s := NewMemoryStore()
	_, err := s.MarkPersonFound(context.Background(), uuid.New(), "snap", "Gate 1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTakeNotificationIsAtomic(t *testing.T) {
	s := NewMemoryStore()
	n := &models.Notification{
		PersonID:   uuid.New(),
		PersonName: "Asha",
		Snapshot:   "snap",
	}
	require.NoError(t, s.CreateNotification(context.Background(), n))

	// Many concurrent takers; exactly one may win.
	const takers = 16
	var wg sync.WaitGroup
	wins := make(chan *models.Notification, takers)
	for i := 0; i < takers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if got, err := s.TakeNotification(context.Background(), n.ID); err == nil {
				wins <- got
			}
		}()
	}
	wg.Wait()
	close(wins)

	var winners []*models.Notification
	for w := range wins {
		winners = append(winners, w)
	}
	require.Len(t, winners, 1)
	assert.Equal(t, n.ID, winners[0].ID)

	remaining, err := s.ListNotifications(context.Background())
	require.NoError(t, err)
	assert.Empty(t, remaining)
}

func TestCreateNotificationDefaultsCamera(t *testing.T) {
	s := NewMemoryStore()
	n := &models.Notification{PersonID: uuid.New(), PersonName: "Asha", Snapshot: "snap"}
	require.NoError(t, s.CreateNotification(context.Background(), n))
	assert.Equal(t, models.DefaultCameraName, n.CameraName)
}

func TestListNotificationsNewestFirst(t *testing.T) {
	s := NewMemoryStore()
	old := &models.Notification{PersonID: uuid.New(), PersonName: "Old", Snapshot: "a", CreatedAt: time.Now().Add(-time.Hour)}
	fresh := &models.Notification{PersonID: uuid.New(), PersonName: "Fresh", Snapshot: "b", CreatedAt: time.Now()}
	require.NoError(t, s.CreateNotification(context.Background(), old))
	require.NoError(t, s.CreateNotification(context.Background(), fresh))

	got, err := s.ListNotifications(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Fresh", got[0].PersonName)
	assert.Equal(t, "Old", got[1].PersonName)
}

func TestListPersonsSearchAndSort(t *testing.T) {
	s := NewMemoryStore()
	newLostPerson(t, s, "Asha Verma", 30)
	time.Sleep(2 * time.Millisecond)
	newLostPerson(t, s, "Ravi Kumar", 8)
	time.Sleep(2 * time.Millisecond)
	newLostPerson(t, s, "Meera Asha", 62)

	got, err := s.ListPersons(context.Background(), PersonQuery{Search: "asha"})
	require.NoError(t, err)
	require.Len(t, got, 2)

	got, err = s.ListPersons(context.Background(), PersonQuery{Sort: SortAgeAsc})
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, 8, got[0].Age)
	assert.Equal(t, 62, got[2].Age)

	got, err = s.ListPersons(context.Background(), PersonQuery{Sort: SortOldest})
	require.NoError(t, err)
	assert.Equal(t, "Asha Verma", got[0].FullName)

	got, err = s.ListPersons(context.Background(), PersonQuery{})
	require.NoError(t, err)
	assert.Equal(t, "Meera Asha", got[0].FullName, "default sort is newest first")
}

func TestListFoundPersonsFiltersByStatus(t *testing.T) {
	s := NewMemoryStore()
	lost := newLostPerson(t, s, "Still Lost", 30)
	found := newLostPerson(t, s, "Reunited", 25)
	_, err := s.MarkPersonFound(context.Background(), found.ID, "snap", "Gate 2")
	require.NoError(t, err)

	got, err := s.ListFoundPersons(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, found.ID, got[0].ID)
	assert.NotEqual(t, lost.ID, got[0].ID)
}

func TestCreateStaffDuplicates(t *testing.T) {
	s := NewMemoryStore()
	first := &models.Staff{FullName: "Priya", StaffID: "GS-1", PhoneNumber: "555-0200", PasswordHash: "h"}
	require.NoError(t, s.CreateStaff(context.Background(), first))
	assert.Equal(t, models.RoleGroundStaff, first.Role)
	assert.True(t, first.IsActive)

	sameID := &models.Staff{FullName: "Other", StaffID: "GS-1", PhoneNumber: "555-0300", PasswordHash: "h"}
	assert.ErrorIs(t, s.CreateStaff(context.Background(), sameID), ErrDuplicate)

	samePhone := &models.Staff{FullName: "Other", StaffID: "GS-2", PhoneNumber: "555-0200", PasswordHash: "h"}
	assert.ErrorIs(t, s.CreateStaff(context.Background(), samePhone), ErrDuplicate)
}

func TestStaffLookups(t *testing.T) {
	s := NewMemoryStore()
	st := &models.Staff{FullName: "Priya", StaffID: "GS-1", PhoneNumber: "555-0200", PasswordHash: "h"}
	require.NoError(t, s.CreateStaff(context.Background(), st))

	byID, err := s.GetStaffByStaffID(context.Background(), "GS-1")
	require.NoError(t, err)
	assert.Equal(t, st.ID, byID.ID)

	byPhone, err := s.GetStaffByPhone(context.Background(), "555-0200")
	require.NoError(t, err)
	assert.Equal(t, st.ID, byPhone.ID)

	_, err = s.GetStaffByStaffID(context.Background(), "GS-404")
	assert.ErrorIs(t, err, ErrNotFound)
}
