package handlers_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/your-org/reunite/internal/api"
	"github.com/your-org/reunite/internal/api/ws"
	"github.com/your-org/reunite/internal/auth"
	"github.com/your-org/reunite/internal/models"
	"github.com/your-org/reunite/internal/recognition"
	"github.com/your-org/reunite/internal/storage"
)

type notifyCall struct {
	PersonID string
	Action   string
}

type fakeNotifier struct {
	mu    sync.Mutex
	calls []notifyCall
}

func (f *fakeNotifier) NotifySearchStatus(personID, action string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, notifyCall{PersonID: personID, Action: action})
}

func (f *fakeNotifier) Calls() []notifyCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]notifyCall, len(f.calls))
	copy(out, f.calls)
	return out
}

type fakeImages struct {
	mu      sync.Mutex
	objects map[string][]byte
	types   map[string]string
	putErr  error
}

func newFakeImages() *fakeImages {
	return &fakeImages{
		objects: make(map[string][]byte),
		types:   make(map[string]string),
	}
}

func (f *fakeImages) PutObject(_ context.Context, key string, data []byte, contentType string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.putErr != nil {
		return f.putErr
	}
	f.objects[key] = data
	f.types[key] = contentType
	return nil
}

func (f *fakeImages) GetObject(_ context.Context, key string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.objects[key]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return data, nil
}

func (f *fakeImages) DeleteObjects(_ context.Context, keys []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, key := range keys {
		delete(f.objects, key)
		delete(f.types, key)
	}
	return nil
}

type stubVerifier struct {
	mu        sync.Mutex
	result    *recognition.VerifyResult
	err       error
	refreshed int
}

func (s *stubVerifier) VerifyFaceSet(_ context.Context, images []recognition.ImageFile) (*recognition.VerifyResult, error) {
	if s.err != nil {
		return nil, s.err
	}
	if s.result != nil {
		return s.result, nil
	}
	embeddings := make([][]float32, len(images))
	for i := range embeddings {
		embeddings[i] = []float32{0.1, 0.2, 0.3}
	}
	return &recognition.VerifyResult{Success: true, Embeddings: embeddings}, nil
}

func (s *stubVerifier) RefreshIndex(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refreshed++
	return nil
}

type testEnv struct {
	router   *gin.Engine
	db       *storage.MemoryStore
	images   *fakeImages
	notifier *fakeNotifier
	verifier *stubVerifier
	sessions *auth.SessionManager
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	hub := ws.NewHub()
	go hub.Run()

	env := &testEnv{
		db:       storage.NewMemoryStore(),
		images:   newFakeImages(),
		notifier: &fakeNotifier{},
		verifier: &stubVerifier{},
		sessions: auth.NewSessionManager(time.Hour),
	}
	env.router = api.NewRouter(api.RouterConfig{
		DB:       env.db,
		Images:   env.images,
		Hub:      hub,
		Sessions: env.sessions,
		Verifier: env.verifier,
		Notifier: env.notifier,
	})
	return env
}

// postJSONRaw serves a prepared request through the router.
func postJSONRaw(env *testEnv, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	return rec
}

// sessionCookie issues a valid staff session and returns its cookie.
func (e *testEnv) sessionCookie() *http.Cookie {
	s := e.sessions.Create(uuid.New(), "tester")
	return &http.Cookie{Name: auth.CookieName, Value: s.Token}
}

// seedLostPerson inserts a Lost person directly into the store.
func (e *testEnv) seedLostPerson(t *testing.T, name string) *models.Person {
	t.Helper()
	p := &models.Person{
		FullName:              name,
		Age:                   30,
		PersonContactNumber:   "555-0100",
		LastSeenLocation:      "Central Station",
		LastSeenTime:          time.Now().Add(-2 * time.Hour),
		IdentificationDetails: "red jacket",
		ReporterName:          "Reporter",
		ReporterRelation:      "Friend",
		ReporterContactNumber: "555-0101",
	}
	if err := e.db.CreatePerson(context.Background(), p, nil, nil); err != nil {
		t.Fatalf("seed person: %v", err)
	}
	return p
}

// seedNotification inserts a pending notification directly into the store.
func (e *testEnv) seedNotification(t *testing.T, personID uuid.UUID, name, snapshot, camera string) *models.Notification {
	t.Helper()
	n := &models.Notification{
		PersonID:   personID,
		PersonName: name,
		Snapshot:   snapshot,
		CameraName: camera,
	}
	if err := e.db.CreateNotification(context.Background(), n); err != nil {
		t.Fatalf("seed notification: %v", err)
	}
	return n
}
