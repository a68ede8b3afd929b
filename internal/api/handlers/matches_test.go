package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/your-org/reunite/internal/models"
)

func postJSON(t *testing.T, env *testEnv, path string, payload interface{}, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	return rec
}

func message(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var resp struct {
		Message string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.Message
}

func TestReportMatchCreatesNotification(t *testing.T) {
	env := newTestEnv(t)
	p := env.seedLostPerson(t, "Asha")

	rec := postJSON(t, env, "/api/report_match", map[string]string{
		"mongo_id":    p.ID.String(),
		"name":        "Asha",
		"snapshot":    "c25hcA==",
		"camera_name": "Gate 4",
	})

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Match received, saved, and broadcasted.", message(t, rec))

	notifications, err := env.db.ListNotifications(context.Background())
	require.NoError(t, err)
	require.Len(t, notifications, 1)
	assert.Equal(t, p.ID, notifications[0].PersonID)
	assert.Equal(t, "Asha", notifications[0].PersonName)
	assert.Equal(t, "c25hcA==", notifications[0].Snapshot)
	assert.Equal(t, "Gate 4", notifications[0].CameraName)
}

func TestReportMatchDefaultsCameraName(t *testing.T) {
	env := newTestEnv(t)
	p := env.seedLostPerson(t, "Asha")

	rec := postJSON(t, env, "/api/report_match", map[string]string{
		"mongo_id": p.ID.String(),
		"name":     "Asha",
		"snapshot": "c25hcA==",
	})

	require.Equal(t, http.StatusOK, rec.Code)

	notifications, err := env.db.ListNotifications(context.Background())
	require.NoError(t, err)
	require.Len(t, notifications, 1)
	assert.Equal(t, models.DefaultCameraName, notifications[0].CameraName)
}

func TestReportMatchMissingFields(t *testing.T) {
	env := newTestEnv(t)

	cases := []struct {
		name    string
		payload map[string]string
		missing string
	}{
		{"no mongo_id", map[string]string{"name": "Asha", "snapshot": "x"}, "mongo_id"},
		{"no name", map[string]string{"mongo_id": uuid.NewString(), "snapshot": "x"}, "name"},
		{"no snapshot", map[string]string{"mongo_id": uuid.NewString(), "name": "Asha"}, "snapshot"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := postJSON(t, env, "/api/report_match", tc.payload)
			require.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, fmt.Sprintf("Bad Request: Missing required field [%s]", tc.missing), message(t, rec))
		})
	}

	notifications, err := env.db.ListNotifications(context.Background())
	require.NoError(t, err)
	assert.Empty(t, notifications, "rejected reports must not create notifications")
}

func TestResolveRequiresSession(t *testing.T) {
	env := newTestEnv(t)
	p := env.seedLostPerson(t, "Asha")

	rec := postJSON(t, env, "/api/person/"+p.ID.String()+"/action", map[string]string{
		"action": "accept",
	})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestResolveAccept(t *testing.T) {
	env := newTestEnv(t)
	p := env.seedLostPerson(t, "Asha")
	n := env.seedNotification(t, p.ID, "Asha", "c25hcA==", "Gate 4")
	cookie := env.sessionCookie()

	rec := postJSON(t, env, "/api/person/"+p.ID.String()+"/action", map[string]string{
		"action":         "accept",
		"notificationId": n.ID.String(),
	}, cookie)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Status for Asha updated to Found.", message(t, rec))

	updated, err := env.db.GetPerson(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusFound, updated.Status)
	assert.Equal(t, "c25hcA==", updated.FoundSnapshot)
	assert.Equal(t, "Gate 4", updated.FoundOnCamera)

	notifications, err := env.db.ListNotifications(context.Background())
	require.NoError(t, err)
	assert.Empty(t, notifications, "resolved notification must be deleted")

	calls := env.notifier.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, notifyCall{PersonID: p.ID.String(), Action: "accept"}, calls[0])
}

func TestResolveAcceptIsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	p := env.seedLostPerson(t, "Asha")
	n := env.seedNotification(t, p.ID, "Asha", "c25hcA==", "Gate 4")
	cookie := env.sessionCookie()
	payload := map[string]string{
		"action":         "accept",
		"notificationId": n.ID.String(),
	}

	first := postJSON(t, env, "/api/person/"+p.ID.String()+"/action", payload, cookie)
	require.Equal(t, http.StatusOK, first.Code)

	second := postJSON(t, env, "/api/person/"+p.ID.String()+"/action", payload, cookie)
	require.Equal(t, http.StatusNotFound, second.Code)
	assert.Equal(t, "Associated notification not found.", message(t, second))

	updated, err := env.db.GetPerson(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusFound, updated.Status)
	assert.Equal(t, "c25hcA==", updated.FoundSnapshot, "second call must not re-mutate the person")
}

func TestResolveAcceptUnknownNotification(t *testing.T) {
	env := newTestEnv(t)
	p := env.seedLostPerson(t, "Asha")
	cookie := env.sessionCookie()

	rec := postJSON(t, env, "/api/person/"+p.ID.String()+"/action", map[string]string{
		"action":         "accept",
		"notificationId": uuid.NewString(),
	}, cookie)

	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Associated notification not found.", message(t, rec))

	updated, err := env.db.GetPerson(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusLost, updated.Status, "person must be untouched")
}

func TestResolveAcceptUnknownPersonRestoresNotification(t *testing.T) {
	env := newTestEnv(t)
	orphanPerson := uuid.New()
	n := env.seedNotification(t, orphanPerson, "Ghost", "c25hcA==", "Gate 1")
	cookie := env.sessionCookie()

	rec := postJSON(t, env, "/api/person/"+orphanPerson.String()+"/action", map[string]string{
		"action":         "accept",
		"notificationId": n.ID.String(),
	}, cookie)

	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Person not found", message(t, rec))

	notifications, err := env.db.ListNotifications(context.Background())
	require.NoError(t, err)
	require.Len(t, notifications, 1, "notification must survive a failed accept")
	assert.Equal(t, n.ID, notifications[0].ID)
}

func TestResolveResearch(t *testing.T) {
	env := newTestEnv(t)
	p := env.seedLostPerson(t, "Asha")
	n := env.seedNotification(t, p.ID, "Asha", "c25hcA==", "Gate 4")
	cookie := env.sessionCookie()

	rec := postJSON(t, env, "/api/person/"+p.ID.String()+"/action", map[string]string{
		"action":         "research",
		"notificationId": n.ID.String(),
	}, cookie)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Re-search initiated.", message(t, rec))

	updated, err := env.db.GetPerson(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusLost, updated.Status, "research never mutates status")
	assert.Empty(t, updated.FoundSnapshot)

	notifications, err := env.db.ListNotifications(context.Background())
	require.NoError(t, err)
	assert.Empty(t, notifications)

	calls := env.notifier.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "research", calls[0].Action)
}

func TestResolveResearchWithoutNotificationID(t *testing.T) {
	env := newTestEnv(t)
	p := env.seedLostPerson(t, "Asha")
	cookie := env.sessionCookie()

	rec := postJSON(t, env, "/api/person/"+p.ID.String()+"/action", map[string]string{
		"action": "research",
	}, cookie)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Re-search initiated.", message(t, rec))
}

func TestResolveInvalidAction(t *testing.T) {
	env := newTestEnv(t)
	p := env.seedLostPerson(t, "Asha")
	n := env.seedNotification(t, p.ID, "Asha", "c25hcA==", "Gate 4")
	cookie := env.sessionCookie()

	rec := postJSON(t, env, "/api/person/"+p.ID.String()+"/action", map[string]string{
		"action":         "destroy",
		"notificationId": n.ID.String(),
	}, cookie)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid action.", message(t, rec))

	updated, err := env.db.GetPerson(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusLost, updated.Status)

	notifications, err := env.db.ListNotifications(context.Background())
	require.NoError(t, err)
	assert.Len(t, notifications, 1, "invalid action must have no side effects")
	assert.Empty(t, env.notifier.Calls())
}
