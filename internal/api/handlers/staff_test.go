package handlers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/your-org/reunite/internal/auth"
	"github.com/your-org/reunite/internal/models"
	"github.com/your-org/reunite/pkg/dto"
)

func addStaffPayload() map[string]string {
	return map[string]string{
		"full_name":     "Priya Nair",
		"staff_id":      "GS-104",
		"password":      "sunrise7",
		"phone_number":  "555-0200",
		"assigned_zone": "East Wing",
	}
}

func TestAddStaff(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.sessionCookie()

	rec := postJSON(t, env, "/api/staff", addStaffPayload(), cookie)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp dto.StaffResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "GS-104", resp.StaffID)
	assert.Equal(t, string(models.RoleGroundStaff), resp.Role)
	assert.Equal(t, "East Wing", resp.AssignedZone)

	st, err := env.db.GetStaffByStaffID(context.Background(), "GS-104")
	require.NoError(t, err)
	assert.True(t, st.IsActive)
	assert.NotEqual(t, "sunrise7", st.PasswordHash, "password must be stored hashed")
}

func TestAddStaffRequiresSession(t *testing.T) {
	env := newTestEnv(t)

	rec := postJSON(t, env, "/api/staff", addStaffPayload())
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAddStaffDuplicate(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.sessionCookie()

	first := postJSON(t, env, "/api/staff", addStaffPayload(), cookie)
	require.Equal(t, http.StatusCreated, first.Code)

	second := postJSON(t, env, "/api/staff", addStaffPayload(), cookie)
	require.Equal(t, http.StatusBadRequest, second.Code)
	assert.Equal(t, "A staff member with that Phone Number or Staff ID already exists.", message(t, second))
}

func TestStaffLogin(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.sessionCookie()
	require.Equal(t, http.StatusCreated, postJSON(t, env, "/api/staff", addStaffPayload(), cookie).Code)

	rec := postJSON(t, env, "/api/staff/login", map[string]string{
		"phone_number": "555-0200",
		"password":     "sunrise7",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "Login successful", resp.Message)

	wrong := postJSON(t, env, "/api/staff/login", map[string]string{
		"phone_number": "555-0200",
		"password":     "wrong",
	})
	require.Equal(t, http.StatusUnauthorized, wrong.Code)
	assert.Equal(t, "Invalid credentials", message(t, wrong))

	unknown := postJSON(t, env, "/api/staff/login", map[string]string{
		"phone_number": "555-9999",
		"password":     "sunrise7",
	})
	require.Equal(t, http.StatusUnauthorized, unknown.Code)
}

func TestDashboardLoginIssuesSession(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.sessionCookie()
	require.Equal(t, http.StatusCreated, postJSON(t, env, "/api/staff", addStaffPayload(), cookie).Code)

	rec := postJSON(t, env, "/api/auth/login", map[string]string{
		"staff_id": "GS-104",
		"password": "sunrise7",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var issued *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == auth.CookieName {
			issued = c
		}
	}
	require.NotNil(t, issued, "login must set a session cookie")
	require.NotEmpty(t, issued.Value)

	// The issued cookie opens the dashboard surface.
	req, _ := http.NewRequest(http.MethodGet, "/api/notifications", nil)
	req.AddCookie(issued)
	recList := postJSONRaw(env, req)
	require.Equal(t, http.StatusOK, recList.Code)

	// Logout revokes it.
	logout := postJSON(t, env, "/api/auth/logout", map[string]string{}, issued)
	require.Equal(t, http.StatusOK, logout.Code)

	req, _ = http.NewRequest(http.MethodGet, "/api/notifications", nil)
	req.AddCookie(issued)
	recAfter := postJSONRaw(env, req)
	require.Equal(t, http.StatusUnauthorized, recAfter.Code)
}

func TestDashboardLoginBadCredentials(t *testing.T) {
	env := newTestEnv(t)

	rec := postJSON(t, env, "/api/auth/login", map[string]string{
		"staff_id": "nobody",
		"password": "whatever",
	})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Invalid credentials", message(t, rec))
}
