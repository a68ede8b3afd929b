package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/your-org/reunite/internal/auth"
	"github.com/your-org/reunite/internal/models"
	"github.com/your-org/reunite/internal/storage"
	"github.com/your-org/reunite/pkg/dto"
)

type StaffHandler struct {
	db storage.StaffStore
}

func NewStaffHandler(db storage.StaffStore) *StaffHandler {
	return &StaffHandler{db: db}
}

// Add registers a new ground-staff member. Admin-created accounts always get
// the Ground Staff role.
func (h *StaffHandler) Add(c *gin.Context) {
	var req dto.AddStaffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server Error"})
		return
	}

	st := &models.Staff{
		FullName:     req.FullName,
		StaffID:      req.StaffID,
		PasswordHash: hash,
		Role:         models.RoleGroundStaff,
		PhoneNumber:  req.PhoneNumber,
		AssignedZone: req.AssignedZone,
	}
	if err := h.db.CreateStaff(c.Request.Context(), st); err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			c.JSON(http.StatusBadRequest, gin.H{"message": "A staff member with that Phone Number or Staff ID already exists."})
			return
		}
		slog.Error("create staff", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server Error"})
		return
	}

	slog.Info("staff member added", "staff_id", st.StaffID, "role", st.Role)

	c.JSON(http.StatusCreated, dto.StaffResponse{
		ID:           st.ID,
		FullName:     st.FullName,
		StaffID:      st.StaffID,
		Role:         string(st.Role),
		PhoneNumber:  st.PhoneNumber,
		AssignedZone: st.AssignedZone,
		CreatedAt:    st.CreatedAt.Format(time.RFC3339),
	})
}

// Login is the mobile-app credential check: phone number + password, plain
// JSON result, no session.
func (h *StaffHandler) Login(c *gin.Context) {
	var req dto.StaffLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Please provide a Phone Number and password"})
		return
	}

	st, err := h.db.GetStaffByPhone(c.Request.Context(), req.PhoneNumber)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			slog.Warn("staff login failed", "phone", req.PhoneNumber, "reason", "unknown phone number")
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Invalid credentials"})
			return
		}
		slog.Error("staff login", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Server Error"})
		return
	}

	if !st.IsActive || !auth.VerifyPassword(st.PasswordHash, req.Password) {
		slog.Warn("staff login failed", "staff_id", st.StaffID, "reason", "bad password or inactive")
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Invalid credentials"})
		return
	}

	slog.Info("staff logged in", "staff_id", st.StaffID, "name", st.FullName)
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Login successful"})
}
