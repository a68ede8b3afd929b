package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/your-org/reunite/internal/auth"
	"github.com/your-org/reunite/internal/storage"
	"github.com/your-org/reunite/pkg/dto"
)

// AuthHandler issues and revokes dashboard sessions.
type AuthHandler struct {
	db       storage.StaffStore
	sessions *auth.SessionManager
}

func NewAuthHandler(db storage.StaffStore, sessions *auth.SessionManager) *AuthHandler {
	return &AuthHandler{db: db, sessions: sessions}
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Please provide a staff id and password"})
		return
	}

	st, err := h.db.GetStaffByStaffID(c.Request.Context(), req.StaffID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid credentials"})
			return
		}
		slog.Error("dashboard login", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server Error"})
		return
	}

	if !st.IsActive || !auth.VerifyPassword(st.PasswordHash, req.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid credentials"})
		return
	}

	s := h.sessions.Create(st.ID, st.StaffID)
	maxAge := int(time.Until(s.ExpiresAt).Seconds())
	c.SetCookie(auth.CookieName, s.Token, maxAge, "/", "", false, true)

	slog.Info("dashboard login", "staff_id", st.StaffID)
	c.JSON(http.StatusOK, gin.H{"message": "Login successful"})
}

func (h *AuthHandler) Logout(c *gin.Context) {
	if token, err := c.Cookie(auth.CookieName); err == nil {
		h.sessions.Destroy(token)
	}
	c.SetCookie(auth.CookieName, "", -1, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}
