package handlers

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/your-org/reunite/internal/models"
	"github.com/your-org/reunite/internal/observability"
	"github.com/your-org/reunite/internal/recognition"
	"github.com/your-org/reunite/internal/storage"
	"github.com/your-org/reunite/pkg/dto"
)

const (
	minReportImages = 3
	maxReportImages = 7
)

// FaceVerifier validates a report's image set with the recognition service.
// Verification is a precondition for accepting a report, so unlike the
// search-status push its failures are surfaced.
type FaceVerifier interface {
	VerifyFaceSet(ctx context.Context, images []recognition.ImageFile) (*recognition.VerifyResult, error)
	RefreshIndex(ctx context.Context) error
}

type PersonHandler struct {
	db       storage.Store
	images   storage.ImageStore
	verifier FaceVerifier
}

func NewPersonHandler(db storage.Store, images storage.ImageStore, verifier FaceVerifier) *PersonHandler {
	return &PersonHandler{db: db, images: images, verifier: verifier}
}

func allowedImageType(contentType string) bool {
	switch contentType {
	case "image/jpeg", "image/jpg", "image/png":
		return true
	}
	return false
}

// Create accepts a lost-person report: multipart form fields plus 3-7 photos.
// The photos must pass face-set verification before anything is persisted.
func (h *PersonHandler) Create(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Multipart form required."})
		return
	}

	files := form.File["images"]
	if len(files) < minReportImages {
		c.JSON(http.StatusBadRequest, gin.H{"message": fmt.Sprintf("Please upload at least %d images.", minReportImages)})
		return
	}
	if len(files) > maxReportImages {
		c.JSON(http.StatusBadRequest, gin.H{"message": fmt.Sprintf("A maximum of %d images are allowed.", maxReportImages)})
		return
	}

	age, err := strconv.Atoi(c.PostForm("age"))
	if err != nil || age < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "A valid age is required."})
		return
	}
	isMinor := age < models.AdultAge

	p := &models.Person{
		FullName:              c.PostForm("fullName"),
		Age:                   age,
		PersonContactNumber:   c.PostForm("personContactNumber"),
		LastSeenLocation:      c.PostForm("lastSeenLocation"),
		IdentificationDetails: c.PostForm("identificationDetails"),
		IsMinor:               isMinor,
		GuardianType:          c.PostForm("guardianType"),
		GuardianDetails:       c.PostForm("guardianDetails"),
		ReporterName:          c.PostForm("reporterName"),
		ReporterRelation:      c.PostForm("reporterRelation"),
		ReporterContactNumber: c.PostForm("reporterContactNumber"),
	}

	for field, value := range map[string]string{
		"fullName":              p.FullName,
		"lastSeenLocation":      p.LastSeenLocation,
		"identificationDetails": p.IdentificationDetails,
		"reporterName":          p.ReporterName,
		"reporterRelation":      p.ReporterRelation,
		"reporterContactNumber": p.ReporterContactNumber,
	} {
		if value == "" {
			c.JSON(http.StatusBadRequest, gin.H{"message": fmt.Sprintf("Missing required field [%s]", field)})
			return
		}
	}

	lastSeen, err := parseLastSeenTime(c.PostForm("lastSeenTime"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "A valid last-seen time is required."})
		return
	}
	p.LastSeenTime = lastSeen

	if !isMinor && p.PersonContactNumber == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "The lost person's contact number is required for adults."})
		return
	}
	if isMinor {
		p.PersonContactNumber = ""
		if p.GuardianType == "" || p.GuardianDetails == "" {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Guardian details are required for minors."})
			return
		}
	} else {
		p.GuardianType = ""
		p.GuardianDetails = ""
	}

	uploads := make([]recognition.ImageFile, 0, len(files))
	for _, fh := range files {
		contentType := fh.Header.Get("Content-Type")
		if !allowedImageType(contentType) {
			c.JSON(http.StatusBadRequest, gin.H{"message": "File upload only supports jpeg/jpg/png."})
			return
		}
		f, err := fh.Open()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to read uploaded image."})
			return
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to read uploaded image."})
			return
		}
		uploads = append(uploads, recognition.ImageFile{
			Filename:    fh.Filename,
			ContentType: contentType,
			Data:        data,
		})
	}

	result, err := h.verifier.VerifyFaceSet(c.Request.Context(), uploads)
	if err != nil {
		slog.Error("verify faceset", "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"message": "Face verification service unavailable. Please try again."})
		return
	}
	if !result.Success {
		c.JSON(http.StatusBadRequest, gin.H{"message": result.Message})
		return
	}

	p.ID = uuid.New()
	ctx := c.Request.Context()

	images := make([]models.PersonImage, 0, len(uploads))
	var storedKeys []string
	for i, up := range uploads {
		key := fmt.Sprintf("persons/%s/%d_%s", p.ID, i, up.Filename)
		if err := h.images.PutObject(ctx, key, up.Data, up.ContentType); err != nil {
			slog.Error("store report image", "key", key, "error", err)
			h.cleanupImages(storedKeys)
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to store report images."})
			return
		}
		storedKeys = append(storedKeys, key)
		images = append(images, models.PersonImage{ObjectKey: key, ContentType: up.ContentType})
	}

	if err := h.db.CreatePerson(ctx, p, images, result.Embeddings); err != nil {
		slog.Error("create person", "error", err)
		h.cleanupImages(storedKeys)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Something went wrong. Please try again."})
		return
	}

	observability.PersonsReported.Inc()
	slog.Info("lost person reported", "person_id", p.ID, "name", p.FullName, "images", len(images))

	// The report is durable; the index refresh only shortens the window
	// until cameras start matching.
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), queuePublishTimeout)
		defer cancel()
		if err := h.verifier.RefreshIndex(ctx); err != nil {
			slog.Warn("refresh recognition index", "error", err)
		}
	}()

	c.JSON(http.StatusCreated, toPersonResponse(p, "", nil))
}

func parseLastSeenTime(v string) (time.Time, error) {
	if v == "" {
		return time.Time{}, errors.New("missing last-seen time")
	}
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t, nil
	}
	// HTML datetime-local inputs omit zone and seconds.
	return time.Parse("2006-01-02T15:04", v)
}

func (h *PersonHandler) cleanupImages(keys []string) {
	if len(keys) == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), queuePublishTimeout)
	defer cancel()
	if err := h.images.DeleteObjects(ctx, keys); err != nil {
		slog.Warn("cleanup report images", "error", err)
	}
}

// List serves the dashboard person grid with search and sort.
func (h *PersonHandler) List(c *gin.Context) {
	q := storage.PersonQuery{
		Search: c.Query("search"),
		Sort:   storage.PersonSort(c.DefaultQuery("sort", string(storage.SortNewest))),
	}

	persons, err := h.db.ListPersons(c.Request.Context(), q)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server Error"})
		return
	}

	resp := make([]dto.PersonResponse, 0, len(persons))
	for i := range persons {
		p := &persons[i]
		resp = append(resp, toPersonResponse(p, h.displayImage(c.Request.Context(), p.ID), nil))
	}

	c.JSON(http.StatusOK, dto.PersonListResponse{Persons: resp, Total: len(resp)})
}

// displayImage loads the first photo as a data URL for list cards.
// Best-effort: a card without a photo beats a failed listing.
func (h *PersonHandler) displayImage(ctx context.Context, personID uuid.UUID) string {
	images, err := h.db.ListPersonImages(ctx, personID)
	if err != nil || len(images) == 0 {
		return ""
	}
	data, err := h.images.GetObject(ctx, images[0].ObjectKey)
	if err != nil {
		slog.Warn("load display image", "person_id", personID, "error", err)
		return ""
	}
	return dataURL(images[0].ContentType, data)
}

func dataURL(contentType string, data []byte) string {
	return "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// Get returns full person details with every photo inlined as a data URL.
func (h *PersonHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid person id."})
		return
	}

	person, err := h.db.GetPerson(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "Person not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server Error"})
		return
	}

	images, err := h.db.ListPersonImages(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server Error"})
		return
	}

	imageList := make([]string, 0, len(images))
	for _, img := range images {
		data, err := h.images.GetObject(c.Request.Context(), img.ObjectKey)
		if err != nil {
			slog.Warn("load person image", "key", img.ObjectKey, "error", err)
			continue
		}
		imageList = append(imageList, dataURL(img.ContentType, data))
	}

	c.JSON(http.StatusOK, toPersonResponse(person, "", imageList))
}

// GetForApp is the unauthenticated person fetch the mobile app uses after a
// person_found event. Photos are excluded; the event carries the snapshot.
func (h *PersonHandler) GetForApp(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid person id."})
		return
	}

	person, err := h.db.GetPerson(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "Person not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server Error"})
		return
	}

	c.JSON(http.StatusOK, toPersonResponse(person, "", nil))
}

// ListFound returns resolved persons, newest first. Unauthenticated; the
// mobile app polls it.
func (h *PersonHandler) ListFound(c *gin.Context) {
	persons, err := h.db.ListFoundPersons(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server Error"})
		return
	}

	resp := make([]dto.PersonResponse, 0, len(persons))
	for i := range persons {
		resp = append(resp, toPersonResponse(&persons[i], "", nil))
	}

	c.JSON(http.StatusOK, dto.PersonListResponse{Persons: resp, Total: len(resp)})
}

func toPersonResponse(p *models.Person, displayImage string, imageList []string) dto.PersonResponse {
	return dto.PersonResponse{
		ID:                    p.ID,
		FullName:              p.FullName,
		Age:                   p.Age,
		PersonContactNumber:   p.PersonContactNumber,
		LastSeenLocation:      p.LastSeenLocation,
		LastSeenTime:          p.LastSeenTime.Format(time.RFC3339),
		IdentificationDetails: p.IdentificationDetails,
		IsMinor:               p.IsMinor,
		GuardianType:          p.GuardianType,
		GuardianDetails:       p.GuardianDetails,
		ReporterName:          p.ReporterName,
		ReporterRelation:      p.ReporterRelation,
		ReporterContactNumber: p.ReporterContactNumber,
		Status:                string(p.Status),
		FoundSnapshot:         p.FoundSnapshot,
		FoundOnCamera:         p.FoundOnCamera,
		CreatedAt:             p.CreatedAt.Format(time.RFC3339),
		DisplayImage:          displayImage,
		ImageList:             imageList,
	}
}
