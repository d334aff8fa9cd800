package handlers

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/your-org/persona/internal/models"
	"github.com/your-org/persona/internal/service"
	"github.com/your-org/persona/internal/storage"
	"github.com/your-org/persona/pkg/dto"
)

type PersonaHandler struct {
	svc *service.PersonaService
	// avatars is nil when MinIO is not configured; avatar endpoints then
	// answer 503.
	avatars *storage.AvatarStore
}

func NewPersonaHandler(svc *service.PersonaService, avatars *storage.AvatarStore) *PersonaHandler {
	return &PersonaHandler{svc: svc, avatars: avatars}
}

func (h *PersonaHandler) List(c *gin.Context) {
	page := intQuery(c, "page", 1)
	perPage := intQuery(c, "per_page", 20)

	result, err := h.svc.List(c.Request.Context(), page, perPage)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	personas := make([]map[string]any, 0, len(result.Personas))
	for i := range result.Personas {
		personas = append(personas, result.Personas[i].ToMap())
	}

	c.JSON(http.StatusOK, dto.PersonaListResponse{
		Personas: personas,
		Total:    result.Total,
		Page:     result.Page,
		PerPage:  result.PageSize,
		Pages:    (result.Total + result.PageSize - 1) / result.PageSize,
	})
}

func (h *PersonaHandler) Get(c *gin.Context) {
	id, ok := personaID(c)
	if !ok {
		return
	}

	p, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, p.ToMap())
}

func (h *PersonaHandler) Create(c *gin.Context) {
	var req dto.CreatePersonaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	p, err := h.svc.Create(c.Request.Context(), req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, p.ToMap())
}

func (h *PersonaHandler) Update(c *gin.Context) {
	id, ok := personaID(c)
	if !ok {
		return
	}

	var req dto.UpdatePersonaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	p, err := h.svc.Update(c.Request.Context(), id, req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, p.ToMap())
}

func (h *PersonaHandler) Delete(c *gin.Context) {
	id, ok := personaID(c)
	if !ok {
		return
	}

	deleted, err := h.svc.Delete(c.Request.Context(), id)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	if !deleted {
		c.JSON(http.StatusNotFound, gin.H{"error": "persona not found"})
		return
	}

	if h.avatars != nil {
		if err := h.avatars.Delete(c.Request.Context(), id); err != nil {
			slog.Warn("delete avatar", "persona_id", id, "error", err)
		}
	}

	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

// UploadAvatar accepts a multipart image upload and stores it in MinIO.
func (h *PersonaHandler) UploadAvatar(c *gin.Context) {
	id, ok := personaID(c)
	if !ok {
		return
	}
	if h.avatars == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "avatar storage not configured"})
		return
	}

	if _, err := h.svc.Get(c.Request.Context(), id); err != nil {
		writeServiceError(c, err)
		return
	}

	file, header, err := c.Request.FormFile("avatar")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "avatar file required"})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "read avatar failed"})
		return
	}

	if err := h.avatars.Put(c.Request.Context(), id, data, header.Header.Get("Content-Type")); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "store avatar failed"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"status": "uploaded"})
}

func (h *PersonaHandler) GetAvatar(c *gin.Context) {
	id, ok := personaID(c)
	if !ok {
		return
	}
	if h.avatars == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "avatar storage not configured"})
		return
	}

	data, contentType, err := h.avatars.Get(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "avatar not found"})
		return
	}
	c.Data(http.StatusOK, contentType, data)
}

func (h *PersonaHandler) DeleteAvatar(c *gin.Context) {
	id, ok := personaID(c)
	if !ok {
		return
	}
	if h.avatars == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "avatar storage not configured"})
		return
	}

	if err := h.avatars.Delete(c.Request.Context(), id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete avatar failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

func personaID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid persona id"})
		return 0, false
	}
	return id, true
}

func intQuery(c *gin.Context, name string, fallback int) int {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}

// writeServiceError maps service errors to HTTP responses: not-found and
// validation are caller-visible outcomes, everything else is internal.
func writeServiceError(c *gin.Context, err error) {
	var vErr *service.ValidationError
	switch {
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "persona not found"})
	case errors.As(err, &vErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation failed", "details": vErr.Messages})
	case errors.Is(err, models.ErrInvalidCategory), errors.Is(err, models.ErrInvalidPayload):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		slog.Error("internal error", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
