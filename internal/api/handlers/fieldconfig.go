package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/your-org/persona/internal/service"
	"github.com/your-org/persona/pkg/dto"
)

type FieldConfigHandler struct {
	svc *service.PersonaService
}

func NewFieldConfigHandler(svc *service.PersonaService) *FieldConfigHandler {
	return &FieldConfigHandler{svc: svc}
}

// Get returns the field configuration scoped by the optional category and
// field query parameters. Unknown names yield an empty object.
func (h *FieldConfigHandler) Get(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.FieldConfig(c.Query("category"), c.Query("field")))
}

// Validate checks a payload against the field configuration without writing
// anything. The response always carries every violation found.
func (h *FieldConfigHandler) Validate(c *gin.Context) {
	var req dto.ValidateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Data == nil {
		req.Data = map[string]any{}
	}

	valid, errs := h.svc.ValidateCategory(req.Category, req.Data)
	c.JSON(http.StatusOK, dto.ValidateResponse{Valid: valid, Errors: errs})
}
