package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/your-org/persona/internal/service"
)

type AttributeHandler struct {
	svc *service.PersonaService
}

func NewAttributeHandler(svc *service.PersonaService) *AttributeHandler {
	return &AttributeHandler{svc: svc}
}

// Get returns the payload of one category. A persona that has never written
// the category gets an empty object.
func (h *AttributeHandler) Get(c *gin.Context) {
	id, ok := personaID(c)
	if !ok {
		return
	}

	data, err := h.svc.AttributeData(c.Request.Context(), id, c.Param("category"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, data)
}

// Update merge-updates one category: supplied keys overwrite, all other
// stored keys survive.
func (h *AttributeHandler) Update(c *gin.Context) {
	id, ok := personaID(c)
	if !ok {
		return
	}

	var data map[string]any
	if err := c.ShouldBindJSON(&data); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "request body must be a JSON object"})
		return
	}
	if data == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no data provided"})
		return
	}

	attr, err := h.svc.UpdateAttributeData(c.Request.Context(), id, c.Param("category"), data)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, attr.Payload())
}
