package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type CategoryRequest struct {
	Category string `json:"category" binding:"required"`
}

func (h *handlers) createCategory(c *gin.Context) {
	var req CategoryRequest
	if !bind(c, &req) {
		return
	}
	created, err := h.app.Catalog.Create(c.Request.Context(), req.Category)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"category": created})
}

func (h *handlers) listCategories(c *gin.Context) {
	categories, err := h.app.Catalog.List(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

func (h *handlers) getCategory(c *gin.Context) {
	id, ok := paramId(c, "id")
	if !ok {
		return
	}
	found, err := h.app.Catalog.Get(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"category": found})
}

func (h *handlers) renameCategory(c *gin.Context) {
	id, ok := paramId(c, "id")
	if !ok {
		return
	}
	var req CategoryRequest
	if !bind(c, &req) {
		return
	}
	renamed, err := h.app.Catalog.Rename(c.Request.Context(), id, req.Category)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"category": renamed})
}

func (h *handlers) deleteCategory(c *gin.Context) {
	id, ok := paramId(c, "id")
	if !ok {
		return
	}
	if err := h.app.Catalog.Delete(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": id})
}
