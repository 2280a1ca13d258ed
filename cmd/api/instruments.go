package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/giovaniif/instrument-closet/domain/instant"
	"github.com/giovaniif/instrument-closet/domain/instrument"
	"github.com/giovaniif/instrument-closet/domain/reservation"
	"github.com/giovaniif/instrument-closet/use_cases/inventory"
)

const maxImageBytes = 10 << 20

type InstrumentRequest struct {
	Name        string  `json:"name" binding:"required"`
	Quantity    *int    `json:"quantity" binding:"required"`
	Description *string `json:"description"`
	ImageURL    *string `json:"imageURL"`
}

type InstrumentPatchRequest struct {
	Name        *string `json:"name"`
	Quantity    *int    `json:"quantity"`
	Description *string `json:"description"`
	ImageURL    *string `json:"imageURL"`
}

type AvailabilityQuery struct {
	StartTime string `form:"startTime" binding:"required"`
	EndTime   string `form:"endTime" binding:"required"`
	TimeZone  string `form:"timeZone" binding:"required"`
}

func (h *handlers) createInstrument(c *gin.Context) {
	var req InstrumentRequest
	if !bind(c, &req) {
		return
	}
	inst, err := h.app.Inventory.Create(c.Request.Context(), inventory.CreateInput{
		Name:        req.Name,
		Quantity:    *req.Quantity,
		Description: req.Description,
		ImageURL:    req.ImageURL,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"instrument": inst})
}

func (h *handlers) listInstruments(c *gin.Context) {
	instruments, err := h.app.Inventory.List(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"instruments": instruments})
}

func (h *handlers) getInstrument(c *gin.Context) {
	id, ok := paramId(c, "id")
	if !ok {
		return
	}
	inst, err := h.app.Inventory.Get(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"instrument": inst})
}

func (h *handlers) updateInstrument(c *gin.Context) {
	id, ok := paramId(c, "id")
	if !ok {
		return
	}
	var req InstrumentPatchRequest
	if !bind(c, &req) {
		return
	}
	inst, err := h.app.Inventory.Update(c.Request.Context(), id, instrument.Patch{
		Name:        req.Name,
		Quantity:    req.Quantity,
		Description: req.Description,
		ImageURL:    req.ImageURL,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"instrument": inst})
}

func (h *handlers) deleteInstrument(c *gin.Context) {
	id, ok := paramId(c, "id")
	if !ok {
		return
	}
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	inst, err := h.app.Inventory.Get(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	if err := h.app.Inventory.Delete(c.Request.Context(), actor, id); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": fmt.Sprintf("%s (ID: %d)", inst.Name, id)})
}

func (h *handlers) availability(c *gin.Context) {
	id, ok := paramId(c, "id")
	if !ok {
		return
	}
	var q AvailabilityQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, err.Error())
		return
	}
	start, err := instant.ToInstant(q.StartTime, q.TimeZone)
	if err != nil {
		writeError(c, err)
		return
	}
	end, err := instant.ToInstant(q.EndTime, q.TimeZone)
	if err != nil {
		writeError(c, err)
		return
	}
	window := reservation.Window{Start: start, End: end}
	if err := window.Validate(); err != nil {
		writeError(c, err)
		return
	}
	available, err := h.app.Availability.Available(c.Request.Context(), id, window)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"available": available, "startTime": start, "endTime": end})
}

func (h *handlers) attachImage(c *gin.Context) {
	id, ok := paramId(c, "id")
	if !ok {
		return
	}
	if c.Request.ContentLength == 0 {
		badRequest(c, "Image body is required.")
		return
	}
	body := http.MaxBytesReader(c.Writer, c.Request.Body, maxImageBytes)
	inst, err := h.app.Inventory.AttachImage(c.Request.Context(), id, body, c.ContentType())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"instrument": inst})
}

func (h *handlers) tag(c *gin.Context) {
	id, ok := paramId(c, "id")
	if !ok {
		return
	}
	categoryId, ok := paramId(c, "categoryId")
	if !ok {
		return
	}
	if err := h.app.Catalog.Tag(c.Request.Context(), id, categoryId); err != nil {
		writeError(c, err)
		return
	}
	h.getInstrument(c)
}

func (h *handlers) untag(c *gin.Context) {
	id, ok := paramId(c, "id")
	if !ok {
		return
	}
	categoryId, ok := paramId(c, "categoryId")
	if !ok {
		return
	}
	if err := h.app.Catalog.Untag(c.Request.Context(), id, categoryId); err != nil {
		writeError(c, err)
		return
	}
	h.getInstrument(c)
}
