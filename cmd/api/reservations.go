package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/giovaniif/instrument-closet/domain/reservation"
	"github.com/giovaniif/instrument-closet/infra/metrics"
	"github.com/giovaniif/instrument-closet/use_cases/book"
	"github.com/giovaniif/instrument-closet/use_cases/cancel"
	"github.com/giovaniif/instrument-closet/use_cases/reschedule"
)

type ReservationRequest struct {
	UserId       *int64  `json:"userId" binding:"required"`
	InstrumentId *int64  `json:"instrumentId" binding:"required"`
	Quantity     *int    `json:"quantity" binding:"required"`
	StartTime    string  `json:"startTime" binding:"required"`
	EndTime      string  `json:"endTime" binding:"required"`
	TimeZone     string  `json:"timeZone" binding:"required"`
	Notes        *string `json:"notes"`
}

type ReservationPatchRequest struct {
	Quantity  *int    `json:"quantity"`
	StartTime *string `json:"startTime"`
	EndTime   *string `json:"endTime"`
	TimeZone  *string `json:"timeZone"`
	Notes     *string `json:"notes"`
}

func (h *handlers) createReservation(c *gin.Context) {
	var req ReservationRequest
	if !bind(c, &req) {
		return
	}
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	out, err := h.app.Book.Book(c.Request.Context(), book.Input{
		Actor:          actor,
		UserId:         *req.UserId,
		InstrumentId:   *req.InstrumentId,
		Quantity:       *req.Quantity,
		StartTime:      req.StartTime,
		EndTime:        req.EndTime,
		TimeZone:       req.TimeZone,
		Notes:          req.Notes,
		IdempotencyKey: c.GetHeader("Idempotency-Key"),
	})
	if !out.Replayed {
		metrics.ObserveAdmission(err)
	}
	if err != nil {
		writeError(c, err)
		return
	}
	status := http.StatusCreated
	if out.Replayed {
		c.Header("Idempotent-Replayed", "true")
		status = http.StatusOK
	}
	c.JSON(status, gin.H{"reservation": out.Reservation})
}

func (h *handlers) listReservations(c *gin.Context) {
	var filter reservation.Filter
	for name, dst := range map[string]**int64{"userId": &filter.UserId, "instrumentId": &filter.InstrumentId} {
		raw := c.Query(name)
		if raw == "" {
			continue
		}
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			badRequest(c, name+" must be an integer.")
			return
		}
		*dst = &v
	}
	reservations, err := h.app.Listing.List(c.Request.Context(), filter)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reservations": reservations})
}

func (h *handlers) getReservation(c *gin.Context) {
	id, ok := paramId(c, "id")
	if !ok {
		return
	}
	found, err := h.app.Listing.Get(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reservation": found})
}

func (h *handlers) updateReservation(c *gin.Context) {
	id, ok := paramId(c, "id")
	if !ok {
		return
	}
	var req ReservationPatchRequest
	if !bind(c, &req) {
		return
	}
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	updated, err := h.app.Reschedule.Reschedule(c.Request.Context(), reschedule.Input{
		Actor:         actor,
		ReservationId: id,
		Quantity:      req.Quantity,
		StartTime:     req.StartTime,
		EndTime:       req.EndTime,
		TimeZone:      req.TimeZone,
		Notes:         req.Notes,
	})
	metrics.ObserveAdmission(err)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reservation": updated})
}

func (h *handlers) deleteReservation(c *gin.Context) {
	id, ok := paramId(c, "id")
	if !ok {
		return
	}
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	out, err := h.app.Cancel.Cancel(c.Request.Context(), cancel.Input{Actor: actor, ReservationId: id})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": out.Deleted})
}
