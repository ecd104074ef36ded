package queue

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/frontdesk/frontdesk/internal/platform/auth"
	"github.com/frontdesk/frontdesk/internal/platform/websocket"
)

const (
	EventCheckedIn     = "queue.checked_in"
	EventStatusChanged = "queue.status_changed"
	EventRemoved       = "queue.removed"
)

// PatientDirectory resolves a registered patient's display name.
type PatientDirectory interface {
	DisplayName(ctx context.Context, id int) (string, error)
}

type Handler struct {
	manager  *Manager
	patients PatientDirectory
	events   websocket.EventPublisher
}

// NewHandler wires the queue endpoints. patients and events may be nil.
func NewHandler(manager *Manager, patients PatientDirectory, events websocket.EventPublisher) *Handler {
	return &Handler{manager: manager, patients: patients, events: events}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("/queue", auth.RequireRole(auth.RoleAdmin, auth.RoleStaff))
	g.POST("", h.CheckIn)
	g.GET("", h.List)
	g.GET("/stats", h.Stats)
	g.GET("/:id", h.Get)
	g.PATCH("/:id/status", h.UpdateStatus)
	g.DELETE("/:id", h.Remove)
}

type checkInRequest struct {
	PatientName string `json:"patientName"`
	PatientID   *int   `json:"patientId"`
	Priority    string `json:"priority"`
}

type updateStatusRequest struct {
	Status   string `json:"status"`
	DoctorID *int   `json:"doctorId"`
}

func (h *Handler) CheckIn(c echo.Context) error {
	var req checkInRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	priority, err := ParsePriority(req.Priority)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	name := req.PatientName
	if name == "" && req.PatientID != nil && h.patients != nil {
		name, err = h.patients.DisplayName(c.Request().Context(), *req.PatientID)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "unknown patientId")
		}
	}
	if name == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "patientName is required")
	}

	entry := h.manager.Add(name, req.PatientID, priority)
	h.publish(c.Request().Context(), EventCheckedIn, entry.ID, entry)
	return c.JSON(http.StatusCreated, entry)
}

func (h *Handler) List(c echo.Context) error {
	if s := c.QueryParam("status"); s != "" {
		return c.JSON(http.StatusOK, h.manager.FindByStatus(Status(s)))
	}
	return c.JSON(http.StatusOK, h.manager.List())
}

func (h *Handler) Stats(c echo.Context) error {
	return c.JSON(http.StatusOK, h.manager.Stats())
}

func (h *Handler) Get(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	entry, err := h.manager.Get(id)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, entry)
}

func (h *Handler) UpdateStatus(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req updateStatusRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	status, err := ParseStatus(req.Status)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	entry, err := h.manager.UpdateStatus(id, status, req.DoctorID)
	if err != nil {
		return mapError(err)
	}
	h.publish(c.Request().Context(), EventStatusChanged, entry.ID, entry)
	return c.JSON(http.StatusOK, entry)
}

func (h *Handler) Remove(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.manager.Remove(id); err != nil {
		return mapError(err)
	}
	h.publish(c.Request().Context(), EventRemoved, id, nil)
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) publish(ctx context.Context, eventType string, id int, payload interface{}) {
	if h.events == nil {
		return
	}
	ev, err := websocket.NewEvent(eventType, websocket.TopicQueue, id, payload)
	if err == nil {
		err = h.events.Publish(ctx, ev)
	}
	if err != nil {
		h.manager.logger.Warn().Err(err).Str("event", eventType).Int("id", id).Msg("queue event not published")
	}
}

func mapError(err error) error {
	switch {
	case errors.Is(err, ErrEntryNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, ErrInvalidTransition):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}
