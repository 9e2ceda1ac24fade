package api

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/eduraapp/edura-backend/internal/db"
)

func (s *Server) listEvents(c echo.Context) error {
	ctx := c.Request().Context()
	period, err := db.GetActivePeriod(ctx, s.db)
	if err != nil {
		return err
	}
	events, err := db.ListEventsByPeriod(ctx, s.db, period.ID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, events)
}

type createEventRequest struct {
	Title    string    `json:"title" validate:"required"`
	StartsAt time.Time `json:"startsAt" validate:"required"`
	TutorID  *int64    `json:"tutorId" validate:"omitempty,gt=0"`
}

func (s *Server) createEvent(c echo.Context) error {
	var req createEventRequest
	if err := s.bind(c, &req); err != nil {
		return err
	}
	caller := currentUser(c)
	event, err := db.CreateEvent(c.Request().Context(), s.db, req.Title, req.StartsAt, caller.ID, req.TutorID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, event)
}

func (s *Server) joinEvent(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	caller := currentUser(c)
	if err := db.JoinEvent(c.Request().Context(), s.db, id, caller.ID); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) leaveEvent(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	caller := currentUser(c)
	if err := db.LeaveEvent(c.Request().Context(), s.db, id, caller.ID); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
