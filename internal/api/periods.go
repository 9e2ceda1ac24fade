package api

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/eduraapp/edura-backend/internal/db"
	"github.com/eduraapp/edura-backend/internal/models"
)

func (s *Server) listPeriods(c echo.Context) error {
	periods, err := db.ListPeriods(c.Request().Context(), s.db)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, periods)
}

type createPeriodRequest struct {
	Name      string    `json:"name" validate:"required"`
	StartDate time.Time `json:"startDate" validate:"required"`
	EndDate   time.Time `json:"endDate" validate:"required"`
}

func (s *Server) createPeriod(c echo.Context) error {
	var req createPeriodRequest
	if err := s.bind(c, &req); err != nil {
		return err
	}
	id, err := db.CreatePeriod(c.Request().Context(), s.db, models.Period{
		Name:      req.Name,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, map[string]int64{"id": id})
}

type activatePeriodRequest struct {
	ResetData bool `json:"resetData"`
}

func (s *Server) activatePeriod(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req activatePeriodRequest
	if err := s.bind(c, &req); err != nil {
		return err
	}
	if err := db.ActivatePeriod(c.Request().Context(), s.db, id, req.ResetData); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
