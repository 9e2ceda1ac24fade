package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/eduraapp/edura-backend/internal/db"
)

type createNoteRequest struct {
	Body string `json:"body" validate:"required"`
}

func (s *Server) createNote(c echo.Context) error {
	studentID, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req createNoteRequest
	if err := s.bind(c, &req); err != nil {
		return err
	}
	caller := currentUser(c)
	note, err := db.CreateStudentNote(c.Request().Context(), s.db, studentID, caller.ID, req.Body)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, note)
}

func (s *Server) listNotes(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	notes, err := db.ListStudentNotes(c.Request().Context(), s.db, id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, notes)
}

type createReportRequest struct {
	Week    int    `json:"week" validate:"required,gte=1,lte=53"`
	Content string `json:"content" validate:"required"`
}

func (s *Server) createReport(c echo.Context) error {
	studentID, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req createReportRequest
	if err := s.bind(c, &req); err != nil {
		return err
	}
	caller := currentUser(c)
	report, err := db.CreateStudentReport(c.Request().Context(), s.db, studentID, caller.ID, req.Week, req.Content)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, report)
}

func (s *Server) listReports(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	period, err := db.GetActivePeriod(ctx, s.db)
	if err != nil {
		return err
	}
	reports, err := db.ListStudentReports(ctx, s.db, id, period.ID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, reports)
}

type createWishRequest struct {
	Body string `json:"body" validate:"required"`
}

func (s *Server) createWish(c echo.Context) error {
	var req createWishRequest
	if err := s.bind(c, &req); err != nil {
		return err
	}
	caller := currentUser(c)
	wish, err := db.CreateWish(c.Request().Context(), s.db, caller.ID, req.Body)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, wish)
}

func (s *Server) listWishes(c echo.Context) error {
	wishes, err := db.ListWishes(c.Request().Context(), s.db)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, wishes)
}

func (s *Server) listCards(c echo.Context) error {
	includeInactive := c.QueryParam("all") == "true"
	cards, err := db.ListPointEarningCards(c.Request().Context(), s.db, includeInactive)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, cards)
}

type createCardRequest struct {
	Title  string `json:"title" validate:"required"`
	Points int    `json:"points" validate:"required,gt=0"`
}

func (s *Server) createCard(c echo.Context) error {
	var req createCardRequest
	if err := s.bind(c, &req); err != nil {
		return err
	}
	caller := currentUser(c)
	card, err := db.CreatePointEarningCard(c.Request().Context(), s.db, req.Title, req.Points, caller.ID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, card)
}

type awardCardRequest struct {
	StudentID int64 `json:"studentId" validate:"required,gt=0"`
}

func (s *Server) awardCard(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req awardCardRequest
	if err := s.bind(c, &req); err != nil {
		return err
	}
	caller := currentUser(c)
	tx, err := db.AwardCard(c.Request().Context(), s.db, id, req.StudentID, caller.ID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, tx)
}
