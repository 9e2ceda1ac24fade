package api

import (
	"bytes"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/eduraapp/edura-backend/internal/apperr"
	"github.com/eduraapp/edura-backend/internal/db"
	"github.com/eduraapp/edura-backend/internal/export"
	"github.com/eduraapp/edura-backend/internal/models"
)

// myBalance reports the caller's period-scoped standing straight from the
// ledger; the cached counters on the user row are never consulted.
func (s *Server) myBalance(c echo.Context) error {
	ctx := c.Request().Context()
	caller := currentUser(c)

	period, err := db.GetActivePeriod(ctx, s.db)
	if err != nil {
		return err
	}
	bal, err := db.UserBalance(ctx, s.db, caller.ID, period.ID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{
		"period":  period.Name,
		"balance": bal,
	})
}

type awardPointsRequest struct {
	StudentID int64   `json:"studentId" validate:"required,gt=0"`
	Amount    int     `json:"amount" validate:"required,gt=0"`
	Reason    *string `json:"reason"`
}

func (s *Server) awardPoints(c echo.Context) error {
	var req awardPointsRequest
	if err := s.bind(c, &req); err != nil {
		return err
	}
	caller := currentUser(c)
	tx, err := db.AwardPoints(c.Request().Context(), s.db, db.AwardInput{
		StudentID: req.StudentID,
		TutorID:   &caller.ID,
		Amount:    req.Amount,
		Reason:    req.Reason,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, tx)
}

func (s *Server) rollbackPoints(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	caller := currentUser(c)
	tx, err := db.GetPointsTransaction(ctx, s.db, id)
	if err != nil {
		return err
	}
	if !canRollbackPoints(caller, tx) {
		return apperr.Newf(apperr.KindUnauthorized, "cannot roll back transaction %d", id)
	}
	if err := db.RollbackPointsTransaction(ctx, s.db, id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// canRollbackPoints: admins reverse anything; tutors and assistants only
// awards they made themselves. Redemptions stay admin-only since they are
// the result of an approved item request.
func canRollbackPoints(caller *models.User, t *models.PointsTransaction) bool {
	if caller.Role == models.Admin {
		return true
	}
	if t.Type != models.Award {
		return false
	}
	return t.TutorID != nil && *t.TutorID == caller.ID
}

func (s *Server) rollbackExperience(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := db.RollbackExperienceTransaction(c.Request().Context(), s.db, id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

type awardExperienceRequest struct {
	StudentID int64   `json:"studentId" validate:"required,gt=0"`
	Amount    int     `json:"amount" validate:"required,gt=0"`
	Reason    *string `json:"reason"`
}

func (s *Server) awardExperience(c echo.Context) error {
	var req awardExperienceRequest
	if err := s.bind(c, &req); err != nil {
		return err
	}
	tx, err := db.AwardExperience(c.Request().Context(), s.db, req.StudentID, req.Amount, req.Reason)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, tx)
}

func (s *Server) pointsHistory(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	period, err := db.GetActivePeriod(ctx, s.db)
	if err != nil {
		return err
	}
	history, err := db.PointsHistory(ctx, s.db, id, period.ID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, history)
}

func (s *Server) leaderboard(c echo.Context) error {
	ctx := c.Request().Context()
	period, err := db.GetActivePeriod(ctx, s.db)
	if err != nil {
		return err
	}
	entries, err := db.Leaderboard(ctx, s.db, period.ID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, entries)
}

func (s *Server) exportLeaderboard(c echo.Context) error {
	ctx := c.Request().Context()
	period, err := db.GetActivePeriod(ctx, s.db)
	if err != nil {
		return err
	}
	entries, err := db.Leaderboard(ctx, s.db, period.ID)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := export.WriteLeaderboard(&buf, entries); err != nil {
		return err
	}
	return serveWorkbook(c, export.LeaderboardFilename(period.Name), buf.Bytes())
}

func (s *Server) exportHistory(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	student, err := db.GetUserByID(ctx, s.db, id)
	if err != nil {
		return err
	}
	period, err := db.GetActivePeriod(ctx, s.db)
	if err != nil {
		return err
	}
	history, err := db.PointsHistory(ctx, s.db, id, period.ID)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := export.WriteHistory(&buf, student.Name, history); err != nil {
		return err
	}
	return serveWorkbook(c, export.HistoryFilename(student.Name, period.Name), buf.Bytes())
}

func serveWorkbook(c echo.Context, filename string, data []byte) error {
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.Blob(http.StatusOK,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}
