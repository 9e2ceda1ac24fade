package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/eduraapp/edura-backend/internal/apperr"
	"github.com/eduraapp/edura-backend/internal/db"
	"github.com/eduraapp/edura-backend/internal/models"
)

type createUserRequest struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"required,email"`
	Role  string `json:"role" validate:"required,oneof=STUDENT TUTOR ASISTAN ADMIN BOARD ATHLETE"`
}

func (s *Server) createUser(c echo.Context) error {
	var req createUserRequest
	if err := s.bind(c, &req); err != nil {
		return err
	}
	u, err := db.CreateUser(c.Request().Context(), s.db, req.Name, req.Email, models.Role(req.Role))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, u)
}

func (s *Server) listUsers(c echo.Context) error {
	role := models.Role(c.QueryParam("role"))
	if role == "" {
		role = models.Student
	}
	users, err := db.ListUsersByRole(c.Request().Context(), s.db, role)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, users)
}

// getUser lets staff read anyone; everyone else only themselves.
func (s *Server) getUser(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	caller := currentUser(c)
	if caller.ID != id {
		switch caller.Role {
		case models.Admin, models.Tutor, models.Asistan:
		default:
			return apperr.New(apperr.KindUnauthorized, "cannot read other users")
		}
	}
	u, err := db.GetUserByID(c.Request().Context(), s.db, id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, u)
}

func (s *Server) deleteUser(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	caller := currentUser(c)
	if err := db.DeleteUserCascade(c.Request().Context(), s.db, id, caller.ID, s.cfg.DeleteTimeout); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

type setRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=STUDENT TUTOR ASISTAN ADMIN BOARD ATHLETE"`
}

func (s *Server) setUserRole(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req setRoleRequest
	if err := s.bind(c, &req); err != nil {
		return err
	}
	if err := db.SetUserRole(c.Request().Context(), s.db, id, models.Role(req.Role)); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

type assignTutorRequest struct {
	TutorID *int64 `json:"tutorId"`
}

func (s *Server) assignTutor(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req assignTutorRequest
	if err := s.bind(c, &req); err != nil {
		return err
	}
	if err := db.AssignTutor(c.Request().Context(), s.db, id, req.TutorID); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

type setCountersRequest struct {
	Points     int `json:"points" validate:"min=0"`
	Experience int `json:"experience" validate:"min=0"`
}

func (s *Server) setCachedCounters(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req setCountersRequest
	if err := s.bind(c, &req); err != nil {
		return err
	}
	if err := db.SetCachedCounters(c.Request().Context(), s.db, id, req.Points, req.Experience); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) myClassroom(c echo.Context) error {
	caller := currentUser(c)
	ctx := c.Request().Context()
	classroom, err := db.GetClassroomByTutor(ctx, s.db, caller.ID)
	if err != nil {
		return err
	}
	students, err := db.ListClassroomStudents(ctx, s.db, classroom.ID)
	if err != nil {
		return err
	}

	// Roster balances come from the batched aggregator.
	period, err := db.GetActivePeriod(ctx, s.db)
	if err != nil {
		return err
	}
	ids := make([]int64, 0, len(students))
	for _, st := range students {
		ids = append(ids, st.ID)
	}
	points, err := db.MultipleUserPoints(ctx, s.db, ids, period.ID)
	if err != nil {
		return err
	}
	experience, err := db.MultipleUserExperience(ctx, s.db, ids, period.ID)
	if err != nil {
		return err
	}

	type rosterEntry struct {
		models.User
		PeriodPoints     int `json:"periodPoints"`
		PeriodExperience int `json:"periodExperience"`
	}
	roster := make([]rosterEntry, 0, len(students))
	for _, st := range students {
		roster = append(roster, rosterEntry{
			User:             st,
			PeriodPoints:     points[st.ID],
			PeriodExperience: experience[st.ID],
		})
	}
	return c.JSON(http.StatusOK, map[string]any{
		"classroom": classroom,
		"students":  roster,
	})
}
