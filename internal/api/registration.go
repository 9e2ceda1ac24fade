package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/eduraapp/edura-backend/internal/apperr"
	"github.com/eduraapp/edura-backend/internal/db"
	"github.com/eduraapp/edura-backend/internal/models"
)

type submitRegistrationRequest struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"required,email"`
	Role  string `json:"role" validate:"required"`
}

func (s *Server) submitRegistration(c echo.Context) error {
	var req submitRegistrationRequest
	if err := s.bind(c, &req); err != nil {
		return err
	}
	role := models.Role(req.Role)
	if !role.Valid() {
		return apperr.Newf(apperr.KindValidation, "unknown role %q", req.Role)
	}
	reg, err := db.SubmitRegistration(c.Request().Context(), s.db, req.Name, req.Email, role)
	if err != nil {
		return err
	}
	s.notifier.RegistrationFiled(reg.Name, string(reg.RequestedRole))
	return c.JSON(http.StatusCreated, reg)
}

func (s *Server) listPendingRegistrations(c echo.Context) error {
	regs, err := db.ListPendingRegistrations(c.Request().Context(), s.db)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, regs)
}

type processRegistrationRequest struct {
	Approve bool `json:"approve"`
}

func (s *Server) processRegistration(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req processRegistrationRequest
	if err := s.bind(c, &req); err != nil {
		return err
	}
	caller := currentUser(c)
	user, err := db.ProcessRegistration(c.Request().Context(), s.db, id, caller.ID, req.Approve)
	if err != nil {
		return err
	}
	if user == nil {
		return c.NoContent(http.StatusNoContent)
	}
	return c.JSON(http.StatusCreated, user)
}
