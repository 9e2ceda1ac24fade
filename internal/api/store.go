package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/eduraapp/edura-backend/internal/db"
)

func (s *Server) listStoreItems(c echo.Context) error {
	includeInactive := c.QueryParam("all") == "true"
	items, err := db.ListStoreItems(c.Request().Context(), s.db, includeInactive)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, items)
}

type createStoreItemRequest struct {
	Name  string `json:"name" validate:"required"`
	Cost  int    `json:"cost" validate:"required,gt=0"`
	Stock *int   `json:"stock" validate:"omitempty,gte=0"`
}

func (s *Server) createStoreItem(c echo.Context) error {
	var req createStoreItemRequest
	if err := s.bind(c, &req); err != nil {
		return err
	}
	item, err := db.CreateStoreItem(c.Request().Context(), s.db, req.Name, req.Cost, req.Stock)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, item)
}

type setStoreItemActiveRequest struct {
	Active bool `json:"active"`
}

func (s *Server) setStoreItemActive(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req setStoreItemActiveRequest
	if err := s.bind(c, &req); err != nil {
		return err
	}
	if err := db.SetStoreItemActive(c.Request().Context(), s.db, id, req.Active); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

type createItemRequestRequest struct {
	ItemID int64 `json:"itemId" validate:"required,gt=0"`
}

func (s *Server) createItemRequest(c echo.Context) error {
	var req createItemRequestRequest
	if err := s.bind(c, &req); err != nil {
		return err
	}
	caller := currentUser(c)
	request, err := db.CreateItemRequest(c.Request().Context(), s.db, caller.ID, req.ItemID)
	if err != nil {
		return err
	}
	item, err := db.GetStoreItem(c.Request().Context(), s.db, req.ItemID)
	if err == nil {
		s.notifier.ItemRequestFiled(caller.Name, item.Name, item.Cost)
	}
	return c.JSON(http.StatusCreated, request)
}

func (s *Server) listPendingItemRequests(c echo.Context) error {
	requests, err := db.ListPendingItemRequests(c.Request().Context(), s.db)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, requests)
}

func (s *Server) approveItemRequest(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	caller := currentUser(c)
	if err := db.ApproveItemRequest(c.Request().Context(), s.db, id, caller.ID); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) rejectItemRequest(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	caller := currentUser(c)
	if err := db.RejectItemRequest(c.Request().Context(), s.db, id, caller.ID); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
