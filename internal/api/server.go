package api

import (
	"context"
	"database/sql"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/eduraapp/edura-backend/internal/config"
	"github.com/eduraapp/edura-backend/internal/logging"
	"github.com/eduraapp/edura-backend/internal/metrics"
	"github.com/eduraapp/edura-backend/internal/models"
	"github.com/eduraapp/edura-backend/internal/notify"
)

type Server struct {
	db       *sql.DB
	log      *logging.Log
	cfg      *config.Config
	notifier *notify.Notifier
	app      *echo.Echo
	validate *validator.Validate
}

func New(database *sql.DB, log *logging.Log, cfg *config.Config, notifier *notify.Notifier) *Server {
	s := &Server{
		db:       database,
		log:      log,
		cfg:      cfg,
		notifier: notifier,
		app:      echo.New(),
		validate: validator.New(),
	}
	s.setup()
	return s
}

func (s *Server) setup() {
	s.app.HideBanner = true
	s.app.HTTPErrorHandler = newHTTPErrorHandler(s.log.Sugar)
	s.app.Pre(middleware.RemoveTrailingSlash())
	s.app.Use(middleware.Recover())
	s.app.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			err := next(c)
			metrics.ObserveRequest(c.Request().Method, c.Path(), c.Response().Status)
			return err
		}
	})

	api := s.app.Group("/api")

	// Registration is the only unauthenticated write.
	api.POST("/registrations", s.submitRegistration)

	authed := api.Group("", s.requireUser)
	admin := requireRole(models.Admin)
	staff := requireRole(models.Admin, models.Tutor, models.Asistan)

	authed.GET("/registrations/pending", s.listPendingRegistrations, admin)
	authed.POST("/registrations/:id/process", s.processRegistration, admin)

	authed.GET("/users", s.listUsers, staff)
	authed.POST("/users", s.createUser, admin)
	authed.GET("/users/:id", s.getUser)
	authed.DELETE("/users/:id", s.deleteUser, admin)
	authed.PUT("/users/:id/role", s.setUserRole, admin)
	authed.PUT("/users/:id/tutor", s.assignTutor, admin)
	authed.PUT("/users/:id/counters", s.setCachedCounters, admin)
	authed.GET("/classrooms/mine", s.myClassroom, requireRole(models.Tutor))

	authed.GET("/periods", s.listPeriods)
	authed.POST("/periods", s.createPeriod, admin)
	authed.POST("/periods/:id/activate", s.activatePeriod, admin)

	authed.GET("/me/balance", s.myBalance)
	authed.POST("/points/award", s.awardPoints, staff)
	authed.POST("/points/:id/rollback", s.rollbackPoints, staff)
	authed.POST("/experience/award", s.awardExperience, staff)
	authed.POST("/experience/:id/rollback", s.rollbackExperience, admin)
	authed.GET("/students/:id/history", s.pointsHistory, staff)
	authed.GET("/students/:id/history/export", s.exportHistory, staff)
	authed.GET("/leaderboard", s.leaderboard)
	authed.GET("/leaderboard/export", s.exportLeaderboard, staff)

	authed.GET("/store/items", s.listStoreItems)
	authed.POST("/store/items", s.createStoreItem, admin)
	authed.PUT("/store/items/:id/active", s.setStoreItemActive, admin)
	authed.POST("/store/requests", s.createItemRequest, requireRole(models.Student))
	authed.GET("/store/requests/pending", s.listPendingItemRequests, staff)
	authed.POST("/store/requests/:id/approve", s.approveItemRequest, staff)
	authed.POST("/store/requests/:id/reject", s.rejectItemRequest, staff)

	authed.GET("/events", s.listEvents)
	authed.POST("/events", s.createEvent, staff)
	authed.POST("/events/:id/join", s.joinEvent)
	authed.POST("/events/:id/leave", s.leaveEvent)

	authed.POST("/students/:id/notes", s.createNote, staff)
	authed.GET("/students/:id/notes", s.listNotes, staff)
	authed.POST("/students/:id/reports", s.createReport, staff)
	authed.GET("/students/:id/reports", s.listReports, staff)

	authed.POST("/wishes", s.createWish)
	authed.GET("/wishes", s.listWishes, requireRole(models.Admin, models.Board))

	authed.GET("/cards", s.listCards)
	authed.POST("/cards", s.createCard, admin)
	authed.POST("/cards/:id/award", s.awardCard, staff)
}

func (s *Server) Start() error {
	err := s.app.Start(s.cfg.HTTPAddr)
	if err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

// Handler exposes the router for handler tests.
func (s *Server) Handler() http.Handler { return s.app }

func (s *Server) bind(c echo.Context, v any) error {
	if err := c.Bind(v); err != nil {
		return err
	}
	return s.validate.Struct(v)
}
