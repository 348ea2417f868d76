package handler

import (
	"net/http"

	md "github.com/bookdesk/librarian/pkg/middleware"

	"github.com/bookdesk/librarian/internal/errs"
	"github.com/bookdesk/librarian/pkg/logger"
	"github.com/bookdesk/librarian/pkg/validate"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

const userNameHeader = "X-User-Name"

type Handler struct {
	catalogSvc CatalogService
	loanSvc    LoanService
	overdueSvc OverdueService
	studentSvc StudentService
	log        *zap.Logger
}

func New(catalogSvc CatalogService, loanSvc LoanService, overdueSvc OverdueService, studentSvc StudentService, log *zap.Logger) *Handler {
	return &Handler{
		catalogSvc: catalogSvc,
		loanSvc:    loanSvc,
		overdueSvc: overdueSvc,
		studentSvc: studentSvc,
		log:        log,
	}
}

func (h *Handler) NewRouter(logCfg logger.Log) *echo.Echo {
	e := echo.New()
	const (
		baseRPS = 10
		apiRPS  = 100
	)
	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		StackSize: 4 << 10, // 4 KB
	}))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{http.MethodGet, http.MethodOptions, http.MethodHead, http.MethodPut, http.MethodPatch, http.MethodPost, http.MethodDelete},
		AllowCredentials: true,
	}))

	base := e.Group("", md.NewRateLimiter(baseRPS))
	base.GET("/manage/health", h.Health)

	e.Validator = validate.NewCustomValidator()
	api := e.Group("/api/v1",
		middleware.RequestLoggerWithConfig(md.RequestLoggerConfig(logCfg)),
		middleware.RequestID(),
		md.NewRateLimiter(apiRPS),
	)

	api.GET("/books", h.SearchBooks)
	api.POST("/books", h.CreateBook)
	api.GET("/books/:id", h.GetBook)
	api.PUT("/books/:id", h.UpdateBook)
	api.DELETE("/books/:id", h.DeleteBook)
	api.GET("/books/:id/document", h.GetBookDocument)
	api.GET("/categories", h.GetCategories)

	api.POST("/books/:id/borrow", h.Borrow)
	api.POST("/books/:id/return", h.Return)
	api.GET("/loans", h.GetLoans)
	api.GET("/loans/all", h.GetAllLoans)
	api.GET("/loans/overdue", h.GetOverdue)
	api.POST("/loans/overdue/notify", h.NotifyOverdue)

	api.POST("/students", h.RegisterStudent)
	api.GET("/students", h.GetStudents)
	api.DELETE("/students/:username", h.DeleteStudent)

	return e
}

func (h *Handler) Health(c echo.Context) error {
	return c.String(http.StatusOK, "OK")
}

func userName(c echo.Context) (string, error) {
	name := c.Request().Header.Get(userNameHeader)
	if name == "" {
		return "", errs.ErrUserName
	}
	return name, nil
}
