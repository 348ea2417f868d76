package handler

import (
	"net/http"
	"time"

	"github.com/bookdesk/librarian/internal/errs"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

func (h *Handler) Borrow(c echo.Context) error {
	id, err := bookID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	student, err := userName(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
	}

	loan, err := h.loanSvc.Borrow(c.Request().Context(), id, student)
	if err != nil {
		switch {
		case errors.Is(err, errs.ErrNotFound):
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		case errors.Is(err, errs.ErrNotAvailable):
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusCreated, loan)
}

func (h *Handler) Return(c echo.Context) error {
	id, err := bookID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	student, err := userName(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
	}

	loan, err := h.loanSvc.Return(c.Request().Context(), id, student)
	if err != nil {
		if errors.Is(err, errs.ErrNoActiveLoan) {
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, loan)
}

func (h *Handler) GetLoans(c echo.Context) error {
	student, err := userName(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
	}

	loans, err := h.loanSvc.ListByStudent(c.Request().Context(), student)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, loans)
}

func (h *Handler) GetAllLoans(c echo.Context) error {
	loans, err := h.loanSvc.ListAll(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, loans)
}

// asOf defaults to today; overdue means due strictly before it.
func asOfParam(c echo.Context) (time.Time, error) {
	param := c.QueryParam("asOf")
	if param == "" {
		return time.Now().UTC(), nil
	}
	asOf, err := time.Parse(time.DateOnly, param)
	if err != nil {
		return time.Time{}, errors.New("asOf is invalid, want YYYY-MM-DD")
	}
	return asOf, nil
}

func (h *Handler) GetOverdue(c echo.Context) error {
	asOf, err := asOfParam(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	overdue, err := h.overdueSvc.FindOverdue(c.Request().Context(), asOf)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, overdue)
}

func (h *Handler) NotifyOverdue(c echo.Context) error {
	asOf, err := asOfParam(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	sent, err := h.overdueSvc.SendNotices(c.Request().Context(), asOf)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, echo.Map{"sent": sent})
}
