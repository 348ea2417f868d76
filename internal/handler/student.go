package handler

import (
	"net/http"

	"github.com/bookdesk/librarian/internal/errs"
	"github.com/bookdesk/librarian/internal/model"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

func (h *Handler) RegisterStudent(c echo.Context) error {
	var student model.Student
	if err := c.Bind(&student); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(student); err != nil {
		return err
	}

	if err := h.studentSvc.Register(c.Request().Context(), student); err != nil {
		if errors.Is(err, errs.ErrConflict) {
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusCreated, student)
}

func (h *Handler) GetStudents(c echo.Context) error {
	students, err := h.studentSvc.List(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, students)
}

func (h *Handler) DeleteStudent(c echo.Context) error {
	username := c.Param("username")
	if username == "" {
		return echo.NewHTTPError(http.StatusBadRequest, errs.ErrUserName.Error())
	}

	if err := h.studentSvc.Delete(c.Request().Context(), username); err != nil {
		switch {
		case errors.Is(err, errs.ErrNotFound):
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		case errors.Is(err, errs.ErrConflict):
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}
