package handler

import (
	"net/http"
	"strconv"

	"github.com/bookdesk/librarian/internal/errs"
	"github.com/bookdesk/librarian/internal/model"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

func bookID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.New("book id is invalid")
	}
	return id, nil
}

func (h *Handler) SearchBooks(c echo.Context) error {
	ctx := c.Request().Context()

	filter := model.SearchFilter{
		Keyword:  c.QueryParam("keyword"),
		Category: c.QueryParam("category"),
	}
	if onlyParam := c.QueryParam("onlyAvailable"); onlyParam != "" {
		only, err := strconv.ParseBool(onlyParam)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, errors.New("onlyAvailable is invalid"))
		}
		filter.OnlyAvailable = only
	}

	books, err := h.catalogSvc.Search(ctx, filter)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, books)
}

func (h *Handler) CreateBook(c echo.Context) error {
	var req model.BookRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(req); err != nil {
		return err
	}

	book, err := h.catalogSvc.CreateBook(c.Request().Context(), req)
	if err != nil {
		if errors.Is(err, errs.ErrConflict) {
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusCreated, book)
}

func (h *Handler) GetBook(c echo.Context) error {
	id, err := bookID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	book, err := h.catalogSvc.GetBook(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, book)
}

func (h *Handler) UpdateBook(c echo.Context) error {
	id, err := bookID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	var req model.BookRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(req); err != nil {
		return err
	}

	book, err := h.catalogSvc.UpdateBook(c.Request().Context(), id, req)
	if err != nil {
		switch {
		case errors.Is(err, errs.ErrNotFound):
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		case errors.Is(err, errs.ErrConflict):
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, book)
}

func (h *Handler) DeleteBook(c echo.Context) error {
	id, err := bookID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.catalogSvc.DeleteBook(c.Request().Context(), id); err != nil {
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

// GetBookDocument hands out the stored document ref only to a student who
// currently holds the book.
func (h *Handler) GetBookDocument(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := bookID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	student, err := userName(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
	}

	book, err := h.catalogSvc.GetBook(ctx, id)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if book.DocumentRef == "" {
		return echo.NewHTTPError(http.StatusNotFound, "book has no document")
	}

	has, err := h.loanSvc.HasOpenLoan(ctx, id, student)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if !has {
		return echo.NewHTTPError(http.StatusForbidden, "borrow this book to read its document")
	}

	return c.JSON(http.StatusOK, echo.Map{"documentRef": book.DocumentRef})
}

func (h *Handler) GetCategories(c echo.Context) error {
	return c.JSON(http.StatusOK, h.catalogSvc.Categories(c.Request().Context()))
}
