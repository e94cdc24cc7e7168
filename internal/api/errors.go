package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v5"

	"github.com/samcharles93/seatmap/internal/archive"
	"github.com/samcharles93/seatmap/internal/extract"
	"github.com/samcharles93/seatmap/internal/worlddb"
	"github.com/samcharles93/seatmap/pkg/dbc"
)

var ErrInvalidRequest = errors.New("invalid_request")

type invalidRequestError struct {
	msg string
}

func (e invalidRequestError) Error() string {
	return e.msg
}

func (e invalidRequestError) Unwrap() error {
	return ErrInvalidRequest
}

func newInvalidRequest(msg string) error {
	return invalidRequestError{msg: msg}
}

type ResponseError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Param   string `json:"param,omitempty"`
}

func writeBadRequest(c *echo.Context, msg, param string) error {
	return writeError(c, http.StatusBadRequest, "invalid_request_error", msg, param)
}

func writeNotFound(c *echo.Context, msg string) error {
	return writeError(c, http.StatusNotFound, "not_found_error", msg, "")
}

func writeError(c *echo.Context, status int, errType, msg, param string) error {
	return c.JSON(status, map[string]any{
		"error": ResponseError{
			Message: msg,
			Type:    errType,
			Param:   param,
		},
	})
}

// writeErr maps pipeline errors to a status.
func writeErr(c *echo.Context, err error) error {
	switch {
	case errors.Is(err, ErrInvalidRequest), errors.Is(err, extract.ErrNoVehicle):
		return writeBadRequest(c, err.Error(), "")
	case errors.Is(err, worlddb.ErrNotFound),
		errors.Is(err, dbc.ErrNotFound),
		errors.Is(err, extract.ErrUnknownTable),
		errors.Is(err, archive.ErrNotFound):
		return writeNotFound(c, err.Error())
	default:
		return writeError(c, http.StatusInternalServerError, "server_error", err.Error(), "")
	}
}
