package api

import (
	"errors"
	"net/http"

	"github.com/goccy/go-json"
	"github.com/labstack/echo/v5"

	"github.com/samcharles93/pnvram/pkg/nvram"
)

func writeJSON(c *echo.Context, status int, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.JSONBlob(status, b)
}

func writeNotFound(c *echo.Context, msg string) error {
	return writeError(c, http.StatusNotFound, "not_found_error", msg)
}

func writeError(c *echo.Context, status int, errType, msg string) error {
	return writeJSON(c, status, map[string]any{
		"error": ResponseError{
			Message: msg,
			Type:    errType,
		},
	})
}

// writeStoreError maps engine errors onto HTTP statuses.
func writeStoreError(c *echo.Context, err error) error {
	switch {
	case errors.Is(err, nvram.ErrNotFound):
		return writeNotFound(c, err.Error())
	case errors.Is(err, nvram.ErrCorruptFormat), errors.Is(err, nvram.ErrLimitExceeded):
		return writeError(c, http.StatusUnprocessableEntity, "corrupt_store_error", err.Error())
	default:
		return writeError(c, http.StatusInternalServerError, "server_error", err.Error())
	}
}
