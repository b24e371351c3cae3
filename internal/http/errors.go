package http

import (
	"context"
	"errors"
	"net/http"

	echo "github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"

	"github.com/mavmaso/ficherors/internal/csvio"
	"github.com/mavmaso/ficherors/internal/model"
)

// listError maps a list processing failure to a JSON response. Structural
// problems carry their stable code so callers can tell them apart.
func listError(c echo.Context, err error) error {
	if code := csvio.Code(err); code != "" {
		return c.JSON(http.StatusUnprocessableEntity, map[string]string{
			"error":       code,
			"description": err.Error(),
		})
	}
	switch {
	case errors.Is(err, model.ErrInvalidFunctions):
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid_functions", "description": err.Error()})
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": "timeout"})
	}

	log.Errorf("list failed: %v", err)
	return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal error"})
}

func badRequest(c echo.Context, err error) error {
	return c.JSON(http.StatusBadRequest, map[string]string{"error": "bad request", "description": err.Error()})
}
