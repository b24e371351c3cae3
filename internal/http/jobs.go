package http

import (
	"context"
	"errors"
	"net/http"

	echo "github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"

	"github.com/mavmaso/ficherors/internal/http/middleware"
	"github.com/mavmaso/ficherors/internal/model"
	"github.com/mavmaso/ficherors/internal/pipeline"
	"github.com/mavmaso/ficherors/internal/repository"
	"github.com/mavmaso/ficherors/internal/util"
)

// JobQueue is the async side of the API, backed by queue.Service.
type JobQueue interface {
	Enqueue(ctx context.Context, req pipeline.Request, content string) (string, error)
	Get(ctx context.Context, id string) (model.Job, error)
}

func jobsDisabled(c echo.Context) error {
	return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": "jobs disabled"})
}

func createJobHandler(q JobQueue, defaultCountry string) echo.HandlerFunc {
	return func(c echo.Context) error {
		if q == nil {
			return jobsDisabled(c)
		}
		req, err := bindList(c, defaultCountry)
		if err != nil {
			return listOrBadRequest(c, err)
		}

		id, err := q.Enqueue(c.Request().Context(), req.Request, req.content())
		if err != nil {
			log.Errorf("enqueue failed: %v", err)
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "db error"})
		}

		client, _ := middleware.ClientIDFromCtx(c)
		return c.JSON(http.StatusAccepted, map[string]any{
			"enqueued": true,
			"id":       id,
			"country":  req.Country,
			"client":   client,
		})
	}
}

func getJobHandler(q JobQueue) echo.HandlerFunc {
	return func(c echo.Context) error {
		if q == nil {
			return jobsDisabled(c)
		}
		id := c.Param("id")
		if !util.ValidID(id) {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid id"})
		}

		job, err := q.Get(c.Request().Context(), id)
		if err != nil {
			if errors.Is(err, repository.ErrJobNotFound) {
				return c.JSON(http.StatusNotFound, map[string]string{"error": "not found"})
			}
			log.Errorf("get job failed: %v", err)
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "db error"})
		}
		return c.JSON(http.StatusOK, job)
	}
}
