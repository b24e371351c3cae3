package http

import (
	"encoding/base64"
	"errors"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	echo "github.com/labstack/echo/v4"

	"github.com/mavmaso/ficherors/internal/csvio"
	"github.com/mavmaso/ficherors/internal/metrics"
	"github.com/mavmaso/ficherors/internal/pipeline"
)

var validate = validator.New()

// listReq carries list content either as text or as raw base64 bytes (for
// legacy encodings that are not valid JSON strings).
type listReq struct {
	pipeline.Request
	Content       string `json:"content" validate:"required_without=ContentBase64"`
	ContentBase64 string `json:"content_base64" validate:"omitempty,base64"`
}

func (r listReq) content() string {
	if r.Content != "" {
		return r.Content
	}
	raw, _ := base64.StdEncoding.DecodeString(r.ContentBase64)
	return string(raw)
}

type contentReq struct {
	Content string `json:"content" validate:"required"`
}

// bindList binds and validates a list request. defaultCountry fills a missing
// country.
func bindList(c echo.Context, defaultCountry string) (listReq, error) {
	var req listReq
	if err := c.Bind(&req); err != nil {
		return req, err
	}
	if strings.TrimSpace(req.Country) == "" {
		req.Country = defaultCountry
	}
	req.Country = strings.ToUpper(strings.TrimSpace(req.Country))
	if err := validate.Struct(req); err != nil {
		return req, err
	}
	if err := req.Functions.Validate(); err != nil {
		return req, err
	}
	return req, nil
}

func processListHandler(p *pipeline.Transformer, defaultCountry string) echo.HandlerFunc {
	return func(c echo.Context) error {
		req, err := bindList(c, defaultCountry)
		if err != nil {
			return listOrBadRequest(c, err)
		}

		res, err := p.ProcessString(c.Request().Context(), req.content(), req.Request)
		if err != nil {
			return listError(c, err)
		}
		return c.JSON(http.StatusOK, res)
	}
}

func verifyListHandler() echo.HandlerFunc {
	return func(c echo.Context) error {
		var req contentReq
		if err := c.Bind(&req); err != nil {
			return badRequest(c, err)
		}
		if err := validate.Struct(req); err != nil {
			return badRequest(c, err)
		}

		rep := csvio.Verify(req.Content)
		metrics.ListsTotal.WithLabelValues("verify", result(rep.Valid)).Inc()
		return c.JSON(http.StatusOK, rep)
	}
}

func readListHandler() echo.HandlerFunc {
	return func(c echo.Context) error {
		var req contentReq
		if err := c.Bind(&req); err != nil {
			return badRequest(c, err)
		}
		if err := validate.Struct(req); err != nil {
			return badRequest(c, err)
		}

		table, err := csvio.ParseString(req.Content)
		if err != nil {
			metrics.ListsTotal.WithLabelValues("read", "error").Inc()
			return listError(c, err)
		}
		metrics.ListsTotal.WithLabelValues("read", "ok").Inc()
		return c.JSON(http.StatusOK, map[string]any{
			"headers": table.Headers,
			"rows":    table.Rows,
			"count":   len(table.Rows),
		})
	}
}

func countriesHandler(p *pipeline.Transformer) echo.HandlerFunc {
	return func(c echo.Context) error {
		rules := p.Rules().All()
		return c.JSON(http.StatusOK, map[string]any{
			"count":   len(rules),
			"results": rules,
		})
	}
}

func listOrBadRequest(c echo.Context, err error) error {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return badRequest(c, errors.New(http.StatusText(he.Code)))
	}
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		return badRequest(c, err)
	}
	return listError(c, err)
}

func result(ok bool) string {
	if ok {
		return "ok"
	}
	return "error"
}
