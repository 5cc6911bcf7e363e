package delivery

import (
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/walrens/gateway/base/ctx"
	"github.com/walrens/gateway/domain"
)

type JsonResponseStatus string

const (
	JsonResponseStatusSuccess JsonResponseStatus = "success"
	JsonResponseStatusFail    JsonResponseStatus = "fail"
)

type JsonResponse struct {
	Data   interface{}        `json:"data"`
	Status JsonResponseStatus `json:"status"`
}

// StatusOf maps domain errors onto http status, fallback when none matches
func StatusOf(err error, fallback int) int {
	var verr validator.ValidationErrors
	switch {
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrRecordNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidMapping), errors.Is(err, domain.ErrInvalidName),
		errors.Is(err, domain.ErrBadParamInput), errors.As(err, &verr):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrResolutionFailed):
		return http.StatusBadGateway
	}
	return fallback
}

func MakeJsonResp(c echo.Context, status int, data interface{}) error {
	if err, ok := data.(error); ok {
		status = StatusOf(err, status)
		switch {
		case status == http.StatusBadGateway:
			data = domain.ErrResolutionFailed.Error()
		case status >= http.StatusInternalServerError:
			data = domain.ErrInternalServerError.Error()
		default:
			data = err.Error()
		}
	}

	if status >= 400 {
		return c.JSON(status, JsonResponse{data, JsonResponseStatusFail})
	}

	if status >= 200 && status < 300 {
		return c.JSON(status, JsonResponse{data, JsonResponseStatusSuccess})
	}

	return c.JSON(status, data)
}

// ErrorHandler answers errors escaping handlers in plain text. Details of
// server errors are logged and never sent.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status := http.StatusInternalServerError
	var he *echo.HTTPError
	if errors.As(err, &he) {
		status = he.Code
	} else {
		status = StatusOf(err, status)
	}

	msg := http.StatusText(status)
	switch {
	case status == http.StatusNotFound:
		msg = domain.ErrNotFound.Error()
	case status >= http.StatusInternalServerError:
		cont, ok := c.Get("ctx").(ctx.Ctx)
		if !ok {
			cont = ctx.Background()
		}
		cont.WithField("err", err).WithField("uri", c.Request().URL.Path).Error("unhandled error")
	}

	var werr error
	if c.Request().Method == http.MethodHead {
		werr = c.NoContent(status)
	} else {
		werr = c.String(status, msg)
	}
	if werr != nil {
		ctx.Background().WithField("err", werr).Error("failed to write error response")
	}
}
