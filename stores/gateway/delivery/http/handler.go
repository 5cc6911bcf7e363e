package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/walrens/gateway/base/ctx"
	"github.com/walrens/gateway/base/delivery"
	"github.com/walrens/gateway/base/validator"
	"github.com/walrens/gateway/domain"
	"github.com/walrens/gateway/domain/gateway"
	"github.com/walrens/gateway/middleware"
)

// first path segment that never names an ENS name
const reservedSegment = "api"

type handler struct {
	gateway gateway.Usecase
}

// New registers the resolve api and the content routes. resolveCacheTtl > 0
// caches resolve answers with middleware.CacheHttp, which needs SetupCache.
func New(e *echo.Echo, uc gateway.Usecase, resolveCacheTtl time.Duration) {
	h := &handler{
		gateway: uc,
	}

	mws := []echo.MiddlewareFunc{}
	if resolveCacheTtl > 0 {
		mws = append(mws, middleware.CacheHttp(resolveCacheTtl))
	}

	g := e.Group("/api")
	g.GET("/resolve", h.resolve, mws...)

	methods := []string{http.MethodGet, http.MethodHead}
	e.Match(methods, "/:ensName", h.serve)
	e.Match(methods, "/:ensName/*", h.serve)
}

func (h *handler) resolve(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	type payload struct {
		Name string `query:"name" validate:"required,max=255,ensname"`
	}

	p := payload{}
	if err := c.Bind(&p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}
	if err := c.Validate(&p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}

	res, err := h.gateway.Resolve(ctx, p.Name)
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}

	return delivery.MakeJsonResp(c, http.StatusOK, res)
}

func (h *handler) serve(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	name, rest := splitPath(c.Request().URL.Path)
	if name == reservedSegment || !validator.IsEnsName(name) {
		return c.String(http.StatusNotFound, domain.ErrNotFound.Error())
	}

	resp := h.gateway.Serve(ctx, gateway.Request{
		EnsName: name,
		Path:    rest,
	})

	header := c.Response().Header()
	for k, v := range resp.Header {
		header[k] = v
	}
	return c.Blob(resp.Status, resp.Header.Get(echo.HeaderContentType), resp.Body)
}

// splitPath splits /<name>/<rest> into name and /<rest>, rest is at least "/"
func splitPath(p string) (string, string) {
	p = strings.TrimPrefix(p, "/")
	if i := strings.IndexByte(p, '/'); i >= 0 {
		return p[:i], p[i:]
	}
	return p, "/"
}
