package middleware

import (
	"net"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/walrens/gateway/base/ctx"
	"github.com/walrens/gateway/base/log"
	"github.com/walrens/gateway/base/metrics"
	"github.com/walrens/gateway/domain/gateway"
)

const ethSuffix = ".eth"

// GoMiddleware represent the data-struct for middleware
type GoMiddleware struct {
	// gatewayDomain enables <name>.eth.<gatewayDomain> hosts, empty disables
	gatewayDomain string
}

// InitMiddleware initialize the middleware
func InitMiddleware(gatewayDomain string) *GoMiddleware {
	return &GoMiddleware{gatewayDomain: strings.ToLower(strings.Trim(gatewayDomain, "."))}
}

// CORS will handle the CORS middleware
func (m *GoMiddleware) CORS(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		h := c.Response().Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Expose-Headers", strings.Join([]string{
			gateway.HeaderCache,
			gateway.HeaderEnsName,
			gateway.HeaderWalrusBlob,
			gateway.HeaderWalrusSite,
		}, ", "))
		return next(c)
	}
}

// AddContext adds custom context into echo, cancelled when the client goes away
func (m *GoMiddleware) AddContext() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) (err error) {
			cont := ctx.WithValue(ctx.From(c.Request().Context()), "requestID", c.Response().Header().Get(echo.HeaderXRequestID))
			c.Set("ctx", cont)
			return next(c)
		}
	}
}

// HostRewrite maps a request for <name>.eth.<gatewayDomain>/<path> onto
// /<name>.eth/<path>. Use it with echo#Pre so routing sees the rewritten path.
func (m *GoMiddleware) HostRewrite() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if name, ok := m.hostName(c.Request().Host); ok {
				req := c.Request()
				req.URL.Path = "/" + name + req.URL.Path
				req.URL.RawPath = ""
			}
			return next(c)
		}
	}
}

func (m *GoMiddleware) hostName(host string) (string, bool) {
	if m.gatewayDomain == "" {
		return "", false
	}
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	host = strings.ToLower(host)

	suffix := "." + m.gatewayDomain
	if !strings.HasSuffix(host, suffix) {
		return "", false
	}
	name := strings.TrimSuffix(host, suffix)
	if !strings.HasSuffix(name, ethSuffix) || name == ethSuffix {
		return "", false
	}
	return name, true
}

// ResponseLogger logs response for every request
func (m *GoMiddleware) ResponseLogger() echo.MiddlewareFunc {
	met := metrics.New("http")
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			defer met.BumpTime("request.time", "method", c.Request().Method, "path", c.Path()).End()

			start := time.Now()

			err := next(c)
			if err != nil {
				c.Error(err)
			}

			req := c.Request()
			res := c.Response()

			fields := log.Fields{
				"ms":             time.Since(start).Seconds() * 1000,
				"httpStatus":     res.Status,
				"host":           req.Host,
				"remoteIP":       c.RealIP(),
				"uri":            req.URL.Path,
				"httpMethod":     req.Method,
				"size":           res.Size,
				"userAgent":      req.UserAgent(),
				"acceptEncoding": req.Header.Get("Accept-Encoding"),
				"referer":        req.Header.Get("Referer"),
				"cache":          res.Header().Get(gateway.HeaderCache),
				"ensName":        res.Header().Get(gateway.HeaderEnsName),
			}

			if res.Status >= 400 {
				fields["nextErr"] = err
			}

			cont, ok := c.Get("ctx").(ctx.Ctx)
			if !ok {
				cont = ctx.Background()
			}
			cont.WithFields(fields).Info("response")
			return nil
		}
	}
}
