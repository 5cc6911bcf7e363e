package aggregator

import (
	"io"
	"net/http"
	"time"

	bCtx "github.com/walrens/gateway/base/ctx"
	"github.com/walrens/gateway/base/log"
	"github.com/walrens/gateway/base/metrics"
)

const defaultTimeout = 8 * time.Second

func NewClient(cfg *ClientCfg) Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &client{
		client:  cfg.HttpClient,
		timeout: timeout,
		met:     metrics.New("aggregator"),
	}
}

type client struct {
	client  http.Client
	timeout time.Duration
	met     metrics.Service
}

func (c *client) Get(ctx bCtx.Ctx, url string) (*Response, error) {
	ctx, cancel := bCtx.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		ctx.WithFields(log.Fields{
			"url": url,
			"err": err,
		}).Error("NewRequestWithContext failed")
		return nil, err
	}
	req.Header.Set("Accept", "application/octet-stream")

	timer := c.met.BumpTime("get.latency")
	resp, err := c.client.Do(req)
	timer.End()
	if err != nil {
		c.met.BumpSum("get.err", 1)
		ctx.WithFields(log.Fields{
			"url": url,
			"err": err,
		}).Error("client.Do failed")
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.met.BumpSum("read.err", 1)
		ctx.WithFields(log.Fields{
			"url": url,
			"err": err,
		}).Error("failed to read body")
		return nil, err
	}

	c.met.BumpSum("get.status", 1, "status", http.StatusText(resp.StatusCode))
	return &Response{
		Status: resp.StatusCode,
		Header: resp.Header,
		Body:   body,
	}, nil
}
