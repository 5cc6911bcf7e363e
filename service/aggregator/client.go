package aggregator

import (
	"net/http"
	"time"

	bCtx "github.com/walrens/gateway/base/ctx"
)

// Response is an aggregator answer of any status
type Response struct {
	Status int
	Header http.Header
	Body   []byte
}

func (r *Response) OK() bool {
	return r.Status >= 200 && r.Status < 300
}

// Client fetches blobs and site files from a walrus aggregator. An error is
// only returned when no response was received.
type Client interface {
	Get(ctx bCtx.Ctx, url string) (*Response, error)
}

type ClientCfg struct {
	HttpClient http.Client
	Timeout    time.Duration
}
