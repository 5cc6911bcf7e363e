package usecase

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"golang.org/x/sync/singleflight"

	"github.com/walrens/gateway/base/ctx"
	"github.com/walrens/gateway/base/goroutine"
	"github.com/walrens/gateway/base/log"
	"github.com/walrens/gateway/base/metrics"
	"github.com/walrens/gateway/domain"
	"github.com/walrens/gateway/domain/gateway"
	"github.com/walrens/gateway/domain/resolver"
	"github.com/walrens/gateway/domain/walrus"
	"github.com/walrens/gateway/service/aggregator"
)

const (
	defaultSiteMaxAge   = time.Hour
	defaultBlobMaxAge   = 10 * time.Minute
	defaultFetchTimeout = 10 * time.Second
	storeTimeout        = 5 * time.Second

	cacheControlNoStore = "no-store"
	contentTypeText     = "text/plain; charset=utf-8"
	contentTypeHtml     = "text/html"
)

type GatewayUseCaseCfg struct {
	Resolver   resolver.Usecase
	Aggregator aggregator.Client
	Cache      gateway.ResponseCacheRepo
	// Pool runs cache writes, a goroutine per write when nil
	Pool *goroutine.Pool

	// Base is the aggregator used when no network tag matches
	Base string
	// Networks maps a network tag onto its aggregator
	Networks       map[string]string
	DefaultNetwork string

	SiteMaxAge        time.Duration
	BlobMaxAge        time.Duration
	FetchTimeout      time.Duration
	MaxCacheableBytes int
	SniffContentType  bool
}

type impl struct {
	resolver   resolver.Usecase
	aggregator aggregator.Client
	cache      gateway.ResponseCacheRepo
	pool       *goroutine.Pool
	flight     singleflight.Group
	met        metrics.Service

	base           string
	networks       map[string]string
	defaultNetwork string

	siteCacheControl  string
	blobCacheControl  string
	fetchTimeout      time.Duration
	maxCacheableBytes int
	sniff             bool
}

func NewGatewayUseCase(cfg *GatewayUseCaseCfg) gateway.Usecase {
	if cfg.SiteMaxAge <= 0 {
		cfg.SiteMaxAge = defaultSiteMaxAge
	}
	if cfg.BlobMaxAge <= 0 {
		cfg.BlobMaxAge = defaultBlobMaxAge
	}
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = defaultFetchTimeout
	}

	return &impl{
		resolver:          cfg.Resolver,
		aggregator:        cfg.Aggregator,
		cache:             cfg.Cache,
		pool:              cfg.Pool,
		met:               metrics.New("gateway"),
		base:              cfg.Base,
		networks:          cfg.Networks,
		defaultNetwork:    cfg.DefaultNetwork,
		siteCacheControl:  cacheControl(cfg.SiteMaxAge),
		blobCacheControl:  cacheControl(cfg.BlobMaxAge),
		fetchTimeout:      cfg.FetchTimeout,
		maxCacheableBytes: cfg.MaxCacheableBytes,
		sniff:             cfg.SniffContentType,
	}
}

func cacheControl(maxAge time.Duration) string {
	return fmt.Sprintf("public, max-age=%d", int(maxAge/time.Second))
}

// outcome is shared by every request waiting on the same upstream url, so it
// must not carry request specific headers
type outcome struct {
	status       int
	contentType  string
	cacheControl string
	body         []byte
	cacheStatus  gateway.CacheStatus
	// upstreamType is the raw upstream header, blobs type per request from it
	upstreamType string
}

func errorOutcome(status int, msg string) *outcome {
	return &outcome{
		status:       status,
		contentType:  contentTypeText,
		cacheControl: cacheControlNoStore,
		body:         []byte(msg),
		cacheStatus:  gateway.CacheMiss,
	}
}

func entryOutcome(entry *gateway.Entry, status gateway.CacheStatus) *outcome {
	return &outcome{
		status:       entry.Status,
		contentType:  entry.ContentType,
		cacheControl: entry.CacheControl,
		body:         entry.Body,
		cacheStatus:  status,
		upstreamType: entry.UpstreamContentType,
	}
}

func (im *impl) Serve(c ctx.Ctx, req gateway.Request) *gateway.Response {
	if req.Path == "" {
		req.Path = "/"
	}
	c = ctx.WithValues(c, map[string]interface{}{
		"ensName": req.EnsName,
		"path":    req.Path,
	})

	start := time.Now()
	m, res := im.serve(c, req)
	resp := im.respond(req, m, res)

	im.met.BumpSum("serve", 1, "cache", string(res.cacheStatus), "status", strconv.Itoa(res.status))
	im.met.BumpHistogram("serve.ms", float64(time.Since(start)/time.Millisecond), "cache", string(res.cacheStatus))
	return resp
}

func (im *impl) serve(c ctx.Ctx, req gateway.Request) (*walrus.Mapping, *outcome) {
	rec, err := im.resolver.Resolve(c, req.EnsName)
	if errors.Is(err, domain.ErrRecordNotFound) || errors.Is(err, domain.ErrInvalidName) {
		return nil, errorOutcome(http.StatusNotFound, domain.ErrRecordNotFound.Error())
	} else if err != nil {
		c.WithField("err", err).Error("resolver.Resolve failed")
		return nil, errorOutcome(http.StatusBadGateway, domain.ErrResolutionFailed.Error())
	}

	m, ok := walrus.Parse(rec.Value)
	if !ok {
		c.WithFields(log.Fields{"key": rec.Key, "record": rec.Value}).Warn("invalid mapping")
		return nil, errorOutcome(http.StatusBadRequest, domain.ErrInvalidMapping.Error())
	}

	url := walrus.BuildURL(m, req.Path, im.baseFor(m))

	entry, err := im.cache.Get(c, url)
	if err == nil {
		return &m, entryOutcome(entry, gateway.CacheHit)
	} else if err != domain.ErrNotFound {
		c.WithField("err", err).WithField("url", url).Warn("cache.Get failed, treat as miss")
	}

	ch := im.flight.DoChan(url, func() (interface{}, error) {
		// the fetch outlives the request so the cache is filled for the next one
		fc, cancel := ctx.WithTimeout(ctx.Detach(c), im.fetchTimeout)
		defer cancel()
		return im.fetch(fc, m, req.Path, url), nil
	})

	select {
	case r := <-ch:
		return &m, r.Val.(*outcome)
	case <-c.Done():
		c.WithField("url", url).Info("request cancelled while fetching")
		return &m, errorOutcome(http.StatusServiceUnavailable, "request cancelled")
	}
}

func (im *impl) baseFor(m walrus.Mapping) string {
	if base, ok := im.networks[m.Network]; ok && m.Network != "" {
		return base
	}
	if base, ok := im.networks[im.defaultNetwork]; ok && im.defaultNetwork != "" {
		return base
	}
	return im.base
}

func (im *impl) fetch(c ctx.Ctx, m walrus.Mapping, reqPath, url string) *outcome {
	resp, err := im.get(c, url)
	if err != nil {
		return errorOutcome(http.StatusBadGateway, "upstream fetch failed")
	}

	if resp.OK() {
		entry := im.newEntry(m, reqPath, url, resp)
		im.store(c, m.Kind, entry)
		return entryOutcome(entry, gateway.CacheMiss)
	}

	if m.IsSite() && !walrus.HasExtension(reqPath) && resp.Status == http.StatusNotFound {
		if res := im.spaFallback(c, m, url); res != nil {
			return res
		}
	}

	c.WithFields(log.Fields{"url": url, "status": resp.Status}).Info("upstream non success")
	return errorOutcome(resp.Status, strconv.Itoa(resp.Status)+" "+http.StatusText(resp.Status))
}

// spaFallback serves the index of a site for a path the site does not have.
// It retries once and returns nil when the index cannot be served either.
func (im *impl) spaFallback(c ctx.Ctx, m walrus.Mapping, url string) *outcome {
	indexURL := walrus.BuildURL(m, "/", im.baseFor(m))
	if indexURL == url {
		return nil
	}

	resp, err := im.get(c, indexURL)
	if err != nil || !resp.OK() {
		return nil
	}
	c.WithField("url", url).Debug("spa fallback")

	entry := &gateway.Entry{
		Url:          url,
		Status:       http.StatusOK,
		ContentType:  contentTypeHtml,
		CacheControl: im.siteCacheControl,
		Body:         resp.Body,
		StoredAt:     time.Now().UTC(),
	}
	im.store(c, m.Kind, entry)
	im.store(c, m.Kind, im.newEntry(m, "/", indexURL, resp))
	return entryOutcome(entry, gateway.CacheSpaFallback)
}

func (im *impl) get(c ctx.Ctx, url string) (*aggregator.Response, error) {
	defer im.met.BumpTime("upstream.time").End()
	return im.aggregator.Get(c, url)
}

func (im *impl) newEntry(m walrus.Mapping, reqPath, url string, resp *aggregator.Response) *gateway.Entry {
	// a blob entry is shared by every request path, so its stored type must
	// not depend on the path that filled it
	cc := im.blobCacheControl
	file := ""
	if m.IsSite() {
		cc = im.siteCacheControl
		file = walrus.SitePath(m, reqPath)
	}

	upstream := resp.Header.Get("Content-Type")
	return &gateway.Entry{
		Url:                 url,
		Status:              resp.Status,
		ContentType:         im.contentType(file, upstream, resp.Body),
		UpstreamContentType: upstream,
		CacheControl:        cc,
		Body:                resp.Body,
		StoredAt:            time.Now().UTC(),
	}
}

// contentType prefers the upstream header, except application/octet-stream:
// aggregators send it for every stored file, so it gives way to the extension
// table of file. Without header or extension the body is sniffed when enabled.
func (im *impl) contentType(file, upstream string, body []byte) string {
	if upstream != "" && !strings.HasPrefix(upstream, walrus.OctetStream) {
		return upstream
	}
	if t, ok := walrus.ContentTypeByPath(file); ok {
		return t
	}
	if upstream != "" {
		return upstream
	}
	if im.sniff && len(body) > 0 {
		return mimetype.Detect(body).String()
	}
	return walrus.OctetStream
}

// store writes entry in the background, the response never waits for it
func (im *impl) store(c ctx.Ctx, kind walrus.Kind, entry *gateway.Entry) {
	if im.maxCacheableBytes > 0 && len(entry.Body) > im.maxCacheableBytes {
		c.WithFields(log.Fields{"url": entry.Url, "size": len(entry.Body)}).Debug("too large to cache")
		im.met.BumpSum("cache.store.skip", 1)
		return
	}

	task := func() {
		sc, cancel := ctx.WithTimeout(ctx.Detach(c), storeTimeout)
		defer cancel()
		if err := im.cache.Store(sc, kind, entry); err != nil {
			im.met.BumpSum("cache.store.err", 1)
			sc.WithFields(log.Fields{"url": entry.Url, "err": err}).Warn("cache.Store failed")
		}
	}

	if im.pool != nil {
		im.pool.Go(task)
		return
	}
	goroutine.RecoverableGo(task)
}

func (im *impl) respond(req gateway.Request, m *walrus.Mapping, res *outcome) *gateway.Response {
	contentType := res.contentType
	if m != nil && !m.IsSite() && res.status >= 200 && res.status < 300 {
		contentType = im.contentType(req.Path, res.upstreamType, res.body)
	}

	h := http.Header{}
	h.Set("Content-Type", contentType)
	h.Set("Cache-Control", res.cacheControl)
	h.Set(gateway.HeaderCache, string(res.cacheStatus))
	h.Set(gateway.HeaderEnsName, req.EnsName)
	if m != nil {
		if m.IsSite() {
			h.Set(gateway.HeaderWalrusSite, m.ID)
		} else {
			h.Set(gateway.HeaderWalrusBlob, m.ID)
		}
	}

	return &gateway.Response{
		Status:      res.status,
		Header:      h,
		Body:        res.body,
		CacheStatus: res.cacheStatus,
	}
}

func (im *impl) Resolve(c ctx.Ctx, name string) (*gateway.Resolution, error) {
	rec, err := im.resolver.Resolve(c, name)
	if err != nil {
		return nil, err
	}

	m, ok := walrus.Parse(rec.Value)
	if !ok {
		return nil, domain.ErrInvalidMapping
	}

	owner, err := im.resolver.Owner(c, rec.Name)
	if err != nil {
		c.WithField("err", err).Warn("resolver.Owner failed")
	}

	return &gateway.Resolution{
		EnsName:     rec.Name,
		RecordKey:   rec.Key,
		Record:      rec.Value,
		Mapping:     m,
		UpstreamUrl: walrus.BuildURL(m, "/", im.baseFor(m)),
		Owner:       owner,
	}, nil
}
