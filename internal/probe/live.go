package probe

import (
	"context"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/tkordic/anamnesis/internal/model"
	"github.com/tkordic/anamnesis/internal/util"
	"github.com/tkordic/anamnesis/internal/worker"
)

// probeSleepFunc is the sleep function used between retries (injectable for tests)
var probeSleepFunc = time.Sleep

// LiveProbe checks registry nodes over HTTP.
type LiveProbe struct {
	nodes         []model.NodeConfig
	httpClient    *http.Client
	userAgent     string
	limiter       *worker.Limiter
	degradedAfter time.Duration
	retries       int
	workers       int
}

// NewLiveProbe creates a probe that contacts each node's health
// endpoint. A nil limiter disables rate limiting.
func NewLiveProbe(cfg model.ProbeConfig, httpCfg model.HTTPConfig, workers int, limiter *worker.Limiter) *LiveProbe {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 5 * time.Second
	}
	degradedAfter := cfg.DegradedLatency
	if degradedAfter == 0 {
		degradedAfter = 750 * time.Millisecond
	}
	retries := cfg.Retries
	if retries <= 0 {
		retries = 3
	}
	if workers <= 0 {
		workers = 4
	}

	proxyFunc := util.NewProxyFunc(httpCfg.HTTPProxy, httpCfg.HTTPSProxy, httpCfg.NoProxy)

	return &LiveProbe{
		nodes:     cfg.Nodes,
		userAgent: httpCfg.UserAgent,
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				Proxy: proxyFunc,
			},
		},
		limiter:       limiter,
		degradedAfter: degradedAfter,
		retries:       retries,
		workers:       workers,
	}
}

// Name returns the probe name
func (p *LiveProbe) Name() string { return "live" }

// Check probes all nodes concurrently. Per-node outcomes land in the
// status slice; the error reports only total registry loss.
func (p *LiveProbe) Check(ctx context.Context) ([]model.NodeStatus, error) {
	if len(p.nodes) == 0 {
		return nil, &UnavailableError{Attempted: 0}
	}

	statuses := make([]model.NodeStatus, len(p.nodes))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)
	for i, node := range p.nodes {
		g.Go(func() error {
			statuses[i] = p.checkWithRetry(ctx, node)
			return nil
		})
	}
	_ = g.Wait()

	reachable := 0
	for _, status := range statuses {
		if status.Status != model.NodeOffline {
			reachable++
		}
	}
	if reachable == 0 {
		return statuses, &UnavailableError{Attempted: len(statuses)}
	}
	return statuses, nil
}

// checkWithRetry retries offline results with exponential backoff
func (p *LiveProbe) checkWithRetry(ctx context.Context, node model.NodeConfig) model.NodeStatus {
	var status model.NodeStatus
	for attempt := 0; attempt < p.retries; attempt++ {
		status = p.checkSingle(ctx, node)
		if status.Status != model.NodeOffline {
			return status
		}
		if ctx.Err() != nil {
			return status
		}
		if attempt < p.retries-1 {
			backoff := time.Duration(1<<uint(attempt)) * time.Second
			probeSleepFunc(backoff)
		}
	}
	return status
}

// checkSingle performs one health request against a node
func (p *LiveProbe) checkSingle(ctx context.Context, node model.NodeConfig) model.NodeStatus {
	status := model.NodeStatus{
		NodeName: node.Name,
		Status:   model.NodeOffline,
	}

	if p.limiter != nil {
		if err := p.limiter.Wait(ctx, node.URL); err != nil {
			return status
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, node.URL, nil)
	if err != nil {
		return status
	}
	if p.userAgent != "" {
		req.Header.Set("User-Agent", p.userAgent)
	}

	start := time.Now()
	resp, err := p.httpClient.Do(req)
	if err != nil {
		return status
	}
	defer func() { _ = resp.Body.Close() }()

	latency := time.Since(start)
	status.LatencyMs = int(latency.Milliseconds())

	if resp.StatusCode >= 200 && resp.StatusCode < 400 {
		if latency > p.degradedAfter {
			status.Status = model.NodeDegraded
		} else {
			status.Status = model.NodeOnline
		}
	}
	return status
}
