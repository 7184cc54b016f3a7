package probe

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/tkordic/anamnesis/internal/model"
)

// DemoProbe reports every configured node as online so the full flow
// runs offline. Latencies are synthetic and carry no meaning beyond
// display.
type DemoProbe struct {
	nodes []model.NodeConfig

	mu  sync.Mutex
	rng *rand.Rand
}

// NewDemoProbe creates a probe that never fails.
func NewDemoProbe(nodes []model.NodeConfig) *DemoProbe {
	return &DemoProbe{
		nodes: nodes,
		rng:   rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Name returns the probe name
func (p *DemoProbe) Name() string { return "demo" }

// Check reports all nodes online with plausible latencies
func (p *DemoProbe) Check(ctx context.Context) ([]model.NodeStatus, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	statuses := make([]model.NodeStatus, 0, len(p.nodes))
	for _, node := range p.nodes {
		statuses = append(statuses, model.NodeStatus{
			NodeName:  node.Name,
			Status:    model.NodeOnline,
			LatencyMs: 8 + p.rng.Intn(33),
		})
	}
	return statuses, nil
}
