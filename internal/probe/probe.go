package probe

import (
	"context"
	"fmt"

	"github.com/tkordic/anamnesis/internal/model"
)

// HealthProbe checks reachability of the case registry's backing nodes.
type HealthProbe interface {
	// Name returns the probe name
	Name() string

	// Check probes every configured node and reports per-node status.
	// It returns an UnavailableError when no node is reachable.
	Check(ctx context.Context) ([]model.NodeStatus, error)
}

// UnavailableError reports that no registry node answered the health
// probe. The analysis cannot proceed without the registry.
type UnavailableError struct {
	Attempted int
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("no registry node reachable (%d probed)", e.Attempted)
}
