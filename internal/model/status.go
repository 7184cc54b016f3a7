package model

// NodeStatus is one registry node as reported by the health probe
type NodeStatus struct {
	NodeName  string    `json:"node_name"`
	Status    NodeState `json:"status"`
	LatencyMs int       `json:"latency_ms"`
}

// NodeState classifies a registry node's reachability
type NodeState string

const (
	NodeOnline   NodeState = "online"
	NodeDegraded NodeState = "degraded"
	NodeOffline  NodeState = "offline"
)
