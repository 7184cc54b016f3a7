package model

import "time"

// Config is the complete runtime configuration.
// Values merge from defaults, ~/.anamnesis/config.yaml, ANAMNESIS_* env vars,
// and CLI flags, in ascending priority.
type Config struct {
	Mode         Mode              `yaml:"mode" mapstructure:"mode"`
	Registry     RegistryConfig    `yaml:"registry" mapstructure:"registry"`
	Retrieval    RetrievalConfig   `yaml:"retrieval" mapstructure:"retrieval"`
	Analysis     AnalysisConfig    `yaml:"analysis" mapstructure:"analysis"`
	Insight      InsightConfig     `yaml:"insight" mapstructure:"insight"`
	Probe        ProbeConfig       `yaml:"probe" mapstructure:"probe"`
	Imaging      ImagingConfig     `yaml:"imaging" mapstructure:"imaging"`
	Cache        CacheConfig       `yaml:"cache" mapstructure:"cache"`
	Concurrency  ConcurrencyConfig `yaml:"concurrency" mapstructure:"concurrency"`
	RateLimiting RateLimitConfig   `yaml:"rate_limiting" mapstructure:"rate_limiting"`
	HTTP         HTTPConfig        `yaml:"http" mapstructure:"http"`
	Output       OutputConfig      `yaml:"output" mapstructure:"output"`
}

// Mode selects how external collaborators are constructed.
// Demo wires deterministic offline collaborators; live wires the real
// classifier, synthesizer, and registry probe. The choice is explicit
// configuration, never inferred from ambient credentials mid-run.
type Mode string

const (
	ModeDemo Mode = "demo"
	ModeLive Mode = "live"
)

// RegistryConfig controls where the reference-case snapshot comes from
type RegistryConfig struct {
	SnapshotPath string `yaml:"snapshot_path" mapstructure:"snapshot_path"` // YAML snapshot file; empty uses the bundled demo snapshot
}

// RetrievalConfig controls the similarity ranking
type RetrievalConfig struct {
	TopK           int     `yaml:"top_k" mapstructure:"top_k"`                     // Max cases returned per query
	RelevanceFloor float64 `yaml:"relevance_floor" mapstructure:"relevance_floor"` // Minimum score before the floor relaxes
}

// AnalysisConfig carries report-level thresholds
type AnalysisConfig struct {
	// HighRiskThreshold marks results with RiskScore above it as high risk.
	// Inherited from the clinical review defaults; override with care.
	HighRiskThreshold int `yaml:"high_risk_threshold" mapstructure:"high_risk_threshold"`
}

// InsightConfig configures the classifier/synthesizer provider
type InsightConfig struct {
	Provider    string `yaml:"provider" mapstructure:"provider"`         // openai, anthropic, ollama (live mode only)
	Model       string `yaml:"model" mapstructure:"model"`               // Text model for synthesis
	VisionModel string `yaml:"vision_model" mapstructure:"vision_model"` // Vision-capable model for anatomy classification
	APIKey      string `yaml:"api_key,omitempty" mapstructure:"api_key"`
	BaseURL     string `yaml:"base_url,omitempty" mapstructure:"base_url"`
	Timeout     int    `yaml:"timeout" mapstructure:"timeout"` // Seconds per provider call
	MaxTokens   int    `yaml:"max_tokens" mapstructure:"max_tokens"`
}

// NodeConfig names one registry node the health probe checks
type NodeConfig struct {
	Name string `yaml:"name" mapstructure:"name"`
	URL  string `yaml:"url" mapstructure:"url"` // Health endpoint (live mode only)
}

// ProbeConfig configures the registry health probe
type ProbeConfig struct {
	Nodes           []NodeConfig  `yaml:"nodes" mapstructure:"nodes"`
	Timeout         time.Duration `yaml:"timeout" mapstructure:"timeout"`                   // Per-node check timeout
	DegradedLatency time.Duration `yaml:"degraded_latency" mapstructure:"degraded_latency"` // Latency above this marks a node degraded
	Retries         int           `yaml:"retries" mapstructure:"retries"`                   // Attempts per node on transient failure
}

// ImagingConfig controls study ingestion
type ImagingConfig struct {
	MaxDimension int `yaml:"max_dimension" mapstructure:"max_dimension"` // Studies are downscaled so neither edge exceeds this
}

// CacheConfig controls classification/probe result caching
type CacheConfig struct {
	Enabled   bool          `yaml:"enabled" mapstructure:"enabled"`
	Dir       string        `yaml:"dir" mapstructure:"dir"` // Disk layer location; empty disables the disk layer
	MemoryTTL time.Duration `yaml:"memory_ttl" mapstructure:"memory_ttl"`
	DiskTTL   time.Duration `yaml:"disk_ttl" mapstructure:"disk_ttl"`
}

// ConcurrencyConfig sets worker counts
type ConcurrencyConfig struct {
	Workers      int `yaml:"workers" mapstructure:"workers"`             // Batch analysis workers
	ProbeWorkers int `yaml:"probe_workers" mapstructure:"probe_workers"` // Concurrent node checks
}

// RateLimitConfig bounds outbound calls per host
type RateLimitConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	BurstSize         int     `yaml:"burst_size" mapstructure:"burst_size"`
}

// HTTPConfig configures outbound HTTP clients
type HTTPConfig struct {
	Timeout     time.Duration `yaml:"timeout" mapstructure:"timeout"`
	UserAgent   string        `yaml:"user_agent" mapstructure:"user_agent"`
	HTTPProxy   string        `yaml:"http_proxy,omitempty" mapstructure:"http_proxy"`
	HTTPSProxy  string        `yaml:"https_proxy,omitempty" mapstructure:"https_proxy"`
	NoProxy     string        `yaml:"no_proxy,omitempty" mapstructure:"no_proxy"`
	InsecureTLS bool          `yaml:"insecure_tls" mapstructure:"insecure_tls"`
}

// OutputConfig controls logging and rendering
type OutputConfig struct {
	Verbose   bool   `yaml:"verbose" mapstructure:"verbose"`
	LogLevel  string `yaml:"log_level" mapstructure:"log_level"`   // debug, info, warn, error
	LogFormat string `yaml:"log_format" mapstructure:"log_format"` // text or json
}

// DefaultConfig returns the built-in defaults
func DefaultConfig() *Config {
	return &Config{
		Mode: ModeDemo,
		Registry: RegistryConfig{
			SnapshotPath: "",
		},
		Retrieval: RetrievalConfig{
			TopK:           5,
			RelevanceFloor: 35,
		},
		Analysis: AnalysisConfig{
			HighRiskThreshold: 50,
		},
		Insight: InsightConfig{
			Provider:    "openai",
			Model:       "gpt-4o-mini",
			VisionModel: "gpt-4o",
			Timeout:     30,
			MaxTokens:   1500,
		},
		Probe: ProbeConfig{
			Nodes: []NodeConfig{
				{Name: "registry-core"},
				{Name: "case-index"},
				{Name: "imaging-archive"},
			},
			Timeout:         5 * time.Second,
			DegradedLatency: 750 * time.Millisecond,
			Retries:         3,
		},
		Imaging: ImagingConfig{
			MaxDimension: 1024,
		},
		Cache: CacheConfig{
			Enabled:   true,
			MemoryTTL: 15 * time.Minute,
			DiskTTL:   24 * time.Hour,
		},
		Concurrency: ConcurrencyConfig{
			Workers:      4,
			ProbeWorkers: 8,
		},
		RateLimiting: RateLimitConfig{
			RequestsPerSecond: 2,
			BurstSize:         5,
		},
		HTTP: HTTPConfig{
			Timeout:   30 * time.Second,
			UserAgent: "Anamnesis/0.3 (+https://github.com/tkordic/anamnesis)",
		},
		Output: OutputConfig{
			LogLevel:  "info",
			LogFormat: "text",
		},
	}
}
