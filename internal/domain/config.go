package domain

// Config is the full runtime configuration. Loaded from YAML with
// profile and environment overrides applied after the file layers merge.
type Config struct {
	General          GeneralSettings      `yaml:"general"`
	FastPath         FastPathSettings     `yaml:"fast_path"`
	SmartPath        SmartPathSettings    `yaml:"smart_path"`
	OutputThresholds ThresholdSettings    `yaml:"output_thresholds"`
	Preprocessing    PreprocessSettings   `yaml:"preprocessing"`
	Router           RouterSettings       `yaml:"router"`
	Passthrough      PassthroughSettings  `yaml:"passthrough"`
	Logging          LoggingSettings      `yaml:"logging"`
	Whitespace       WhitespaceSettings   `yaml:"whitespace"`
	Optimizers       OptimizerSettings    `yaml:"optimizers"`
}

type GeneralSettings struct {
	Enabled  bool   `yaml:"enabled"`
	Mode     string `yaml:"mode"`    // hybrid | fast-only | smart-only | passthrough
	Profile  string `yaml:"profile"` // fast | balanced | quality
	SafeMode bool   `yaml:"safe_mode"`
}

type FastPathSettings struct {
	Enabled    bool                `yaml:"enabled"`
	TimeoutMS  int                 `yaml:"timeout_ms"`
	Optimizers FastPathOptimizers  `yaml:"optimizers"`
}

type FastPathOptimizers struct {
	Git        bool `yaml:"git"`
	File       bool `yaml:"file"`
	Build      bool `yaml:"build"`
	Docker     bool `yaml:"docker"`
	Whitespace bool `yaml:"whitespace"`
}

type SmartPathSettings struct {
	Enabled      bool    `yaml:"enabled"`
	Model        string  `yaml:"model"`
	Temperature  float64 `yaml:"temperature"`
	MaxLatencyMS int     `yaml:"max_latency_ms"`
	OllamaURL    string  `yaml:"ollama_url"`
}

type ThresholdSettings struct {
	PassthroughBelowBytes int `yaml:"passthrough_below_bytes"`
	SmartPathAboveBytes   int `yaml:"smart_path_above_bytes"`
}

type PreprocessSettings struct {
	Enabled           bool     `yaml:"enabled"`
	MaxOutputBytes    int      `yaml:"max_output_bytes"`
	NoiseRemoval      bool     `yaml:"noise_removal"`
	PathFiltering     bool     `yaml:"path_filtering"`
	PathFilterMode    string   `yaml:"path_filter_mode"` // summary | remove
	Deduplication     bool     `yaml:"deduplication"`
	Truncation        bool     `yaml:"truncation"`
	ExtraBoilerplate  []string `yaml:"extra_boilerplate"`
	ExtraFilteredDirs []string `yaml:"extra_filtered_dirs"`
}

type RouterSettings struct {
	DecisionCacheTTLSecs       int     `yaml:"decision_cache_ttl_secs"`
	CircuitBreakerThreshold    float64 `yaml:"circuit_breaker_threshold"`
	CircuitBreakerWindow       int     `yaml:"circuit_breaker_window"`
	CircuitBreakerCooldownSecs int     `yaml:"circuit_breaker_cooldown_secs"`
}

type PassthroughSettings struct {
	Commands []string `yaml:"commands"`
}

type LoggingSettings struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
	Level   string `yaml:"level"`
}

type WhitespaceSettings struct {
	Enabled                bool `yaml:"enabled"`
	MaxConsecutiveNewlines int  `yaml:"max_consecutive_newlines"`
	NormalizeTabs          bool `yaml:"normalize_tabs"`
	TrimTrailing           bool `yaml:"trim_trailing"`
}

type OptimizerSettings struct {
	Git     GitOptimizerSettings     `yaml:"git"`
	File    FileOptimizerSettings    `yaml:"file"`
	Build   BuildOptimizerSettings   `yaml:"build"`
	Docker  DockerOptimizerSettings  `yaml:"docker"`
	Generic GenericOptimizerSettings `yaml:"generic"`
}

type GitOptimizerSettings struct {
	LogMaxEntries     int `yaml:"log_max_entries"`
	LogDefaultLimit   int `yaml:"log_default_limit"`
	LogLineMaxChars   int `yaml:"log_line_max_chars"`
	DiffMaxHunkLines  int `yaml:"diff_max_hunk_lines"`
	DiffMaxTotalLines int `yaml:"diff_max_total_lines"`
	BranchMaxLocal    int `yaml:"branch_max_local"`
	BranchMaxRemote   int `yaml:"branch_max_remote"`
}

type FileOptimizerSettings struct {
	LsMaxEntries   int `yaml:"ls_max_entries"`
	LsMaxItems     int `yaml:"ls_max_items"`
	FindMaxResults int `yaml:"find_max_results"`
	CatMaxLines    int `yaml:"cat_max_lines"`
	CatHeadLines   int `yaml:"cat_head_lines"`
	CatTailLines   int `yaml:"cat_tail_lines"`
	WcMaxLines     int `yaml:"wc_max_lines"`
	TreeMaxLines   int `yaml:"tree_max_lines"`
}

type BuildOptimizerSettings struct {
	TestMaxFailureLines int `yaml:"test_max_failure_lines"`
	TestMaxErrorLines   int `yaml:"test_max_error_lines"`
	TestMaxWarnings     int `yaml:"test_max_warnings"`
	BuildMaxErrorLines  int `yaml:"build_max_error_lines"`
	BuildMaxWarnings    int `yaml:"build_max_warnings"`
	LintMaxIssueLines   int `yaml:"lint_max_issue_lines"`
}

type DockerOptimizerSettings struct {
	PsMaxRows      int `yaml:"ps_max_rows"`
	ImagesMaxRows  int `yaml:"images_max_rows"`
	LogsMaxTail    int `yaml:"logs_max_tail"`
	LogsMaxErrors  int `yaml:"logs_max_errors"`
	InspectMaxLines int `yaml:"inspect_max_lines"`
	ComposeMaxRows int `yaml:"compose_max_rows"`
	ResourceMaxRows int `yaml:"resource_max_rows"`
}

type GenericOptimizerSettings struct {
	MinSizeBytes int `yaml:"min_size_bytes"`
	MaxLines     int `yaml:"max_lines"`
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() Config {
	return Config{
		General: GeneralSettings{
			Enabled: true,
			Mode:    "hybrid",
			Profile: "balanced",
		},
		FastPath: FastPathSettings{
			Enabled:   true,
			TimeoutMS: 100,
			Optimizers: FastPathOptimizers{
				Git:        true,
				File:       true,
				Build:      true,
				Docker:     true,
				Whitespace: true,
			},
		},
		SmartPath: SmartPathSettings{
			Enabled:      false,
			Model:        "llama3.2:1b",
			Temperature:  0,
			MaxLatencyMS: 60000,
			OllamaURL:    "http://localhost:11434",
		},
		OutputThresholds: ThresholdSettings{
			PassthroughBelowBytes: 2048,
			SmartPathAboveBytes:   10240,
		},
		Preprocessing: PreprocessSettings{
			Enabled:        true,
			MaxOutputBytes: 131072,
			NoiseRemoval:   true,
			PathFiltering:  true,
			PathFilterMode: "summary",
			Deduplication:  true,
			Truncation:     true,
		},
		Router: RouterSettings{
			DecisionCacheTTLSecs:       300,
			CircuitBreakerThreshold:    0.2,
			CircuitBreakerWindow:       10,
			CircuitBreakerCooldownSecs: 600,
		},
		Logging: LoggingSettings{
			Enabled: true,
			Path:    "~/.terse/command-log.jsonl",
			Level:   "info",
		},
		Whitespace: WhitespaceSettings{
			Enabled:                true,
			MaxConsecutiveNewlines: 2,
			TrimTrailing:           true,
		},
		Optimizers: OptimizerSettings{
			Git: GitOptimizerSettings{
				LogMaxEntries:     50,
				LogDefaultLimit:   20,
				LogLineMaxChars:   120,
				DiffMaxHunkLines:  15,
				DiffMaxTotalLines: 200,
				BranchMaxLocal:    20,
				BranchMaxRemote:   10,
			},
			File: FileOptimizerSettings{
				LsMaxEntries:   50,
				LsMaxItems:     60,
				FindMaxResults: 40,
				CatMaxLines:    100,
				CatHeadLines:   60,
				CatTailLines:   30,
				WcMaxLines:     30,
				TreeMaxLines:   60,
			},
			Build: BuildOptimizerSettings{
				TestMaxFailureLines: 80,
				TestMaxErrorLines:   40,
				TestMaxWarnings:     10,
				BuildMaxErrorLines:  60,
				BuildMaxWarnings:    10,
				LintMaxIssueLines:   80,
			},
			Docker: DockerOptimizerSettings{
				PsMaxRows:       30,
				ImagesMaxRows:   30,
				LogsMaxTail:     30,
				LogsMaxErrors:   20,
				InspectMaxLines: 60,
				ComposeMaxRows:  30,
				ResourceMaxRows: 30,
			},
			Generic: GenericOptimizerSettings{
				MinSizeBytes: 512,
				MaxLines:     200,
			},
		},
	}
}

// ApplyProfile adjusts thresholds and latency budget for the configured
// profile. balanced keeps the file values untouched.
func (c *Config) ApplyProfile() {
	switch c.General.Profile {
	case "fast":
		c.OutputThresholds.PassthroughBelowBytes = 1024
		c.OutputThresholds.SmartPathAboveBytes = 20480
		c.SmartPath.MaxLatencyMS = 1500
	case "quality":
		c.OutputThresholds.PassthroughBelowBytes = 512
		c.OutputThresholds.SmartPathAboveBytes = 4096
		c.SmartPath.MaxLatencyMS = 5000
	}
}

// ValidMode reports whether mode is one of the recognized routing modes.
func ValidMode(mode string) bool {
	switch mode {
	case "hybrid", "fast-only", "smart-only", "passthrough":
		return true
	}
	return false
}

// ValidProfile reports whether profile is recognized.
func ValidProfile(profile string) bool {
	switch profile {
	case "fast", "balanced", "quality":
		return true
	}
	return false
}
