package config

const (
	// DefaultConfigPath is used when --config is not provided.
	DefaultConfigPath = "config.yml"
	// DefaultDotenvPath is loaded into the process environment when present.
	DefaultDotenvPath = ".env"

	defaultPort         = 3000
	defaultEnv          = "development"
	defaultProcessTitle = "transcript-sum"
	defaultRateLimit    = 30

	// SummarizePath is served locally and on the backend collaborator.
	SummarizePath = "/api/summarize"

	// BackendURLEnv names the setting that points at the summarization backend.
	BackendURLEnv = "SUMMARIZER_BACKEND_URL"
)
