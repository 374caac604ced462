package config

import "testing"

func mustApplyDefaults(t *testing.T, cfg *Config) {
	t.Helper()
	if err := ApplyDefaults(cfg); err != nil {
		t.Fatalf("ApplyDefaults: %v", err)
	}
}

func TestApplyDefaults_ZeroConfig(t *testing.T) {
	cfg := &Config{}
	mustApplyDefaults(t, cfg)

	if cfg.Server.ListenAddress != DefaultListenAddress {
		t.Errorf("expected listen address %q, got %q", DefaultListenAddress, cfg.Server.ListenAddress)
	}
	if cfg.Upstream.BaseURL != DefaultUpstreamBaseURL {
		t.Errorf("expected base URL %q, got %q", DefaultUpstreamBaseURL, cfg.Upstream.BaseURL)
	}
	if cfg.Agent.SummarizeThresholdTokens != DefaultSummarizeThresholdTokens {
		t.Errorf("expected threshold %d, got %d", DefaultSummarizeThresholdTokens, cfg.Agent.SummarizeThresholdTokens)
	}
	if !cfg.Agent.AutoSummarizeEnabled() {
		t.Error("expected auto_summarize enabled by default")
	}
	if !cfg.Telemetry.Metrics.IsEnabled() {
		t.Error("expected metrics enabled by default")
	}

	if err := Validate(cfg); err != nil {
		t.Errorf("defaults should validate, got %v", err)
	}
}

func TestApplyDefaults_PreservesExplicitValues(t *testing.T) {
	off := false
	cfg := &Config{
		Server: ServerConfig{ListenAddress: "0.0.0.0:1234"},
		Agent: AgentConfig{
			AutoSummarize:            &off,
			SummarizeThresholdTokens: 50,
		},
		Telemetry: TelemetryConfig{
			Metrics: MetricsConfig{Enabled: &off},
		},
	}

	mustApplyDefaults(t, cfg)

	if cfg.Server.ListenAddress != "0.0.0.0:1234" {
		t.Errorf("listen address overwritten: %q", cfg.Server.ListenAddress)
	}
	if cfg.Agent.AutoSummarizeEnabled() {
		t.Error("explicit auto_summarize=false overwritten")
	}
	if cfg.Agent.SummarizeThresholdTokens != 50 {
		t.Errorf("threshold overwritten: %d", cfg.Agent.SummarizeThresholdTokens)
	}
	if cfg.Telemetry.Metrics.IsEnabled() {
		t.Error("explicit metrics.enabled=false overwritten")
	}
}

func TestApplyDefaults_Idempotent(t *testing.T) {
	cfg := &Config{}
	mustApplyDefaults(t, cfg)
	first := *cfg
	mustApplyDefaults(t, cfg)

	if cfg.Server.ListenAddress != first.Server.ListenAddress ||
		cfg.Upstream.HealthSchedule != first.Upstream.HealthSchedule ||
		cfg.CLI.RetryDelay != first.CLI.RetryDelay {
		t.Error("ApplyDefaults is not idempotent")
	}
}

func TestDefaults_FreshInstances(t *testing.T) {
	a := Defaults()
	b := Defaults()

	*a.Agent.AutoSummarize = false
	a.Server.CORS.AllowedOrigins[0] = "mutated"

	if !b.Agent.AutoSummarizeEnabled() {
		t.Error("Defaults shares bool pointers between calls")
	}
	if b.Server.CORS.AllowedOrigins[0] == "mutated" {
		t.Error("Defaults shares slices between calls")
	}
}

func TestParse_NumericZeroValues(t *testing.T) {
	tests := []struct {
		name          string
		data          string
		format        string
		wantRetries   int
		wantThreshold int
	}{
		{
			name:          "yaml explicit zero retries kept",
			data:          "upstream:\n  max_retries: 0\n",
			format:        "yaml",
			wantRetries:   0,
			wantThreshold: DefaultSummarizeThresholdTokens,
		},
		{
			name:          "toml explicit zero retries kept",
			data:          "[upstream]\nmax_retries = 0\n",
			format:        "toml",
			wantRetries:   0,
			wantThreshold: DefaultSummarizeThresholdTokens,
		},
		{
			name:          "retries omitted",
			data:          "agent:\n  verbose: false\n",
			format:        "yaml",
			wantRetries:   DefaultUpstreamMaxRetries,
			wantThreshold: DefaultSummarizeThresholdTokens,
		},
		{
			name:          "zero threshold means default",
			data:          "agent:\n  summarize_threshold_tokens: 0\n",
			format:        "yaml",
			wantRetries:   DefaultUpstreamMaxRetries,
			wantThreshold: DefaultSummarizeThresholdTokens,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Parse([]byte(tt.data), tt.format)
			if err != nil {
				t.Fatalf("Parse: %v", err)
			}
			if got := cfg.Upstream.Retries(); got != tt.wantRetries {
				t.Errorf("retries = %d, want %d", got, tt.wantRetries)
			}
			if cfg.Agent.SummarizeThresholdTokens != tt.wantThreshold {
				t.Errorf("threshold = %d, want %d", cfg.Agent.SummarizeThresholdTokens, tt.wantThreshold)
			}
		})
	}
}

func TestApplyDefaults_ExplicitZeroRetries(t *testing.T) {
	zero := 0
	cfg := &Config{Upstream: UpstreamConfig{MaxRetries: &zero}}
	mustApplyDefaults(t, cfg)

	if got := cfg.Upstream.Retries(); got != 0 {
		t.Errorf("explicit max_retries=0 overwritten: %d", got)
	}
}
