package handlers

import (
	"context"

	"github.com/personal-assistant/interpreter/pkg/agent"
	"github.com/personal-assistant/interpreter/pkg/providers"
	"github.com/personal-assistant/interpreter/pkg/telemetry/health"
)

// ChatAgent is the part of the agent the handlers depend on.
type ChatAgent interface {
	Chat(ctx context.Context, messages []providers.Message) (*agent.Reply, error)
	ChatStream(ctx context.Context, messages []providers.Message) (*agent.Stream, error)
	ModelInfo() agent.ModelInfo
	Model() string
}

// HealthSource reports the result of the latest scheduled health probe.
type HealthSource interface {
	Last() (health.HealthStatus, bool)
}
