package tracing

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/personal-assistant/interpreter/pkg/config"
)

// installRecorder routes global spans to an in-memory recorder for the test.
func installRecorder(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()

	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

	prevProvider := otel.GetTracerProvider()
	prevPropagator := otel.GetTextMapPropagator()
	otel.SetTracerProvider(provider)
	otel.SetTextMapPropagator(propagation.TraceContext{})
	t.Cleanup(func() {
		otel.SetTracerProvider(prevProvider)
		otel.SetTextMapPropagator(prevPropagator)
		_ = provider.Shutdown(context.Background())
	})
	return recorder
}

func TestNew_Disabled(t *testing.T) {
	tracer, err := New(context.Background(), &config.TracingConfig{}, "test")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if tracer.Enabled() {
		t.Error("tracer should be disabled")
	}

	_, span := tracer.Start(context.Background(), "noop")
	if span.SpanContext().IsValid() {
		t.Error("disabled tracer produced a valid span")
	}
	span.End()

	if err := tracer.Shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown: %v", err)
	}
}

func TestNew_NilConfig(t *testing.T) {
	if _, err := New(context.Background(), nil, "test"); err == nil {
		t.Error("expected error for nil config")
	}
}

func TestNew_InvalidSampler(t *testing.T) {
	cfg := config.Defaults().Telemetry.Tracing
	cfg.Enabled = true
	cfg.Sampler = "sometimes"

	if _, err := New(context.Background(), &cfg, "test"); err == nil {
		t.Error("expected error for unknown sampler")
	}
}

func TestCreateSampler(t *testing.T) {
	tests := []struct {
		name     string
		strategy string
		ratio    float64
		wantErr  bool
	}{
		{name: "always", strategy: SamplerAlways},
		{name: "default", strategy: ""},
		{name: "never", strategy: SamplerNever},
		{name: "ratio", strategy: SamplerRatio, ratio: 0.25},
		{name: "ratio too high", strategy: SamplerRatio, ratio: 1.5, wantErr: true},
		{name: "ratio negative", strategy: SamplerRatio, ratio: -0.1, wantErr: true},
		{name: "unknown", strategy: "sometimes", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sampler, err := createSampler(tt.strategy, tt.ratio)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && sampler == nil {
				t.Error("sampler is nil")
			}
		})
	}
}

func TestStartSpanAndEnd(t *testing.T) {
	recorder := installRecorder(t)

	ctx, span := StartSpan(context.Background(), "agent.chat")
	if TraceID(ctx) == "" {
		t.Error("TraceID is empty inside a recorded span")
	}
	SetChatAttributes(span, "upstream", "local-model", "complete", 3)
	SetEstimate(span, 42)
	SetTokensUsed(span, -1)
	End(span, errors.New("upstream down"))

	spans := recorder.Ended()
	if len(spans) != 1 {
		t.Fatalf("ended spans = %d, want 1", len(spans))
	}
	got := spans[0]
	if got.Name() != "agent.chat" {
		t.Errorf("name = %q", got.Name())
	}
	if got.Status().Code != codes.Error {
		t.Errorf("status = %v, want Error", got.Status().Code)
	}

	attrs := make(map[attribute.Key]attribute.Value)
	for _, kv := range got.Attributes() {
		attrs[kv.Key] = kv.Value
	}
	if attrs[AttrModel].AsString() != "local-model" {
		t.Errorf("%s = %q", AttrModel, attrs[AttrModel].AsString())
	}
	if attrs[AttrEstimatedTokens].AsInt64() != 42 {
		t.Errorf("%s = %d", AttrEstimatedTokens, attrs[AttrEstimatedTokens].AsInt64())
	}
	if _, ok := attrs[AttrTokensUsed]; ok {
		t.Errorf("%s set for unreported usage", AttrTokensUsed)
	}
}

func TestEnd_OK(t *testing.T) {
	recorder := installRecorder(t)

	_, span := StartSpan(context.Background(), "ok")
	End(span, nil)

	if got := recorder.Ended()[0].Status().Code; got != codes.Ok {
		t.Errorf("status = %v, want Ok", got)
	}
}

func TestExtractInject(t *testing.T) {
	installRecorder(t)

	const traceparent = "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01"
	in := http.Header{}
	in.Set("traceparent", traceparent)

	ctx := Extract(context.Background(), in)
	ctx, span := StartSpan(ctx, "child")
	defer span.End()

	if got := TraceID(ctx); got != "4bf92f3577b34da6a3ce929d0e0e4736" {
		t.Errorf("TraceID = %q, want the caller's trace", got)
	}

	out := http.Header{}
	Inject(ctx, out)
	if out.Get("traceparent") == "" {
		t.Error("Inject wrote no traceparent")
	}
}

func TestTraceID_NoSpan(t *testing.T) {
	if got := TraceID(context.Background()); got != "" {
		t.Errorf("TraceID = %q, want empty", got)
	}
}
