package tracing

import (
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Attribute keys. Custom keys use the "interpreter." namespace.
const (
	AttrModel           = "interpreter.model"
	AttrProvider        = "interpreter.provider"
	AttrMode            = "interpreter.mode"
	AttrMessages        = "interpreter.messages"
	AttrEstimatedTokens = "interpreter.tokens.estimated"
	AttrTokensUsed      = "interpreter.tokens.used"
	AttrRequestID       = "interpreter.request_id"

	AttrHTTPMethod     = "http.method"
	AttrHTTPRoute      = "http.route"
	AttrHTTPStatusCode = "http.status_code"

	AttrErrorMessage = "error.message"
)

// SetChatAttributes describes a chat call on span.
func SetChatAttributes(span trace.Span, provider, model, mode string, messages int) {
	span.SetAttributes(
		attribute.String(AttrProvider, provider),
		attribute.String(AttrModel, model),
		attribute.String(AttrMode, mode),
		attribute.Int(AttrMessages, messages),
	)
}

// SetEstimate records the estimated prompt tokens.
func SetEstimate(span trace.Span, estimated int) {
	span.SetAttributes(attribute.Int(AttrEstimatedTokens, estimated))
}

// SetTokensUsed records the total reported by the server. A negative value
// means the server reported none and is not recorded.
func SetTokensUsed(span trace.Span, tokensUsed int) {
	if tokensUsed >= 0 {
		span.SetAttributes(attribute.Int(AttrTokensUsed, tokensUsed))
	}
}
