package observability

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// tracerName is the instrumentation scope for spans produced by fluxgate.
const tracerName = "github.com/fluxgate/fluxgate"

// Tracer returns the library's named tracer from the global provider.
// Exporter and provider setup belong to the embedding application.
func Tracer() trace.Tracer {
	return otel.Tracer(tracerName)
}
