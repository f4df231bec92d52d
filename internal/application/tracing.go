package application

import "go.opentelemetry.io/otel"

// tracer is a no-op until the process installs a TracerProvider
var tracer = otel.Tracer("archie-shopify-sync/internal/application")
