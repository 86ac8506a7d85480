// Package observe provides the logging, tracing and metrics used across the
// SDK.
//
// Logger writes structured JSON lines with automatic redaction of
// credential fields. Observer owns the OpenTelemetry providers, and
// Instrumenter wraps SDK operations (object and attachment resolution,
// namespace listings) in spans named cloudobjects.<operation> while
// recording the cloudobjects.resolve.* metrics.
package observe
