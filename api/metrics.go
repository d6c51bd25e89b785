package api

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	tracerName           = "evergreen/api"
	dashboardRoute       = "/api/dashboard"
	dashboardSpanName    = "dashboard.request"
	dashboardEventName   = "evergreen.dashboard.request"
	dashboardEventDomain = "leads"
)

// dashboardRequestMetrics observes one dashboard request end to end and
// emits a single observability event carrying both the span and the log
// entry.
type dashboardRequestMetrics struct {
	logger         *log.Logger
	span           trace.Span
	start          time.Time
	authDuration   time.Duration
	loadDuration   time.Duration
	deriveDuration time.Duration
	encodeDuration time.Duration
	snapshotSize   int
	returned       int
	errorStage     string
}

func newDashboardRequestMetrics(ctx context.Context, logger *log.Logger) (*dashboardRequestMetrics, context.Context) {
	spanCtx, span := otel.Tracer(tracerName).Start(ctx, dashboardSpanName)
	m := &dashboardRequestMetrics{
		logger: logger,
		span:   span,
		start:  time.Now(),
	}
	return m, spanCtx
}

func (m *dashboardRequestMetrics) ObserveAuth(duration time.Duration) {
	if duration <= 0 {
		return
	}
	m.authDuration = duration
}

func (m *dashboardRequestMetrics) ObserveLoad(duration time.Duration) {
	if duration <= 0 {
		return
	}
	m.loadDuration = duration
}

func (m *dashboardRequestMetrics) ObserveDerive(duration time.Duration) {
	if duration <= 0 {
		return
	}
	m.deriveDuration = duration
}

func (m *dashboardRequestMetrics) ObserveEncode(duration time.Duration) {
	if duration <= 0 {
		return
	}
	m.encodeDuration = duration
}

func (m *dashboardRequestMetrics) SetSnapshotSize(count int) {
	if count < 0 {
		count = 0
	}
	m.snapshotSize = count
}

func (m *dashboardRequestMetrics) SetBusinessesReturned(count int) {
	if count < 0 {
		count = 0
	}
	m.returned = count
}

func (m *dashboardRequestMetrics) SetErrorStage(stage string) {
	if stage == "" {
		return
	}
	m.errorStage = stage
}

// Log finalizes the span and emits the observability event. Safe on nil.
func (m *dashboardRequestMetrics) Log(status int, err error) {
	if m == nil {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.String("http.route", dashboardRoute),
		attribute.Int("http.status_code", status),
		attribute.Float64("evergreen.dashboard.total_ms", durationToMillis(time.Since(m.start))),
		attribute.Int("evergreen.dashboard.snapshot_size", m.snapshotSize),
		attribute.Int("evergreen.dashboard.businesses_returned", m.returned),
	}
	if m.authDuration > 0 {
		attrs = append(attrs, attribute.Float64("evergreen.dashboard.auth_ms", durationToMillis(m.authDuration)))
	}
	if m.loadDuration > 0 {
		attrs = append(attrs, attribute.Float64("evergreen.dashboard.load_ms", durationToMillis(m.loadDuration)))
	}
	if m.deriveDuration > 0 {
		attrs = append(attrs, attribute.Float64("evergreen.dashboard.derive_ms", durationToMillis(m.deriveDuration)))
	}
	if m.encodeDuration > 0 {
		attrs = append(attrs, attribute.Float64("evergreen.dashboard.encode_ms", durationToMillis(m.encodeDuration)))
	}
	if m.errorStage != "" {
		attrs = append(attrs, attribute.String("evergreen.dashboard.error_stage", m.errorStage))
	}

	severityText, severityNumber := severityForStatus(status, err)

	if m.span != nil {
		m.span.SetAttributes(attrs...)
		eventAttrs := make([]attribute.KeyValue, 0, len(attrs)+4)
		eventAttrs = append(eventAttrs, attrs...)
		eventAttrs = append(eventAttrs,
			attribute.String("event.name", dashboardEventName),
			attribute.String("event.domain", dashboardEventDomain),
			attribute.String("severity_text", severityText),
		)
		if err != nil {
			eventAttrs = append(eventAttrs, attribute.String("error.message", err.Error()))
		}
		m.span.AddEvent("observability.event", trace.WithAttributes(eventAttrs...))
		if err != nil || status >= 500 {
			m.span.SetStatus(codes.Error, severityText)
		} else {
			m.span.SetStatus(codes.Ok, "")
		}
		m.span.End()
	}

	if m.logger == nil {
		return
	}

	fields := log.Fields{
		"event.name":      dashboardEventName,
		"event.domain":    dashboardEventDomain,
		"severity_text":   severityText,
		"severity_number": severityNumber,
		"attributes":      attributesAsMap(attrs),
	}
	if m.span != nil {
		if sc := m.span.SpanContext(); sc.HasTraceID() {
			fields["trace_id"] = sc.TraceID().String()
		}
	}
	if err != nil {
		fields["error"] = err.Error()
	}

	entry := m.logger.WithFields(fields)
	switch severityText {
	case "ERROR":
		entry.Error("observability.event")
	case "WARN":
		entry.Warn("observability.event")
	default:
		entry.Info("observability.event")
	}
}

func severityForStatus(status int, err error) (string, int) {
	switch {
	case err != nil || status >= 500:
		return "ERROR", 17
	case status >= 400:
		return "WARN", 13
	default:
		return "INFO", 9
	}
}

func attributesAsMap(attrs []attribute.KeyValue) map[string]any {
	out := make(map[string]any, len(attrs))
	for _, kv := range attrs {
		out[string(kv.Key)] = kv.Value.AsInterface()
	}
	return out
}

func durationToMillis(d time.Duration) float64 {
	if d <= 0 {
		return 0
	}
	return float64(d) / float64(time.Millisecond)
}
