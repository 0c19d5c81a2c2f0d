package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/openkcm/common-sdk/pkg/commoncfg"
	"github.com/openkcm/common-sdk/pkg/otlp"
	"github.com/samber/oops"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	slogctx "github.com/veqryn/slog-context"

	"github.com/openkcm/blog-client/internal/config"
	"github.com/openkcm/blog-client/internal/session"
)

var (
	counter metric.Int64Counter
	hist    metric.Int64Histogram
)

func newMeter(cfg *config.Config) metric.Meter {
	return otel.Meter(
		"blog/"+cfg.Application.Name,
		metric.WithInstrumentationVersion(otel.Version()),
		metric.WithInstrumentationAttributes(otlp.CreateAttributesFrom(cfg.Application)...),
	)
}

func initMeters(ctx context.Context, cfg *config.Config) error {
	meter := newMeter(cfg)

	var err error

	counter, err = meter.Int64Counter(
		"http.request_count",
		metric.WithDescription("Incoming request count"),
		metric.WithUnit("request"),
	)
	if err != nil {
		return oops.In("HTTP Server").
			WithContext(ctx).
			Wrapf(err, "creating request_count meter")
	}

	hist, err = meter.Int64Histogram(
		"http.duration",
		metric.WithDescription("Incoming end to end duration"),
		metric.WithUnit("milliseconds"),
	)
	if err != nil {
		return oops.In("HTTP Server").
			WithContext(ctx).
			Wrapf(err, "creating duration meter")
	}

	return nil
}

// NewTransitionListener returns a session listener counting state transitions.
func NewTransitionListener(ctx context.Context, cfg *config.Config) (session.TransitionListener, error) {
	transitions, err := newMeter(cfg).Int64Counter(
		"session.transition_count",
		metric.WithDescription("Session state transitions"),
		metric.WithUnit("transition"),
	)
	if err != nil {
		return nil, oops.In("HTTP Server").
			WithContext(ctx).
			Wrapf(err, "creating transition_count meter")
	}

	return func(ctx context.Context, from, to session.State) {
		transitions.Add(ctx, 1, metric.WithAttributes(
			otlp.CreateAttributesFrom(cfg.Application,
				attribute.String("from", from.String()),
				attribute.String("to", to.String()),
			)...,
		))
	}, nil
}

// newTraceMiddleware covers every request with a span, a request id on the
// context logger and the request metrics. The operation is the matched route.
func newTraceMiddleware(cfg *config.Config) func(http.Handler) http.Handler {
	traceAttrs := otlp.CreateAttributesFrom(cfg.Application)
	tracer := otel.Tracer("blog-client/http", trace.WithInstrumentationAttributes(traceAttrs...))

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := slogctx.With(r.Context(),
				commoncfg.AttrRequestID, uuid.NewString(),
			)

			parentCtx := otel.GetTextMapPropagator().Extract(ctx, propagation.HeaderCarrier(r.Header))

			ctx, span := tracer.Start(parentCtx, r.Method+" request", trace.WithAttributes(traceAttrs...))
			defer span.End()

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			requestStartTime := time.Now()

			slogctx.Info(ctx, fmt.Sprintf("Processing %s %s request", r.Method, r.URL.Path))
			next.ServeHTTP(ww, r.WithContext(ctx))

			operation := operationName(r)
			span.SetName(operation)
			span.SetAttributes(attribute.Int("http.status_code", ww.Status()))

			attrs := metric.WithAttributes(
				otlp.CreateAttributesFrom(cfg.Application,
					attribute.String("userAgent", r.UserAgent()),
					attribute.String(commoncfg.AttrOperation, operation),
					attribute.Int("status", ww.Status()),
				)...,
			)

			counter.Add(ctx, 1, attrs)
			hist.Record(ctx, time.Since(requestStartTime).Milliseconds(), attrs)

			slogctx.Info(ctx, fmt.Sprintf("Finished %s request", operation), "status", ww.Status())
		})
	}
}

func operationName(r *http.Request) string {
	pattern := r.URL.Path
	if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
		pattern = rctx.RoutePattern()
	}

	return r.Method + " " + pattern
}
