package telemetry

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.trai.ch/glaze/internal/core/ports"
)

// errTaskFailed stands in for a failed span that carries no description.
var errTaskFailed = errors.New("task failed")

// NewProvider returns a tracer provider that reports every span to renderer
// as a task starting and completing. Shutting the provider down flushes the
// renderer. A nil renderer yields a provider that only records spans.
func NewProvider(renderer ports.Renderer) *sdktrace.TracerProvider {
	return sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(&renderProcessor{renderer: renderer}))
}

// renderProcessor turns span lifecycle events into renderer callbacks.
type renderProcessor struct {
	renderer ports.Renderer
}

func (p *renderProcessor) OnStart(parent context.Context, s sdktrace.ReadWriteSpan) {
	id, ok := p.spanID(s.SpanContext())
	if !ok {
		return
	}
	parentID, _ := p.spanID(trace.SpanContextFromContext(parent))
	p.renderer.OnTaskStart(id, parentID, s.Name(), s.StartTime())
}

func (p *renderProcessor) OnEnd(s sdktrace.ReadOnlySpan) {
	id, ok := p.spanID(s.SpanContext())
	if !ok {
		return
	}
	p.renderer.OnTaskComplete(id, s.EndTime(), statusErr(s.Status()))
}

func (p *renderProcessor) ForceFlush(context.Context) error {
	if p.renderer == nil {
		return nil
	}
	return p.renderer.Flush()
}

func (p *renderProcessor) Shutdown(ctx context.Context) error {
	return p.ForceFlush(ctx)
}

// spanID reports the hex id of sc, or false when nothing should be rendered.
func (p *renderProcessor) spanID(sc trace.SpanContext) (string, bool) {
	if p.renderer == nil || !sc.IsValid() {
		return "", false
	}
	return sc.SpanID().String(), true
}

func statusErr(status sdktrace.Status) error {
	if status.Code != codes.Error {
		return nil
	}
	if status.Description == "" {
		return errTaskFailed
	}
	return errors.New(status.Description)
}
