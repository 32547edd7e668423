package telemetry_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.trai.ch/glaze/internal/adapters/telemetry"
	"go.trai.ch/glaze/internal/core/ports"
	"go.trai.ch/glaze/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

func TestOTelTracer_ForwardsToRenderer(t *testing.T) {
	ctrl := gomock.NewController(t)
	renderer := mocks.NewMockRenderer(ctrl)

	var spanID string
	gomock.InOrder(
		renderer.EXPECT().OnPlanEmit([]string{"fonts", "css"}, []string{"dist"}),
		renderer.EXPECT().OnTaskStart(gomock.Any(), "", "css", gomock.Any()).
			Do(func(id, _, _ string, _ any) { spanID = id }),
		renderer.EXPECT().OnTaskLog(gomock.Any(), []byte("write static/css/main.css\n")).
			Do(func(id string, _ []byte) { assert.Equal(t, spanID, id) }),
		renderer.EXPECT().OnTaskComplete(gomock.Any(), gomock.Any(), gomock.Any()).
			Do(func(id string, _ any, err error) {
				assert.Equal(t, spanID, id)
				require.Error(t, err)
				assert.Equal(t, "compass exited 1", err.Error())
			}),
		renderer.EXPECT().Flush().Return(nil),
	)

	provider := telemetry.NewProvider(renderer)
	tracer := telemetry.NewOTelTracer(provider, renderer)

	ctx := context.Background()
	tracer.EmitPlan(ctx, []string{"fonts", "css"}, []string{"dist"})

	_, span := tracer.Start(ctx, "css")
	_, err := span.Write([]byte("write static/css/main.css\n"))
	require.NoError(t, err)
	span.RecordError(errors.New("compass exited 1"))
	span.End()

	require.NoError(t, provider.Shutdown(ctx))
}

func TestOTelTracer_NestedSpanReportsParent(t *testing.T) {
	ctrl := gomock.NewController(t)
	renderer := mocks.NewMockRenderer(ctrl)

	var rootID string
	renderer.EXPECT().OnTaskStart(gomock.Any(), "", "dist", gomock.Any()).
		Do(func(id, _, _ string, _ any) { rootID = id })
	renderer.EXPECT().OnTaskStart(gomock.Any(), gomock.Any(), "css", gomock.Any()).
		Do(func(_, parentID, _ string, _ any) { assert.Equal(t, rootID, parentID) })
	renderer.EXPECT().OnTaskComplete(gomock.Any(), gomock.Any(), nil).Times(2)

	tracer := telemetry.NewOTelTracer(telemetry.NewProvider(renderer), renderer)

	ctx, root := tracer.Start(context.Background(), "dist")
	_, child := tracer.Start(ctx, "css")
	child.End()
	root.End()
}

func TestOTelTracer_WithoutRendererRecordsEvents(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	tracer := telemetry.NewOTelTracer(provider, nil)

	_, span := tracer.Start(context.Background(), "images", ports.WithWatch())
	_, err := span.Write([]byte("copied 3 files"))
	require.NoError(t, err)
	span.SetAttribute("files", 3)
	span.SetAttribute("paths", []string{"a.png"})
	span.SetAttribute("took", struct{ ms int }{5})
	span.End()

	ended := recorder.Ended()
	require.Len(t, ended, 1)
	got := ended[0]
	assert.Equal(t, "images", got.Name())
	assert.Contains(t, got.Attributes(), attribute.String(telemetry.TriggerAttribute, "watch"))
	assert.Contains(t, got.Attributes(), attribute.Int("files", 3))
	assert.Contains(t, got.Attributes(), attribute.StringSlice("paths", []string{"a.png"}))
	assert.Contains(t, got.Attributes(), attribute.String("took", "{5}"))
	require.Len(t, got.Events(), 1)
	assert.Equal(t, "log", got.Events()[0].Name)
	assert.Equal(t, codes.Unset, got.Status().Code)
}

func TestNewProvider_NilRenderer(t *testing.T) {
	provider := telemetry.NewProvider(nil)

	_, span := provider.Tracer("test").Start(context.Background(), "noop")
	span.End()

	require.NoError(t, provider.ForceFlush(context.Background()))
	require.NoError(t, provider.Shutdown(context.Background()))
}

func TestNewProvider_EmptyErrorDescription(t *testing.T) {
	ctrl := gomock.NewController(t)
	renderer := mocks.NewMockRenderer(ctrl)
	renderer.EXPECT().OnTaskStart(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any())
	renderer.EXPECT().OnTaskComplete(gomock.Any(), gomock.Any(), gomock.Any()).
		Do(func(_ string, _ any, err error) {
			require.Error(t, err)
			assert.Equal(t, "task failed", err.Error())
		})

	provider := telemetry.NewProvider(renderer)
	_, span := provider.Tracer("test").Start(context.Background(), "css")
	span.SetStatus(codes.Error, "")
	span.End()
}
