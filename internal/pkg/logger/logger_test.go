package logger

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestWithAddsFieldToContextLogger(t *testing.T) {
	var buf bytes.Buffer
	base := zerolog.New(&buf)
	ctx := WithContext(context.Background(), &base)

	ctx = With(ctx, "booking_id", "b-1")
	FromContext(ctx).Info().Msg("hello")

	if !strings.Contains(buf.String(), `"booking_id":"b-1"`) {
		t.Fatalf("expected booking_id field, got %s", buf.String())
	}
}

func TestFromContextFallsBackToGlobal(t *testing.T) {
	if FromContext(context.Background()) == nil {
		t.Fatalf("expected global logger")
	}
}
