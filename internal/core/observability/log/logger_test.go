package log

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, LevelDebug, ParseLevel("debug"))
	assert.Equal(t, LevelWarn, ParseLevel("warning"))
	assert.Equal(t, LevelInfo, ParseLevel("nonsense"))
}

func TestNopLoggerLevelRoundTrip(t *testing.T) {
	l := Nop()
	l.SetLevel(LevelWarn)
	assert.Equal(t, LevelWarn, l.GetLevel())

	child := l.With(String("component", "test"))
	child.Info("dropped")
	assert.Equal(t, LevelWarn, child.GetLevel(), "children share the atomic level")
}

func TestWithContextWithoutSession(t *testing.T) {
	l := Nop()
	assert.Same(t, l, l.WithContext(context.Background()))
	assert.NotSame(t, l, l.WithContext(ContextWithSession(context.Background(), "s-1")))
}
