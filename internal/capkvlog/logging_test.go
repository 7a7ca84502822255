package capkvlog

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLogger_WritesLevelComponentAndMessage(t *testing.T) {
	var buf bytes.Buffer
	log := New("router")
	log.outputs = []io.Writer{&buf}

	log.Info("caller registered")

	out := buf.String()
	assert.Contains(t, out, "[INFO]")
	assert.Contains(t, out, "(router)")
	assert.Contains(t, out, "caller registered")
}

func TestLogger_Formatf_InterpolatesArgs(t *testing.T) {
	var buf bytes.Buffer
	log := New("registry")
	log.outputs = []io.Writer{&buf}

	log.Warnf("callback failed for %q: %v", "core", "boom")

	assert.Contains(t, buf.String(), `callback failed for "core": boom`)
}

func TestLogger_WithField_AddsFieldWithoutMutatingParent(t *testing.T) {
	var buf bytes.Buffer
	parent := New("registry")
	parent.outputs = []io.Writer{&buf}

	child := parent.WithField("correlation_id", "abc-123")
	child.Info("dispatching callback")
	parent.Info("parent message")

	out := buf.String()
	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.Len(t, lines, 2)
	assert.Contains(t, lines[0], "correlation_id=abc-123")
	assert.NotContains(t, lines[1], "correlation_id")
}

func TestLogger_AddOutput_WritesToAllOutputs(t *testing.T) {
	var a, b bytes.Buffer
	log := New("test")
	log.outputs = []io.Writer{&a}
	log.AddOutput(&b)

	log.Error("disk full")

	assert.Contains(t, a.String(), "disk full")
	assert.Contains(t, b.String(), "disk full")
}
