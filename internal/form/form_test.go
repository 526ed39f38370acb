package form

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubConverter struct {
	steps   string
	err     error
	calls   int
	lastIn  string
	started chan struct{}
	release chan struct{}
}

func (s *stubConverter) Convert(ctx context.Context, recipeText string) (string, error) {
	s.calls++
	s.lastIn = recipeText
	if s.started != nil {
		close(s.started)
	}
	if s.release != nil {
		<-s.release
	}
	return s.steps, s.err
}

type stubClipboard struct {
	text string
	err  error
}

func (c *stubClipboard) WriteText(text string) error {
	if c.err != nil {
		return c.err
	}
	c.text = text
	return nil
}

const scenarioSteps = "1. Sauté 5 min / 120°C / speed 1"

func TestNew_InitialState(t *testing.T) {
	f := New(&stubConverter{}, &stubClipboard{})
	assert.Equal(t, State{CopyLabel: "Copy Recipe"}, f.Snapshot())
}

func TestSubmit_Success(t *testing.T) {
	conv := &stubConverter{steps: scenarioSteps}
	f := New(conv, &stubClipboard{})
	f.SetInput("Ingredients: 1 onion...\nInstructions: 1. Sauté onion in oil for 5 minutes.")

	require.True(t, f.Submit(context.Background()))

	s := f.Snapshot()
	assert.Equal(t, scenarioSteps, s.Result)
	assert.Empty(t, s.Error)
	assert.False(t, s.Loading)
	assert.Equal(t, "Ingredients: 1 onion...\nInstructions: 1. Sauté onion in oil for 5 minutes.", conv.lastIn)
}

func TestSubmit_ErrorMessage(t *testing.T) {
	f := New(&stubConverter{err: errors.New("Recipe text is required in the request body.")}, &stubClipboard{})

	f.Submit(context.Background())

	s := f.Snapshot()
	assert.Equal(t, "Recipe text is required in the request body.", s.Error)
	assert.Empty(t, s.Result)
	assert.False(t, s.Loading)
}

func TestSubmit_EmptyErrorMessage(t *testing.T) {
	f := New(&stubConverter{err: errors.New("")}, &stubClipboard{})

	f.Submit(context.Background())

	assert.Equal(t, "Failed to convert recipe. Please try again.", f.Snapshot().Error)
}

func TestSubmit_ClearsPreviousState(t *testing.T) {
	conv := &stubConverter{steps: scenarioSteps}
	clip := &stubClipboard{}
	f := New(conv, clip, WithCopyResetDelay(time.Hour))
	defer f.Close()

	f.Submit(context.Background())
	f.Copy(context.Background())
	require.Equal(t, "Copied!", f.Snapshot().CopyLabel)

	conv.steps = ""
	conv.err = errors.New("HTTP error! status: 502")
	f.Submit(context.Background())

	s := f.Snapshot()
	assert.Empty(t, s.Result)
	assert.Equal(t, "Copy Recipe", s.CopyLabel)
	assert.Equal(t, "HTTP error! status: 502", s.Error)
}

func TestSubmit_LoadingWhileInFlight(t *testing.T) {
	conv := &stubConverter{
		steps:   scenarioSteps,
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
	f := New(conv, &stubClipboard{})

	done := make(chan bool)
	go func() { done <- f.Submit(context.Background()) }()

	<-conv.started
	s := f.Snapshot()
	assert.True(t, s.Loading)
	assert.Empty(t, s.Error)
	assert.Empty(t, s.Result)

	assert.False(t, f.Submit(context.Background()), "second submit must be rejected while loading")

	close(conv.release)
	assert.True(t, <-done)
	assert.False(t, f.Snapshot().Loading)
	assert.Equal(t, 1, conv.calls)
}

func TestCopy_NoResult(t *testing.T) {
	clip := &stubClipboard{}
	f := New(&stubConverter{}, clip)

	f.Copy(context.Background())

	assert.Empty(t, clip.text)
	assert.Equal(t, "Copy Recipe", f.Snapshot().CopyLabel)
}

func TestCopy_SuccessResetsLabel(t *testing.T) {
	clip := &stubClipboard{}
	f := New(&stubConverter{steps: scenarioSteps}, clip, WithCopyResetDelay(20*time.Millisecond))
	defer f.Close()

	f.Submit(context.Background())
	f.Copy(context.Background())

	assert.Equal(t, scenarioSteps, clip.text)
	assert.Equal(t, "Copied!", f.Snapshot().CopyLabel)
	assert.Eventually(t, func() bool {
		return f.Snapshot().CopyLabel == "Copy Recipe"
	}, time.Second, 5*time.Millisecond)
}

func TestCopy_Failure(t *testing.T) {
	clip := &stubClipboard{err: errors.New("no clipboard")}
	f := New(&stubConverter{steps: scenarioSteps}, clip)

	f.Submit(context.Background())
	f.Copy(context.Background())

	s := f.Snapshot()
	assert.Equal(t, "Failed to copy recipe to clipboard.", s.Error)
	assert.Equal(t, "Copy Recipe", s.CopyLabel)
	assert.Equal(t, scenarioSteps, s.Result)
}

func TestRender_Scenario(t *testing.T) {
	f := New(&stubConverter{steps: scenarioSteps}, &stubClipboard{})
	f.Submit(context.Background())

	var buf bytes.Buffer
	require.NoError(t, f.Render(&buf))

	assert.Equal(t, "Suggested Thermomix Steps:\n"+scenarioSteps+"\n[Copy Recipe]\n", buf.String())
}

func TestRenderState(t *testing.T) {
	tests := []struct {
		name  string
		state State
		want  string
	}{
		{"empty", State{CopyLabel: "Copy Recipe"}, ""},
		{"loading", State{Loading: true}, "Converting...\n"},
		{"error", State{Error: "HTTP error! status: 500"}, "Error: HTTP error! status: 500\n"},
		{"whitespace preserved", State{Result: "1. Mix\n\n  2. Chop", CopyLabel: "Copied!"}, "Suggested Thermomix Steps:\n1. Mix\n\n  2. Chop\n[Copied!]\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, RenderState(&buf, tt.state))
			assert.Equal(t, tt.want, buf.String())
		})
	}
}
