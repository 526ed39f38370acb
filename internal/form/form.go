// Package form holds the conversion form state machine shared by the terminal and
// browser front ends.
package form

import (
	"context"
	"sync"
	"time"
)

const (
	DefaultCopyLabel      = "Copy Recipe"
	CopiedLabel           = "Copied!"
	DefaultCopyResetDelay = 2 * time.Second

	defaultSubmitError = "Failed to convert recipe. Please try again."
	copyFailedError    = "Failed to copy recipe to clipboard."
)

// State is a snapshot of everything the form displays.
type State struct {
	Input     string
	Result    string
	Loading   bool
	Error     string
	CopyLabel string
}

// Converter sends recipe text to the conversion endpoint.
type Converter interface {
	Convert(ctx context.Context, recipeText string) (string, error)
}

// Clipboard writes text to the system clipboard.
type Clipboard interface {
	WriteText(text string) error
}

// ClipboardFunc adapts a function such as clipboard.WriteAll to Clipboard.
type ClipboardFunc func(text string) error

func (f ClipboardFunc) WriteText(text string) error {
	return f(text)
}

type Option func(*Form)

// WithCopyResetDelay overrides how long the copied acknowledgement stays visible.
func WithCopyResetDelay(d time.Duration) Option {
	return func(f *Form) {
		f.copyResetDelay = d
	}
}

type Form struct {
	mu             sync.Mutex
	state          State
	client         Converter
	clipboard      Clipboard
	copyResetDelay time.Duration
	resetTimer     *time.Timer
}

func New(client Converter, clipboard Clipboard, opts ...Option) *Form {
	f := &Form{
		state:          State{CopyLabel: DefaultCopyLabel},
		client:         client,
		clipboard:      clipboard,
		copyResetDelay: DefaultCopyResetDelay,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// SetInput replaces the recipe text.
func (f *Form) SetInput(text string) {
	f.mu.Lock()
	f.state.Input = text
	f.mu.Unlock()
}

// Submit converts the current input. It returns false without doing anything when a
// submission is already in flight.
func (f *Form) Submit(ctx context.Context) bool {
	f.mu.Lock()
	if f.state.Loading {
		f.mu.Unlock()
		return false
	}
	f.state.Loading = true
	f.state.Error = ""
	f.state.Result = ""
	f.state.CopyLabel = DefaultCopyLabel
	f.stopResetTimer()
	input := f.state.Input
	f.mu.Unlock()

	defer func() {
		f.mu.Lock()
		f.state.Loading = false
		f.mu.Unlock()
	}()

	steps, err := f.client.Convert(ctx, input)

	f.mu.Lock()
	defer f.mu.Unlock()
	if err != nil {
		msg := err.Error()
		if msg == "" {
			msg = defaultSubmitError
		}
		f.state.Error = msg
		return true
	}
	f.state.Result = steps
	return true
}

// Copy writes the result to the clipboard. It does nothing when there is no result.
func (f *Form) Copy(ctx context.Context) {
	f.mu.Lock()
	result := f.state.Result
	f.mu.Unlock()
	if result == "" {
		return
	}

	err := f.clipboard.WriteText(result)

	f.mu.Lock()
	defer f.mu.Unlock()
	if err != nil {
		f.state.Error = copyFailedError
		return
	}

	f.state.CopyLabel = CopiedLabel
	f.stopResetTimer()
	f.resetTimer = time.AfterFunc(f.copyResetDelay, func() {
		f.mu.Lock()
		f.state.CopyLabel = DefaultCopyLabel
		f.mu.Unlock()
	})
}

// Snapshot returns a copy of the current state.
func (f *Form) Snapshot() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Close stops a pending copy label reset.
func (f *Form) Close() {
	f.mu.Lock()
	f.stopResetTimer()
	f.mu.Unlock()
}

// stopResetTimer must be called with mu held.
func (f *Form) stopResetTimer() {
	if f.resetTimer != nil {
		f.resetTimer.Stop()
		f.resetTimer = nil
	}
}
