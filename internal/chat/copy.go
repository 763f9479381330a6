package chat

import (
	"fmt"
	"sync"
	"time"

	"github.com/atotto/clipboard"

	"tanya-chat/internal/render"
)

// DefaultCopyFeedback is how long a button reads "Copied!".
const DefaultCopyFeedback = 2 * time.Second

type Clipboard interface {
	WriteAll(text string) error
}

// SystemClipboard writes to the OS clipboard.
type SystemClipboard struct{}

func (SystemClipboard) WriteAll(text string) error { return clipboard.WriteAll(text) }

// CopyButton copies one code block of a rendered answer.
type CopyButton struct {
	block    render.CodeBlock
	clip     Clipboard
	feedback time.Duration
	onChange func()

	mu    sync.Mutex
	label string
	gen   int
	timer *time.Timer
}

func newCopyButton(block render.CodeBlock, clip Clipboard, feedback time.Duration, onChange func()) *CopyButton {
	return &CopyButton{block: block, clip: clip, feedback: feedback, onChange: onChange, label: render.CopyLabel}
}

func (b *CopyButton) Code() string     { return b.block.Code }
func (b *CopyButton) Language() string { return b.block.Language }
func (b *CopyButton) Index() int       { return b.block.Index }

func (b *CopyButton) Label() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.label
}

// Press copies the block. On success the label reads "Copied!" until the
// feedback duration has passed since the last press.
func (b *CopyButton) Press() error {
	if b.clip == nil {
		return fmt.Errorf("no clipboard available")
	}
	if err := b.clip.WriteAll(b.block.Code); err != nil {
		return fmt.Errorf("copy code block: %w", err)
	}

	b.mu.Lock()
	b.label = render.CopiedLabel
	b.gen++
	gen := b.gen
	if b.timer != nil {
		b.timer.Stop()
	}
	b.timer = time.AfterFunc(b.feedback, func() { b.revert(gen) })
	b.mu.Unlock()
	b.changed()
	return nil
}

func (b *CopyButton) revert(gen int) {
	b.mu.Lock()
	if gen != b.gen {
		b.mu.Unlock()
		return
	}
	b.label = render.CopyLabel
	b.timer = nil
	b.mu.Unlock()
	b.changed()
}

func (b *CopyButton) changed() {
	if b.onChange != nil {
		b.onChange()
	}
}
