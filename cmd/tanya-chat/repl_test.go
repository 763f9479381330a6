package main

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tanya-chat/internal/chat"
	"tanya-chat/internal/render"
	"tanya-chat/internal/speech"
	"tanya-chat/internal/types"
)

type stubPoster struct{ answer string }

func (p stubPoster) Post(ctx context.Context, contents []types.Content) (*types.ChatResponse, error) {
	var out types.ChatResponse
	b, _ := json.Marshal(types.ChatResponse{Candidates: []types.Candidate{{
		Content: types.Content{Parts: []types.Part{{Text: p.answer}}},
	}}})
	return &out, json.Unmarshal(b, &out)
}

type memClipboard struct{ text string }

func (c *memClipboard) WriteAll(text string) error {
	c.text = text
	return nil
}

func newTestREPL(answer string) (*repl, *bytes.Buffer, *memClipboard) {
	clip := &memClipboard{}
	s := chat.NewSession(chat.Options{
		Relay:        stubPoster{answer: answer},
		SpeechEngine: speech.NopEngine{},
		Clipboard:    clip,
		Messages:     chat.LoadMessages("en-US"),
	})
	var out bytes.Buffer
	return newREPL(s, &render.TerminalRenderer{}, &out, time.Second), &out, clip
}

func TestREPL_SubmitAndCopy(t *testing.T) {
	r, out, clip := newTestREPL("Run:\n\n```sh\nmake test\n```\n")

	assert.False(t, r.handle("how do I test?"))
	assert.Contains(t, out.String(), "ai> Thinking...")
	assert.Contains(t, out.String(), "[/copy 1]")

	out.Reset()
	assert.False(t, r.handle("/copy 1"))
	assert.Equal(t, "make test", clip.text)
	assert.Contains(t, out.String(), "Copied!")

	out.Reset()
	r.handle("/copy 2")
	assert.Contains(t, out.String(), "between 1 and 1")
}

func TestREPL_Reset(t *testing.T) {
	r, out, _ := newTestREPL("ok")
	r.handle("hello")
	out.Reset()

	r.handle("/reset")
	assert.Contains(t, out.String(), "ai> Hello!!")
	require.Len(t, r.session.Transcript(), 1)
}

func TestREPL_Commands(t *testing.T) {
	r, out, _ := newTestREPL("ok")

	r.handle("/speak")
	assert.Contains(t, out.String(), "nothing to read")

	r.handle("/copy")
	assert.Contains(t, out.String(), "no answer yet")

	r.handle("/bogus")
	assert.Contains(t, out.String(), "unknown command /bogus")

	r.handle("/help")
	assert.Contains(t, out.String(), "/reset")

	assert.True(t, r.handle("/quit"))
}

func TestREPL_BlankInputIgnored(t *testing.T) {
	r, out, _ := newTestREPL("ok")
	assert.False(t, r.handle("   "))
	assert.Empty(t, out.String())
	assert.Zero(t, r.session.Log().Len())
}
