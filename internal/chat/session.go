// Package chat is the transcript controller: it owns a session's
// conversation, talks to the relay and keeps the visible log in sync.
package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"tanya-chat/internal/logger"
	"tanya-chat/internal/render"
	"tanya-chat/internal/speech"
	"tanya-chat/internal/transcript"
	"tanya-chat/internal/types"
)

// ErrBusy is returned by Submit under OverlapReject while an exchange is pending.
var ErrBusy = errors.New("an exchange is already pending")

// Poster sends the transcript to the relay.
type Poster interface {
	Post(ctx context.Context, contents []types.Content) (*types.ChatResponse, error)
}

// OverlapPolicy decides what a submission does while another is pending.
type OverlapPolicy int

const (
	// OverlapAllow lets submissions race; each updates its own placeholder.
	OverlapAllow OverlapPolicy = iota
	// OverlapReject refuses a submission while one is pending.
	OverlapReject
)

// ParseOverlapPolicy reads "allow" (or "race") and "reject"; empty means allow.
func ParseOverlapPolicy(s string) (OverlapPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "allow", "race":
		return OverlapAllow, nil
	case "reject":
		return OverlapReject, nil
	}
	return OverlapAllow, fmt.Errorf("unknown overlap policy %q", s)
}

// Options configures a Session. Only Relay is required.
type Options struct {
	Relay        Poster
	SpeechEngine speech.Engine
	Clipboard    Clipboard
	Messages     Messages
	Overlap      OverlapPolicy
	CopyFeedback time.Duration
	// MaxTurns caps the transcript; 0 keeps every turn.
	MaxTurns int
	Logger   *logger.Logger
}

// Session is one conversation: its transcript, its visible log and the
// speech and clipboard controls attached to the log's entries.
type Session struct {
	relay      Poster
	speaker    *speech.Speaker
	clip       Clipboard
	msgs       Messages
	overlap    OverlapPolicy
	feedback   time.Duration
	log        *logger.Logger
	transcript *transcript.Transcript
	chatLog    *Log

	mu      sync.Mutex
	pending int
}

// NewSession starts an empty session; call Reset to show the greeting.
func NewSession(opts Options) *Session {
	msgs := opts.Messages
	if msgs.Locale == "" {
		msgs = LoadMessages(DefaultLocale)
	}
	feedback := opts.CopyFeedback
	if feedback <= 0 {
		feedback = DefaultCopyFeedback
	}
	lg := opts.Logger
	if lg == nil {
		lg = logger.Discard()
	}
	return &Session{
		relay:      opts.Relay,
		speaker:    speech.NewSpeaker(opts.SpeechEngine, msgs.Locale, msgs.Placeholder),
		clip:       opts.Clipboard,
		msgs:       msgs,
		overlap:    opts.Overlap,
		feedback:   feedback,
		log:        lg,
		transcript: transcript.New(opts.MaxTurns),
		chatLog:    NewLog(),
	}
}

func (s *Session) Log() *Log { return s.chatLog }

func (s *Session) Messages() Messages { return s.msgs }

func (s *Session) Speaker() *speech.Speaker { return s.speaker }

func (s *Session) Transcript() []types.Turn { return s.transcript.Turns() }

// Pending is the number of exchanges awaiting a reply.
func (s *Session) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending
}

// Submit sends text as the next user turn and waits for the answer. Blank
// input is a no-op. Failures are reported in the Result and shown in place of
// the answer; the transcript then keeps the user turn without a model turn.
func (s *Session) Submit(ctx context.Context, text string) (Result, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Result{Kind: ResultSkipped}, nil
	}
	if !s.begin() {
		return Result{Kind: ResultSkipped}, ErrBusy
	}
	defer s.end()

	s.transcript.Append(types.Turn{Role: types.RoleUser, Content: text})
	s.chatLog.Add(SenderUser, text)
	s.chatLog.ScrollToEnd()

	placeholder := s.chatLog.Add(SenderAI, s.msgs.Placeholder)
	s.chatLog.ScrollToEnd()

	var res Result
	if s.relay == nil {
		res = Classify(nil, errors.New("no relay configured"))
	} else {
		resp, err := s.relay.Post(ctx, s.transcript.Contents())
		res = Classify(resp, err)
	}
	res.Message = placeholder
	s.apply(placeholder, res)
	s.chatLog.ScrollToEnd()
	return res, nil
}

func (s *Session) apply(m *Message, res Result) {
	switch res.Kind {
	case ResultAnswer:
		s.transcript.Append(types.Turn{Role: types.RoleModel, Content: res.Text})
		html, err := render.HTML(res.Text)
		if err != nil {
			s.log.Warn("[chat] markdown render failed", logrus.Fields{"error": err.Error()})
			m.setText(res.Text)
			return
		}
		m.setRendered(res.Text, html)
		if err := s.EnhanceCodeBlocks(m); err != nil {
			s.log.Warn("[chat] copy buttons not attached", logrus.Fields{"error": err.Error()})
		}
	case ResultUpstreamError:
		s.log.Warn("[chat] relay reported an error", logrus.Fields{"message": res.Text})
		m.setText(s.msgs.ErrorPrefix + res.Text)
	case ResultBadFormat:
		s.log.Warn("[chat] unexpected reply format")
		m.setText(s.msgs.BadFormat)
	case ResultUnreachable:
		s.log.Warn("[chat] relay unreachable", logrus.Fields{"error": fmt.Sprint(res.Err)})
		m.setText(s.msgs.Unreachable)
	case ResultSkipped:
	}
}

// EnhanceCodeBlocks attaches a copy button to every code block of a rendered
// message. Calling it again on the same message adds nothing.
func (s *Session) EnhanceCodeBlocks(m *Message) error {
	if m == nil || m.HTML() == "" {
		return nil
	}
	out, blocks, err := render.AttachCopyButtons(m.HTML())
	if err != nil {
		return err
	}

	m.mu.Lock()
	m.html = out
	for i := len(m.buttons); i < len(blocks); i++ {
		m.buttons = append(m.buttons, newCopyButton(blocks[i], s.clip, s.feedback, func() {
			m.log.notify(Event{Kind: EventUpdated, Message: m})
		}))
	}
	m.mu.Unlock()
	m.log.notify(Event{Kind: EventUpdated, Message: m})
	return nil
}

// ToggleSpeech starts reading m aloud, or stops whatever is playing.
func (s *Session) ToggleSpeech(m *Message) {
	if m == nil || m.Sender() != SenderAI {
		return
	}
	s.speaker.Toggle(m.ID(), m.Text(), m.setIcon)
}

// Reset stops speech and starts over with only the greeting.
func (s *Session) Reset() {
	s.speaker.Cancel()
	seed := types.Turn{Role: types.RoleModel, Content: s.msgs.Greeting}
	s.transcript.Reset(&seed)
	s.chatLog.Clear()
	s.chatLog.Add(SenderAI, s.msgs.Greeting)
	s.chatLog.ScrollToEnd()
}

// Close stops any speech; the transcript is left as is.
func (s *Session) Close() {
	s.speaker.Cancel()
}

func (s *Session) begin() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.overlap == OverlapReject && s.pending > 0 {
		return false
	}
	s.pending++
	return true
}

func (s *Session) end() {
	s.mu.Lock()
	s.pending--
	s.mu.Unlock()
}
