// Package speech reads rendered messages aloud through one shared engine.
package speech

import (
	"context"
	"strings"
	"sync"

	"tanya-chat/internal/render"
)

type State int

const (
	Idle State = iota
	Speaking
)

func (s State) String() string {
	if s == Speaking {
		return "speaking"
	}
	return "idle"
}

// Icon is what a message's speech control shows.
type Icon string

const (
	IconSpeaker Icon = "speaker"
	IconStop    Icon = "stop"
)

type Voice struct {
	Name string
	Lang string
}

type Utterance struct {
	Text  string
	Voice *Voice // nil selects the engine's default voice
	Lang  string
	Rate  float64
}

// Engine is the platform speech resource. Speak blocks until the utterance
// ends or ctx is canceled.
type Engine interface {
	Voices() []Voice
	Speak(ctx context.Context, u Utterance) error
}

// DefaultRate matches a slightly brisk reading speed.
const DefaultRate = 1.1

// Speaker guarantees at most one utterance at a time: starting one cancels
// and waits out the previous one.
type Speaker struct {
	engine Engine
	locale string
	rate   float64
	skip   map[string]bool

	// startMu serializes Speak and Cancel so two starts cannot overlap.
	startMu sync.Mutex

	mu     sync.Mutex
	gen    uint64
	state  State
	owner  string
	cancel context.CancelFunc
	done   chan struct{}
}

// NewSpeaker wraps engine. Texts listed in skip (such as the pending
// placeholder) are never spoken.
func NewSpeaker(engine Engine, locale string, skip ...string) *Speaker {
	if engine == nil {
		engine = NopEngine{}
	}
	s := &Speaker{engine: engine, locale: locale, rate: DefaultRate, skip: map[string]bool{}}
	for _, t := range skip {
		s.skip[strings.TrimSpace(t)] = true
	}
	return s
}

func (s *Speaker) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Owner is the id passed to the running utterance, or "" when idle.
func (s *Speaker) Owner() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != Speaking {
		return ""
	}
	return s.owner
}

// Toggle stops playback when anything is speaking, otherwise starts reading
// text for owner. onIcon receives the icon changes of owner's control.
func (s *Speaker) Toggle(owner, text string, onIcon func(Icon)) {
	if s.State() == Speaking {
		s.Cancel()
		if onIcon != nil {
			onIcon(IconSpeaker)
		}
		return
	}
	s.Speak(owner, text, onIcon)
}

// Speak cancels any running utterance and starts a new one. It reports false
// when there is nothing to read.
func (s *Speaker) Speak(owner, text string, onIcon func(Icon)) bool {
	s.startMu.Lock()
	defer s.startMu.Unlock()
	s.stop()

	if strings.TrimSpace(text) == "" || s.skip[strings.TrimSpace(text)] {
		return false
	}
	clean := render.PlainText(text)
	if clean == "" {
		return false
	}
	u := Utterance{
		Text:  clean,
		Voice: PickVoice(s.engine.Voices(), s.locale),
		Lang:  s.locale,
		Rate:  s.rate,
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	s.mu.Lock()
	s.gen++
	gen := s.gen
	s.state = Speaking
	s.owner = owner
	s.cancel = cancel
	s.done = done
	s.mu.Unlock()

	if onIcon != nil {
		onIcon(IconStop)
	}

	go func() {
		defer close(done)
		_ = s.engine.Speak(ctx, u)
		cancel()

		s.mu.Lock()
		if s.gen == gen {
			s.state = Idle
			s.owner = ""
			s.cancel = nil
			s.done = nil
		}
		s.mu.Unlock()

		// ends and errors both revert the icon
		if onIcon != nil {
			onIcon(IconSpeaker)
		}
	}()
	return true
}

// Cancel stops the running utterance, if any, and waits for it to finish.
func (s *Speaker) Cancel() {
	s.startMu.Lock()
	defer s.startMu.Unlock()
	s.stop()
}

func (s *Speaker) stop() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// Wait blocks until the running utterance, if any, finishes on its own.
func (s *Speaker) Wait() {
	s.mu.Lock()
	done := s.done
	s.mu.Unlock()
	if done != nil {
		<-done
	}
}

// PickVoice returns the first voice for locale, matching the full tag first
// ("id-ID") and then the language alone ("id"). nil means the default voice.
func PickVoice(voices []Voice, locale string) *Voice {
	want := normalizeLang(locale)
	if want == "" {
		return nil
	}
	for i := range voices {
		if strings.Contains(normalizeLang(voices[i].Lang), want) {
			return &voices[i]
		}
	}
	base, _, _ := strings.Cut(want, "-")
	for i := range voices {
		lang, _, _ := strings.Cut(normalizeLang(voices[i].Lang), "-")
		if lang == base {
			return &voices[i]
		}
	}
	return nil
}

func normalizeLang(l string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(l), "_", "-"))
}
