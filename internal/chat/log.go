package chat

import (
	"sync"

	"github.com/google/uuid"

	"tanya-chat/internal/speech"
)

type Sender string

const (
	SenderUser Sender = "user"
	SenderAI   Sender = "ai"
)

type EventKind int

const (
	EventAdded EventKind = iota
	EventUpdated
	EventCleared
	EventScrolled
)

// Event describes one change of the visible log. Message is nil for
// EventCleared and EventScrolled.
type Event struct {
	Kind    EventKind
	Message *Message
}

// Message is one entry of the visible log. Model entries carry a speech
// control and, once rendered, copy buttons for their code blocks.
type Message struct {
	id     string
	sender Sender
	log    *Log

	mu      sync.RWMutex
	text    string
	html    string
	buttons []*CopyButton
	icon    speech.Icon
}

func (m *Message) ID() string     { return m.id }
func (m *Message) Sender() Sender { return m.sender }

// Text is the message source: the user's input, the model's markdown, or the
// status text shown in place of an answer.
func (m *Message) Text() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.text
}

// HTML is the rendered answer, empty for plain-text entries.
func (m *Message) HTML() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.html
}

func (m *Message) CopyButtons() []*CopyButton {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]*CopyButton(nil), m.buttons...)
}

// SpeechIcon is empty for user entries.
func (m *Message) SpeechIcon() speech.Icon {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.icon
}

func (m *Message) setText(text string) {
	m.mu.Lock()
	m.text = text
	m.html = ""
	m.buttons = nil
	m.mu.Unlock()
	m.log.notify(Event{Kind: EventUpdated, Message: m})
}

func (m *Message) setRendered(text, html string) {
	m.mu.Lock()
	m.text = text
	m.html = html
	m.mu.Unlock()
	m.log.notify(Event{Kind: EventUpdated, Message: m})
}

func (m *Message) setIcon(icon speech.Icon) {
	m.mu.Lock()
	m.icon = icon
	m.mu.Unlock()
	m.log.notify(Event{Kind: EventUpdated, Message: m})
}

// Log is the visible chat log of a session.
type Log struct {
	mu       sync.RWMutex
	entries  []*Message
	scrolled int
	subs     []func(Event)
}

func NewLog() *Log {
	return &Log{scrolled: -1}
}

// Subscribe registers fn for every change. fn runs on the goroutine that
// made the change and must not block.
func (l *Log) Subscribe(fn func(Event)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.subs = append(l.subs, fn)
}

func (l *Log) Add(sender Sender, text string) *Message {
	m := &Message{id: uuid.New().String(), sender: sender, log: l, text: text}
	if sender == SenderAI {
		m.icon = speech.IconSpeaker
	}
	l.mu.Lock()
	l.entries = append(l.entries, m)
	l.mu.Unlock()
	l.notify(Event{Kind: EventAdded, Message: m})
	return m
}

func (l *Log) Clear() {
	l.mu.Lock()
	l.entries = nil
	l.scrolled = -1
	l.mu.Unlock()
	l.notify(Event{Kind: EventCleared})
}

// ScrollToEnd moves the view to the newest entry.
func (l *Log) ScrollToEnd() {
	l.mu.Lock()
	l.scrolled = len(l.entries) - 1
	l.mu.Unlock()
	l.notify(Event{Kind: EventScrolled})
}

// ScrolledTo is the index of the entry in view, -1 when empty.
func (l *Log) ScrolledTo() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.scrolled
}

func (l *Log) Entries() []*Message {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]*Message(nil), l.entries...)
}

func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}

// Find returns the entry with id, or nil.
func (l *Log) Find(id string) *Message {
	l.mu.RLock()
	defer l.mu.RUnlock()
	for _, m := range l.entries {
		if m.id == id {
			return m
		}
	}
	return nil
}

// LastFrom returns the newest entry from sender, or nil.
func (l *Log) LastFrom(sender Sender) *Message {
	l.mu.RLock()
	defer l.mu.RUnlock()
	for i := len(l.entries) - 1; i >= 0; i-- {
		if l.entries[i].sender == sender {
			return l.entries[i]
		}
	}
	return nil
}

func (l *Log) notify(ev Event) {
	l.mu.RLock()
	subs := append([]func(Event)(nil), l.subs...)
	l.mu.RUnlock()
	for _, fn := range subs {
		fn(ev)
	}
}
