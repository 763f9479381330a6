package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/peterh/liner"

	"tanya-chat/internal/chat"
	"tanya-chat/internal/render"
)

const helpText = `Commands:
  /reset      start over
  /speak [n]  read answer n aloud (default: the last one), or stop reading
  /copy <n>   copy code block n of the last answer
  /help       show this help
  /quit       exit`

type repl struct {
	session *chat.Session
	term    *render.TerminalRenderer
	out     io.Writer
	timeout time.Duration
}

func newREPL(s *chat.Session, term *render.TerminalRenderer, out io.Writer, timeout time.Duration) *repl {
	r := &repl{session: s, term: term, out: out, timeout: timeout}
	s.Log().Subscribe(r.onEvent)
	return r
}

// onEvent echoes model-side entries as they appear (greeting, placeholder).
func (r *repl) onEvent(ev chat.Event) {
	if ev.Kind == chat.EventAdded && ev.Message.Sender() == chat.SenderAI {
		fmt.Fprintf(r.out, "ai> %s\n", ev.Message.Text())
	}
}

func (r *repl) run() error {
	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	r.session.Reset()
	fmt.Fprintln(r.out, "Type /help for commands.")
	for {
		input, err := line.Prompt("you> ")
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		if strings.TrimSpace(input) != "" {
			line.AppendHistory(input)
		}
		if quit := r.handle(input); quit {
			return nil
		}
	}
}

// handle runs one line of input and reports whether to exit.
func (r *repl) handle(input string) bool {
	input = strings.TrimSpace(input)
	if !strings.HasPrefix(input, "/") {
		r.submit(input)
		return false
	}
	cmd, arg, _ := strings.Cut(input, " ")
	arg = strings.TrimSpace(arg)
	switch cmd {
	case "/quit", "/exit":
		return true
	case "/reset":
		r.session.Reset()
	case "/speak":
		if err := r.speak(arg); err != nil {
			fmt.Fprintln(r.out, err)
		}
	case "/copy":
		if err := r.copy(arg); err != nil {
			fmt.Fprintln(r.out, err)
		}
	case "/help":
		fmt.Fprintln(r.out, helpText)
	default:
		fmt.Fprintf(r.out, "unknown command %s\n", cmd)
	}
	return false
}

func (r *repl) submit(text string) {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()
	res, err := r.session.Submit(ctx, text)
	if err != nil {
		fmt.Fprintln(r.out, err)
		return
	}
	switch res.Kind {
	case chat.ResultSkipped:
	case chat.ResultAnswer:
		fmt.Fprint(r.out, r.term.Render(res.Text))
		for _, b := range res.Message.CopyButtons() {
			lang := b.Language()
			if lang == "" {
				lang = "code"
			}
			fmt.Fprintf(r.out, "  [/copy %d] %s\n", b.Index()+1, lang)
		}
	default:
		fmt.Fprintf(r.out, "ai> %s\n", res.Message.Text())
	}
}

func (r *repl) aiMessages() []*chat.Message {
	var out []*chat.Message
	for _, m := range r.session.Log().Entries() {
		if m.Sender() == chat.SenderAI {
			out = append(out, m)
		}
	}
	return out
}

func (r *repl) speak(arg string) error {
	msgs := r.aiMessages()
	if len(msgs) == 0 {
		return errors.New("nothing to read")
	}
	m := msgs[len(msgs)-1]
	if arg != "" {
		n, err := strconv.Atoi(arg)
		if err != nil || n < 1 || n > len(msgs) {
			return fmt.Errorf("answer number must be between 1 and %d", len(msgs))
		}
		m = msgs[n-1]
	}
	r.session.ToggleSpeech(m)
	return nil
}

func (r *repl) copy(arg string) error {
	m := r.session.Log().LastFrom(chat.SenderAI)
	if m == nil {
		return errors.New("no answer yet")
	}
	buttons := m.CopyButtons()
	if len(buttons) == 0 {
		return errors.New("the last answer has no code blocks")
	}
	n := 1
	if arg != "" {
		v, err := strconv.Atoi(arg)
		if err != nil || v < 1 || v > len(buttons) {
			return fmt.Errorf("code block number must be between 1 and %d", len(buttons))
		}
		n = v
	}
	b := buttons[n-1]
	if err := b.Press(); err != nil {
		return err
	}
	fmt.Fprintf(r.out, "%s\n", b.Label())
	return nil
}
