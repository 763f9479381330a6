package speech

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"sync"
)

// baseWordsPerMinute is the default speed of espeak-ng and say.
const baseWordsPerMinute = 175

// ExecEngine speaks through an external TTS command such as espeak-ng or say.
type ExecEngine struct {
	Command    string
	VoiceFlag  string
	RateFlag   string
	ListVoices string

	once   sync.Once
	voices []Voice
}

func NewExecEngine(command, voiceFlag, rateFlag, listVoices string) *ExecEngine {
	return &ExecEngine{Command: command, VoiceFlag: voiceFlag, RateFlag: rateFlag, ListVoices: listVoices}
}

// Available reports whether the command is on PATH.
func (e *ExecEngine) Available() bool {
	_, err := exec.LookPath(e.Command)
	return err == nil
}

// Voices lists voices once; failures yield no voices.
func (e *ExecEngine) Voices() []Voice {
	e.once.Do(func() {
		if e.ListVoices == "" {
			return
		}
		out, err := exec.Command(e.Command, e.ListVoices).Output()
		if err != nil {
			return
		}
		e.voices = ParseVoices(out)
	})
	return e.voices
}

func (e *ExecEngine) Speak(ctx context.Context, u Utterance) error {
	cmd := exec.CommandContext(ctx, e.Command, e.args(u)...)
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%s: %w", e.Command, err)
	}
	return nil
}

func (e *ExecEngine) args(u Utterance) []string {
	var args []string
	if u.Voice != nil && e.VoiceFlag != "" {
		args = append(args, e.VoiceFlag, u.Voice.Name)
	}
	if u.Rate > 0 && e.RateFlag != "" {
		args = append(args, e.RateFlag, strconv.Itoa(int(baseWordsPerMinute*u.Rate)))
	}
	// "--" ends option parsing so text such as "- item" is read, not parsed.
	return append(args, "--", u.Text)
}

// ParseVoices reads `espeak-ng --voices` or `say -v '?'` listings.
func ParseVoices(out []byte) []Voice {
	var voices []Voice
	sc := bufio.NewScanner(bytes.NewReader(out))
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) < 2 {
			continue
		}
		if fields[0] == "Pty" {
			continue
		}
		// espeak-ng: Pty Language Age/Gender VoiceName File ...
		if _, err := strconv.Atoi(fields[0]); err == nil {
			if len(fields) >= 4 {
				voices = append(voices, Voice{Name: fields[3], Lang: fields[1]})
			}
			continue
		}
		// say: Name [Name...] lang_REGION # sample
		for i := 1; i < len(fields); i++ {
			if strings.Contains(fields[i], "_") {
				voices = append(voices, Voice{Name: strings.Join(fields[:i], " "), Lang: fields[i]})
				break
			}
		}
	}
	return voices
}

// NopEngine accepts every utterance and finishes immediately.
type NopEngine struct{}

func (NopEngine) Voices() []Voice { return nil }

func (NopEngine) Speak(ctx context.Context, u Utterance) error { return ctx.Err() }
