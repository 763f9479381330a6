package chat

import (
	"errors"

	"tanya-chat/internal/types"
)

type ResultKind int

const (
	// ResultSkipped: empty input, nothing happened.
	ResultSkipped ResultKind = iota
	ResultAnswer
	ResultUpstreamError
	ResultBadFormat
	ResultUnreachable
)

func (k ResultKind) String() string {
	switch k {
	case ResultSkipped:
		return "skipped"
	case ResultAnswer:
		return "answer"
	case ResultUpstreamError:
		return "upstream_error"
	case ResultBadFormat:
		return "bad_format"
	case ResultUnreachable:
		return "unreachable"
	}
	return "unknown"
}

// Result is the settled outcome of one exchange. Text holds the answer for
// ResultAnswer and the upstream message for ResultUpstreamError.
type Result struct {
	Kind    ResultKind
	Text    string
	Err     error
	Message *Message
}

var errNoReply = errors.New("relay returned no reply")

// Classify maps a relay reply (or the error reaching it) to a Result.
func Classify(resp *types.ChatResponse, err error) Result {
	if err != nil {
		return Result{Kind: ResultUnreachable, Err: err}
	}
	if resp == nil {
		return Result{Kind: ResultUnreachable, Err: errNoReply}
	}
	if msg, ok := resp.ErrorMessage(); ok {
		return Result{Kind: ResultUpstreamError, Text: msg}
	}
	if text, ok := resp.AnswerText(); ok {
		return Result{Kind: ResultAnswer, Text: text}
	}
	return Result{Kind: ResultBadFormat}
}
