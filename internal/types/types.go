package types

import (
	"encoding/json"
	"strings"
)

// Roles used in the transcript and on the wire.
const (
	RoleUser  = "user"
	RoleModel = "model"
)

// Turn is one role-tagged message of a transcript.
type Turn struct {
	Role    string
	Content string
}

type Part struct {
	Text string `json:"text"`
}

// Content is a turn in the upstream API's wire format.
type Content struct {
	Role  string `json:"role"`
	Parts []Part `json:"parts"`
}

// ChatRequest is the body posted by the client to the relay.
type ChatRequest struct {
	Contents json.RawMessage `json:"contents"`
}

// ChatPayload is the typed form of ChatRequest used by the client.
type ChatPayload struct {
	Contents []Content `json:"contents"`
}

type Candidate struct {
	Content      Content `json:"content"`
	FinishReason string  `json:"finishReason,omitempty"`
}

// ChatResponse is the subset of the upstream reply the client reads. Error is
// kept raw because the relay answers either {error:{message}} or {error:"..."}.
type ChatResponse struct {
	Candidates []Candidate      `json:"candidates,omitempty"`
	Error      *json.RawMessage `json:"error,omitempty"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type ErrorDetail struct {
	Code    int    `json:"code,omitempty"`
	Message string `json:"message"`
	Status  string `json:"status,omitempty"`
}

// UpstreamErrorResponse mirrors the upstream API's error envelope.
type UpstreamErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ToContents converts transcript turns into wire contents, one part per turn.
func ToContents(turns []Turn) []Content {
	out := make([]Content, 0, len(turns))
	for _, t := range turns {
		out = append(out, Content{Role: t.Role, Parts: []Part{{Text: t.Content}}})
	}
	return out
}

// Text joins the text of every part.
func (c Content) Text() string {
	var b strings.Builder
	for _, p := range c.Parts {
		b.WriteString(p.Text)
	}
	return b.String()
}

// AnswerText returns candidates[0].content.parts[0].text, if present.
func (r ChatResponse) AnswerText() (string, bool) {
	if len(r.Candidates) == 0 || len(r.Candidates[0].Content.Parts) == 0 {
		return "", false
	}
	text := r.Candidates[0].Content.Parts[0].Text
	return text, text != ""
}

// UnmarshalJSON reads the reply loosely: any JSON value decodes, and fields
// of an unexpected shape are left empty instead of failing the decode.
func (r *ChatResponse) UnmarshalJSON(data []byte) error {
	*r = ChatResponse{}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		// not an object
		return nil
	}
	if raw, ok := fields["error"]; ok && !falsy(raw) {
		e := raw
		r.Error = &e
	}
	if raw, ok := fields["candidates"]; ok {
		r.Candidates = decodeCandidates(raw)
	}
	return nil
}

func decodeCandidates(raw json.RawMessage) []Candidate {
	var all []Candidate
	if err := json.Unmarshal(raw, &all); err == nil {
		return all
	}
	// Some candidate is malformed; keep the first one if its text is readable.
	var list []json.RawMessage
	if err := json.Unmarshal(raw, &list); err != nil || len(list) == 0 {
		return nil
	}
	var first struct {
		Content json.RawMessage `json:"content"`
	}
	if err := json.Unmarshal(list[0], &first); err != nil {
		return nil
	}
	var content struct {
		Role  json.RawMessage   `json:"role"`
		Parts []json.RawMessage `json:"parts"`
	}
	if err := json.Unmarshal(first.Content, &content); err != nil || len(content.Parts) == 0 {
		return nil
	}
	var part struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(content.Parts[0], &part); err != nil {
		return nil
	}
	var role string
	_ = json.Unmarshal(content.Role, &role)
	return []Candidate{{Content: Content{Role: role, Parts: []Part{part}}}}
}

// falsy reports whether raw is null, false, "" or 0.
func falsy(raw json.RawMessage) bool {
	v := strings.TrimSpace(string(raw))
	switch v {
	case "", "null", "false", `""`:
		return true
	}
	var n float64
	if err := json.Unmarshal([]byte(v), &n); err == nil {
		return n == 0
	}
	return false
}

// ErrorMessage reports whether the reply carries an error envelope and its
// message. A null, false, empty or zero error counts as absent.
func (r ChatResponse) ErrorMessage() (string, bool) {
	if r.Error == nil || falsy(*r.Error) {
		return "", false
	}
	raw := *r.Error
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, true
	}
	var d ErrorDetail
	if err := json.Unmarshal(raw, &d); err == nil {
		return d.Message, true
	}
	return string(raw), true
}
