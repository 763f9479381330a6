package chat

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tanya-chat/internal/types"
)

func TestLoadMessages(t *testing.T) {
	id := LoadMessages("id-ID")
	assert.Equal(t, "id-ID", id.Locale)
	assert.Equal(t, "Hallo!!", id.Greeting)
	assert.Equal(t, "Thinking...", id.Placeholder)
	assert.Equal(t, "Gagal konek ke server.", id.Unreachable)

	en := LoadMessages("en")
	assert.Equal(t, "en-US", en.Locale)

	assert.Equal(t, "en-US", LoadMessages("en_us").Locale)
	assert.Equal(t, "id-ID", LoadMessages("fr-FR").Locale)
	assert.Equal(t, "id-ID", LoadMessages("").Locale)
}

func TestParseCatalogue_Invalid(t *testing.T) {
	_, err := ParseCatalogue([]byte("id-ID: [unterminated"))
	require.Error(t, err)
}

func TestParseOverlapPolicy(t *testing.T) {
	p, err := ParseOverlapPolicy("Reject")
	require.NoError(t, err)
	assert.Equal(t, OverlapReject, p)

	p, err = ParseOverlapPolicy("")
	require.NoError(t, err)
	assert.Equal(t, OverlapAllow, p)

	_, err = ParseOverlapPolicy("queue")
	require.Error(t, err)
}

func TestClassify(t *testing.T) {
	decode := func(s string) *types.ChatResponse {
		var r types.ChatResponse
		require.NoError(t, json.Unmarshal([]byte(s), &r))
		return &r
	}

	cases := []struct {
		name string
		resp *types.ChatResponse
		err  error
		kind ResultKind
		text string
	}{
		{"answer", decode(hiThere), nil, ResultAnswer, "Hi there"},
		{"error object", decode(`{"error":{"code":429,"message":"quota exceeded"}}`), nil, ResultUpstreamError, "quota exceeded"},
		{"error string", decode(`{"error":"boom"}`), nil, ResultUpstreamError, "boom"},
		{"error wins over candidates", decode(`{"error":"boom","candidates":[{"content":{"parts":[{"text":"x"}]}}]}`), nil, ResultUpstreamError, "boom"},
		{"null error ignored", decode(`{"error":null,"candidates":[{"content":{"parts":[{"text":"x"}]}}]}`), nil, ResultAnswer, "x"},
		{"empty text", decode(`{"candidates":[{"content":{"parts":[{"text":""}]}}]}`), nil, ResultBadFormat, ""},
		{"no parts", decode(`{"candidates":[{"content":{}}]}`), nil, ResultBadFormat, ""},
		{"empty object", decode(`{}`), nil, ResultBadFormat, ""},
		{"candidates object", decode(`{"candidates":{}}`), nil, ResultBadFormat, ""},
		{"parts string", decode(`{"candidates":[{"content":{"parts":"oops"}}]}`), nil, ResultBadFormat, ""},
		{"top-level array", decode(`[]`), nil, ResultBadFormat, ""},
		{"false error ignored", decode(`{"error":false}`), nil, ResultBadFormat, ""},
		{"empty error ignored", decode(`{"error":"","candidates":[{"content":{"parts":[{"text":"x"}]}}]}`), nil, ResultAnswer, "x"},
		{"transport", nil, errors.New("refused"), ResultUnreachable, ""},
		{"nil reply", nil, nil, ResultUnreachable, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := Classify(tc.resp, tc.err)
			assert.Equal(t, tc.kind, res.Kind)
			assert.Equal(t, tc.text, res.Text)
		})
	}
}

func TestResultKind_String(t *testing.T) {
	assert.Equal(t, "answer", ResultAnswer.String())
	assert.Equal(t, "unreachable", ResultUnreachable.String())
	assert.Equal(t, "unknown", ResultKind(42).String())
}

func TestLog_FindAndLast(t *testing.T) {
	l := NewLog()
	assert.Equal(t, -1, l.ScrolledTo())
	u := l.Add(SenderUser, "q")
	a := l.Add(SenderAI, "a")
	l.ScrollToEnd()

	assert.Same(t, u, l.Find(u.ID()))
	assert.Nil(t, l.Find("missing"))
	assert.Same(t, a, l.LastFrom(SenderAI))
	assert.Same(t, u, l.LastFrom(SenderUser))
	assert.Equal(t, 1, l.ScrolledTo())
	assert.NotEqual(t, u.ID(), a.ID())
	assert.Empty(t, u.SpeechIcon())
}
