package relayclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tanya-chat/internal/types"
)

func TestPost_SendsContents(t *testing.T) {
	var got types.ChatPayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		_ = json.NewDecoder(r.Body).Decode(&got)
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"Hi there"}]}}]}`))
	}))
	defer srv.Close()

	c := NewWithHTTPClient(srv.URL, srv.Client())
	contents := types.ToContents([]types.Turn{{Role: types.RoleUser, Content: "Hello"}})
	resp, err := c.Post(context.Background(), contents)
	require.NoError(t, err)

	assert.Equal(t, contents, got.Contents)
	text, ok := resp.AnswerText()
	assert.True(t, ok)
	assert.Equal(t, "Hi there", text)
}

func TestPost_DecodesErrorStatusBodies(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"connection refused"}`))
	}))
	defer srv.Close()

	resp, err := NewWithHTTPClient(srv.URL, srv.Client()).Post(context.Background(), nil)
	require.NoError(t, err)
	msg, ok := resp.ErrorMessage()
	assert.True(t, ok)
	assert.Equal(t, "connection refused", msg)
}

func TestPost_NonJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
	}))
	defer srv.Close()

	_, err := NewWithHTTPClient(srv.URL, srv.Client()).Post(context.Background(), nil)
	require.ErrorIs(t, err, ErrBadJSON)
}

func TestPost_WrongShapeStillDecodes(t *testing.T) {
	cases := []struct {
		name   string
		body   string
		answer string
		errMsg string
	}{
		{"candidates object", `{"candidates":{}}`, "", ""},
		{"parts string", `{"candidates":[{"content":{"parts":"oops"}}]}`, "", ""},
		{"top-level array", `[]`, "", ""},
		{"top-level string", `"hello"`, "", ""},
		{"text number", `{"candidates":[{"content":{"parts":[{"text":42}]}}]}`, "", ""},
		{"second candidate malformed", `{"candidates":[{"content":{"parts":[{"text":"ok"}]}},{"content":7}]}`, "ok", ""},
		{"error empty string", `{"error":"","candidates":[{"content":{"parts":[{"text":"ok"}]}}]}`, "ok", ""},
		{"error false", `{"error":false}`, "", ""},
		{"error zero", `{"error":0}`, "", ""},
		{"error object", `{"error":{"message":"quota"}}`, "", "quota"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			resp, err := NewWithHTTPClient(srv.URL, srv.Client()).Post(context.Background(), nil)
			require.NoError(t, err)
			require.NotNil(t, resp)

			text, _ := resp.AnswerText()
			assert.Equal(t, tc.answer, text)
			msg, hasErr := resp.ErrorMessage()
			assert.Equal(t, tc.errMsg != "", hasErr)
			assert.Equal(t, tc.errMsg, msg)
		})
	}
}

func TestPost_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := New(url, time.Second).Post(context.Background(), nil)
	require.Error(t, err)
}
