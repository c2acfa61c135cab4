package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChat(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/chat", r.URL.Path)

		var in chatRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		assert.Equal(t, "gemma3", in.Model)
		assert.False(t, in.Stream)
		if assert.Len(t, in.Messages, 2) {
			assert.Equal(t, "system", in.Messages[0].Role)
			assert.Equal(t, "be kind", in.Messages[0].Content)
			assert.Equal(t, "I feel tired", in.Messages[1].Content)
		}

		_ = json.NewEncoder(w).Encode(chatResponse{Message: Message{Role: "assistant", Content: " rest a bit "}, Done: true})
	}))
	defer srv.Close()

	reply, err := NewClient(srv.URL, "gemma3", time.Second).Chat(context.Background(), "be kind", "I feel tired")
	require.NoError(t, err)
	assert.Equal(t, "rest a bit", reply)
}

func TestChat_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{name: "status", status: http.StatusNotFound, body: `{"error":"model not found"}`},
		{name: "error field", status: http.StatusOK, body: `{"error":"overloaded"}`},
		{name: "empty reply", status: http.StatusOK, body: `{"message":{"role":"assistant","content":"  "}}`, wantErr: ErrEmptyReply},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := NewClient(srv.URL, "gemma3", time.Second).Chat(context.Background(), "s", "u")
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}
