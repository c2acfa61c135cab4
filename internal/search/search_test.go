package search

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/emotion_diary/internal/models"
)

type fakeES struct {
	mu    sync.Mutex
	calls []string
	last  map[string]any
}

func (f *fakeES) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.calls = append(f.calls, r.Method+" "+r.URL.Path)
		body, _ := io.ReadAll(r.Body)
		if len(body) > 0 {
			f.last = map[string]any{}
			_ = json.Unmarshal(body, &f.last)
		}
		f.mu.Unlock()

		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		switch {
		case strings.HasSuffix(r.URL.Path, "/_search"):
			_, _ = w.Write([]byte(`{"hits":{"total":{"value":1},"hits":[{"_source":{"id":3,"user_id":5,"title":"rainy day","content":"sad","tags":["weather"]}}]}}`))
		case r.URL.Path == "/":
			_, _ = w.Write([]byte(`{"version":{"number":"9.0.0"}}`))
		default:
			_, _ = w.Write([]byte(`{"result":"ok"}`))
		}
	})
}

func newTestES(t *testing.T) (*ES, *fakeES) {
	t.Helper()

	fake := &fakeES{}
	srv := httptest.NewServer(fake.handler())
	t.Cleanup(srv.Close)

	client, err := NewClient(Config{URL: srv.URL})
	require.NoError(t, err)
	return NewES(client, "diaries"), fake
}

func TestES_IndexDeleteSearch(t *testing.T) {
	t.Parallel()

	es, fake := newTestES(t)
	ctx := context.Background()

	d := &models.Diary{ID: 3, UserID: 5, Title: "rainy day", Content: "sad", Tags: []models.Tag{{Name: "weather"}}}
	require.NoError(t, es.Index(ctx, d))
	assert.Equal(t, "rainy day", fake.last["title"])
	assert.Equal(t, []any{"weather"}, fake.last["tags"])

	total, docs, err := es.Search(ctx, 5, "rain", 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, docs, 1)
	assert.Equal(t, "rainy day", docs[0].Title)

	query := fake.last["query"].(map[string]any)["bool"].(map[string]any)
	filter := query["filter"].([]any)[0].(map[string]any)["term"].(map[string]any)
	assert.EqualValues(t, 5, filter["user_id"])

	require.NoError(t, es.Delete(ctx, 3))

	fake.mu.Lock()
	defer fake.mu.Unlock()
	assert.Contains(t, fake.calls, "PUT /diaries/_doc/3")
	assert.Contains(t, fake.calls, "DELETE /diaries/_doc/3")
}

func TestNoop(t *testing.T) {
	t.Parallel()

	var idx Indexer = Noop{}
	assert.NoError(t, idx.Index(context.Background(), &models.Diary{}))
	assert.NoError(t, idx.Delete(context.Background(), 1))
	_, _, err := idx.Search(context.Background(), 1, "x", 0, 10)
	assert.ErrorIs(t, err, ErrDisabled)
}
