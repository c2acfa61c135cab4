package search

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/elastic/go-elasticsearch/v9"

	"github.com/Skotchmaster/emotion_diary/internal/models"
)

var ErrDisabled = errors.New("search is not configured")

type Document struct {
	ID        uint      `json:"id"`
	UserID    uint      `json:"user_id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Tags      []string  `json:"tags"`
	CreatedAt time.Time `json:"created_at"`
}

func FromDiary(d *models.Diary) Document {
	tags := make([]string, 0, len(d.Tags))
	for _, t := range d.Tags {
		tags = append(tags, t.Name)
	}
	return Document{
		ID:        d.ID,
		UserID:    d.UserID,
		Title:     d.Title,
		Content:   d.Content,
		Tags:      tags,
		CreatedAt: d.CreatedAt,
	}
}

type Indexer interface {
	Index(ctx context.Context, d *models.Diary) error
	Delete(ctx context.Context, id uint) error
	Search(ctx context.Context, userID uint, query string, from, size int) (int64, []Document, error)
}

type Config struct {
	URL      string
	Username string
	Password string
	Index    string
}

func NewClient(cfg Config) (*elasticsearch.Client, error) {
	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{cfg.URL},
		Username:  cfg.Username,
		Password:  cfg.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("create elasticsearch client: %w", err)
	}

	res, err := client.Info()
	if err != nil {
		return nil, fmt.Errorf("elasticsearch info: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		body, _ := io.ReadAll(res.Body)
		return nil, fmt.Errorf("elasticsearch info: %s: %s", res.Status(), body)
	}
	return client, nil
}

type ES struct {
	client *elasticsearch.Client
	index  string
}

func NewES(client *elasticsearch.Client, index string) *ES {
	return &ES{client: client, index: index}
}

func (s *ES) Index(ctx context.Context, d *models.Diary) error {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(FromDiary(d)); err != nil {
		return fmt.Errorf("encode document: %w", err)
	}

	res, err := s.client.Index(s.index, &buf,
		s.client.Index.WithContext(ctx),
		s.client.Index.WithDocumentID(strconv.FormatUint(uint64(d.ID), 10)),
	)
	if err != nil {
		return fmt.Errorf("index diary %d: %w", d.ID, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("index diary %d: %s", d.ID, res.Status())
	}
	return nil
}

func (s *ES) Delete(ctx context.Context, id uint) error {
	res, err := s.client.Delete(s.index, strconv.FormatUint(uint64(id), 10), s.client.Delete.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("delete diary %d: %w", id, err)
	}
	defer res.Body.Close()
	if res.IsError() && res.StatusCode != 404 {
		return fmt.Errorf("delete diary %d: %s", id, res.Status())
	}
	return nil
}

// Search runs a fuzzy multi-field match restricted to the user's diaries.
func (s *ES) Search(ctx context.Context, userID uint, query string, from, size int) (int64, []Document, error) {
	body := map[string]any{
		"query": map[string]any{
			"bool": map[string]any{
				"filter": []any{
					map[string]any{"term": map[string]any{"user_id": userID}},
				},
				"must": []any{
					map[string]any{
						"multi_match": map[string]any{
							"query":     query,
							"fields":    []string{"title^2", "content", "tags"},
							"fuzziness": "AUTO",
						},
					},
				},
			},
		},
		"from": from,
		"size": size,
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return 0, nil, fmt.Errorf("encode query: %w", err)
	}

	res, err := s.client.Search(
		s.client.Search.WithContext(ctx),
		s.client.Search.WithIndex(s.index),
		s.client.Search.WithBody(&buf),
	)
	if err != nil {
		return 0, nil, fmt.Errorf("search: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return 0, nil, fmt.Errorf("search: %s", res.Status())
	}

	var r struct {
		Hits struct {
			Total struct{ Value int64 } `json:"total"`
			Hits  []struct {
				Source Document `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return 0, nil, fmt.Errorf("decode search response: %w", err)
	}

	docs := make([]Document, len(r.Hits.Hits))
	for i, hit := range r.Hits.Hits {
		docs[i] = hit.Source
	}
	return r.Hits.Total.Value, docs, nil
}

type Noop struct{}

func (Noop) Index(context.Context, *models.Diary) error { return nil }
func (Noop) Delete(context.Context, uint) error          { return nil }
func (Noop) Search(context.Context, uint, string, int, int) (int64, []Document, error) {
	return 0, nil, ErrDisabled
}
