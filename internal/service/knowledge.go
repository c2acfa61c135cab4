package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/Skotchmaster/emotion_diary/internal/models"
	"github.com/Skotchmaster/emotion_diary/internal/repo"
)

const (
	knowledgeTTL     = 5 * time.Minute
	knowledgeListKey = "knowledge:list"
	recommendLimit   = 3
)

type KnowledgeService struct {
	Repo  *repo.GormRepo
	cache *gocache.Cache
}

func NewKnowledgeService(r *repo.GormRepo) *KnowledgeService {
	return &KnowledgeService{Repo: r, cache: gocache.New(knowledgeTTL, 2*knowledgeTTL)}
}

// List returns the whole knowledge base. It changes only on seeding, so it
// is served from memory for a few minutes.
func (s *KnowledgeService) List(ctx context.Context) ([]models.EmotionKnowledge, error) {
	if s.cache != nil {
		if v, ok := s.cache.Get(knowledgeListKey); ok {
			return v.([]models.EmotionKnowledge), nil
		}
	}
	items, err := s.Repo.ListKnowledge(ctx)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		s.cache.SetDefault(knowledgeListKey, items)
	}
	return items, nil
}

func (s *KnowledgeService) Recommend(ctx context.Context, category string, intensity float64) ([]models.EmotionKnowledge, error) {
	category = strings.TrimSpace(category)
	if category == "" {
		return nil, fmt.Errorf("%w: category is required", ErrValidation)
	}
	if intensity < 0 || intensity > 1 {
		return nil, fmt.Errorf("%w: intensity must be within [0, 1]", ErrValidation)
	}
	return s.Repo.Recommend(ctx, category, intensity, recommendLimit)
}

// Invalidate drops cached entries after the knowledge base is reseeded.
func (s *KnowledgeService) Invalidate() {
	if s.cache != nil {
		s.cache.Flush()
	}
}
