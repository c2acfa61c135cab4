package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Skotchmaster/emotion_diary/internal/clients/sentiment"
	"github.com/Skotchmaster/emotion_diary/internal/events"
	"github.com/Skotchmaster/emotion_diary/internal/models"
	"github.com/Skotchmaster/emotion_diary/internal/repo"
	"github.com/Skotchmaster/emotion_diary/internal/search"
	"github.com/Skotchmaster/emotion_diary/internal/transport"
	"github.com/Skotchmaster/emotion_diary/pkg/logging"
)

const (
	maxTitleLen  = 200
	indexTimeout = 5 * time.Second
)

// Actor is the authenticated caller a diary operation runs on behalf of.
type Actor struct {
	UserID uint
	Admin  bool
}

type SentimentAnalyzer interface {
	Analyze(ctx context.Context, text string) (*sentiment.Result, error)
}

type DiaryService struct {
	Repo      *repo.GormRepo
	Sentiment SentimentAnalyzer
	Theory    *TheoryService
	Indexer   search.Indexer
	Events    events.Publisher
	Now       func() time.Time
}

type DiaryAnalysis struct {
	Analysis *models.SentimentAnalysis `json:"analysis"`
	ABC      string                    `json:"abc,omitempty"`
	Maslow   string                    `json:"maslow,omitempty"`
}

func (s *DiaryService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func (s *DiaryService) Create(ctx context.Context, userID uint, req transport.CreateDiaryRequest) (*models.Diary, error) {
	d := &models.Diary{
		Title:      strings.TrimSpace(req.Title),
		Content:    strings.TrimSpace(req.Content),
		UserID:     userID,
		CategoryID: req.CategoryID,
		Visibility: strings.ToLower(strings.TrimSpace(req.Visibility)),
	}
	if d.Visibility == "" {
		d.Visibility = models.VisibilityPrivate
	}
	if err := s.validate(ctx, d); err != nil {
		return nil, err
	}

	tags, err := s.resolveTags(ctx, userID, req.TagIDs)
	if err != nil {
		return nil, err
	}
	d.Tags = tags

	created, err := s.Repo.CreateDiary(ctx, d)
	if err != nil {
		return nil, err
	}

	s.index(ctx, created)
	e := events.New(events.DiaryCreated, userID)
	e.DiaryID = created.ID
	publish(ctx, s.Events, events.TopicDiaries, e)
	return created, nil
}

func (s *DiaryService) validate(ctx context.Context, d *models.Diary) error {
	if d.Title == "" || len(d.Title) > maxTitleLen {
		return fmt.Errorf("%w: title must be 1-%d characters", ErrValidation, maxTitleLen)
	}
	if d.Content == "" {
		return fmt.Errorf("%w: content is required", ErrValidation)
	}
	if d.Visibility != models.VisibilityPrivate && d.Visibility != models.VisibilityPublic {
		return fmt.Errorf("%w: visibility must be private or public", ErrValidation)
	}
	if d.CategoryID != nil {
		ok, err := s.Repo.CategoryExists(ctx, *d.CategoryID)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w: unknown category %d", ErrValidation, *d.CategoryID)
		}
	}
	return nil
}

// resolveTags loads ids and fails when any of them is not visible to the
// user.
func (s *DiaryService) resolveTags(ctx context.Context, userID uint, ids []uint) ([]models.Tag, error) {
	uniq := make([]uint, 0, len(ids))
	seen := make(map[uint]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		uniq = append(uniq, id)
	}

	tags, err := s.Repo.FindTagsByIDs(ctx, userID, uniq)
	if err != nil {
		return nil, err
	}
	if len(tags) != len(uniq) {
		return nil, fmt.Errorf("%w: unknown tag", ErrValidation)
	}
	return tags, nil
}

// Get returns a diary the actor may read: its own, a public one, or any
// diary for an admin. Anything else looks like a missing diary.
func (s *DiaryService) Get(ctx context.Context, actor Actor, id uint) (*models.Diary, error) {
	d, err := s.Repo.GetDiary(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if d.UserID != actor.UserID && !actor.Admin && d.Visibility != models.VisibilityPublic {
		return nil, ErrNotFound
	}
	return d, nil
}

func (s *DiaryService) owned(ctx context.Context, actor Actor, id uint) (*models.Diary, error) {
	d, err := s.Repo.GetDiary(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if d.UserID != actor.UserID {
		return nil, ErrNotFound
	}
	return d, nil
}

func (s *DiaryService) List(ctx context.Context, userID uint, offset, limit int) (int64, []models.Diary, error) {
	return s.Repo.ListDiariesByUser(ctx, userID, offset, limit)
}

func (s *DiaryService) ListAll(ctx context.Context, offset, limit int) (int64, []models.Diary, error) {
	return s.Repo.ListDiaries(ctx, offset, limit)
}

func (s *DiaryService) Update(ctx context.Context, actor Actor, id uint, req transport.PatchDiaryRequest) (*models.Diary, error) {
	d, err := s.owned(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		d.Title = strings.TrimSpace(*req.Title)
	}
	if req.Content != nil {
		d.Content = strings.TrimSpace(*req.Content)
	}
	if req.CategoryID != nil {
		d.CategoryID = req.CategoryID
	}
	if req.Visibility != nil {
		d.Visibility = strings.ToLower(strings.TrimSpace(*req.Visibility))
	}
	if err := s.validate(ctx, d); err != nil {
		return nil, err
	}

	var tags []models.Tag
	if req.TagIDs != nil {
		if tags, err = s.resolveTags(ctx, actor.UserID, *req.TagIDs); err != nil {
			return nil, err
		}
	}

	updated, err := s.Repo.UpdateDiary(ctx, d, tags)
	if err != nil {
		return nil, err
	}

	s.index(ctx, updated)
	e := events.New(events.DiaryUpdated, actor.UserID)
	e.DiaryID = updated.ID
	publish(ctx, s.Events, events.TopicDiaries, e)
	return updated, nil
}

func (s *DiaryService) Delete(ctx context.Context, actor Actor, id uint) error {
	if _, err := s.owned(ctx, actor, id); err != nil {
		return err
	}
	if err := s.Repo.DeleteDiary(ctx, id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}

	if s.Indexer != nil {
		ictx, cancel := context.WithTimeout(context.WithoutCancel(ctx), indexTimeout)
		defer cancel()
		if err := s.Indexer.Delete(ictx, id); err != nil {
			logging.FromContext(ctx).Warn("unindex_failed", "diary_id", id, "error", err)
		}
	}
	e := events.New(events.DiaryDeleted, actor.UserID)
	e.DiaryID = id
	publish(ctx, s.Events, events.TopicDiaries, e)
	return nil
}

// Analyze scores the diary with the sentiment model and runs the ABC and
// Maslow theories next to it. Only the sentiment result is required; a
// theory that fails leaves its field empty.
func (s *DiaryService) Analyze(ctx context.Context, actor Actor, id uint) (*DiaryAnalysis, error) {
	l := logging.FromContext(ctx).With("svc", "diary.analyze", "diary_id", id)

	d, err := s.owned(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if s.Sentiment == nil {
		return nil, fmt.Errorf("%w: sentiment model is not configured", ErrUnavailable)
	}

	var (
		verdict     *sentiment.Result
		abc, maslow string
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		r, err := s.Sentiment.Analyze(gctx, d.Content)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrUnavailable, err)
		}
		verdict = r
		return nil
	})
	if s.Theory != nil && s.Theory.LLM != nil {
		g.Go(func() error {
			if _, reply, err := s.Theory.Analyze(gctx, TheoryABC, d.Content); err == nil {
				abc = reply
			}
			return nil
		})
		g.Go(func() error {
			if _, reply, err := s.Theory.Analyze(gctx, TheoryMaslow, d.Content); err == nil {
				maslow = reply
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		l.Warn("analyze_failed", "error", err)
		return nil, err
	}

	rec := &models.SentimentAnalysis{
		DiaryID:      d.ID,
		UserID:       d.UserID,
		Sentiment:    verdict.Label(),
		Score:        verdict.Intensity,
		EmotionLevel: verdict.Level,
		AnalyzedAt:   s.now(),
	}
	if err := s.Repo.SaveAnalysis(ctx, rec); err != nil {
		return nil, err
	}

	e := events.New(events.DiaryAnalyzed, d.UserID)
	e.DiaryID = d.ID
	e.Attrs = map[string]any{"sentiment": rec.Sentiment, "score": rec.Score}
	publish(ctx, s.Events, events.TopicDiaries, e)

	return &DiaryAnalysis{Analysis: rec, ABC: abc, Maslow: maslow}, nil
}

func (s *DiaryService) Search(ctx context.Context, userID uint, query string, offset, limit int) (int64, []search.Document, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return 0, nil, fmt.Errorf("%w: query is required", ErrValidation)
	}
	if s.Indexer == nil {
		return 0, nil, fmt.Errorf("%w: %w", ErrUnavailable, search.ErrDisabled)
	}
	total, docs, err := s.Indexer.Search(ctx, userID, query, offset, limit)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return total, docs, nil
}

func (s *DiaryService) index(ctx context.Context, d *models.Diary) {
	if s.Indexer == nil {
		return
	}
	ictx, cancel := context.WithTimeout(context.WithoutCancel(ctx), indexTimeout)
	defer cancel()
	if err := s.Indexer.Index(ictx, d); err != nil {
		logging.FromContext(ctx).Warn("index_failed", "diary_id", d.ID, "error", err)
	}
}
