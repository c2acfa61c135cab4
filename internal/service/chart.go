package service

import (
	"context"
	"fmt"
	"time"

	"github.com/Skotchmaster/emotion_diary/internal/models"
	"github.com/Skotchmaster/emotion_diary/internal/repo"
	"github.com/Skotchmaster/emotion_diary/internal/transport"
)

const (
	PeriodAll   = "all"
	PeriodYear  = "year"
	PeriodMonth = "month"
	PeriodWeek  = "week"
)

const donutWindow = 7 * 24 * time.Hour

type ChartService struct {
	Repo *repo.GormRepo
	Now  func() time.Time
}

func (s *ChartService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

// Since returns the lower bound for period, nil meaning everything.
func Since(period string, now time.Time) (*time.Time, error) {
	var t time.Time
	switch period {
	case PeriodAll:
		return nil, nil
	case PeriodYear:
		t = now.AddDate(-1, 0, 0)
	case PeriodMonth:
		t = now.AddDate(0, -1, 0)
	case PeriodWeek:
		t = now.AddDate(0, 0, -7)
	default:
		return nil, fmt.Errorf("%w: unknown period %q", ErrValidation, period)
	}
	return &t, nil
}

// Trend lists the user's sentiment scores in time order.
func (s *ChartService) Trend(ctx context.Context, userID uint, period string) ([]transport.ChartPoint, error) {
	since, err := Since(period, s.now())
	if err != nil {
		return nil, err
	}

	rows, err := s.Repo.Trend(ctx, userID, since)
	if err != nil {
		return nil, err
	}
	out := make([]transport.ChartPoint, 0, len(rows))
	for _, r := range rows {
		out = append(out, transport.ChartPoint{
			Date:      r.AnalyzedAt.UTC().Format(time.DateOnly),
			Intensity: r.Score,
		})
	}
	return out, nil
}

// Donut counts positive and negative analyses over the last seven days.
func (s *ChartService) Donut(ctx context.Context, userID uint) (transport.Donut, error) {
	rows, err := s.Repo.CountByLevel(ctx, userID, s.now().Add(-donutWindow))
	if err != nil {
		return transport.Donut{}, err
	}
	var out transport.Donut
	for _, r := range rows {
		switch r.EmotionLevel {
		case models.EmotionPositive:
			out.Happy += r.N
		case models.EmotionNegative:
			out.Sad += r.N
		}
	}
	return out, nil
}
