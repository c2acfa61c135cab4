package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/emotion_diary/internal/models"
	"github.com/Skotchmaster/emotion_diary/internal/service"
	"github.com/Skotchmaster/emotion_diary/pkg/roles"
)

func TestSince(t *testing.T) {
	now := time.Date(2025, 3, 31, 12, 0, 0, 0, time.UTC)

	all, err := service.Since(service.PeriodAll, now)
	require.NoError(t, err)
	assert.Nil(t, all)

	year, err := service.Since(service.PeriodYear, now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 31, 12, 0, 0, 0, time.UTC), *year)

	week, err := service.Since(service.PeriodWeek, now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 3, 24, 12, 0, 0, 0, time.UTC), *week)

	_, err = service.Since("decade", now)
	assert.ErrorIs(t, err, service.ErrValidation)
}

func TestChart_TrendAndDonut(t *testing.T) {
	t.Parallel()
	r := newRepo(t)
	ctx := context.Background()
	u := seedUser(t, r, "gina", "password", roles.User)
	other := seedUser(t, r, "hank", "password", roles.User)

	now := time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)
	add := func(userID uint, at time.Time, level int, score float64) {
		require.NoError(t, r.SaveAnalysis(ctx, &models.SentimentAnalysis{
			DiaryID: 1, UserID: userID, Sentiment: "x", Score: score,
			EmotionLevel: level, AnalyzedAt: at,
		}))
	}
	add(u.ID, now.AddDate(0, 0, -1), models.EmotionPositive, 0.9)
	add(u.ID, now.AddDate(0, 0, -3), models.EmotionNegative, 0.2)
	add(u.ID, now.AddDate(0, 0, -2), models.EmotionPositive, 0.7)
	add(u.ID, now.AddDate(0, -2, 0), models.EmotionNegative, 0.1)
	add(other.ID, now.AddDate(0, 0, -1), models.EmotionNegative, 0.3)

	svc := &service.ChartService{Repo: r, Now: func() time.Time { return now }}

	week, err := svc.Trend(ctx, u.ID, service.PeriodWeek)
	require.NoError(t, err)
	require.Len(t, week, 3)
	assert.Equal(t, "2025-06-12", week[0].Date)
	assert.InDelta(t, 0.2, week[0].Intensity, 1e-9)
	assert.Equal(t, "2025-06-14", week[2].Date)

	all, err := svc.Trend(ctx, u.ID, service.PeriodAll)
	require.NoError(t, err)
	assert.Len(t, all, 4)
	assert.Equal(t, "2025-04-15", all[0].Date)

	_, err = svc.Trend(ctx, u.ID, "forever")
	assert.ErrorIs(t, err, service.ErrValidation)

	donut, err := svc.Donut(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), donut.Happy)
	assert.Equal(t, int64(1), donut.Sad)
}
