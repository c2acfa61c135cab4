package repo_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/emotion_diary/internal/models"
	"github.com/Skotchmaster/emotion_diary/internal/repo"
	"github.com/Skotchmaster/emotion_diary/internal/testutil"
	"github.com/Skotchmaster/emotion_diary/pkg/roles"
)

func newRepo(t *testing.T) *repo.GormRepo {
	t.Helper()
	return &repo.GormRepo{DB: testutil.InitTestDB(t)}
}

func createUser(t *testing.T, r *repo.GormRepo, name string, rs ...roles.Role) *models.User {
	t.Helper()
	u := &models.User{Username: name, Email: name + "@example.com", PasswordHash: "x"}
	require.NoError(t, r.CreateUser(context.Background(), u, rs...))
	return u
}

func TestCreateUser_AndFind(t *testing.T) {
	t.Parallel()
	r := newRepo(t)
	ctx := context.Background()

	u := createUser(t, r, "alice", "User", roles.Admin)
	require.NotZero(t, u.ID)

	got, err := r.FindUserByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Username)
	assert.ElementsMatch(t, []roles.Role{roles.User, roles.Admin}, got.RoleNames())
	assert.True(t, got.HasRole("ADMIN"))

	byEmail, err := r.FindUserByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, byEmail.ID)

	byName, err := r.FindUserByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, u.ID, byName.ID)

	_, err = r.FindUserByID(ctx, u.ID+100)
	assert.ErrorIs(t, err, repo.ErrNotFound)
}

func TestCreateUser_Duplicate(t *testing.T) {
	t.Parallel()
	r := newRepo(t)
	ctx := context.Background()

	createUser(t, r, "bob", roles.User)

	dupEmail := &models.User{Username: "bobby", Email: "bob@example.com", PasswordHash: "x"}
	assert.ErrorIs(t, r.CreateUser(ctx, dupEmail, roles.User), repo.ErrAlreadyExists)

	dupName := &models.User{Username: "bob", Email: "other@example.com", PasswordHash: "x"}
	assert.ErrorIs(t, r.CreateUser(ctx, dupName, roles.User), repo.ErrAlreadyExists)
}

func TestAssignRevokeRole(t *testing.T) {
	t.Parallel()
	r := newRepo(t)
	ctx := context.Background()

	u := createUser(t, r, "carol", roles.User)

	got, err := r.AssignRole(ctx, u.ID, "Admin")
	require.NoError(t, err)
	assert.True(t, got.HasRole(roles.Admin))

	got, err = r.AssignRole(ctx, u.ID, roles.Admin)
	require.NoError(t, err)
	assert.Len(t, got.Roles, 2)

	got, err = r.RevokeRole(ctx, u.ID, roles.Admin)
	require.NoError(t, err)
	assert.Equal(t, []roles.Role{roles.User}, got.RoleNames())

	_, err = r.AssignRole(ctx, 999, roles.Admin)
	assert.ErrorIs(t, err, repo.ErrNotFound)

	all, err := r.ListRoles(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestListUsers_Paginates(t *testing.T) {
	t.Parallel()
	r := newRepo(t)

	for _, n := range []string{"u1", "u2", "u3"} {
		createUser(t, r, n, roles.User)
	}
	total, items, err := r.ListUsers(context.Background(), 1, 1)
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	require.Len(t, items, 1)
	assert.Equal(t, "u2", items[0].Username)
}

func TestDiaryLifecycle(t *testing.T) {
	t.Parallel()
	r := newRepo(t)
	ctx := context.Background()

	u := createUser(t, r, "dave", roles.User)
	sys, err := r.CreateTag(ctx, &models.Tag{Name: "work", Type: models.TagTypeSystem})
	require.NoError(t, err)
	own, err := r.CreateTag(ctx, &models.Tag{Name: "family", Type: models.TagTypeUser, UserID: &u.ID})
	require.NoError(t, err)

	d, err := r.CreateDiary(ctx, &models.Diary{
		Title: "day one", Content: "fine", UserID: u.ID,
		Visibility: models.VisibilityPrivate, Tags: []models.Tag{*sys},
	})
	require.NoError(t, err)

	got, err := r.GetDiary(ctx, d.ID)
	require.NoError(t, err)
	require.Len(t, got.Tags, 1)
	assert.Equal(t, "work", got.Tags[0].Name)

	got.Title = "day one (edited)"
	updated, err := r.UpdateDiary(ctx, got, []models.Tag{*own})
	require.NoError(t, err)
	assert.Equal(t, "day one (edited)", updated.Title)
	require.Len(t, updated.Tags, 1)
	assert.Equal(t, "family", updated.Tags[0].Name)

	total, list, err := r.ListDiariesByUser(ctx, u.ID, 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Len(t, list, 1)

	require.NoError(t, r.DeleteDiary(ctx, d.ID))
	_, err = r.GetDiary(ctx, d.ID)
	assert.ErrorIs(t, err, repo.ErrNotFound)
	assert.ErrorIs(t, r.DeleteDiary(ctx, d.ID), repo.ErrNotFound)
}

func TestTags_VisibilityAndDelete(t *testing.T) {
	t.Parallel()
	r := newRepo(t)
	ctx := context.Background()

	a := createUser(t, r, "erin", roles.User)
	b := createUser(t, r, "frank", roles.User)

	sys, err := r.CreateTag(ctx, &models.Tag{Name: "health", Type: models.TagTypeSystem})
	require.NoError(t, err)
	mine, err := r.CreateTag(ctx, &models.Tag{Name: "garden", Type: models.TagTypeUser, UserID: &a.ID})
	require.NoError(t, err)
	_, err = r.CreateTag(ctx, &models.Tag{Name: "garden", Type: models.TagTypeUser, UserID: &a.ID})
	assert.ErrorIs(t, err, repo.ErrAlreadyExists)

	forB, err := r.ListTags(ctx, b.ID)
	require.NoError(t, err)
	require.Len(t, forB, 1)
	assert.Equal(t, sys.ID, forB[0].ID)

	visible, err := r.FindTagsByIDs(ctx, b.ID, []uint{sys.ID, mine.ID})
	require.NoError(t, err)
	assert.Len(t, visible, 1)

	assert.ErrorIs(t, r.DeleteTag(ctx, b.ID, mine.ID), repo.ErrNotFound)
	assert.ErrorIs(t, r.DeleteTag(ctx, a.ID, sys.ID), repo.ErrNotFound)
	require.NoError(t, r.DeleteTag(ctx, a.ID, mine.ID))
}

func TestDeleteTag_DetachesFromDiaries(t *testing.T) {
	t.Parallel()
	r := newRepo(t)
	ctx := context.Background()

	u := createUser(t, r, "gina", roles.User)
	tag, err := r.CreateTag(ctx, &models.Tag{Name: "travel", Type: models.TagTypeUser, UserID: &u.ID})
	require.NoError(t, err)
	keep, err := r.CreateTag(ctx, &models.Tag{Name: "rest", Type: models.TagTypeUser, UserID: &u.ID})
	require.NoError(t, err)

	live, err := r.CreateDiary(ctx, &models.Diary{
		Title: "trip", Content: "train", UserID: u.ID,
		Visibility: models.VisibilityPrivate, Tags: []models.Tag{*tag, *keep},
	})
	require.NoError(t, err)
	gone, err := r.CreateDiary(ctx, &models.Diary{
		Title: "old trip", Content: "bus", UserID: u.ID,
		Visibility: models.VisibilityPrivate, Tags: []models.Tag{*tag},
	})
	require.NoError(t, err)
	require.NoError(t, r.DeleteDiary(ctx, gone.ID))

	require.NoError(t, r.DeleteTag(ctx, u.ID, tag.ID))

	got, err := r.GetDiary(ctx, live.ID)
	require.NoError(t, err)
	require.Len(t, got.Tags, 1)
	assert.Equal(t, "rest", got.Tags[0].Name)

	var links int64
	require.NoError(t, r.DB.Table("diary_tags").Where("tag_id = ?", tag.ID).Count(&links).Error)
	assert.Zero(t, links)
	assert.ErrorIs(t, r.DeleteTag(ctx, u.ID, tag.ID), repo.ErrNotFound)
}

func TestTrendAndCountByLevel(t *testing.T) {
	t.Parallel()
	r := newRepo(t)
	ctx := context.Background()

	now := time.Now().UTC()
	records := []models.SentimentAnalysis{
		{DiaryID: 1, UserID: 1, Sentiment: "positive", Score: 0.9, EmotionLevel: 1, AnalyzedAt: now.AddDate(0, 0, -1)},
		{DiaryID: 2, UserID: 1, Sentiment: "negative", Score: 0.2, EmotionLevel: 0, AnalyzedAt: now.AddDate(0, 0, -3)},
		{DiaryID: 3, UserID: 1, Sentiment: "positive", Score: 0.7, EmotionLevel: 1, AnalyzedAt: now.AddDate(0, 0, -30)},
		{DiaryID: 4, UserID: 2, Sentiment: "negative", Score: 0.1, EmotionLevel: 0, AnalyzedAt: now.AddDate(0, 0, -1)},
	}
	for i := range records {
		require.NoError(t, r.SaveAnalysis(ctx, &records[i]))
	}

	all, err := r.Trend(ctx, 1, nil)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.EqualValues(t, 3, all[0].DiaryID)
	assert.EqualValues(t, 1, all[2].DiaryID)

	since := now.AddDate(0, 0, -7)
	week, err := r.Trend(ctx, 1, &since)
	require.NoError(t, err)
	assert.Len(t, week, 2)

	counts, err := r.CountByLevel(ctx, 1, since)
	require.NoError(t, err)
	assert.ElementsMatch(t, []repo.LevelCount{{EmotionLevel: 0, N: 1}, {EmotionLevel: 1, N: 1}}, counts)

	latest, err := r.LatestAnalysisForDiary(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, "negative", latest.Sentiment)
}

func TestKnowledge_RecommendAndUpsert(t *testing.T) {
	t.Parallel()
	r := newRepo(t)
	ctx := context.Background()

	entries := []models.EmotionKnowledge{
		{Category: "sadness", Intensity: 3, RecommendedAction: "walk"},
		{Category: "sadness", Intensity: 5, RecommendedAction: "call a friend"},
		{Category: "sadness", Intensity: 7, RecommendedAction: "journal"},
		{Category: "sadness", Intensity: 9, RecommendedAction: "see a therapist"},
		{Category: "anger", Intensity: 8, RecommendedAction: "breathe"},
	}
	for i := range entries {
		require.NoError(t, r.UpsertKnowledge(ctx, &entries[i]))
	}

	got, err := r.Recommend(ctx, "sadness", 4, 3)
	require.NoError(t, err)
	require.Len(t, got, 3)
	for _, k := range got {
		assert.Equal(t, "sadness", k.Category)
		assert.GreaterOrEqual(t, k.Intensity, 4.0)
	}

	again := models.EmotionKnowledge{Category: "anger", Intensity: 6, RecommendedAction: "breathe", Description: "slow"}
	require.NoError(t, r.UpsertKnowledge(ctx, &again))

	all, err := r.ListKnowledge(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 5)
}

func TestCategories(t *testing.T) {
	t.Parallel()
	r := newRepo(t)
	ctx := context.Background()

	require.NoError(t, r.EnsureCategories(ctx, "daily", "dream", "daily"))
	cats, err := r.ListCategories(ctx)
	require.NoError(t, err)
	require.Len(t, cats, 2)

	ok, err := r.CategoryExists(ctx, cats[0].ID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = r.CategoryExists(ctx, 999)
	require.NoError(t, err)
	assert.False(t, ok)
}
