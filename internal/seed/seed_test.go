package seed

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/emotion_diary/internal/repo"
	"github.com/Skotchmaster/emotion_diary/internal/testutil"
)

const sample = `
roles: [User, admin]
permissions:
  user: [diary.write]
  admin: [diary.write, users.manage]
categories: [work, family]
system_tags: [happy, sad]
knowledge:
  - category: sad
    intensity: 0.6
    recommended_action: Take a short walk
    psychological_basis: Behavioural activation
    content_type: article
    content_url: https://example.com/walk
    target_needs: safety
    description: Light exercise lifts mood.
  - category: sad
    intensity: 0.9
    recommended_action: Talk to a friend
`

func TestDecode(t *testing.T) {
	f, err := Decode(strings.NewReader(sample))
	require.NoError(t, err)
	assert.Equal(t, []string{"User", "admin"}, f.Roles)
	require.Len(t, f.Knowledge, 2)
	assert.Equal(t, "Take a short walk", f.Knowledge[0].RecommendedAction)
	assert.InDelta(t, 0.6, f.Knowledge[0].Intensity, 1e-9)

	empty, err := Decode(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, empty.Roles)
}

func TestDecode_Rejects(t *testing.T) {
	cases := map[string]string{
		"unknown role":  "roles: [root]",
		"unknown field": "colours: [red]",
		"perm role":     "permissions:\n  root: [x]",
		"no category":   "knowledge:\n  - intensity: 0.5",
		"intensity":     "knowledge:\n  - category: sad\n    intensity: 3",
	}
	for name, doc := range cases {
		_, err := Decode(strings.NewReader(doc))
		assert.Error(t, err, name)
	}
}

func TestApply_Idempotent(t *testing.T) {
	t.Parallel()
	r := &repo.GormRepo{DB: testutil.InitTestDB(t)}
	ctx := context.Background()

	path := filepath.Join(t.TempDir(), "seed.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o600))
	f, err := Load(path)
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		sum, err := Apply(ctx, r, f)
		require.NoError(t, err)
		assert.Equal(t, Summary{Roles: 2, Permissions: 3, Categories: 2, SystemTags: 2, Knowledge: 2}, sum)
	}

	rs, err := r.ListRoles(ctx)
	require.NoError(t, err)
	assert.Len(t, rs, 2)

	admin, err := r.FindRoleByName(ctx, "ADMIN")
	require.NoError(t, err)
	assert.Len(t, admin.Permissions, 2)

	cats, err := r.ListCategories(ctx)
	require.NoError(t, err)
	assert.Len(t, cats, 2)

	tags, err := r.ListTags(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, tags, 2)

	kb, err := r.ListKnowledge(ctx)
	require.NoError(t, err)
	assert.Len(t, kb, 2)
}
