package main

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/emotion_diary/internal/models"
	"github.com/Skotchmaster/emotion_diary/internal/repo"
	"github.com/Skotchmaster/emotion_diary/pkg/db"
	"github.com/Skotchmaster/emotion_diary/pkg/roles"
	"github.com/Skotchmaster/emotion_diary/pkg/tokens"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestDiaryctl_MigrateSeedGrantToken(t *testing.T) {
	t.Setenv("JWT_SECRET", "diaryctl-test-secret")
	t.Setenv("JWT_ISSUER", "emotion-diary")
	t.Setenv("JWT_AUDIENCE", "emotion-diary-app")
	t.Setenv("KAFKA_BROKERS", "")

	dsn := "sqlite:" + filepath.Join(t.TempDir(), "diary.db")
	common := []string{"--env-file", filepath.Join(t.TempDir(), "missing.env"), "--database-url", dsn}

	out, err := execute(t, append([]string{"migrate"}, common...)...)
	require.NoError(t, err)
	assert.Contains(t, out, "schema is up to date")

	seedFile := filepath.Join("..", "..", "deploy", "seed.yaml")
	out, err = execute(t, append([]string{"seed", "-f", seedFile}, common...)...)
	require.NoError(t, err)
	assert.Contains(t, out, "roles=2")

	ctx := context.Background()
	gdb, err := db.Open(ctx, dsn)
	require.NoError(t, err)
	r := &repo.GormRepo{DB: gdb}
	u := &models.User{Username: "kim", Email: "kim@example.com", PasswordHash: "x"}
	require.NoError(t, r.CreateUser(ctx, u, roles.User))
	require.NoError(t, db.Close(gdb))

	_, err = execute(t, append([]string{"grant", "1", "Admin"}, common...)...)
	require.NoError(t, err)

	out, err = execute(t, append([]string{"token", "1", "--ttl", "5m"}, common...)...)
	require.NoError(t, err)

	v, err := tokens.NewVerifier(tokens.Config{
		Secret:   []byte("diaryctl-test-secret"),
		Issuer:   "emotion-diary",
		Audience: "emotion-diary-app",
		TTL:      time.Minute,
	})
	require.NoError(t, err)
	cs, err := v.Verify(strings.TrimSpace(out), time.Now())
	require.NoError(t, err)
	assert.Equal(t, "1", cs.UserID)
	assert.True(t, cs.HasRole(roles.Admin))

	_, err = execute(t, append([]string{"revoke", "1", "admin"}, common...)...)
	require.NoError(t, err)

	_, err = execute(t, append([]string{"grant", "0", "admin"}, common...)...)
	assert.Error(t, err)
	_, err = execute(t, append([]string{"grant", "1", "wizard"}, common...)...)
	assert.Error(t, err)
	_, err = execute(t, append([]string{"topics"}, common...)...)
	assert.Error(t, err)
}
