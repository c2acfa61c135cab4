package roles

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want Role
	}{
		{in: "admin", want: Admin},
		{in: "Admin", want: Admin},
		{in: "  USER ", want: User},
		{in: "", want: ""},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}

func TestNormalizeAll_DedupKeepsOrder(t *testing.T) {
	t.Parallel()

	got := NormalizeAll([]string{"Admin", "user", " ", "ADMIN", "editor"})
	assert.Equal(t, []Role{Admin, User, Role("editor")}, got)
	assert.Nil(t, NormalizeAll(nil))
}

func TestKnown(t *testing.T) {
	t.Parallel()

	assert.True(t, Known(User))
	assert.True(t, Known(Admin))
	assert.False(t, Known(Role("editor")))
	assert.False(t, Known(Role("Admin")))
}
