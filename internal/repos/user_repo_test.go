package repos_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"torta/internal/domain"
	"torta/internal/repos"
)

func TestSeededPasswordIsHashed(t *testing.T) {
	db, err := repos.OpenDB(":memory:")
	require.NoError(t, err)

	var hashes []string
	require.NoError(t, db.Select(&hashes, `SELECT password_hash FROM users`))
	require.NotEmpty(t, hashes)
	for _, h := range hashes {
		assert.False(t, strings.Contains(h, repos.DemoPassword), "hash contains plaintext password")
		assert.True(t, strings.HasPrefix(h, "$2"), "unexpected hash format: %s", h)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(h), []byte(repos.DemoPassword)))
	}
}

func TestCreateAndSessions(t *testing.T) {
	db, err := repos.OpenDB(":memory:")
	require.NoError(t, err)
	users := repos.NewUserRepo(db)

	require.NoError(t, users.Create(domain.User{ID: "u-1", Email: "Jane@Example.com", Name: "Jane", Hash: "$2a$x"}))
	assert.ErrorIs(t, users.Create(domain.User{ID: "u-2", Email: "jane@example.com", Name: "Jane", Hash: "$2a$x"}), repos.ErrEmailTaken)

	u, err := users.ByEmail("JANE@example.com")
	require.NoError(t, err)
	assert.Equal(t, "u-1", u.ID)
	assert.Equal(t, "USER", u.Role)

	require.NoError(t, users.BindSession("sid-1", "u-1"))
	su, err := users.SessionUser("sid-1")
	require.NoError(t, err)
	assert.Equal(t, "u-1", su.ID)

	require.NoError(t, users.UnbindSession("sid-1"))
	_, err = users.SessionUser("sid-1")
	assert.Error(t, err)
}
