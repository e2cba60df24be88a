package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBeforeCreate_HashesAndNormalises(t *testing.T) {
	a := &Account{Username: "  Alice ", Password: "p1", Avatar: "https://cdn/x/a.png"}

	require.NoError(t, a.BeforeCreate(nil))

	assert.Equal(t, "alice", a.Username)
	assert.NotEqual(t, "p1", a.Password)
	assert.True(t, a.CheckPassword("p1"))
	assert.False(t, a.CheckPassword("p2"))
}

func TestBeforeCreate_DoesNotRehash(t *testing.T) {
	a := &Account{Username: "bob", Password: "secret", Avatar: "https://cdn/b.png"}
	require.NoError(t, a.BeforeCreate(nil))
	hashed := a.Password

	require.NoError(t, a.BeforeCreate(nil))
	assert.Equal(t, hashed, a.Password)
}

func TestBeforeCreate_RejectsEmptyAvatar(t *testing.T) {
	a := &Account{Username: "bob", Password: "secret", Avatar: "  "}
	assert.ErrorIs(t, a.BeforeCreate(nil), ErrAvatarMissing)
}

func TestView_OmitsSensitiveFields(t *testing.T) {
	a := &Account{
		ID:           7,
		Username:     "alice",
		Email:        "alice@x.com",
		FullName:     "Alice A",
		Avatar:       "https://cdn/x/a.png",
		Password:     "hash",
		RefreshToken: "rt",
		WatchHistory: []string{"v1"},
	}

	raw, err := json.Marshal(a.View())
	require.NoError(t, err)

	var fields map[string]any
	require.NoError(t, json.Unmarshal(raw, &fields))
	for _, k := range []string{"password", "refreshToken", "watchHistory"} {
		assert.NotContains(t, fields, k)
	}
	assert.Equal(t, "alice", fields["username"])
	assert.Equal(t, "", fields["coverImage"])
}
