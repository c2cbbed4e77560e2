package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// run executes leafctl with args against dataDir and returns stdout.
func run(t *testing.T, dataDir, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{"--data", dataDir}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "leafctl", cmd.Use)

	for _, name := range []string{"inspect", "sessions", "users", "seed"} {
		t.Run(name, func(t *testing.T) {
			sub, _, err := cmd.Find([]string{name})
			require.NoError(t, err)
			assert.Equal(t, name, sub.Name())
		})
	}

	format := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, format)
	assert.Equal(t, "text", format.DefValue)
}

func TestInvalidFormat(t *testing.T) {
	_, err := run(t, t.TempDir(), "", "--format", "yaml", "users", "list")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}

func TestUsersAddAndList(t *testing.T) {
	dir := t.TempDir()

	out, err := run(t, dir, "s3cret\n", "--store", "sqlite", "users", "add", "alice", "--password-stdin")
	require.NoError(t, err)
	assert.Contains(t, out, "Created alice")

	_, err = run(t, dir, "other\n", "--store", "sqlite", "users", "add", "ALICE", "--password-stdin")
	require.Error(t, err)

	out, err = run(t, dir, "", "--store", "sqlite", "--format", "json", "users", "list")
	require.NoError(t, err)
	var users []UserInfo
	require.NoError(t, json.Unmarshal([]byte(out), &users))
	require.Len(t, users, 1)
	assert.Equal(t, "alice", users[0].Name)
}

func TestUsersAdd_EmptyPassword(t *testing.T) {
	_, err := run(t, t.TempDir(), "\n", "--store", "sqlite", "users", "add", "alice", "--password-stdin")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestUsersAdd_TerminalPrompt(t *testing.T) {
	origRead, origTerm := readPassword, isTerminal
	t.Cleanup(func() { readPassword, isTerminal = origRead, origTerm })

	isTerminal = func(int) bool { return true }
	answers := []string{"pw1", "pw2"}
	readPassword = func(int) ([]byte, error) {
		next := answers[0]
		answers = answers[1:]
		return []byte(next), nil
	}

	_, err := run(t, t.TempDir(), "", "--store", "sqlite", "users", "add", "alice")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "do not match")
}

func TestSeedAndInspect(t *testing.T) {
	dir := t.TempDir()

	out, err := run(t, dir, "", "--format", "json", "seed", "--users", "2", "--notes", "2")
	require.NoError(t, err)
	var seeded SeedResult
	require.NoError(t, json.Unmarshal([]byte(out), &seeded))
	assert.Equal(t, SeedResult{Users: 2, Notes: 4}, seeded)

	// Seeding again reuses the demo users.
	out, err = run(t, dir, "", "--format", "json", "seed", "--users", "2", "--notes", "1")
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(out), &seeded))
	assert.Equal(t, SeedResult{Users: 0, Notes: 2}, seeded)

	out, err = run(t, dir, "", "--format", "json", "inspect", "--prefix", "note:", "--limit", "0")
	require.NoError(t, err)
	var result InspectResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, 6, result.Counts["note"])
	assert.Empty(t, result.Keys)
	for family := range result.Counts {
		assert.True(t, strings.HasPrefix(family, "note"), family)
	}
}

func TestInspect_RequiresBadger(t *testing.T) {
	_, err := run(t, t.TempDir(), "", "--store", "sqlite", "inspect")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestSessionsPrune(t *testing.T) {
	dir := t.TempDir()

	out, err := run(t, dir, "", "--store", "sqlite", "sessions", "prune")
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted 0 expired session(s)")
}

func TestSessionsRevoke_UnknownUser(t *testing.T) {
	_, err := run(t, t.TempDir(), "", "--store", "sqlite", "sessions", "revoke", "nobody")
	require.Error(t, err)
}

func TestKeyFamily(t *testing.T) {
	tests := []struct{ key, want string }{
		{"note:note-2", "note"},
		{"note:idx:owner:usr-1:note-2", "note:idx:owner"},
		{"user:idx:username:alice", "user:idx:username"},
		{"session:sess-1", "session"},
		{"bare", "bare"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, keyFamily(tt.key), tt.key)
	}
}

func TestGetExitCode(t *testing.T) {
	assert.Equal(t, ExitSuccess, GetExitCode(nil))
	assert.Equal(t, ExitFailure, GetExitCode(errors.New("boom")))
	assert.Equal(t, ExitCommandError, GetExitCode(WrapExitError(ExitCommandError, "open", errors.New("x"))))
}
