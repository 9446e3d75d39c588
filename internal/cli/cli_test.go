package cli

import (
	"bytes"
	"strings"
	"testing"

	"actionitems/pkg/identity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestTokenCmd_IssuesVerifiableToken(t *testing.T) {
	t.Setenv("SUPABASE_JWT_SECRET", "cli-secret")

	out, err := run(t, "token", "--user", "user-7", "--ttl", "1h")
	require.NoError(t, err)

	sub, err := identity.Verify("cli-secret", strings.TrimSpace(out))
	require.NoError(t, err)
	assert.Equal(t, "user-7", sub)
}

func TestTokenCmd_RequiresUserAndSecret(t *testing.T) {
	t.Setenv("SUPABASE_JWT_SECRET", "cli-secret")
	_, err := run(t, "token")
	assert.Error(t, err)

	t.Setenv("SUPABASE_JWT_SECRET", "")
	_, err = run(t, "token", "--user", "user-7")
	assert.ErrorIs(t, err, identity.ErrNoSecret)
}

func TestRootCmd_RegistersSubcommands(t *testing.T) {
	cmd := NewRootCmd()
	for _, name := range []string{"serve", "migrate", "token", "tui"} {
		sub, _, err := cmd.Find([]string{name})
		require.NoError(t, err)
		assert.Equal(t, name, sub.Name())
	}
}
