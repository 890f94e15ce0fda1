package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "fpstore", cmd.Use)
	assert.Contains(t, cmd.Long, "FPSTORE_DB")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := []string{"list", "get", "count", "add", "remove"}

	for _, cmdName := range commands {
		t.Run(cmdName, func(t *testing.T) {
			subCmd, _, err := cmd.Find([]string{cmdName})
			require.NoError(t, err, "Command %s should exist", cmdName)
			require.NotNil(t, subCmd)
			assert.Equal(t, cmdName, subCmd.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verboseFlag := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verboseFlag)
	assert.Equal(t, "v", verboseFlag.Shorthand)
	assert.Equal(t, "false", verboseFlag.DefValue)

	formatFlag := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, formatFlag)
	assert.Equal(t, "text", formatFlag.DefValue)

	dbFlag := cmd.PersistentFlags().Lookup("db")
	require.NotNil(t, dbFlag)
	// Empty so FPSTORE_DB can fill it in.
	assert.Equal(t, "", dbFlag.DefValue)

	driverFlag := cmd.PersistentFlags().Lookup("driver")
	require.NotNil(t, driverFlag)
	assert.Equal(t, "sqlite3", driverFlag.DefValue)

	policyFlag := cmd.PersistentFlags().Lookup("write-policy")
	require.NotNil(t, policyFlag)
	assert.Equal(t, "single-writer", policyFlag.DefValue)
}

func TestListCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	listCmd, _, err := cmd.Find([]string{"list"})
	require.NoError(t, err)

	assert.NotNil(t, listCmd.Flags().Lookup("location"))
	assert.NotNil(t, listCmd.Flags().Lookup("measurement"))
}

func TestRemoveCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	removeCmd, _, err := cmd.Find([]string{"remove"})
	require.NoError(t, err)

	for _, name := range []string{"fingerprint", "location", "measurement", "all"} {
		flag := removeCmd.Flags().Lookup(name)
		require.NotNil(t, flag, "flag --%s", name)
	}
	assert.Equal(t, "false", removeCmd.Flags().Lookup("all").DefValue)
}

func TestIsValidFormat(t *testing.T) {
	tests := []struct {
		format string
		want   bool
	}{
		{"text", true},
		{"json", true},
		{"yaml", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			assert.Equal(t, tt.want, isValidFormat(tt.format))
		})
	}
}

func TestInvalidFormatRejected(t *testing.T) {
	cmd := NewRootCommand()
	cmd.SetArgs([]string{"count", "--format", "xml", "--db", t.TempDir() + "/x.db"})
	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
