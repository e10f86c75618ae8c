package cli

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"fitlevel/internal/app"
	"fitlevel/internal/domain"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func useSQLite(t *testing.T) {
	t.Helper()
	t.Setenv("FITLEVEL_DB_DRIVER", "sqlite")
	t.Setenv("FITLEVEL_DB_PATH", filepath.Join(t.TempDir(), "fitlevel.db"))
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	for _, name := range []string{"serve", "finalize", "recompute", "timeline", "simulate", "reset"} {
		t.Run(name, func(t *testing.T) {
			sub, _, err := cmd.Find([]string{name})
			require.NoError(t, err)
			assert.Equal(t, name, sub.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verbose := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verbose)
	assert.Equal(t, "v", verbose.Shorthand)

	format := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, format)
	assert.Equal(t, "text", format.DefValue)

	require.NotNil(t, cmd.PersistentFlags().Lookup("config"))
}

func TestInvalidFormat(t *testing.T) {
	_, err := execute(t, "simulate", "testdata/simulate.yaml", "--format", "xml")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestSimulateGolden(t *testing.T) {
	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)

	out, err := execute(t, "simulate", "testdata/simulate.yaml")
	require.NoError(t, err)
	g.Assert(t, "simulate_text", []byte(out))

	out, err = execute(t, "simulate", "testdata/simulate.yaml", "--format", "json")
	require.NoError(t, err)
	g.Assert(t, "simulate_json", []byte(out))
}

func TestSimulateRejectsBadFiles(t *testing.T) {
	_, err := execute(t, "simulate", "testdata/unordered.yaml")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	_, err = execute(t, "simulate", "testdata/missing.yaml")
	require.Error(t, err)
}

func TestFinalizeMemoryStore(t *testing.T) {
	t.Setenv("FITLEVEL_DB_DRIVER", "memory")

	out, err := execute(t, "finalize", "--today", "2026-03-10", "--format", "json")
	require.NoError(t, err)

	var resp struct {
		Status string             `json:"status"`
		Data   app.FinalizeResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.False(t, resp.Data.AnchorFound)
	require.Len(t, resp.Data.Finalized, app.LookbackDays)
	assert.Equal(t, "2026-03-09", resp.Data.Finalized[app.LookbackDays-1].Date)
}

func TestFinalizeThenTimelineSQLite(t *testing.T) {
	useSQLite(t)

	out, err := execute(t, "finalize", "--today", "2026-03-10")
	require.NoError(t, err)
	assert.Contains(t, out, "finalized: 30 day(s)")

	// second pass finds yesterday committed
	out, err = execute(t, "finalize", "--today", "2026-03-10")
	require.NoError(t, err)
	assert.Contains(t, out, "anchor: level 0")
	assert.Contains(t, out, "finalized: 0 day(s)")

	out, err = execute(t, "timeline", "--from", "2026-03-08", "--to", "2026-03-10", "--format", "json")
	require.NoError(t, err)
	var resp struct {
		Data []domain.TimelineEntry `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, []domain.TimelineEntry{{Date: "2026-03-08", Level: 0}, {Date: "2026-03-09", Level: 0}}, resp.Data)

	out, err = execute(t, "recompute", "--from", "2026-03-09", "--today", "2026-03-10")
	require.NoError(t, err)
	assert.Contains(t, out, "2026-03-10")

	_, err = execute(t, "recompute", "--from", "2026-03-11", "--today", "2026-03-10")
	require.Error(t, err)
	assert.ErrorIs(t, err, app.ErrFutureDate)
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	_, err = execute(t, "timeline", "--from", "yesterday")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestResetRequiresConfirmation(t *testing.T) {
	useSQLite(t)

	_, err := execute(t, "reset")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	out, err := execute(t, "reset", "--yes")
	require.NoError(t, err)
	assert.Contains(t, out, "deleted")
}

func TestInvalidConfig(t *testing.T) {
	t.Setenv("FITLEVEL_DB_DRIVER", "oracle")

	_, err := execute(t, "finalize")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
