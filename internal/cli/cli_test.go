package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/five82/checklist/internal/app"
	"github.com/five82/checklist/internal/config"
	"github.com/five82/checklist/internal/logging"
	"github.com/five82/checklist/internal/mutation"
	"github.com/five82/checklist/internal/session"
	"github.com/five82/checklist/internal/testutil"
)

type harness struct {
	svc         *testutil.FakeService
	stdout      bytes.Buffer
	stderr      bytes.Buffer
	interactive bool
	answer      bool
	asked       []string
	appErr      error
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	h := &harness{svc: testutil.NewFakeService()}
	h.svc.Seed("buy milk", false)
	h.svc.Seed("walk dog", true)
	h.svc.Seed("call mom", false)
	return h
}

func (h *harness) run(args ...string) int {
	env := Env{
		Stdout:      &h.stdout,
		Stderr:      &h.stderr,
		Interactive: func() bool { return h.interactive },
		Confirm: func(title string) (bool, error) {
			h.asked = append(h.asked, title)
			return h.answer, nil
		},
		NewApp: func(app.Options) (*app.App, error) {
			if h.appErr != nil {
				return nil, h.appErr
			}
			return app.Assemble(config.Default(), h.svc, nil), nil
		},
	}
	return Execute(context.Background(), env, args)
}

func TestList(t *testing.T) {
	h := newHarness(t)

	require.Equal(t, ExitOK, h.run("ls"))
	assert.Equal(t, "  1. [ ] buy milk\n  2. [x] walk dog\n  3. [ ] call mom\n", h.stdout.String())
}

func TestList_Grouped(t *testing.T) {
	h := newHarness(t)

	require.Equal(t, ExitOK, h.run("ls", "--group"))
	want := "Pending (2)\n  1. [ ] buy milk\n  3. [ ] call mom\n\nDone (1)\n  2. [x] walk dog\n"
	assert.Equal(t, want, h.stdout.String())
}

func TestList_Empty(t *testing.T) {
	h := newHarness(t)
	for _, it := range h.svc.Items() {
		h.svc.Remove(it.ID)
	}

	require.Equal(t, ExitOK, h.run("ls"))
	assert.Equal(t, "No items.\n", h.stdout.String())
}

func TestRoot_NonInteractivePrintsList(t *testing.T) {
	h := newHarness(t)

	require.Equal(t, ExitOK, h.run())
	assert.Contains(t, h.stdout.String(), "buy milk")
}

func TestList_FetchFailure(t *testing.T) {
	h := newHarness(t)
	h.svc.FetchAllErr = errors.New("connection refused")

	assert.Equal(t, ExitBackend, h.run("ls"))
	assert.Contains(t, h.stderr.String(), "connection refused")
}

func TestConfigError(t *testing.T) {
	h := newHarness(t)
	h.appErr = fmt.Errorf("%w: invalid config", app.ErrConfig)

	assert.Equal(t, ExitConfig, h.run("ls"))
	assert.Zero(t, h.svc.Calls().Total())
}

func TestAdd(t *testing.T) {
	h := newHarness(t)

	require.Equal(t, ExitOK, h.run("add", "feed", "the", "cat"))
	assert.Equal(t, "Added: feed the cat\n", h.stdout.String())

	items := h.svc.Items()
	require.Len(t, items, 4)
	assert.Equal(t, "feed the cat", items[3].Text)
}

func TestAdd_Blank(t *testing.T) {
	h := newHarness(t)

	assert.Equal(t, ExitUser, h.run("add", "   "))
	assert.Zero(t, h.svc.Calls().Create)
}

func TestAdd_Failure(t *testing.T) {
	h := newHarness(t)
	h.svc.CreateErr = errors.New("permission denied")

	assert.Equal(t, ExitBackend, h.run("add", "x"))
	assert.Len(t, h.svc.Items(), 3)
}

func TestDone(t *testing.T) {
	h := newHarness(t)

	require.Equal(t, ExitOK, h.run("done", "1"))
	assert.Equal(t, "Marked done: buy milk\n", h.stdout.String())
	assert.True(t, h.svc.Items()[0].Done)

	h.stdout.Reset()
	require.Equal(t, ExitOK, h.run("done", "2"))
	assert.Equal(t, "Marked pending: walk dog\n", h.stdout.String())
	assert.False(t, h.svc.Items()[1].Done)
}

func TestDone_BadIndex(t *testing.T) {
	for _, arg := range []string{"0", "-1", "abc", "9"} {
		t.Run(arg, func(t *testing.T) {
			h := newHarness(t)
			assert.Equal(t, ExitUser, h.run("done", arg))
			assert.Zero(t, h.svc.Calls().Update)
		})
	}
}

func TestDone_Failure(t *testing.T) {
	h := newHarness(t)
	h.svc.UpdateErr = errors.New("boom")

	assert.Equal(t, ExitBackend, h.run("done", "1"))
	assert.False(t, h.svc.Items()[0].Done)
}

func TestRemove_Yes(t *testing.T) {
	h := newHarness(t)

	require.Equal(t, ExitOK, h.run("rm", "2", "--yes"))
	assert.Equal(t, "Deleted: walk dog\n", h.stdout.String())

	items := h.svc.Items()
	require.Len(t, items, 2)
	assert.Equal(t, "buy milk", items[0].Text)
	assert.Equal(t, "call mom", items[1].Text)
	assert.Empty(t, h.asked)
}

func TestRemove_NonInteractiveNeedsYes(t *testing.T) {
	h := newHarness(t)

	assert.Equal(t, ExitUser, h.run("rm", "1"))
	assert.Zero(t, h.svc.Calls().Total())
	assert.Len(t, h.svc.Items(), 3)
}

func TestRemove_Declined(t *testing.T) {
	h := newHarness(t)
	h.interactive = true
	h.answer = false

	require.Equal(t, ExitOK, h.run("rm", "1"))
	assert.Equal(t, "Kept: buy milk\n", h.stdout.String())
	assert.Equal(t, []string{`Delete "buy milk"?`}, h.asked)
	assert.Zero(t, h.svc.Calls().Delete)
	assert.Len(t, h.svc.Items(), 3)
}

func TestRemove_Confirmed(t *testing.T) {
	h := newHarness(t)
	h.interactive = true
	h.answer = true

	require.Equal(t, ExitOK, h.run("rm", "3"))
	assert.Equal(t, "Deleted: call mom\n", h.stdout.String())
	assert.Len(t, h.svc.Items(), 2)
}

func TestLog(t *testing.T) {
	h := newHarness(t)
	logDir := t.TempDir()
	cfgPath := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("log_dir = \""+logDir+"\"\n"), 0o644))

	lines := `{"level":"INFO","msg":"session start"}` + "\n" + `{"level":"WARN","msg":"poll failed","failures":2}` + "\n"
	require.NoError(t, os.WriteFile(logging.Path(logDir), []byte(lines), 0o644))

	require.Equal(t, ExitOK, h.run("log", "-n", "1", "--config", cfgPath))
	assert.Equal(t, "WARN  poll failed failures=2\n", h.stdout.String())
}

func TestLog_Missing(t *testing.T) {
	h := newHarness(t)
	cfgPath := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("log_dir = \""+t.TempDir()+"\"\n"), 0o644))

	require.Equal(t, ExitOK, h.run("log", "--config", cfgPath))
	assert.Empty(t, h.stdout.String())
	assert.Contains(t, h.stderr.String(), "no log entries")
}

func TestUnknownCommand(t *testing.T) {
	h := newHarness(t)
	assert.Equal(t, ExitUser, h.run("frobnicate"))
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{nil, ExitOK},
		{ErrUsage, ExitUser},
		{errors.New("other"), ExitUser},
		{fmt.Errorf("%w: x", app.ErrConfig), ExitConfig},
		{fmt.Errorf("%w: x", session.ErrFetch), ExitBackend},
		{fmt.Errorf("%w: x", mutation.ErrMutation), ExitBackend},
		{mutation.ErrBlankText, ExitUser},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ExitCode(tt.err), "ExitCode(%v)", tt.err)
	}
}
