package launcher

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jongio/pyhost/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock(ts int64) func() time.Time {
	return func() time.Time { return time.Unix(ts, 0) }
}

func waitExit(t *testing.T, l *Launched) {
	t.Helper()
	select {
	case <-l.Process.Done():
	case <-time.After(10 * time.Second):
		_ = l.Process.Terminate()
		t.Fatalf("process %d did not exit", l.Pid())
	}
}

func TestStartRoleWritesFixedLogs(t *testing.T) {
	py := testutil.FakeInterpreter(t, `echo "out $*"; echo "enc $PYTHONIOENCODING"; echo "err" >&2`)
	dir := t.TempDir()

	l, err := New().Start(context.Background(), Request{Executable: py, Dir: dir, Args: []string{"-m", "server"}, Naming: NamingRole})
	require.NoError(t, err)
	waitExit(t, l)

	assert.Equal(t, filepath.Join(dir, "log", "python_bg_server.log"), l.StdoutPath)
	assert.Equal(t, filepath.Join(dir, "log", "python_bg_server_error.log"), l.StderrPath)
	assert.NotEmpty(t, l.ID)

	out := testutil.ReadFile(t, l.StdoutPath)
	assert.Contains(t, out, "out -m server")
	assert.Contains(t, out, "enc utf-8")
	assert.Equal(t, "err\n", testutil.ReadFile(t, l.StderrPath))
}

func TestStartRoleOverwritesOnRelaunch(t *testing.T) {
	py := testutil.FakeInterpreter(t, `echo "run $RUN"`)
	dir := t.TempDir()

	first, err := New(WithEnv("RUN=first-run-with-longer-output")).Start(context.Background(), Request{Executable: py, Dir: dir, Args: []string{"-m", "server"}, Naming: NamingRole})
	require.NoError(t, err)
	waitExit(t, first)

	second, err := New(WithEnv("RUN=second")).Start(context.Background(), Request{Executable: py, Dir: dir, Args: []string{"-m", "server"}, Naming: NamingRole})
	require.NoError(t, err)
	waitExit(t, second)

	assert.Equal(t, first.StdoutPath, second.StdoutPath)
	assert.Equal(t, "run second\n", testutil.ReadFile(t, second.StdoutPath))
	assert.Equal(t, []string{"python_bg_server.log", "python_bg_server_error.log"}, testutil.ListFiles(t, filepath.Join(dir, "log")))
}

func TestStartTimestampedKeepsEveryLaunch(t *testing.T) {
	py := testutil.FakeInterpreter(t, `echo done`)
	dir := t.TempDir()
	l := New(WithClock(fixedClock(1700000000)))

	req := Request{Executable: py, Dir: dir, Args: []string{"-m", "job"}}
	first, err := l.Start(context.Background(), req)
	require.NoError(t, err)
	second, err := l.Start(context.Background(), req)
	require.NoError(t, err)
	waitExit(t, first)
	waitExit(t, second)

	assert.NotEqual(t, first.StdoutPath, second.StdoutPath)
	assert.Equal(t, []string{
		"python_bg_job_1700000000.log",
		"python_bg_job_1700000000_1.log",
		"python_bg_job_1700000000_1_error.log",
		"python_bg_job_1700000000_error.log",
	}, testutil.ListFiles(t, filepath.Join(dir, "log")))
}

func TestStartCustomLogDir(t *testing.T) {
	py := testutil.FakeInterpreter(t, `true`)
	dir := t.TempDir()

	l, err := New(WithLogDir("logs/python")).Start(context.Background(), Request{Executable: py, Dir: dir, Args: []string{"-m", "server"}, Naming: NamingRole})
	require.NoError(t, err)
	waitExit(t, l)
	assert.True(t, strings.HasPrefix(l.StdoutPath, filepath.Join(dir, "logs", "python")))
}

func TestStartLogDirFailure(t *testing.T) {
	testutil.RequirePOSIX(t)
	dir := t.TempDir()
	// A regular file where the log directory should go.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "log"), nil, 0o644))

	_, err := New().Start(context.Background(), Request{Executable: "/bin/true", Dir: dir, Args: []string{"-m", "server"}})

	require.Error(t, err)
	assert.Equal(t, StageLogDir, StageOf(err))
	assert.Contains(t, err.Error(), "failed to create log directory")
}

func TestStartSpawnFailureAfterLogs(t *testing.T) {
	dir := t.TempDir()

	_, err := New().Start(context.Background(), Request{Executable: filepath.Join(dir, "missing-python"), Dir: dir, Args: []string{"-m", "server"}, Naming: NamingRole})

	require.Error(t, err)
	assert.Equal(t, StageSpawn, StageOf(err))
	var le *LaunchError
	require.True(t, errors.As(err, &le))
	assert.Contains(t, le.Error(), "failed to start process")
	// Log setup happens before the spawn attempt.
	assert.FileExists(t, filepath.Join(dir, "log", "python_bg_server.log"))
}

func TestStartTimestampBeforeEpoch(t *testing.T) {
	dir := t.TempDir()

	_, err := New(WithClock(fixedClock(-5))).Start(context.Background(), Request{Executable: "python", Dir: dir, Args: []string{"x"}})

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTimestampUnavailable)
	assert.Equal(t, StageTimestamp, StageOf(err))
}

func TestStartCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New().Start(ctx, Request{Executable: "python", Dir: t.TempDir()})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestStageOfForeignError(t *testing.T) {
	assert.Equal(t, Stage(""), StageOf(errors.New("other")))
}
