package main

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lowaak/health-coach/coach-app/internal/catalog"
	"github.com/lowaak/health-coach/coach-app/internal/progress"
)

// execute runs the root command inside an isolated home
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	home := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, "config"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(home, "data"))
	t.Setenv("COACH_CONFIG", "")

	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetIn(bytes.NewReader(nil))
	root.SetArgs(append(args, "--data-dir", home))
	err := root.Execute()
	return out.String(), err
}

func TestPlansCmd(t *testing.T) {
	out, err := execute(t, "plans", "--store", progress.BackendMemory)
	require.NoError(t, err)

	assert.Contains(t, out, "ID")
	for _, plan := range catalog.Default().ListPlans() {
		assert.Contains(t, out, plan.ID)
		assert.Contains(t, out, plan.Name)
	}
}

func TestArticlesCmd(t *testing.T) {
	out, err := execute(t, "articles", "--store", progress.BackendMemory)
	require.NoError(t, err)

	for _, article := range catalog.Default().Articles() {
		assert.Contains(t, out, article.Title)
	}
}

func TestArticlesCmd_One(t *testing.T) {
	article, err := catalog.Default().Article("a1")
	require.NoError(t, err)

	out, err := execute(t, "articles", "a1", "--store", progress.BackendMemory)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, article.Title+"\n"))
	for _, paragraph := range article.Content {
		assert.Contains(t, out, paragraph)
	}

	_, err = execute(t, "articles", "a9", "--store", progress.BackendMemory)
	assert.ErrorIs(t, err, catalog.ErrArticleNotFound)
}

func TestProgressCmd_Empty(t *testing.T) {
	out, err := execute(t, "progress", "--store", progress.BackendSQLite)
	require.NoError(t, err)

	assert.Contains(t, out, "Completed exercises:")
	assert.Contains(t, out, "never")
	assert.Contains(t, out, "not yet")
}

func TestPlayCmd_UnknownPlan(t *testing.T) {
	_, err := execute(t, "play", "nope", "--store", progress.BackendMemory)
	require.ErrorIs(t, err, catalog.ErrPlanNotFound)
}

func TestPlayCmd_NeedsPlanID(t *testing.T) {
	_, err := execute(t, "play")
	require.Error(t, err)
}

func TestRootCmd_BadStore(t *testing.T) {
	_, err := execute(t, "plans", "--store", "floppy")
	require.Error(t, err)
}

func TestWriteSummary(t *testing.T) {
	at := time.Date(2026, 5, 2, 7, 30, 0, 0, time.Local)
	var out bytes.Buffer
	require.NoError(t, writeSummary(&out, progress.Summary{
		Total:          3,
		LastCompleted:  at,
		ExercisedToday: true,
		Recent: []progress.RecentCompletion{
			{ExerciseID: "hw_001", Name: "Bodyweight Squat", At: at},
		},
	}))

	text := out.String()
	assert.Contains(t, text, "3")
	assert.Contains(t, text, "2026-05-02 07:30")
	assert.Contains(t, text, "done, nice work!")
	assert.Contains(t, text, "Bodyweight Squat")
}

func TestMetricsTextfileWrittenOnExit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "coach.prom")
	_, err := execute(t, "plans", "--store", progress.BackendMemory, "--metrics-textfile", path)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "coach_player_sessions_started")
}
