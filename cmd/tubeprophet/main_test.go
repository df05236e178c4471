package main

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/artur/tubeprophet/internal/database"
	"github.com/artur/tubeprophet/internal/database/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isolateEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"TUBEPROPHET_DB", "TELEGRAM_BOT_TOKEN", "TELEGRAM_CHAT_ID", "TUBEPROPHET_DAYS"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
	t.Setenv("TUBEPROPHET_RATE", "1000")
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "videos.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func fakeAPI(t *testing.T) *httptest.Server {
	t.Helper()
	today := time.Now()
	published := func(daysAgo int) string {
		return today.AddDate(0, 0, -daysAgo).Format(time.RFC3339)
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("key") != "test-key" {
			w.WriteHeader(http.StatusForbidden)
			fmt.Fprint(w, `{"error":{"code":403,"message":"forbidden","errors":[{"reason":"forbidden"}]}}`)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"items":[
			{"id":"oldoldoldol","snippet":{"title":"Old","publishedAt":%q},"statistics":{"viewCount":"1000"}},
			{"id":"newnewnewne","snippet":{"title":"New","publishedAt":%q},"statistics":{"viewCount":"500"}}
		]}`, published(100), published(5))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestRun(t *testing.T) {
	isolateEnv(t)
	srv := fakeAPI(t)
	path := writeConfig(t, `{"key": "test-key", "videos": ["oldoldoldol", "https://youtu.be/newnewnewne"]}`)

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{"-j", path, "-d", "30", "-api-endpoint", srv.URL + "/"}, &stdout, &stderr)
	require.Equal(t, exitOK, code, stderr.String())

	out := stdout.String()
	assert.True(t, strings.HasPrefix(out, "Old - Uploaded on"))
	assert.Contains(t, out, "\t10 average views per day")
	assert.Contains(t, out, "Starting state (Day 1):\n1. Old - 1,000 views\n2. New - 500 views\n")
	assert.Contains(t, out, "Day 7:\n1. New - 1,100 views\n2. Old - 1,060 views\n")
	assert.NotContains(t, out, "\033[")
}

func TestRun_KeyFromFlag(t *testing.T) {
	isolateEnv(t)
	srv := fakeAPI(t)
	path := writeConfig(t, `{"videos": ["oldoldoldol"]}`)

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{"-j", path, "-k", "test-key", "-api-endpoint", srv.URL + "/"}, &stdout, &stderr)
	assert.Equal(t, exitOK, code, stderr.String())
}

func TestRun_PersistsToDatabase(t *testing.T) {
	isolateEnv(t)
	srv := fakeAPI(t)
	path := writeConfig(t, `{"key": "test-key", "videos": ["oldoldoldol", "newnewnewne"]}`)
	dbPath := filepath.Join(t.TempDir(), "data", "prophet.db")

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{"-j", path, "-db", dbPath, "-api-endpoint", srv.URL + "/"}, &stdout, &stderr)
	require.Equal(t, exitOK, code, stderr.String())

	db, err := database.New(dbPath)
	require.NoError(t, err)
	defer db.Close()

	total, err := repository.NewSnapshotRepository(db.DB).GetTotalSnapshots()
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)

	runs, err := repository.NewRunRepository(db.DB).GetRecent(10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, 100, runs[0].Days)
}

func TestRun_Errors(t *testing.T) {
	isolateEnv(t)
	srv := fakeAPI(t)

	tests := []struct {
		name       string
		config     string
		args       []string
		wantCode   int
		wantStderr string
	}{
		{name: "missing -j", wantCode: exitUsage, wantStderr: "Usage:"},
		{name: "unknown flag", args: []string{"-x"}, wantCode: exitUsage},
		{name: "missing videos", config: `{"key": "test-key"}`, wantCode: exitFailure, wantStderr: "Please provide a list of videos in the JSON file!"},
		{name: "missing key", config: `{"videos": ["oldoldoldol"]}`, wantCode: exitUsage, wantStderr: "Please specify an Authentication Key!"},
		{name: "invalid json", config: `{"videos": [`, wantCode: exitFailure},
		{name: "invalid id", config: `{"key": "test-key", "videos": ["nope"]}`, wantCode: exitFailure, wantStderr: "invalid video id"},
		{name: "rejected key", config: `{"key": "bad-key", "videos": ["oldoldoldol"]}`, wantCode: exitFailure, wantStderr: "invalid api key"},
		{name: "unknown source", config: `{"key": "test-key", "videos": ["oldoldoldol"]}`, args: []string{"-source", "ftp"}, wantCode: exitUsage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{}, tt.args...)
			if tt.config != "" {
				args = append(args, "-j", writeConfig(t, tt.config), "-api-endpoint", srv.URL+"/")
			}

			var stdout, stderr bytes.Buffer
			code := run(context.Background(), args, &stdout, &stderr)
			assert.Equal(t, tt.wantCode, code)
			if tt.wantStderr != "" {
				assert.Contains(t, stderr.String(), tt.wantStderr)
			}
		})
	}
}
