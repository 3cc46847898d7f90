package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"math/rand/v2"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ILikeEggsToo/HuntingTourneyBot/internal/artifact"
	"github.com/ILikeEggsToo/HuntingTourneyBot/internal/engine"
	"github.com/ILikeEggsToo/HuntingTourneyBot/internal/lobby"
	"github.com/ILikeEggsToo/HuntingTourneyBot/internal/types"
)

func newServer(t *testing.T, outDir string) *httptest.Server {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	lb := lobby.NewLobby(ctx, engine.NewEmptyState(), lobby.Options{
		Rand:   rand.New(rand.NewPCG(10, 11)),
		Writer: artifact.NewWriter(outDir, nil),
	})
	srv := httptest.NewServer(SetupRoutes(lb, nil))
	t.Cleanup(srv.Close)
	return srv
}

func do(t *testing.T, method, url string, body any) *http.Response {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, url, r)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func TestDraftFlow(t *testing.T) {
	dir := filepath.Join(t.TempDir(), ".output")
	srv := newServer(t, dir)

	resp := do(t, http.MethodPost, srv.URL+"/draft", types.StartRequest{RunnerA: "Alice", RunnerB: "Bob"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	started := decode[types.DraftResponse](t, resp)
	assert.Equal(t, engine.PhaseAwaitingFirstBan, started.State.Phase)
	assert.Len(t, started.Announcements, 1)

	resp = do(t, http.MethodPost, srv.URL+"/draft/bans", types.BanRequest{Stage: "WC"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	first := decode[types.DraftResponse](t, resp)
	assert.Equal(t, engine.PhaseAwaitingSecondBan, first.State.Phase)
	assert.Nil(t, first.Ordering)

	resp = do(t, http.MethodPost, srv.URL+"/draft/bans", types.BanRequest{Stage: "wc"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "already_banned", decode[types.ErrorResponse](t, resp).Kind)

	resp = do(t, http.MethodPost, srv.URL+"/draft/bans", types.BanRequest{Stage: "pumpkin"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	done := decode[types.DraftResponse](t, resp)
	assert.Equal(t, engine.PhaseConcluded, done.State.Phase)
	assert.Equal(t, []string{"Wild Canyon", "Pumpkin Hill"}, done.State.Bans)
	require.NotNil(t, done.Ordering)
	assert.Len(t, done.Ordering.Active, 7)
	assert.Len(t, done.SplitNames, 35)
	require.NotNil(t, done.Files)
	assert.FileExists(t, done.Files.ConfigPath)
	assert.FileExists(t, done.Files.SplitsPath)

	resp = do(t, http.MethodGet, srv.URL+"/draft/artifacts/config", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	onDisk, err := os.ReadFile(done.Files.ConfigPath)
	require.NoError(t, err)
	assert.Equal(t, onDisk, body)
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "config.ini")

	resp = do(t, http.MethodGet, srv.URL+"/draft/artifacts/splits", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "Alice vs Bob.lss")

	resp = do(t, http.MethodPost, srv.URL+"/draft/bans", types.BanRequest{Stage: "dc"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "not_awaiting_ban", decode[types.ErrorResponse](t, resp).Kind)

	resp = do(t, http.MethodDelete, srv.URL+"/draft", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, engine.PhaseIdle, decode[types.DraftResponse](t, resp).State.Phase)

	resp = do(t, http.MethodGet, srv.URL+"/draft/artifacts/config", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestErrorMapping(t *testing.T) {
	srv := newServer(t, t.TempDir())

	resp := do(t, http.MethodPost, srv.URL+"/draft/bans", types.BanRequest{Stage: "wc"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp = do(t, http.MethodPost, srv.URL+"/draft", types.StartRequest{RunnerA: "Bob", RunnerB: "Bob"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "validation", decode[types.ErrorResponse](t, resp).Kind)

	resp = do(t, http.MethodPost, srv.URL+"/draft/ordering", nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "not_concluded", decode[types.ErrorResponse](t, resp).Kind)

	resp = do(t, http.MethodPost, srv.URL+"/draft", types.StartRequest{RunnerA: "Alice", RunnerB: "Bob"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = do(t, http.MethodPost, srv.URL+"/draft", types.StartRequest{RunnerA: "Carol", RunnerB: "Dave"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "draft_in_progress", decode[types.ErrorResponse](t, resp).Kind)

	resp = do(t, http.MethodPost, srv.URL+"/draft/bans", types.BanRequest{Stage: "City Escape"})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	req, err := http.NewRequest(http.MethodPost, srv.URL+"/draft/bans", bytes.NewBufferString("{"))
	require.NoError(t, err)
	raw, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer raw.Body.Close()
	assert.Equal(t, http.StatusBadRequest, raw.StatusCode)
}

func TestArtifactWriteFailureReportsPath(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0o644))
	srv := newServer(t, blocker)

	do(t, http.MethodPost, srv.URL+"/draft", types.StartRequest{RunnerA: "Alice", RunnerB: "Bob"})
	do(t, http.MethodPost, srv.URL+"/draft/bans", types.BanRequest{Stage: "wc"})
	resp := do(t, http.MethodPost, srv.URL+"/draft/bans", types.BanRequest{Stage: "ph"})

	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	e := decode[types.ErrorResponse](t, resp)
	assert.Equal(t, "artifact_write", e.Kind)
	assert.Equal(t, blocker, e.Path)

	// the draft itself concluded and its artifacts can still be downloaded
	resp = do(t, http.MethodGet, srv.URL+"/draft", nil)
	view := decode[types.DraftResponse](t, resp)
	assert.Equal(t, engine.PhaseConcluded, view.State.Phase)
	assert.Nil(t, view.Files)

	resp = do(t, http.MethodGet, srv.URL+"/draft/artifacts/config", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRepublishReRandomizes(t *testing.T) {
	srv := newServer(t, t.TempDir())
	do(t, http.MethodPost, srv.URL+"/draft", types.StartRequest{RunnerA: "Alice", RunnerB: "Bob"})
	do(t, http.MethodPost, srv.URL+"/draft/bans", types.BanRequest{Stage: "wc"})
	first := decode[types.DraftResponse](t, do(t, http.MethodPost, srv.URL+"/draft/bans", types.BanRequest{Stage: "ph"}))
	require.NotNil(t, first.Ordering)

	resp := do(t, http.MethodPost, srv.URL+"/draft/ordering", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	again := decode[types.DraftResponse](t, resp)
	require.NotNil(t, again.Ordering)
	assert.Greater(t, again.Version, first.Version)
	assert.Equal(t, engine.PhaseConcluded, again.State.Phase)

	resp = do(t, http.MethodPost, srv.URL+"/draft/artifacts", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestHealthz(t *testing.T) {
	srv := newServer(t, t.TempDir())
	resp := do(t, http.MethodGet, srv.URL+"/healthz", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
