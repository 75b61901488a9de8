package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"

	"studychat/eventstore"
	"studychat/repositories"
	"studychat/runtime"
	"studychat/runtime/workers"
)

func startTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	req := require.New(t)

	db, err := badger.Open(badger.DefaultOptions("").
		WithInMemory(true).
		WithLoggingLevel(badger.ERROR))
	req.NoError(err)
	t.Cleanup(func() { _ = db.Close() })

	log := logs.GetLoggerFromLevel(slog.LevelWarn)
	store, err := eventstore.New(db, log)
	req.NoError(err)
	repository := repositories.NewMessageRepository(db, log, nil)

	sup := workers.NewSupervisor(log, 100*time.Millisecond)
	orchestrator := runtime.NewOrchestrator(
		log, sup, runtime.NewRegistry(), store, repository,
		16, time.Second, time.Hour, '*')

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	req.NoError(orchestrator.Start(ctx))
	t.Cleanup(orchestrator.Stop)

	ts := httptest.NewServer(NewHandler(orchestrator, log))
	t.Cleanup(ts.Close)
	return ts
}

func postJSON(t *testing.T, ts *httptest.Server, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(ts.URL+"/messages", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func Test_PostMessage_Accepted(t *testing.T) {
	req := require.New(t)
	ts := startTestServer(t)

	resp := postJSON(t, ts, `{"userId":"alice","content":"hello over http"}`)
	req.Equal(http.StatusAccepted, resp.StatusCode)

	var body struct {
		CmdUUID string `json:"cmdUuid"`
	}
	req.NoError(json.NewDecoder(resp.Body).Decode(&body))
	req.NotEmpty(body.CmdUUID)
}

func Test_PostMessage_Invalid_Body(t *testing.T) {
	req := require.New(t)
	ts := startTestServer(t)

	resp := postJSON(t, ts, `this is not json`)
	req.Equal(http.StatusBadRequest, resp.StatusCode)
}

func Test_PostMessage_Empty_Content_Rejected(t *testing.T) {
	req := require.New(t)
	ts := startTestServer(t)

	resp := postJSON(t, ts, `{"userId":"alice","content":""}`)
	req.Equal(http.StatusBadRequest, resp.StatusCode)
}

func Test_GetMessages_Returns_Snapshot(t *testing.T) {
	req := require.New(t)
	ts := startTestServer(t)

	resp := postJSON(t, ts, `{"userId":"alice","content":"visible in snapshot"}`)
	req.Equal(http.StatusAccepted, resp.StatusCode)

	// The snapshot sink runs asynchronously behind the publish channel.
	req.Eventually(func() bool {
		getResp, err := http.Get(ts.URL + "/messages")
		if err != nil {
			return false
		}
		defer getResp.Body.Close()

		var body struct {
			Messages []struct {
				UserID  string `json:"userId"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		if err := json.NewDecoder(getResp.Body).Decode(&body); err != nil {
			return false
		}
		return len(body.Messages) == 1 && body.Messages[0].Content == "visible in snapshot"
	}, 2*time.Second, 20*time.Millisecond)
}

func Test_GetEvents_Requires_User(t *testing.T) {
	req := require.New(t)
	ts := startTestServer(t)

	resp, err := http.Get(ts.URL + "/events")
	req.NoError(err)
	defer resp.Body.Close()
	req.Equal(http.StatusBadRequest, resp.StatusCode)
}

func Test_GetEvents_Replays_User_Events(t *testing.T) {
	req := require.New(t)
	ts := startTestServer(t)

	resp := postJSON(t, ts, `{"userId":"alice","content":"hi @bob"}`)
	req.Equal(http.StatusAccepted, resp.StatusCode)

	getResp, err := http.Get(ts.URL + "/events?user=alice")
	req.NoError(err)
	defer getResp.Body.Close()
	req.Equal(http.StatusOK, getResp.StatusCode)

	var body struct {
		Events []struct {
			Kind string `json:"kind"`
		} `json:"events"`
	}
	req.NoError(json.NewDecoder(getResp.Body).Decode(&body))
	req.Len(body.Events, 2)
	req.Equal("MENTION", body.Events[0].Kind)
	req.Equal("MESSAGE_POSTED", body.Events[1].Kind)
}

func Test_GetEvents_Invalid_Cursor(t *testing.T) {
	req := require.New(t)
	ts := startTestServer(t)

	resp, err := http.Get(ts.URL + "/events?user=alice&last=not-a-uuid")
	req.NoError(err)
	defer resp.Body.Close()
	req.Equal(http.StatusBadRequest, resp.StatusCode)
}
