package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/gookit/color"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/suite"

	"studychat/eventstore"
	"studychat/repositories"
	"studychat/runtime"
	"studychat/runtime/workers"
	"studychat/server"
)

// BaseHTTPSuite spins up one full node per test: BadgerDB in memory,
// orchestrator with its supervised workers, and the HTTP surface. With
// SERVER_ADDR set it targets a running node instead.
type BaseHTTPSuite struct {
	suite.Suite
	Config Config

	baseURL      string
	orchestrator *runtime.Orchestrator
	testServer   *httptest.Server
	cancel       context.CancelFunc
	db           *badger.DB
}

// SetupSuite loads the environment configuration before running tests
func (s *BaseHTTPSuite) SetupSuite() {
	var err error
	s.Config, err = LoadConfig()
	s.Require().NoError(err)
}

func (s *BaseHTTPSuite) SetupTest() {
	if s.Config.ServerAddr != "" {
		s.baseURL = "http://" + s.Config.ServerAddr
		return
	}

	db, err := badger.Open(badger.DefaultOptions("").
		WithInMemory(true).
		WithLoggingLevel(badger.ERROR))
	s.Require().NoError(err)
	s.db = db

	log := logs.GetLoggerFromLevel(slog.LevelWarn)
	store, err := eventstore.New(db, log)
	s.Require().NoError(err)
	repository := repositories.NewMessageRepository(db, log, nil)

	sup := workers.NewSupervisor(log, 100*time.Millisecond)
	s.orchestrator = runtime.NewOrchestrator(
		log, sup, runtime.NewRegistry(), store, repository,
		16, time.Second, time.Hour, '*')

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.Require().NoError(s.orchestrator.Start(ctx))

	s.testServer = httptest.NewServer(server.NewHandler(s.orchestrator, log))
	s.baseURL = s.testServer.URL
}

func (s *BaseHTTPSuite) TearDownTest() {
	if s.testServer != nil {
		s.testServer.Close()
		s.testServer = nil
	}
	if s.orchestrator != nil {
		s.orchestrator.Stop()
		s.orchestrator = nil
	}
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	if s.db != nil {
		_ = s.db.Close()
		s.db = nil
	}
}

// Step prints a colorized header so suite logs read as a scenario.
func (s *BaseHTTPSuite) Step(name string) {
	header := fmt.Sprintf("  ====== %s ======", name)
	if s.Config.Colours {
		header = color.New(color.BgBlack, color.FgGreen).Render(header)
	}
	s.T().Log(header)
}

func (s *BaseHTTPSuite) doRequest(method, path string, body any) (*http.Response, []byte) {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		s.Require().NoError(err)
		reader = bytes.NewReader(raw)
	}

	httpReq, err := http.NewRequest(method, s.baseURL+path, reader)
	s.Require().NoError(err)
	httpReq.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := http.DefaultClient.Do(httpReq)
	s.Require().NoError(err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	s.Require().NoError(err)

	s.T().Logf("HTTP %s %s [%d] in %v", method, path, resp.StatusCode, time.Since(start))
	if s.Config.DebugJSON {
		s.T().Logf("RESPONSE:\n%s", raw)
	}
	return resp, raw
}

type messageView struct {
	EventUUID  string `json:"eventUuid"`
	UserID     string `json:"userId"`
	Content    string `json:"content"`
	OccurCount int    `json:"occurCount"`
}

type eventView struct {
	Kind    string `json:"kind"`
	Payload struct {
		UUID          string `json:"uuid"`
		CausationUUID string `json:"causationUuid"`
		UserID        string `json:"userId"`
		Content       string `json:"content"`
		MentionedUser string `json:"mentionedUser"`
		OccurCount    int    `json:"occurCount"`
	} `json:"payload"`
}

// PostMessage submits a posting and requires its acceptance.
func (s *BaseHTTPSuite) PostMessage(userID, content string) {
	resp, _ := s.doRequest(http.MethodPost, "/messages",
		map[string]string{"userId": userID, "content": content})
	s.Require().Equal(http.StatusAccepted, resp.StatusCode)
}

// Snapshot fetches the newest-first message page.
func (s *BaseHTTPSuite) Snapshot() []messageView {
	resp, raw := s.doRequest(http.MethodGet, "/messages", nil)
	s.Require().Equal(http.StatusOK, resp.StatusCode)

	var body struct {
		Messages []messageView `json:"messages"`
	}
	s.Require().NoError(json.Unmarshal(raw, &body))
	return body.Messages
}

// EventsFor replays the stored events for one user.
func (s *BaseHTTPSuite) EventsFor(userID string) []eventView {
	resp, raw := s.doRequest(http.MethodGet, "/events?user="+userID, nil)
	s.Require().Equal(http.StatusOK, resp.StatusCode)

	var body struct {
		Events []json.RawMessage `json:"events"`
	}
	s.Require().NoError(json.Unmarshal(raw, &body))

	views := make([]eventView, 0, len(body.Events))
	for _, rawEvent := range body.Events {
		var view eventView
		s.Require().NoError(json.Unmarshal(rawEvent, &view))
		views = append(views, view)
	}
	return views
}
