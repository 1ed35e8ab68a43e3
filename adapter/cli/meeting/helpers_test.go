package meeting

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/felixgeelhaar/huddle/adapter/cli"
	internalApp "github.com/felixgeelhaar/huddle/internal/app"
	identityDomain "github.com/felixgeelhaar/huddle/internal/identity/domain"
	"github.com/felixgeelhaar/huddle/pkg/config"
	"github.com/stretchr/testify/require"
)

// fakeServer is an in-memory stand-in for the scheduling server.
type fakeServer struct {
	mu       sync.Mutex
	nextID   int64
	meetings []map[string]any
	slots    []string
	created  []map[string]any
	deleted  []string
	owners   map[string]int64
}

func newFakeServer() *fakeServer {
	return &fakeServer{
		nextID: 100,
		owners: make(map[string]int64),
		slots:  []string{"2099-06-10T14:00:00", "2099-06-10T09:00:00"},
	}
}

func (f *fakeServer) addMeeting(id int64, title, start, end string, owner int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.meetings = append(f.meetings, map[string]any{
		"id":              id,
		"title":           title,
		"start":           start,
		"end":             end,
		"owner_id":        owner,
		"participant_ids": []int64{owner},
	})
	f.owners[fmt.Sprint(id)] = owner
}

func (f *fakeServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	path := strings.TrimPrefix(r.URL.Path, "/api")
	switch {
	case path == "/users" && r.Method == http.MethodGet:
		writeJSON(w, http.StatusOK, []map[string]any{
			{"id": 2, "username": "bob"},
			{"id": 3, "username": "carol"},
		})
	case path == "/meetings" && r.Method == http.MethodGet:
		writeJSON(w, http.StatusOK, f.meetings)
	case path == "/meetings/upcoming" && r.Method == http.MethodGet:
		writeJSON(w, http.StatusOK, f.meetings)
	case path == "/meetings" && r.Method == http.MethodPost:
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		f.created = append(f.created, body)
		f.nextID++
		f.meetings = append(f.meetings, map[string]any{
			"id":    f.nextID,
			"title": body["title"],
			"start": strings.TrimSuffix(fmt.Sprint(body["start"]), "Z"),
			"end":   strings.TrimSuffix(fmt.Sprint(body["end"]), "Z"),
		})
		writeJSON(w, http.StatusCreated, map[string]any{"message": "Meeting created successfully"})
	case strings.HasPrefix(path, "/meetings/") && r.Method == http.MethodDelete:
		id := strings.TrimPrefix(path, "/meetings/")
		owner, ok := f.owners[id]
		if !ok {
			writeJSON(w, http.StatusNotFound, map[string]any{"message": "Not found"})
			return
		}
		if owner != 1 {
			writeJSON(w, http.StatusForbidden, map[string]any{"message": "Unauthorized"})
			return
		}
		f.deleted = append(f.deleted, id)
		kept := f.meetings[:0]
		for _, m := range f.meetings {
			if fmt.Sprint(m["id"]) != id {
				kept = append(kept, m)
			}
		}
		f.meetings = kept
		writeJSON(w, http.StatusOK, map[string]any{"message": "Meeting deleted"})
	case path == "/suggest-times" && r.Method == http.MethodPost:
		writeJSON(w, http.StatusOK, f.slots)
	default:
		writeJSON(w, http.StatusNotFound, map[string]any{"message": "Not found"})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// setupTestApp wires a real container against a fake server and signs in
// as user 1.
func setupTestApp(t *testing.T) (*cli.App, *fakeServer) {
	t.Helper()

	fake := newFakeServer()
	server := httptest.NewServer(fake)
	t.Cleanup(server.Close)

	cfg := &config.Config{
		AppEnv:        "test",
		APIURL:        server.URL + "/api",
		HTTPTimeout:   2 * time.Second,
		SessionStore:  config.SessionStoreMemory,
		Timezone:      "UTC",
		ClockInterval: time.Second,
		UpcomingLimit: 5,
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	container, err := internalApp.NewContainer(context.Background(), cfg, logger)
	require.NoError(t, err)
	t.Cleanup(container.Close)

	require.NoError(t, container.AuthService.Remember(context.Background(), identityDomain.Profile{ID: 1, Username: "alice", Timezone: "UTC"}))

	app := cli.NewApp(container)
	cli.SetApp(app)
	t.Cleanup(func() { cli.SetApp(nil) })
	return app, fake
}
