package integration

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"go.uber.org/zap"

	"ptalsvc/internal/app/dto"
	httpapi "ptalsvc/internal/app/http"
	"ptalsvc/internal/app/http/handler"
	"ptalsvc/internal/domain"
	"ptalsvc/internal/domain/ptal"
	"ptalsvc/internal/infrastructure/async"
	"ptalsvc/internal/infrastructure/db/pg"
	"ptalsvc/internal/infrastructure/discord"
	"ptalsvc/internal/infrastructure/github"
	"ptalsvc/internal/render"
)

var migrateOnce sync.Once

func openDB(t *testing.T) *sql.DB {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		t.Fatalf("db open: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		t.Fatalf("db ping: %v", err)
	}

	migrateOnce.Do(func() {
		if err := goose.SetDialect("postgres"); err != nil {
			t.Fatalf("goose.SetDialect: %v", err)
		}

		dir := "migrations"
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			dir = filepath.Join("..", "migrations")
		}
		if err := goose.Up(db, dir); err != nil {
			t.Fatalf("goose.Up: %v", err)
		}
	})

	if _, err := db.ExecContext(ctx, `TRUNCATE TABLE ptal_records RESTART IDENTITY`); err != nil {
		t.Fatalf("truncate: %v", err)
	}

	return db
}

func TestRecordRepositoryCRUD(t *testing.T) {
	db := openDB(t)
	ctx := context.Background()
	repo := pg.NewRecordRepository(db)

	rec, err := repo.Create(ctx, ptal.Record{
		ChannelID:   "chan-1",
		MessageID:   "msg-1",
		Owner:       "acme",
		Repository:  "widgets",
		PRNumber:    42,
		Description: "fix memory leak",
		Requester:   "dave",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if rec.ID == 0 || rec.CreatedAt == nil {
		t.Fatalf("missing generated fields: %+v", rec)
	}

	// A second record for the same PR in another channel is legal.
	other, err := repo.Create(ctx, ptal.Record{
		ChannelID: "chan-2", MessageID: "msg-2",
		Owner: "acme", Repository: "widgets", PRNumber: 42, Description: "d",
	})
	if err != nil {
		t.Fatalf("Create second: %v", err)
	}

	// Reusing a message id is not.
	_, err = repo.Create(ctx, ptal.Record{
		ChannelID: "chan-3", MessageID: "msg-1",
		Owner: "acme", Repository: "widgets", PRNumber: 1, Description: "d",
	})
	if !domain.IsConflict(err) {
		t.Fatalf("expected conflict, got %v", err)
	}

	byPR, err := repo.GetByPRIdentity(ctx, "acme", "widgets", 42)
	if err != nil {
		t.Fatalf("GetByPRIdentity: %v", err)
	}
	if len(byPR) != 2 || byPR[0].ID != rec.ID || byPR[1].ID != other.ID {
		t.Fatalf("GetByPRIdentity = %+v", byPR)
	}

	none, err := repo.GetByPRIdentity(ctx, "acme", "widgets", 7)
	if err != nil || len(none) != 0 {
		t.Fatalf("expected empty result, got %+v (%v)", none, err)
	}

	if err := repo.Delete(ctx, rec.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := repo.Delete(ctx, rec.ID); err != nil {
		t.Fatalf("repeated Delete must be a no-op: %v", err)
	}

	all, err := repo.GetAll(ctx)
	if err != nil {
		t.Fatalf("GetAll: %v", err)
	}
	if len(all) != 1 || all[0].ID != other.ID {
		t.Fatalf("GetAll = %+v", all)
	}
}

// fakeRemotes runs stand-ins for the GitHub and Discord APIs so the full
// create → webhook → retire flow can run against a real store.
type fakeRemotes struct {
	mu       sync.Mutex
	merged   bool
	messages map[string]json.RawMessage
	nextID   int
	github   *httptest.Server
	discord  *httptest.Server
}

func newFakeRemotes(t *testing.T) *fakeRemotes {
	f := &fakeRemotes{messages: map[string]json.RawMessage{}}

	f.github = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		merged := f.merged
		f.mu.Unlock()

		if r.URL.Path == "/repos/acme/widgets/pulls/42" {
			resp := map[string]any{
				"title": "Fix leak", "draft": false, "merged": merged,
				"mergeable": true, "mergeable_state": "clean",
			}
			json.NewEncoder(w).Encode(resp)
			return
		}
		if r.URL.Path == "/repos/acme/widgets/pulls/42/reviews" {
			w.Write([]byte(`[{"state":"APPROVED","user":{"login":"alice"}}]`))
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	t.Cleanup(f.github.Close)

	f.discord = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()

		switch r.Method {
		case http.MethodPost:
			f.nextID++
			id := "m-" + string(rune('0'+f.nextID))
			body, _ := json.Marshal(map[string]string{"id": id})
			f.messages[id] = body
			w.Write(body)
		case http.MethodGet, http.MethodPatch:
			id := filepath.Base(r.URL.Path)
			if _, ok := f.messages[id]; !ok {
				w.WriteHeader(http.StatusNotFound)
				return
			}
			w.Write(f.messages[id])
		case http.MethodDelete:
			id := filepath.Base(r.URL.Path)
			delete(f.messages, id)
			w.WriteHeader(http.StatusNoContent)
		}
	}))
	t.Cleanup(f.discord.Close)

	return f
}

func TestAnnounceAndMergeFlow(t *testing.T) {
	db := openDB(t)
	remotes := newFakeRemotes(t)
	log := zap.NewNop()
	ctx := context.Background()

	repo := pg.NewRecordRepository(db)
	svc := ptal.NewService(
		pg.NewTxManager(db),
		repo,
		github.NewClient(remotes.github.URL, "t", 2*time.Second, log),
		discord.NewClient(remotes.discord.URL, "t", 2*time.Second, log),
		render.Payload,
		async.NewKeyedMutex(),
		ptal.Options{},
		log,
	)

	// Synchronous bus keeps the test deterministic.
	h := handler.New(svc, syncBus{svc}, "", log)
	router := httpapi.NewRouter(h, log)

	createBody, _ := json.Marshal(dto.CreateAnnouncementRequest{
		GitHubURL:   "https://github.com/acme/widgets/pull/42",
		Description: "fix memory leak",
		ChannelID:   "chan-1",
		Requester:   "dave",
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/ptal/create", bytes.NewReader(createBody))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body = %s", w.Code, w.Body.String())
	}

	var created dto.CreateAnnouncementResponse
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode create response: %v", err)
	}
	if created.Record.Owner != "acme" || created.Record.Repository != "widgets" || created.Record.PRNumber != 42 {
		t.Fatalf("record = %+v", created.Record)
	}
	if created.Record.MessageID == "" {
		t.Fatal("message id missing")
	}

	remotes.mu.Lock()
	remotes.merged = true
	remotes.mu.Unlock()

	event := `{
		"repository": {"name": "widgets", "owner": {"login": "acme"}},
		"pull_request": {"number": 42}
	}`
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/webhook/github", bytes.NewBufferString(event))
	req.Header.Set("X-GitHub-Event", "pull_request")
	router.ServeHTTP(w, req)

	if w.Code != http.StatusAccepted {
		t.Fatalf("webhook status = %d", w.Code)
	}

	all, err := repo.GetAll(ctx)
	if err != nil {
		t.Fatalf("GetAll: %v", err)
	}
	if len(all) != 0 {
		t.Fatalf("merged record should be retired, got %+v", all)
	}
}

type syncBus struct{ svc ptal.Service }

func (b syncBus) Publish(ctx context.Context, e domain.Event) {
	b.svc.HandleEvent(ctx, e)
}
