package crawler_test

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"reviewharvest/internal/crawler"
	collyfetcher "reviewharvest/internal/fetcher/colly"
	"reviewharvest/internal/storage"
	"reviewharvest/internal/storage/sqlite"
)

const singleReviewPage = `<html><body>
<div class="review">
  <h3>Great tool</h3>
  <p class="reviewer">Jane</p>
  <div class="flex gg-1">
    <span>Manager</span>
    <span>na Acme Corp</span>
  </div>
  <p class="published">Published on 1 de Janeiro de 2021, 10:00</p>
  <div class="grades">
    <div>
      <p>Custo beneficio</p>
      <div class="star starsize-16"><div style="width:100%;"></div></div>
    </div>
  </div>
</div>
</body></html>`

func newSQLiteStore(t *testing.T) *sqlite.Store {
	t.Helper()
	store, err := sqlite.Open(filepath.Join(t.TempDir(), "harvest.db"), "items")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	require.NoError(t, store.InitSchema(context.Background()))
	return store
}

func runCrawl(t *testing.T, seedURL string, store storage.Store) {
	t.Helper()
	logger := zaptest.NewLogger(t)
	fetcher := collyfetcher.New(collyfetcher.Config{UserAgent: "harvest-test/1.0"})
	sink := storage.NewReviewSink(store, logger)
	ctrl := crawler.New(fetcher, sink, crawler.Config{UserAgent: "harvest-test/1.0"}, logger)
	require.NoError(t, ctrl.Run(context.Background(), seedURL))
}

func TestCrawlSinglePageEndToEnd(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(singleReviewPage))
	}))
	defer srv.Close()

	dbPath := filepath.Join(t.TempDir(), "harvest.db")
	store, err := sqlite.Open(dbPath, "items")
	require.NoError(t, err)
	defer store.Close()
	require.NoError(t, store.InitSchema(context.Background()))

	runCrawl(t, srv.URL, store)

	db, err := sql.Open("sqlite", dbPath)
	require.NoError(t, err)
	defer db.Close()

	var (
		title, company, date, tm         string
		cost, ease, functionality, suprt int
	)
	row := db.QueryRow(`SELECT title, reviewer_company, published_date, published_time,
	custo_beneficio, facilidade_uso, funcionalidades, suporte_cliente FROM items`)
	require.NoError(t, row.Scan(&title, &company, &date, &tm, &cost, &ease, &functionality, &suprt))

	assert.Equal(t, "Great tool", title)
	assert.Equal(t, "Acme Corp", company)
	assert.Equal(t, "1 de Janeiro de 2021", date)
	assert.Equal(t, "10:00", tm)
	assert.Equal(t, 5, cost)
	assert.Equal(t, 0, ease)
	assert.Equal(t, 0, functionality)
	assert.Equal(t, 0, suprt)

	var count int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM items`).Scan(&count))
	assert.Equal(t, 1, count)
}

func TestCrawlFollowsPaginationAcrossPages(t *testing.T) {
	t.Parallel()

	var mu sync.Mutex
	var order []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("page") == "2" {
			mu.Lock()
			order = append(order, "B")
			mu.Unlock()
			fmt.Fprint(w, `<html><body><div class="review"><h3>From page B</h3></div></body></html>`)
			return
		}
		mu.Lock()
		order = append(order, "A")
		mu.Unlock()
		fmt.Fprint(w, `<html><body>
<div class="review"><h3>From page A</h3></div>
<a class="next_page" href="/reviews?page=2">next</a>
</body></html>`)
	}))
	defer srv.Close()

	store := newSQLiteStore(t)
	runCrawl(t, srv.URL+"/reviews", store)

	mu.Lock()
	got := append([]string(nil), order...)
	mu.Unlock()
	assert.Equal(t, []string{"A", "B"}, got)

	answers, err := store.ListAnswers(context.Background())
	require.NoError(t, err)
	assert.Len(t, answers, 2)
}

func TestCrawlIsIdempotentAcrossRuns(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(singleReviewPage))
	}))
	defer srv.Close()

	store := newSQLiteStore(t)
	runCrawl(t, srv.URL, store)

	first, err := store.ListRatings(context.Background())
	require.NoError(t, err)

	// Fresh schema, same pages: identical rows modulo identity.
	require.NoError(t, store.InitSchema(context.Background()))
	runCrawl(t, srv.URL, store)

	second, err := store.ListRatings(context.Background())
	require.NoError(t, err)
	require.Len(t, second, len(first))
	for i := range first {
		assert.Equal(t, first[i].Values, second[i].Values)
	}
}
