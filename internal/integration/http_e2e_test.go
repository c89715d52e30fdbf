//go:build integration

package integration

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/mysql"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"

	"trip_planner/internal/adapters/cache"
	server "trip_planner/internal/adapters/http_server"
	"trip_planner/internal/app"
	"trip_planner/internal/domain"
	"trip_planner/internal/shared"
	"trip_planner/internal/sources"
	mysqlrepo "trip_planner/internal/storage/mysql"
)

// ---------- helpers ----------

func migrateUp(t *testing.T, dsn string) {
	t.Helper()
	dir, err := filepath.Abs(filepath.Join("..", "..", "migrations"))
	if err != nil {
		t.Fatalf("migrations dir: %v", err)
	}
	m, err := migrate.New("file://"+dir, "mysql://"+dsn)
	if err != nil {
		t.Fatalf("migrate.New: %v", err)
	}
	defer m.Close()
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		t.Fatalf("migrate up: %v", err)
	}
}

func startMySQL(t *testing.T) (*sql.DB, string) {
	t.Helper()
	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Fatalf("dockertest: %v", err)
	}
	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "mysql",
		Tag:        "8.0.36",
		Env: []string{
			"MYSQL_ROOT_PASSWORD=root",
			"MYSQL_DATABASE=trips",
		},
	}, func(hc *docker.HostConfig) {
		hc.AutoRemove = true
		hc.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		t.Fatalf("run mysql: %v", err)
	}
	t.Cleanup(func() { _ = pool.Purge(resource) })

	dsn := fmt.Sprintf("root:root@tcp(127.0.0.1:%s)/trips?parseTime=true&multiStatements=true&charset=utf8mb4,utf8&loc=UTC",
		resource.GetPort("3306/tcp"))

	var db *sql.DB
	if err := pool.Retry(func() error {
		var e error
		db, e = sql.Open("mysql", dsn)
		if e != nil {
			return e
		}
		return db.Ping()
	}); err != nil {
		t.Fatalf("connect mysql: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db, dsn
}

// ---------- the test ----------

func TestHTTP_EndToEnd_CreateAndFetchTrip(t *testing.T) {
	db, dsn := startMySQL(t)
	migrateUp(t, dsn)

	// providers without credentials: every source answers from the catalog
	cfg := shared.Config{
		AmadeusBase: "http://127.0.0.1:1",
		BookingBase: "http://127.0.0.1:1",
		PlacesBase:  "http://127.0.0.1:1",
		ProviderRPS: 100,
	}
	set, err := sources.NewSet(sources.ClientsFromConfig(cfg), cache.NewMemory(0), time.Second)
	if err != nil {
		t.Fatalf("sources: %v", err)
	}
	planner := app.NewPlanner(set, "DEL")
	srv := server.New()
	srv.MountHandlers(&server.Handlers{
		Planner: planner,
		Trips:   app.NewTripService(planner, mysqlrepo.New(db)),
		Sources: set,
	})
	ts := httptest.NewServer(srv.Mux())
	defer ts.Close()

	res, err := http.Post(ts.URL+"/v1/trips", "application/json",
		strings.NewReader(`{"destination":"Bali","days":5,"people_count":2,"budget":50000,"experience":"adventure"}`))
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("create status %d", res.StatusCode)
	}
	var created app.TripResult
	if err := json.NewDecoder(res.Body).Decode(&created); err != nil {
		t.Fatalf("decode create: %v", err)
	}
	if created.Status != "completed" || created.Summary.TotalCost > 50000 || created.Summary.TotalActivities == 0 {
		t.Fatalf("unexpected result: %+v", created.Summary)
	}

	res2, err := http.Get(ts.URL + "/v1/trips/" + created.ID)
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer res2.Body.Close()
	if res2.StatusCode != http.StatusOK {
		t.Fatalf("get status %d", res2.StatusCode)
	}
	var it domain.Itinerary
	if err := json.NewDecoder(res2.Body).Decode(&it); err != nil {
		t.Fatalf("decode itinerary: %v", err)
	}
	if it.TripRequestID != created.TripRequestID || it.TotalEstimate != created.Summary.TotalCost {
		t.Fatalf("itinerary mismatch: %+v", it)
	}
	if len(it.Summary.Flights) != len(created.Data.Flights) {
		t.Fatalf("offers did not survive storage: %d vs %d", len(it.Summary.Flights), len(created.Data.Flights))
	}

	var linked sql.NullString
	if err := db.QueryRow("SELECT itinerary_id FROM trip_requests WHERE id = ?", created.TripRequestID).Scan(&linked); err != nil {
		t.Fatalf("read link: %v", err)
	}
	if linked.String != created.ID {
		t.Fatalf("request linked to %q, want %q", linked.String, created.ID)
	}
}
