//go:build integration

package mysql_test

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"

	"trip_planner/internal/domain"
	mysqlrepo "trip_planner/internal/storage/mysql"
)

// migrationsDir defaults to the repo's migrations/ folder.
func migrationsDir() string {
	if v := os.Getenv("MIGRATIONS_DIR"); v != "" {
		return v
	}
	return filepath.Join("..", "..", "..", "migrations")
}

func applyMigrations(t *testing.T, db *sql.DB) {
	t.Helper()
	dir := migrationsDir()

	ents, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read migrations dir %s: %v", dir, err)
	}
	var files []string
	for _, e := range ents {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".up.sql") {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	if len(files) == 0 {
		t.Fatalf("no .up.sql files in %s", dir)
	}
	sort.Strings(files)

	for _, f := range files {
		sqlBytes, err := os.ReadFile(f)
		if err != nil {
			t.Fatalf("read %s: %v", f, err)
		}
		if _, err := db.Exec(string(sqlBytes)); err != nil {
			t.Fatalf("exec %s: %v", f, err)
		}
	}
}

func startMySQL(t *testing.T) *sql.DB {
	t.Helper()
	// Start isolated MySQL; let Docker pick a free host port.
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

	applyMigrations(t, db)
	return db
}

func TestRepo_MySQL_TripLifecycle(t *testing.T) {
	db := startMySQL(t)
	repo := mysqlrepo.New(db)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Millisecond)

	tr := domain.StoredTripRequest{
		ID: uuid.NewString(),
		TripRequest: domain.TripRequest{
			Destination: "Bali", Days: 5, People: 2, Budget: 50000, Experience: domain.ExperienceAdventure,
		},
		CreatedAt: now,
	}
	if err := repo.SaveTripRequest(ctx, tr); err != nil {
		t.Fatalf("SaveTripRequest: %v", err)
	}

	rating := 4.5
	it := domain.Itinerary{
		ID:            uuid.NewString(),
		TripRequestID: tr.ID,
		Summary: domain.PlannedTrip{
			Flights: domain.Offers{domain.Flight{
				OfferBase: domain.OfferBase{Name: "DEL to BAL", EstimatedCost: 12000, Rating: &rating, Source: domain.SourceMock},
				Airline:   "IndiGo",
			}},
			Hotels:             domain.Offers{},
			TotalEstimatedCost: 12000,
			BudgetRemaining:    38000,
		},
		TotalEstimate: 12000,
		CreatedAt:     now,
	}
	if err := repo.SaveItinerary(ctx, it); err != nil {
		t.Fatalf("SaveItinerary: %v", err)
	}
	if err := repo.LinkItinerary(ctx, tr.ID, it.ID); err != nil {
		t.Fatalf("LinkItinerary: %v", err)
	}

	got, err := repo.GetTripRequest(ctx, tr.ID)
	if err != nil {
		t.Fatalf("GetTripRequest: %v", err)
	}
	if got.ItineraryID == nil || *got.ItineraryID != it.ID || got.Destination != "Bali" || got.Budget != 50000 {
		t.Fatalf("unexpected trip request: %+v", got)
	}

	back, err := repo.GetItinerary(ctx, it.ID)
	if err != nil {
		t.Fatalf("GetItinerary: %v", err)
	}
	if len(back.Summary.Flights) != 1 {
		t.Fatalf("summary did not survive the round trip: %+v", back.Summary)
	}
	if f, ok := back.Summary.Flights[0].(domain.Flight); !ok || f.Airline != "IndiGo" {
		t.Fatalf("unexpected flight: %#v", back.Summary.Flights[0])
	}

	list, err := repo.ListItineraries(ctx, 10)
	if err != nil || len(list) != 1 {
		t.Fatalf("ListItineraries: %v (%d rows)", err, len(list))
	}

	if _, err := repo.GetItinerary(ctx, uuid.NewString()); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
	if err := repo.LinkItinerary(ctx, uuid.NewString(), it.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("want ErrNotFound on link, got %v", err)
	}
}
