package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"trip_planner/internal/domain"
)

func valStr(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}

type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

func (r *Repo) SaveTripRequest(ctx context.Context, tr domain.StoredTripRequest) error {
	_, err := r.db.ExecContext(ctx, insertTripRequestSQL,
		tr.ID,
		tr.Destination,
		tr.People,
		tr.Days,
		tr.Budget,
		string(tr.Experience),
		valStr(tr.ItineraryID),
		tr.CreatedAt.UTC(),
	)
	return err
}

func (r *Repo) LinkItinerary(ctx context.Context, tripRequestID, itineraryID string) error {
	res, err := r.db.ExecContext(ctx, linkItinerarySQL, itineraryID, tripRequestID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *Repo) SaveItinerary(ctx context.Context, it domain.Itinerary) error {
	summary, err := json.Marshal(it.Summary)
	if err != nil {
		return fmt.Errorf("encode itinerary summary: %w", err)
	}
	_, err = r.db.ExecContext(ctx, insertItinerarySQL,
		it.ID,
		it.TripRequestID,
		string(summary),
		it.TotalEstimate,
		it.CreatedAt.UTC(),
	)
	return err
}

func (r *Repo) GetTripRequest(ctx context.Context, id string) (domain.StoredTripRequest, error) {
	var (
		tr         domain.StoredTripRequest
		experience string
		itID       sql.NullString
	)
	err := r.db.QueryRowContext(ctx, getTripRequestSQL, id).Scan(
		&tr.ID,
		&tr.Destination,
		&tr.People,
		&tr.Days,
		&tr.Budget,
		&experience,
		&itID,
		&tr.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.StoredTripRequest{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.StoredTripRequest{}, err
	}
	tr.Experience = domain.Experience(experience)
	if itID.Valid {
		s := itID.String
		tr.ItineraryID = &s
	}
	return tr, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItinerary(s rowScanner) (domain.Itinerary, error) {
	var (
		it      domain.Itinerary
		summary []byte
	)
	if err := s.Scan(&it.ID, &it.TripRequestID, &summary, &it.TotalEstimate, &it.CreatedAt); err != nil {
		return domain.Itinerary{}, err
	}
	if err := json.Unmarshal(summary, &it.Summary); err != nil {
		return domain.Itinerary{}, fmt.Errorf("decode itinerary %s: %w", it.ID, err)
	}
	return it, nil
}

func (r *Repo) GetItinerary(ctx context.Context, id string) (domain.Itinerary, error) {
	it, err := scanItinerary(r.db.QueryRowContext(ctx, getItinerarySQL, id))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Itinerary{}, domain.ErrNotFound
	}
	return it, err
}

func (r *Repo) ListItineraries(ctx context.Context, limit int) ([]domain.Itinerary, error) {
	rows, err := r.db.QueryContext(ctx, listItinerariesSQL, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.Itinerary{}
	for rows.Next() {
		it, err := scanItinerary(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
