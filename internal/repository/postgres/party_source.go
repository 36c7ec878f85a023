package postgres

import (
	"context"
	"database/sql"
	"errors"
	"net/http"

	"partyplanner/internal/domain"
)

// dateLayout matches the ISO timestamps the party API returns.
const dateLayout = "2006-01-02T15:04:05.000Z07:00"

type partySource struct {
	DB *sql.DB
}

// NewPartySource returns a gateway reading the party dataset from the events,
// guests and rsvps tables. Query failures surface as network failures and a
// missing party as a 404 status failure, mirroring the HTTP gateway.
func NewPartySource(db *sql.DB) domain.PartyGateway {
	return &partySource{
		DB: db,
	}
}

const partyColumns = `id, name, date, description, location, cohort_id`

func (r *partySource) ListParties(ctx context.Context) ([]domain.Party, error) {
	query := `
		SELECT ` + partyColumns + `
		FROM events
		ORDER BY id
	`
	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, domain.NewNetworkError(domain.ResourceParties, err)
	}
	defer rows.Close()

	parties := []domain.Party{}
	for rows.Next() {
		p, err := scanParty(rows)
		if err != nil {
			return nil, domain.NewShapeError(domain.ResourceParties, err)
		}
		parties = append(parties, p)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.NewNetworkError(domain.ResourceParties, err)
	}
	return parties, nil
}

func (r *partySource) GetParty(ctx context.Context, id int64) (*domain.Party, error) {
	query := `
		SELECT ` + partyColumns + `
		FROM events
		WHERE id = $1
	`
	p, err := scanParty(r.DB.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NewStatusError(domain.ResourceParty, http.StatusNotFound)
	}
	if err != nil {
		return nil, domain.NewNetworkError(domain.ResourceParty, err)
	}
	return &p, nil
}

func (r *partySource) ListRsvps(ctx context.Context) ([]domain.Rsvp, error) {
	query := `
		SELECT id, guest_id, event_id
		FROM rsvps
		ORDER BY id
	`
	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, domain.NewNetworkError(domain.ResourceRsvps, err)
	}
	defer rows.Close()

	rsvps := []domain.Rsvp{}
	for rows.Next() {
		var rv domain.Rsvp
		if err := rows.Scan(&rv.ID, &rv.GuestID, &rv.EventID); err != nil {
			return nil, domain.NewShapeError(domain.ResourceRsvps, err)
		}
		rsvps = append(rsvps, rv)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.NewNetworkError(domain.ResourceRsvps, err)
	}
	return rsvps, nil
}

func (r *partySource) ListGuests(ctx context.Context) ([]domain.Guest, error) {
	query := `
		SELECT id, name, email, phone, bio, job
		FROM guests
		ORDER BY id
	`
	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, domain.NewNetworkError(domain.ResourceGuests, err)
	}
	defer rows.Close()

	guests := []domain.Guest{}
	for rows.Next() {
		var g domain.Guest
		var name, email, phone, bio, job sql.NullString
		if err := rows.Scan(&g.ID, &name, &email, &phone, &bio, &job); err != nil {
			return nil, domain.NewShapeError(domain.ResourceGuests, err)
		}
		g.Name = nullString(name)
		g.Email = nullString(email)
		g.Phone = nullString(phone)
		g.Bio = nullString(bio)
		g.Job = nullString(job)
		guests = append(guests, g)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.NewNetworkError(domain.ResourceGuests, err)
	}
	return guests, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanParty(s scanner) (domain.Party, error) {
	var p domain.Party
	var name, description, location sql.NullString
	var date sql.NullTime
	var cohortID sql.NullInt64
	if err := s.Scan(&p.ID, &name, &date, &description, &location, &cohortID); err != nil {
		return domain.Party{}, err
	}
	p.Name = nullString(name)
	p.Description = nullString(description)
	p.Location = nullString(location)
	if date.Valid {
		d := date.Time.UTC().Format(dateLayout)
		p.Date = &d
	}
	if cohortID.Valid {
		id := cohortID.Int64
		p.CohortID = &id
	}
	return p, nil
}

func nullString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}
