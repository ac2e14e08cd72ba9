package pgstore

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pershin-daniil/EventRegistry/pkg/metrics"
	"github.com/pershin-daniil/EventRegistry/pkg/models"
	migrate "github.com/rubenv/sql-migrate"
	"github.com/sirupsen/logrus"
)

//go:embed migrations
var migrations embed.FS

const (
	retries = 3
	driver  = "postgres"
)

const eventColumns = `id, owner_id, title, description, location, metadata, starts_at, ends_at, status, created_at, updated_at`

type Store struct {
	log *logrus.Entry
	db  *sqlx.DB
}

type eventRow struct {
	models.Event
	Metadata []byte `db:"metadata"`
}

type participantRow struct {
	EventID string `db:"event_id"`
	UserID  string `db:"user_id"`
}

func New(ctx context.Context, log *logrus.Logger, dsn string) (*Store, error) {
	db, err := sqlx.ConnectContext(ctx, "pgx", dsn)
	if err != nil {
		return nil, err
	}
	return &Store{
		log: log.WithField("component", "pgstore"),
		db:  db,
	}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Migrate(direction migrate.MigrationDirection) error {
	assetDir := func() func(string) ([]string, error) {
		return func(path string) ([]string, error) {
			dirEntry, er := migrations.ReadDir(path)
			if er != nil {
				return nil, er
			}
			entries := make([]string, 0)
			for _, e := range dirEntry {
				entries = append(entries, e.Name())
			}

			return entries, nil
		}
	}()
	asset := migrate.AssetMigrationSource{
		Asset:    migrations.ReadFile,
		AssetDir: assetDir,
		Dir:      "migrations",
	}
	n, err := migrate.Exec(s.db.DB, "postgres", asset, direction)
	if err != nil {
		return err
	}
	s.log.Infof("applied %d migrations", n)
	return nil
}

func (s *Store) GetEvent(ctx context.Context, id string) (event models.Event, err error) {
	defer metrics.ObserveStore(driver, "GetEvent", time.Now(), &err)
	var row eventRow
	query := `
SELECT ` + eventColumns + ` FROM events
WHERE id = $1;`
	for i := 0; i < retries; i++ {
		err = s.db.GetContext(ctx, &row, query, id)
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return models.Event{}, models.ErrNotFound
		case err != nil:
			continue
		}
		events, er := s.withParticipants(ctx, []eventRow{row})
		if er != nil {
			err = er
			continue
		}
		return events[0], nil
	}
	return models.Event{}, fmt.Errorf("err getting event %s: %w", id, err)
}

func (s *Store) PutEvent(ctx context.Context, event models.Event) (err error) {
	defer metrics.ObserveStore(driver, "PutEvent", time.Now(), &err)
	metadata, err := json.Marshal(event.Metadata)
	if err != nil {
		return fmt.Errorf("err encoding metadata: %w", err)
	}
	if event.Metadata == nil {
		metadata = []byte(`{}`)
	}
	for i := 0; i < retries; i++ {
		if err = s.putEvent(ctx, event, metadata); err != nil {
			continue
		}
		return nil
	}
	return fmt.Errorf("err saving event %s: %w", event.ID, err)
}

func (s *Store) putEvent(ctx context.Context, event models.Event, metadata []byte) (err error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			if er := tx.Rollback(); er != nil {
				s.log.Warnf("err during rollback: %v", er)
			}
		}
	}()
	query := `
INSERT INTO events (` + eventColumns + `)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
ON CONFLICT (id) DO UPDATE
    SET owner_id = EXCLUDED.owner_id,
    title = EXCLUDED.title,
    description = EXCLUDED.description,
    location = EXCLUDED.location,
    metadata = EXCLUDED.metadata,
    starts_at = EXCLUDED.starts_at,
    ends_at = EXCLUDED.ends_at,
    status = EXCLUDED.status,
    updated_at = EXCLUDED.updated_at;`
	if _, err = tx.ExecContext(ctx, query, event.ID, event.OwnerID, event.Title, event.Description, event.Location,
		string(metadata), event.StartsAt, event.EndsAt, string(event.Status), event.CreatedAt, event.UpdatedAt); err != nil {
		return err
	}
	for _, userID := range event.Participants {
		if _, err = tx.ExecContext(ctx, `
INSERT INTO event_participants (event_id, user_id)
VALUES ($1, $2)
ON CONFLICT DO NOTHING;`, event.ID, userID); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *Store) ListEvents(ctx context.Context) (events []models.Event, err error) {
	defer metrics.ObserveStore(driver, "ListEvents", time.Now(), &err)
	query := `SELECT ` + eventColumns + ` FROM events ORDER BY seq;`
	for i := 0; i < retries; i++ {
		if events, err = s.selectEvents(ctx, query); err != nil {
			continue
		}
		return events, nil
	}
	return nil, fmt.Errorf("err getting events: %w", err)
}

func (s *Store) ListEventsByUser(ctx context.Context, userID string) (events []models.Event, err error) {
	defer metrics.ObserveStore(driver, "ListEventsByUser", time.Now(), &err)
	query := `
SELECT ` + eventColumns + ` FROM events
WHERE owner_id = $1
   OR id IN (SELECT event_id FROM event_participants WHERE user_id = $1)
ORDER BY seq;`
	for i := 0; i < retries; i++ {
		if events, err = s.selectEvents(ctx, query, userID); err != nil {
			continue
		}
		return events, nil
	}
	return nil, fmt.Errorf("err getting events of user %s: %w", userID, err)
}

func (s *Store) selectEvents(ctx context.Context, query string, args ...interface{}) ([]models.Event, error) {
	var rows []eventRow
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, err
	}
	return s.withParticipants(ctx, rows)
}

func (s *Store) withParticipants(ctx context.Context, rows []eventRow) ([]models.Event, error) {
	events := make([]models.Event, 0, len(rows))
	if len(rows) == 0 {
		return events, nil
	}
	ids := make([]string, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ID)
	}
	query, args, err := sqlx.In(`
SELECT event_id, user_id FROM event_participants
WHERE event_id IN (?)
ORDER BY seq;`, ids)
	if err != nil {
		return nil, err
	}
	var participants []participantRow
	if err = s.db.SelectContext(ctx, &participants, s.db.Rebind(query), args...); err != nil {
		return nil, err
	}
	byEvent := make(map[string][]string, len(rows))
	for _, p := range participants {
		byEvent[p.EventID] = append(byEvent[p.EventID], p.UserID)
	}
	for _, row := range rows {
		event := row.Event
		if err = json.Unmarshal(row.Metadata, &event.Metadata); err != nil {
			return nil, fmt.Errorf("err decoding metadata of event %s: %w", row.ID, err)
		}
		if len(event.Metadata) == 0 {
			event.Metadata = nil
		}
		event.Participants = byEvent[row.ID]
		if event.Participants == nil {
			event.Participants = []string{}
		}
		event.CreatedAt = event.CreatedAt.UTC()
		event.UpdatedAt = event.UpdatedAt.UTC()
		event.StartsAt = utc(event.StartsAt)
		event.EndsAt = utc(event.EndsAt)
		events = append(events, event)
	}
	return events, nil
}

func utc(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}

func (s *Store) ResetTables(ctx context.Context, tables []string) error {
	_, err := s.db.ExecContext(ctx, `TRUNCATE TABLE `+strings.Join(tables, `, `)+` RESTART IDENTITY CASCADE`)
	return err
}
