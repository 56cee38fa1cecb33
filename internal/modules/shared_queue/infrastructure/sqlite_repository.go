package infrastructure

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/queueshare/internal/modules/shared_queue/domain"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// SQLiteRepository stores each queue as one JSON document with a version column.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a repository on an open database. See OpenSQLite.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// queueDocument is the stored form of a queue. Track adjacency is not stored.
type queueDocument struct {
	Tracks       []trackDocument       `json:"tracks"`
	Paused       bool                  `json:"paused"`
	PositionMs   int64                 `json:"positionMs"`
	Participants []participantDocument `json:"participants"`
	CreatedAt    time.Time             `json:"createdAt"`
	UpdatedAt    time.Time             `json:"updatedAt"`
}

type trackDocument struct {
	ID         string           `json:"id"`
	Name       string           `json:"name"`
	URI        string           `json:"uri"`
	DurationMs int64            `json:"durationMs"`
	Artists    []string         `json:"artists,omitempty"`
	Artwork    *artworkDocument `json:"artwork,omitempty"`
}

type artworkDocument struct {
	URL    string `json:"url"`
	Height int    `json:"height,omitempty"`
	Width  int    `json:"width,omitempty"`
}

type participantDocument struct {
	UserID   snowflake.ID `json:"userId"`
	Name     string       `json:"name"`
	JoinedAt time.Time    `json:"joinedAt"`
}

// Get returns the queue with the given ID.
func (r *SQLiteRepository) Get(ctx context.Context, id domain.QueueID) (*domain.Queue, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, creator_id, version, document FROM queues WHERE id = ?`, string(id))
	return scanQueue(row)
}

// GetByCreator returns the queue owned by the given user.
func (r *SQLiteRepository) GetByCreator(
	ctx context.Context,
	creatorID snowflake.ID,
) (*domain.Queue, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, creator_id, version, document FROM queues WHERE creator_id = ?`, creatorID.String())
	return scanQueue(row)
}

// Save inserts a new queue or updates an existing one if its version still matches.
func (r *SQLiteRepository) Save(ctx context.Context, queue *domain.Queue) (*domain.Queue, error) {
	saved := queue.WithVersion(queue.Version() + 1)
	document, err := json.Marshal(encodeQueue(saved.Snapshot()))
	if err != nil {
		return nil, fmt.Errorf("encode queue %s: %w", queue.ID(), err)
	}
	updatedAt := saved.UpdatedAt().Format(time.RFC3339Nano)

	if queue.Version() == 0 {
		_, err := r.db.ExecContext(ctx,
			`INSERT INTO queues (id, creator_id, version, document, updated_at) VALUES (?, ?, ?, ?, ?)`,
			string(saved.ID()), saved.CreatorID().String(), saved.Version(), string(document), updatedAt)
		if isUniqueViolation(err) {
			return nil, domain.ErrQueueExists
		}
		if err != nil {
			return nil, fmt.Errorf("insert queue %s: %w", queue.ID(), err)
		}
		return saved, nil
	}

	result, err := r.db.ExecContext(ctx,
		`UPDATE queues SET version = ?, document = ?, updated_at = ? WHERE id = ? AND version = ?`,
		saved.Version(), string(document), updatedAt, string(saved.ID()), queue.Version())
	if err != nil {
		return nil, fmt.Errorf("update queue %s: %w", queue.ID(), err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("update queue %s: %w", queue.ID(), err)
	}
	if affected == 0 {
		return nil, domain.ErrVersionConflict
	}
	return saved, nil
}

// Delete removes the queue.
func (r *SQLiteRepository) Delete(ctx context.Context, id domain.QueueID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM queues WHERE id = ?`, string(id))
	if err != nil {
		return fmt.Errorf("delete queue %s: %w", id, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete queue %s: %w", id, err)
	}
	if affected == 0 {
		return domain.ErrQueueNotFound
	}
	return nil
}

func scanQueue(row *sql.Row) (*domain.Queue, error) {
	var (
		id        string
		creatorID string
		version   int64
		document  string
	)
	if err := row.Scan(&id, &creatorID, &version, &document); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrQueueNotFound
		}
		return nil, fmt.Errorf("load queue: %w", err)
	}

	creator, err := snowflake.Parse(creatorID)
	if err != nil {
		return nil, fmt.Errorf("load queue %s: bad creator id: %w", id, err)
	}
	var doc queueDocument
	if err := json.Unmarshal([]byte(document), &doc); err != nil {
		return nil, fmt.Errorf("decode queue %s: %w", id, err)
	}
	return domain.RestoreQueue(decodeQueue(domain.QueueID(id), creator, version, doc))
}

func encodeQueue(s domain.QueueSnapshot) queueDocument {
	doc := queueDocument{
		Tracks:       make([]trackDocument, len(s.Tracks)),
		Paused:       s.Paused,
		PositionMs:   s.PositionMs,
		Participants: make([]participantDocument, len(s.Participants)),
		CreatedAt:    s.CreatedAt,
		UpdatedAt:    s.UpdatedAt,
	}
	for i, t := range s.Tracks {
		doc.Tracks[i] = trackDocument{
			ID:         string(t.ID),
			Name:       t.Name,
			URI:        t.URI,
			DurationMs: t.Duration.Milliseconds(),
			Artists:    t.Artists,
			Artwork:    (*artworkDocument)(t.Artwork),
		}
	}
	for i, p := range s.Participants {
		doc.Participants[i] = participantDocument(p)
	}
	return doc
}

func decodeQueue(
	id domain.QueueID,
	creatorID snowflake.ID,
	version int64,
	doc queueDocument,
) domain.QueueSnapshot {
	s := domain.QueueSnapshot{
		ID:           id,
		CreatorID:    creatorID,
		Tracks:       make([]domain.Track, len(doc.Tracks)),
		Paused:       doc.Paused,
		PositionMs:   doc.PositionMs,
		Participants: make([]domain.Participant, len(doc.Participants)),
		Version:      version,
		CreatedAt:    doc.CreatedAt,
		UpdatedAt:    doc.UpdatedAt,
	}
	for i, t := range doc.Tracks {
		s.Tracks[i] = domain.Track{
			ID:       domain.TrackID(t.ID),
			Name:     t.Name,
			URI:      t.URI,
			Duration: time.Duration(t.DurationMs) * time.Millisecond,
			Artists:  t.Artists,
			Artwork:  (*domain.Artwork)(t.Artwork),
		}
	}
	for i, p := range doc.Participants {
		s.Participants[i] = domain.Participant(p)
	}
	return s
}

func isUniqueViolation(err error) bool {
	var serr *sqlite.Error
	if !errors.As(err, &serr) {
		return false
	}
	return serr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE ||
		serr.Code() == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
}

// Ensure SQLiteRepository implements QueueRepository.
var _ domain.QueueRepository = (*SQLiteRepository)(nil)
