package repository

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/okian/mentormatch/internal/domain/model"
	"github.com/okian/mentormatch/pkg/metrics"
)

//go:embed schema.sql
var schemaSQL string

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

const (
	profilesTable = "profiles"
	matchesTable  = "match_scores"
	archiveTable  = "match_archive"
	feedbackTable = "match_feedback"
)

var matchColumns = []string{
	"id", "mentor_id", "mentee_id", "total_score", "dimension_scores", "detail", "status", "updated_at",
}

// PostgresStore is a Store backed by Postgres. Profiles are kept as JSONB
// documents keyed by (id, role). JSON values are bound as text since lib/pq
// sends []byte as bytea.
type PostgresStore struct {
	db  *sql.DB
	now func() time.Time
}

var _ Store = (*PostgresStore)(nil)

// OpenPostgres connects with the lib/pq driver and verifies the connection.
func OpenPostgres(ctx context.Context, dsn string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return NewPostgresStore(db), nil
}

// NewPostgresStore wires an existing sql.DB.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db, now: time.Now}
}

// Migrate creates the tables if they do not exist.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// Close implements Store.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

func profileQuery(id string, role model.Role) sq.SelectBuilder {
	return psql.Select("data").From(profilesTable).Where(sq.Eq{"id": id, "role": string(role)})
}

func profilesQuery(role model.Role, limit int) sq.SelectBuilder {
	q := psql.Select("data").From(profilesTable).Where(sq.Eq{"role": string(role)}).OrderBy("id")
	if limit > 0 {
		q = q.Limit(uint64(limit))
	}
	return q
}

func upsertProfileQuery(p model.Profile, data []byte, now time.Time) sq.InsertBuilder {
	return psql.Insert(profilesTable).
		Columns("id", "role", "data", "updated_at").
		Values(p.ID, string(p.Role), string(data), now).
		Suffix("ON CONFLICT (id, role) DO UPDATE SET data = EXCLUDED.data, updated_at = EXCLUDED.updated_at")
}

func upsertResultQuery(id string, res model.MatchResult, dims, detail []byte, now time.Time) sq.InsertBuilder {
	return psql.Insert(matchesTable).
		Columns(matchColumns...).
		Values(id, res.MentorID, res.MenteeID, res.TotalScore, string(dims), string(detail), string(model.StatusSuggested), now).
		Suffix("ON CONFLICT (mentor_id, mentee_id) DO UPDATE SET " +
			"total_score = EXCLUDED.total_score, dimension_scores = EXCLUDED.dimension_scores, " +
			"detail = EXCLUDED.detail, updated_at = EXCLUDED.updated_at").
		Suffix("RETURNING " + columnList())
}

func upsertStatusQuery(id, mentorID, menteeID string, status model.Status, now time.Time) sq.InsertBuilder {
	return psql.Insert(matchesTable).
		Columns("id", "mentor_id", "mentee_id", "status", "updated_at").
		Values(id, mentorID, menteeID, string(status), now).
		Suffix("ON CONFLICT (mentor_id, mentee_id) DO UPDATE SET status = EXCLUDED.status, updated_at = EXCLUDED.updated_at").
		Suffix("RETURNING " + columnList())
}

func pairQuery(table, mentorID, menteeID string) sq.SelectBuilder {
	return psql.Select(matchColumns...).From(table).Where(sq.Eq{"mentor_id": mentorID, "mentee_id": menteeID})
}

func archiveQuery(rec model.MatchRecord, dims, detail []byte) sq.InsertBuilder {
	return psql.Insert(archiveTable).
		Columns(matchColumns...).
		Values(rec.ID, rec.MentorID, rec.MenteeID, rec.TotalScore, string(dims), string(detail), string(rec.Status), rec.UpdatedAt)
}

func involvingQuery(table, userID string) sq.SelectBuilder {
	return psql.Select(matchColumns...).From(table).
		Where(sq.Or{sq.Eq{"mentor_id": userID}, sq.Eq{"mentee_id": userID}})
}

func topNQuery(n int) sq.SelectBuilder {
	q := psql.Select(matchColumns...).From(matchesTable).OrderBy("total_score DESC", "mentor_id", "mentee_id")
	if n > 0 {
		q = q.Limit(uint64(n))
	}
	return q
}

func feedbackQuery(mentorIDs []string) sq.SelectBuilder {
	q := psql.Select("mentor_id", "mentee_id", "rating", "match_status", "comment", "created_at").From(feedbackTable).OrderBy("id")
	if len(mentorIDs) > 0 {
		q = q.Where("mentor_id = ANY(?)", pq.Array(mentorIDs))
	}
	return q
}

func insertFeedbackQuery(f model.FeedbackRecord) sq.InsertBuilder {
	return psql.Insert(feedbackTable).
		Columns("mentor_id", "mentee_id", "rating", "match_status", "comment", "created_at").
		Values(f.MentorID, f.MenteeID, f.Rating, string(f.MatchStatus), f.Comment, f.CreatedAt)
}

func columnList() string {
	return strings.Join(matchColumns, ", ")
}

// Profile implements ProfileStore.
func (s *PostgresStore) Profile(ctx context.Context, id string, role model.Role) (model.Profile, error) {
	defer observe("profile", time.Now())

	query, args, err := profileQuery(id, role).ToSql()
	if err != nil {
		return model.Profile{}, fmt.Errorf("build profile query: %w", err)
	}
	var data []byte
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&data); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Profile{}, ErrNotFound
		}
		metrics.RecordErrorByComponent("repository", "query")
		return model.Profile{}, fmt.Errorf("query profile: %w", err)
	}
	var p model.Profile
	if err := json.Unmarshal(data, &p); err != nil {
		return model.Profile{}, fmt.Errorf("decode profile %q: %w", id, err)
	}
	return p, nil
}

// Profiles implements ProfileStore.
func (s *PostgresStore) Profiles(ctx context.Context, role model.Role, limit int) ([]model.Profile, error) {
	defer observe("profiles", time.Now())

	query, args, err := profilesQuery(role, limit).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build profiles query: %w", err)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		metrics.RecordErrorByComponent("repository", "query")
		return nil, fmt.Errorf("query profiles: %w", err)
	}
	defer func() { _ = rows.Close() }()

	out := []model.Profile{}
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("scan profile: %w", err)
		}
		var p model.Profile
		if err := json.Unmarshal(data, &p); err != nil {
			return nil, fmt.Errorf("decode profile: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return out, nil
}

// PutProfile implements ProfileStore.
func (s *PostgresStore) PutProfile(ctx context.Context, p model.Profile) error {
	if err := validateProfile(p); err != nil {
		return err
	}
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode profile: %w", err)
	}
	query, args, err := upsertProfileQuery(p, data, s.now()).ToSql()
	if err != nil {
		return fmt.Errorf("build profile upsert: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert profile: %w", err)
	}
	return nil
}

// SaveResult implements MatchStore.
func (s *PostgresStore) SaveResult(ctx context.Context, res model.MatchResult) (model.MatchRecord, error) {
	defer observe("save_result", time.Now())

	dims, detail, err := encodeScores(res.DimensionScores, res.Detail)
	if err != nil {
		return model.MatchRecord{}, err
	}
	query, args, err := upsertResultQuery(uuid.NewString(), res, dims, detail, s.now()).ToSql()
	if err != nil {
		return model.MatchRecord{}, fmt.Errorf("build result upsert: %w", err)
	}
	rec, err := scanMatch(s.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		metrics.RecordErrorByComponent("repository", "write")
		return model.MatchRecord{}, fmt.Errorf("upsert result: %w", err)
	}
	return rec, nil
}

// SetStatus implements MatchStore. Leaving the rejected status archives the
// rejected row in the same transaction.
func (s *PostgresStore) SetStatus(ctx context.Context, mentorID, menteeID string, status model.Status) (model.MatchRecord, error) {
	defer observe("set_status", time.Now())

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return model.MatchRecord{}, fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	query, args, err := pairQuery(matchesTable, mentorID, menteeID).Suffix("FOR UPDATE").ToSql()
	if err != nil {
		return model.MatchRecord{}, fmt.Errorf("build pair query: %w", err)
	}
	current, err := scanMatch(tx.QueryRowContext(ctx, query, args...))
	switch {
	case errors.Is(err, sql.ErrNoRows):
	case err != nil:
		return model.MatchRecord{}, fmt.Errorf("lock pair: %w", err)
	case current.Status == model.StatusRejected && status != model.StatusRejected:
		dims, detail, err := encodeScores(current.DimensionScores, current.Detail)
		if err != nil {
			return model.MatchRecord{}, err
		}
		query, args, err := archiveQuery(current, dims, detail).ToSql()
		if err != nil {
			return model.MatchRecord{}, fmt.Errorf("build archive insert: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return model.MatchRecord{}, fmt.Errorf("archive rejection: %w", err)
		}
	}

	query, args, err = upsertStatusQuery(uuid.NewString(), mentorID, menteeID, status, s.now()).ToSql()
	if err != nil {
		return model.MatchRecord{}, fmt.Errorf("build status upsert: %w", err)
	}
	rec, err := scanMatch(tx.QueryRowContext(ctx, query, args...))
	if err != nil {
		metrics.RecordErrorByComponent("repository", "write")
		return model.MatchRecord{}, fmt.Errorf("upsert status: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return model.MatchRecord{}, fmt.Errorf("commit: %w", err)
	}
	return rec, nil
}

// Match implements MatchStore.
func (s *PostgresStore) Match(ctx context.Context, mentorID, menteeID string) (model.MatchRecord, error) {
	query, args, err := pairQuery(matchesTable, mentorID, menteeID).ToSql()
	if err != nil {
		return model.MatchRecord{}, fmt.Errorf("build pair query: %w", err)
	}
	rec, err := scanMatch(s.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return model.MatchRecord{}, ErrNotFound
	}
	if err != nil {
		return model.MatchRecord{}, fmt.Errorf("query pair: %w", err)
	}
	return rec, nil
}

// MatchesFor implements MatchStore.
func (s *PostgresStore) MatchesFor(ctx context.Context, userID string) ([]model.MatchRecord, error) {
	defer observe("matches_for", time.Now())

	current, err := s.queryMatches(ctx, involvingQuery(matchesTable, userID))
	if err != nil {
		return nil, err
	}
	archived, err := s.queryMatches(ctx, involvingQuery(archiveTable, userID))
	if err != nil {
		return nil, err
	}
	for i := range archived {
		archived[i].Archived = true
	}
	return append(current, archived...), nil
}

// Matches implements MatchStore.
func (s *PostgresStore) Matches(ctx context.Context) ([]model.MatchRecord, error) {
	return s.queryMatches(ctx, topNQuery(0))
}

// TopN implements MatchStore.
func (s *PostgresStore) TopN(ctx context.Context, n int) ([]model.MatchRecord, error) {
	defer observe("top_n", time.Now())

	if n < 1 {
		metrics.RecordErrorByComponent("repository", "invalid_limit")
		return nil, ErrInvalidLimit
	}
	return s.queryMatches(ctx, topNQuery(n))
}

// Count implements MatchStore. Errors count as zero.
func (s *PostgresStore) Count(ctx context.Context) int {
	query, args, err := psql.Select("COUNT(*)").From(matchesTable).ToSql()
	if err != nil {
		return 0
	}
	var n int
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		metrics.RecordErrorByComponent("repository", "query")
		return 0
	}
	return n
}

// AddFeedback implements FeedbackStore.
func (s *PostgresStore) AddFeedback(ctx context.Context, f model.FeedbackRecord) error {
	if f.CreatedAt.IsZero() {
		f.CreatedAt = s.now()
	}
	query, args, err := insertFeedbackQuery(f).ToSql()
	if err != nil {
		return fmt.Errorf("build feedback insert: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		metrics.RecordErrorByComponent("repository", "write")
		return fmt.Errorf("insert feedback: %w", err)
	}
	return nil
}

// Feedback implements FeedbackStore.
func (s *PostgresStore) Feedback(ctx context.Context, mentorIDs ...string) ([]model.FeedbackRecord, error) {
	query, args, err := feedbackQuery(mentorIDs).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build feedback query: %w", err)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		metrics.RecordErrorByComponent("repository", "query")
		return nil, fmt.Errorf("query feedback: %w", err)
	}
	defer func() { _ = rows.Close() }()

	out := []model.FeedbackRecord{}
	for rows.Next() {
		var f model.FeedbackRecord
		var status string
		if err := rows.Scan(&f.MentorID, &f.MenteeID, &f.Rating, &status, &f.Comment, &f.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan feedback: %w", err)
		}
		f.MatchStatus = model.Status(status)
		out = append(out, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) queryMatches(ctx context.Context, q sq.SelectBuilder) ([]model.MatchRecord, error) {
	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build match query: %w", err)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		metrics.RecordErrorByComponent("repository", "query")
		return nil, fmt.Errorf("query matches: %w", err)
	}
	defer func() { _ = rows.Close() }()

	out := []model.MatchRecord{}
	for rows.Next() {
		rec, err := scanMatch(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMatch(row rowScanner) (model.MatchRecord, error) {
	var (
		rec          model.MatchRecord
		status       string
		dims, detail []byte
	)
	err := row.Scan(&rec.ID, &rec.MentorID, &rec.MenteeID, &rec.TotalScore, &dims, &detail, &status, &rec.UpdatedAt)
	if err != nil {
		return rec, err
	}
	rec.Status = model.Status(status)
	if len(dims) > 0 {
		if err := json.Unmarshal(dims, &rec.DimensionScores); err != nil {
			return rec, fmt.Errorf("decode dimension scores: %w", err)
		}
	}
	if len(detail) > 0 {
		if err := json.Unmarshal(detail, &rec.Detail); err != nil {
			return rec, fmt.Errorf("decode detail: %w", err)
		}
	}
	return rec, nil
}

func encodeScores(dims map[model.Dimension]float64, detail model.MatchDetail) ([]byte, []byte, error) {
	if dims == nil {
		dims = map[model.Dimension]float64{}
	}
	d, err := json.Marshal(dims)
	if err != nil {
		return nil, nil, fmt.Errorf("encode dimension scores: %w", err)
	}
	det, err := json.Marshal(detail)
	if err != nil {
		return nil, nil, fmt.Errorf("encode detail: %w", err)
	}
	return d, det, nil
}
