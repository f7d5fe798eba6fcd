package stats

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"authlinks/internal/platform/postgres"
	id "authlinks/pkg/domain"
	"authlinks/pkg/platform/sentinel"
)

const statColumns = `id, authority_id, action, authority_natural_id_old, authority_natural_id_new,
	heading_old, heading_new, heading_type_old, heading_type_new,
	authority_source_file_old, authority_source_file_new,
	lb_total, lb_updated, lb_failed, status, fail_cause,
	started_by_user_id, started_at, completed_at, origin_job_id`

const statColumnCount = 20

// PostgresStore persists data stats in the tenant's authority_data_stat table.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed data stat store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// CreateInBatch inserts all stats with a single statement.
func (s *PostgresStore) CreateInBatch(ctx context.Context, tenant id.TenantID, stats []DataStat) error {
	if len(stats) == 0 {
		return nil
	}
	rows := make([]string, 0, len(stats))
	args := make([]any, 0, len(stats)*statColumnCount)
	for i, st := range stats {
		placeholders := make([]string, statColumnCount)
		for c := range placeholders {
			placeholders[c] = fmt.Sprintf("$%d", i*statColumnCount+c+1)
		}
		rows = append(rows, "("+strings.Join(placeholders, ", ")+")")
		args = append(args,
			uuid.UUID(st.ID), uuid.UUID(st.AuthorityID), string(st.Action),
			nullString(st.NaturalIDOld), nullString(st.NaturalIDNew),
			nullString(st.HeadingOld), nullString(st.HeadingNew),
			nullString(st.HeadingTypeOld), nullString(st.HeadingTypeNew),
			st.SourceFileOld, st.SourceFileNew,
			st.LbTotal, st.LbUpdated, st.LbFailed, string(st.Status), nullString(st.FailCause),
			nullUserID(st.StartedByUserID), st.StartedAt, st.CompletedAt, nullJobID(st.OriginJobID),
		)
	}
	query := fmt.Sprintf(`INSERT INTO %s (%s) VALUES %s`,
		postgres.Table(tenant, postgres.TableAuthorityStats), statColumns, strings.Join(rows, ", "))
	if _, err := postgres.Conn(ctx, s.db).ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("create data stats: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, tenant id.TenantID, jobID id.JobID) (DataStat, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`,
		statColumns, postgres.Table(tenant, postgres.TableAuthorityStats))
	stat, err := scanStat(postgres.Conn(ctx, s.db).QueryRowContext(ctx, query, uuid.UUID(jobID)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return DataStat{}, sentinel.ErrNotFound
		}
		return DataStat{}, fmt.Errorf("find data stat by id: %w", err)
	}
	return stat, nil
}

func (s *PostgresStore) FindByJob(ctx context.Context, tenant id.TenantID, jobID id.JobID) ([]DataStat, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1 OR origin_job_id = $1 ORDER BY started_at`,
		statColumns, postgres.Table(tenant, postgres.TableAuthorityStats))
	rows, err := postgres.Conn(ctx, s.db).QueryContext(ctx, query, uuid.UUID(jobID))
	if err != nil {
		return nil, fmt.Errorf("find data stats by job: %w", err)
	}
	defer rows.Close()

	var out []DataStat
	for rows.Next() {
		stat, err := scanStat(rows)
		if err != nil {
			return nil, fmt.Errorf("scan data stat: %w", err)
		}
		out = append(out, stat)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate data stats: %w", err)
	}
	return out, nil
}

// SaveOutcome writes the progress fields of stat. Identity and audit fields
// are immutable once created.
func (s *PostgresStore) SaveOutcome(ctx context.Context, tenant id.TenantID, stat DataStat) error {
	query := fmt.Sprintf(`UPDATE %s
		SET lb_updated = $2, lb_failed = $3, status = $4, fail_cause = $5, completed_at = $6
		WHERE id = $1`, postgres.Table(tenant, postgres.TableAuthorityStats))
	res, err := postgres.Conn(ctx, s.db).ExecContext(ctx, query,
		uuid.UUID(stat.ID), stat.LbUpdated, stat.LbFailed, string(stat.Status),
		nullString(stat.FailCause), stat.CompletedAt)
	if err != nil {
		return fmt.Errorf("save data stat outcome: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("save data stat outcome: %w", err)
	}
	if n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) DeleteByAuthorityID(ctx context.Context, tenant id.TenantID, authorityID id.AuthorityID) (int, error) {
	query := fmt.Sprintf(`DELETE FROM %s WHERE authority_id = $1`,
		postgres.Table(tenant, postgres.TableAuthorityStats))
	res, err := postgres.Conn(ctx, s.db).ExecContext(ctx, query, uuid.UUID(authorityID))
	if err != nil {
		return 0, fmt.Errorf("delete data stats by authority: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete data stats by authority: %w", err)
	}
	return int(n), nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanStat(row rowScanner) (DataStat, error) {
	var (
		stat                           DataStat
		statID, authorityID            uuid.UUID
		action, status                 string
		naturalIDOld, naturalIDNew     sql.NullString
		headingOld, headingNew         sql.NullString
		headingTypeOld, headingTypeNew sql.NullString
		sourceFileOld, sourceFileNew   uuid.NullUUID
		failCause                      sql.NullString
		startedBy, originJobID         uuid.NullUUID
		completedAt                    sql.NullTime
	)
	err := row.Scan(&statID, &authorityID, &action, &naturalIDOld, &naturalIDNew,
		&headingOld, &headingNew, &headingTypeOld, &headingTypeNew,
		&sourceFileOld, &sourceFileNew,
		&stat.LbTotal, &stat.LbUpdated, &stat.LbFailed, &status, &failCause,
		&startedBy, &stat.StartedAt, &completedAt, &originJobID)
	if err != nil {
		return DataStat{}, err
	}
	stat.ID = id.JobID(statID)
	stat.AuthorityID = id.AuthorityID(authorityID)
	stat.Action = Action(action)
	stat.Status = Status(status)
	stat.NaturalIDOld = naturalIDOld.String
	stat.NaturalIDNew = naturalIDNew.String
	stat.HeadingOld = headingOld.String
	stat.HeadingNew = headingNew.String
	stat.HeadingTypeOld = headingTypeOld.String
	stat.HeadingTypeNew = headingTypeNew.String
	stat.FailCause = failCause.String
	if sourceFileOld.Valid {
		stat.SourceFileOld = &sourceFileOld.UUID
	}
	if sourceFileNew.Valid {
		stat.SourceFileNew = &sourceFileNew.UUID
	}
	if startedBy.Valid {
		u := id.UserID(startedBy.UUID)
		stat.StartedByUserID = &u
	}
	if originJobID.Valid {
		j := id.JobID(originJobID.UUID)
		stat.OriginJobID = &j
	}
	if completedAt.Valid {
		stat.CompletedAt = &completedAt.Time
	}
	return stat, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullUserID(u *id.UserID) uuid.NullUUID {
	if u == nil {
		return uuid.NullUUID{}
	}
	return uuid.NullUUID{UUID: uuid.UUID(*u), Valid: true}
}

func nullJobID(j *id.JobID) uuid.NullUUID {
	if j == nil {
		return uuid.NullUUID{}
	}
	return uuid.NullUUID{UUID: uuid.UUID(*j), Valid: true}
}
