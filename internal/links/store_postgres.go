package links

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"authlinks/internal/authority/models"
	"authlinks/internal/platform/postgres"
	id "authlinks/pkg/domain"
)

// PostgresStore reads links from the tenant's instance_authority_link table.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed link store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Insert(ctx context.Context, tenant id.TenantID, links []Link) ([]Link, error) {
	query := fmt.Sprintf(`INSERT INTO %s (authority_id, instance_id, bib_record_tag, status, error_cause)
		VALUES ($1, $2, $3, $4, $5) RETURNING id`, postgres.Table(tenant, postgres.TableLinks))
	out := make([]Link, len(links))
	err := postgres.RunInTx(ctx, s.db, func(ctx context.Context) error {
		conn := postgres.Conn(ctx, s.db)
		for i, l := range links {
			if l.Status == "" {
				l.Status = models.LinkActual
			}
			err := conn.QueryRowContext(ctx, query,
				uuid.UUID(l.AuthorityID), uuid.UUID(l.InstanceID), l.BibRecordTag, string(l.Status),
				sql.NullString{String: l.ErrorCause, Valid: l.ErrorCause != ""},
			).Scan(&l.ID)
			if err != nil {
				return fmt.Errorf("insert link: %w", err)
			}
			out[i] = l
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *PostgresStore) CountByAuthorityIDs(ctx context.Context, tenant id.TenantID, authorityIDs []id.AuthorityID) (map[id.AuthorityID]int, error) {
	counts := make(map[id.AuthorityID]int)
	if len(authorityIDs) == 0 {
		return counts, nil
	}
	ids := make([]string, len(authorityIDs))
	for i, a := range authorityIDs {
		ids[i] = a.String()
	}
	query := fmt.Sprintf(`SELECT authority_id, count(*) FROM %s
		WHERE authority_id = ANY($1::uuid[])
		GROUP BY authority_id`, postgres.Table(tenant, postgres.TableLinks))
	rows, err := postgres.Conn(ctx, s.db).QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("count links by authority: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			authorityID uuid.UUID
			n           int
		)
		if err := rows.Scan(&authorityID, &n); err != nil {
			return nil, fmt.Errorf("scan link count: %w", err)
		}
		counts[id.AuthorityID(authorityID)] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate link counts: %w", err)
	}
	return counts, nil
}

func (s *PostgresStore) UpdateStatusByIDs(ctx context.Context, tenant id.TenantID, linkIDs []int64, status models.LinkStatus, errorCause string) error {
	if len(linkIDs) == 0 {
		return nil
	}
	query := fmt.Sprintf(`UPDATE %s SET status = $2, error_cause = $3, updated_at = now()
		WHERE id = ANY($1::bigint[])`, postgres.Table(tenant, postgres.TableLinks))
	_, err := postgres.Conn(ctx, s.db).ExecContext(ctx, query,
		pq.Array(linkIDs), string(status), sql.NullString{String: errorCause, Valid: errorCause != ""})
	if err != nil {
		return fmt.Errorf("update link status by ids: %w", err)
	}
	return nil
}

func (s *PostgresStore) UpdateStatusByAuthorityID(ctx context.Context, tenant id.TenantID, authorityID id.AuthorityID, status models.LinkStatus, errorCause string) error {
	query := fmt.Sprintf(`UPDATE %s SET status = $2, error_cause = $3, updated_at = now()
		WHERE authority_id = $1`, postgres.Table(tenant, postgres.TableLinks))
	_, err := postgres.Conn(ctx, s.db).ExecContext(ctx, query,
		uuid.UUID(authorityID), string(status), sql.NullString{String: errorCause, Valid: errorCause != ""})
	if err != nil {
		return fmt.Errorf("update link status by authority: %w", err)
	}
	return nil
}
