package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/lib/pq"

	id "authlinks/pkg/domain"
)

var tenantDDL = []string{
	`CREATE SCHEMA IF NOT EXISTS {schema}`,
	`CREATE TABLE IF NOT EXISTS {schema}.instance_authority_link (
		id             BIGSERIAL PRIMARY KEY,
		authority_id   UUID NOT NULL,
		instance_id    UUID NOT NULL,
		bib_record_tag TEXT,
		status         TEXT NOT NULL DEFAULT 'ACTUAL',
		error_cause    TEXT,
		created_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at     TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_instance_authority_link_authority_id
		ON {schema}.instance_authority_link (authority_id)`,
	`CREATE TABLE IF NOT EXISTS {schema}.authority_data_stat (
		id                        UUID PRIMARY KEY,
		authority_id              UUID NOT NULL,
		action                    TEXT NOT NULL,
		authority_natural_id_old  TEXT,
		authority_natural_id_new  TEXT,
		heading_old               TEXT,
		heading_new               TEXT,
		heading_type_old          TEXT,
		heading_type_new          TEXT,
		authority_source_file_old UUID,
		authority_source_file_new UUID,
		lb_total                  INTEGER NOT NULL DEFAULT 0,
		lb_updated                INTEGER NOT NULL DEFAULT 0,
		lb_failed                 INTEGER NOT NULL DEFAULT 0,
		status                    TEXT NOT NULL,
		fail_cause                TEXT,
		started_by_user_id        UUID,
		started_at                TIMESTAMPTZ NOT NULL,
		completed_at              TIMESTAMPTZ,
		origin_job_id             UUID
	)`,
	`CREATE INDEX IF NOT EXISTS idx_authority_data_stat_authority_id
		ON {schema}.authority_data_stat (authority_id)`,
	`CREATE INDEX IF NOT EXISTS idx_authority_data_stat_origin_job_id
		ON {schema}.authority_data_stat (origin_job_id)`,
}

// EnsureTenantSchema creates tenant's schema and tables if they are missing.
func EnsureTenantSchema(ctx context.Context, db *sql.DB, tenant id.TenantID) error {
	schema := pq.QuoteIdentifier(SchemaName(tenant))
	return RunInTx(ctx, db, func(ctx context.Context) error {
		conn := Conn(ctx, db)
		for _, stmt := range tenantDDL {
			if _, err := conn.ExecContext(ctx, strings.ReplaceAll(stmt, "{schema}", schema)); err != nil {
				return fmt.Errorf("bootstrap schema %s: %w", schema, err)
			}
		}
		return nil
	})
}
