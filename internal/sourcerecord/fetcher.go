// Package sourcerecord fetches the current source content of authorities
// from source storage.
package sourcerecord

import (
	"context"
	"errors"
	"log/slog"
	"net/url"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"authlinks/internal/authority/models"
	"authlinks/internal/platform/okapi"
	id "authlinks/pkg/domain"
	dErrors "authlinks/pkg/domain-errors"
	"authlinks/pkg/platform/collections"
	"authlinks/pkg/platform/sentinel"
)

const (
	recordsPath        = "source-storage/source-records/"
	defaultConcurrency = 8
)

type sourceRecordResponse struct {
	ID                uuid.UUID `json:"id"`
	ExternalIDsHolder struct {
		AuthorityID uuid.UUID `json:"authorityId"`
	} `json:"externalIdsHolder"`
	ParsedRecord struct {
		Content map[string]any `json:"content"`
	} `json:"parsedRecord"`
}

// Fetcher reads source records by authority id, one request per authority.
type Fetcher struct {
	okapi       *okapi.Client
	concurrency int
	logger      *slog.Logger
}

type Option func(*Fetcher)

func WithLogger(logger *slog.Logger) Option {
	return func(f *Fetcher) {
		f.logger = logger
	}
}

func WithConcurrency(n int) Option {
	return func(f *Fetcher) {
		if n > 0 {
			f.concurrency = n
		}
	}
}

func New(client *okapi.Client, opts ...Option) *Fetcher {
	f := &Fetcher{
		okapi:       client,
		concurrency: defaultConcurrency,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// FetchContent returns the source record of every authority that has one, in
// the order of ids. Authorities without a source record are skipped; any
// other failure fails the call.
func (f *Fetcher) FetchContent(ctx context.Context, ids []id.AuthorityID) ([]models.SourceRecord, error) {
	ids = collections.Dedupe(ids)
	if len(ids) == 0 {
		return []models.SourceRecord{}, nil
	}

	results := make([]*models.SourceRecord, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(f.concurrency)
	for i, authorityID := range ids {
		i, authorityID := i, authorityID
		g.Go(func() error {
			rec, err := f.fetchOne(gctx, authorityID)
			if err != nil {
				return err
			}
			results[i] = rec
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to fetch source records")
	}

	out := make([]models.SourceRecord, 0, len(ids))
	for _, rec := range results {
		if rec != nil {
			out = append(out, *rec)
		}
	}
	return out, nil
}

func (f *Fetcher) fetchOne(ctx context.Context, authorityID id.AuthorityID) (*models.SourceRecord, error) {
	var resp sourceRecordResponse
	err := f.okapi.GetJSON(ctx, recordsPath+authorityID.String(), url.Values{"idType": {"AUTHORITY"}}, &resp)
	if errors.Is(err, sentinel.ErrNotFound) {
		f.logger.DebugContext(ctx, "authority has no source record", "authority_id", authorityID)
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &models.SourceRecord{
		AuthorityID: authorityID,
		RecordID:    resp.ID,
		Content:     resp.ParsedRecord.Content,
	}, nil
}
