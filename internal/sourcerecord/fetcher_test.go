package sourcerecord

import (
	"io"
	"log/slog"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"authlinks/internal/platform/config"
	"authlinks/internal/platform/okapi"
	id "authlinks/pkg/domain"
	dErrors "authlinks/pkg/domain-errors"
	"authlinks/pkg/testutil"
)

func newFetcher(t *testing.T, handler http.HandlerFunc) (*Fetcher, *testutil.PeerServer) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	peer := testutil.NewPeerServer(t, map[string]http.HandlerFunc{
		"/source-storage/source-records/": handler,
	})
	client := okapi.New(config.Okapi{URL: peer.URL, Timeout: time.Second}, okapi.WithLogger(logger))
	return New(client, WithLogger(logger), WithConcurrency(2)), peer
}

func TestFetchContent(t *testing.T) {
	found := id.AuthorityID(uuid.New())
	missing := id.AuthorityID(uuid.New())
	recordID := uuid.New()

	fetcher, peer := newFetcher(t, func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, missing.String()) {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		testutil.JSON(t, map[string]any{
			"id":                recordID,
			"externalIdsHolder": map[string]any{"authorityId": found},
			"parsedRecord": map[string]any{
				"content": map[string]any{"leader": "00000nz  a2200000o  4500"},
			},
		})(w, r)
	})

	ctx := testutil.TenantContext("diku", id.UserID{})
	records, err := fetcher.FetchContent(ctx, []id.AuthorityID{found, missing, found})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, found, records[0].AuthorityID)
	assert.Equal(t, recordID, records[0].RecordID)
	assert.Equal(t, "00000nz  a2200000o  4500", records[0].Content["leader"])

	reqs := peer.Requests()
	assert.Len(t, reqs, 2, "one request per distinct authority")
	for _, r := range reqs {
		assert.Equal(t, "idType=AUTHORITY", r.Query)
		assert.Equal(t, "diku", r.Tenant)
	}
}

func TestFetchContent_EmptyInput(t *testing.T) {
	fetcher, peer := newFetcher(t, testutil.Status(http.StatusOK))

	records, err := fetcher.FetchContent(testutil.TenantContext("diku", id.UserID{}), nil)
	require.NoError(t, err)
	assert.NotNil(t, records)
	assert.Empty(t, records)
	assert.Empty(t, peer.Requests())
}

func TestFetchContent_PeerFailure(t *testing.T) {
	fetcher, _ := newFetcher(t, testutil.Status(http.StatusInternalServerError))

	_, err := fetcher.FetchContent(testutil.TenantContext("diku", id.UserID{}), []id.AuthorityID{id.AuthorityID(uuid.New())})
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnavailable))
}
