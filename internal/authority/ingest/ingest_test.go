package ingest

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"slices"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"authlinks/internal/authority/change"
	"authlinks/internal/authority/diff"
	"authlinks/internal/authority/handler"
	"authlinks/internal/authority/ingest/mocks"
	"authlinks/internal/authority/models"
	"authlinks/internal/authority/stats"
	"authlinks/internal/links"
	"authlinks/internal/platform/metrics"
	"authlinks/internal/tenant"
	id "authlinks/pkg/domain"
	"authlinks/pkg/platform/batch"
	"authlinks/pkg/requestcontext"
)

//go:generate mockgen -source=ingest.go -destination=mocks/ingest_mocks.go -package=mocks

var fastPolicy = batch.Policy{MaxRetries: 1, InitialInterval: time.Millisecond, MaxInterval: time.Millisecond}

type staticTags map[models.Field]string

func (t staticTags) TagFor(_ context.Context, field models.Field) (string, bool, error) {
	tag, ok := t[field]
	return tag, ok, nil
}

type published struct {
	tenant id.TenantID
	events []models.Notification
}

type CoordinatorSuite struct {
	suite.Suite
	ctrl        *gomock.Controller
	linkStore   *links.InMemoryStore
	statStore   *stats.InMemoryStore
	sources     *mocks.MockSourceFetcher
	publisher   *mocks.MockPublisher
	propagator  *mocks.MockPropagator
	coordinator *Coordinator
	published   []published
	user        id.UserID
}

func TestCoordinatorSuite(t *testing.T) {
	suite.Run(t, new(CoordinatorSuite))
}

func (s *CoordinatorSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	tags := staticTags{
		models.FieldPersonalName:  "100",
		models.FieldCorporateName: "110",
		models.FieldTopicalTerm:   "150",
	}

	s.linkStore = links.NewInMemoryStore()
	s.statStore = stats.NewInMemoryStore()
	s.sources = mocks.NewMockSourceFetcher(s.ctrl)
	s.publisher = mocks.NewMockPublisher(s.ctrl)
	s.propagator = mocks.NewMockPropagator(s.ctrl)
	s.published = nil
	s.user = id.UserID(uuid.New())

	service := stats.New(s.statStore, s.linkStore, stats.WithLogger(logger))
	s.coordinator = New(Deps{
		Runner:     tenant.NewExecutor(tenant.WithLogger(logger)),
		Links:      links.NewResolver(s.linkStore),
		Differ:     diff.New(diff.WithLogger(logger)),
		Sources:    s.sources,
		Recorder:   stats.NewRecorder(service, tags, stats.WithRecorderLogger(logger)),
		Dispatcher: handler.New(tags, handler.WithLogger(logger)),
		Publisher:  s.publisher,
		Propagator: s.propagator,
	}, WithLogger(logger), WithMetrics(metrics.New(prometheus.NewRegistry())), WithPolicy(fastPolicy))
}

func (s *CoordinatorSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *CoordinatorSuite) capturePublished() *gomock.Call {
	return s.publisher.EXPECT().Publish(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, events []models.Notification, tenant id.TenantID) error {
			s.published = append(s.published, published{tenant: tenant, events: events})
			return nil
		})
}

func (s *CoordinatorSuite) seedLinks(tenant id.TenantID, authorityID id.AuthorityID, n int) {
	batch := make([]links.Link, n)
	for i := range batch {
		batch[i] = links.Link{AuthorityID: authorityID, InstanceID: id.InstanceID(uuid.New()), BibRecordTag: "100"}
	}
	_, err := s.linkStore.Insert(context.Background(), tenant, batch)
	s.Require().NoError(err)
}

func (s *CoordinatorSuite) updateEvent(tenant id.TenantID, old, updated *models.Snapshot) models.Event {
	authorityID := id.AuthorityID(uuid.New())
	old.ID, updated.ID = authorityID, authorityID
	return models.Event{ID: authorityID, Type: models.EventUpdate, Old: old, New: updated, Tenant: tenant, UserID: s.user}
}

func (s *CoordinatorSuite) deleteEvent(tenant id.TenantID, sub models.DeleteSubType, old *models.Snapshot) models.Event {
	authorityID := id.AuthorityID(uuid.New())
	old.ID = authorityID
	return models.Event{ID: authorityID, Type: models.EventDelete, DeleteSubType: sub, Old: old, Tenant: tenant, UserID: s.user}
}

func heading(naturalID string, field models.Field, value string) *models.Snapshot {
	return &models.Snapshot{NaturalID: naturalID, Headings: map[models.Field]string{field: value}}
}

func (s *CoordinatorSuite) allEvents() []models.Notification {
	var out []models.Notification
	for _, p := range s.published {
		out = append(out, p.events...)
	}
	return out
}

func (s *CoordinatorSuite) TestNaturalIDRename() {
	ev := s.updateEvent("diku", heading("n1", models.FieldPersonalName, "Twain, Mark"), heading("n2", models.FieldPersonalName, "Twain, Mark"))
	s.seedLinks("diku", ev.ID, 3)
	s.capturePublished()
	s.propagator.EXPECT().Propagate(gomock.Any(), gomock.Len(1), id.TenantID("diku")).Return(0)

	s.Require().NoError(s.coordinator.Ingest(context.Background(), []models.Event{ev}))

	events := s.allEvents()
	s.Require().Len(events, 1)
	n := events[0]
	s.Equal(change.TypeUpdate, n.Type)
	s.Equal("n1", n.NaturalIDOld)
	s.Equal("n2", n.NaturalIDNew)
	s.Equal(3, n.LinkCount)
	s.Equal("100", n.HeadingTag)
	s.Nil(n.SourceRecord, "a pure rename needs no source content")

	stat, err := s.statStore.FindByID(context.Background(), "diku", n.JobID)
	s.Require().NoError(err)
	s.Equal(stats.ActionUpdateNaturalID, stat.Action)
	s.Equal(3, stat.LbTotal)
	s.Equal(ev.ID, stat.AuthorityID)
}

func (s *CoordinatorSuite) TestHeadingCategoryChangeIsDelete() {
	ev := s.updateEvent("diku", heading("n1", models.FieldPersonalName, "Smith, J."), heading("n1", models.FieldCorporateName, "Acme"))
	s.seedLinks("diku", ev.ID, 1)
	s.capturePublished()
	s.propagator.EXPECT().Propagate(gomock.Any(), gomock.Len(1), id.TenantID("diku")).Return(0)

	s.Require().NoError(s.coordinator.Ingest(context.Background(), []models.Event{ev}))

	events := s.allEvents()
	s.Require().Len(events, 1)
	s.Equal(change.TypeDelete, events[0].Type)
	s.Equal(1, events[0].LinkCount)
	s.Equal("100", events[0].HeadingTag)
	s.True(events[0].JobID.IsNil(), "delete actions get no data stat")
}

func (s *CoordinatorSuite) TestHeadingUpdateCarriesSourceRecord() {
	ev := s.updateEvent("diku", heading("n1", models.FieldTopicalTerm, "Cats"), heading("n1", models.FieldTopicalTerm, "Domestic cats"))
	s.seedLinks("diku", ev.ID, 2)
	source := models.SourceRecord{AuthorityID: ev.ID, RecordID: uuid.New(), Content: map[string]any{"leader": "x"}}

	s.sources.EXPECT().FetchContent(gomock.Any(), []id.AuthorityID{ev.ID}).DoAndReturn(
		func(ctx context.Context, _ []id.AuthorityID) ([]models.SourceRecord, error) {
			s.Equal(id.TenantID("diku"), requestcontext.TenantID(ctx))
			return []models.SourceRecord{source}, nil
		})
	s.capturePublished()
	s.propagator.EXPECT().Propagate(gomock.Any(), gomock.Any(), gomock.Any()).Return(0)

	s.Require().NoError(s.coordinator.Ingest(context.Background(), []models.Event{ev}))

	events := s.allEvents()
	s.Require().Len(events, 1)
	s.Require().NotNil(events[0].SourceRecord)
	s.Equal(source.RecordID, events[0].SourceRecord.RecordID)
	s.Equal("150", events[0].HeadingTag)
}

func (s *CoordinatorSuite) TestProcessabilityGate() {
	unlinked := s.updateEvent("diku", heading("n1", models.FieldTopicalTerm, "Cats"), heading("n1", models.FieldTopicalTerm, "Dogs"))
	soft := s.deleteEvent("diku", models.SoftDelete, heading("n2", models.FieldTopicalTerm, "Birds"))
	hard := s.deleteEvent("diku", models.HardDelete, heading("n3", models.FieldTopicalTerm, "Fish"))
	s.seedLinks("diku", hard.ID, 4)

	s.capturePublished()
	var propagated []change.Record
	s.propagator.EXPECT().Propagate(gomock.Any(), gomock.Any(), id.TenantID("diku")).DoAndReturn(
		func(_ context.Context, records []change.Record, _ id.TenantID) int {
			propagated = records
			return 0
		})

	s.Require().NoError(s.coordinator.Ingest(context.Background(), []models.Event{unlinked, soft, hard}))

	events := s.allEvents()
	s.Require().Len(events, 1, "only the soft delete is processable")
	s.Equal(soft.ID, events[0].AuthorityID)
	s.Equal(change.TypeDelete, events[0].Type)

	var propagatedIDs []id.AuthorityID
	for _, rec := range propagated {
		propagatedIDs = append(propagatedIDs, rec.AuthorityID())
	}
	s.Equal([]id.AuthorityID{unlinked.ID, soft.ID}, propagatedIDs, "hard deletes are never propagated")
}

func (s *CoordinatorSuite) TestEventsWithoutChangesAreDropped() {
	ev := s.updateEvent("diku", heading("n1", models.FieldTopicalTerm, "Cats"), heading("n1", models.FieldTopicalTerm, "Cats"))
	s.seedLinks("diku", ev.ID, 2)

	s.Require().NoError(s.coordinator.Ingest(context.Background(), []models.Event{ev}))
	s.Empty(s.published)
}

// Justification: one malformed event must not keep its siblings from being
// published.
func (s *CoordinatorSuite) TestMalformedEventIsIsolated() {
	good1 := s.updateEvent("diku", heading("n1", models.FieldPersonalName, "A"), heading("n1b", models.FieldPersonalName, "A"))
	good2 := s.updateEvent("diku", heading("n2", models.FieldPersonalName, "B"), heading("n2b", models.FieldPersonalName, "B"))
	broken := models.Event{ID: id.AuthorityID(uuid.New()), Type: models.EventUpdate, Old: heading("n3", models.FieldPersonalName, "C"), Tenant: "diku", UserID: s.user}
	for _, ev := range []models.Event{good1, good2, broken} {
		s.seedLinks("diku", ev.ID, 1)
	}
	s.capturePublished()
	s.propagator.EXPECT().Propagate(gomock.Any(), gomock.Len(2), gomock.Any()).Return(0)

	s.Require().NoError(s.coordinator.Ingest(context.Background(), []models.Event{good1, broken, good2}))

	events := s.allEvents()
	s.Require().Len(events, 2)
	s.Equal(good1.ID, events[0].AuthorityID)
	s.Equal(good2.ID, events[1].AuthorityID)
}

func (s *CoordinatorSuite) TestFailingSubBatchFallsBackToSingleEvents() {
	good1 := s.updateEvent("diku", heading("n1", models.FieldPersonalName, "A"), heading("n1", models.FieldPersonalName, "A."))
	poison := s.updateEvent("diku", heading("n2", models.FieldPersonalName, "B"), heading("n2", models.FieldPersonalName, "B."))
	good2 := s.updateEvent("diku", heading("n3", models.FieldPersonalName, "C"), heading("n3", models.FieldPersonalName, "C."))
	for _, ev := range []models.Event{good1, poison, good2} {
		s.seedLinks("diku", ev.ID, 1)
	}

	s.sources.EXPECT().FetchContent(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, ids []id.AuthorityID) ([]models.SourceRecord, error) {
			if slices.Contains(ids, poison.ID) {
				return nil, errors.New("source storage timeout")
			}
			return nil, nil
		}).AnyTimes()
	s.capturePublished().Times(2)
	s.propagator.EXPECT().Propagate(gomock.Any(), gomock.Len(1), gomock.Any()).Return(0).Times(2)

	s.Require().NoError(s.coordinator.Ingest(context.Background(), []models.Event{good1, poison, good2}))

	events := s.allEvents()
	s.Require().Len(events, 2)
	s.Equal(good1.ID, events[0].AuthorityID)
	s.Equal(good2.ID, events[1].AuthorityID)
}

func (s *CoordinatorSuite) TestPublishFailureDoesNotStopOtherGroupsOrPropagation() {
	update := s.updateEvent("diku", heading("n1", models.FieldPersonalName, "A"), heading("n1b", models.FieldPersonalName, "A"))
	soft := s.deleteEvent("diku", models.SoftDelete, heading("n2", models.FieldPersonalName, "B"))
	s.seedLinks("diku", update.ID, 1)

	gomock.InOrder(
		s.publisher.EXPECT().Publish(gomock.Any(), gomock.Any(), id.TenantID("diku")).Return(errors.New("broker unavailable")),
		s.capturePublished(),
	)
	s.propagator.EXPECT().Propagate(gomock.Any(), gomock.Len(2), id.TenantID("diku")).Return(1)

	s.Require().NoError(s.coordinator.Ingest(context.Background(), []models.Event{update, soft}))

	events := s.allEvents()
	s.Require().Len(events, 1)
	s.Equal(change.TypeDelete, events[0].Type)
}

func (s *CoordinatorSuite) TestSubBatchesRunPerTenantThenUser() {
	runner := mocks.NewMockRunner(s.ctrl)
	coordinator := New(Deps{Runner: runner}, WithPolicy(fastPolicy))

	u1, u2 := id.UserID(uuid.New()), id.UserID(uuid.New())
	ev := func(tenant id.TenantID, user id.UserID) models.Event {
		return models.Event{ID: id.AuthorityID(uuid.New()), Type: models.EventUpdate, Tenant: tenant, UserID: user}
	}
	events := []models.Event{ev("t1", u1), ev("t2", u1), ev("t1", u2), ev("t1", u1)}

	type call struct {
		tenant id.TenantID
		user   id.UserID
	}
	var calls []call
	runner.EXPECT().Run(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, tenant id.TenantID, user id.UserID, _ func(context.Context) error) error {
			calls = append(calls, call{tenant, user})
			return nil
		}).Times(3)

	s.Require().NoError(coordinator.Ingest(context.Background(), events))
	s.Equal([]call{{"t1", u1}, {"t1", u2}, {"t2", u1}}, calls)
}

func TestGroupKeepsArrivalOrderWithinSubBatch(t *testing.T) {
	user := id.UserID(uuid.New())
	a := models.Event{ID: id.AuthorityID(uuid.New()), Tenant: "diku", UserID: user}
	b := models.Event{ID: id.AuthorityID(uuid.New()), Tenant: "diku", UserID: user}
	c := models.Event{ID: id.AuthorityID(uuid.New()), Tenant: "diku", UserID: user}

	groups := group([]models.Event{a, b, c})
	if len(groups) != 1 {
		t.Fatalf("expected one sub-batch, got %d", len(groups))
	}
	got := []id.AuthorityID{groups[0].events[0].ID, groups[0].events[1].ID, groups[0].events[2].ID}
	if !slices.Equal(got, []id.AuthorityID{a.ID, b.ID, c.ID}) {
		t.Fatalf("order not preserved: %v", got)
	}
}
