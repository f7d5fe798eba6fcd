package consortium

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"authlinks/internal/authority/change"
	"authlinks/internal/authority/models"
	"authlinks/internal/authority/stats"
	statsmocks "authlinks/internal/authority/stats/mocks"
	"authlinks/internal/consortium/mocks"
	"authlinks/internal/links"
	"authlinks/internal/platform/async"
	"authlinks/internal/platform/metrics"
	"authlinks/internal/tenant"
	id "authlinks/pkg/domain"
	"authlinks/pkg/requestcontext"
	"authlinks/pkg/testutil"
)

//go:generate mockgen -source=propagator.go -destination=mocks/propagator_mocks.go -package=mocks
//go:generate mockgen -source=links.go -destination=mocks/links_mocks.go -package=mocks
//go:generate mockgen -source=stats.go -destination=mocks/stats_mocks.go -package=mocks

const (
	centralTenant  id.TenantID = "central"
	memberTenantID id.TenantID = "university"
	otherMember    id.TenantID = "college"
)

type PropagatorSuite struct {
	suite.Suite
	ctrl       *gomock.Controller
	logger     *slog.Logger
	metrics    *metrics.Metrics
	members    *mocks.MockMembers
	dispatcher *mocks.MockDispatcher
	publisher  *mocks.MockPublisher
	pool       *async.Pool
	executor   *tenant.Executor
	linkStore  *links.InMemoryStore
	statStore  *stats.InMemoryStore
	recorder   *stats.Recorder
	user       id.UserID
	ctx        context.Context
}

func TestPropagatorSuite(t *testing.T) {
	suite.Run(t, new(PropagatorSuite))
}

func (s *PropagatorSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	s.metrics = metrics.New(prometheus.NewRegistry())
	s.members = mocks.NewMockMembers(s.ctrl)
	s.dispatcher = mocks.NewMockDispatcher(s.ctrl)
	s.publisher = mocks.NewMockPublisher(s.ctrl)

	s.pool = async.New(2, 8, async.WithLogger(s.logger))
	s.pool.Start(context.Background())
	s.executor = tenant.NewExecutor(tenant.WithLogger(s.logger))

	s.linkStore = links.NewInMemoryStore()
	s.statStore = stats.NewInMemoryStore()
	tags := statsmocks.NewMockTagLookup(s.ctrl)
	tags.EXPECT().TagFor(gomock.Any(), gomock.Any()).Return("100", true, nil).AnyTimes()
	service := stats.New(s.statStore, statsmocks.NewMockLinkStatusUpdater(s.ctrl), stats.WithLogger(s.logger))
	s.recorder = stats.NewRecorder(service, tags, stats.WithRecorderLogger(s.logger))

	s.user = id.UserID(uuid.New())
	s.ctx = testutil.TenantContext(centralTenant, s.user)
}

func (s *PropagatorSuite) TearDownTest() {
	s.pool.Close()
	s.ctrl.Finish()
}

func (s *PropagatorSuite) linkPropagator() *LinkPropagator {
	return NewLinkPropagator(
		s.members,
		s.pool,
		s.executor,
		links.NewResolver(s.linkStore),
		s.recorder,
		s.dispatcher,
		s.publisher,
		WithLogger(s.logger),
		WithMetrics(s.metrics),
	)
}

func (s *PropagatorSuite) seedLinks(tenant id.TenantID, authorityID id.AuthorityID, n int) {
	batch := make([]links.Link, n)
	for i := range batch {
		batch[i] = links.Link{AuthorityID: authorityID, InstanceID: id.InstanceID(uuid.New()), BibRecordTag: "100"}
	}
	_, err := s.linkStore.Insert(context.Background(), tenant, batch)
	s.Require().NoError(err)
}

// headingUpdate classifies a personal name change for an authority with the
// given central link count.
func (s *PropagatorSuite) headingUpdate(authorityID id.AuthorityID, linkCount int) change.Record {
	rec, err := change.Classify(models.Event{
		ID:     authorityID,
		Type:   models.EventUpdate,
		Old:    &models.Snapshot{ID: authorityID, NaturalID: "n1", Headings: map[models.Field]string{models.FieldPersonalName: "Twain, Mark"}},
		New:    &models.Snapshot{ID: authorityID, NaturalID: "n1", Headings: map[models.Field]string{models.FieldPersonalName: "Twain, Mark, 1835-1910"}},
		Tenant: centralTenant,
		UserID: s.user,
	}, models.Changes{
		models.FieldPersonalName: {Field: models.FieldPersonalName, Old: "Twain, Mark", New: "Twain, Mark, 1835-1910"},
	}, linkCount)
	s.Require().NoError(err)
	return rec
}

// echoDispatch builds one notification per record the way the handlers do.
func echoDispatch(ctx context.Context, changeType change.Type, records []change.Record) ([]models.Notification, error) {
	out := make([]models.Notification, 0, len(records))
	for _, rec := range records {
		jobID, _ := rec.StatID()
		out = append(out, models.Notification{
			JobID:       jobID,
			Type:        changeType,
			Tenant:      requestcontext.TenantID(ctx),
			AuthorityID: rec.AuthorityID(),
			LinkCount:   rec.LinkCount(),
		})
	}
	return out, nil
}

// Justification: the member notification must count only the member's own
// links while the member's data stat adds the central links on top.
func (s *PropagatorSuite) TestLinkPropagationRecountsInMemberTenant() {
	authorityID := id.AuthorityID(uuid.New())
	s.seedLinks(centralTenant, authorityID, 2)
	s.seedLinks(memberTenantID, authorityID, 5)

	centralStatID := id.JobID(uuid.New())
	original := s.headingUpdate(authorityID, 2).WithStatID(centralStatID)

	var (
		mu        sync.Mutex
		published []models.Notification
		actedAs   id.UserID
	)
	s.members.EXPECT().MembersOf(gomock.Any(), centralTenant).Return([]id.TenantID{memberTenantID}, nil)
	s.dispatcher.EXPECT().Dispatch(gomock.Any(), change.TypeUpdate, gomock.Any()).DoAndReturn(
		func(ctx context.Context, changeType change.Type, records []change.Record) ([]models.Notification, error) {
			mu.Lock()
			actedAs = requestcontext.UserID(ctx)
			mu.Unlock()
			return echoDispatch(ctx, changeType, records)
		})
	s.publisher.EXPECT().Publish(gomock.Any(), gomock.Any(), memberTenantID).DoAndReturn(
		func(_ context.Context, events []models.Notification, _ id.TenantID) error {
			mu.Lock()
			defer mu.Unlock()
			published = append(published, events...)
			return nil
		})

	submitted := s.linkPropagator().Propagate(s.ctx, []change.Record{original}, centralTenant)
	s.Equal(1, submitted)
	s.pool.Close()

	s.Require().Len(published, 1)
	s.Equal(5, published[0].LinkCount)
	s.Equal(memberTenantID, published[0].Tenant)
	s.Equal(s.user, actedAs)

	memberStats, err := s.statStore.FindByJob(context.Background(), memberTenantID, centralStatID)
	s.Require().NoError(err)
	s.Require().Len(memberStats, 1)
	s.Equal(7, memberStats[0].LbTotal)
	s.Require().NotNil(memberStats[0].OriginJobID)
	s.Equal(centralStatID, *memberStats[0].OriginJobID)
	s.Equal(published[0].JobID, memberStats[0].ID)

	s.Equal(2, original.LinkCount(), "the central record is never modified")
	statID, _ := original.StatID()
	s.Equal(centralStatID, statID)
}

func (s *PropagatorSuite) TestLinkPropagationSkipsMembersWithoutLinks() {
	authorityID := id.AuthorityID(uuid.New())
	s.seedLinks(centralTenant, authorityID, 3)

	s.members.EXPECT().MembersOf(gomock.Any(), centralTenant).Return([]id.TenantID{memberTenantID}, nil)

	s.Equal(1, s.linkPropagator().Propagate(s.ctx, []change.Record{s.headingUpdate(authorityID, 3)}, centralTenant))
	s.pool.Close()

	memberStats, err := s.statStore.FindByJob(context.Background(), memberTenantID, id.JobID(uuid.New()))
	s.Require().NoError(err)
	s.Empty(memberStats)
}

func (s *PropagatorSuite) TestMembershipFailureSkipsPropagation() {
	s.members.EXPECT().MembersOf(gomock.Any(), centralTenant).
		Return(nil, errors.Join(ErrIntegrationUnavailable, errors.New("connection refused")))

	s.Zero(s.linkPropagator().Propagate(s.ctx, []change.Record{s.headingUpdate(id.AuthorityID(uuid.New()), 1)}, centralTenant))
}

func (s *PropagatorSuite) TestNoMembersIsNoop() {
	s.members.EXPECT().MembersOf(gomock.Any(), id.TenantID("diku")).Return([]id.TenantID{}, nil)

	s.Zero(s.linkPropagator().Propagate(s.ctx, []change.Record{s.headingUpdate(id.AuthorityID(uuid.New()), 1)}, "diku"))
}

func (s *PropagatorSuite) TestEmptyRecordsSkipMembershipLookup() {
	s.Zero(s.linkPropagator().Propagate(s.ctx, nil, centralTenant))
}

func (s *PropagatorSuite) TestRejectedSubmissionIsNotRetried() {
	submitter := mocks.NewMockSubmitter(s.ctrl)
	submitter.EXPECT().Submit(gomock.Any()).Return(async.ErrQueueFull).Times(2)
	s.members.EXPECT().MembersOf(gomock.Any(), centralTenant).Return([]id.TenantID{memberTenantID, otherMember}, nil)

	propagator := NewLinkPropagator(s.members, submitter, s.executor, links.NewResolver(s.linkStore),
		s.recorder, s.dispatcher, s.publisher, WithLogger(s.logger), WithMetrics(s.metrics))

	s.Zero(propagator.Propagate(s.ctx, []change.Record{s.headingUpdate(id.AuthorityID(uuid.New()), 1)}, centralTenant))
}

func (s *PropagatorSuite) TestMemberFailureDoesNotAffectSiblings() {
	authorityID := id.AuthorityID(uuid.New())
	service := mocks.NewMockStatsService(s.ctrl)

	var (
		mu      sync.Mutex
		deleted []id.TenantID
	)
	service.EXPECT().DeleteByAuthorityID(gomock.Any(), authorityID).DoAndReturn(
		func(ctx context.Context, _ id.AuthorityID) error {
			tenant := requestcontext.TenantID(ctx)
			mu.Lock()
			deleted = append(deleted, tenant)
			mu.Unlock()
			if tenant == otherMember {
				return errors.New("relation does not exist")
			}
			return nil
		}).Times(2)
	s.members.EXPECT().MembersOf(gomock.Any(), centralTenant).Return([]id.TenantID{otherMember, memberTenantID}, nil)

	propagator := NewStatsPropagator(s.members, s.pool, s.executor, service, links.NewResolver(s.linkStore),
		WithLogger(s.logger), WithMetrics(s.metrics))
	s.Equal(2, propagator.Propagate(s.ctx, ForDelete(authorityID), centralTenant, PropagationDelete))
	s.pool.Close()

	s.ElementsMatch([]id.TenantID{otherMember, memberTenantID}, deleted)
}

func (s *PropagatorSuite) TestStatsCreateAddsMemberLinks() {
	authorityID := id.AuthorityID(uuid.New())
	s.seedLinks(memberTenantID, authorityID, 5)
	service := mocks.NewMockStatsService(s.ctrl)

	centralStat := stats.DataStat{
		ID:          id.JobID(uuid.New()),
		AuthorityID: authorityID,
		Action:      stats.ActionUpdateHeading,
		LbTotal:     2,
		LbUpdated:   1,
		Status:      stats.StatusInProgress,
		StartedAt:   time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC),
	}

	var created []stats.DataStat
	service.EXPECT().CreateInBatch(gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, batch []stats.DataStat) ([]stats.DataStat, error) {
			s.Equal(memberTenantID, requestcontext.TenantID(ctx))
			created = batch
			return batch, nil
		})
	s.members.EXPECT().MembersOf(gomock.Any(), centralTenant).Return([]id.TenantID{memberTenantID}, nil)

	propagator := NewStatsPropagator(s.members, s.pool, s.executor, service, links.NewResolver(s.linkStore),
		WithLogger(s.logger))
	s.Equal(1, propagator.Propagate(s.ctx, ForCreate([]stats.DataStat{centralStat}), centralTenant, PropagationCreate))
	s.pool.Close()

	s.Require().Len(created, 1)
	s.Equal(7, created[0].LbTotal)
	s.Zero(created[0].LbUpdated)
	s.True(created[0].ID.IsNil())
	s.Require().NotNil(created[0].OriginJobID)
	s.Equal(centralStat.ID, *created[0].OriginJobID)
	s.Equal(2, centralStat.LbTotal)
}

func (s *PropagatorSuite) TestStatsUpdateAppliesReportsOnly() {
	service := mocks.NewMockStatsService(s.ctrl)
	jobID := id.JobID(uuid.New())
	reports := []models.LinkUpdateReport{{JobID: jobID, Status: models.ReportSuccess, LinkIDs: []int64{1, 2}}}

	done := make(chan struct{})
	service.EXPECT().UpdateOnlyStatsForReports(gomock.Any(), jobID, reports).DoAndReturn(
		func(ctx context.Context, _ id.JobID, _ []models.LinkUpdateReport) error {
			defer close(done)
			s.Equal(memberTenantID, requestcontext.TenantID(ctx))
			return nil
		})
	s.members.EXPECT().MembersOf(gomock.Any(), centralTenant).Return([]id.TenantID{memberTenantID}, nil)

	propagator := NewStatsPropagator(s.members, s.pool, s.executor, service, links.NewResolver(s.linkStore))
	propagator.Propagate(s.ctx, ForUpdate(jobID, reports), centralTenant, PropagationUpdate)

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		s.Fail("update was not propagated")
	}
}
