package stats

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"authlinks/internal/authority/change"
	"authlinks/internal/authority/models"
	"authlinks/internal/authority/stats/mocks"
	id "authlinks/pkg/domain"
	"authlinks/pkg/testutil"
)

type RecorderSuite struct {
	suite.Suite
	ctrl     *gomock.Controller
	tags     *mocks.MockTagLookup
	store    *InMemoryStore
	recorder *Recorder
	ctx      context.Context
	user     id.UserID
}

func TestRecorderSuite(t *testing.T) {
	suite.Run(t, new(RecorderSuite))
}

func (s *RecorderSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.tags = mocks.NewMockTagLookup(s.ctrl)
	s.store = NewInMemoryStore()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	service := New(s.store, mocks.NewMockLinkStatusUpdater(s.ctrl), WithLogger(logger))
	s.recorder = NewRecorder(service, s.tags, WithRecorderLogger(logger))
	s.user = id.UserID(uuid.New())
	s.ctx = testutil.FixedTime(testutil.TenantContext(testTenant, s.user), fixedNow)
}

func (s *RecorderSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *RecorderSuite) classify(old, updated *models.Snapshot, changes models.Changes, links int) change.Record {
	rec, err := change.Classify(models.Event{
		ID:     id.AuthorityID(uuid.New()),
		Type:   models.EventUpdate,
		Old:    old,
		New:    updated,
		Tenant: testTenant,
	}, changes, links)
	s.Require().NoError(err)
	return rec
}

func (s *RecorderSuite) TestNaturalIDRenameIsRecorded() {
	rec := s.classify(
		&models.Snapshot{NaturalID: "n1"},
		&models.Snapshot{NaturalID: "n2", Metadata: &models.Metadata{UpdatedByUserID: &s.user}},
		models.Changes{models.FieldNaturalID: {Field: models.FieldNaturalID, Old: "n1", New: "n2"}},
		3,
	)

	out, created, err := s.recorder.Record(s.ctx, []change.Record{rec})
	s.Require().NoError(err)
	s.Require().Len(created, 1)

	stat := created[0]
	s.Equal(ActionUpdateNaturalID, stat.Action)
	s.Equal("n1", stat.NaturalIDOld)
	s.Equal("n2", stat.NaturalIDNew)
	s.Equal(3, stat.LbTotal)
	s.Equal(StatusInProgress, stat.Status)
	s.Require().NotNil(stat.StartedByUserID)
	s.Equal(s.user, *stat.StartedByUserID)
	s.Empty(stat.HeadingOld)

	statID, ok := out[0].StatID()
	s.True(ok)
	s.Equal(stat.ID, statID)
	_, ok = rec.StatID()
	s.False(ok, "input records are not modified")
}

func (s *RecorderSuite) TestHeadingChangeUsesMappedTag() {
	rec := s.classify(
		&models.Snapshot{NaturalID: "n1"},
		&models.Snapshot{NaturalID: "n1"},
		models.Changes{models.FieldPersonalName: {Field: models.FieldPersonalName, Old: "Smith, J.", New: "Smith, John"}},
		1,
	)
	s.tags.EXPECT().TagFor(gomock.Any(), models.FieldPersonalName).Return("100", true, nil)

	_, created, err := s.recorder.Record(s.ctx, []change.Record{rec})
	s.Require().NoError(err)
	s.Require().Len(created, 1)
	s.Equal(ActionUpdateHeading, created[0].Action)
	s.Equal("Smith, J.", created[0].HeadingOld)
	s.Equal("Smith, John", created[0].HeadingNew)
	s.Equal("100", created[0].HeadingTypeOld)
	s.Equal("100", created[0].HeadingTypeNew)
}

func (s *RecorderSuite) TestTagLookupFailureFallsBackToFieldName() {
	rec := s.classify(
		&models.Snapshot{},
		&models.Snapshot{},
		models.Changes{models.FieldTopicalTerm: {Field: models.FieldTopicalTerm, Old: "Cats", New: "Felines"}},
		1,
	)
	s.tags.EXPECT().TagFor(gomock.Any(), models.FieldTopicalTerm).Return("", false, errors.New("rules unavailable"))

	_, created, err := s.recorder.Record(s.ctx, []change.Record{rec})
	s.Require().NoError(err)
	s.Equal("topicalTerm", created[0].HeadingTypeNew)
}

// TestDeleteActionsAreNeverPersisted verifies the persistence call excludes
// records that resolve to a DELETE action.
//
// Justification: the authority deletion flow writes its own DELETE stat, so a
// second one here would duplicate the audit trail.
func (s *RecorderSuite) TestDeleteActionsAreNeverPersisted() {
	categoryChange := s.classify(
		&models.Snapshot{},
		&models.Snapshot{},
		models.Changes{
			models.FieldPersonalName:  {Field: models.FieldPersonalName, Old: "Smith, J."},
			models.FieldCorporateName: {Field: models.FieldCorporateName, New: "Acme"},
		},
		1,
	)
	rename := s.classify(
		&models.Snapshot{NaturalID: "a"},
		&models.Snapshot{NaturalID: "b"},
		models.Changes{models.FieldNaturalID: {Field: models.FieldNaturalID, Old: "a", New: "b"}},
		1,
	)
	s.tags.EXPECT().TagFor(gomock.Any(), gomock.Any()).Return("", false, nil).AnyTimes()

	out, created, err := s.recorder.Record(s.ctx, []change.Record{categoryChange, rename})
	s.Require().NoError(err)
	s.Require().Len(created, 1)
	s.Equal(rename.AuthorityID(), created[0].AuthorityID)

	s.Require().Len(out, 2)
	_, ok := out[0].StatID()
	s.False(ok)
	_, ok = out[1].StatID()
	s.True(ok)

	stats, err := s.store.FindByJob(s.ctx, testTenant, created[0].ID)
	s.Require().NoError(err)
	s.Len(stats, 1)
}

func (s *RecorderSuite) TestOnlyDeletesSkipsPersistence() {
	rec, err := change.Classify(models.Event{
		ID:            id.AuthorityID(uuid.New()),
		Type:          models.EventDelete,
		DeleteSubType: models.SoftDelete,
		Old:           &models.Snapshot{NaturalID: "n1"},
		Tenant:        testTenant,
	}, models.Changes{models.FieldNaturalID: {Field: models.FieldNaturalID, Old: "n1"}}, 0)
	s.Require().NoError(err)

	out, created, err := s.recorder.Record(s.ctx, []change.Record{rec})
	s.Require().NoError(err)
	s.Empty(created)
	s.Len(out, 1)
}

func (s *RecorderSuite) TestBuildSplitsCategoryChangeIntoOldAndNew() {
	rec := s.classify(
		&models.Snapshot{},
		&models.Snapshot{},
		models.Changes{
			models.FieldPersonalName:  {Field: models.FieldPersonalName, Old: "Smith, J."},
			models.FieldCorporateName: {Field: models.FieldCorporateName, New: "Acme"},
		},
		1,
	)
	s.tags.EXPECT().TagFor(gomock.Any(), models.FieldPersonalName).Return("100", true, nil)
	s.tags.EXPECT().TagFor(gomock.Any(), models.FieldCorporateName).Return("110", true, nil)

	stat := s.recorder.Build(s.ctx, rec)
	s.Equal(ActionDelete, stat.Action)
	s.Equal("Smith, J.", stat.HeadingOld)
	s.Equal("100", stat.HeadingTypeOld)
	s.Equal("Acme", stat.HeadingNew)
	s.Equal("110", stat.HeadingTypeNew)
}

func (s *RecorderSuite) TestRecordWithAdjustsBeforePersisting() {
	rec := s.classify(
		&models.Snapshot{NaturalID: "a"},
		&models.Snapshot{NaturalID: "b"},
		models.Changes{models.FieldNaturalID: {Field: models.FieldNaturalID, Old: "a", New: "b"}},
		5,
	)
	origin := id.JobID(uuid.New())

	_, created, err := s.recorder.RecordWith(s.ctx, []change.Record{rec}, func(_ change.Record, stat *DataStat) {
		stat.LbTotal += 2
		stat.OriginJobID = &origin
	})
	s.Require().NoError(err)
	s.Equal(7, created[0].LbTotal)
	s.Equal(origin, *created[0].OriginJobID)
}
