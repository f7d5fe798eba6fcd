package publisher

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"authlinks/internal/authority/models"
	"authlinks/internal/authority/publisher/mocks"
	"authlinks/internal/platform/kafka/producer"
	"authlinks/internal/platform/metrics"
	id "authlinks/pkg/domain"
	dErrors "authlinks/pkg/domain-errors"
	"authlinks/pkg/requestcontext"
	"authlinks/pkg/testutil"
)

//go:generate mockgen -source=publisher.go -destination=mocks/publisher_mocks.go -package=mocks

func newPublisher(t *testing.T) (*Publisher, *mocks.MockProducer) {
	ctrl := gomock.NewController(t)
	prod := mocks.NewMockProducer(ctrl)
	p := New(prod, "folio",
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		WithMetrics(metrics.New(prometheus.NewRegistry())),
	)
	return p, prod
}

func notification(linkCount int) models.Notification {
	return models.Notification{
		JobID:       id.JobID(uuid.New()),
		Type:        models.EventUpdate,
		Tenant:      "diku",
		AuthorityID: id.AuthorityID(uuid.New()),
		HeadingTag:  "100",
		LinkCount:   linkCount,
	}
}

func TestPublish_WritesToTenantTopicKeyedByAuthority(t *testing.T) {
	p, prod := newPublisher(t)
	user := id.UserID(uuid.New())
	ctx := requestcontext.WithRequestID(testutil.TenantContext("diku", user), "req-1")
	events := []models.Notification{notification(3), notification(1)}

	var got []producer.Message
	prod.EXPECT().Produce(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, msgs ...producer.Message) error {
			got = msgs
			return nil
		})

	require.NoError(t, p.Publish(ctx, events, "diku"))
	require.Len(t, got, 2)

	for i, msg := range got {
		assert.Equal(t, "folio.diku.links.instance-authority", msg.Topic)
		assert.Equal(t, events[i].AuthorityID.String(), string(msg.Key))
		assert.Equal(t, "diku", msg.Headers["x-okapi-tenant"])
		assert.Equal(t, user.String(), msg.Headers["x-okapi-user-id"])
		assert.Equal(t, "req-1", msg.Headers["x-okapi-request-id"])

		var decoded models.Notification
		require.NoError(t, json.Unmarshal(msg.Value, &decoded))
		assert.Equal(t, events[i].JobID, decoded.JobID)
		assert.Equal(t, events[i].LinkCount, decoded.LinkCount)
		assert.Equal(t, "100", decoded.HeadingTag)
	}
}

func TestPublish_EmptyBatchIsNoop(t *testing.T) {
	p, _ := newPublisher(t)
	require.NoError(t, p.Publish(context.Background(), nil, "diku"))
}

func TestPublish_RequiresTenant(t *testing.T) {
	p, _ := newPublisher(t)
	err := p.Publish(context.Background(), []models.Notification{notification(1)}, "")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
}

func TestPublish_ProducerFailureIsUnavailable(t *testing.T) {
	p, prod := newPublisher(t)
	prod.EXPECT().Produce(gomock.Any(), gomock.Any()).Return(errors.New("NOT_ENOUGH_REPLICAS"))

	err := p.Publish(testutil.TenantContext("diku", id.UserID{}), []models.Notification{notification(1)}, "diku")
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnavailable))
}
