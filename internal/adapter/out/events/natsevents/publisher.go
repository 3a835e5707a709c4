package natsevents

import (
	"context"
	"encoding/json"
	"fmt"

	"barefoot/internal/model"
	"barefoot/pkg/logger"

	"github.com/nats-io/nats.go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
)

const DefaultSubjectPrefix = "barefoot"

type msgPublisher interface {
	PublishMsg(m *nats.Msg) error
}

// Publisher sends post lifecycle events to NATS subjects <prefix>.posts.<action>.
type Publisher struct {
	nc     msgPublisher
	prefix string
}

func NewPublisher(nc *nats.Conn, prefix string) *Publisher {
	return newPublisher(nc, prefix)
}

func newPublisher(nc msgPublisher, prefix string) *Publisher {
	if prefix == "" {
		prefix = DefaultSubjectPrefix
	}
	return &Publisher{nc: nc, prefix: prefix}
}

func (p *Publisher) PublishPostEvent(ctx context.Context, event model.PostEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshalling error: %w", err)
	}

	msg := &nats.Msg{
		Subject: p.prefix + "." + string(event.Type),
		Data:    data,
		Header:  nats.Header{},
	}
	msg.Header.Set(nats.MsgIdHdr, fmt.Sprintf("%s-%d-%d", event.Type, event.Post.ID, event.OccurredAt.UnixNano()))
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(msg.Header))

	logger.FromContext(ctx).Debug("publishing post event", "subject", msg.Subject, "post_id", event.Post.ID)

	if err := p.nc.PublishMsg(msg); err != nil {
		return fmt.Errorf("publish %s: %w", msg.Subject, err)
	}
	return nil
}
