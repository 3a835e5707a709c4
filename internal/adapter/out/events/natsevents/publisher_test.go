package natsevents

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"barefoot/internal/model"

	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/require"
)

type fakeConn struct {
	msgs []*nats.Msg
	err  error
}

func (f *fakeConn) PublishMsg(m *nats.Msg) error {
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, m)
	return nil
}

func TestPublisher_PublishPostEvent(t *testing.T) {
	t.Parallel()

	conn := &fakeConn{}
	p := newPublisher(conn, "")

	event := model.PostEvent{
		Type:       model.PostCreated,
		Post:       model.Post{ID: 7, Title: "t", ImagePath: model.DefaultImagePath},
		OccurredAt: time.Date(2025, 9, 24, 12, 0, 0, 0, time.UTC),
	}
	require.NoError(t, p.PublishPostEvent(context.Background(), event))

	require.Len(t, conn.msgs, 1)
	msg := conn.msgs[0]
	require.Equal(t, "barefoot.posts.created", msg.Subject)
	require.NotEmpty(t, msg.Header.Get(nats.MsgIdHdr))

	var got model.PostEvent
	require.NoError(t, json.Unmarshal(msg.Data, &got))
	require.Equal(t, event, got)
}

func TestPublisher_PublishError(t *testing.T) {
	t.Parallel()

	p := newPublisher(&fakeConn{err: errors.New("nats down")}, "custom")
	err := p.PublishPostEvent(context.Background(), model.PostEvent{Type: model.PostDeleted})
	require.ErrorContains(t, err, "custom.posts.deleted")
}
