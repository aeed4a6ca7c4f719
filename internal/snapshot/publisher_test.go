package snapshot

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"

	"pairsignal/internal/core"
)

func TestRedisPublisher_PublishesSnapshotJSON(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	pub := NewRedisPublisher(mr.Addr(), "", "operator:snapshot")
	defer pub.Close()

	sub := pub.client.Subscribe(context.Background(), "operator:snapshot")
	defer sub.Close()
	_, err = sub.Receive(context.Background())
	require.NoError(t, err)

	want := core.Snapshot{Peers: 3, Waiting: 1, RoomsTotal: 1, TakenAt: time.Now()}
	pub.Publish(context.Background(), want)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	msg, err := sub.ReceiveMessage(ctx)
	require.NoError(t, err)

	var got core.Snapshot
	require.NoError(t, json.Unmarshal([]byte(msg.Payload), &got))
	require.Equal(t, want.Peers, got.Peers)
	require.Equal(t, want.RoomsTotal, got.RoomsTotal)
}

func TestRedisPublisher_UnreachableAddrDoesNotPanic(t *testing.T) {
	pub := NewRedisPublisher("127.0.0.1:1", "", "operator:snapshot")
	defer pub.Close()
	pub.Publish(context.Background(), core.Snapshot{Peers: 1})
}
