package redis

import (
	"context"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"

	"github.com/xraph/quotewatch"
	"github.com/xraph/quotewatch/request"
	"github.com/xraph/quotewatch/store"
	"github.com/xraph/quotewatch/store/storetest"
)

func newTestStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return New(client), mr
}

func TestConformance(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Store {
		s, _ := newTestStore(t)
		return s
	})
}

func TestKeyLayout(t *testing.T) {
	s, mr := newTestStore(t)
	ctx := context.Background()

	info := request.New(quotewatch.TagPolygon, request.Nop{})
	if err := s.EnqueueRequest(ctx, info); err != nil {
		t.Fatal(err)
	}
	items, err := mr.List("quotewatch:requests:polygon")
	if err != nil {
		t.Fatalf("queue list missing: %v", err)
	}
	if len(items) != 1 {
		t.Errorf("queue list has %d entries, want 1", len(items))
	}
}

func TestDequeue_DropsUndecodable(t *testing.T) {
	s, mr := newTestStore(t)
	ctx := context.Background()

	good := request.New(quotewatch.TagMessari, request.QuoteSnapshotSync{Page: 1})
	if err := s.EnqueueRequest(ctx, good); err != nil {
		t.Fatal(err)
	}
	if _, err := mr.RPush("quotewatch:requests:messari", "{garbage"); err != nil {
		t.Fatal(err)
	}

	got, err := s.DequeueRequests(ctx, quotewatch.TagMessari, 10)
	if err == nil {
		t.Error("expected decode error to be reported")
	}
	if len(got) != 1 || got[0].ID.String() != good.ID.String() {
		t.Errorf("decoded items = %v, want the good one", got)
	}
	if n, _ := s.QueueLength(ctx, quotewatch.TagMessari); n != 0 {
		t.Errorf("undecodable entry left in queue")
	}
}

func TestPing_ServerDown(t *testing.T) {
	s, mr := newTestStore(t)
	mr.Close()
	if err := s.Ping(context.Background()); err == nil {
		t.Error("expected ping error with server down")
	}
}

func TestEnqueue_InvalidNotWritten(t *testing.T) {
	s, mr := newTestStore(t)
	err := s.EnqueueRequest(context.Background(), request.New("", request.Nop{}))
	if !errors.Is(err, quotewatch.ErrMissingAPITag) {
		t.Errorf("got %v, want ErrMissingAPITag", err)
	}
	if keys := mr.Keys(); len(keys) != 0 {
		t.Errorf("keys written: %v", keys)
	}
}
