package user

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/slingventas/sales-tracker-backend/internal/platform/database"
	"github.com/slingventas/sales-tracker-backend/internal/platform/database/dbtest"
)

func newCachedService(t *testing.T) (*Service, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	database.UpdateStatus(true, "")
	t.Cleanup(func() {
		rdb.Close()
		database.UpdateStatus(false, "")
	})
	log := logrus.New()
	log.SetOutput(io.Discard)
	return NewService(dbtest.Open(t, Migrate), rdb, log, time.Hour), mr
}

func TestLookupSeesWritesMadeWhileRedisWasDown(t *testing.T) {
	ctx := context.Background()
	s, mr := newCachedService(t)
	boss := &User{Username: "boss", Role: RoleOwner}

	for _, req := range []AddRequest{
		{Username: "boss", Password: "pw", Role: "owner"},
		{Username: "luis", Password: "pw", Role: "owner"},
		{Username: "gone", Password: "pw"},
	} {
		if _, err := s.Add(ctx, req); err != nil {
			t.Fatalf("Add %s: %v", req.Username, err)
		}
	}
	if got := mr.HGet(KnownUsersKey, "luis"); got != "owner" {
		t.Fatalf("luis should be cached as owner, got %q", got)
	}

	// outage: both writes miss the cache
	database.UpdateStatus(false, "")
	if _, err := s.Update(ctx, boss, "luis", UpdateRequest{Role: "employee"}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if err := s.Delete(ctx, boss, "gone"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	database.UpdateStatus(true, "")

	u, err := s.Lookup(ctx, "luis")
	if err != nil {
		t.Fatalf("Lookup luis: %v", err)
	}
	if u.Role != RoleEmployee {
		t.Fatalf("demoted user still resolves as %q", u.Role)
	}
	if _, err := s.Lookup(ctx, "gone"); !errors.Is(err, ErrUnknownAccount) {
		t.Fatalf("deleted user should be unknown, got %v", err)
	}
	if mr.HGet(KnownUsersKey, "luis") != "employee" || mr.HGet(KnownUsersKey, "gone") != "" {
		t.Fatalf("cache not rebuilt: luis=%q gone=%q", mr.HGet(KnownUsersKey, "luis"), mr.HGet(KnownUsersKey, "gone"))
	}
}

func TestWritesKeepHealthyCacheCurrent(t *testing.T) {
	ctx := context.Background()
	s, mr := newCachedService(t)
	boss := &User{Username: "boss", Role: RoleOwner}

	if _, err := s.Add(ctx, AddRequest{Username: "ana", Password: "pw"}); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if _, err := s.Update(ctx, boss, "ana", UpdateRequest{Role: "owner"}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if got := mr.HGet(KnownUsersKey, "ana"); got != "owner" {
		t.Fatalf("cached role = %q", got)
	}
	if err := s.Delete(ctx, boss, "ana"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if mr.Exists(KnownUsersKey) && mr.HGet(KnownUsersKey, "ana") != "" {
		t.Fatal("deleted user still cached")
	}
	if s.cacheDirty.Load() {
		t.Fatal("healthy writes must not mark the cache dirty")
	}
}
