package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"

	"github.com/velesmarket/backend/internal/domain/enums"
	onboardingsvc "github.com/velesmarket/backend/internal/services/onboarding"
)

func newTestClient(t *testing.T) (*miniredis.Miniredis, *goredis.Client) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}

	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})

	return mr, client
}

func TestWizardDraftRoundTrip(t *testing.T) {
	mr, client := newTestClient(t)
	defer mr.Close()
	defer func() { _ = client.Close() }()

	repo := NewWizardDraftRepo(client)
	ctx := context.Background()

	draft := onboardingsvc.NewDraft(77)
	draft.Step = 3
	if err := repo.Save(ctx, draft, time.Hour); err != nil {
		t.Fatalf("save draft: %v", err)
	}

	loaded, err := repo.Get(ctx, 77)
	if err != nil {
		t.Fatalf("get draft: %v", err)
	}
	if loaded.VendorID != 77 || loaded.Step != 3 {
		t.Fatalf("unexpected draft: %+v", loaded)
	}

	if err := repo.Delete(ctx, 77); err != nil {
		t.Fatalf("delete draft: %v", err)
	}
	if _, err := repo.Get(ctx, 77); !errors.Is(err, onboardingsvc.ErrDraftNotFound) {
		t.Fatalf("expected ErrDraftNotFound after delete, got %v", err)
	}
}

func TestWizardDraftExpires(t *testing.T) {
	mr, client := newTestClient(t)
	defer mr.Close()
	defer func() { _ = client.Close() }()

	repo := NewWizardDraftRepo(client)
	ctx := context.Background()

	if err := repo.Save(ctx, onboardingsvc.NewDraft(5), time.Minute); err != nil {
		t.Fatalf("save draft: %v", err)
	}

	mr.FastForward(2 * time.Minute)

	if _, err := repo.Get(ctx, 5); !errors.Is(err, onboardingsvc.ErrDraftNotFound) {
		t.Fatalf("expected ErrDraftNotFound after ttl, got %v", err)
	}
}

func TestStatusCacheRoundTrip(t *testing.T) {
	mr, client := newTestClient(t)
	defer mr.Close()
	defer func() { _ = client.Close() }()

	repo := NewStatusCacheRepo(client)
	ctx := context.Background()

	if _, ok, err := repo.GetStatus(ctx, 9); err != nil || ok {
		t.Fatalf("expected cache miss, got ok=%v err=%v", ok, err)
	}

	if err := repo.SetStatus(ctx, 9, enums.KYCStatusSubmitted, time.Minute); err != nil {
		t.Fatalf("set status: %v", err)
	}

	status, ok, err := repo.GetStatus(ctx, 9)
	if err != nil || !ok {
		t.Fatalf("expected cache hit, got ok=%v err=%v", ok, err)
	}
	if status != enums.KYCStatusSubmitted {
		t.Fatalf("unexpected status %s", status)
	}

	if err := repo.Invalidate(ctx, 9); err != nil {
		t.Fatalf("invalidate: %v", err)
	}
	if _, ok, err := repo.GetStatus(ctx, 9); err != nil || ok {
		t.Fatalf("expected miss after invalidate, got ok=%v err=%v", ok, err)
	}
}
