package redisstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"clinic-booking-server/internal/apperrors"
	"clinic-booking-server/internal/models"
	"clinic-booking-server/internal/services"
	"clinic-booking-server/internal/store/memstore"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis.Run failed: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestSessionStoreRoundTrip(t *testing.T) {
	mr, rdb := newTestRedis(t)
	store := NewSessionStore(rdb, "")
	ctx := context.Background()

	created := time.Date(2025, 5, 20, 10, 0, 0, 0, time.UTC)
	session := &models.Session{Token: "tok-1", UserID: "u1", CreatedAt: created, ExpiresAt: created.Add(2 * time.Hour)}

	if err := store.CreateSession(ctx, session); err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	if err := store.CreateSession(ctx, session); !errors.Is(err, apperrors.ErrConflict) {
		t.Fatalf("duplicate token: expected Conflict, got %v", err)
	}

	if ttl := mr.TTL(DefaultPrefix + ":tok-1"); ttl != 2*time.Hour+retention {
		t.Errorf("TTL = %v, want lifetime plus retention", ttl)
	}

	got, err := store.GetSession(ctx, "tok-1")
	if err != nil {
		t.Fatalf("GetSession: %v", err)
	}
	if got.Token != "tok-1" || got.UserID != "u1" || !got.ExpiresAt.Equal(session.ExpiresAt) {
		t.Errorf("unexpected session %+v", got)
	}

	if err := store.DeleteSession(ctx, "tok-1"); err != nil {
		t.Fatalf("DeleteSession: %v", err)
	}
	if err := store.DeleteSession(ctx, "tok-1"); err != nil {
		t.Fatalf("second DeleteSession: %v", err)
	}
	if _, err := store.GetSession(ctx, "tok-1"); !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("expected NotFound after delete, got %v", err)
	}
}

func TestSessionStoreUnavailable(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", MaxRetries: -1, DialTimeout: 100 * time.Millisecond})
	defer rdb.Close()
	store := NewSessionStore(rdb, "")

	_, err := store.GetSession(context.Background(), "tok")
	if apperrors.KindOf(err) != apperrors.Internal {
		t.Fatalf("expected Internal, got %v", err)
	}
}

func TestOverlayWithSessionStore(t *testing.T) {
	mr, rdb := newTestRedis(t)
	now := time.Date(2025, 5, 20, 10, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }

	sql := memstore.New()
	svc := services.New(Overlay(sql, NewSessionStore(rdb, "test")), services.Options{
		SessionTTL: time.Hour,
		Now:        clock,
	})
	ctx := context.Background()

	user, session, err := svc.Accounts.Register(ctx, services.RegisterInput{
		Name: "Pat", Email: "pat@example.com", Password: "secret1", Role: models.RolePatient,
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if sql.SessionCount() != 0 {
		t.Error("session leaked into the SQL repository")
	}
	if !mr.Exists("test:" + session.Token) {
		t.Fatal("session not written to redis")
	}

	resolved, err := svc.Sessions.Resolve(ctx, session.Token)
	if err != nil || resolved.ID != user.ID {
		t.Fatalf("Resolve = %v, %v", resolved, err)
	}

	// Past expiry the record still exists in Redis, and resolving removes it.
	now = now.Add(2 * time.Hour)
	if _, err := svc.Sessions.Resolve(ctx, session.Token); !errors.Is(err, apperrors.ErrUnauthenticated) {
		t.Fatalf("expected Unauthenticated, got %v", err)
	}
	if mr.Exists("test:" + session.Token) {
		t.Error("expired session was not deleted")
	}
}
