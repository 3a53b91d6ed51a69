package redis

import (
	"context"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"chatquiz-service/internal/domain"
)

func TestUserStoreRoundTrip(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	ctx := context.Background()
	store := NewUserStore(newClient(mr))

	user, err := store.FindUser(ctx, "u1")
	if err != nil || user != nil {
		t.Fatalf("expected absent user, got %+v %v", user, err)
	}

	user, err = store.CreateUser(ctx, "u1", "alice@example.com", "Alice")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if user.Stage != domain.StageIdle || user.TotalScore != 0 {
		t.Fatalf("unexpected fresh user: %+v", user)
	}

	user.Stage = domain.StageWaiting
	user.CurrentQuestionID = 3
	user.TotalScore = 146
	if err := store.Save(ctx, user); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, err := store.FindUser(ctx, "u1")
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if loaded.Stage != domain.StageWaiting || loaded.CurrentQuestionID != 3 || loaded.TotalScore != 146 {
		t.Fatalf("round trip lost state: %+v", loaded)
	}
	if loaded.DisplayName != "Alice" || loaded.Email != "alice@example.com" {
		t.Fatalf("round trip lost identity: %+v", loaded)
	}
}

func newClient(mr *miniredis.Miniredis) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
}
