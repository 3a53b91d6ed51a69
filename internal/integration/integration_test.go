package integration

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"

	"chatquiz-service/internal/config"
	"chatquiz-service/internal/domain"
	"chatquiz-service/internal/game"
	pgloader "chatquiz-service/internal/infra/postgres"
	pgmigrations "chatquiz-service/internal/infra/postgres/migrations"
	infraredis "chatquiz-service/internal/infra/redis"
	"chatquiz-service/internal/timer"

	"github.com/jackc/pgx/v4/pgxpool"
)

func TestGameFlowEndToEnd(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgURL, pgCleanup := startPostgres(t, ctx)
	defer pgCleanup()
	redisURL, redisCleanup := startRedis(t, ctx)
	defer redisCleanup()

	seedQuestions(t, ctx, pgURL, sampleQuestions())

	pool, err := pgxpool.Connect(ctx, pgURL)
	if err != nil {
		t.Fatalf("connect pg: %v", err)
	}
	defer pool.Close()

	redisClient, err := redisClientFromURL(redisURL)
	if err != nil {
		t.Fatalf("redis client: %v", err)
	}

	loader := pgloader.NewQuestionLoader(pool)
	questions := infraredis.NewQuestionStore(redisClient, loader, 5*time.Minute)
	users := infraredis.NewUserStore(redisClient)
	settings := config.NewSettings(map[string]string{
		"QUESTION_TIMEOUT": "60000",
		"REPORT_DELAY":     "0",
	})

	registry := timer.NewRegistry()
	outbound := &collectingOutbound{}
	engine := game.NewEngine(users, questions, settings, registry, outbound)
	registry.OnExpire(engine.HandleTimeout)

	reply, err := engine.StartGame(ctx, "u1", "Alice", "alice@example.com")
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if !strings.Contains(reply, "Which planet") {
		t.Fatalf("expected first question from postgres, got %q", reply)
	}

	reply, err = engine.SubmitAnswer(ctx, "u1", "b")
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if !strings.Contains(reply, "points!") {
		t.Fatalf("expected scored reply, got %q", reply)
	}

	user, err := users.FindUser(ctx, "u1")
	if err != nil || user == nil {
		t.Fatalf("reload user: %v %v", user, err)
	}
	if user.TotalScore < 100 {
		t.Fatalf("expected at least base points in redis, got %d", user.TotalScore)
	}
	if user.Stage != domain.StageReadyForNext {
		t.Fatalf("expected ready for next, got %s", user.Stage)
	}
}

type collectingOutbound struct {
	sends []string
}

func (o *collectingOutbound) Send(_ context.Context, _, _, text string) error {
	o.sends = append(o.sends, text)
	return nil
}

func startPostgres(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "postgres:15-alpine",
		Env:          map[string]string{"POSTGRES_USER": "quiz", "POSTGRES_PASSWORD": "quizpass", "POSTGRES_DB": "quizdb"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForListeningPort("5432/tcp").WithStartupTimeout(60 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start postgres: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("port: %v", err)
	}
	dsn := fmt.Sprintf("postgres://quiz:quizpass@%s:%s/quizdb?sslmode=disable", host, port.Port())
	return dsn, func() {
		_ = container.Terminate(ctx)
	}
}

func startRedis(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(30 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start redis: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("redis host: %v", err)
	}
	port, err := container.MappedPort(ctx, "6379/tcp")
	if err != nil {
		t.Fatalf("redis port: %v", err)
	}
	url := fmt.Sprintf("redis://%s:%s", host, port.Port())
	return url, func() {
		_ = container.Terminate(ctx)
	}
}

func seedQuestions(t *testing.T, ctx context.Context, dsn string, questions []domain.Question) {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	db := bun.NewDB(sqldb, pgdialect.New())
	defer db.Close()

	migrator := migrate.NewMigrator(db, pgmigrations.Migrations)
	if err := migrator.Init(ctx); err != nil {
		t.Fatalf("migrator init: %v", err)
	}
	if _, err := migrator.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	for _, q := range questions {
		if _, err := db.ExecContext(ctx,
			`INSERT INTO questions (id, position, text, opt_a, opt_b, opt_c, opt_d, correct_idx)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			 ON CONFLICT (id) DO NOTHING`,
			q.ID, q.Position, q.Text,
			q.Options[0], q.Options[1], q.Options[2], q.Options[3],
			q.CorrectIndex); err != nil {
			t.Fatalf("insert question %d: %v", q.ID, err)
		}
	}
}

func sampleQuestions() []domain.Question {
	return []domain.Question{
		{
			ID:           1,
			Position:     1,
			Text:         "Which planet is known as the red planet?",
			Options:      [4]string{"Venus", "Mars", "Jupiter", "Mercury"},
			CorrectIndex: 2,
		},
		{
			ID:           2,
			Position:     2,
			Text:         "How many bits are in a byte?",
			Options:      [4]string{"8", "16", "4", "32"},
			CorrectIndex: 1,
		},
	}
}

func redisClientFromURL(url string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return goredis.NewClient(&goredis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	}), nil
}

func requireDocker(t *testing.T) {
	t.Helper()
	if _, err := tc.NewDockerProvider(); err != nil {
		t.Skipf("docker not available: %v", err)
	}
}
