package services_test

import (
	"context"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/bionicotaku/hidescore-services-catalog/internal/infrastructure/database"
	"github.com/bionicotaku/hidescore-services-catalog/internal/models/po"
	"github.com/bionicotaku/hidescore-services-catalog/internal/repositories"
	"github.com/bionicotaku/hidescore-services-catalog/internal/services"
	"github.com/bionicotaku/hidescore-services-catalog/migrations"

	"github.com/bionicotaku/lingo-utils/txmanager"
	"github.com/docker/go-connections/nat"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

type catalogStack struct {
	pool     *pgxpool.Pool
	contents *repositories.ContentRepository
	users    *repositories.UserRepository
	ratings  *services.RatingService
	queries  *services.ContentQueryService
	commands *services.ContentCommandService
	accounts *services.UserService
}

func newCatalogStack(ctx context.Context, t *testing.T) catalogStack {
	t.Helper()

	dsn, terminate := startPostgres(ctx, t)
	t.Cleanup(terminate)

	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	require.NoError(t, migrations.Apply(ctx, pool))

	logger := log.NewStdLogger(io.Discard)
	txMgr, err := database.NewTxManager(pool, txmanager.Config{}, logger)
	require.NoError(t, err)

	contentRepo := repositories.NewContentRepository(pool, logger)
	ratingRepo := repositories.NewRatingRepository(pool, logger)
	userRepo := repositories.NewUserRepository(pool, logger)
	outboxRepo := repositories.NewOutboxRepository(pool, logger)

	return catalogStack{
		pool:     pool,
		contents: contentRepo,
		users:    userRepo,
		ratings:  services.NewRatingService(contentRepo, ratingRepo, outboxRepo, txMgr, logger),
		queries:  services.NewContentQueryService(contentRepo, txMgr, logger),
		commands: services.NewContentCommandService(contentRepo, outboxRepo, txMgr, logger),
		accounts: services.NewUserService(userRepo, ratingRepo, contentRepo, nil, txMgr, logger),
	}
}

func (s catalogStack) newUser(ctx context.Context, t *testing.T) uuid.UUID {
	t.Helper()
	u, err := s.users.Create(ctx, nil, &po.User{Email: uuid.NewString() + "@example.com", DisplayName: "tester"})
	require.NoError(t, err)
	return u.ID
}

func (s catalogStack) newMovie(ctx context.Context, t *testing.T, title string, year int32, genres ...string) uuid.UUID {
	t.Helper()
	created, err := s.commands.CreateContent(ctx, po.ContentKindMovie, services.ContentInput{
		Title: title, Description: title, ReleaseYear: year, Genres: genres,
	})
	require.NoError(t, err)
	return created.ID
}

func TestCatalogIntegration_RatingAggregateLifecycle(t *testing.T) {
	ctx := context.Background()
	stack := newCatalogStack(ctx, t)

	movieID := stack.newMovie(ctx, t, "Arrival", 2016, "Sci-Fi")
	ref := services.ContentRef{Kind: po.ContentKindMovie, ID: movieID}

	first, err := stack.ratings.RecordRating(ctx, services.RecordRatingInput{UserID: stack.newUser(ctx, t), Ref: ref, Value: 4})
	require.NoError(t, err)
	second, err := stack.ratings.RecordRating(ctx, services.RecordRatingInput{UserID: stack.newUser(ctx, t), Ref: ref, Value: 2})
	require.NoError(t, err)
	require.InDelta(t, 3.0, second.Aggregate.AverageRating, 1e-9)
	require.Equal(t, int32(2), second.Aggregate.RatingCount)

	receipt, err := stack.ratings.DeleteRating(ctx, services.DeleteRatingInput{RatingID: first.Rating.ID, IsAdmin: true})
	require.NoError(t, err)
	require.InDelta(t, 2.0, receipt.Aggregate.AverageRating, 1e-9)
	require.Equal(t, int32(1), receipt.Aggregate.RatingCount)

	movie, err := stack.queries.GetContent(ctx, ref)
	require.NoError(t, err)
	require.InDelta(t, 2.0, movie.AverageRating, 1e-9)
	require.Equal(t, int32(1), movie.RatingCount)

	var pending int
	require.NoError(t, stack.pool.QueryRow(ctx,
		"SELECT COUNT(*) FROM catalog.outbox_events WHERE aggregate_id = $1 AND published_at IS NULL", movieID).Scan(&pending))
	// content.created + 2 × rating.recorded + rating.deleted
	require.Equal(t, 4, pending)
}

func TestCatalogIntegration_FiltersAndSorts(t *testing.T) {
	ctx := context.Background()
	stack := newCatalogStack(ctx, t)

	oldSciFi := stack.newMovie(ctx, t, "Alien", 1979, "scifi", "Horror")
	newSciFi := stack.newMovie(ctx, t, "Dune", 2021, "scifi")
	drama2005 := stack.newMovie(ctx, t, "Match Point", 2005, "Drama")
	stack.newMovie(ctx, t, "Casablanca", 1942, "Drama")
	stack.newMovie(ctx, t, "Airplane!", 1980, "Comedy")

	listed, err := stack.queries.ListContent(ctx, po.ContentKindMovie, repositories.ContentFilter{Genre: "scifi", Sort: repositories.SortYearDesc})
	require.NoError(t, err)
	require.Len(t, listed, 2)
	require.Equal(t, newSciFi, listed[0].ID)
	require.Equal(t, oldSciFi, listed[1].ID)

	from, to := int32(2000), int32(2015)
	dramas, err := stack.queries.ListContent(ctx, po.ContentKindMovie, repositories.ContentFilter{Genre: "Drama", YearFrom: &from, YearTo: &to})
	require.NoError(t, err)
	require.Len(t, dramas, 1)
	require.Equal(t, drama2005, dramas[0].ID)

	all, err := stack.queries.ListContent(ctx, po.ContentKindMovie, repositories.ContentFilter{Genre: "all"})
	require.NoError(t, err)
	require.Len(t, all, 5)

	for _, r := range []struct {
		id    uuid.UUID
		value float64
	}{{oldSciFi, 5}, {newSciFi, 3}, {drama2005, 4}} {
		_, err := stack.ratings.RecordRating(ctx, services.RecordRatingInput{
			UserID: stack.newUser(ctx, t), Ref: services.ContentRef{Kind: po.ContentKindMovie, ID: r.id}, Value: r.value,
		})
		require.NoError(t, err)
	}
	byRating, err := stack.queries.ListContent(ctx, po.ContentKindMovie, repositories.ContentFilter{Sort: repositories.SortRating})
	require.NoError(t, err)
	require.Equal(t, []uuid.UUID{oldSciFi, drama2005, newSciFi}, []uuid.UUID{byRating[0].ID, byRating[1].ID, byRating[2].ID})
	for i := 1; i < len(byRating); i++ {
		require.GreaterOrEqual(t, byRating[i-1].AverageRating, byRating[i].AverageRating)
	}

	similar, err := stack.queries.SimilarContent(ctx, services.ContentRef{Kind: po.ContentKindMovie, ID: oldSciFi})
	require.NoError(t, err)
	require.Len(t, similar, 1)
	require.Equal(t, newSciFi, similar[0].ID)
}

func TestCatalogIntegration_ConcurrentRatings(t *testing.T) {
	ctx := context.Background()
	stack := newCatalogStack(ctx, t)

	movieID := stack.newMovie(ctx, t, "Heat", 1995, "Crime")
	ref := services.ContentRef{Kind: po.ContentKindMovie, ID: movieID}
	values := []float64{1, 2, 3, 4, 5, 5, 4, 3, 2, 1, 0.5, 4.5}
	users := make([]uuid.UUID, len(values))
	for i := range users {
		users[i] = stack.newUser(ctx, t)
	}

	var wg sync.WaitGroup
	errs := make(chan error, len(values))
	for i, v := range values {
		wg.Add(1)
		go func(userID uuid.UUID, value float64) {
			defer wg.Done()
			_, err := stack.ratings.RecordRating(ctx, services.RecordRatingInput{UserID: userID, Ref: ref, Value: value})
			errs <- err
		}(users[i], v)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	var sum float64
	for _, v := range values {
		sum += v
	}
	movie, err := stack.queries.GetContent(ctx, ref)
	require.NoError(t, err)
	require.Equal(t, int32(len(values)), movie.RatingCount)
	require.InDelta(t, sum/float64(len(values)), movie.AverageRating, 1e-9)
}

func TestCatalogIntegration_DeleteUserRecomputes(t *testing.T) {
	ctx := context.Background()
	stack := newCatalogStack(ctx, t)

	movieID := stack.newMovie(ctx, t, "Ran", 1985, "Drama")
	ref := services.ContentRef{Kind: po.ContentKindMovie, ID: movieID}
	leaving := stack.newUser(ctx, t)
	_, err := stack.ratings.RecordRating(ctx, services.RecordRatingInput{UserID: leaving, Ref: ref, Value: 1})
	require.NoError(t, err)
	_, err = stack.ratings.RecordRating(ctx, services.RecordRatingInput{UserID: stack.newUser(ctx, t), Ref: ref, Value: 5})
	require.NoError(t, err)

	require.NoError(t, stack.accounts.DeleteUser(ctx, leaving))

	movie, err := stack.queries.GetContent(ctx, ref)
	require.NoError(t, err)
	require.Equal(t, int32(1), movie.RatingCount)
	require.InDelta(t, 5.0, movie.AverageRating, 1e-9)
}

func TestCatalogIntegration_DeleteUserRacesRecordRating(t *testing.T) {
	ctx := context.Background()
	stack := newCatalogStack(ctx, t)

	rated := stack.newMovie(ctx, t, "Stalker", 1979, "Sci-Fi")
	target := stack.newMovie(ctx, t, "Solaris", 1972, "Sci-Fi")
	_, err := stack.ratings.RecordRating(ctx, services.RecordRatingInput{
		UserID: stack.newUser(ctx, t), Ref: services.ContentRef{Kind: po.ContentKindMovie, ID: target}, Value: 5,
	})
	require.NoError(t, err)

	for round := 0; round < 10; round++ {
		leaving := stack.newUser(ctx, t)
		_, err := stack.ratings.RecordRating(ctx, services.RecordRatingInput{
			UserID: leaving, Ref: services.ContentRef{Kind: po.ContentKindMovie, ID: rated}, Value: 1,
		})
		require.NoError(t, err)

		var (
			wg                   sync.WaitGroup
			recordErr, deleteErr error
		)
		start := make(chan struct{})
		wg.Add(2)
		go func() {
			defer wg.Done()
			<-start
			_, recordErr = stack.ratings.RecordRating(ctx, services.RecordRatingInput{
				UserID: leaving, Ref: services.ContentRef{Kind: po.ContentKindMovie, ID: target}, Value: 0.5,
			})
		}()
		go func() {
			defer wg.Done()
			<-start
			deleteErr = stack.accounts.DeleteUser(ctx, leaving)
		}()
		close(start)
		wg.Wait()

		require.NoError(t, deleteErr, "round %d", round)
		if recordErr != nil {
			require.ErrorIs(t, recordErr, services.ErrUserNotFound, "round %d", round)
		}

		for _, id := range []uuid.UUID{rated, target} {
			var (
				storedCount, actualCount int32
				storedAvg, actualAvg     float64
			)
			require.NoError(t, stack.pool.QueryRow(ctx, `
				SELECT c.rating_count, c.average_rating,
				       (SELECT COUNT(*) FROM catalog.ratings r WHERE r.content_id = c.id)::int,
				       COALESCE((SELECT AVG(r.rating) FROM catalog.ratings r WHERE r.content_id = c.id), 0)::float8
				FROM catalog.content_items c WHERE c.id = $1`, id).
				Scan(&storedCount, &storedAvg, &actualCount, &actualAvg))
			require.Equal(t, actualCount, storedCount, "round %d content %s", round, id)
			require.InDelta(t, actualAvg, storedAvg, 1e-9, "round %d content %s", round, id)
		}
	}
}

func startPostgres(ctx context.Context, t *testing.T) (string, func()) {
	t.Helper()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_PASSWORD": "postgres",
			"POSTGRES_USER":     "postgres",
			"POSTGRES_DB":       "hidescore",
		},
		WaitingFor: wait.ForSQL("5432/tcp", "pgx", func(host string, port nat.Port) string {
			return fmt.Sprintf("postgres://postgres:postgres@%s:%s/hidescore?sslmode=disable", host, port.Port())
		}).WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Skipf("skip integration: cannot start postgres container: %v", err)
		return "", func() {}
	}

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	dsn := fmt.Sprintf("postgres://postgres:postgres@%s:%s/hidescore?sslmode=disable", host, port.Port())
	cleanup := func() {
		termCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = container.Terminate(termCtx)
	}
	return dsn, cleanup
}
