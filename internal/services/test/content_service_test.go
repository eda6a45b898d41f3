package services_test

import (
	"context"
	"io"
	"testing"

	"github.com/bionicotaku/hidescore-services-catalog/internal/models/events"
	"github.com/bionicotaku/hidescore-services-catalog/internal/models/po"
	"github.com/bionicotaku/hidescore-services-catalog/internal/repositories"
	"github.com/bionicotaku/hidescore-services-catalog/internal/services"

	"github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func int32Ptr(v int32) *int32 { return &v }

func TestContentQueryService_GetContentChecksKind(t *testing.T) {
	cat := newMemCatalog()
	movie := cat.addContent(po.ContentKindMovie, "Blade Runner", 1982, "Sci-Fi")
	svc := services.NewContentQueryService(cat, noopTxManager{}, log.NewStdLogger(io.Discard))

	got, err := svc.GetContent(context.Background(), services.ContentRef{Kind: po.ContentKindMovie, ID: movie.ID})
	require.NoError(t, err)
	require.Equal(t, "movie", got.Type)
	require.Equal(t, "Blade Runner", got.Title)

	_, err = svc.GetContent(context.Background(), services.ContentRef{Kind: po.ContentKindSeries, ID: movie.ID})
	require.Equal(t, 404, int(errors.FromError(err).Code))

	_, err = svc.GetContent(context.Background(), services.ContentRef{Kind: po.ContentKindMovie, ID: uuid.New()})
	require.Equal(t, 404, int(errors.FromError(err).Code))
}

func TestContentQueryService_SimilarExcludesSelf(t *testing.T) {
	cat := newMemCatalog()
	base := cat.addContent(po.ContentKindMovie, "Inception", 2010, "Sci-Fi", "Thriller")
	for i := 0; i < 6; i++ {
		cat.addContent(po.ContentKindMovie, "Sci-Fi pick", int32(2000+i), "Sci-Fi")
	}
	cat.addContent(po.ContentKindMovie, "Comedy", 2001, "Comedy")
	cat.addContent(po.ContentKindSeries, "Sci-Fi series", 2001, "Sci-Fi")
	svc := services.NewContentQueryService(cat, noopTxManager{}, log.NewStdLogger(io.Discard))

	similar, err := svc.SimilarContent(context.Background(), services.ContentRef{Kind: po.ContentKindMovie, ID: base.ID})
	require.NoError(t, err)
	require.Len(t, similar, services.SimilarLimit)
	for _, item := range similar {
		require.NotEqual(t, base.ID, item.ID)
		require.Equal(t, "movie", item.Type)
		require.Contains(t, item.Genre, "Sci-Fi")
	}
}

func TestContentQueryService_ListRejectsInvertedRanges(t *testing.T) {
	svc := services.NewContentQueryService(newMemCatalog(), noopTxManager{}, log.NewStdLogger(io.Discard))

	_, err := svc.ListContent(context.Background(), po.ContentKindMovie, repositories.ContentFilter{
		YearFrom: int32Ptr(2015),
		YearTo:   int32Ptr(2000),
	})
	require.Equal(t, 400, int(errors.FromError(err).Code))

	from, to := 4.0, 1.0
	_, err = svc.ListContent(context.Background(), po.ContentKindSeries, repositories.ContentFilter{RatingFrom: &from, RatingTo: &to})
	require.Equal(t, 400, int(errors.FromError(err).Code))

	list, err := svc.ListContent(context.Background(), po.ContentKindMovie, repositories.ContentFilter{})
	require.NoError(t, err)
	require.NotNil(t, list)
	require.Empty(t, list)
}

func TestContentQueryService_Recommendations(t *testing.T) {
	cat := newMemCatalog()
	for i := 0; i < 6; i++ {
		cat.addContent(po.ContentKindMovie, "movie", 2000, "Drama")
		cat.addContent(po.ContentKindSeries, "series", 2000, "Drama")
	}
	svc := services.NewContentQueryService(cat, noopTxManager{}, log.NewStdLogger(io.Discard))

	recs, err := svc.Recommendations(context.Background())
	require.NoError(t, err)
	require.Len(t, recs.Movies, services.RecommendationLimit)
	require.Len(t, recs.Series, services.RecommendationLimit)
}

func TestContentCommandService_CreateValidatesAndPublishes(t *testing.T) {
	cat := newMemCatalog()
	svc := services.NewContentCommandService(cat, cat, noopTxManager{}, log.NewStdLogger(io.Discard))
	ctx := context.Background()

	_, err := svc.CreateContent(ctx, po.ContentKindMovie, services.ContentInput{Description: "d", ReleaseYear: 2000})
	require.Equal(t, 400, int(errors.FromError(err).Code))

	_, err = svc.CreateContent(ctx, po.ContentKindMovie, services.ContentInput{Title: "t", Description: "d", ReleaseYear: 1500})
	require.Equal(t, 400, int(errors.FromError(err).Code))

	_, err = svc.CreateContent(ctx, po.ContentKindSeries, services.ContentInput{
		Title: "t", Description: "d", ReleaseYear: 2010, EndYear: int32Ptr(2005),
	})
	require.Equal(t, 400, int(errors.FromError(err).Code))

	_, err = svc.CreateContent(ctx, po.ContentKindSeries, services.ContentInput{
		Title: "t", Description: "d", ReleaseYear: 2010, Seasons: int32Ptr(0),
	})
	require.Equal(t, 400, int(errors.FromError(err).Code))
	require.Empty(t, cat.events())

	director := "Denis Villeneuve"
	created, err := svc.CreateContent(ctx, po.ContentKindMovie, services.ContentInput{
		Title:          "  Dune  ",
		Description:    "Spice",
		ReleaseYear:    2021,
		Genres:         []string{"Sci-Fi", " ", "Adventure"},
		Director:       &director,
		RuntimeMinutes: int32Ptr(155),
		Seasons:        int32Ptr(3),
	})
	require.NoError(t, err)
	require.Equal(t, "Dune", created.Title)
	require.Equal(t, []string{"Sci-Fi", "Adventure"}, created.Genre)
	require.Nil(t, created.Seasons)
	require.Equal(t, 0.0, created.AverageRating)
	require.Equal(t, int32(0), created.RatingCount)

	msgs := cat.events()
	require.Len(t, msgs, 1)
	require.Equal(t, string(events.KindContentCreated), msgs[0].EventType)
	require.Equal(t, created.ID, msgs[0].AggregateID)
}

func TestContentCommandService_UpdatePreservesAggregate(t *testing.T) {
	cat := newMemCatalog()
	movie := cat.addContent(po.ContentKindMovie, "Old", 1999, "Drama")
	ratingSvc := newRatingService(cat)
	_, err := ratingSvc.RecordRating(context.Background(), services.RecordRatingInput{
		UserID: uuid.New(), Ref: services.ContentRef{Kind: po.ContentKindMovie, ID: movie.ID}, Value: 4,
	})
	require.NoError(t, err)

	svc := services.NewContentCommandService(cat, cat, noopTxManager{}, log.NewStdLogger(io.Discard))
	updated, err := svc.UpdateContent(context.Background(), services.ContentRef{Kind: po.ContentKindMovie, ID: movie.ID}, services.ContentInput{
		Title: "New", Description: "Updated", ReleaseYear: 2000, Genres: []string{"Drama"},
	})
	require.NoError(t, err)
	require.Equal(t, "New", updated.Title)
	require.Equal(t, int32(1), updated.RatingCount)
	require.InDelta(t, 4.0, updated.AverageRating, 1e-9)

	_, err = svc.UpdateContent(context.Background(), services.ContentRef{Kind: po.ContentKindSeries, ID: movie.ID}, services.ContentInput{
		Title: "New", Description: "Updated", ReleaseYear: 2000,
	})
	require.Equal(t, 404, int(errors.FromError(err).Code))
}

func TestContentCommandService_Delete(t *testing.T) {
	cat := newMemCatalog()
	series := cat.addContent(po.ContentKindSeries, "Lost", 2004, "Drama")
	svc := services.NewContentCommandService(cat, cat, noopTxManager{}, log.NewStdLogger(io.Discard))

	err := svc.DeleteContent(context.Background(), services.ContentRef{Kind: po.ContentKindMovie, ID: series.ID})
	require.Equal(t, 404, int(errors.FromError(err).Code))

	require.NoError(t, svc.DeleteContent(context.Background(), services.ContentRef{Kind: po.ContentKindSeries, ID: series.ID}))
	msgs := cat.events()
	require.Len(t, msgs, 1)
	require.Equal(t, string(events.KindContentDeleted), msgs[0].EventType)

	err = svc.DeleteContent(context.Background(), services.ContentRef{Kind: po.ContentKindSeries, ID: series.ID})
	require.Equal(t, 404, int(errors.FromError(err).Code))
}
