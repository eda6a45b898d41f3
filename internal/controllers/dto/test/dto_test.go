package dto_test

import (
	"testing"

	"github.com/bionicotaku/hidescore-services-catalog/internal/controllers/dto"
	"github.com/bionicotaku/hidescore-services-catalog/internal/models/po"
	"github.com/bionicotaku/hidescore-services-catalog/internal/repositories"
	"github.com/bionicotaku/hidescore-services-catalog/internal/services"

	"github.com/go-kratos/kratos/v2/errors"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func requireBadRequest(t *testing.T, err error, msg string) {
	t.Helper()
	require.Error(t, err)
	se := errors.FromError(err)
	require.EqualValues(t, 400, se.Code)
	require.Equal(t, services.ReasonValidation, se.Reason)
	require.Equal(t, msg, se.Message)
}

func TestContentListQuery_ToFilter(t *testing.T) {
	q := dto.ContentListQuery{
		Genre:      "Drama",
		Platform:   "Netflix",
		YearFrom:   ptr(int32(2000)),
		RatingFrom: ptr(3.5),
		SortBy:     " Rating ",
	}
	filter, err := q.ToFilter()
	require.NoError(t, err)
	require.Equal(t, "Drama", filter.Genre)
	require.Equal(t, "Netflix", filter.Platform)
	require.Equal(t, int32(2000), *filter.YearFrom)
	require.Nil(t, filter.YearTo)
	require.Equal(t, 3.5, *filter.RatingFrom)
	require.Equal(t, repositories.SortRating, filter.Sort)

	_, err = (&dto.ContentListQuery{RatingTo: ptr(6.0)}).ToFilter()
	requireBadRequest(t, err, "ratingTo must be <= 5")

	_, err = (&dto.ContentListQuery{RatingFrom: ptr(-1.0)}).ToFilter()
	requireBadRequest(t, err, "ratingFrom must be >= 0")
}

func TestContentTarget_Ref(t *testing.T) {
	id := uuid.New()

	ref, err := dto.ContentTarget{MovieID: id.String()}.Ref()
	require.NoError(t, err)
	require.Equal(t, services.ContentRef{Kind: po.ContentKindMovie, ID: id}, ref)

	ref, err = dto.ContentTarget{SeriesID: " " + id.String() + " "}.Ref()
	require.NoError(t, err)
	require.Equal(t, services.ContentRef{Kind: po.ContentKindSeries, ID: id}, ref)

	_, err = dto.ContentTarget{MovieID: id.String(), SeriesID: id.String()}.Ref()
	requireBadRequest(t, err, "provide either movieId or seriesId, not both")

	_, err = dto.ContentTarget{}.Ref()
	requireBadRequest(t, err, "movieId or seriesId is required")

	_, err = dto.ContentTarget{SeriesID: "abc"}.Ref()
	requireBadRequest(t, err, "invalid seriesId")
}

func TestResolveSubject(t *testing.T) {
	caller := uuid.New()
	other := uuid.New()

	got, err := dto.ResolveSubject("", caller, false)
	require.NoError(t, err)
	require.Equal(t, caller, got)

	got, err = dto.ResolveSubject(caller.String(), caller, false)
	require.NoError(t, err)
	require.Equal(t, caller, got)

	_, err = dto.ResolveSubject(other.String(), caller, false)
	require.Error(t, err)
	require.EqualValues(t, 403, errors.FromError(err).Code)

	got, err = dto.ResolveSubject(other.String(), caller, true)
	require.NoError(t, err)
	require.Equal(t, other, got)

	_, err = dto.ResolveSubject("not-a-uuid", caller, true)
	requireBadRequest(t, err, "invalid userId")
}

func TestCreateRatingRequest_ToInput(t *testing.T) {
	caller := uuid.New()
	movie := uuid.New()

	req := dto.CreateRatingRequest{
		ContentTarget: dto.ContentTarget{MovieID: movie.String()},
		Rating:        ptr(4.5),
		Review:        ptr("solid"),
	}
	in, err := req.ToInput(caller, false)
	require.NoError(t, err)
	require.Equal(t, caller, in.UserID)
	require.Equal(t, movie, in.Ref.ID)
	require.Equal(t, po.ContentKindMovie, in.Ref.Kind)
	require.Equal(t, 4.5, in.Value)
	require.Equal(t, "solid", *in.Review)

	req.Rating = nil
	_, err = req.ToInput(caller, false)
	requireBadRequest(t, err, "rating is required")

	req.Rating = ptr(7.0)
	_, err = req.ToInput(caller, false)
	requireBadRequest(t, err, "rating must be <= 5")
}

func TestCreateCommentRequest_ToInput(t *testing.T) {
	caller := uuid.New()
	series := uuid.New()

	in, err := (&dto.CreateCommentRequest{
		ContentTarget: dto.ContentTarget{SeriesID: series.String()},
		Content:       "great finale",
	}).ToInput(caller, false)
	require.NoError(t, err)
	require.Equal(t, caller, in.UserID)
	require.Equal(t, po.ContentKindSeries, in.Ref.Kind)
	require.Equal(t, "great finale", in.Content)

	_, err = (&dto.CreateCommentRequest{ContentTarget: dto.ContentTarget{SeriesID: series.String()}}).ToInput(caller, false)
	requireBadRequest(t, err, "content is required")
}

func TestRegisterRequest_Validation(t *testing.T) {
	cases := []struct {
		name string
		req  dto.RegisterRequest
		msg  string
	}{
		{"missing email", dto.RegisterRequest{DisplayName: "A", Password: "password1"}, "email is required"},
		{"bad email", dto.RegisterRequest{Email: "nope", DisplayName: "A", Password: "password1"}, "email must be a valid email"},
		{"short password", dto.RegisterRequest{Email: "a@b.io", DisplayName: "A", Password: "short"}, "password must be at least 8 characters"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := tc.req.ToInput()
			requireBadRequest(t, err, tc.msg)
		})
	}

	in, err := (&dto.RegisterRequest{Email: "Viewer@Example.com", DisplayName: "Viewer", Password: "password1"}).ToInput()
	require.NoError(t, err)
	require.Equal(t, "Viewer@Example.com", in.Email)
}

func TestContentRequest_ToInput(t *testing.T) {
	req := dto.ContentRequest{
		Title:       "Arrival",
		Description: "Linguist meets heptapods.",
		ReleaseYear: 2016,
		Genre:       []string{"Sci-Fi", "Drama"},
		Director:    ptr("Denis Villeneuve"),
		Runtime:     ptr(int32(116)),
	}
	in, err := req.ToInput()
	require.NoError(t, err)
	require.Equal(t, "Arrival", in.Title)
	require.Equal(t, []string{"Sci-Fi", "Drama"}, in.Genres)
	require.Equal(t, int32(116), *in.RuntimeMinutes)

	req.Title = ""
	_, err = req.ToInput()
	requireBadRequest(t, err, "title is required")

	req.Title = "Arrival"
	req.PosterURL = ptr("not a url")
	_, err = req.ToInput()
	requireBadRequest(t, err, "posterUrl must be a valid URL")
}
