package services_test

import (
	"context"
	"testing"

	"github.com/bionicotaku/hidescore-services-catalog/internal/models/po"
	"github.com/bionicotaku/hidescore-services-catalog/internal/services"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func TestRatingService_MutationCounterLabelledByOperation(t *testing.T) {
	ctx := context.Background()
	reader := sdkmetric.NewManualReader()
	prev := otel.GetMeterProvider()
	otel.SetMeterProvider(sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)))
	t.Cleanup(func() { otel.SetMeterProvider(prev) })

	cat := newMemCatalog()
	movie := cat.addContent(po.ContentKindMovie, "Alien", 1979, "Horror")
	svc := newRatingService(cat)
	ref := services.ContentRef{Kind: po.ContentKindMovie, ID: movie.ID}
	user := uuid.New()

	first, err := svc.RecordRating(ctx, services.RecordRatingInput{UserID: user, Ref: ref, Value: 3})
	require.NoError(t, err)
	_, err = svc.RecordRating(ctx, services.RecordRatingInput{UserID: user, Ref: ref, Value: 4})
	require.NoError(t, err)
	_, err = svc.DeleteRating(ctx, services.DeleteRatingInput{RatingID: first.Rating.ID, ActorID: user})
	require.NoError(t, err)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))

	byOperation := map[string]int64{}
	for _, scope := range rm.ScopeMetrics {
		for _, m := range scope.Metrics {
			if m.Name != "catalog_rating_mutations_total" {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			require.True(t, ok)
			for _, dp := range sum.DataPoints {
				op, ok := dp.Attributes.Value(attribute.Key("operation"))
				require.True(t, ok, "operation attribute must be present")
				kind, ok := dp.Attributes.Value(attribute.Key("content_kind"))
				require.True(t, ok)
				require.Equal(t, string(po.ContentKindMovie), kind.AsString())
				byOperation[op.AsString()] += dp.Value
			}
		}
	}
	require.Equal(t, map[string]int64{"record": 1, "update": 1, "delete": 1}, byOperation)
}
