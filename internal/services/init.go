package services

import (
	"github.com/bionicotaku/hidescore-services-catalog/internal/auth"
	"github.com/bionicotaku/hidescore-services-catalog/internal/infrastructure/gcs"
	"github.com/bionicotaku/hidescore-services-catalog/internal/repositories"

	"github.com/google/wire"
)

// ProviderSet 暴露服务层构造器，并把仓储绑定到各服务声明的窄接口。
var ProviderSet = wire.NewSet(
	NewRatingService,
	NewContentQueryService,
	NewContentCommandService,
	NewCommentService,
	NewUserService,
	NewAdminService,

	wire.Bind(new(RatingContentStore), new(*repositories.ContentRepository)),
	wire.Bind(new(ContentReader), new(*repositories.ContentRepository)),
	wire.Bind(new(ContentWriter), new(*repositories.ContentRepository)),
	wire.Bind(new(CommentContentLookup), new(*repositories.ContentRepository)),
	wire.Bind(new(AggregateRecomputer), new(*repositories.ContentRepository)),
	wire.Bind(new(ContentCounter), new(*repositories.ContentRepository)),
	wire.Bind(new(RatingStore), new(*repositories.RatingRepository)),
	wire.Bind(new(UserRatingLookup), new(*repositories.RatingRepository)),
	wire.Bind(new(RatingCounter), new(*repositories.RatingRepository)),
	wire.Bind(new(CommentStore), new(*repositories.CommentRepository)),
	wire.Bind(new(UserStore), new(*repositories.UserRepository)),
	wire.Bind(new(CommentAuthorLookup), new(*repositories.UserRepository)),
	wire.Bind(new(UserCounter), new(*repositories.UserRepository)),
	wire.Bind(new(OutboxWriter), new(*repositories.OutboxRepository)),
	wire.Bind(new(TokenIssuer), new(*auth.TokenManager)),
	wire.Bind(new(PosterURLSigner), new(*gcs.PosterSigner)),
)
