package grpcapi

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"barefoot/internal/adapter/out/security"
	"barefoot/internal/model"
	"barefoot/internal/service"
	"barefoot/pkg/logger"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
)

const ServiceName = "barefoot.posts.v1.PostService"

type PostService interface {
	ListPosts(ctx context.Context, req service.ListPostsRequest) ([]model.Post, error)
	GetPost(ctx context.Context, postID int64) (model.Post, error)
	CreatePost(ctx context.Context, req service.CreatePostRequest) (model.Post, error)
	UpdatePost(ctx context.Context, postID int64, req service.UpdatePostRequest) (model.Post, error)
	DeletePost(ctx context.Context, postID int64) error
}

type TokenValidator interface {
	Validate(token string) (*security.UserClaims, error)
}

type EventSubscriber interface {
	Subscribe(ctx context.Context) <-chan model.PostEvent
}

// Server adapts PostService to the gRPC surface.
type Server struct {
	posts  PostService
	events EventSubscriber
}

// NewServer builds the adapter. A nil events disables WatchPosts.
func NewServer(posts PostService, events EventSubscriber) *Server {
	return &Server{posts: posts, events: events}
}

// NewGRPCServer returns a grpc.Server with the post service, the standard
// health service and request logging registered. Mutating methods require a
// bearer token accepted by tokens.
func NewGRPCServer(log *slog.Logger, srv *Server, tokens TokenValidator, opts ...grpc.ServerOption) *grpc.Server {
	opts = append(opts,
		grpc.ChainUnaryInterceptor(unaryLogger(log), unaryAuth(tokens, mutatingMethods)),
		grpc.ChainStreamInterceptor(streamLogger(log)),
	)
	gs := grpc.NewServer(opts...)

	srv.Register(gs)

	hs := health.NewServer()
	hs.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	hs.SetServingStatus(ServiceName, grpc_health_v1.HealthCheckResponse_SERVING)
	grpc_health_v1.RegisterHealthServer(gs, hs)

	return gs
}

func (s *Server) Register(r grpc.ServiceRegistrar) {
	r.RegisterService(&serviceDesc, s)
}

func (s *Server) CreatePost(ctx context.Context, req *CreatePostRequest) (*PostModel, error) {
	p, err := s.posts.CreatePost(ctx, service.CreatePostRequest{
		Title:     req.Title,
		Content:   req.Content,
		ImagePath: req.ImagePath,
	})
	if err != nil {
		return nil, mapError(ctx, err, 0)
	}

	logger.FromContext(ctx).Info("post created", "post_id", p.ID)
	return toPostModel(p), nil
}

func (s *Server) ReadPost(ctx context.Context, req *ReadPostRequest) (*PostModel, error) {
	p, err := s.posts.GetPost(ctx, req.ID)
	if err != nil {
		return nil, mapError(ctx, err, req.ID)
	}
	return toPostModel(p), nil
}

func (s *Server) UpdatePost(ctx context.Context, req *UpdatePostRequest) (*PostModel, error) {
	p, err := s.posts.UpdatePost(ctx, req.ID, service.UpdatePostRequest{
		Title:     req.Title,
		Content:   req.Content,
		ImagePath: req.ImagePath,
	})
	if err != nil {
		return nil, mapError(ctx, err, req.ID)
	}

	logger.FromContext(ctx).Info("post updated", "post_id", p.ID)
	return toPostModel(p), nil
}

func (s *Server) DeletePost(ctx context.Context, req *DeletePostRequest) (*DeletePostReply, error) {
	if err := s.posts.DeletePost(ctx, req.ID); err != nil {
		return nil, mapError(ctx, err, req.ID)
	}

	logger.FromContext(ctx).Info("post deleted", "post_id", req.ID)
	return &DeletePostReply{
		Success: true,
		Message: fmt.Sprintf("post with id=%d has been deleted", req.ID),
	}, nil
}

func (s *Server) ListPosts(ctx context.Context, req *ListPostsRequest) (*ListPostsReply, error) {
	posts, err := s.posts.ListPosts(ctx, service.ListPostsRequest{
		Search:   req.Search,
		Sort:     req.Sort,
		Order:    req.Order,
		Page:     req.Page,
		PageSize: req.PageSize,
	})
	if err != nil {
		return nil, mapError(ctx, err, 0)
	}

	out := make([]*PostModel, 0, len(posts))
	for _, p := range posts {
		out = append(out, toPostModel(p))
	}
	return &ListPostsReply{Posts: out}, nil
}

// WatchPosts streams post events until the client goes away.
func (s *Server) WatchPosts(req *WatchPostsRequest, stream grpc.ServerStream) error {
	if s.events == nil {
		return status.Error(codes.Unimplemented, "post events are not available")
	}

	ctx := stream.Context()
	want := make(map[model.PostEventType]bool, len(req.Types))
	for _, t := range req.Types {
		want[model.PostEventType(t)] = true
	}

	for ev := range s.events.Subscribe(ctx) {
		if len(want) > 0 && !want[ev.Type] {
			continue
		}
		if err := stream.SendMsg(toPostEventModel(ev)); err != nil {
			return err
		}
	}
	return status.FromContextError(ctx.Err()).Err()
}

func mapError(ctx context.Context, err error, postID int64) error {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		return status.Error(codes.InvalidArgument, verr.Error())
	case errors.Is(err, service.ErrInvalidRequest):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, service.ErrNotFound):
		return status.Errorf(codes.NotFound, "post with id=%d is not found", postID)
	default:
		logger.FromContext(ctx).Error("rpc failed", "error", err)
		return status.Error(codes.Internal, "internal error")
	}
}
