package grpcapi

import (
	"context"

	"google.golang.org/grpc"
)

type postServiceServer interface {
	CreatePost(context.Context, *CreatePostRequest) (*PostModel, error)
	ReadPost(context.Context, *ReadPostRequest) (*PostModel, error)
	UpdatePost(context.Context, *UpdatePostRequest) (*PostModel, error)
	DeletePost(context.Context, *DeletePostRequest) (*DeletePostReply, error)
	ListPosts(context.Context, *ListPostsRequest) (*ListPostsReply, error)
	WatchPosts(*WatchPostsRequest, grpc.ServerStream) error
}

var serviceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*postServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "CreatePost", Handler: unaryHandler("CreatePost", postServiceServer.CreatePost)},
		{MethodName: "ReadPost", Handler: unaryHandler("ReadPost", postServiceServer.ReadPost)},
		{MethodName: "UpdatePost", Handler: unaryHandler("UpdatePost", postServiceServer.UpdatePost)},
		{MethodName: "DeletePost", Handler: unaryHandler("DeletePost", postServiceServer.DeletePost)},
		{MethodName: "ListPosts", Handler: unaryHandler("ListPosts", postServiceServer.ListPosts)},
	},
	Streams: []grpc.StreamDesc{
		{StreamName: "WatchPosts", Handler: watchPostsHandler, ServerStreams: true},
	},
	Metadata: "barefoot/posts/v1/posts.proto",
}

func fullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}

// unaryHandler builds the decode and interceptor plumbing protoc-gen-go-grpc
// would otherwise generate per method.
func unaryHandler[Req, Resp any](method string, call func(postServiceServer, context.Context, *Req) (*Resp, error)) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(postServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: fullMethod(method),
		}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(postServiceServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

func watchPostsHandler(srv any, stream grpc.ServerStream) error {
	in := new(WatchPostsRequest)
	if err := stream.RecvMsg(in); err != nil {
		return err
	}
	return srv.(postServiceServer).WatchPosts(in, stream)
}
