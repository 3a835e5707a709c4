package grpcapi

import (
	"context"

	"google.golang.org/grpc"
)

// Client calls the post service over a connection using the JSON codec.
type Client struct {
	cc grpc.ClientConnInterface
}

func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

func (c *Client) CreatePost(ctx context.Context, in *CreatePostRequest, opts ...grpc.CallOption) (*PostModel, error) {
	out := new(PostModel)
	return out, c.invoke(ctx, "CreatePost", in, out, opts)
}

func (c *Client) ReadPost(ctx context.Context, in *ReadPostRequest, opts ...grpc.CallOption) (*PostModel, error) {
	out := new(PostModel)
	return out, c.invoke(ctx, "ReadPost", in, out, opts)
}

func (c *Client) UpdatePost(ctx context.Context, in *UpdatePostRequest, opts ...grpc.CallOption) (*PostModel, error) {
	out := new(PostModel)
	return out, c.invoke(ctx, "UpdatePost", in, out, opts)
}

func (c *Client) DeletePost(ctx context.Context, in *DeletePostRequest, opts ...grpc.CallOption) (*DeletePostReply, error) {
	out := new(DeletePostReply)
	return out, c.invoke(ctx, "DeletePost", in, out, opts)
}

func (c *Client) ListPosts(ctx context.Context, in *ListPostsRequest, opts ...grpc.CallOption) (*ListPostsReply, error) {
	out := new(ListPostsReply)
	return out, c.invoke(ctx, "ListPosts", in, out, opts)
}

// WatchPosts opens a stream of post events.
func (c *Client) WatchPosts(ctx context.Context, in *WatchPostsRequest, opts ...grpc.CallOption) (*PostEventStream, error) {
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	stream, err := c.cc.NewStream(ctx, &serviceDesc.Streams[0], fullMethod("WatchPosts"), opts...)
	if err != nil {
		return nil, err
	}
	if err := stream.SendMsg(in); err != nil {
		return nil, err
	}
	if err := stream.CloseSend(); err != nil {
		return nil, err
	}
	return &PostEventStream{stream: stream}, nil
}

type PostEventStream struct {
	stream grpc.ClientStream
}

func (s *PostEventStream) Recv() (*PostEventModel, error) {
	m := new(PostEventModel)
	if err := s.stream.RecvMsg(m); err != nil {
		return nil, err
	}
	return m, nil
}

func (c *Client) invoke(ctx context.Context, method string, in, out any, opts []grpc.CallOption) error {
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	return c.cc.Invoke(ctx, fullMethod(method), in, out, opts...)
}
