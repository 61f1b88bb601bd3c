package sequencerpb

import (
	"context"

	"google.golang.org/grpc"
)

const ServiceName = "dasequencer.v1.DaSequencerNodeService"

const (
	streamReadFromHeightMethod = "/" + ServiceName + "/StreamReadFromHeight"
	batchWriteMethod           = "/" + ServiceName + "/BatchWrite"
	sendStateMethod            = "/" + ServiceName + "/SendState"
)

type DaSequencerNodeServiceClient interface {
	StreamReadFromHeight(ctx context.Context, in *StreamReadFromHeightRequest, opts ...grpc.CallOption) (DaSequencerNodeService_StreamReadFromHeightClient, error)
	BatchWrite(ctx context.Context, in *BatchWriteRequest, opts ...grpc.CallOption) (*BatchWriteResponse, error)
	SendState(ctx context.Context, in *SendStateRequest, opts ...grpc.CallOption) (*SendStateResponse, error)
}

type daSequencerNodeServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewDaSequencerNodeServiceClient(cc grpc.ClientConnInterface) DaSequencerNodeServiceClient {
	return &daSequencerNodeServiceClient{cc}
}

func (c *daSequencerNodeServiceClient) StreamReadFromHeight(ctx context.Context, in *StreamReadFromHeightRequest, opts ...grpc.CallOption) (DaSequencerNodeService_StreamReadFromHeightClient, error) {
	stream, err := c.cc.NewStream(ctx, &ServiceDesc.Streams[0], streamReadFromHeightMethod, opts...)
	if err != nil {
		return nil, err
	}
	x := &daSequencerNodeServiceStreamReadFromHeightClient{stream}
	if err := x.ClientStream.SendMsg(in); err != nil {
		return nil, err
	}
	if err := x.ClientStream.CloseSend(); err != nil {
		return nil, err
	}
	return x, nil
}

type DaSequencerNodeService_StreamReadFromHeightClient interface {
	Recv() (*StreamReadFromHeightResponse, error)
	grpc.ClientStream
}

type daSequencerNodeServiceStreamReadFromHeightClient struct {
	grpc.ClientStream
}

func (x *daSequencerNodeServiceStreamReadFromHeightClient) Recv() (*StreamReadFromHeightResponse, error) {
	m := new(StreamReadFromHeightResponse)
	if err := x.ClientStream.RecvMsg(m); err != nil {
		return nil, err
	}
	return m, nil
}

func (c *daSequencerNodeServiceClient) BatchWrite(ctx context.Context, in *BatchWriteRequest, opts ...grpc.CallOption) (*BatchWriteResponse, error) {
	out := new(BatchWriteResponse)
	if err := c.cc.Invoke(ctx, batchWriteMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *daSequencerNodeServiceClient) SendState(ctx context.Context, in *SendStateRequest, opts ...grpc.CallOption) (*SendStateResponse, error) {
	out := new(SendStateResponse)
	if err := c.cc.Invoke(ctx, sendStateMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

type DaSequencerNodeServiceServer interface {
	StreamReadFromHeight(*StreamReadFromHeightRequest, DaSequencerNodeService_StreamReadFromHeightServer) error
	BatchWrite(context.Context, *BatchWriteRequest) (*BatchWriteResponse, error)
	SendState(context.Context, *SendStateRequest) (*SendStateResponse, error)
}

func RegisterDaSequencerNodeServiceServer(s grpc.ServiceRegistrar, srv DaSequencerNodeServiceServer) {
	s.RegisterService(&ServiceDesc, srv)
}

type DaSequencerNodeService_StreamReadFromHeightServer interface {
	Send(*StreamReadFromHeightResponse) error
	grpc.ServerStream
}

type daSequencerNodeServiceStreamReadFromHeightServer struct {
	grpc.ServerStream
}

func (x *daSequencerNodeServiceStreamReadFromHeightServer) Send(m *StreamReadFromHeightResponse) error {
	return x.ServerStream.SendMsg(m)
}

func streamReadFromHeightHandler(srv any, stream grpc.ServerStream) error {
	m := new(StreamReadFromHeightRequest)
	if err := stream.RecvMsg(m); err != nil {
		return err
	}
	return srv.(DaSequencerNodeServiceServer).StreamReadFromHeight(m, &daSequencerNodeServiceStreamReadFromHeightServer{stream})
}

func batchWriteHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(BatchWriteRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(DaSequencerNodeServiceServer).BatchWrite(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: batchWriteMethod,
	}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(DaSequencerNodeServiceServer).BatchWrite(ctx, req.(*BatchWriteRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func sendStateHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(SendStateRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(DaSequencerNodeServiceServer).SendState(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: sendStateMethod,
	}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(DaSequencerNodeServiceServer).SendState(ctx, req.(*SendStateRequest))
	}
	return interceptor(ctx, in, info, handler)
}

var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*DaSequencerNodeServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "BatchWrite",
			Handler:    batchWriteHandler,
		},
		{
			MethodName: "SendState",
			Handler:    sendStateHandler,
		},
	},
	Streams: []grpc.StreamDesc{
		{
			StreamName:    "StreamReadFromHeight",
			Handler:       streamReadFromHeightHandler,
			ServerStreams: true,
		},
	},
}
