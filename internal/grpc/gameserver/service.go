package gameserver

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	gamev1 "github.com/mitchelldurbincs/gasgrid/pkg/api/game/v1"
)

// GameServiceServer is the server API for the game service
type GameServiceServer interface {
	CreateGame(context.Context, *gamev1.CreateGameRequest) (*gamev1.CreateGameResponse, error)
	RegisterPlayer(context.Context, *gamev1.RegisterPlayerRequest) (*gamev1.RegisterPlayerResponse, error)
	JoinGame(context.Context, *gamev1.JoinGameRequest) (*gamev1.JoinGameResponse, error)
	SubmitAction(context.Context, *gamev1.SubmitActionRequest) (*gamev1.SubmitActionResponse, error)
	GetGameState(context.Context, *gamev1.GetGameStateRequest) (*gamev1.GetGameStateResponse, error)
	RunAISweep(context.Context, *gamev1.RunAISweepRequest) (*gamev1.RunAISweepResponse, error)
	EndGame(context.Context, *gamev1.EndGameRequest) (*gamev1.EndGameResponse, error)
	RecentActions(context.Context, *gamev1.RecentActionsRequest) (*gamev1.RecentActionsResponse, error)
	GetResults(context.Context, *gamev1.GetResultsRequest) (*gamev1.GetResultsResponse, error)
}

func fullMethod(name string) string {
	return "/" + gamev1.ServiceName + "/" + name
}

// unary builds the method descriptor for one RPC
func unary[Req, Resp any](name string, call func(GameServiceServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			wire := new(structpb.Struct)
			if err := dec(wire); err != nil {
				return nil, err
			}
			in := new(Req)
			if err := fromStruct(wire, in); err != nil {
				return nil, status.Error(codes.InvalidArgument, err.Error())
			}
			handler := func(ctx context.Context, req any) (any, error) {
				resp, err := call(srv.(GameServiceServer), ctx, req.(*Req))
				if err != nil {
					return nil, err
				}
				out, err := toStruct(resp)
				if err != nil {
					return nil, status.Error(codes.Internal, err.Error())
				}
				return out, nil
			}
			if interceptor == nil {
				return handler(ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod(name)}
			return interceptor(ctx, in, info, handler)
		},
	}
}

// ServiceDesc describes the game service for grpc.Server.RegisterService
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: gamev1.ServiceName,
	HandlerType: (*GameServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("CreateGame", GameServiceServer.CreateGame),
		unary("RegisterPlayer", GameServiceServer.RegisterPlayer),
		unary("JoinGame", GameServiceServer.JoinGame),
		unary("SubmitAction", GameServiceServer.SubmitAction),
		unary("GetGameState", GameServiceServer.GetGameState),
		unary("RunAISweep", GameServiceServer.RunAISweep),
		unary("EndGame", GameServiceServer.EndGame),
		unary("RecentActions", GameServiceServer.RecentActions),
		unary("GetResults", GameServiceServer.GetResults),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "gasgrid/game/v1",
}

// RegisterGameServiceServer registers srv with s
func RegisterGameServiceServer(s grpc.ServiceRegistrar, srv GameServiceServer) {
	s.RegisterService(&ServiceDesc, srv)
}

// Client is the client API for the game service
type Client struct {
	cc grpc.ClientConnInterface
}

func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in any, opts []grpc.CallOption) (*Resp, error) {
	wire, err := toStruct(in)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	reply := new(structpb.Struct)
	if err := cc.Invoke(ctx, fullMethod(method), wire, reply, opts...); err != nil {
		return nil, err
	}
	out := new(Resp)
	if err := fromStruct(reply, out); err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return out, nil
}

func (c *Client) CreateGame(ctx context.Context, in *gamev1.CreateGameRequest, opts ...grpc.CallOption) (*gamev1.CreateGameResponse, error) {
	return invoke[gamev1.CreateGameResponse](ctx, c.cc, "CreateGame", in, opts)
}

func (c *Client) RegisterPlayer(ctx context.Context, in *gamev1.RegisterPlayerRequest, opts ...grpc.CallOption) (*gamev1.RegisterPlayerResponse, error) {
	return invoke[gamev1.RegisterPlayerResponse](ctx, c.cc, "RegisterPlayer", in, opts)
}

func (c *Client) JoinGame(ctx context.Context, in *gamev1.JoinGameRequest, opts ...grpc.CallOption) (*gamev1.JoinGameResponse, error) {
	return invoke[gamev1.JoinGameResponse](ctx, c.cc, "JoinGame", in, opts)
}

func (c *Client) SubmitAction(ctx context.Context, in *gamev1.SubmitActionRequest, opts ...grpc.CallOption) (*gamev1.SubmitActionResponse, error) {
	return invoke[gamev1.SubmitActionResponse](ctx, c.cc, "SubmitAction", in, opts)
}

func (c *Client) GetGameState(ctx context.Context, in *gamev1.GetGameStateRequest, opts ...grpc.CallOption) (*gamev1.GetGameStateResponse, error) {
	return invoke[gamev1.GetGameStateResponse](ctx, c.cc, "GetGameState", in, opts)
}

func (c *Client) RunAISweep(ctx context.Context, in *gamev1.RunAISweepRequest, opts ...grpc.CallOption) (*gamev1.RunAISweepResponse, error) {
	return invoke[gamev1.RunAISweepResponse](ctx, c.cc, "RunAISweep", in, opts)
}

func (c *Client) EndGame(ctx context.Context, in *gamev1.EndGameRequest, opts ...grpc.CallOption) (*gamev1.EndGameResponse, error) {
	return invoke[gamev1.EndGameResponse](ctx, c.cc, "EndGame", in, opts)
}

func (c *Client) RecentActions(ctx context.Context, in *gamev1.RecentActionsRequest, opts ...grpc.CallOption) (*gamev1.RecentActionsResponse, error) {
	return invoke[gamev1.RecentActionsResponse](ctx, c.cc, "RecentActions", in, opts)
}

func (c *Client) GetResults(ctx context.Context, in *gamev1.GetResultsRequest, opts ...grpc.CallOption) (*gamev1.GetResultsResponse, error) {
	return invoke[gamev1.GetResultsResponse](ctx, c.cc, "GetResults", in, opts)
}
