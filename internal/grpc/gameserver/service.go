package gameserver

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"

	"github.com/mitchelldurbincs/GridTactics/internal/game/events"
)

// ServiceName is the fully qualified gRPC service name
const ServiceName = "tactics.v1.TacticsService"

const (
	methodCreateGame     = "/" + ServiceName + "/CreateGame"
	methodListGames      = "/" + ServiceName + "/ListGames"
	methodGetState       = "/" + ServiceName + "/GetState"
	methodExecute        = "/" + ServiceName + "/Execute"
	methodSubmitCommands = "/" + ServiceName + "/SubmitCommands"
	methodRunAITurn      = "/" + ServiceName + "/RunAITurn"
	methodSetBusy        = "/" + ServiceName + "/SetBusy"
	methodRestart        = "/" + ServiceName + "/Restart"
	methodWatchGame      = "/" + ServiceName + "/WatchGame"
)

// TacticsServiceServer is the server API for the tactics service
type TacticsServiceServer interface {
	CreateGame(context.Context, *CreateGameRequest) (*CreateGameResponse, error)
	ListGames(context.Context, *emptypb.Empty) (*ListGamesResponse, error)
	GetState(context.Context, *GetStateRequest) (*GetStateResponse, error)
	Execute(context.Context, *ExecuteRequest) (*ExecuteResponse, error)
	SubmitCommands(context.Context, *SubmitCommandsRequest) (*CommandsResponse, error)
	RunAITurn(context.Context, *GameRequest) (*CommandsResponse, error)
	SetBusy(context.Context, *SetBusyRequest) (*emptypb.Empty, error)
	Restart(context.Context, *GameRequest) (*GetStateResponse, error)
	WatchGame(*WatchGameRequest, grpc.ServerStreamingServer[events.Envelope]) error
}

func unaryHandler[Req, Resp any](method string, call func(TacticsServiceServer, context.Context, *Req) (*Resp, error)) grpc.MethodHandler {
	return func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(TacticsServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: method}
		handler := func(ctx context.Context, req interface{}) (interface{}, error) {
			return call(srv.(TacticsServiceServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

func watchGameHandler(srv interface{}, stream grpc.ServerStream) error {
	in := new(WatchGameRequest)
	if err := stream.RecvMsg(in); err != nil {
		return err
	}
	return srv.(TacticsServiceServer).WatchGame(in, &grpc.GenericServerStream[WatchGameRequest, events.Envelope]{ServerStream: stream})
}

// TacticsService_ServiceDesc is the grpc.ServiceDesc for the tactics service.
// Messages are JSON; see CodecName.
var TacticsService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*TacticsServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "CreateGame", Handler: unaryHandler(methodCreateGame, TacticsServiceServer.CreateGame)},
		{MethodName: "ListGames", Handler: unaryHandler(methodListGames, TacticsServiceServer.ListGames)},
		{MethodName: "GetState", Handler: unaryHandler(methodGetState, TacticsServiceServer.GetState)},
		{MethodName: "Execute", Handler: unaryHandler(methodExecute, TacticsServiceServer.Execute)},
		{MethodName: "SubmitCommands", Handler: unaryHandler(methodSubmitCommands, TacticsServiceServer.SubmitCommands)},
		{MethodName: "RunAITurn", Handler: unaryHandler(methodRunAITurn, TacticsServiceServer.RunAITurn)},
		{MethodName: "SetBusy", Handler: unaryHandler(methodSetBusy, TacticsServiceServer.SetBusy)},
		{MethodName: "Restart", Handler: unaryHandler(methodRestart, TacticsServiceServer.Restart)},
	},
	Streams: []grpc.StreamDesc{
		{StreamName: "WatchGame", Handler: watchGameHandler, ServerStreams: true},
	},
	Metadata: "tactics/v1/tactics.json",
}

// RegisterTacticsServiceServer registers srv on s
func RegisterTacticsServiceServer(s grpc.ServiceRegistrar, srv TacticsServiceServer) {
	s.RegisterService(&TacticsService_ServiceDesc, srv)
}

// Client is the client API for the tactics service. The connection must
// have been dialed with DialOptions or every call must carry
// grpc.CallContentSubtype(CodecName).
type Client struct {
	cc grpc.ClientConnInterface
}

// NewClient wraps a client connection
func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in interface{}, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	if err := cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateGame(ctx context.Context, in *CreateGameRequest, opts ...grpc.CallOption) (*CreateGameResponse, error) {
	return invoke[CreateGameResponse](ctx, c.cc, methodCreateGame, in, opts)
}

func (c *Client) ListGames(ctx context.Context, opts ...grpc.CallOption) (*ListGamesResponse, error) {
	return invoke[ListGamesResponse](ctx, c.cc, methodListGames, &emptypb.Empty{}, opts)
}

func (c *Client) GetState(ctx context.Context, in *GetStateRequest, opts ...grpc.CallOption) (*GetStateResponse, error) {
	return invoke[GetStateResponse](ctx, c.cc, methodGetState, in, opts)
}

func (c *Client) Execute(ctx context.Context, in *ExecuteRequest, opts ...grpc.CallOption) (*ExecuteResponse, error) {
	return invoke[ExecuteResponse](ctx, c.cc, methodExecute, in, opts)
}

func (c *Client) SubmitCommands(ctx context.Context, in *SubmitCommandsRequest, opts ...grpc.CallOption) (*CommandsResponse, error) {
	return invoke[CommandsResponse](ctx, c.cc, methodSubmitCommands, in, opts)
}

func (c *Client) RunAITurn(ctx context.Context, in *GameRequest, opts ...grpc.CallOption) (*CommandsResponse, error) {
	return invoke[CommandsResponse](ctx, c.cc, methodRunAITurn, in, opts)
}

func (c *Client) SetBusy(ctx context.Context, in *SetBusyRequest, opts ...grpc.CallOption) error {
	_, err := invoke[emptypb.Empty](ctx, c.cc, methodSetBusy, in, opts)
	return err
}

func (c *Client) Restart(ctx context.Context, in *GameRequest, opts ...grpc.CallOption) (*GetStateResponse, error) {
	return invoke[GetStateResponse](ctx, c.cc, methodRestart, in, opts)
}

// WatchGame opens the event stream of a game
func (c *Client) WatchGame(ctx context.Context, in *WatchGameRequest, opts ...grpc.CallOption) (grpc.ServerStreamingClient[events.Envelope], error) {
	stream, err := c.cc.NewStream(ctx, &TacticsService_ServiceDesc.Streams[0], methodWatchGame, opts...)
	if err != nil {
		return nil, err
	}
	x := &grpc.GenericClientStream[WatchGameRequest, events.Envelope]{ClientStream: stream}
	if err := x.ClientStream.SendMsg(in); err != nil {
		return nil, err
	}
	if err := x.ClientStream.CloseSend(); err != nil {
		return nil, err
	}
	return x, nil
}
