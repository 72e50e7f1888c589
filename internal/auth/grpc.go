package auth

import (
	"context"

	"google.golang.org/grpc"

	"github.com/elskow/sphere-accounts/internal/api"
)

// AccountsServer is the server API of the accounts.Accounts service.
type AccountsServer interface {
	Register(context.Context, *RegisterRequest) (*RegisterResponse, error)
	Login(context.Context, *LoginRequest) (*LoginResponse, error)
	GetProfile(context.Context, *GetProfileRequest) (*ProfileResponse, error)
	UpdateProfile(context.Context, *UpdateProfileRequest) (*ProfileResponse, error)
}

var _ AccountsServer = (*Handler)(nil)

// accountsServiceDesc describes accounts.Accounts. Messages are plain structs
// encoded with the api JSON codec.
var accountsServiceDesc = grpc.ServiceDesc{
	ServiceName: api.AccountsService,
	HandlerType: (*AccountsServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Register", Handler: unaryHandler(api.AccountsRegister, AccountsServer.Register)},
		{MethodName: "Login", Handler: unaryHandler(api.AccountsLogin, AccountsServer.Login)},
		{MethodName: "GetProfile", Handler: unaryHandler(api.AccountsGetProfile, AccountsServer.GetProfile)},
		{MethodName: "UpdateProfile", Handler: unaryHandler(api.AccountsUpdateProfile, AccountsServer.UpdateProfile)},
	},
	Streams: []grpc.StreamDesc{},
}

func RegisterAccountsServer(s grpc.ServiceRegistrar, srv AccountsServer) {
	s.RegisterService(&accountsServiceDesc, srv)
}

func unaryHandler[Req, Resp any](
	fullMethod string,
	call func(AccountsServer, context.Context, *Req) (*Resp, error),
) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}

		server := srv.(AccountsServer)
		if interceptor == nil {
			return call(server, ctx, in)
		}

		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: fullMethod,
		}
		return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
			return call(server, ctx, req.(*Req))
		})
	}
}
