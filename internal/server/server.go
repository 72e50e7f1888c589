package server

import (
	"context"
	"fmt"
	"net"
	"os"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"google.golang.org/grpc"
	"google.golang.org/grpc/status"

	"github.com/elskow/sphere-accounts/internal/api"
	"github.com/elskow/sphere-accounts/internal/auth"
	"github.com/elskow/sphere-accounts/internal/config"
)

type Server struct {
	config     *config.AppConfig
	log        *zap.Logger
	grpcServer *grpc.Server
	handler    *auth.Handler
	guard      *auth.Guard
}

type Params struct {
	fx.In

	Config  *config.AppConfig
	Logger  *zap.Logger
	Handler *auth.Handler
	Guard   *auth.Guard
}

func isProtectedEndpoint(method string) bool {
	isPublic, exists := api.PublicEndpoints[method]
	return !exists || !isPublic
}

// AuthInterceptor rejects calls to protected methods that lack a valid session
// token before the handler runs.
func AuthInterceptor(guard *auth.Guard, log *zap.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		// Skip authentication for non-protected endpoints
		if !isProtectedEndpoint(info.FullMethod) {
			return handler(ctx, req)
		}

		newCtx, err := guard.AuthenticationMiddleware(ctx)
		if err != nil {
			failure := auth.Classify(err)
			log.Warn("authentication failed",
				zap.String("method", info.FullMethod),
				zap.String("reason", failure.Code))
			return nil, status.Error(auth.GRPCCode(failure.Class), failure.Message)
		}

		return handler(newCtx, req)
	}
}

func NewServer(p Params) *Server {
	opts := []grpc.ServerOption{
		grpc.ForceServerCodec(api.JSONCodec()),
		grpc.UnaryInterceptor(AuthInterceptor(p.Guard, p.Logger)),
		grpc.MaxRecvMsgSize(p.Config.GRPC.MaxReceiveMessageSize),
		grpc.MaxSendMsgSize(p.Config.GRPC.MaxSendMessageSize),
	}

	grpcServer := grpc.NewServer(opts...)

	server := &Server{
		config:     p.Config,
		log:        p.Logger,
		grpcServer: grpcServer,
		handler:    p.Handler,
		guard:      p.Guard,
	}

	// Register services
	auth.RegisterAccountsServer(grpcServer, p.Handler)

	return server
}

func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%s", s.config.Server.Host, s.config.Server.Port)
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}

	s.log.Info("Starting gRPC server",
		zap.String("address", addr),
		zap.Object("config", serverConfigToField(s.config)),
	)

	if err := s.grpcServer.Serve(lis); err != nil {
		return fmt.Errorf("failed to serve: %w", err)
	}

	return nil
}

func serverConfigToField(config *config.AppConfig) zapcore.ObjectMarshaler {
	return zapcore.ObjectMarshalerFunc(func(enc zapcore.ObjectEncoder) error {
		enc.AddString("environment", os.Getenv("APP_ENV"))
		enc.AddInt("max_receive_size", config.GRPC.MaxReceiveMessageSize)
		enc.AddInt("max_send_size", config.GRPC.MaxSendMessageSize)
		enc.AddDuration("token_expiration", config.Auth.TokenExpiration)
		return nil
	})
}

func (s *Server) Stop() {
	s.log.Info("shutting down gRPC server")
	s.grpcServer.GracefulStop()
}
