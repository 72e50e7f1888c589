package auth

import (
	"context"

	"go.uber.org/zap"
	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const errorDomain = "accounts.sphere"

type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RegisterResponse struct {
	Success bool           `json:"success"`
	Message string         `json:"message"`
	User    *PublicAccount `json:"user"`
}

type LoginRequest struct {
	LoginIdentifier string `json:"loginIdentifier"`
	Password        string `json:"password"`
}

type LoginResponse struct {
	Success bool          `json:"success"`
	Message string        `json:"message"`
	Token   string        `json:"token"`
	User    *LoginAccount `json:"user"`
}

type GetProfileRequest struct{}

type UpdateProfileRequest struct {
	ProfileUpdate
}

type ProfileResponse struct {
	Success bool     `json:"success"`
	Message string   `json:"message,omitempty"`
	User    *Profile `json:"user"`
}

// Handler serves the accounts gRPC service.
type Handler struct {
	service *Service
	log     *zap.Logger
}

func NewHandler(service *Service, log *zap.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log,
	}
}

func (h *Handler) Register(ctx context.Context, req *RegisterRequest) (*RegisterResponse, error) {
	h.log.Info("handling register request", zap.String("username", req.Username))

	account, err := h.service.Register(ctx, RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return nil, h.toStatus("register", err)
	}

	return &RegisterResponse{
		Success: true,
		Message: "User registered successfully. Please check your email to verify your account.",
		User:    account,
	}, nil
}

func (h *Handler) Login(ctx context.Context, req *LoginRequest) (*LoginResponse, error) {
	result, err := h.service.Login(ctx, LoginInput{
		LoginIdentifier: req.LoginIdentifier,
		Password:        req.Password,
	})
	if err != nil {
		return nil, h.toStatus("login", err)
	}

	return &LoginResponse{
		Success: true,
		Message: "Login successful.",
		Token:   result.Token,
		User:    result.Account,
	}, nil
}

func (h *Handler) GetProfile(ctx context.Context, _ *GetProfileRequest) (*ProfileResponse, error) {
	identity, ok := IdentityFromContext(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, "authentication required")
	}

	profile, err := h.service.GetProfile(ctx, identity)
	if err != nil {
		return nil, h.toStatus("get profile", err)
	}

	return &ProfileResponse{Success: true, User: profile}, nil
}

func (h *Handler) UpdateProfile(ctx context.Context, req *UpdateProfileRequest) (*ProfileResponse, error) {
	identity, ok := IdentityFromContext(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, "authentication required")
	}

	profile, err := h.service.UpdateProfile(ctx, identity, req.ProfileUpdate)
	if err != nil {
		return nil, h.toStatus("update profile", err)
	}

	return &ProfileResponse{
		Success: true,
		Message: "Profile updated successfully.",
		User:    profile,
	}, nil
}

// toStatus converts a service error into a gRPC status carrying the failure
// code as ErrorInfo and field errors as BadRequest details.
func (h *Handler) toStatus(operation string, err error) error {
	failure := Classify(err)
	if failure.Class == ClassInternal {
		h.log.Error(operation+" failed", zap.Error(err))
	}

	st := status.New(GRPCCode(failure.Class), failure.Message)
	if withInfo, detailErr := st.WithDetails(&errdetails.ErrorInfo{
		Reason: failure.Code,
		Domain: errorDomain,
	}); detailErr == nil {
		st = withInfo
	}

	if len(failure.Fields) > 0 {
		violations := make([]*errdetails.BadRequest_FieldViolation, 0, len(failure.Fields))
		for _, f := range failure.Fields {
			violations = append(violations, &errdetails.BadRequest_FieldViolation{
				Field:       f.Field,
				Description: f.Message,
			})
		}
		if withFields, detailErr := st.WithDetails(&errdetails.BadRequest{FieldViolations: violations}); detailErr == nil {
			st = withFields
		}
	}

	return st.Err()
}

// GRPCCode maps a failure class to its gRPC status code.
func GRPCCode(class Class) codes.Code {
	switch class {
	case ClassValidation:
		return codes.InvalidArgument
	case ClassUnauthenticated:
		return codes.Unauthenticated
	case ClassForbidden:
		return codes.PermissionDenied
	case ClassNotFound:
		return codes.NotFound
	case ClassConflict:
		return codes.AlreadyExists
	default:
		return codes.Internal
	}
}
