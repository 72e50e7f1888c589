package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/elskow/sphere-accounts/internal/auth"
)

const maxBodyBytes = 1 << 20

type Handler struct {
	service *auth.Service
	log     *zap.Logger
}

func NewHandler(service *auth.Service, log *zap.Logger) *Handler {
	return &Handler{service: service, log: log}
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var in auth.RegisterInput
	if !h.decode(w, r, &in) {
		return
	}

	account, err := h.service.Register(r.Context(), in)
	if err != nil {
		h.fail(w, "register", err)
		return
	}

	writeJSON(w, http.StatusCreated, envelope{
		Success: true,
		Message: "User registered successfully. Please check your email to verify your account.",
		User:    account,
	})
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var in auth.LoginInput
	if !h.decode(w, r, &in) {
		return
	}

	result, err := h.service.Login(r.Context(), in)
	if err != nil {
		h.fail(w, "login", err)
		return
	}

	writeJSON(w, http.StatusOK, envelope{
		Success: true,
		Message: "Login successful.",
		Token:   result.Token,
		User:    result.Account,
	})
}

func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, envelope{Message: "Not authorized."})
		return
	}

	profile, err := h.service.GetProfile(r.Context(), identity)
	if err != nil {
		h.fail(w, "get profile", err)
		return
	}

	writeJSON(w, http.StatusOK, envelope{Success: true, User: profile})
}

func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, envelope{Message: "Not authorized."})
		return
	}

	var update auth.ProfileUpdate
	if !h.decode(w, r, &update) {
		return
	}

	profile, err := h.service.UpdateProfile(r.Context(), identity, update)
	if err != nil {
		h.fail(w, "update profile", err)
		return
	}

	writeJSON(w, http.StatusOK, envelope{
		Success: true,
		Message: "Profile updated successfully.",
		User:    profile,
	})
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(dst)
	if err == nil {
		return true
	}

	message := "Malformed request body."
	if errors.Is(err, io.EOF) {
		message = "Request body is required."
	}
	writeJSON(w, http.StatusBadRequest, envelope{
		Message:   message,
		ErrorCode: auth.CodeValidationFailed,
	})
	return false
}

func (h *Handler) fail(w http.ResponseWriter, operation string, err error) {
	failure := auth.Classify(err)
	if failure.Class == auth.ClassInternal {
		h.log.Error(operation+" failed", zap.Error(err))
	}
	writeFailure(w, failure)
}
