package auth

import "github.com/samber/oops"

// Decision is the outcome of EvaluateAccess.
type Decision int

const (
	DenyUnrecognized Decision = iota
	Allow
	DenyUnverified
	DenySuspended
	DenyBanned
	DenyDeactivated
)

func (d Decision) String() string {
	switch d {
	case Allow:
		return "allow"
	case DenyUnverified:
		return "deny_unverified"
	case DenySuspended:
		return "deny_suspended"
	case DenyBanned:
		return "deny_banned"
	case DenyDeactivated:
		return "deny_deactivated"
	default:
		return "deny_unrecognized"
	}
}

// EvaluateAccess decides whether an account may authenticate. Hold statuses
// deny regardless of verification; unknown statuses deny.
func EvaluateAccess(status Status, emailVerified bool) Decision {
	switch status {
	case StatusSuspended:
		return DenySuspended
	case StatusBanned:
		return DenyBanned
	case StatusDeactivated:
		return DenyDeactivated
	case StatusPendingVerification:
		if !emailVerified {
			return DenyUnverified
		}
		return Allow
	case StatusActive:
		return Allow
	default:
		return DenyUnrecognized
	}
}

// accessDenied converts a non-Allow decision into a coded error.
func accessDenied(d Decision, status Status) error {
	var code, message string
	switch d {
	case DenyUnverified:
		code = CodeEmailNotVerified
		message = "Email not verified. Please verify your email before logging in."
	case DenySuspended:
		code = CodeAccountSuspended
		message = "Account is suspended. Please contact support."
	case DenyBanned:
		code = CodeAccountBanned
		message = "Account is banned. Please contact support."
	case DenyDeactivated:
		code = CodeAccountDeactivated
		message = "Account is deactivated. Please contact support."
	default:
		code = CodeStatusUnrecognized
		message = "Account status does not permit login. Please contact support."
	}

	return oops.Code(code).
		Public(message).
		With("status", string(status)).
		Errorf("login denied: %s", d)
}
