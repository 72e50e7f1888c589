package auth

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/elskow/sphere-accounts/internal/config"
	"github.com/elskow/sphere-accounts/internal/observability"
)

// dummyPassword is hashed once at startup; logins for unknown identifiers are
// verified against it so both failure paths pay for a bcrypt comparison.
const dummyPassword = "timing-equalizer-Passw0rd!"

type Service struct {
	config     *config.AuthConfig
	log        *zap.Logger
	repository Repository
	hasher     *Hasher
	verifier   *VerificationIssuer
	tokens     *TokenService
	metrics    *observability.Metrics
	now        func() time.Time
	dummyHash  string
}

type LoginResult struct {
	Token   string        `json:"token"`
	Account *LoginAccount `json:"user"`
}

func NewService(
	config *config.AuthConfig,
	log *zap.Logger,
	repo Repository,
	tokens *TokenService,
	metrics *observability.Metrics,
) (*Service, error) {
	hasher, err := NewHasher(config.PasswordCost)
	if err != nil {
		return nil, err
	}

	dummyHash, err := hasher.Hash(dummyPassword)
	if err != nil {
		return nil, err
	}

	return &Service{
		config:     config,
		log:        log,
		repository: repo,
		hasher:     hasher,
		verifier:   NewVerificationIssuer(config.VerificationTokenTTL),
		tokens:     tokens,
		metrics:    metrics,
		now:        time.Now,
		dummyHash:  dummyHash,
	}, nil
}

// Register creates a pending_verification account.
func (s *Service) Register(ctx context.Context, in RegisterInput) (_ *PublicAccount, err error) {
	defer func() { s.metrics.RecordRegistration(outcome(err)) }()

	in.Email = NormalizeEmail(in.Email)
	if errs := validateRegisterInput(in); len(errs) > 0 {
		return nil, validationFailed(errs)
	}

	conflicts, err := s.conflictingFields(ctx, in.Username, in.Email)
	if err != nil {
		s.log.Error("failed to look up existing accounts", zap.Error(err))
		return nil, persistenceFailure("find existing accounts", err)
	}
	if len(conflicts) > 0 {
		s.log.Info("registration conflict",
			zap.String("username", in.Username),
			zap.Int("conflicts", len(conflicts)))
		return nil, userExists(conflicts)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, internalFailure("hash password", err)
	}

	verification, err := s.verifier.Issue()
	if err != nil {
		return nil, internalFailure("issue verification token", err)
	}

	now := s.now()
	account := &Account{
		ID:                         uuid.New(),
		Username:                   in.Username,
		Email:                      in.Email,
		PasswordHash:               hash,
		EmailVerificationToken:     verification.Value,
		EmailVerificationExpiresAt: &verification.ExpiresAt,
		IsEmailVerified:            false,
		Status:                     StatusPendingVerification,
		CreatedAt:                  now,
		UpdatedAt:                  now,
	}

	if err := s.repository.CreateAccount(ctx, account); err != nil {
		if errors.Is(err, ErrAccountExists) {
			// Lost a race against a concurrent registration.
			conflicts, lookupErr := s.conflictingFields(ctx, in.Username, in.Email)
			if lookupErr != nil {
				s.log.Warn("failed to re-read conflicting accounts after duplicate insert",
					zap.String("username", in.Username),
					zap.Error(lookupErr))
				conflicts = nil
			}
			return nil, userExists(conflicts)
		}
		s.log.Error("failed to create account",
			zap.String("username", in.Username),
			zap.Error(err))
		return nil, persistenceFailure("insert account", err)
	}

	s.log.Info("account registered",
		zap.String("user_id", account.ID.String()),
		zap.String("username", account.Username))

	return account.Public(), nil
}

// Login checks credentials and account status and issues a session token.
// Unknown identifiers and wrong passwords fail identically.
func (s *Service) Login(ctx context.Context, in LoginInput) (_ *LoginResult, err error) {
	defer func() { s.metrics.RecordLogin(outcome(err)) }()

	if errs := validateLoginInput(in); len(errs) > 0 {
		return nil, validationFailed(errs)
	}

	accounts, err := s.repository.FindByLoginIdentifier(ctx, in.LoginIdentifier)
	if err != nil {
		s.log.Error("failed to look up account for login", zap.Error(err))
		return nil, persistenceFailure("find account by login identifier", err)
	}
	account := pickLoginMatch(accounts, in.LoginIdentifier)

	digest := s.dummyHash
	if account != nil {
		digest = account.PasswordHash
	}

	valid, err := s.hasher.Verify(in.Password, digest)
	if err != nil {
		if account == nil {
			return nil, invalidCredentials()
		}
		s.log.Error("stored password digest is malformed",
			zap.String("user_id", account.ID.String()),
			zap.Error(err))
		return nil, internalFailure("verify password", err)
	}

	if account == nil || !valid {
		return nil, invalidCredentials()
	}

	if decision := EvaluateAccess(account.Status, account.IsEmailVerified); decision != Allow {
		s.log.Info("login denied by account status",
			zap.String("user_id", account.ID.String()),
			zap.String("status", string(account.Status)),
			zap.Stringer("decision", decision))
		return nil, accessDenied(decision, account.Status)
	}

	token, err := s.tokens.Issue(account.ID, account.Username, account.Email)
	if err != nil {
		return nil, internalFailure("issue session token", err)
	}

	return &LoginResult{
		Token:   token,
		Account: account.loginView(),
	}, nil
}

// GetProfile returns the profile of the authenticated account.
func (s *Service) GetProfile(ctx context.Context, identity Identity) (*Profile, error) {
	account, err := s.repository.GetAccountByID(ctx, identity.UserID)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			return nil, accountNotFound(identity.UserID)
		}
		s.log.Error("failed to load profile",
			zap.String("user_id", identity.UserID.String()),
			zap.Error(err))
		return nil, persistenceFailure("find account by id", err)
	}
	return account.Profile(), nil
}

// UpdateProfile applies the supplied profile fields and leaves the rest as is.
func (s *Service) UpdateProfile(ctx context.Context, identity Identity, update ProfileUpdate) (_ *Profile, err error) {
	defer func() { s.metrics.RecordProfileUpdate(outcome(err)) }()

	if update.IsEmpty() {
		return nil, validationFailed([]FieldError{{Message: "No valid fields provided for update."}})
	}
	if errs := validateProfileUpdate(update); len(errs) > 0 {
		return nil, validationFailed(errs)
	}

	account, err := s.repository.UpdateProfile(ctx, identity.UserID, update, s.now())
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			return nil, accountNotFound(identity.UserID)
		}
		s.log.Error("failed to update profile",
			zap.String("user_id", identity.UserID.String()),
			zap.Error(err))
		return nil, persistenceFailure("update account fields", err)
	}

	return account.Profile(), nil
}

func (s *Service) conflictingFields(ctx context.Context, username, email string) ([]FieldError, error) {
	existing, err := s.repository.FindByUsernameOrEmail(ctx, username, email)
	if err != nil {
		return nil, err
	}

	var usernameTaken, emailTaken bool
	for _, a := range existing {
		usernameTaken = usernameTaken || a.Username == username
		emailTaken = emailTaken || a.Email == email
	}

	var fields []FieldError
	if usernameTaken {
		fields = append(fields, FieldError{Field: "username", Message: "Username already exists."})
	}
	if emailTaken {
		fields = append(fields, FieldError{Field: "email", Message: "Email already exists."})
	}
	return fields, nil
}

// pickLoginMatch prefers an exact username match over an email match.
func pickLoginMatch(accounts []Account, identifier string) *Account {
	if len(accounts) == 0 {
		return nil
	}
	for i := range accounts {
		if accounts[i].Username == identifier {
			return &accounts[i]
		}
	}
	return &accounts[0]
}

func outcome(err error) string {
	if err == nil {
		return "success"
	}
	return Classify(err).Code
}
