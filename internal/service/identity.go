package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/NiGhtKinG17/LeafNote/internal/auth"
	"github.com/NiGhtKinG17/LeafNote/internal/domain"
	domainerrors "github.com/NiGhtKinG17/LeafNote/internal/errors"
	"github.com/NiGhtKinG17/LeafNote/internal/id"
	"github.com/NiGhtKinG17/LeafNote/internal/normalize"
	"github.com/NiGhtKinG17/LeafNote/internal/store"
	"github.com/NiGhtKinG17/LeafNote/internal/validation"
)

// maxFederatedAttempts bounds the find-or-create loop in ResolveFederated.
const maxFederatedAttempts = 3

// credentialFailure is the message for both local login failures so the
// text never reveals which check failed.
const credentialFailure = "invalid username or password"

// IdentityService resolves credentials to user ids and registers local accounts.
type IdentityService struct {
	store     store.Store
	hasher    *auth.Hasher
	validator *validation.Validator
	logger    *slog.Logger
}

// NewIdentityService creates an identity service. A nil hasher uses the
// production argon2id parameters.
func NewIdentityService(s store.Store, hasher *auth.Hasher, logger *slog.Logger) *IdentityService {
	if hasher == nil {
		hasher = auth.NewHasher(auth.DefaultArgon2Params)
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &IdentityService{
		store:     s,
		hasher:    hasher,
		validator: validation.New(),
		logger:    logger,
	}
}

// RegisterRequest holds signup input.
type RegisterRequest struct {
	Username string `json:"username" validate:"required,max=64,username"`
	Password string `json:"password" validate:"required,max=1024"`
}

// ResolveLocal returns the id of the user with username whose password
// verifies. It fails with NotFound for an unknown username and
// BadCredential for a wrong password. Exactly one argon2id verification
// runs on every path, so the two failures take the same time.
func (s *IdentityService) ResolveLocal(ctx context.Context, username, password string) (string, error) {
	user, err := s.store.GetUserByUsername(ctx, username)
	if err != nil {
		s.hasher.VerifyDummy(password)
		if errors.Is(err, store.ErrUserNotFound) {
			return "", domainerrors.NotFound(credentialFailure)
		}
		return "", storeError(err, "look up user")
	}

	if !user.HasLocalCredential() {
		s.hasher.VerifyDummy(password)
		return "", domainerrors.BadCredential(credentialFailure)
	}

	ok, err := s.hasher.Verify(user.PasswordHash, password)
	if err != nil {
		return "", domainerrors.Internal("verify password").WithCause(err)
	}
	if !ok {
		return "", domainerrors.BadCredential(credentialFailure)
	}
	return user.ID, nil
}

// ResolveFederated finds the user holding providerUserID, creating one on
// first login. providerUserID is provider-qualified (see domain.FederatedID).
//
// Creation races are resolved by the store's unique federated_id index: a
// uniqueness violation or transaction conflict means another request created
// the user first, so the loop finds it on the next attempt.
func (s *IdentityService) ResolveFederated(ctx context.Context, providerUserID, displayName string) (string, error) {
	if _, _, ok := domain.SplitFederatedID(providerUserID); !ok {
		return "", domainerrors.Validationf("invalid federated id %q", providerUserID)
	}

	for attempt := 1; attempt <= maxFederatedAttempts; attempt++ {
		user, err := s.store.GetUserByFederatedID(ctx, providerUserID)
		if err == nil {
			return user.ID, nil
		}
		if !errors.Is(err, store.ErrUserNotFound) {
			return "", storeError(err, "look up federated user")
		}

		userID, err := id.Generate(id.UserPrefix)
		if err != nil {
			return "", domainerrors.Internal("generate user id").WithCause(err)
		}
		user = &domain.User{
			Record:      domain.Record{ID: userID},
			FederatedID: providerUserID,
			DisplayName: normalize.DisplayText(displayName),
		}

		err = s.store.CreateUser(ctx, user)
		switch {
		case err == nil:
			s.logger.Info("federated user created", "user_id", userID)
			return userID, nil
		case errors.Is(err, store.ErrAlreadyExists), errors.Is(err, store.ErrConflict):
			s.logger.Debug("federated create lost race, retrying find", "attempt", attempt)
			continue
		default:
			return "", storeError(err, "create federated user")
		}
	}

	return "", domainerrors.Conflictf("federated user creation conflicted %d times", maxFederatedAttempts)
}

// RegisterLocal creates a local account. It fails with DuplicateUsername,
// leaving the store untouched, if the normalized username is taken.
func (s *IdentityService) RegisterLocal(ctx context.Context, req RegisterRequest) (string, error) {
	if err := s.validator.Validate(req); err != nil {
		return "", err
	}

	// Cheap pre-check; the unique index stays authoritative.
	if _, err := s.store.GetUserByUsername(ctx, req.Username); err == nil {
		return "", domainerrors.DuplicateUsername("username already taken")
	} else if !errors.Is(err, store.ErrUserNotFound) {
		return "", storeError(err, "look up user")
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return "", domainerrors.Validation(err.Error())
	}

	userID, err := id.Generate(id.UserPrefix)
	if err != nil {
		return "", domainerrors.Internal("generate user id").WithCause(err)
	}
	user := &domain.User{
		Record:       domain.Record{ID: userID},
		Username:     req.Username,
		PasswordHash: hash,
	}

	if err := s.store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrUsernameTaken) {
			return "", domainerrors.DuplicateUsername("username already taken")
		}
		return "", storeError(err, "create user")
	}

	s.logger.Info("user registered", "user_id", userID, "username", user.Username)
	return userID, nil
}

// GetUser returns the user with id.
func (s *IdentityService) GetUser(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, domainerrors.NotFoundf("user %s not found", userID)
		}
		return nil, storeError(err, "get user")
	}
	return user, nil
}

// Credentials is the input accepted by every Resolver. Local resolvers
// read Username and Password; federated resolvers read FederatedID and
// DisplayName.
type Credentials struct {
	Username    string
	Password    string
	FederatedID string
	DisplayName string
}

// Resolver turns credentials into a user id.
type Resolver interface {
	Resolve(ctx context.Context, c Credentials) (string, error)
}

// LocalResolver authenticates username and password.
type LocalResolver struct {
	identity *IdentityService
}

// FederatedResolver finds or creates the user behind a provider identity.
type FederatedResolver struct {
	identity *IdentityService
}

var (
	_ Resolver = LocalResolver{}
	_ Resolver = FederatedResolver{}
)

// Local returns the username/password variant.
func (s *IdentityService) Local() LocalResolver {
	return LocalResolver{identity: s}
}

// Federated returns the provider login variant.
func (s *IdentityService) Federated() FederatedResolver {
	return FederatedResolver{identity: s}
}

// Resolve implements Resolver.
func (r LocalResolver) Resolve(ctx context.Context, c Credentials) (string, error) {
	return r.identity.ResolveLocal(ctx, c.Username, c.Password)
}

// Resolve implements Resolver.
func (r FederatedResolver) Resolve(ctx context.Context, c Credentials) (string, error) {
	if c.FederatedID == "" {
		return "", domainerrors.Validation("federated id is required")
	}
	return r.identity.ResolveFederated(ctx, c.FederatedID, c.DisplayName)
}
