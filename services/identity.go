package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"farm-market/metrics"
	"farm-market/models"
	"farm-market/store"
	"farm-market/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const (
	invalidCredentialsMessage = "Invalid email/phone number or password"
	registrationFailedMessage = "An error occurred while registering user"
	identityGoneMessage       = "User or Farmer not found"
	identityExistsMessage     = "User already exists with this email or phone number"
)

// ErrInvalidCredentials is the single answer to every failed login, so a
// caller cannot tell an unknown credential from a wrong password.
var ErrInvalidCredentials = utils.AuthError(invalidCredentialsMessage)

// Notifier is told about newly registered identities.
type Notifier interface {
	SendWelcome(identity *models.Identity) error
}

// Session is an identity together with a freshly issued token.
type Session struct {
	Identity *models.Identity
	Token    string
}

// IdentityService resolves credentials and ids across the identity
// backends. Backends are tried in the order given to NewIdentityService,
// buyers before farmer-sellers, and the first match wins.
type IdentityService struct {
	backends []store.IdentityBackend
	issuer   *utils.SessionIssuer
	notifier Notifier
	logger   *zap.Logger
	now      func() time.Time

	dummyOnce sync.Once
	dummyHash string
}

// NewIdentityService builds the resolver. notifier may be nil.
func NewIdentityService(buyers, farmers store.IdentityBackend, issuer *utils.SessionIssuer, notifier Notifier, logger *zap.Logger) *IdentityService {
	return &IdentityService{
		backends: []store.IdentityBackend{buyers, farmers},
		issuer:   issuer,
		notifier: notifier,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *IdentityService) backend(role models.Role) (store.IdentityBackend, error) {
	for _, b := range s.backends {
		if b.Role() == role {
			return b, nil
		}
	}
	return nil, utils.ValidationError("Unknown role")
}

// FindByCredential looks an email or phone credential up in every backend.
// It returns store.ErrNotFound when no backend holds it.
func (s *IdentityService) FindByCredential(ctx context.Context, credential string) (*models.Identity, error) {
	field, value := utils.LookupKey(credential)
	if value == "" {
		return nil, store.ErrNotFound
	}
	for _, b := range s.backends {
		identity, err := findByKey(ctx, b, field, value)
		if errors.Is(err, store.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return identity, nil
	}
	return nil, store.ErrNotFound
}

func findByKey(ctx context.Context, b store.IdentityBackend, field, value string) (*models.Identity, error) {
	if field == "email" {
		return b.FindByEmail(ctx, value)
	}
	return b.FindByPhone(ctx, value)
}

// FindByID resolves an identity id in every backend.
func (s *IdentityService) FindByID(ctx context.Context, id string) (*models.Identity, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, utils.NotFoundError(identityGoneMessage)
	}
	for _, b := range s.backends {
		identity, err := b.FindByID(ctx, oid)
		if errors.Is(err, store.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, utils.InternalError("Error resolving identity", err)
		}
		return identity, nil
	}
	return nil, utils.NotFoundError(identityGoneMessage)
}

// Authenticate verifies a session token and resolves the identity it names.
func (s *IdentityService) Authenticate(ctx context.Context, token string) (*models.Identity, error) {
	claims, err := s.issuer.Verify(token)
	if err != nil {
		return nil, err
	}
	return s.FindByID(ctx, claims.IdentityID)
}

// Create registers a new identity in the backend for role. Uniqueness of
// email and phone is checked within that backend only.
func (s *IdentityService) Create(ctx context.Context, role models.Role, fields models.IdentityFields) (*models.Identity, error) {
	b, err := s.backend(role)
	if err != nil {
		return nil, err
	}
	creds, err := utils.NormalizeCredentials(fields.Email, fields.PhoneNumber)
	if err != nil {
		return nil, err
	}
	if fields.Password == "" {
		return nil, utils.ValidationError("Password is required")
	}

	exists, err := b.ExistsByCredentials(ctx, creds.Email, creds.PhoneNumber, primitive.NilObjectID)
	if err != nil {
		return nil, utils.InternalError(registrationFailedMessage, err)
	}
	if exists {
		return nil, utils.ConflictError(identityExistsMessage)
	}

	hash, err := utils.HashPassword(fields.Password)
	if err != nil {
		return nil, utils.InternalError(registrationFailedMessage, err)
	}

	now := s.now()
	identity := &models.Identity{
		Email:                       creds.Email,
		PhoneNumber:                 creds.PhoneNumber,
		PasswordHash:                hash,
		FirstName:                   fields.FirstName,
		LastName:                    fields.LastName,
		BusinessName:                fields.BusinessName,
		BusinessCategories:          fields.BusinessCategories,
		BusinessState:               fields.BusinessState,
		BusinessLocalGovernmentArea: fields.BusinessLocalGovernmentArea,
		BusinessAddress:             fields.BusinessAddress,
		CreatedAt:                   now,
		UpdatedAt:                   now,
	}
	if err := b.Insert(ctx, identity); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, utils.ConflictError(identityExistsMessage)
		}
		return nil, utils.InternalError(registrationFailedMessage, err)
	}
	return identity, nil
}

// Register creates an identity and signs it in.
func (s *IdentityService) Register(ctx context.Context, role models.Role, fields models.IdentityFields) (*Session, error) {
	identity, err := s.Create(ctx, role, fields)
	if err != nil {
		metrics.RecordRegistration(string(role), metrics.OutcomeFailure)
		return nil, err
	}
	metrics.RecordRegistration(string(role), metrics.OutcomeSuccess)

	token, err := s.issuer.Issue(identity.ID.Hex())
	if err != nil {
		return nil, utils.InternalError(registrationFailedMessage, err)
	}

	if s.notifier != nil {
		if err := s.notifier.SendWelcome(identity); err != nil {
			s.logger.Warn("welcome email failed", zap.String("identity", identity.ID.Hex()), zap.Error(err))
		}
	}
	return &Session{Identity: identity, Token: token}, nil
}

// Login checks a credential and password against the backends in order and
// signs in the first identity whose password matches. A credential held by
// both a buyer and a farmer-seller therefore reaches either account.
func (s *IdentityService) Login(ctx context.Context, credential, password string) (*Session, error) {
	if credential == "" || password == "" {
		return nil, utils.ValidationError("Please provide both credential (email/phone) and password")
	}

	var identity *models.Identity
	compared := false
	field, value := utils.LookupKey(credential)
	if value != "" {
		for _, b := range s.backends {
			candidate, err := findByKey(ctx, b, field, value)
			if errors.Is(err, store.ErrNotFound) {
				continue
			}
			if err != nil {
				return nil, utils.InternalError("Error signing in", err)
			}
			compared = true
			if utils.CheckPassword(password, candidate.PasswordHash) {
				identity = candidate
				break
			}
		}
	}
	if identity == nil {
		if !compared {
			// burn the same bcrypt time as a real comparison
			utils.CheckPassword(password, s.fallbackHash())
		}
		metrics.RecordLogin(metrics.OutcomeFailure, "")
		return nil, ErrInvalidCredentials
	}

	token, err := s.issuer.Issue(identity.ID.Hex())
	if err != nil {
		return nil, utils.InternalError("Error generating token", err)
	}
	metrics.RecordLogin(metrics.OutcomeSuccess, string(identity.Role))
	return &Session{Identity: identity, Token: token}, nil
}

func (s *IdentityService) fallbackHash() string {
	s.dummyOnce.Do(func() {
		hash, err := utils.HashPassword("not-a-real-password")
		if err != nil {
			s.logger.Error("fallback hash failed", zap.Error(err))
		}
		s.dummyHash = hash
	})
	return s.dummyHash
}

// UpdateProfile applies patch to the identity. Non-empty fields overwrite,
// empty ones are left alone. The password is hashed only when a new one is
// supplied, the stored hash is never hashed again.
func (s *IdentityService) UpdateProfile(ctx context.Context, identity *models.Identity, patch models.ProfilePatch) (*models.Identity, error) {
	b, err := s.backend(identity.Role)
	if err != nil {
		return nil, err
	}
	current, err := b.FindByID(ctx, identity.ID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, utils.NotFoundError("User not found")
	}
	if err != nil {
		return nil, utils.InternalError("Error loading profile", err)
	}

	email, err := utils.NormalizeEmail(patch.Email)
	if err != nil {
		return nil, err
	}
	phone, err := utils.NormalizePhone(patch.PhoneNumber)
	if err != nil {
		return nil, err
	}
	if (email != "" && email != current.Email) || (phone != "" && phone != current.PhoneNumber) {
		exists, err := b.ExistsByCredentials(ctx, email, phone, current.ID)
		if err != nil {
			return nil, utils.InternalError("Error updating profile", err)
		}
		if exists {
			return nil, utils.ConflictError(identityExistsMessage)
		}
	}

	current.FirstName = coalesce(patch.FirstName, current.FirstName)
	current.LastName = coalesce(patch.LastName, current.LastName)
	current.Email = coalesce(email, current.Email)
	current.PhoneNumber = coalesce(phone, current.PhoneNumber)
	current.BusinessName = coalesce(patch.BusinessName, current.BusinessName)
	current.BusinessCategories = coalesce(patch.BusinessCategories, current.BusinessCategories)
	current.BusinessState = coalesce(patch.BusinessState, current.BusinessState)
	current.BusinessLocalGovernmentArea = coalesce(patch.BusinessLocalGovernmentArea, current.BusinessLocalGovernmentArea)
	current.BusinessAddress = coalesce(patch.BusinessAddress, current.BusinessAddress)

	if patch.Password != "" {
		hash, err := utils.HashPassword(patch.Password)
		if err != nil {
			return nil, utils.InternalError("Error updating profile", err)
		}
		current.PasswordHash = hash
	}
	current.UpdatedAt = s.now()

	if err := b.Update(ctx, current); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, utils.NotFoundError("User not found")
		}
		if errors.Is(err, store.ErrDuplicate) {
			return nil, utils.ConflictError(identityExistsMessage)
		}
		return nil, utils.InternalError("Error updating profile", err)
	}
	return current, nil
}

func coalesce(value, fallback string) string {
	if value != "" {
		return value
	}
	return fallback
}
