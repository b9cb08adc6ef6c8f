package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"farm-market/models"
	"farm-market/store"
	"farm-market/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func TestCreateNormalizesAndHashes(t *testing.T) {
	f := newFixture(nil)
	identity, err := f.identities.Create(context.Background(), models.RoleBuyer, models.IdentityFields{
		FirstName:   "Ada",
		Email:       "  Ada@Example.COM ",
		PhoneNumber: "0801-234-5678",
		Password:    "secret1",
	})
	require.NoError(t, err)

	assert.False(t, identity.ID.IsZero())
	assert.Equal(t, "ada@example.com", identity.Email)
	assert.Equal(t, "08012345678", identity.PhoneNumber)
	assert.Equal(t, models.RoleBuyer, identity.Role)
	assert.False(t, identity.IsFarmer)
	assert.NotEqual(t, "secret1", identity.PasswordHash)
	assert.True(t, utils.CheckPassword("secret1", identity.PasswordHash))
}

func TestCreateRequiresACredential(t *testing.T) {
	f := newFixture(nil)
	_, err := f.identities.Create(context.Background(), models.RoleBuyer, models.IdentityFields{Password: "secret1"})
	assert.True(t, errors.Is(err, utils.ErrValidation))

	_, err = f.identities.Create(context.Background(), models.RoleBuyer, models.IdentityFields{PhoneNumber: "123", Password: "secret1"})
	assert.True(t, errors.Is(err, utils.ErrValidation))
}

func TestCreateConflictIsPerStore(t *testing.T) {
	f := newFixture(nil)
	ctx := context.Background()
	fields := models.IdentityFields{Email: "shared@example.com", Password: "secret1"}

	_, err := f.identities.Create(ctx, models.RoleBuyer, fields)
	require.NoError(t, err)

	_, err = f.identities.Create(ctx, models.RoleBuyer, models.IdentityFields{Email: "SHARED@example.com", Password: "other1"})
	assert.True(t, errors.Is(err, utils.ErrConflict))

	_, err = f.identities.Create(ctx, models.RoleFarmer, fields)
	require.NoError(t, err, "the same email may exist once per store")

	_, err = f.identities.Create(ctx, models.RoleFarmer, fields)
	assert.True(t, errors.Is(err, utils.ErrConflict))
}

func TestCreateConflictOnPhoneAlone(t *testing.T) {
	f := newFixture(nil)
	ctx := context.Background()
	_, err := f.identities.Create(ctx, models.RoleBuyer, models.IdentityFields{PhoneNumber: "08012345678", Password: "secret1"})
	require.NoError(t, err)

	_, err = f.identities.Create(ctx, models.RoleBuyer, models.IdentityFields{
		Email:       "new@example.com",
		PhoneNumber: "0801 234 5678",
		Password:    "secret1",
	})
	assert.True(t, errors.Is(err, utils.ErrConflict))
}

func TestRegisterIssuesTokenAndNotifies(t *testing.T) {
	notifier := &recordingNotifier{err: errors.New("postmark down")}
	f := newFixture(notifier)

	session, err := f.identities.Register(context.Background(), models.RoleFarmer, models.IdentityFields{
		Email:        "farm@example.com",
		Password:     "secret1",
		BusinessName: "Green Acres",
	})
	require.NoError(t, err, "email failures do not fail registration")

	claims, err := f.issuer.Verify(session.Token)
	require.NoError(t, err)
	assert.Equal(t, session.Identity.ID.Hex(), claims.IdentityID)
	assert.True(t, session.Identity.IsFarmer)
	require.Len(t, notifier.sent, 1)
	assert.Equal(t, "farm@example.com", notifier.sent[0].Email)
}

func TestLoginByEmailAndPhone(t *testing.T) {
	f := newFixture(nil)
	ctx := context.Background()
	created, err := f.identities.Create(ctx, models.RoleFarmer, models.IdentityFields{
		Email:       "farm@example.com",
		PhoneNumber: "08012345678",
		Password:    "secret1",
	})
	require.NoError(t, err)

	for _, credential := range []string{"FARM@example.com", "0801-234-5678"} {
		session, err := f.identities.Login(ctx, credential, "secret1")
		require.NoError(t, err, credential)
		assert.Equal(t, created.ID, session.Identity.ID)
		assert.Equal(t, models.RoleFarmer, session.Identity.Role)
	}
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	f := newFixture(nil)
	ctx := context.Background()
	_, err := f.identities.Create(ctx, models.RoleBuyer, models.IdentityFields{Email: "buyer@example.com", Password: "secret1"})
	require.NoError(t, err)

	_, wrongPassword := f.identities.Login(ctx, "buyer@example.com", "nope")
	_, unknown := f.identities.Login(ctx, "ghost@example.com", "secret1")

	require.Error(t, wrongPassword)
	require.Error(t, unknown)
	assert.Equal(t, wrongPassword, unknown)
	assert.Equal(t, "Invalid email/phone number or password", utils.PublicMessage(unknown))
	assert.Equal(t, utils.KindAuth, utils.KindOf(unknown))
}

func TestLoginSharedCredentialReachesEitherStore(t *testing.T) {
	f := newFixture(nil)
	ctx := context.Background()
	buyer, err := f.identities.Create(ctx, models.RoleBuyer, models.IdentityFields{Email: "both@example.com", Password: "buyerpass"})
	require.NoError(t, err)
	farmer, err := f.identities.Create(ctx, models.RoleFarmer, models.IdentityFields{Email: "both@example.com", Password: "farmerpass"})
	require.NoError(t, err)

	session, err := f.identities.Login(ctx, "both@example.com", "buyerpass")
	require.NoError(t, err)
	assert.Equal(t, buyer.ID, session.Identity.ID)
	assert.Equal(t, models.RoleBuyer, session.Identity.Role)

	session, err = f.identities.Login(ctx, "BOTH@example.com", "farmerpass")
	require.NoError(t, err)
	assert.Equal(t, farmer.ID, session.Identity.ID)
	assert.Equal(t, models.RoleFarmer, session.Identity.Role)

	_, err = f.identities.Login(ctx, "both@example.com", "neither")
	assert.Equal(t, ErrInvalidCredentials, err)
}

func TestLoginSamePasswordInBothStoresPrefersBuyer(t *testing.T) {
	f := newFixture(nil)
	ctx := context.Background()
	buyer, err := f.identities.Create(ctx, models.RoleBuyer, models.IdentityFields{PhoneNumber: "08012345678", Password: "shared"})
	require.NoError(t, err)
	_, err = f.identities.Create(ctx, models.RoleFarmer, models.IdentityFields{PhoneNumber: "08012345678", Password: "shared"})
	require.NoError(t, err)

	session, err := f.identities.Login(ctx, "0801 234 5678", "shared")
	require.NoError(t, err)
	assert.Equal(t, buyer.ID, session.Identity.ID)
}

func TestLoginUnusableCredentialStillHashes(t *testing.T) {
	f := newFixture(nil)

	_, err := f.identities.Login(context.Background(), "abc", "secret1")
	assert.Equal(t, ErrInvalidCredentials, err)
	assert.NotEmpty(t, f.identities.dummyHash, "fallback compare runs for credentials that resolve to nothing")
}

// racingBackend models a unique index rejecting a write that passed the
// existence check.
type racingBackend struct {
	*store.MemoryIdentities
}

func (r racingBackend) Insert(context.Context, *models.Identity) error { return store.ErrDuplicate }

func (r racingBackend) Update(context.Context, *models.Identity) error { return store.ErrDuplicate }

func TestDuplicateKeyIsConflict(t *testing.T) {
	ctx := context.Background()
	buyers := store.NewMemoryIdentities(models.RoleBuyer)
	identities := NewIdentityService(racingBackend{buyers}, store.NewMemoryIdentities(models.RoleFarmer),
		utils.NewSessionIssuer([]byte("test-secret"), time.Hour), nil, zap.NewNop())

	_, err := identities.Create(ctx, models.RoleBuyer, models.IdentityFields{Email: "race@example.com", Password: "secret1"})
	assert.ErrorIs(t, err, utils.ErrConflict)

	existing := &models.Identity{Email: "mine@example.com"}
	require.NoError(t, buyers.Insert(ctx, existing))
	_, err = identities.UpdateProfile(ctx, existing, models.ProfilePatch{Email: "taken@example.com"})
	assert.ErrorIs(t, err, utils.ErrConflict)
}

func TestFindByCredentialMatchesLegacyMixedCaseEmail(t *testing.T) {
	f := newFixture(nil)
	ctx := context.Background()
	legacy := &models.Identity{Email: "Old.Timer@Example.com", PasswordHash: "x"}
	require.NoError(t, f.buyers.Insert(ctx, legacy))

	found, err := f.identities.FindByCredential(ctx, "old.timer@example.com")
	require.NoError(t, err)
	assert.Equal(t, legacy.ID, found.ID)

	_, err = f.identities.FindByCredential(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestAuthenticateResolvesAcrossStores(t *testing.T) {
	f := newFixture(nil)
	ctx := context.Background()
	farmer, err := f.identities.Create(ctx, models.RoleFarmer, models.IdentityFields{Email: "farm@example.com", Password: "secret1"})
	require.NoError(t, err)
	token, err := f.issuer.Issue(farmer.ID.Hex())
	require.NoError(t, err)

	identity, err := f.identities.Authenticate(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, models.RoleFarmer, identity.Role)

	f.farmers.Delete(farmer.ID)
	_, err = f.identities.Authenticate(ctx, token)
	assert.True(t, errors.Is(err, utils.ErrNotFound))

	_, err = f.identities.Authenticate(ctx, "garbage")
	assert.True(t, utils.IsInvalidToken(err))

	orphan, err := f.issuer.Issue(primitive.NewObjectID().Hex())
	require.NoError(t, err)
	_, err = f.identities.Authenticate(ctx, orphan)
	assert.True(t, errors.Is(err, utils.ErrNotFound))
}

func TestUpdateProfileMergesNonEmptyFields(t *testing.T) {
	f := newFixture(nil)
	ctx := context.Background()
	identity, err := f.identities.Create(ctx, models.RoleBuyer, models.IdentityFields{
		FirstName: "Ada",
		LastName:  "Obi",
		Email:     "ada@example.com",
		Password:  "secret1",
	})
	require.NoError(t, err)
	originalHash := identity.PasswordHash

	updated, err := f.identities.UpdateProfile(ctx, identity, models.ProfilePatch{LastName: "Okafor", PhoneNumber: "0801 234 5678"})
	require.NoError(t, err)
	assert.Equal(t, "Ada", updated.FirstName)
	assert.Equal(t, "Okafor", updated.LastName)
	assert.Equal(t, "ada@example.com", updated.Email)
	assert.Equal(t, "08012345678", updated.PhoneNumber)
	assert.Equal(t, originalHash, updated.PasswordHash, "hash untouched without a new password")

	updated, err = f.identities.UpdateProfile(ctx, identity, models.ProfilePatch{Password: "newsecret"})
	require.NoError(t, err)
	assert.NotEqual(t, originalHash, updated.PasswordHash)

	_, err = f.identities.Login(ctx, "ada@example.com", "newsecret")
	assert.NoError(t, err)
	_, err = f.identities.Login(ctx, "ada@example.com", "secret1")
	assert.Equal(t, ErrInvalidCredentials, err)
}

func TestUpdateProfileRejectsTakenCredential(t *testing.T) {
	f := newFixture(nil)
	ctx := context.Background()
	_, err := f.identities.Create(ctx, models.RoleBuyer, models.IdentityFields{Email: "taken@example.com", Password: "secret1"})
	require.NoError(t, err)
	me, err := f.identities.Create(ctx, models.RoleBuyer, models.IdentityFields{Email: "me@example.com", Password: "secret1"})
	require.NoError(t, err)

	_, err = f.identities.UpdateProfile(ctx, me, models.ProfilePatch{Email: "Taken@example.com"})
	assert.True(t, errors.Is(err, utils.ErrConflict))

	// re-sending one's own email is not a conflict
	_, err = f.identities.UpdateProfile(ctx, me, models.ProfilePatch{Email: "me@example.com", FirstName: "Me"})
	assert.NoError(t, err)

	_, err = f.identities.UpdateProfile(ctx, me, models.ProfilePatch{PhoneNumber: "12"})
	assert.True(t, errors.Is(err, utils.ErrValidation))
}
