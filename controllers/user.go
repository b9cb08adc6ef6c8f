package controllers

import (
	"context"
	"net/http"
	"time"

	"farm-market/models"
	"farm-market/services"
	"farm-market/utils"

	"go.uber.org/zap"
)

// UserController handles registration, login and profile requests for
// both buyers and farmer-sellers
type UserController struct {
	Identities *services.IdentityService
	Logger     *zap.Logger
}

// NewUserController creates a new UserController
func NewUserController(identities *services.IdentityService, logger *zap.Logger) *UserController {
	return &UserController{Identities: identities, Logger: logger}
}

type registerRequest struct {
	FirstName                   string `json:"firstName"`
	LastName                    string `json:"lastName"`
	Email                       string `json:"email" validate:"omitempty,max=254"`
	PhoneNumber                 string `json:"phoneNumber" validate:"omitempty,max=32"`
	Password                    string `json:"password" validate:"required,max=72"`
	IsFarmer                    bool   `json:"isFarmer"`
	BusinessName                string `json:"businessName"`
	BusinessCategories          string `json:"businessCategories"`
	BusinessState               string `json:"businessState"`
	BusinessLocalGovernmentArea string `json:"businessLocalGovernmentArea"`
	BusinessAddress             string `json:"businessAddress"`
}

type loginRequest struct {
	Credential string `json:"credential"`
	Password   string `json:"password"`
}

type profileRequest struct {
	FirstName                   string `json:"firstName"`
	LastName                    string `json:"lastName"`
	Email                       string `json:"email" validate:"omitempty,max=254"`
	PhoneNumber                 string `json:"phoneNumber" validate:"omitempty,max=32"`
	Password                    string `json:"password" validate:"omitempty,max=72"`
	BusinessName                string `json:"businessName"`
	BusinessCategories          string `json:"businessCategories"`
	BusinessState               string `json:"businessState"`
	BusinessLocalGovernmentArea string `json:"businessLocalGovernmentArea"`
	BusinessAddress             string `json:"businessAddress"`
}

// authResponse is the identity with its session token alongside.
type authResponse struct {
	*models.Identity
	Token string `json:"token"`
}

// Register handles identity registration
func (uc *UserController) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(uc.Logger, w, r, err)
		return
	}

	role := models.RoleBuyer
	if req.IsFarmer {
		role = models.RoleFarmer
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()
	session, err := uc.Identities.Register(ctx, role, models.IdentityFields{
		FirstName:                   req.FirstName,
		LastName:                    req.LastName,
		Email:                       req.Email,
		PhoneNumber:                 req.PhoneNumber,
		Password:                    req.Password,
		BusinessName:                req.BusinessName,
		BusinessCategories:          req.BusinessCategories,
		BusinessState:               req.BusinessState,
		BusinessLocalGovernmentArea: req.BusinessLocalGovernmentArea,
		BusinessAddress:             req.BusinessAddress,
	})
	if err != nil {
		respondError(uc.Logger, w, r, err)
		return
	}

	uc.Logger.Info("identity registered",
		zap.String("identity", session.Identity.ID.Hex()),
		zap.String("role", string(session.Identity.Role)),
	)
	utils.RespondJSON(w, http.StatusCreated, authResponse{Identity: session.Identity, Token: session.Token})
}

// Login authenticates an email or phone credential against both stores
func (uc *UserController) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(uc.Logger, w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	session, err := uc.Identities.Login(ctx, req.Credential, req.Password)
	if err != nil {
		respondError(uc.Logger, w, r, err)
		return
	}

	utils.RespondJSON(w, http.StatusOK, authResponse{Identity: session.Identity, Token: session.Token})
}

// Logout acknowledges a logout. Tokens are stateless, the client discards its copy.
func (uc *UserController) Logout(w http.ResponseWriter, r *http.Request) {
	utils.RespondJSON(w, http.StatusOK, map[string]string{"message": "User logged out"})
}

// GetProfile returns the authenticated identity
func (uc *UserController) GetProfile(w http.ResponseWriter, r *http.Request) {
	identity, err := currentIdentity(r)
	if err != nil {
		respondError(uc.Logger, w, r, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, identity)
}

// UpdateProfile applies a partial update to the authenticated identity
func (uc *UserController) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	identity, err := currentIdentity(r)
	if err != nil {
		respondError(uc.Logger, w, r, err)
		return
	}

	var req profileRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(uc.Logger, w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()
	updated, err := uc.Identities.UpdateProfile(ctx, identity, models.ProfilePatch{
		FirstName:                   req.FirstName,
		LastName:                    req.LastName,
		Email:                       req.Email,
		PhoneNumber:                 req.PhoneNumber,
		Password:                    req.Password,
		BusinessName:                req.BusinessName,
		BusinessCategories:          req.BusinessCategories,
		BusinessState:               req.BusinessState,
		BusinessLocalGovernmentArea: req.BusinessLocalGovernmentArea,
		BusinessAddress:             req.BusinessAddress,
	})
	if err != nil {
		respondError(uc.Logger, w, r, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, updated)
}
