package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/vibhu2208/Aadhar-Homes/internal/auth"
	"github.com/vibhu2208/Aadhar-Homes/internal/config"
	"github.com/vibhu2208/Aadhar-Homes/internal/models"
	"github.com/vibhu2208/Aadhar-Homes/internal/utils"
)

const (
	accountsCollection = "accounts"
	systemCollection   = "system"

	// bootstrapMarkerID is the fixed _id of the document that records the
	// one-time bootstrap-admin claim. Inserting it is atomic: exactly one
	// concurrent registration wins, everyone else gets a duplicate key error.
	bootstrapMarkerID = "bootstrap_admin"
)

// RegisterParams is the input to account registration.
type RegisterParams struct {
	Name     string
	Email    string
	Password string
	Role     models.Role

	// CallerIsAdmin is true when an authenticated admin makes the request.
	CallerIsAdmin bool
}

// IAccountService defines the interface for account operations.
type IAccountService interface {
	Register(ctx context.Context, params RegisterParams) (*models.Account, error)
	Authenticate(ctx context.Context, email, password string) (*models.Account, error)
	FindByID(ctx context.Context, id utils.SixID) (*models.Account, error)
}

type accountService struct {
	db  *mongo.Database
	cfg *config.Config
}

// NewAccountService creates a new AccountService.
func NewAccountService(database *mongo.Database, cfg *config.Config) IAccountService {
	return &accountService{db: database, cfg: cfg}
}

// claimBootstrap attempts to win the one-time first-admin claim. It returns
// true if this caller won, false if someone already holds it.
func (s *accountService) claimBootstrap(ctx context.Context) (bool, error) {
	_, err := s.db.Collection(systemCollection).InsertOne(ctx, bson.M{
		"_id":       bootstrapMarkerID,
		"claimedAt": time.Now().UTC(),
	})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to claim bootstrap marker: %w", err)
	}
	return true, nil
}

// releaseBootstrap undoes a claim whose account insert failed, so the next
// registration can bootstrap instead.
func (s *accountService) releaseBootstrap(ctx context.Context) {
	if _, err := s.db.Collection(systemCollection).DeleteOne(ctx, bson.M{"_id": bootstrapMarkerID}); err != nil {
		log.Printf("Failed to release bootstrap marker: %v", err)
	}
}

// Register creates an account. The very first registration bootstraps the
// admin account and needs no authentication; after that only admins may
// register new accounts.
func (s *accountService) Register(ctx context.Context, params RegisterParams) (*models.Account, error) {
	var messages []string
	if params.Name == "" {
		messages = append(messages, "Name is required")
	}
	if params.Email == "" {
		messages = append(messages, "Email is required")
	}
	if params.Password == "" {
		messages = append(messages, "Password is required")
	}
	if len(messages) > 0 {
		return nil, &ValidationError{Messages: messages}
	}

	bootstrapped := false
	if !params.CallerIsAdmin {
		won, err := s.claimBootstrap(ctx)
		if err != nil {
			return nil, err
		}
		if !won {
			return nil, ErrRegistrationRestricted
		}
		bootstrapped = true
	}

	role := params.Role
	if role == "" {
		role = models.RoleAdmin
	}
	if bootstrapped {
		// The first account is always the admin, whatever was asked for.
		role = models.RoleAdmin
	}

	hash, err := auth.HashPassword(params.Password)
	if err != nil {
		if bootstrapped {
			s.releaseBootstrap(ctx)
		}
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now().UTC()
	account := &models.Account{
		Base:         models.NewBase(),
		Name:         params.Name,
		Email:        params.Email,
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	_, err = s.db.Collection(accountsCollection).InsertOne(ctx, account)
	if err != nil {
		if bootstrapped {
			s.releaseBootstrap(ctx)
		}
		if mongo.IsDuplicateKeyError(err) {
			return nil, &DuplicateFieldError{Field: "email"}
		}
		return nil, fmt.Errorf("failed to insert account for %s: %w", params.Email, err)
	}

	return account, nil
}

// Authenticate verifies credentials and records the login time. It returns
// ErrInvalidCredentials for both unknown emails and wrong passwords.
func (s *accountService) Authenticate(ctx context.Context, email, password string) (*models.Account, error) {
	collection := s.db.Collection(accountsCollection)

	var account models.Account
	err := collection.FindOne(ctx, bson.M{"email": email}).Decode(&account)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("error finding account by email: %w", err)
	}

	if !auth.CheckPasswordHash(password, account.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	now := time.Now().UTC()
	account.LastLogin = &now
	if _, err := collection.UpdateOne(ctx,
		bson.M{"_id": account.ID},
		bson.M{"$set": bson.M{"lastLogin": now}},
	); err != nil {
		log.Printf("Failed to record last login for %s: %v", account.ID.String(), err)
	}

	return &account, nil
}

// FindByID returns an account or mongo.ErrNoDocuments.
func (s *accountService) FindByID(ctx context.Context, id utils.SixID) (*models.Account, error) {
	var account models.Account
	err := s.db.Collection(accountsCollection).FindOne(ctx, bson.M{"_id": id}).Decode(&account)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, mongo.ErrNoDocuments
		}
		return nil, fmt.Errorf("error finding account %s: %w", id.String(), err)
	}
	return &account, nil
}
