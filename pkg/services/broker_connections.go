package services

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tradingbuddy/tradingbuddy-engine/pkg/auth"
	"github.com/tradingbuddy/tradingbuddy-engine/pkg/crypto"
	"github.com/tradingbuddy/tradingbuddy-engine/pkg/jsonutil"
	"github.com/tradingbuddy/tradingbuddy-engine/pkg/models"
	"github.com/tradingbuddy/tradingbuddy-engine/pkg/repositories"
)

// BrokerConnectionService defines operations on broker connections.
// All operations are scoped to the authenticated caller taken from the
// request context; a non-owner can neither see nor mutate a connection.
type BrokerConnectionService interface {
	Create(ctx context.Context, body Body) (*models.BrokerConnection, error)
	Get(ctx context.Context, id uuid.UUID) (*models.BrokerConnection, error)
	List(ctx context.Context, filter repositories.ListFilter) ([]*models.BrokerConnection, error)
	Update(ctx context.Context, id uuid.UUID, body Body) (*models.BrokerConnection, error)
	Delete(ctx context.Context, id uuid.UUID) (*models.BrokerConnection, error)

	// MaskedAPIKey returns the display form of the stored API key
	// (asterisks plus the last four characters), or "" when none is set.
	MaskedAPIKey(conn *models.BrokerConnection) string
}

type brokerConnectionService struct {
	repo      repositories.BrokerConnectionRepository
	encryptor *crypto.CredentialEncryptor
	logger    *zap.Logger
}

// NewBrokerConnectionService creates a new broker connection service.
func NewBrokerConnectionService(
	repo repositories.BrokerConnectionRepository,
	encryptor *crypto.CredentialEncryptor,
	logger *zap.Logger,
) BrokerConnectionService {
	return &brokerConnectionService{
		repo:      repo,
		encryptor: encryptor,
		logger:    logger,
	}
}

// validateBrokerConnection checks every supplied field before any store
// access. create toggles required-field enforcement.
func (s *brokerConnectionService) validateBrokerConnection(body Body, create bool) (models.BrokerConnectionPatch, error) {
	var patch models.BrokerConnectionPatch

	if err := rejectOwnerField(body); err != nil {
		return patch, err
	}

	if create {
		name, err := requireEnum(body, "broker_name", models.AllowedBrokers, models.IsValidBroker)
		if err != nil {
			return patch, err
		}
		patch.BrokerName = jsonutil.Some(name)
	} else {
		name, err := optionalEnum(body, "broker_name", models.AllowedBrokers, models.IsValidBroker)
		if err != nil {
			return patch, err
		}
		patch.BrokerName = name
	}

	if key := optionalString(body, "api_key"); key.Set {
		if key.Null {
			patch.APIKeyEncrypted = jsonutil.Null[string]()
		} else {
			encrypted, err := s.encryptor.Encrypt(key.Value)
			if err != nil {
				return patch, err
			}
			patch.APIKeyEncrypted = jsonutil.Some(encrypted)
		}
	}

	patch.AccountID = optionalString(body, "account_id")

	paper, err := optionalBool(body, "is_paper_trading")
	if err != nil {
		return patch, err
	}
	patch.IsPaperTrading = paper

	if !create {
		connected, err := optionalBool(body, "is_connected")
		if err != nil {
			return patch, err
		}
		patch.IsConnected = connected
	}

	cfg, err := optionalBlob(body, "config")
	if err != nil {
		return patch, err
	}
	patch.Config = cfg

	return patch, nil
}

func (s *brokerConnectionService) Create(ctx context.Context, body Body) (*models.BrokerConnection, error) {
	userID, err := auth.RequireUserIDFromContext(ctx)
	if err != nil {
		return nil, err
	}

	patch, err := s.validateBrokerConnection(body, true)
	if err != nil {
		return nil, err
	}

	conn := &models.BrokerConnection{
		UserID:          userID,
		BrokerName:      patch.BrokerName.Value,
		APIKeyEncrypted: patch.APIKeyEncrypted.Ptr(),
		AccountID:       patch.AccountID.Ptr(),
		// Paper trading unless the client opts out explicitly.
		IsPaperTrading: true,
		// Connections start disconnected; only the connection test flow
		// flips this.
		IsConnected: false,
		Config:      patch.Config.Ptr(),
	}
	if patch.IsPaperTrading.Set && !patch.IsPaperTrading.Null {
		conn.IsPaperTrading = patch.IsPaperTrading.Value
	}

	if err := s.repo.Create(ctx, conn); err != nil {
		return nil, err
	}

	s.logger.Info("Created broker connection",
		zap.String("id", conn.ID.String()),
		zap.String("broker", conn.BrokerName))

	return conn, nil
}

func (s *brokerConnectionService) Get(ctx context.Context, id uuid.UUID) (*models.BrokerConnection, error) {
	userID, err := auth.RequireUserIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, userID, id)
}

func (s *brokerConnectionService) List(ctx context.Context, filter repositories.ListFilter) ([]*models.BrokerConnection, error) {
	userID, err := auth.RequireUserIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	return s.repo.List(ctx, userID, filter)
}

func (s *brokerConnectionService) Update(ctx context.Context, id uuid.UUID, body Body) (*models.BrokerConnection, error) {
	userID, err := auth.RequireUserIDFromContext(ctx)
	if err != nil {
		return nil, err
	}

	patch, err := s.validateBrokerConnection(body, false)
	if err != nil {
		return nil, err
	}

	return s.repo.Update(ctx, userID, id, patch)
}

func (s *brokerConnectionService) Delete(ctx context.Context, id uuid.UUID) (*models.BrokerConnection, error) {
	userID, err := auth.RequireUserIDFromContext(ctx)
	if err != nil {
		return nil, err
	}

	conn, err := s.repo.Delete(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Deleted broker connection",
		zap.String("id", id.String()),
		zap.String("broker", conn.BrokerName))

	return conn, nil
}

func (s *brokerConnectionService) MaskedAPIKey(conn *models.BrokerConnection) string {
	if conn.APIKeyEncrypted == nil || *conn.APIKeyEncrypted == "" {
		return ""
	}
	plaintext, err := s.encryptor.Decrypt(*conn.APIKeyEncrypted)
	if err != nil {
		s.logger.Warn("Failed to decrypt broker API key for masking",
			zap.String("id", conn.ID.String()),
			zap.Error(err))
		return "****"
	}
	return crypto.MaskKey(plaintext)
}
