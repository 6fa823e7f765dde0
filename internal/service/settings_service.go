package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/fernet/fernet-go"

	"github.com/mvdbosch/kapgains/internal/apperrors"
	"github.com/mvdbosch/kapgains/internal/model"
	"github.com/mvdbosch/kapgains/internal/repository"
)

// tokenExpiryWarningWindow is how far ahead of token expiry the API starts
// warning.
const tokenExpiryWarningWindow = 30 * 24 * time.Hour

// SettingsService manages the broker connection settings. The flex token is
// fernet-sealed before it reaches the database.
type SettingsService struct {
	repo *repository.SettingsRepository
	key  *fernet.Key
}

func NewSettingsService(repo *repository.SettingsRepository, key *fernet.Key) *SettingsService {
	return &SettingsService{repo: repo, key: key}
}

// SetBrokerConfig seals and stores the broker flex-query credentials.
func (s *SettingsService) SetBrokerConfig(flexQueryID, token string, expiresAt *time.Time) error {
	sealed, err := fernet.EncryptAndSign([]byte(token), s.key)
	if err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrFailedToSealToken, err)
	}
	return s.repo.Save(repository.StoredBrokerConfig{
		FlexQueryID:    flexQueryID,
		SealedToken:    string(sealed),
		TokenExpiresAt: expiresAt,
	})
}

// GetBrokerConfig returns the stored configuration without the token value.
// An unset configuration is not an error; Configured reports the state.
func (s *SettingsService) GetBrokerConfig() (model.BrokerConfig, error) {
	stored, err := s.repo.Get()
	if errors.Is(err, apperrors.ErrBrokerConfigNotFound) {
		return model.BrokerConfig{Configured: false}, nil
	}
	if err != nil {
		return model.BrokerConfig{}, err
	}

	cfg := model.BrokerConfig{
		Configured:     true,
		FlexQueryID:    stored.FlexQueryID,
		TokenExpiresAt: stored.TokenExpiresAt,
		UpdatedAt:      stored.UpdatedAt,
	}
	if stored.TokenExpiresAt != nil {
		switch {
		case stored.TokenExpiresAt.Before(time.Now()):
			cfg.TokenWarning = "broker token has expired"
		case time.Until(*stored.TokenExpiresAt) < tokenExpiryWarningWindow:
			cfg.TokenWarning = fmt.Sprintf("broker token expires on %s",
				stored.TokenExpiresAt.Format("2006-01-02"))
		}
	}
	return cfg, nil
}

// BrokerToken unseals and returns the stored flex token for use against the
// broker API.
func (s *SettingsService) BrokerToken() (string, error) {
	stored, err := s.repo.Get()
	if err != nil {
		return "", err
	}
	token := fernet.VerifyAndDecrypt([]byte(stored.SealedToken), 0, []*fernet.Key{s.key})
	if token == nil {
		return "", fmt.Errorf("%w: stored token failed verification", apperrors.ErrDataInconsistency)
	}
	return string(token), nil
}
