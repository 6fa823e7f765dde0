package model

import "time"

// BrokerConfig holds the broker flex-report connection settings. The token
// is stored fernet-sealed at rest; Token here is the decrypted value.
type BrokerConfig struct {
	Configured     bool       `json:"configured"`
	FlexQueryID    string     `json:"flexQueryId"`
	Token          string     `json:"token,omitempty"`
	TokenExpiresAt *time.Time `json:"tokenExpiresAt,omitempty"`
	TokenWarning   string     `json:"tokenWarning,omitempty"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}
