package request

type SetBrokerConfigRequest struct {
	FlexQueryID    string `json:"flexQueryId"`
	Token          string `json:"token"`
	TokenExpiresAt string `json:"tokenExpiresAt,omitempty"`
}
