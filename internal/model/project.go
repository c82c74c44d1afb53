package model

import "time"

// Project owns the provider credentials used to send mail on its
// behalf. One project has many identities and many API keys.
type Project struct {
	ID              string
	Name            string
	AccessKeyID     string
	SecretAccessKey string
	Region          string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (p *Project) HasCredentials() bool {
	return p.AccessKeyID != "" && p.SecretAccessKey != "" && p.Region != ""
}

type IdentityStatus string

const (
	IdentityStatusPending IdentityStatus = "pending"
	IdentityStatusSuccess IdentityStatus = "success"
	IdentityStatusFailed  IdentityStatus = "failed"
)

// ProjectIdentity is a sending domain verified with the provider and
// scoped to a project. A send is only permitted when the identity is
// verified and has a configuration set for event tracking.
type ProjectIdentity struct {
	ID                   string
	ProjectID            string
	Domain               string
	Status               IdentityStatus
	ConfigurationSetName *string
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

type APIKey struct {
	ID         string
	ProjectID  string
	Name       string
	Token      string
	IsRevoked  bool
	CreatedAt  time.Time
	LastUsedAt *time.Time
}
