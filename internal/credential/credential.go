// Package credential resolves the OAuth credential used against the video
// platform, refreshing and persisting rotated tokens through the secret
// store.
package credential

import (
	"encoding/json"
	"time"
)

// Credential is the OAuth credential stored as a JSON blob in the secret
// store. The upper-case keys are the wire format of the blob and must not
// change: independent invocations (and other tools) read the same secret.
type Credential struct {
	Token        string `json:"TOKEN"`
	RefreshToken string `json:"REFRESH_TOKEN"`
	TokenURI     string `json:"TOKEN_URI"`
	ClientID     string `json:"CLIENT_ID"`
	ClientSecret string `json:"CLIENT_SECRET"`

	// Expiry is optional. Nil means the source provided no expiry
	// information, in which case the token is assumed valid.
	Expiry *time.Time `json:"EXPIRY,omitempty"`
}

// ParseBlob decodes the secret-store JSON blob.
func ParseBlob(blob string) (*Credential, error) {
	c := &Credential{}
	if err := json.Unmarshal([]byte(blob), c); err != nil {
		return nil, err
	}
	return c, nil
}

// MarshalBlob encodes the credential back into its secret-store wire format.
func (c *Credential) MarshalBlob() (string, error) {
	b, err := json.Marshal(c)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Complete reports whether every required field is present.
func (c *Credential) Complete() bool {
	return c.Token != "" && c.RefreshToken != "" && c.TokenURI != "" &&
		c.ClientID != "" && c.ClientSecret != ""
}

// Expired reports whether the token is past its known expiry. Expiry is only
// ever set from token-response data, never computed locally from guesses.
func (c *Credential) Expired(now time.Time) bool {
	return c.Expiry != nil && !now.Before(*c.Expiry)
}

// Valid reports whether the credential can be used for an upload right now.
func (c *Credential) Valid(now time.Time) bool {
	return c.Token != "" && !c.Expired(now)
}
