package credential

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mkarpovs/tubecast/internal/common"
	"github.com/mkarpovs/tubecast/internal/logging"
	"github.com/mkarpovs/tubecast/internal/secrets"
)

// Manager resolves the OAuth credential for one invocation. The process is
// stateless between invocations, so a rotated token must be persisted back
// to the secret store before it is used: losing the rotation would orphan
// the old token for every future invocation.
type Manager struct {
	store      secrets.Store
	secretID   string
	httpClient *http.Client
	logger     logging.Logger
	now        func() time.Time
}

func NewManager(store secrets.Store, secretID string, logger logging.Logger) *Manager {
	return &Manager{
		store:      store,
		secretID:   secretID,
		httpClient: &http.Client{},
		logger:     logger,
		now:        time.Now,
	}
}

// Resolve loads the credential blob, refreshes the token if it is expired
// and a refresh token is available, persists the rotated blob, and returns
// a credential that is valid for immediate use. Every failure maps to
// common.ErrAuth.
func (m *Manager) Resolve(ctx context.Context) (*Credential, error) {
	blob, err := m.store.Get(ctx, m.secretID)
	if err != nil {
		return nil, fmt.Errorf("read credential secret: %v: %w", err, common.ErrAuth)
	}

	cred, err := ParseBlob(blob)
	if err != nil {
		return nil, fmt.Errorf("decode credential blob: %v: %w", err, common.ErrAuth)
	}

	if !cred.Complete() {
		return nil, fmt.Errorf("missing credential fields: %w", common.ErrAuth)
	}

	if cred.Expired(m.now()) && cred.RefreshToken != "" {
		if err := m.refresh(ctx, cred); err != nil {
			return nil, err
		}
		if err := m.persist(ctx, cred); err != nil {
			return nil, err
		}
	}

	if !cred.Valid(m.now()) {
		return nil, fmt.Errorf("invalid credentials: %w", common.ErrAuth)
	}

	return cred, nil
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	ExpiresIn    int64  `json:"expires_in"`
	RefreshToken string `json:"refresh_token"`
}

// refresh exchanges the refresh token for a new access token at the token
// endpoint and updates cred in place.
func (m *Manager) refresh(ctx context.Context, cred *Credential) error {
	form := url.Values{}
	form.Set("grant_type", "refresh_token")
	form.Set("refresh_token", cred.RefreshToken)
	form.Set("client_id", cred.ClientID)
	form.Set("client_secret", cred.ClientSecret)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, cred.TokenURI, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("build refresh request: %v: %w", err, common.ErrAuth)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("token refresh: %v: %w", err, common.ErrAuth)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("token refresh: status %d: %s: %w", resp.StatusCode, strings.TrimSpace(string(body)), common.ErrAuth)
	}

	var tok tokenResponse
	if err := json.Unmarshal(body, &tok); err != nil {
		return fmt.Errorf("decode token response: %v: %w", err, common.ErrAuth)
	}
	if tok.AccessToken == "" {
		return fmt.Errorf("token response without access_token: %w", common.ErrAuth)
	}

	cred.Token = tok.AccessToken
	if tok.RefreshToken != "" {
		cred.RefreshToken = tok.RefreshToken
	}
	if tok.ExpiresIn > 0 {
		exp := m.now().Add(time.Duration(tok.ExpiresIn) * time.Second)
		cred.Expiry = &exp
	} else {
		cred.Expiry = nil
	}

	m.logger.Info(ctx, "access token refreshed", "secret_id", m.secretID)
	return nil
}

// persist writes the rotated credential back under the same secret id. A
// failed write-back is fatal to the invocation: silently continuing would
// desynchronize future invocations from the rotated token.
func (m *Manager) persist(ctx context.Context, cred *Credential) error {
	blob, err := cred.MarshalBlob()
	if err != nil {
		return fmt.Errorf("encode credential blob: %v: %w", err, common.ErrAuth)
	}
	if err := m.store.Put(ctx, m.secretID, blob); err != nil {
		m.logger.Error(ctx, "failed to persist rotated credential", "secret_id", m.secretID, "error", err)
		return fmt.Errorf("persist rotated credential: %v: %w", err, common.ErrAuth)
	}
	m.logger.Info(ctx, "rotated credential persisted", "secret_id", m.secretID)
	return nil
}
