// Package webhook delivers the signed completion notification to a
// caller-supplied endpoint. Delivery failures never affect the pipeline
// result.
package webhook

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"

	"github.com/mkarpovs/tubecast/internal/logging"
	"github.com/mkarpovs/tubecast/internal/secrets"
)

// SignatureHeader carries the hex-encoded HMAC-SHA256 of the request body.
const SignatureHeader = "X-Webhook-Signature"

// Payload is the completion notification body.
type Payload struct {
	VideoID      string  `json:"video_id"`
	ThumbnailURL *string `json:"thumbnail_url"`
	Duration     *int64  `json:"duration"`
}

// Notifier posts completion payloads. The signing key is fetched at delivery
// time, never cached; an empty signingKeyID disables signing entirely.
type Notifier struct {
	store        secrets.Store
	signingKeyID string
	httpClient   *http.Client
	logger       logging.Logger
}

func NewNotifier(store secrets.Store, signingKeyID string, logger logging.Logger) *Notifier {
	return &Notifier{
		store:        store,
		signingKeyID: signingKeyID,
		httpClient:   &http.Client{},
		logger:       logger,
	}
}

// Notify serializes the payload and posts it to url. An empty url is a
// no-op, not an error. Every failure is soft: it is logged and reported as
// delivered=false so the caller can distinguish "webhook requested but
// failed" from "no webhook requested".
func (n *Notifier) Notify(ctx context.Context, url string, payload Payload) (status int, delivered bool) {
	if url == "" {
		return 0, false
	}

	body, err := json.Marshal(payload)
	if err != nil {
		n.logger.Error(ctx, "webhook payload not serializable", "error", err)
		return 0, false
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		n.logger.Error(ctx, "webhook request not buildable", "url", url, "error", err)
		return 0, false
	}
	req.Header.Set("Content-Type", "application/json")

	if n.signingKeyID != "" {
		key, err := n.store.Get(ctx, n.signingKeyID)
		if err != nil {
			n.logger.Error(ctx, "webhook signing key unavailable", "secret_id", n.signingKeyID, "error", err)
			return 0, false
		}
		// the MAC covers the exact serialized bytes being sent
		req.Header.Set(SignatureHeader, Sign([]byte(key), body))
	}

	resp, err := n.httpClient.Do(req)
	if err != nil {
		n.logger.Error(ctx, "webhook delivery failed", "url", url, "error", err)
		return 0, false
	}
	defer resp.Body.Close()

	n.logger.Info(ctx, "webhook delivered", "url", url, "status", resp.StatusCode)
	return resp.StatusCode, true
}

// Sign computes the hex-encoded HMAC-SHA256 of body under key.
func Sign(key, body []byte) string {
	mac := hmac.New(sha256.New, key)
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}
