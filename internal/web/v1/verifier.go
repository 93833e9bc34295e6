package v1

import (
	"net/http"

	svix "github.com/svix/svix-webhooks/go"
)

// Verifier checks that a webhook body was sent by the identity provider
// and not tampered with. The signing scheme is an opaque
// verify-or-reject primitive behind this interface.
type Verifier interface {
	Verify(payload []byte, headers http.Header) error
}

// SvixVerifier implements Verifier using the provider's svix signing
// scheme and the shared webhook secret.
type SvixVerifier struct {
	wh *svix.Webhook
}

// NewSvixVerifier creates a verifier from the whsec_... secret.
func NewSvixVerifier(secret string) (*SvixVerifier, error) {
	wh, err := svix.NewWebhook(secret)
	if err != nil {
		return nil, err
	}
	return &SvixVerifier{wh: wh}, nil
}

func (v *SvixVerifier) Verify(payload []byte, headers http.Header) error {
	return v.wh.Verify(payload, headers)
}
