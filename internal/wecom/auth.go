package wecom

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/rs/zerolog"

	"github.com/sungwon/commit-notifier/internal/metrics"
)

// CredentialProvider exchanges corp credentials for an access token.
// Tokens are never cached: each AcquireToken call hits the token endpoint,
// so a revoked secret is noticed on the very next send.
type CredentialProvider struct {
	creds    Credentials
	tokenURL string
	client   HTTPClient
	log      zerolog.Logger
}

// NewCredentialProvider creates a provider for the given credentials.
// An empty endpoint selects DefaultEndpoint.
func NewCredentialProvider(creds Credentials, endpoint string, client HTTPClient, log zerolog.Logger) *CredentialProvider {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	return &CredentialProvider{
		creds:    creds,
		tokenURL: endpoint + tokenPath,
		client:   client,
		log:      log,
	}
}

// AcquireToken requests a fresh access token. Failures are returned as
// *Error of kind KindTransport or KindProtocol.
func (p *CredentialProvider) AcquireToken(ctx context.Context) (string, error) {
	token, err := p.fetch(ctx)
	if err != nil {
		metrics.TokenRequestsTotal.WithLabelValues("failure").Inc()
		p.log.Debug().Err(err).Msg("access token request failed")
		return "", err
	}
	metrics.TokenRequestsTotal.WithLabelValues("success").Inc()
	return token, nil
}

func (p *CredentialProvider) fetch(ctx context.Context) (string, error) {
	q := url.Values{}
	q.Set("corpid", p.creds.CorpID)
	q.Set("corpsecret", p.creds.CorpSecret)

	resp, err := p.client.Do(ctx, &HTTPRequest{
		Method: http.MethodGet,
		URL:    p.tokenURL + "?" + q.Encode(),
	})
	if err != nil {
		return "", &Error{Kind: KindTransport, Op: "gettoken", Message: err.Error(), Err: err}
	}

	var tr tokenResponse
	if err := json.Unmarshal(resp.Body, &tr); err != nil {
		return "", &Error{
			Kind:    KindProtocol,
			Op:      "gettoken",
			Message: fmt.Sprintf("parse response (HTTP %d): %v", resp.StatusCode, err),
			Err:     err,
		}
	}

	if tr.AccessToken == "" {
		msg := tr.ErrMsg
		if msg == "" {
			msg = "missing access_token in response"
		}
		return "", &Error{Kind: KindProtocol, Op: "gettoken", Code: tr.ErrCode, Message: msg}
	}

	return tr.AccessToken, nil
}

type tokenResponse struct {
	ErrCode     int    `json:"errcode"`
	ErrMsg      string `json:"errmsg"`
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}
