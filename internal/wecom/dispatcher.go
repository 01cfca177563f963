package wecom

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"

	"github.com/sungwon/commit-notifier/internal/changelog"
	"github.com/sungwon/commit-notifier/internal/logger"
)

const msgTypeText = "text"

// Dispatcher formats change records and submits them as a WeCom text
// message. It holds no per-call state and is safe for concurrent use.
type Dispatcher struct {
	tokens  TokenSource
	client  HTTPClient
	sendURL string
	log     zerolog.Logger
}

// NewDispatcher creates a Dispatcher. An empty endpoint selects DefaultEndpoint.
func NewDispatcher(tokens TokenSource, endpoint string, client HTTPClient, log zerolog.Logger) *Dispatcher {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	return &Dispatcher{
		tokens:  tokens,
		client:  client,
		sendURL: endpoint + sendPath,
		log:     log,
	}
}

// NewFromConfig wires a CredentialProvider and Dispatcher from cfg.
func NewFromConfig(cfg Config, log zerolog.Logger) (*Dispatcher, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid wecom config: %w", err)
	}
	client := NewHTTPClient(cfg.Timeout)
	tokens := NewCredentialProvider(cfg.Credentials(), cfg.Endpoint, client, log)
	return NewDispatcher(tokens, cfg.Endpoint, client, log), nil
}

// Send delivers records to recipient. An empty records slice yields
// StatusSkipped without any network call. Otherwise exactly one token
// request is made, followed by at most one send request. Failures are
// reported in the result, never retried.
func (d *Dispatcher) Send(ctx context.Context, records []changelog.ChangeRecord, recipient Recipient, label string) *DeliveryResult {
	result := &DeliveryResult{
		CorrelationID: logger.CorrelationIDFromContext(ctx),
		Timestamp:     time.Now(),
	}
	log := d.log.With().Str("correlation_id", result.CorrelationID).Logger()

	if len(records) == 0 {
		result.Status = StatusSkipped
		log.Debug().Msg("no change records, nothing to send")
		return result
	}

	token, err := d.tokens.AcquireToken(ctx)
	if err == nil && token == "" {
		err = &Error{Kind: KindProtocol, Op: "gettoken", Message: "empty access token"}
	}
	if err != nil {
		result.Status = StatusFailed
		result.Err = asError("gettoken", err)
		log.Error().Err(err).Msg("failed to acquire access token")
		return result
	}

	if err := d.submit(ctx, token, recipient, FormatRecords(label, records)); err != nil {
		result.Status = StatusFailed
		result.Err = err
		log.Error().Err(err).
			Int("agent_id", recipient.AgentID).
			Str("user_id", recipient.UserID).
			Msg("message delivery failed")
		return result
	}

	result.Status = StatusSent
	log.Info().
		Int("agent_id", recipient.AgentID).
		Str("user_id", recipient.UserID).
		Int("records", len(records)).
		Msg("message delivered")
	return result
}

func (d *Dispatcher) submit(ctx context.Context, token string, recipient Recipient, content string) *Error {
	body, err := json.Marshal(buildPayload(recipient, content))
	if err != nil {
		return &Error{Kind: KindProtocol, Op: "send", Message: "marshal request: " + err.Error(), Err: err}
	}

	resp, err := d.client.Do(ctx, &HTTPRequest{
		Method: http.MethodPost,
		URL:    d.sendURL + "?access_token=" + url.QueryEscape(token),
		Headers: map[string]string{
			"Content-Type": "application/json",
		},
		Body: body,
	})
	if err != nil {
		return &Error{Kind: KindTransport, Op: "send", Message: err.Error(), Err: err}
	}

	return classifySendResponse(resp)
}

// classifySendResponse maps a message/send response onto the error
// taxonomy. It returns nil only for errcode 0.
func classifySendResponse(resp *HTTPResponse) *Error {
	var sr sendResponse
	if err := json.Unmarshal(resp.Body, &sr); err != nil {
		return &Error{
			Kind:    KindProtocol,
			Op:      "send",
			Message: fmt.Sprintf("parse response (HTTP %d): %v", resp.StatusCode, err),
			Err:     err,
		}
	}
	if sr.ErrCode == nil {
		return &Error{
			Kind:    KindProtocol,
			Op:      "send",
			Message: fmt.Sprintf("missing errcode in response (HTTP %d)", resp.StatusCode),
		}
	}
	if *sr.ErrCode != 0 {
		return &Error{Kind: KindRemoteRejection, Op: "send", Code: *sr.ErrCode, Message: sr.ErrMsg}
	}
	return nil
}

// textPayload matches the WeCom message/send JSON schema for text messages.
type textPayload struct {
	ToUser  string      `json:"touser"`
	MsgType string      `json:"msgtype"`
	AgentID int         `json:"agentid"`
	Text    textContent `json:"text"`
}

type textContent struct {
	Content string `json:"content"`
}

type sendResponse struct {
	ErrCode *int   `json:"errcode"`
	ErrMsg  string `json:"errmsg"`
}

func buildPayload(recipient Recipient, content string) textPayload {
	return textPayload{
		ToUser:  recipient.UserID,
		MsgType: msgTypeText,
		AgentID: recipient.AgentID,
		Text:    textContent{Content: content},
	}
}
