// Package wecom delivers commit summaries through the WeCom application
// message API. A CredentialProvider exchanges the corp credentials for an
// access token and a Dispatcher formats and submits the message.
package wecom

import (
	"context"
	"time"

	"github.com/sungwon/commit-notifier/internal/changelog"
)

// DefaultEndpoint is the WeCom API base URL.
const DefaultEndpoint = "https://qyapi.weixin.qq.com"

const (
	tokenPath = "/cgi-bin/gettoken"
	sendPath  = "/cgi-bin/message/send"
)

// Credentials identify the WeCom application. They are only ever sent to
// the token endpoint.
type Credentials struct {
	CorpID     string
	CorpSecret string
}

// Recipient identifies where a message is delivered inside WeCom.
type Recipient struct {
	AgentID int
	UserID  string
}

// TokenSource issues access tokens. Every call performs a fresh exchange.
type TokenSource interface {
	AcquireToken(ctx context.Context) (string, error)
}

// Sender delivers a batch of change records. Dispatcher and StdoutSink
// implement it.
type Sender interface {
	Send(ctx context.Context, records []changelog.ChangeRecord, recipient Recipient, label string) *DeliveryResult
}

// HTTPClient abstracts HTTP operations for testability.
type HTTPClient interface {
	Do(ctx context.Context, req *HTTPRequest) (*HTTPResponse, error)
}

// HTTPRequest represents an outgoing HTTP request.
type HTTPRequest struct {
	Method  string
	URL     string
	Headers map[string]string
	Body    []byte
}

// HTTPResponse represents an HTTP response from the WeCom API.
type HTTPResponse struct {
	StatusCode int
	Headers    map[string]string
	Body       []byte
}

// DeliveryStatus is the outcome of a Send.
type DeliveryStatus string

const (
	StatusSent    DeliveryStatus = "sent"
	StatusSkipped DeliveryStatus = "skipped"
	StatusFailed  DeliveryStatus = "failed"
)

// DeliveryResult describes one Send. Err is set only when Status is
// StatusFailed.
type DeliveryResult struct {
	Status        DeliveryStatus
	Err           *Error
	CorrelationID string
	Timestamp     time.Time
}

// Succeeded reports whether the message was accepted by WeCom.
func (r *DeliveryResult) Succeeded() bool {
	return r != nil && r.Status == StatusSent
}

// Skipped reports whether there was nothing to send.
func (r *DeliveryResult) Skipped() bool {
	return r != nil && r.Status == StatusSkipped
}
