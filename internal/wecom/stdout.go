package wecom

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/sungwon/commit-notifier/internal/changelog"
	"github.com/sungwon/commit-notifier/internal/logger"
)

// StdoutSink implements Sender by printing the formatted message instead of
// calling WeCom. Intended for dry runs; nothing is actually delivered.
type StdoutSink struct {
	writer io.Writer
}

// NewStdoutSink creates a StdoutSink writing to os.Stdout.
func NewStdoutSink() *StdoutSink {
	return &StdoutSink{writer: os.Stdout}
}

// Send prints the message that would be delivered and reports it as sent.
func (s *StdoutSink) Send(ctx context.Context, records []changelog.ChangeRecord, recipient Recipient, label string) *DeliveryResult {
	result := &DeliveryResult{
		CorrelationID: logger.CorrelationIDFromContext(ctx),
		Timestamp:     time.Now(),
	}
	if len(records) == 0 {
		result.Status = StatusSkipped
		return result
	}

	var b strings.Builder
	b.WriteString("--- dry run: wecom message ---\n")
	fmt.Fprintf(&b, "To:      %s (agent %d)\n", recipient.UserID, recipient.AgentID)
	b.WriteString(FormatRecords(label, records))
	b.WriteString("\n--- end ---\n")

	if _, err := io.WriteString(s.writer, b.String()); err != nil {
		result.Status = StatusFailed
		result.Err = &Error{Kind: KindTransport, Op: "send", Message: "stdout: " + err.Error(), Err: err}
		return result
	}

	result.Status = StatusSent
	return result
}
