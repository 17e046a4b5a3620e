// Package nats publishes fraud review notices to a NATS subject.
package nats

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	natsgo "github.com/nats-io/nats.go"

	"github.com/couchcryptid/storm-claims-analysis/internal/domain"
)

// publisher is the subset of *natsgo.Conn the notifier uses.
type publisher interface {
	PublishMsg(msg *natsgo.Msg) error
	IsConnected() bool
}

// Notifier implements domain.ReviewNotifier.
type Notifier struct {
	conn    publisher
	close   func()
	subject string
	logger  *slog.Logger
}

// NewNotifier connects to NATS. The connection retries in the background, so a
// broker that is briefly down at startup does not fail the service.
func NewNotifier(url, subject string, logger *slog.Logger) (*Notifier, error) {
	conn, err := natsgo.Connect(url,
		natsgo.Name("storm-claims-analysis"),
		natsgo.RetryOnFailedConnect(true),
		natsgo.MaxReconnects(10),
		natsgo.ReconnectWait(2*time.Second),
		natsgo.DisconnectErrHandler(func(_ *natsgo.Conn, err error) {
			logger.Warn("nats disconnected", "error", err)
		}),
		natsgo.ReconnectHandler(func(c *natsgo.Conn) {
			logger.Info("nats reconnected", "url", c.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}
	logger.Info("nats review notifier ready", "subject", subject)

	return &Notifier{conn: conn, close: conn.Close, subject: subject, logger: logger}, nil
}

// NotifyReview publishes the notice as JSON.
func (n *Notifier) NotifyReview(ctx context.Context, notice domain.ReviewNotice) error {
	msg, err := buildMessage(n.subject, notice)
	if err != nil {
		return err
	}
	if err := n.conn.PublishMsg(msg); err != nil {
		return fmt.Errorf("publish review notice: %w", err)
	}
	n.logger.DebugContext(ctx, "review notice published", "claim_id", notice.ClaimID, "request_id", notice.RequestID)
	return nil
}

// CheckReadiness reports whether the connection is up.
func (n *Notifier) CheckReadiness(_ context.Context) error {
	if !n.conn.IsConnected() {
		return errors.New("nats not connected")
	}
	return nil
}

// Close closes the connection.
func (n *Notifier) Close() {
	if n.close != nil {
		n.close()
	}
}

func buildMessage(subject string, notice domain.ReviewNotice) (*natsgo.Msg, error) {
	data, err := json.Marshal(notice)
	if err != nil {
		return nil, fmt.Errorf("marshal review notice: %w", err)
	}
	msg := natsgo.NewMsg(subject)
	msg.Data = data
	msg.Header.Set("Content-Type", "application/json")
	msg.Header.Set("Risk-Level", string(notice.RiskLevel))
	if notice.RequestID != "" {
		msg.Header.Set(natsgo.MsgIdHdr, notice.RequestID)
	}
	return msg, nil
}
