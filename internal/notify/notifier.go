package notify

import (
	"context"
	"fmt"
	"strings"
	"time"

	"frota/internal/apperr"
	"frota/internal/logging"
	"frota/internal/model"

	"go.uber.org/zap"
)

// RideNotifier emails the receipt of a completed ride.
type RideNotifier struct {
	mailer     Mailer
	opsMailbox string
	timeout    time.Duration
}

func NewRideNotifier(mailer Mailer, opsMailbox string, timeout time.Duration) *RideNotifier {
	return &RideNotifier{mailer: mailer, opsMailbox: opsMailbox, timeout: timeout}
}

// Recipients lists client, requester and operations addresses, without blanks or repeats.
func (n *RideNotifier) Recipients(ride *model.Ride) []string {
	var candidates []string
	if ride.Client != nil {
		candidates = append(candidates, ride.Client.Email)
	}
	if ride.Requester != nil {
		candidates = append(candidates, ride.Requester.Email)
	}
	candidates = append(candidates, n.opsMailbox)

	seen := make(map[string]bool, len(candidates))
	out := make([]string, 0, len(candidates))
	for _, addr := range candidates {
		addr = strings.TrimSpace(addr)
		key := strings.ToLower(addr)
		if addr == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, addr)
	}
	return out
}

// RideCompleted sends the receipt. Failures are logged and returned wrapped in
// ErrNotification; callers must not roll back on them.
func (n *RideNotifier) RideCompleted(ctx context.Context, ride *model.Ride) error {
	receipt := BuildReceipt(ride)
	body, err := receipt.HTML()
	if err != nil {
		logging.Error("render ride receipt", zap.Uint("ride_id", ride.ID), zap.Error(err))
		return fmt.Errorf("%w: %v", apperr.ErrNotification, err)
	}

	if n.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, n.timeout)
		defer cancel()
	}

	msg := Message{To: n.Recipients(ride), Subject: receipt.Subject(), HTMLBody: body}
	if err := n.mailer.Send(ctx, msg); err != nil {
		logging.Error("send ride receipt",
			zap.Uint("ride_id", ride.ID),
			zap.Strings("to", msg.To),
			zap.Error(err),
		)
		return fmt.Errorf("%w: %v", apperr.ErrNotification, err)
	}

	logging.Info("ride receipt sent", zap.Uint("ride_id", ride.ID), zap.Strings("to", msg.To))
	return nil
}
