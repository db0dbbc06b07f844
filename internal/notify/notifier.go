package notify

import (
	"fmt"

	"github.com/containrrr/shoutrrr"

	"github.com/aegis-risk/aegis/internal/logger"
)

// Notifier pushes BLOCK-decision alerts to external destinations (Discord,
// Slack, generic webhooks, anything shoutrrr can address). Delivery is
// best-effort and runs after the decision has committed: a failed send never
// affects the pipeline outcome.
type Notifier struct {
	URLs []string

	// send is swappable in tests.
	send func(url, message string) error
}

func New(urls []string) *Notifier {
	return &Notifier{
		URLs: urls,
		send: shoutrrr.Send,
	}
}

// DecisionBlocked announces a persisted BLOCK decision to every configured
// destination.
func (n *Notifier) DecisionBlocked(userID, accountID string, score float64) {
	if len(n.URLs) == 0 {
		return
	}

	msg := fmt.Sprintf("Aegis BLOCK decision: account %s (user %s) scored %.2f", accountID, userID, score)
	for _, url := range n.URLs {
		if err := n.send(url, msg); err != nil {
			logger.WithFields(map[string]interface{}{
				"account_id": accountID,
			}).Warnf("block alert delivery failed: %v", err)
		}
	}
}
