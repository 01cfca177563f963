package metrics

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus/push"
)

const defaultJob = "commit_notifier"

// Push sends the current metric values to a Prometheus Pushgateway. The
// notifier runs once and exits, so it cannot be scraped.
func Push(ctx context.Context, gatewayURL, job, instance string) error {
	if job == "" {
		job = defaultJob
	}

	p := push.New(gatewayURL, job)
	if instance != "" {
		p = p.Grouping("instance", instance)
	}
	for _, c := range Collectors() {
		p = p.Collector(c)
	}

	if err := p.PushContext(ctx); err != nil {
		return fmt.Errorf("push metrics to %s: %w", gatewayURL, err)
	}
	return nil
}
