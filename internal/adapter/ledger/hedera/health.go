package hedera

import "context"

// HealthCheck implements ports.HealthChecker for the Hedera network.
type HealthCheck struct {
	client *Client
}

// NewHealthCheck creates a Hedera health checker.
func NewHealthCheck(client *Client) *HealthCheck {
	return &HealthCheck{client: client}
}

// Ping checks network reachability with an operator balance query.
func (h *HealthCheck) Ping(ctx context.Context) error {
	_, err := h.client.Balance(ctx)
	return err
}

// Name returns the dependency name.
func (h *HealthCheck) Name() string {
	return "hedera"
}
