// Package delivery defines the contract every transport entrypoint
// implements.
package delivery

import "context"

// Delivery is a serving surface started by the application runner.
type Delivery interface {
	// Serve blocks until the surface stops or fails.
	Serve(ctx context.Context) error
}
