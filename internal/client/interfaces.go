// SPDX-License-Identifier: Apache-2.0

package client

import "context"

// Client defines the minimal lifecycle contract for runnable client
// applications.
type Client interface {
	// Run executes the client application and blocks until exit.
	Run(ctx context.Context) error
}
