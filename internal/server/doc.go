// Package server runs the vault server's HTTP transport.
//
// It owns the listener lifecycle: startup, OS signal handling, and graceful
// shutdown with a drain period for in-flight sync requests.
package server
