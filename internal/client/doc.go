// SPDX-License-Identifier: Apache-2.0

// Package client implements the command-line client application.
//
// It wires the server adapter, local storage, and client services into a
// cobra command tree: account commands (register, login, logout), vault
// editing (put, rm, list), and sync (sync, agent, status).
package client
