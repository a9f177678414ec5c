// SPDX-License-Identifier: Apache-2.0

package handler

import "errors"

// errNoHandlersAreCreated is returned by NewHandlers when the server
// configuration carries no HTTP listen address, leaving no transport to
// initialize. This is a fatal misconfiguration at startup.
var errNoHandlersAreCreated = errors.New("no handlers are created")
