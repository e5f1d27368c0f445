//go:build windows

package main

import (
	"context"
	"os"
	"os/signal"
)

// notifyContext cancels a build on interrupt. SIGTERM does not exist on Windows.
func notifyContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt)
}
