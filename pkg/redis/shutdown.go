package redis

import (
	"context"
	"io"
)

// Shutdown adapts client.Close to a shutdown hook.
func Shutdown(client io.Closer) func(context.Context) error {
	return func(context.Context) error {
		return client.Close()
	}
}
