//go:build wireinject
// +build wireinject

package di

import (
	"context"

	"github.com/google/wire"
)

// InitializeContainer builds the service. The returned cleanup flushes
// queued events, stops the config watcher, and shuts the tracer down.
func InitializeContainer(ctx context.Context) (*Container, func(), error) {
	wire.Build(SuperSet)
	return nil, nil, nil
}
