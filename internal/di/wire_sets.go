package di

import (
	"github.com/google/wire"

	"stylesync-backend/internal/infrastructure/imagesource"
)

// SuperSet combines every provider set into the full service.
var SuperSet = wire.NewSet(
	ConfigProviders,
	InfrastructureProviders,
	DomainProviders,
	ApplicationProviders,
	InterfaceProviders,
	provideContainer,
)

// ConfigProviders load configuration and build the logger.
var ConfigProviders = wire.NewSet(
	provideLoader,
	provideConfig,
	provideLogging,
	provideLogger,
	provideDelays,
	provideWatcher,
)

// InfrastructureProviders build the adapters behind the catalog, events,
// and image loading.
var InfrastructureProviders = wire.NewSet(
	provideCollector,
	provideTracer,
	provideAWSConfig,
	provideSupabaseClient,
	provideCache,
	provideGateway,
	providePublisher,
	provideImageSource,
	wire.Bind(new(imagesource.Loader), new(*imagesource.Source)),
)

// DomainProviders build the pure domain components.
var DomainProviders = wire.NewSet(
	provideSeed,
	provideEngine,
	provideCompositor,
)

// ApplicationProviders build the use case services.
var ApplicationProviders = wire.NewSet(
	provideStorefront,
	provideStylist,
	provideAssistant,
	provideTryOn,
	provideAdmin,
	provideSessions,
)

// InterfaceProviders build the HTTP surface.
var InterfaceProviders = wire.NewSet(
	provideVerifier,
	provideHandler,
	provideRouter,
)
