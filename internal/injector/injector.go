//go:build wireinject
// +build wireinject

// The build tag makes sure the stub is not built in the final build.

package injector

import (
	"github.com/google/wire"
)

// InitializeApp builds the whole process from a config path.
func InitializeApp(path ConfigPath) (*App, error) {
	wire.Build(ProviderSet)
	return nil, nil
}
