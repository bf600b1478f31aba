package observability_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/fx"

	"github.com/policywaylabs/policyway/internal/config"
	"github.com/policywaylabs/policyway/internal/observability"
)

// The commands compose config.Module themselves, so observability must not
// provide *config.Config a second time.
func TestModuleComposesWithConfig(t *testing.T) {
	err := fx.ValidateApp(
		config.Module,
		observability.Module,
	)
	require.NoError(t, err)
}
