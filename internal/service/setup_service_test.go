package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Diyorbek0204/dern-support/internal/model"
	"github.com/Diyorbek0204/dern-support/internal/service"
	"github.com/Diyorbek0204/dern-support/internal/testutils"
	"github.com/Diyorbek0204/dern-support/internal/utils"
)

func TestSeedDefaults(t *testing.T) {
	users, components := testutils.NewUserStore(), testutils.NewComponentStore()
	svc := service.NewSetupService(users, components, 4, nil)
	ctx := context.Background()

	done, err := svc.CheckSetup(ctx)
	require.NoError(t, err)
	assert.False(t, done)

	seeded, err := svc.SeedDefaults(ctx)
	require.NoError(t, err)
	assert.True(t, seeded)

	done, err = svc.CheckSetup(ctx)
	require.NoError(t, err)
	assert.True(t, done)

	admin, err := users.GetByEmail(ctx, "admin@dernsupport.uz")
	require.NoError(t, err)
	assert.Equal(t, model.RoleManager, admin.Role)
	assert.True(t, utils.VerifyPassword(admin.PasswordHash, service.DefaultPassword))

	list, err := components.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 6)

	again, err := svc.SeedDefaults(ctx)
	require.NoError(t, err)
	assert.False(t, again)
	n, _ := users.Count(ctx)
	assert.Equal(t, 4, n)
}
