package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Diyorbek0204/dern-support/internal/model"
	"github.com/Diyorbek0204/dern-support/internal/repository"
	"github.com/Diyorbek0204/dern-support/internal/service"
	"github.com/Diyorbek0204/dern-support/internal/testutils"
)

func TestComponentLifecycle(t *testing.T) {
	svc := service.NewComponentService(testutils.NewComponentStore())
	ctx := context.Background()
	manager := service.Caller{ID: "m1", Role: model.RoleManager}
	master := service.Caller{ID: "w1", Role: model.RoleMaster}

	c, err := svc.Create(ctx, manager, "RAM 8GB DDR4", "2666MHz", 350000, 10)
	require.NoError(t, err)
	assert.NotEmpty(t, c.ID)

	got, err := svc.Get(ctx, master, c.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(350000), got.Price)
	assert.Equal(t, 10, got.InStock)

	stock := 7
	upd, err := svc.Update(ctx, manager, c.ID, service.ComponentPatch{InStock: &stock})
	require.NoError(t, err)
	assert.Equal(t, 7, upd.InStock)
	assert.Equal(t, "RAM 8GB DDR4", upd.Title)

	negative := int64(-5)
	_, err = svc.Update(ctx, manager, c.ID, service.ComponentPatch{Price: &negative})
	assert.ErrorIs(t, err, service.ErrValidation)

	_, err = svc.Create(ctx, master, "SSD", "", 1, 1)
	assert.ErrorIs(t, err, service.ErrPermissionDenied)
	_, err = svc.Create(ctx, manager, "  ", "", 1, 1)
	assert.ErrorIs(t, err, service.ErrValidation)
	_, err = svc.Create(ctx, manager, "SSD", "", 1, -1)
	assert.ErrorIs(t, err, service.ErrValidation)

	require.NoError(t, svc.Delete(ctx, manager, c.ID))
	_, err = svc.Get(ctx, master, c.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}
