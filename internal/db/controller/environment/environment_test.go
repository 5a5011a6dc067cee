package environment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/idam-admin/idam/internal/db/dbtest"
)

func TestGetAll_Order(t *testing.T) {
	db := dbtest.Open(t)

	for _, env := range []struct {
		name  string
		order int
	}{
		{"Production", 3},
		{"Development", 1},
		{"Staging", 2},
	} {
		_, err := Create(db, env.name, env.order)
		require.NoError(t, err)
	}

	envs, err := GetAll(db)
	require.NoError(t, err)

	names := make([]string, 0, len(envs))
	for _, e := range envs {
		names = append(names, e.Name)
	}

	assert.Equal(t, []string{"Development", "Staging", "Production"}, names)
}

func TestCRUD(t *testing.T) {
	db := dbtest.Open(t)

	dev, err := Create(db, "Development", 1)
	require.NoError(t, err)

	_, err = Create(db, "Development", 2)
	require.ErrorIs(t, err, ErrEnvironmentAlreadyExists)

	updated, err := Update(db, dev.ID, "Dev", 5)
	require.NoError(t, err)
	assert.Equal(t, "Dev", updated.Name)
	assert.Equal(t, 5, updated.Order)

	_, err = Update(db, dev.ID, " ", 5)
	require.ErrorIs(t, err, ErrEnvironmentNameEmpty)

	require.NoError(t, Delete(db, dev.ID))

	_, err = Get(db, dev.ID)
	require.ErrorIs(t, err, ErrEnvironmentNotFound)
}

func TestDelete_InUse(t *testing.T) {
	db := dbtest.Open(t)

	site := dbtest.Website(t, db, "app.example.com")

	require.ErrorIs(t, Delete(db, site.EnvironmentID), ErrEnvironmentInUse)
}
