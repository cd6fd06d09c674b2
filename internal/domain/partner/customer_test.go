package partner

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCustomer(t *testing.T) {
	t.Run("creates active customer", func(t *testing.T) {
		c, err := NewCustomer(uuid.New(), "c-001", CustomerDetails{Name: "Acme", Email: "AP@Acme.io"})
		require.NoError(t, err)
		assert.Equal(t, "C-001", c.Code)
		assert.Equal(t, "ap@acme.io", c.Email)
		assert.True(t, c.IsActive)
		assert.True(t, c.Balance.IsZero())
		assert.Len(t, c.GetDomainEvents(), 1)
	})

	t.Run("validation", func(t *testing.T) {
		_, err := NewCustomer(uuid.New(), "", CustomerDetails{Name: "x"})
		assert.Error(t, err)
		_, err = NewCustomer(uuid.New(), "C1", CustomerDetails{Name: ""})
		assert.Error(t, err)
		_, err = NewCustomer(uuid.New(), "C1", CustomerDetails{Name: "x", Email: "nope"})
		assert.Error(t, err)
	})
}

func TestCustomer_Balance(t *testing.T) {
	c, err := NewCustomer(uuid.New(), "C1", CustomerDetails{Name: "Acme"})
	require.NoError(t, err)

	require.NoError(t, c.IncreaseBalance(decimal.NewFromInt(100)))
	require.NoError(t, c.DecreaseBalance(decimal.NewFromInt(40)))
	assert.True(t, c.Balance.Equal(decimal.NewFromInt(60)))
	assert.True(t, c.HasBalance())

	assert.Error(t, c.IncreaseBalance(decimal.Zero))
	assert.Error(t, c.DecreaseBalance(decimal.NewFromInt(-5)))

	require.NoError(t, c.DecreaseBalance(decimal.NewFromInt(60)))
	assert.False(t, c.HasBalance())
}
