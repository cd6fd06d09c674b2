package activity

import (
	"testing"

	"github.com/google/uuid"
	"github.com/ledgerly/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Name  string  `json:"name"`
	Email string  `json:"email"`
	Price float64 `json:"price"`
}

func TestNewActivityLog_UpdateKeepsChangedFields(t *testing.T) {
	actor := shared.Actor{UserID: uuid.New(), Name: "Ann", IPAddress: "10.0.0.1"}
	entityID := uuid.New()

	log, err := NewActivityLog(uuid.New(), actor, Entry{
		Action:      ActionUpdate,
		EntityType:  EntityCustomer,
		EntityID:    entityID,
		EntityLabel: "ACME",
		Before:      sample{Name: "Acme", Email: "a@acme.test", Price: 1},
		After:       sample{Name: "Acme", Email: "billing@acme.test", Price: 2},
	})
	require.NoError(t, err)

	assert.Equal(t, Values{"email": "a@acme.test", "price": float64(1)}, log.OldValues)
	assert.Equal(t, Values{"email": "billing@acme.test", "price": float64(2)}, log.NewValues)
	require.NotNil(t, log.ActorID)
	assert.Equal(t, actor.UserID, *log.ActorID)
	assert.Equal(t, "Ann", log.ActorName)
	assert.Equal(t, "10.0.0.1", log.IPAddress)
}

func TestNewActivityLog_CreateKeepsSnapshot(t *testing.T) {
	log, err := NewActivityLog(uuid.New(), shared.Actor{}, Entry{
		Action:     ActionCreate,
		EntityType: EntityProduct,
		EntityID:   uuid.New(),
		After:      sample{Name: "Widget"},
	})
	require.NoError(t, err)
	assert.Nil(t, log.OldValues)
	assert.Equal(t, "Widget", log.NewValues["name"])
	assert.Len(t, log.NewValues, 3)
	assert.Nil(t, log.ActorID)
}

func TestNewActivityLog_Validation(t *testing.T) {
	_, err := NewActivityLog(uuid.New(), shared.Actor{}, Entry{Action: "EXPLODE", EntityType: "X"})
	assert.Error(t, err)

	_, err = NewActivityLog(uuid.New(), shared.Actor{}, Entry{Action: ActionCreate})
	assert.Error(t, err)

	_, err = NewActivityLog(uuid.New(), shared.Actor{}, Entry{Action: ActionCreate, EntityType: "X", After: []int{1}})
	assert.Error(t, err)
}

func TestDiff(t *testing.T) {
	oldV := Values{"a": 1, "b": "x", "gone": true}
	newV := Values{"a": 1, "b": "y", "added": 3}

	o, n := Diff(oldV, newV)
	assert.Equal(t, Values{"b": "x", "gone": true, "added": nil}, o)
	assert.Equal(t, Values{"b": "y", "gone": nil, "added": 3}, n)

	o, n = Diff(Values{"a": 1}, Values{"a": 1})
	assert.Empty(t, o)
	assert.Empty(t, n)
}
