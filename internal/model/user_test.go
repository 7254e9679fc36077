package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUser_CloneIsDeep(t *testing.T) {
	t.Parallel()

	u := &User{
		ID:        "u1",
		Addresses: []Address{{ID: "a1", City: "Lyon"}},
		Orders:    []Order{{ID: "o1", Items: []OrderItem{{FoodID: "1", Quantity: 1}}}},
	}

	c := u.Clone()
	c.Addresses[0].City = "Paris"
	c.Orders[0].Items[0].Quantity = 5

	assert.Equal(t, "Lyon", u.Addresses[0].City)
	assert.Equal(t, 1, u.Orders[0].Items[0].Quantity)
}

func TestUser_CloneNil(t *testing.T) {
	t.Parallel()

	var u *User
	assert.Nil(t, u.Clone())
}

func TestUser_Apply(t *testing.T) {
	t.Parallel()

	u := &User{ID: "u1", Name: "Ana", Email: "ana@example.com"}
	name := "Ana Maria"
	addrs := []Address{{ID: "a1", Street: "1 Main St"}}

	u.Apply(ProfileUpdate{Name: &name, Addresses: &addrs})

	assert.Equal(t, "Ana Maria", u.Name)
	assert.Equal(t, "ana@example.com", u.Email)
	require.Len(t, u.Addresses, 1)
	assert.Equal(t, "u1", u.ID)

	addrs[0].Street = "changed"
	assert.Equal(t, "1 Main St", u.Addresses[0].Street)
}

func TestProfileUpdate_IsEmpty(t *testing.T) {
	t.Parallel()

	assert.True(t, ProfileUpdate{}.IsEmpty())
	name := "x"
	assert.False(t, ProfileUpdate{Name: &name}.IsEmpty())
}
