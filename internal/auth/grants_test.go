package auth

import (
	"testing"

	"frota/internal/model"

	"github.com/stretchr/testify/assert"
)

func TestGrantsFor(t *testing.T) {
	rows := []model.RoleGrant{
		{ResourceName: "Clients", CanView: true, CanEdit: true},
		{ResourceName: "Rides", CanView: true},
		{ResourceName: "Reports", CanEdit: true},
		{ResourceName: "Units"},
	}

	set := GrantsFor(rows)

	assert.True(t, set.Has(ResourceClients, ActionView))
	assert.True(t, set.Has(ResourceClients, ActionEdit))
	assert.True(t, set.Has(ResourceRides, ActionView))
	assert.False(t, set.Has(ResourceRides, ActionEdit))
	assert.True(t, set.Has(ResourceReports, ActionEdit))
	assert.False(t, set.Has(ResourceReports, ActionView), "edit must not imply view")
	assert.False(t, set.Has(ResourceUnits, ActionView))
	assert.Equal(t, []string{"Clients:Edit", "Clients:View", "Reports:Edit", "Rides:View"}, set.Tokens())
}

func TestGrantsFor_EmptyRole(t *testing.T) {
	set := GrantsFor(nil)
	for _, r := range Resources {
		assert.False(t, set.Has(r, ActionView))
		assert.False(t, set.Has(r, ActionEdit))
	}
	assert.Empty(t, set.Tokens())
}

func TestNewGrantSet_RoundTrip(t *testing.T) {
	original := GrantsFor([]model.RoleGrant{{ResourceName: "Roles", CanView: true, CanEdit: true}})
	rebuilt := NewGrantSet(original.Tokens())
	assert.Equal(t, original, rebuilt)
}

func TestParseResource(t *testing.T) {
	r, ok := ParseResource(" rides ")
	assert.True(t, ok)
	assert.Equal(t, ResourceRides, r)

	_, ok = ParseResource("Invoices")
	assert.False(t, ok)
}
