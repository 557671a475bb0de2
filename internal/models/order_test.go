package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOrderStatus_IsValid(t *testing.T) {
	for _, status := range OrderStatuses() {
		assert.True(t, status.IsValid(), "status %q", status)
	}

	for _, status := range []OrderStatus{"", "shipped", "NEW", "pending", " new"} {
		assert.False(t, status.IsValid(), "status %q", status)
	}
}

func TestOrderStatuses_ReturnsCopy(t *testing.T) {
	statuses := OrderStatuses()
	statuses[0] = "shipped"

	assert.Equal(t, StatusNew, OrderStatuses()[0])
	assert.Len(t, OrderStatuses(), 6)
}

func TestOrderSource_IsValid(t *testing.T) {
	assert.True(t, SourceWebsite.IsValid())
	assert.True(t, SourceTelegram.IsValid())
	assert.True(t, SourcePhone.IsValid())
	assert.False(t, OrderSource("fax").IsValid())
}

func TestOrderItem_LineTotal(t *testing.T) {
	item := OrderItem{Quantity: 3, Price: 250.5}
	assert.InDelta(t, 751.5, item.LineTotal(), 0.0001)
}

func TestHasRole(t *testing.T) {
	chef := &User{Role: RoleChef}
	customer := &User{Role: RoleCustomer}

	assert.True(t, HasRole(chef, RoleChef))
	assert.True(t, HasRole(chef, RoleAdmin, RoleChef))
	assert.False(t, HasRole(customer, RoleChef, RoleAdmin))
	assert.False(t, HasRole(nil, RoleChef))
	assert.False(t, HasRole(chef))
}
