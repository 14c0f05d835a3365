package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to ApplicationStatus
		ok       bool
	}{
		{StatusPending, StatusApproved, true},
		{StatusPending, StatusRejected, true},
		{StatusApproved, StatusCompleted, true},
		{StatusPending, StatusCompleted, false},
		{StatusApproved, StatusRejected, false},
		{StatusApproved, StatusPending, false},
		{StatusCompleted, StatusApproved, false},
		{StatusRejected, StatusApproved, false},
		{StatusCompleted, StatusCompleted, false},
	}
	for _, c := range cases {
		assert.Equal(t, c.ok, CanTransition(c.from, c.to), "%s -> %s", c.from, c.to)
	}
}

func TestTerminalStatuses(t *testing.T) {
	assert.True(t, StatusCompleted.IsTerminal())
	assert.True(t, StatusRejected.IsTerminal())
	assert.False(t, StatusPending.IsTerminal())
	assert.False(t, StatusApproved.IsTerminal())
}

func TestEnumValidation(t *testing.T) {
	assert.True(t, IsValidStatus("approved"))
	assert.False(t, IsValidStatus("cancelled"))
	assert.True(t, IsValidCategory("traffic_management"))
	assert.False(t, IsValidCategory("parking"))
	assert.True(t, IsValidUserType("citizen"))
	assert.False(t, IsValidUserType("admin"))
}

func TestTransactionSigned(t *testing.T) {
	assert.Equal(t, 50, Transaction{Type: TransactionEarned, Amount: 50}.Signed())
	assert.Equal(t, -20, Transaction{Type: TransactionSpent, Amount: 20}.Signed())
}
