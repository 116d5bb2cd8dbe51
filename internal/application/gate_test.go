package application_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/pinvault/internal/application"
	"github.com/ericfisherdev/pinvault/internal/domain/model"
)

func TestGate_WrongThenRightPIN(t *testing.T) {
	gate := application.NewGate("1234")
	gate.Request(model.GuardedOpDelete, 42)

	_, err := gate.Confirm("0000")
	require.ErrorIs(t, err, application.ErrInvalidPIN)
	assert.Equal(t, application.PINErrorMessage, err.Error())

	pending, ok := gate.Pending()
	require.True(t, ok, "wrong PIN must keep the action pending")
	assert.Equal(t, int64(42), pending.RecordID)

	action, err := gate.Confirm("1234")
	require.NoError(t, err)
	assert.Equal(t, model.GuardedOpDelete, action.Kind)
	assert.Equal(t, int64(42), action.RecordID)
	assert.Equal(t, "Unlock to Delete", action.Title)

	_, ok = gate.Pending()
	assert.False(t, ok)

	_, err = gate.Confirm("1234")
	require.ErrorIs(t, err, application.ErrNoPendingAction, "an action is released only once")
}

func TestGate_SecondRequestReplacesFirst(t *testing.T) {
	gate := application.NewGate("1234")
	gate.Request(model.GuardedOpEdit, 1)
	gate.Request(model.GuardedOpViewHistory, 2)

	action, err := gate.Confirm("1234")
	require.NoError(t, err)
	assert.Equal(t, model.GuardedOpViewHistory, action.Kind)
	assert.Equal(t, int64(2), action.RecordID)

	_, err = gate.Confirm("1234")
	require.ErrorIs(t, err, application.ErrNoPendingAction)
}

func TestGate_Cancel(t *testing.T) {
	gate := application.NewGate("1234")

	assert.False(t, gate.Cancel(), "nothing to cancel")

	gate.Request(model.GuardedOpViewDetails, 7)
	assert.True(t, gate.Cancel())

	_, err := gate.Confirm("1234")
	require.ErrorIs(t, err, application.ErrNoPendingAction)
}

func TestGate_RequestTitles(t *testing.T) {
	gate := application.NewGate("1234")

	tests := []struct {
		kind model.GuardedOp
		want string
	}{
		{model.GuardedOpEdit, "Unlock to Edit"},
		{model.GuardedOpDelete, "Unlock to Delete"},
		{model.GuardedOpViewDetails, "Unlock to View Details"},
		{model.GuardedOpViewHistory, "Unlock to View History"},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			action := gate.Request(tt.kind, 1)
			assert.Equal(t, tt.want, action.Title)
			assert.False(t, action.RequestedAt.IsZero())
		})
	}
}

func TestGate_RejectsPrefixOfPIN(t *testing.T) {
	gate := application.NewGate("1234")
	gate.Request(model.GuardedOpEdit, 1)

	for _, pin := range []string{"", "123", "12345", " 1234"} {
		_, err := gate.Confirm(pin)
		require.ErrorIs(t, err, application.ErrInvalidPIN, "pin %q", pin)
	}

	_, ok := gate.Pending()
	assert.True(t, ok)
}
