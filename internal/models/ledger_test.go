package models

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccountRow_Fields(t *testing.T) {
	row := AccountRow{
		Client: 42,
		Account: Account{
			Available: decimal.RequireFromString("1.5"),
			Held:      decimal.RequireFromString("0.00005"),
			Total:     decimal.RequireFromString("1.50005"),
			Locked:    true,
		},
	}

	assert.Equal(t, []string{"42", "1.5000", "0.0001", "1.5001", "true"}, row.Fields())
}

func TestAccountRow_MarshalJSON(t *testing.T) {
	row := AccountRow{Client: 1, Account: Account{Available: decimal.NewFromInt(10), Total: decimal.NewFromInt(10)}}

	data, err := json.Marshal(row)
	require.NoError(t, err)
	assert.JSONEq(t, `{"client":1,"available":"10.0000","held":"0.0000","total":"10.0000","locked":false}`, string(data))
}

func TestEvent_UnmarshalJSON(t *testing.T) {
	var ev Event
	require.NoError(t, json.Unmarshal([]byte(`{"type":"deposit","client":2,"tx":9,"amount":"1.2345"}`), &ev))
	assert.Equal(t, TxDeposit, ev.Type)
	assert.Equal(t, ClientID(2), ev.Client)
	assert.Equal(t, TxID(9), ev.Tx)
	require.True(t, ev.HasAmount())
	assert.Equal(t, "1.2345", ev.Amount.String())

	var dispute Event
	require.NoError(t, json.Unmarshal([]byte(`{"type":"dispute","client":2,"tx":9}`), &dispute))
	assert.False(t, dispute.HasAmount())
}
