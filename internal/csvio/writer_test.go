package csvio

import (
	"bytes"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ruralpay/payengine/internal/models"
)

func TestWriter_WriteSnapshot(t *testing.T) {
	var buf bytes.Buffer
	rows := []models.AccountRow{
		{Client: 1, Account: models.Account{
			Available: decimal.RequireFromString("1.5"),
			Total:     decimal.RequireFromString("1.5"),
		}},
		{Client: 2, Account: models.Account{
			Available: decimal.RequireFromString("-2"),
			Held:      decimal.RequireFromString("3"),
			Total:     decimal.RequireFromString("1"),
			Locked:    true,
		}},
	}

	require.NoError(t, NewWriter(&buf).WriteSnapshot(rows))
	assert.Equal(t,
		"client,available,held,total,locked\n"+
			"1,1.5000,0.0000,1.5000,false\n"+
			"2,-2.0000,3.0000,1.0000,true\n",
		buf.String())
}

func TestWriter_EmptySnapshot(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewWriter(&buf).WriteSnapshot(nil))
	assert.Equal(t, "client,available,held,total,locked\n", buf.String())
}
