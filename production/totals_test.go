package production

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeRunningTotal(t *testing.T) {
	tests := []struct {
		name       string
		todayQty   float64
		priorSum   float64
		orderTotal float64
		orderQty   float64
		wantErr    bool
		cumulative float64
		balance    float64
	}{
		{name: "first submission", todayQty: 100, priorSum: 0, orderTotal: 0, orderQty: 1000, cumulative: 100, balance: 900},
		{name: "mid-run submission", todayQty: 250, priorSum: 400, orderTotal: 400, orderQty: 1000, cumulative: 650, balance: 350},
		{name: "exactly completes the order", todayQty: 600, priorSum: 400, orderTotal: 400, orderQty: 1000, cumulative: 1000, balance: 0},
		{name: "zero quantity is allowed", todayQty: 0, priorSum: 400, orderTotal: 400, orderQty: 1000, cumulative: 400, balance: 600},
		{name: "exceeds order quantity", todayQty: 601, priorSum: 400, orderTotal: 400, orderQty: 1000, wantErr: true},
		{name: "earlier date with later rows on file", todayQty: 100, priorSum: 0, orderTotal: 900, orderQty: 1000, cumulative: 100, balance: 900},
		{name: "earlier date pushes order over cap", todayQty: 200, priorSum: 0, orderTotal: 900, orderQty: 1000, wantErr: true},
		{name: "negative quantity", todayQty: -5, priorSum: 0, orderTotal: 0, orderQty: 1000, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ComputeRunningTotal(tt.todayQty, tt.priorSum, tt.orderTotal, tt.orderQty)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.todayQty, got.Today)
			assert.Equal(t, tt.cumulative, got.Cumulative)
			assert.Equal(t, tt.orderQty, got.OrderQty)
			assert.Equal(t, tt.balance, got.Balance)
		})
	}
}
