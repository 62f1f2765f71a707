package production

import (
	"fmt"

	"seamline/model"
)

// ComputeRunningTotal is the one place the balance arithmetic lives.
// priorSum is the output recorded up to and including the submission
// date and feeds the cumulative shown on the form; orderTotal is the
// output across all dates and is what the order-quantity cap is checked
// against, so a backdated entry counts rows already saved for later
// dates. Both figures are re-derivable from the stored rows at any time.
func ComputeRunningTotal(todayQty, priorSum, orderTotal, orderQty float64) (model.RunningTotal, error) {
	if todayQty < 0 {
		return model.RunningTotal{}, fmt.Errorf("quantity must not be negative")
	}
	if orderTotal+todayQty > orderQty {
		return model.RunningTotal{}, fmt.Errorf("cumulative %.0f would exceed order quantity %.0f", orderTotal+todayQty, orderQty)
	}
	cumulative := priorSum + todayQty
	return model.RunningTotal{
		Today:      todayQty,
		Cumulative: cumulative,
		OrderQty:   orderQty,
		Balance:    orderQty - cumulative,
	}, nil
}
