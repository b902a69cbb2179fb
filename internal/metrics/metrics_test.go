package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/iwvelando/mortgage-ledger/pkg/mortgage"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveCalculation(t *testing.T) {
	tests := []struct {
		name       string
		result     *mortgage.Result
		err        error
		wantStatus string
	}{
		{
			name:       "successful run",
			result:     &mortgage.Result{PayoffType: mortgage.PayoffFull},
			wantStatus: "ok",
		},
		{
			name:       "failed run",
			err:        errors.New("boom"),
			wantStatus: "error",
		},
		{
			name:       "nil result",
			wantStatus: "error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			counter := Calculations.WithLabelValues("test", tt.wantStatus)
			before := testutil.ToFloat64(counter)

			ObserveCalculation("test", time.Now(), tt.result, tt.err)

			if got := testutil.ToFloat64(counter); got != before+1 {
				t.Errorf("calculations{status=%s} = %v, expected %v", tt.wantStatus, got, before+1)
			}
		})
	}

	if got := testutil.ToFloat64(Payoffs.WithLabelValues(string(mortgage.PayoffFull))); got < 1 {
		t.Errorf("payoffs{full} = %v, expected at least 1", got)
	}
}
