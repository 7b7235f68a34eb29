package domain

import "testing"

func TestIsRateEditLocked(t *testing.T) {
	tests := []struct {
		status Status
		locked bool
	}{
		{StatusCreated, false},
		{StatusQuotation, false},
		{StatusConfirmed, true},
		{StatusOngoing, true},
		{StatusArrived, true},
		{StatusReleased, true},
		{StatusClosed, true},
		{StatusCancelled, false},
	}

	for _, tc := range tests {
		if got := IsRateEditLocked(tc.status); got != tc.locked {
			t.Errorf("IsRateEditLocked(%s) = %v, want %v", tc.status, got, tc.locked)
		}
	}
}

func TestRequiresCloseReason(t *testing.T) {
	for _, status := range AllStatuses {
		want := status == StatusClosed || status == StatusCancelled
		if got := RequiresCloseReason(status); got != want {
			t.Errorf("RequiresCloseReason(%s) = %v, want %v", status, got, want)
		}
	}
}

func TestIsTerminal(t *testing.T) {
	for _, status := range AllStatuses {
		want := status == StatusClosed || status == StatusCancelled
		if got := IsTerminal(status); got != want {
			t.Errorf("IsTerminal(%s) = %v, want %v", status, got, want)
		}
	}
}

func TestIsValidStatus(t *testing.T) {
	for _, status := range AllStatuses {
		if !IsValidStatus(status) {
			t.Errorf("expected %s to be valid", status)
		}
	}
	if IsValidStatus("SHIPPED") {
		t.Error("unknown status must not validate")
	}
}
