package domain

import "testing"

func TestTierLimitCanActivate(t *testing.T) {
	tests := []struct {
		name   string
		limit  TierLimit
		active int
		want   bool
	}{
		{name: "below limit", limit: LimitOf(5), active: 4, want: true},
		{name: "at limit", limit: LimitOf(5), active: 5, want: false},
		{name: "above limit", limit: LimitOf(5), active: 6, want: false},
		{name: "zero limit rejects", limit: LimitOf(0), active: 0, want: false},
		{name: "negative limit rejects", limit: LimitOf(-1), active: 0, want: false},
		{name: "negative active rejects", limit: LimitOf(5), active: -1, want: false},
		{name: "unlimited always allows", limit: NoLimit(), active: 1_000_000, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.limit.CanActivate(tt.active); got != tt.want {
				t.Fatalf("CanActivate(%d) = %v, want %v", tt.active, got, tt.want)
			}
		})
	}
}

func TestNoLimitIsDistinctFromNegative(t *testing.T) {
	if LimitOf(-1).Unlimited() {
		t.Fatal("negative limit must not be treated as unlimited")
	}
	if !NoLimit().Unlimited() {
		t.Fatal("NoLimit must report unlimited")
	}
}
