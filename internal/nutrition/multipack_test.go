package nutrition

import "testing"

func TestIsMultiPack(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"Keurig K-Cup Hot Chocolate Pods", true},
		{"Victor Allen's Coffee Pod", true},
		{"Granola Bars 6 Pack", true},
		{"Yogurt Multi-Pack", true},
		{"12 Count Muffins", true},
		{"Espresso Capsules", true},
		{"Chips Variety Pack", true},
		{"Sparkling Water 8-pack", true},
		{"Chocolate Milk", false},
		{"Banana", false},
		{"Greek Yogurt", false},
		{"Podravka Soup", false},
		{"", false},
	}

	for _, tc := range tests {
		if got := IsMultiPack(tc.name); got != tc.want {
			t.Errorf("IsMultiPack(%q) = %v; want %v", tc.name, got, tc.want)
		}
	}
}
