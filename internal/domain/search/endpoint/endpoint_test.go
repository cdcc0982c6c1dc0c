package endpoint

import "testing"

func TestEndpoint_IsValid(t *testing.T) {
	tests := []struct {
		e    Endpoint
		want bool
	}{
		{Reports, true},
		{Disasters, true},
		{"", false},
		{"countries", false},
		{"Reports", false},
	}
	for _, tt := range tests {
		if got := tt.e.IsValid(); got != tt.want {
			t.Errorf("Endpoint(%q).IsValid() = %v, want %v", tt.e, got, tt.want)
		}
	}
}

func TestParse(t *testing.T) {
	e, err := Parse("disasters")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if e != Disasters {
		t.Errorf("got %q, want %q", e, Disasters)
	}

	if _, err := Parse("jobs"); err == nil {
		t.Fatal("expected error for unknown endpoint")
	}
}

func TestDefaultLimit(t *testing.T) {
	if Reports.DefaultLimit() != 5 {
		t.Errorf("reports default = %d, want 5", Reports.DefaultLimit())
	}
	if Disasters.DefaultLimit() != 20 {
		t.Errorf("disasters default = %d, want 20", Disasters.DefaultLimit())
	}
}
