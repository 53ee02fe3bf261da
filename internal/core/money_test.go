package core

import "testing"

func TestParseDecimalToCents(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    int64
		wantErr bool
	}{
		{name: "dot separator", input: "12.34", want: 1234},
		{name: "comma separator", input: "12,34", want: 1234},
		{name: "integer", input: "42", want: 4200},
		{name: "single fractional digit", input: "3.5", want: 350},
		{name: "third digit rounds down", input: "12.345", want: 1234},
		{name: "third digit rounds up", input: "12.346", want: 1235},
		{name: "half rounds up", input: "0.005", want: 1},
		{name: "zero is allowed", input: "0", want: 0},
		{name: "leading dot", input: ".99", want: 99},
		{name: "empty", input: "", wantErr: true},
		{name: "negative rejected", input: "-5", wantErr: true},
		{name: "explicit plus rejected", input: "+5", wantErr: true},
		{name: "letters", input: "12a.3", wantErr: true},
		{name: "two separators", input: "1.2.3", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDecimalToCents(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseDecimalToCents(%q) expected error, got %d", tt.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseDecimalToCents(%q) unexpected error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseDecimalToCents(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestFormatUtilization(t *testing.T) {
	tests := []struct {
		name    string
		balance int64
		limit   int64
		want    string
	}{
		{name: "repeating fraction", balance: 800000, limit: 3000000, want: "26.7%"},
		{name: "exact half rounds away", balance: 125, limit: 1000, want: "12.5%"},
		{name: "zero limit", balance: 5000, limit: 0, want: "0.0%"},
		{name: "zero balance", balance: 0, limit: 100000, want: "0.0%"},
		{name: "full utilization", balance: 100000, limit: 100000, want: "100.0%"},
		{name: "over limit", balance: 110000, limit: 100000, want: "110.0%"},
		{name: "negative balance after overpayment", balance: -5000, limit: 100000, want: "-5.0%"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FormatUtilization(tt.balance, tt.limit)
			if got != tt.want {
				t.Errorf("FormatUtilization(%d, %d) = %q, want %q", tt.balance, tt.limit, got, tt.want)
			}
		})
	}
}

func TestMoneyUnits(t *testing.T) {
	m := Money{Cents: 1234}
	if m.Units() != 12.34 {
		t.Errorf("Units() = %v, want 12.34", m.Units())
	}
}
