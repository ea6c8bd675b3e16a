package engine

import "testing"

func TestParseLabel(t *testing.T) {
	tests := []struct {
		raw     string
		want    Label
		wantErr bool
	}{
		{raw: "SPACE", want: Label{Skip: true}},
		{raw: "space", want: Label{Skip: true}},
		{raw: "POLYANET", want: Label{Variant: "polyanet"}},
		{raw: "UP_COMETH", want: Label{Variant: "cometh", Attribute: "up"}},
		{raw: "PURPLE_SOLOON", want: Label{Variant: "soloon", Attribute: "purple"}},
		{raw: "Blue_Soloon", want: Label{Variant: "soloon", Attribute: "blue"}},
		{raw: "", wantErr: true},
		{raw: "_COMETH", wantErr: true},
		{raw: "UP_", wantErr: true},
		{raw: "A_B_C", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := ParseLabel(tt.raw)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error for %q, got %+v", tt.raw, got)
				}
				if !IsValidation(err) {
					t.Errorf("expected validation error, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("ParseLabel(%q) = %+v, want %+v", tt.raw, got, tt.want)
			}
		})
	}
}

func TestParseBareLabel(t *testing.T) {
	tests := []struct {
		raw     string
		want    Label
		wantErr bool
	}{
		{raw: "SPACE", want: Label{Skip: true}},
		{raw: "POLYANET", want: Label{Variant: "polyanet"}},
		{raw: "UP_COMETH", want: Label{Variant: "up_cometh"}},
		{raw: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := ParseBareLabel(tt.raw)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error for %q", tt.raw)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("ParseBareLabel(%q) = %+v, want %+v", tt.raw, got, tt.want)
			}
		})
	}
}
