package validation

import (
	"errors"
	"reflect"
	"testing"
)

func TestCheckColumns(t *testing.T) {
	tests := []struct {
		name     string
		headers  Headers
		required []string
		missing  []string
	}{
		{"all present", Headers{"input_total", "hash", "time"}, []string{"hash", "time"}, nil},
		{"one missing", Headers{"input_total", "hash"}, []string{"hash", "time"}, []string{"time"}},
		{"all missing", Headers{"fee"}, []string{"hash", "time"}, []string{"hash", "time"}},
		{"case sensitive", Headers{"Input_Total"}, []string{"input_total"}, []string{"input_total"}},
		{"nothing required", Headers{}, nil, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CheckColumns(tt.headers, tt.required...)
			if !reflect.DeepEqual(result.Missing, tt.missing) {
				t.Errorf("Missing = %v, want %v", result.Missing, tt.missing)
			}
			if result.OK() != (len(tt.missing) == 0) {
				t.Errorf("OK() = %v", result.OK())
			}
		})
	}
}

func TestResultErr(t *testing.T) {
	ok := CheckColumns(Headers{"hash"}, "hash")
	if err := ok.Err("a.tsv"); err != nil {
		t.Fatalf("Err = %v, want nil", err)
	}

	bad := CheckColumns(Headers{"hash"}, "hash", "time")
	err := bad.Err("b.tsv")

	var schemaErr *SchemaError
	if !errors.As(err, &schemaErr) {
		t.Fatalf("Err = %T, want *SchemaError", err)
	}
	if schemaErr.File != "b.tsv" {
		t.Errorf("File = %q", schemaErr.File)
	}
	if got, want := err.Error(), "b.tsv: missing column 'time'"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}
