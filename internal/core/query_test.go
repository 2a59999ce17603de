package core

import "testing"

func TestWhereBuilder(t *testing.T) {
	var wb WhereBuilder

	if got := wb.Clause(); got != "" {
		t.Errorf("empty builder clause = %q, want empty", got)
	}

	wb.Add("activo = $%d", true)
	wb.Add("anio = $%d", 2019)
	wb.Add("(descripcion ILIKE $%[1]d OR tipo ILIKE $%[1]d)", "%sst%")

	want := " WHERE activo = $1 AND anio = $2 AND (descripcion ILIKE $3 OR tipo ILIKE $3)"
	if got := wb.Clause(); got != want {
		t.Errorf("clause = %q, want %q", got, want)
	}

	if got := wb.NextIndex(); got != 4 {
		t.Errorf("next index = %d, want 4", got)
	}

	args := wb.Args(50, 100)
	if len(args) != 5 {
		t.Fatalf("args = %d, want 5", len(args))
	}
	if args[3] != 50 || args[4] != 100 {
		t.Errorf("extra args = %v, %v", args[3], args[4])
	}
}
