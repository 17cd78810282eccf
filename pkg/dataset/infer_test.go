package dataset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cells(values ...string) []Cell {
	out := make([]Cell, len(values))
	for i, v := range values {
		if v != "" {
			out[i] = Value(v)
		}
	}
	return out
}

func TestInferKind(t *testing.T) {
	tests := []struct {
		name  string
		cells []Cell
		want  Kind
	}{
		{"integers", cells("10", "20", "-3"), KindInteger},
		{"integers with nulls", cells("10", "", "30"), KindInteger},
		{"mixed integer and real", cells("10", "2.5"), KindReal},
		{"exponent", cells("1e3", "2"), KindReal},
		{"text wins", cells("10", "abc"), KindText},
		{"only nulls", cells("", ""), KindText},
		{"empty column", nil, KindText},
		{"nan is text", cells("NaN"), KindText},
		{"inf is text", cells("Inf", "1"), KindText},
		{"hex is text", cells("0x1p-2"), KindText},
		{"decimal comma is text", cells("1,5"), KindText},
		{"padded integers", cells(" 7 ", "8"), KindInteger},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, InferKind(tt.cells))
		})
	}
}

func TestDataset_Kinds(t *testing.T) {
	ds := New([]string{"Categoria", "Valor", "Taxa"})
	ds.Rows = rowsOf(
		[]string{"A", "10", "0.5"},
		[]string{"B", "20", "1"},
	)

	assert.Equal(t, []Kind{KindText, KindInteger, KindReal}, ds.Kinds())
}

func TestCell_Typed(t *testing.T) {
	tests := []struct {
		name    string
		cell    Cell
		kind    Kind
		want    any
		wantErr bool
	}{
		{"null", Null(), KindInteger, nil, false},
		{"integer", Value("42"), KindInteger, int64(42), false},
		{"real", Value("2.5"), KindReal, 2.5, false},
		{"integer as real", Value("2"), KindReal, 2.0, false},
		{"text keeps spaces", Value(" a "), KindText, " a ", false},
		{"bad integer", Value("x"), KindInteger, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.cell.Typed(tt.kind)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestKind_String(t *testing.T) {
	assert.Equal(t, "integer", KindInteger.String())
	assert.Equal(t, "real", KindReal.String())
	assert.Equal(t, "text", KindText.String())
}
