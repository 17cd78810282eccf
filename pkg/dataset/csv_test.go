package dataset

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"
)

func latin1(t *testing.T, s string) []byte {
	t.Helper()
	b, err := charmap.ISO8859_1.NewEncoder().Bytes([]byte(s))
	require.NoError(t, err)
	return b
}

func TestRead(t *testing.T) {
	tests := []struct {
		name        string
		input       []byte
		dialect     Dialect
		wantColumns []string
		wantRows    [][]Cell
		wantErr     bool
	}{
		{
			name:        "semicolon latin-1",
			input:       latin1(t, "Tipo;Descrição;Valor\nA;Pão;10\nB;Café;20\n"),
			dialect:     Dialect{Delimiter: ';', Encoding: "latin-1"},
			wantColumns: []string{"Tipo", "Descrição", "Valor"},
			wantRows:    rowsOf([]string{"A", "Pão", "10"}, []string{"B", "Café", "20"}),
		},
		{
			name:        "comma utf-8 with quoted delimiter",
			input:       []byte("a,b\n\"x,y\",2\n"),
			dialect:     Normalized,
			wantColumns: []string{"a", "b"},
			wantRows:    rowsOf([]string{"x,y", "2"}),
		},
		{
			name:        "empty fields are null and short rows are padded",
			input:       []byte("a;b;c\n1;;3\n4\n"),
			dialect:     Dialect{Delimiter: ';'},
			wantColumns: []string{"a", "b", "c"},
			wantRows:    rowsOf([]string{"1", "", "3"}, []string{"4", "", ""}),
		},
		{
			name:        "blank lines are skipped",
			input:       []byte("a,b\n\n1,2\n\n"),
			dialect:     Normalized,
			wantColumns: []string{"a", "b"},
			wantRows:    rowsOf([]string{"1", "2"}),
		},
		{
			name:        "header only",
			input:       []byte("a,b\n"),
			dialect:     Normalized,
			wantColumns: []string{"a", "b"},
		},
		{
			name:    "long row fails",
			input:   []byte("a;b\n1;2;3\n"),
			dialect: Dialect{Delimiter: ';'},
			wantErr: true,
		},
		{
			name:    "bare quote fails",
			input:   []byte("a,b\n1,x\"y\n"),
			dialect: Normalized,
			wantErr: true,
		},
		{
			name:    "empty input fails",
			input:   nil,
			dialect: Normalized,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ds, err := Read(bytes.NewReader(tt.input), tt.dialect)
			if tt.wantErr {
				var pe *ParseError
				require.ErrorAs(t, err, &pe)
				assert.Equal(t, tt.dialect, pe.Dialect)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantColumns, ds.Columns)
			assert.Equal(t, tt.wantRows, ds.Rows)
		})
	}
}

func TestRead_LongRowReportsLine(t *testing.T) {
	_, err := Read(strings.NewReader("a;b\n1;2\n3;4;5\n"), Dialect{Delimiter: ';'})

	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, 3, pe.Line)
	assert.Contains(t, err.Error(), "expected 2 fields, saw 3")
}

func TestRead_UnknownEncoding(t *testing.T) {
	_, err := Read(strings.NewReader("a\n"), Dialect{Delimiter: ',', Encoding: "klingon"})
	assert.Error(t, err)
}

func TestWrite_RoundTrip(t *testing.T) {
	ds := New([]string{"Categoria", "Descrição", "Valor"})
	ds.Rows = rowsOf(
		[]string{"A", "Pão, integral", "10"},
		[]string{"B", "", "20"},
	)

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, ds, Normalized))
	assert.Equal(t, "Categoria,Descrição,Valor\nA,\"Pão, integral\",10\nB,,20\n", buf.String())

	back, err := Read(&buf, Normalized)
	require.NoError(t, err)
	assert.Equal(t, ds, back)
}

func TestWrite_SingleColumnNullRowSurvives(t *testing.T) {
	ds := New([]string{"Tipo"})
	ds.Rows = [][]Cell{{Value("A")}, {Null()}, {Value("B")}}

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, ds, Normalized))
	assert.Equal(t, "Tipo\nA\n\"\"\nB\n", buf.String())

	back, err := Read(&buf, Normalized)
	require.NoError(t, err)
	assert.Equal(t, ds, back)
}

func TestWrite_LegacyEncoding(t *testing.T) {
	ds := New([]string{"Descrição"})
	ds.Rows = rowsOf([]string{"Pão"})

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, ds, Dialect{Delimiter: ';', Encoding: "latin-1"}))
	assert.Equal(t, latin1(t, "Descrição\nPão\n"), buf.Bytes())
}

func TestWriteFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "deeper", "out.csv")

	ds := New([]string{"a"})
	ds.Rows = rowsOf([]string{"1"})
	require.NoError(t, WriteFile(path, ds, Normalized))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "a\n1\n", string(content))

	// Overwrite with new content and make sure no temp files are left behind.
	ds.Rows = rowsOf([]string{"2"})
	require.NoError(t, WriteFile(path, ds, Normalized))

	content, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "a\n2\n", string(content))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestWriteFile_FailureKeepsPreviousContent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.csv")
	require.NoError(t, os.WriteFile(path, []byte("old\n"), 0o644))

	ds := New([]string{"€"})
	err := WriteFile(path, ds, Dialect{Delimiter: ',', Encoding: "latin-1"})
	require.Error(t, err)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "old\n", string(content))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestReadFile_Missing(t *testing.T) {
	_, err := ReadFile(filepath.Join(t.TempDir(), "missing.csv"), Normalized)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLookupEncoding(t *testing.T) {
	tests := []struct {
		name    string
		wantErr bool
	}{
		{"latin-1", false},
		{"LATIN1", false},
		{"ISO-8859-1", false},
		{"windows-1252", false},
		{"utf-8", false},
		{"", false},
		{"not-a-charset", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			enc, err := LookupEncoding(tt.name)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, enc)
		})
	}
}

func TestParseDelimiter(t *testing.T) {
	tests := []struct {
		in      string
		want    rune
		wantErr bool
	}{
		{";", ';', false},
		{",", ',', false},
		{"tab", '\t', false},
		{"semicolon", ';', false},
		{"|", '|', false},
		{"", 0, true},
		{";;", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDelimiter(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDialect_Validate(t *testing.T) {
	assert.NoError(t, Dialect{Delimiter: ';', Encoding: "latin-1"}.Validate())
	assert.Error(t, Dialect{Delimiter: '"'}.Validate())
	assert.Error(t, Dialect{Delimiter: '\n'}.Validate())
	assert.Error(t, Dialect{Delimiter: ',', Encoding: "nope"}.Validate())
}

func TestDataset_Sample(t *testing.T) {
	ds := New([]string{"Tipo", "Valor"})
	ds.Rows = rowsOf([]string{"A", "10"}, []string{"B", ""}, []string{"C", "30"})

	out := ds.Sample(2)
	assert.Contains(t, out, "Tipo")
	assert.Contains(t, out, "NULL")
	assert.NotContains(t, out, "C")
}
