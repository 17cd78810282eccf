package output

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTest(mode OutputMode, tty bool) (*Renderer, *bytes.Buffer, *bytes.Buffer) {
	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	return NewRendererWithTTY(out, errOut, tty, mode), out, errOut
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		in      string
		want    OutputMode
		wantErr bool
	}{
		{"", ModeAuto, false},
		{"auto", ModeAuto, false},
		{"text", ModeText, false},
		{"markdown", ModeMarkdown, false},
		{"md", ModeMarkdown, false},
		{"json", ModeJSON, false},
		{"xml", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseMode(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEffectiveMode(t *testing.T) {
	tests := []struct {
		name string
		mode OutputMode
		tty  bool
		want OutputMode
	}{
		{"auto on terminal", ModeAuto, true, ModeText},
		{"auto piped", ModeAuto, false, ModeMarkdown},
		{"empty is auto", "", false, ModeMarkdown},
		{"explicit text piped", ModeText, false, ModeText},
		{"explicit json on terminal", ModeJSON, true, ModeJSON},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, _, _ := newTest(tt.mode, tt.tty)
			assert.Equal(t, tt.want, r.EffectiveMode())
			assert.Equal(t, tt.tty, r.IsTTY())
		})
	}
}

func TestNewRenderer_BufferIsNotTerminal(t *testing.T) {
	r := NewRenderer(&bytes.Buffer{}, &bytes.Buffer{}, ModeAuto)
	assert.False(t, r.IsTTY())
	assert.Equal(t, ModeMarkdown, r.EffectiveMode())
}

func TestHeader(t *testing.T) {
	r, out, _ := newTest(ModeMarkdown, false)
	r.Header(2, "Run")
	assert.Equal(t, "## Run\n\n", out.String())

	r, out, _ = newTest(ModeText, false)
	r.Header(1, "Run")
	assert.Equal(t, "Run\n", out.String())
}

func TestFormatHeader(t *testing.T) {
	assert.Equal(t, "# A", FormatHeader(1, "A"))
	assert.Equal(t, "### A", FormatHeader(3, "A"))
	assert.Equal(t, "# A", FormatHeader(0, "A"))
}

func TestStatusLine(t *testing.T) {
	r, out, _ := newTest(ModeMarkdown, false)
	r.StatusLine("load", "success", "3 rows")
	r.StatusLine("persist", "skipped", "")
	assert.Equal(t, "- ✓ **load** success: 3 rows\n- - **persist** skipped\n", out.String())

	r, out, _ = newTest(ModeText, false)
	r.StatusLine("transform", "failed", "boom")
	assert.Equal(t, "✗ transform failed  boom\n", out.String())
}

func TestMessagesGoToTheRightStream(t *testing.T) {
	r, out, errOut := newTest(ModeText, false)
	r.Success("done")
	r.Muted("quiet")
	r.Warning("careful")
	r.Error("broken")

	assert.Equal(t, "✓ done\nquiet\n", out.String())
	assert.Equal(t, "! careful\n✗ broken\n", errOut.String())
}

func TestKeyValue(t *testing.T) {
	r, out, _ := newTest(ModeMarkdown, false)
	r.KeyValue("table", "transacoes")
	assert.Equal(t, "- **table**: transacoes\n", out.String())

	r, out, _ = newTest(ModeText, false)
	r.KeyValue("table", "transacoes")
	assert.Equal(t, "table: transacoes\n", out.String())
}

func TestTable(t *testing.T) {
	header := []string{"Categoria", "Valor"}
	rows := [][]string{{"Crédito", "100"}, {"Débito", "NULL"}}

	t.Run("markdown", func(t *testing.T) {
		r, out, _ := newTest(ModeMarkdown, false)
		r.Table(header, rows)
		assert.Contains(t, out.String(), "| Categoria | Valor |")
		assert.Contains(t, out.String(), "| Crédito | 100 |")
	})

	t.Run("text", func(t *testing.T) {
		r, out, _ := newTest(ModeText, false)
		r.Table(header, rows)
		assert.Contains(t, out.String(), "Categoria")
		assert.NotContains(t, out.String(), "CATEGORIA")
		assert.Contains(t, out.String(), "┌")
	})
}

func TestJSON(t *testing.T) {
	r, out, _ := newTest(ModeJSON, false)
	require.NoError(t, r.JSON(map[string]int{"rows": 2}))

	var got map[string]int
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	assert.Equal(t, 2, got["rows"])
}

func TestRendererContext(t *testing.T) {
	r, _, _ := newTest(ModeJSON, false)
	ctx := WithRenderer(context.Background(), r)
	assert.Same(t, r, FromContext(ctx))
	assert.NotNil(t, FromContext(context.Background()))
}
