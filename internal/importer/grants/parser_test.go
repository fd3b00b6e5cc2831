package grants_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"

	"github.com/brewtab/brewtab/internal/importer/grants"
)

func TestParser_Basic(t *testing.T) {
	csv := `phone,amount,note
+351912345678,20.00,Welcome back
+351933333333,5,
`

	p := grants.NewParser()
	gs, err := p.Parse(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, gs, 2)

	assert.Equal(t, "+351912345678", gs[0].Phone)
	assert.Equal(t, int64(2000), gs[0].Amount)
	assert.Equal(t, "Welcome back", gs[0].Note)

	assert.Equal(t, "+351933333333", gs[1].Phone)
	assert.Equal(t, int64(500), gs[1].Amount)
	assert.Empty(t, gs[1].Note)
}

func TestParser_SemicolonDelimited(t *testing.T) {
	csv := `Phone;Amount;Note
+351912345678;7,50;Campanha café
`

	p := grants.NewParser()
	gs, err := p.Parse(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, gs, 1)

	assert.Equal(t, int64(750), gs[0].Amount)
	assert.Equal(t, "Campanha café", gs[0].Note)
}

func TestParser_SkipsPreamble(t *testing.T) {
	csv := `Marketing export;2026-08-01
Campaign;Summer Loyalty

phone;amount
+351912345678;10,00
`

	p := grants.NewParser()
	gs, err := p.Parse(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, gs, 1)
	assert.Equal(t, int64(1000), gs[0].Amount)
}

func TestParser_DifferentColumnOrder(t *testing.T) {
	csv := `note,amount,phone,ignored
gift,2.50,+351912345678,XXX
`

	p := grants.NewParser()
	gs, err := p.Parse(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, gs, 1)

	assert.Equal(t, "+351912345678", gs[0].Phone)
	assert.Equal(t, int64(250), gs[0].Amount)
	assert.Equal(t, "gift", gs[0].Note)
}

func TestParser_Windows1252Encoding(t *testing.T) {
	utf8CSV := "phone;amount;note\n+351912345678;10,00;Promoção de verão\n"

	encoder := charmap.Windows1252.NewEncoder()
	raw, err := encoder.Bytes([]byte(utf8CSV))
	require.NoError(t, err)

	p := grants.NewParser()
	gs, err := p.Parse(bytes.NewReader(raw))
	require.NoError(t, err)
	require.Len(t, gs, 1)

	assert.Equal(t, "Promoção de verão", gs[0].Note)
}

func TestParser_SkipsBlankAndFooterRows(t *testing.T) {
	csv := `phone,amount
+351912345678,10.00

,
`

	p := grants.NewParser()
	gs, err := p.Parse(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, gs, 1)
}

func TestParser_MissingHeader(t *testing.T) {
	csv := `+351912345678,10.00
+351933333333,5.00
`

	p := grants.NewParser()
	_, err := p.Parse(strings.NewReader(csv))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "header")
}

func TestParser_HeaderOnly(t *testing.T) {
	p := grants.NewParser()
	gs, err := p.Parse(strings.NewReader("phone,amount\n"))
	require.NoError(t, err)
	assert.Empty(t, gs)
}

func TestParser_RowErrors(t *testing.T) {
	tests := []struct {
		name    string
		csv     string
		wantSub string
	}{
		{
			name:    "MissingPhone",
			csv:     "phone,amount\n,10.00\n",
			wantSub: "missing phone",
		},
		{
			name:    "BadAmount",
			csv:     "phone,amount\n+351912345678,ten\n",
			wantSub: "row 2",
		},
		{
			name:    "NegativeAmount",
			csv:     "phone,amount\n+351912345678,-5.00\n",
			wantSub: "positive",
		},
		{
			name:    "ZeroAmount",
			csv:     "phone,amount\n+351912345678,0\n",
			wantSub: "positive",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := grants.NewParser()
			_, err := p.Parse(strings.NewReader(tt.csv))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantSub)
		})
	}
}
