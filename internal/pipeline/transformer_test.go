package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mavmaso/ficherors/internal/csvio"
	"github.com/mavmaso/ficherors/internal/model"
	"github.com/mavmaso/ficherors/internal/template"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(s string) *string { return &s }

func newTestTransformer(opts ...Option) *Transformer {
	at := time.Date(2024, time.March, 5, 14, 7, 0, 0, time.UTC)
	engine := template.New(
		template.WithClock(func() time.Time { return at }),
		template.WithRand(func(int) int { return 7 }),
	)
	return New(nil, engine, opts...)
}

func TestTransform_NoFunctions(t *testing.T) {
	tr := newTestTransformer()
	table := &model.Table{
		Headers: []string{"phone", "name", "city"},
		Rows: [][]string{
			{"11 97205 7032", "Ana", "Recife"},
			{"(21) 98888-7777", "Bia", "Rio"},
		},
	}

	out, err := tr.Transform(context.Background(), table, "BR", nil)
	require.NoError(t, err)

	assert.Equal(t, [][]string{
		{"destination", "name", "city"},
		{"5511972057032", "Ana", "Recife"},
		{"5521988887777", "Bia", "Rio"},
	}, out)
}

func TestTransform_ConsumedSourceIsNotCarried(t *testing.T) {
	tr := newTestTransformer()
	table := &model.Table{
		Headers: []string{"phone", "city"},
		Rows:    [][]string{{"11972057032", "recife"}},
	}
	specs := model.FunctionSpecs{{Name: "city_up", Fn: "upcase", Target: ptr("city")}}

	out, err := tr.Transform(context.Background(), table, "BR", specs)
	require.NoError(t, err)

	assert.Equal(t, [][]string{
		{"destination", "city_up"},
		{"5511972057032", "RECIFE"},
	}, out)
}

func TestTransform_FunctionsAndLeftovers(t *testing.T) {
	tr := newTestTransformer()
	table := &model.Table{
		Headers: []string{"phone", "name", "city", "plan"},
		Rows:    [][]string{{"623 366 8812", "Maria Silva", "Phoenix", "gold"}},
	}
	specs := model.FunctionSpecs{
		{Name: "first", Fn: "first_down", Target: ptr("name")},
		{Name: "tag", Fn: "fixed", Target: ptr("X")},
		{Name: "ghost", Fn: "upcase", Target: ptr("nope")},
		{Name: "no_target", Fn: "dynamic"},
		{Name: "day", Fn: "send_date"},
		{Name: "hour", Fn: "send_hour", Target: ptr("-3:00")},
		{Name: "lucky", Fn: "random_num"},
		{Name: "odd", Fn: "reverse", Target: ptr("plan")},
	}

	out, err := tr.Transform(context.Background(), table, "us", specs)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"destination", "first", "tag", "ghost", "no_target", "day", "hour", "lucky", "odd", "city",
	}, out[0])
	assert.Equal(t, []string{
		"16233668812", "maria", "X", "", "", "5/03/2024", "11:07", "7", "gold", "Phoenix",
	}, out[1])
}

func TestTransform_FixedDoesNotConsumeColumn(t *testing.T) {
	tr := newTestTransformer()
	table := &model.Table{
		Headers: []string{"phone", "city"},
		Rows:    [][]string{{"1", "Recife"}},
	}
	specs := model.FunctionSpecs{{Name: "label", Fn: "fixed", Target: ptr("city")}}

	out, err := tr.Transform(context.Background(), table, "ZZ", specs)
	require.NoError(t, err)

	assert.Equal(t, []string{"destination", "label", "city"}, out[0])
	assert.Equal(t, []string{"1", "city", "Recife"}, out[1])
}

func TestTransform_OutputNameShadowsColumn(t *testing.T) {
	tr := newTestTransformer()
	table := &model.Table{
		Headers: []string{"phone", "name", "city"},
		Rows:    [][]string{{"1", "ana", "Recife"}},
	}
	specs := model.FunctionSpecs{{Name: "city", Fn: "upcase", Target: ptr("name")}}

	out, err := tr.Transform(context.Background(), table, "ZZ", specs)
	require.NoError(t, err)

	assert.Equal(t, []string{"destination", "city"}, out[0])
	assert.Equal(t, []string{"1", "ANA"}, out[1])
}

func TestTransform_PhoneColumnIsNotASource(t *testing.T) {
	tr := newTestTransformer()
	table := &model.Table{
		Headers: []string{"phone", "name"},
		Rows:    [][]string{{"123", "ana"}},
	}
	specs := model.FunctionSpecs{{Name: "copy", Fn: "dynamic", Target: ptr("phone")}}

	out, err := tr.Transform(context.Background(), table, "ZZ", specs)
	require.NoError(t, err)
	assert.Equal(t, []string{"123", "", "ana"}, out[1])
}

func TestTransform_ImpureFunctionsRunPerRow(t *testing.T) {
	var n atomic.Int64
	engine := template.New(template.WithRand(func(int) int { return int(n.Add(1)) }))
	tr := New(nil, engine)

	table := &model.Table{Headers: []string{"phone"}, Rows: [][]string{{"1"}, {"2"}, {"3"}}}
	specs := model.FunctionSpecs{{Name: "r", Fn: "random_num"}}

	out, err := tr.Transform(context.Background(), table, "ZZ", specs)
	require.NoError(t, err)
	assert.Equal(t, "1", out[1][1])
	assert.Equal(t, "2", out[2][1])
	assert.Equal(t, "3", out[3][1])
}

func TestTransform_ParallelKeepsOrder(t *testing.T) {
	table := &model.Table{Headers: []string{"phone", "n"}}
	for i := 0; i < 2500; i++ {
		table.Rows = append(table.Rows, []string{fmt.Sprintf("%010d", i), fmt.Sprint(i)})
	}
	specs := model.FunctionSpecs{{Name: "n_up", Fn: "upcase", Target: ptr("n")}}

	seq, err := newTestTransformer().Transform(context.Background(), table, "US", specs)
	require.NoError(t, err)

	par, err := newTestTransformer(WithWorkers(4), WithChunkSize(100)).Transform(context.Background(), table, "US", specs)
	require.NoError(t, err)

	assert.Equal(t, seq, par)
	assert.Equal(t, "1"+fmt.Sprintf("%010d", 2499), par[2500][0])
}

func TestTransform_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	table := &model.Table{Headers: []string{"phone"}, Rows: [][]string{{"1"}}}

	_, err := newTestTransformer().Transform(ctx, table, "US", nil)
	assert.ErrorIs(t, err, context.Canceled)

	big := &model.Table{Headers: []string{"phone"}}
	for i := 0; i < 50; i++ {
		big.Rows = append(big.Rows, []string{"1"})
	}
	_, err = newTestTransformer(WithWorkers(2), WithChunkSize(10)).Transform(ctx, big, "US", nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestProcess(t *testing.T) {
	tr := newTestTransformer()

	res, err := tr.ProcessString(context.Background(), "phone,name\n623 366 8812,Bob\n", Request{Country: "US"})
	require.NoError(t, err)

	assert.Equal(t, "destination;name\n16233668812;Bob\n", res.Output)
	assert.Equal(t, 1, res.Rows)
	assert.Equal(t, []string{"destination", "name"}, res.Headers)
}

func TestProcess_WithFunctionsAndEncoding(t *testing.T) {
	tr := newTestTransformer()
	content := "telefone;nome;cidade\n11 97205 7032;Jo\xe3o Silva;S\xe3o Paulo\n"
	req := Request{
		Country:  "BR",
		Encoding: "latin1",
		Functions: model.FunctionSpecs{
			{Name: "nome_curto", Fn: "first_word", Target: ptr("nome")},
		},
	}

	res, err := tr.Process(context.Background(), strings.NewReader(content), req)
	require.NoError(t, err)
	assert.Equal(t, "destination;nome_curto;cidade\n5511972057032;João;São Paulo\n", res.Output)
}

func TestProcess_StructuralErrors(t *testing.T) {
	tr := newTestTransformer()

	_, err := tr.ProcessString(context.Background(), "a;b;a\n1;2;3\n", Request{Country: "BR"})
	assert.ErrorIs(t, err, csvio.ErrDuplicateHeader)

	_, err = tr.ProcessString(context.Background(), "a;b\n1;2;3\n", Request{Country: "BR"})
	assert.ErrorIs(t, err, csvio.ErrRowDecode)

	_, err = tr.ProcessString(context.Background(), "a;b\n1;2\n", Request{Country: "BR", Encoding: "klingon"})
	assert.ErrorIs(t, err, csvio.ErrUnsupportedEncoding)

	_, err = tr.ProcessFile(context.Background(), filepath.Join(t.TempDir(), "none.csv"), Request{Country: "BR"})
	assert.ErrorIs(t, err, csvio.ErrSourceNotFound)
}

func TestProcess_ZeroRows(t *testing.T) {
	res, err := newTestTransformer().ProcessString(context.Background(), "phone;name\n", Request{Country: "BR"})
	require.NoError(t, err)
	assert.Equal(t, "destination;name\n", res.Output)
	assert.Zero(t, res.Rows)
}
