package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFunctionSpecs_UnmarshalObjectKeepsOrder(t *testing.T) {
	raw := `{
		"zeta":  {"fn": "upcase", "target": "city"},
		"alpha": {"fn": "send_date"},
		"mid":   {"fn": "fixed", "target": "X"}
	}`

	var specs FunctionSpecs
	require.NoError(t, json.Unmarshal([]byte(raw), &specs))
	require.Len(t, specs, 3)

	assert.Equal(t, "zeta", specs[0].Name)
	assert.Equal(t, "upcase", specs[0].Fn)
	assert.Equal(t, "city", specs[0].TargetOr(""))

	assert.Equal(t, "alpha", specs[1].Name)
	assert.Nil(t, specs[1].Target)
	assert.Equal(t, "0:00", specs[1].TargetOr("0:00"))

	assert.Equal(t, "mid", specs[2].Name)
	assert.Equal(t, "X", specs[2].TargetOr(""))
}

func TestFunctionSpecs_UnmarshalList(t *testing.T) {
	raw := `[{"name":"a","fn":"downcase","target":"name"},{"name":"b","fn":"random_num"}]`

	var specs FunctionSpecs
	require.NoError(t, json.Unmarshal([]byte(raw), &specs))
	require.Len(t, specs, 2)
	assert.Equal(t, "a", specs[0].Name)
	assert.Equal(t, "b", specs[1].Name)
}

func TestFunctionSpecs_UnmarshalNullAndInvalid(t *testing.T) {
	var specs FunctionSpecs
	require.NoError(t, json.Unmarshal([]byte(`null`), &specs))
	assert.Empty(t, specs)

	err := json.Unmarshal([]byte(`"upcase"`), &specs)
	assert.ErrorIs(t, err, ErrInvalidFunctions)
}

func TestFunctionSpecs_Validate(t *testing.T) {
	assert.NoError(t, FunctionSpecs{{Name: "a"}, {Name: "b"}}.Validate())
	assert.NoError(t, FunctionSpecs(nil).Validate())
	assert.ErrorIs(t, FunctionSpecs{{Name: ""}}.Validate(), ErrInvalidFunctions)
	assert.ErrorIs(t, FunctionSpecs{{Name: "a"}, {Name: "a"}}.Validate(), ErrInvalidFunctions)
}
