package scenario

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gcrsim/worldsim/internal/model"
)

func TestLoad_ValidFile(t *testing.T) {
	f, err := Load(filepath.Join("testdata", "carbon_price_250.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "carbon-price-250", f.Name)
	assert.NotEmpty(t, f.Description)
	assert.Equal(t, Scenario{model.XCCPriceParam: 250}, f.Scenario())
	assert.Equal(t, []string{"population", "industrial_output", "co2e_emissions"}, f.Outputs)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join("testdata", "does_not_exist.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read scenario file")
}

func TestParse_MinimalDocument(t *testing.T) {
	f, err := Parse([]byte(`
name: baseline
description: No carbon pricing.
parameters: {}
`))
	require.NoError(t, err)
	assert.Equal(t, "baseline", f.Name)
	assert.Empty(t, f.Outputs)
	assert.Empty(t, f.Scenario())
}

func TestParse_RejectsUnknownField(t *testing.T) {
	// "parameter" (singular) is a typo and must not be silently dropped.
	_, err := Parse([]byte(`
name: typo
description: Misspelled parameters key.
parameter:
  xcc_price: 100
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse scenario YAML")
}

func TestParse_SchemaViolations(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{
			"empty name",
			`
name: ""
description: Has no name.
parameters: {}
`,
		},
		{
			"empty description",
			`
name: undescribed
description: ""
parameters: {}
`,
		},
		{
			"non-numeric parameter",
			`
name: bad-value
description: Parameter value is a string.
parameters:
  xcc_price: high
`,
		},
		{
			"empty output name",
			`
name: bad-output
description: Output entry is empty.
parameters: {}
outputs:
  - ""
`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			require.Error(t, err)
		})
	}
}

func TestParse_NotYAML(t *testing.T) {
	_, err := Parse([]byte("{[:"))
	require.Error(t, err)
}
