package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rpgo/fire-compare/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validRequest = `base_currency: USD
home_jurisdiction: US-CA
locale: en-US
a:
  jurisdiction: US-CA
  profile:
    age: 35
    net_worth: 250000
    annual_contribution: 40000
    gross_income: 150000
    expected_return: 0.07
    annual_spending: 60000
    inflation_rate: 0.02
b:
  jurisdiction: PT
  profile:
    age: 35
    net_worth: 250000
    annual_contribution: 40000
    gross_income: 150000
    expected_return: 0.07
    annual_spending: 60000
simulation:
  enabled: true
  trials: 500
  seed: 7
`

func writeTemp(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "request.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestNewInputParser(t *testing.T) {
	parser := NewInputParser()
	assert.NotNil(t, parser)
}

func TestLoadFromFile_Success(t *testing.T) {
	req, err := NewInputParser().LoadFromFile(writeTemp(t, validRequest))
	require.NoError(t, err)

	assert.Equal(t, "USD", req.BaseCurrency)
	assert.Equal(t, "US-CA", req.HomeJurisdiction)
	assert.Equal(t, "PT", req.B.Jurisdiction)
	assert.Equal(t, 35, req.A.Profile.Age)
	assert.Equal(t, 60000.0, req.A.Profile.AnnualSpending)
	require.NotNil(t, req.A.Profile.InflationRate)
	assert.Equal(t, 0.02, *req.A.Profile.InflationRate)
	assert.Nil(t, req.B.Profile.InflationRate, "unset inflation stays nil")
	assert.True(t, req.Simulation.Enabled)
	assert.Equal(t, 500, req.Simulation.Trials)
	assert.Equal(t, int64(7), req.Simulation.Seed)
}

func TestLoadFromFile_FileNotFound(t *testing.T) {
	_, err := NewInputParser().LoadFromFile(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read file")
}

func TestLoadFromFile_InvalidYAML(t *testing.T) {
	_, err := NewInputParser().LoadFromFile(writeTemp(t, "a: [unclosed"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse YAML")
}

func TestParse_UnknownField(t *testing.T) {
	_, err := NewInputParser().Parse([]byte("a:\n  jurisdiction: US\n  profile:\n    spend: 10\nb:\n  jurisdiction: PT\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse YAML")
}

func TestValidateRequest(t *testing.T) {
	parser := NewInputParser()
	tests := []struct {
		name    string
		req     domain.ComparisonRequest
		wantErr string
	}{
		{"missing a", domain.ComparisonRequest{B: domain.SideInput{Jurisdiction: "PT"}}, "side a: jurisdiction is required"},
		{"missing b", domain.ComparisonRequest{A: domain.SideInput{Jurisdiction: "US"}}, "side b: jurisdiction is required"},
		{"bad currency", domain.ComparisonRequest{BaseCurrency: "DOLLAR", A: domain.SideInput{Jurisdiction: "US"}, B: domain.SideInput{Jurisdiction: "PT"}}, "3-letter code"},
		{"valid", domain.ComparisonRequest{A: domain.SideInput{Jurisdiction: "US"}, B: domain.SideInput{Jurisdiction: "PT"}}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := parser.ValidateRequest(&tt.req)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}

	_, err := parser.Parse([]byte(""))
	assert.ErrorContains(t, err, "request validation failed")
}

func TestWarnings(t *testing.T) {
	req := NewInputParser().CreateExampleRequest()
	assert.Empty(t, NewInputParser().Warnings(req))

	req.A.Profile.Age = 0
	req.B.Profile.AnnualSpending = -1
	req.Simulation.Sampler = "garch"
	req.Simulation.Trials = -5
	volatility := -0.1
	req.Simulation.ReturnVolatility = &volatility

	warnings := NewInputParser().Warnings(req)
	assert.Equal(t, []string{
		"a.profile: age 0 clamped to 1",
		"b.profile: annual_spending -1 clamped to 0",
		`simulation.sampler "garch" is not supported, normal is used`,
		"simulation.trials -5 replaced with the default",
		"simulation.return_volatility -0.1 replaced with 0",
	}, warnings)
}

func TestSaveToFileRoundTrip(t *testing.T) {
	parser := NewInputParser()
	example := parser.CreateExampleRequest()
	path := filepath.Join(t.TempDir(), "example.yaml")

	require.NoError(t, parser.SaveToFile(example, path))
	loaded, err := parser.LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, example, loaded)

	err = parser.SaveToFile(example, filepath.Join(t.TempDir(), "missing", "x.yaml"))
	assert.ErrorContains(t, err, "failed to write file")
}

func TestCreateExampleRequest(t *testing.T) {
	req := NewInputParser().CreateExampleRequest()
	require.NotNil(t, req)
	assert.NoError(t, NewInputParser().ValidateRequest(req))
	assert.Equal(t, "US-CA", req.A.Jurisdiction)
	assert.Equal(t, "PT", req.B.Jurisdiction)
	assert.True(t, req.Simulation.Enabled)
}
