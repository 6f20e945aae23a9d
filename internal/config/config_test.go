package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("PATIENT_DATA_URL", "http://patients.local/data")
	t.Setenv("LLM_MODEL", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Server.Port)
	assert.Equal(t, 60, cfg.Server.RateLimit)
	assert.Equal(t, "http://patients.local/data", cfg.Patient.URL)
	assert.Equal(t, 30*time.Second, cfg.Patient.Timeout)
	assert.Equal(t, "gpt-4o-mini", cfg.LLM.Model)
	assert.Equal(t, 30*time.Minute, cfg.LLM.CacheTTL)
	assert.False(t, cfg.Correlation.ResetStaleNotes)
	assert.Empty(t, cfg.Correlation.MealSlots)
}

func TestLoad_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	yaml := `
server:
  port: "8088"
patient:
  url: http://example.test/patients
correlation:
  reset_stale_notes: true
  meal_slots:
    - breakfast@08:00
    - lunch@13:00
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o644))
	t.Setenv("LLM_MODEL", "gemini-1.5-flash")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8088", cfg.Server.Port)
	assert.Equal(t, "http://example.test/patients", cfg.Patient.URL)
	assert.True(t, cfg.Correlation.ResetStaleNotes)
	assert.Equal(t, []string{"breakfast@08:00", "lunch@13:00"}, cfg.Correlation.MealSlots)
	assert.Equal(t, "gemini-1.5-flash", cfg.LLM.Model)
}

func TestValidateLLM(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(c *Config)
		wantErr string
	}{
		{"openai missing key", func(c *Config) { c.LLM.Model = "gpt-4o" }, "OPENAI_API_KEY"},
		{"openai missing base", func(c *Config) {
			c.LLM.Model = "gpt-4o"
			c.LLM.OpenAI.APIKey = "k"
		}, "OPENAI_API_BASE"},
		{"openai ok", func(c *Config) {
			c.LLM.Model = "gpt-4o"
			c.LLM.OpenAI.APIKey = "k"
			c.LLM.OpenAI.BaseURL = "http://x"
		}, ""},
		{"gemini", func(c *Config) { c.LLM.Model = "gemini-pro" }, "GOOGLE_GEMINI_API_KEY"},
		{"cohere fallback", func(c *Config) { c.LLM.Model = "command-r" }, "COHERE_API_KEY"},
		{"cohere ok", func(c *Config) {
			c.LLM.Model = "command-r"
			c.LLM.CohereAPIKey = "k"
		}, ""},
		{"empty", func(c *Config) {}, "LLM_MODEL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var c Config
			tt.setup(&c)
			err := c.ValidateLLM()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidatePatientSource(t *testing.T) {
	var c Config
	assert.Error(t, c.ValidatePatientSource())
	c.Patient.URL = "http://x"
	assert.NoError(t, c.ValidatePatientSource())
}

// chdir changes the working directory for the duration of the test and
// restores it on cleanup (equivalent to testing.T.Chdir, which needs Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(prev) })
}
