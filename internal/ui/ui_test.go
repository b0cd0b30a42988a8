package ui

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// capture redirects console output for the duration of fn
func capture(t *testing.T, colored bool, fn func()) string {
	t.Helper()

	var buf bytes.Buffer
	prevOut := SetOutput(&buf)
	prevColor := SetColor(colored)
	defer func() {
		SetOutput(prevOut)
		SetColor(prevColor)
	}()

	fn()
	return buf.String()
}

func TestColorFunc(t *testing.T) {
	funcs := []func(string) string{
		ColorSuccess,
		ColorError,
		ColorWarning,
		ColorInfo,
		ColorProgress,
		ColorBold,
		ColorDim,
	}

	prev := SetColor(true)
	for _, fn := range funcs {
		assert.NotEqual(t, "test text", fn("test text"))
	}

	SetColor(false)
	for _, fn := range funcs {
		assert.Equal(t, "test text", fn("test text"))
	}
	SetColor(prev)
}

func TestBullets(t *testing.T) {
	output := capture(t, false, func() {
		Step("Existing view deleted")
		Detail("Found the description file at --> views/orders.json")
		Failure("View doesn't exist")
		Done("Finished!")
	})

	assert.Equal(t, strings.Join([]string{
		"    * Existing view deleted",
		"    * Found the description file at --> views/orders.json",
		"    * View doesn't exist",
		"    * Finished!",
		"",
	}, "\n"), output)
}

func TestBanner(t *testing.T) {
	output := capture(t, false, func() {
		Banner("daily_orders")
	})

	assert.GreaterOrEqual(t, strings.Count(output, "\n"), 4)
	assert.Contains(t, output, "/")
}

func TestHighlightSQL(t *testing.T) {
	const sql = "SELECT id FROM orders"

	plain := capture(t, false, func() {
		require.NoError(t, HighlightSQL(sql))
	})
	assert.Equal(t, sql+"\n", plain)

	colored := capture(t, true, func() {
		require.NoError(t, HighlightSQL(sql))
	})
	assert.Contains(t, colored, "\x1b[")
	assert.Contains(t, colored, "orders")
}

func TestShowHeader(t *testing.T) {
	output := capture(t, false, func() {
		ShowHeader("Test Title")
	})

	assert.Contains(t, output, "+------")
	assert.Contains(t, output, "Test Title")
}

func TestShowError(t *testing.T) {
	tests := []struct {
		name              string
		err               error
		suggestionKeyword string
	}{
		{
			name:              "missing credentials",
			err:               errors.New("bigquery: could not find default credentials"),
			suggestionKeyword: "gcloud auth",
		},
		{
			name:              "syntax error",
			err:               errors.New("Syntax error: Unexpected keyword FROM"),
			suggestionKeyword: "--output_file",
		},
		{
			name: "multiline error",
			err:  errors.New("error occurred\ndetailed message"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			output := capture(t, false, func() {
				ShowError(tt.err)
			})

			firstLine := strings.Split(tt.err.Error(), "\n")[0]
			assert.Contains(t, output, firstLine)
			if tt.suggestionKeyword != "" {
				assert.Contains(t, output, "TIP:")
				assert.Contains(t, output, tt.suggestionKeyword)
			} else {
				assert.NotContains(t, output, "TIP:")
			}
		})
	}
}

func TestShowDeploymentSummary(t *testing.T) {
	output := capture(t, false, func() {
		ShowDeploymentSummary([]DeploymentRow{
			{Template: "orders.sql.j2", View: "daily_orders", Target: "p.metrics.daily_orders", Success: true},
			{Template: "revenue.sql.j2", View: "revenue", Target: "p.metrics.revenue", Success: false},
		})
	})

	assert.Contains(t, output, "daily_orders")
	assert.Contains(t, output, "DEPLOYED")
	assert.Contains(t, output, "FAILED")
	assert.Less(t, strings.Index(output, "daily_orders"), strings.Index(output, "revenue.sql.j2"))
}
