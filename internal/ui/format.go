package ui

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/mgutz/ansi"
)

var (
	// Check if output supports colors
	supportsColor = isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())

	// Color functions
	ColorSuccess  = colorFunc(ansi.Green)
	ColorError    = colorFunc(ansi.Red)
	ColorWarning  = colorFunc(ansi.Yellow)
	ColorInfo     = colorFunc(ansi.Cyan)
	ColorProgress = colorFunc(ansi.Blue)
	ColorBold     = colorFunc("default+b")
	ColorDim      = colorFunc("default+h")

	out io.Writer = os.Stdout
)

// SetOutput redirects console output and returns the previous writer
func SetOutput(w io.Writer) io.Writer {
	prev := out
	out = w
	return prev
}

// SetColor forces color on or off and returns the previous setting
func SetColor(enabled bool) bool {
	prev := supportsColor
	supportsColor = enabled
	return prev
}

// colorFunc returns a function that colors text if supported
func colorFunc(color string) func(string) string {
	return func(text string) string {
		if supportsColor {
			return ansi.Color(text, color)
		}
		return text
	}
}

// ShowHeader displays a formatted header
func ShowHeader(title string) {
	width := 50
	padding := (width - len(title) - 2) / 2
	if padding < 0 {
		padding = 0
	}
	trailing := width - 2 - padding - len(title)
	if trailing < 0 {
		trailing = 0
	}

	fmt.Fprintln(out, "\n+"+strings.Repeat("-", width-2)+"+")
	fmt.Fprintf(out, "|%s%s%s|\n",
		strings.Repeat(" ", padding),
		ColorBold(title),
		strings.Repeat(" ", trailing),
	)
	fmt.Fprintln(out, "+"+strings.Repeat("-", width-2)+"+")
}

// ShowError displays a formatted error message
func ShowError(err error) {
	fmt.Fprintf(out, "\n%s\n", ColorError("ERROR:"))

	message := err.Error()
	lines := strings.Split(message, "\n")

	for i, line := range lines {
		if i == 0 {
			fmt.Fprintf(out, "  %s\n", line)
		} else {
			fmt.Fprintf(out, "  %s\n", ColorDim(line))
		}
	}

	if suggestion := getSuggestion(message); suggestion != "" {
		fmt.Fprintf(out, "\n  %s %s\n", ColorInfo("TIP:"), ColorInfo(suggestion))
	}
}

// ShowSuccess displays a success message
func ShowSuccess(message string) {
	fmt.Fprintf(out, "%s %s\n", ColorSuccess("SUCCESS:"), message)
}

// ShowWarning displays a warning message
func ShowWarning(message string) {
	fmt.Fprintf(out, "%s %s\n", ColorWarning("WARNING:"), ColorWarning(message))
}

// ShowInfo displays an info message
func ShowInfo(message string) {
	fmt.Fprintf(out, "%s %s\n", ColorInfo("INFO:"), message)
}

// getSuggestion returns helpful suggestions based on error messages
func getSuggestion(error string) string {
	lower := strings.ToLower(error)

	switch {
	case strings.Contains(lower, "could not find default credentials"):
		return "Run 'gcloud auth application-default login' or set GOOGLE_APPLICATION_CREDENTIALS"
	case strings.Contains(lower, "access denied"), strings.Contains(lower, "permission"):
		return "Ensure your account can create tables in the target dataset"
	case strings.Contains(lower, "syntax error"):
		return "Review the rendered SQL, e.g. with --output_file"
	case strings.Contains(lower, "not a valid identifier"):
		return "Template variables must be valid identifiers; rename keys in the configuration file"
	default:
		return ""
	}
}
