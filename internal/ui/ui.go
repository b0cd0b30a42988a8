package ui

import (
	"fmt"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/alecthomas/chroma/v2/quick"
	"github.com/common-nighthawk/go-figure"
)

const bulletIndent = "    * "

// Step prints a progress line for a remote or rendering step
func Step(message string) {
	bullet(ColorProgress, message)
}

// Detail prints a line describing what was found or chosen
func Detail(message string) {
	bullet(ColorSuccess, message)
}

// Failure prints a line for a step that did not succeed
func Failure(message string) {
	bullet(ColorError, message)
}

// Done prints the closing line of a run
func Done(message string) {
	bullet(ColorWarning, message)
}

func bullet(color func(string) string, message string) {
	fmt.Fprintln(out, bulletIndent+color(message))
}

// Println prints an uncolored line
func Println(args ...interface{}) {
	fmt.Fprintln(out, args...)
}

// Banner renders text as a slant figlet banner, underscores shown as spaces
func Banner(text string) {
	fig := figure.NewFigure(strings.ReplaceAll(text, "_", " "), "slant", true)
	fmt.Fprintln(out, fig.String())
}

// HighlightSQL prints SQL with terminal syntax highlighting. Without a color
// capable terminal the text is printed as is.
func HighlightSQL(sql string) error {
	if !supportsColor {
		_, err := fmt.Fprintln(out, sql)
		return err
	}

	if err := quick.Highlight(out, sql, "sql", "terminal256", "monokai"); err != nil {
		return fmt.Errorf("failed to highlight SQL: %w", err)
	}
	_, err := fmt.Fprintln(out)
	return err
}

// MultiSelect displays a multi-select prompt
func MultiSelect(message string, options []string) ([]string, error) {
	selected := []string{}
	prompt := &survey.MultiSelect{
		Message:  message,
		Options:  options,
		Default:  options,
		PageSize: 10,
	}

	err := survey.AskOne(prompt, &selected)
	return selected, err
}
