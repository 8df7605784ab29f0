// Package errmsg provides consistent error formatting for user-facing messages.
package errmsg

import "fmt"

// Op represents an operation that can fail.
type Op string

// Operation constants - grouped by domain.
const (
	// Tag operations
	OpTagsLoad   Op = "read tags"
	OpTagsSave   Op = "write tags"
	OpTagsCopy   Op = "copy tags"
	OpTagsDelete Op = "delete tags"

	// Value parsing
	OpParseValue Op = "parse value"

	// Attachments
	OpCoverLoad    Op = "load cover art"
	OpLyricsImport Op = "import lyrics"
	OpLyricsShow   Op = "show lyrics"

	// Initialization
	OpConfigLoad Op = "load configuration"
)

// Format creates a user-friendly error message.
func Format(op Op, err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("Failed to %s: %v", op, err)
}

// FormatWith creates an error message with additional context.
func FormatWith(op Op, context string, err error) string {
	if err == nil {
		return ""
	}
	if context == "" {
		return Format(op, err)
	}
	return fmt.Sprintf("Failed to %s '%s': %v", op, context, err)
}

// Error is an error carrying the operation it came from. Its message is the
// one FormatWith builds.
type Error struct {
	Op      Op
	Context string
	Err     error
}

// Wrap returns err annotated with op and context, or nil if err is nil.
func Wrap(op Op, context string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Op: op, Context: context, Err: err}
}

func (e *Error) Error() string {
	return FormatWith(e.Op, e.Context, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}
