package console

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/jedib0t/go-pretty/v6/text"
)

// Output writes user-facing console output. Command results are written as
// is; status messages get a timestamp and optional color.
type Output struct {
	writer   io.Writer
	useColor bool
}

// NewOutput creates an Output writing to w, or stdout if w is nil.
func NewOutput(w io.Writer, useColor bool) *Output {
	if w == nil {
		w = os.Stdout
	}
	return &Output{writer: w, useColor: useColor}
}

// Writer returns the underlying writer.
func (o *Output) Writer() io.Writer {
	return o.writer
}

// Output writes formatted text without a trailing newline.
func (o *Output) Output(format string, args ...interface{}) {
	fmt.Fprintf(o.writer, format, args...)
}

// OutputLine writes formatted text with a trailing newline.
func (o *Output) OutputLine(format string, args ...interface{}) {
	fmt.Fprintf(o.writer, format+"\n", args...)
}

// Info writes a status message.
func (o *Output) Info(format string, args ...interface{}) {
	o.message(text.Reset, format, args...)
}

// Error writes an error message.
func (o *Output) Error(format string, args ...interface{}) {
	o.message(text.FgRed, format, args...)
}

// Success writes a success message.
func (o *Output) Success(format string, args ...interface{}) {
	o.message(text.FgGreen, format, args...)
}

// Warn writes a warning.
func (o *Output) Warn(format string, args ...interface{}) {
	o.message(text.FgYellow, format, args...)
}

func (o *Output) message(color text.Color, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if o.useColor && color != text.Reset {
		msg = color.Sprint(msg)
	}
	fmt.Fprintf(o.writer, "[%s] %s\n", time.Now().Format("15:04:05"), msg)
}
