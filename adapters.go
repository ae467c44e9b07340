package pgcopy

import (
	"bufio"
	"bytes"
)

type (
	bytesBufferWriterAdapter struct{ *bytes.Buffer }
	bufioWriterAdapter       struct{ *bufio.Writer }
)

func (w *bufioWriterAdapter) Close() error       { return nil }
func (w *bytesBufferWriterAdapter) Close() error { return nil }
func (w *bytesBufferWriterAdapter) Flush() error { return nil }

// Size reports the spare capacity, the closest thing a bytes.Buffer has to a buffer size.
func (w *bytesBufferWriterAdapter) Size() int { return w.Available() }
