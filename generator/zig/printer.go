package zig

import (
	"fmt"
	"io"
)

// printer wraps the output sink and latches the first write error so the
// emitters stay linear. Once a write fails every later write is a no-op and
// the error surfaces from Generate.
type printer struct {
	w   io.Writer
	err error
}

func (p *printer) printf(format string, args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format, args...)
}

func (p *printer) line(s string) {
	if p.err != nil {
		return
	}
	_, p.err = io.WriteString(p.w, s+"\n")
}
