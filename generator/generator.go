package generator

import "io"

// Generator renders a loaded device model to a single output stream. The
// output is deterministic: generating the same device twice produces
// byte-identical text. Write errors from the sink are returned unchanged.
type Generator interface {
	Generate(w io.Writer) error
}
