package impulse

import (
	"bytes"
	"fmt"
	"go/format"
	"go/token"
	"io"
	"math"
	"strconv"
)

// valuesPerLine keeps generated literals readable in diffs.
const valuesPerLine = 6

// EmitOptions describes the Go file EmitGo writes.
type EmitOptions struct {
	Package    string
	Var        string
	SampleRate int

	// Source is recorded in the header comment, usually the asset path.
	Source string
}

// EmitGo writes gofmt-formatted Go source declaring samples as a package
// level []float64, so an impulse response can be compiled into a binary.
func EmitGo(w io.Writer, opts EmitOptions, samples []float64) error {
	if !token.IsIdentifier(opts.Package) {
		return fmt.Errorf("%w: package name %q", ErrInvalidConfig, opts.Package)
	}
	if !token.IsIdentifier(opts.Var) {
		return fmt.Errorf("%w: variable name %q", ErrInvalidConfig, opts.Var)
	}

	for i, v := range samples {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: index %d", ErrNonFinite, i)
		}
	}

	var b bytes.Buffer
	b.WriteString("// Code generated by embed-ir. DO NOT EDIT.\n")
	if opts.Source != "" {
		fmt.Fprintf(&b, "// Source: %s\n", opts.Source)
	}
	fmt.Fprintf(&b, "\npackage %s\n\n", opts.Package)

	if opts.SampleRate > 0 {
		fmt.Fprintf(&b, "// %sSampleRate is the rate %s was recorded at.\n", opts.Var, opts.Var)
		fmt.Fprintf(&b, "const %sSampleRate = %d\n\n", opts.Var, opts.SampleRate)
	}

	fmt.Fprintf(&b, "// %s holds %d impulse response samples.\n", opts.Var, len(samples))
	fmt.Fprintf(&b, "var %s = []float64{\n", opts.Var)
	for i, v := range samples {
		if i%valuesPerLine == 0 {
			b.WriteByte('\t')
		}
		b.WriteString(strconv.FormatFloat(v, 'g', -1, 64))
		b.WriteByte(',')
		if i%valuesPerLine == valuesPerLine-1 || i == len(samples)-1 {
			b.WriteByte('\n')
		} else {
			b.WriteByte(' ')
		}
	}
	b.WriteString("}\n")

	src, err := format.Source(b.Bytes())
	if err != nil {
		return fmt.Errorf("impulse: format generated source: %w", err)
	}
	_, err = w.Write(src)
	return err
}
