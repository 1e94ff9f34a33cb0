package render

import (
	"bytes"
	"fmt"
	"os/exec"
	"strconv"
)

const converter = "rsvg-convert"

// ConverterAvailable reports whether rsvg-convert is on PATH.
func ConverterAvailable() bool {
	_, err := exec.LookPath(converter)
	return err == nil
}

// ToPNG rasterizes an SVG document at the given scale (1.0 = native size).
func ToPNG(svg []byte, scale float64) ([]byte, error) {
	if scale <= 0 {
		scale = 1
	}
	return convert(svg, "-f", "png", "-z", strconv.FormatFloat(scale, 'f', -1, 64))
}

// ToPDF converts an SVG document to a single-page PDF.
func ToPDF(svg []byte) ([]byte, error) {
	return convert(svg, "-f", "pdf")
}

func convert(svg []byte, args ...string) ([]byte, error) {
	if !ConverterAvailable() {
		return nil, fmt.Errorf("%s not found (install librsvg)", converter)
	}
	cmd := exec.Command(converter, args...)
	cmd.Stdin = bytes.NewReader(svg)
	var out, stderr bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("%s: %w: %s", converter, err, bytes.TrimSpace(stderr.Bytes()))
	}
	return out.Bytes(), nil
}
