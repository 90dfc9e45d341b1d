package render

import (
	"bytes"
	"context"
	"os/exec"
	"strconv"
	"strings"

	"github.com/matzehuels/lineage/pkg/errors"
)

// RsvgConvert is the converter binary looked up on PATH.
var RsvgConvert = "rsvg-convert"

// ToPDF converts an SVG document to PDF.
func ToPDF(ctx context.Context, svg []byte) ([]byte, error) {
	return convert(ctx, svg, "pdf")
}

// ToPNG converts an SVG document to PNG. A scale of 2 doubles the pixel
// size; zero or negative means 1.
func ToPNG(ctx context.Context, svg []byte, scale float64) ([]byte, error) {
	if scale <= 0 {
		scale = 1
	}
	return convert(ctx, svg, "png", "--zoom", strconv.FormatFloat(scale, 'f', 2, 64))
}

func convert(ctx context.Context, svg []byte, format string, args ...string) ([]byte, error) {
	if len(bytes.TrimSpace(svg)) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "%s export: empty svg", format)
	}
	bin, err := exec.LookPath(RsvgConvert)
	if err != nil {
		return nil, errors.New(errors.ErrCodeUnsupported,
			"%s export needs %s from librsvg (brew install librsvg, apt install librsvg2-bin)", format, RsvgConvert)
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, bin, append([]string{"--format", format}, args...)...)
	cmd.Stdin = bytes.NewReader(svg)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "%s: %s", RsvgConvert, strings.TrimSpace(stderr.String()))
	}
	return stdout.Bytes(), nil
}
