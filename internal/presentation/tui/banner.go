package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

var bannerLines = []struct {
	text  string
	color string
}{
	{`  ____  _                        _          `, "#818cf8"},
	{` / ___|| |_ ___ _ __  __      __(_)___  ___ `, "#a78bfa"},
	{` \___ \| __/ _ \ '_ \ \ \ /\ / /| / __|/ _ \`, "#c084fc"},
	{`  ___) | ||  __/ |_) | \ V  V / | \__ \  __/`, "#e879f9"},
	{` |____/ \__\___| .__/   \_/\_/  |_|___/\___|`, "#f472b6"},
	{`               |_|                          `, "#fb7185"},
}

// PrintBanner writes the ASCII art banner and version to w, coloured for
// the terminal w is attached to.
func PrintBanner(w io.Writer, version string, opts ...termenv.OutputOption) {
	out := termenv.NewOutput(w, opts...)

	fmt.Fprintln(w)
	for _, l := range bannerLines {
		fmt.Fprintln(w, out.String(l.text).Foreground(out.Color(l.color)))
	}
	if version != "" {
		fmt.Fprintln(w, out.String("  v"+version).Faint())
	}
	fmt.Fprintln(w)
}
