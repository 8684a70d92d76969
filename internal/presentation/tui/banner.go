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
	{` __      __                         `, "#818cf8"},
	{` \ \    / /__  __ ___ _____ _ _     `, "#a78bfa"},
	{`  \ \/\/ / -_)/ _' \ V / -_) '_|    `, "#c084fc"},
	{`   \_/\_/\___|\__,_|\_/\___|_|      `, "#f472b6"},
}

// PrintBanner writes the weaver banner to w, colored when the terminal allows it.
func PrintBanner(w io.Writer) {
	out := termenv.NewOutput(w)
	fmt.Fprintln(w)
	for _, l := range bannerLines {
		fmt.Fprintln(w, out.String(l.text).Foreground(out.Color(l.color)))
	}
	fmt.Fprintln(w)
}
