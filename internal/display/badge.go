package display

import (
	"io"

	"github.com/fatih/color"
)

var palette = map[string][]color.Attribute{
	"green":   {color.FgGreen},
	"blue":    {color.FgBlue},
	"yellow":  {color.FgYellow},
	"orange":  {color.FgHiYellow, color.Bold},
	"red":     {color.FgRed},
	"darkred": {color.FgRed, color.Bold},
	"purple":  {color.FgMagenta},
	"grey":    {color.FgHiBlack},
}

// Badge writes "[label]" in the named color. Unknown colors print plain.
func Badge(out io.Writer, label, colorName string) {
	attrs, ok := palette[colorName]
	if !ok {
		io.WriteString(out, "["+label+"]")
		return
	}
	color.New(attrs...).Fprint(out, "["+label+"]")
}
