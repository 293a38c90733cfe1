package markdown

import (
	"fmt"
	"io"

	"github.com/charmbracelet/glamour"
)

func Render(w io.Writer, content string) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)

	if err != nil {
		fmt.Fprintln(w, content)
		return
	}

	out, err := r.Render(content)

	if err != nil {
		fmt.Fprintln(w, content)
		return
	}

	fmt.Fprintln(w, out)
}
