package main

import (
	"fmt"
	"io"

	"github.com/charmbracelet/glamour"
)

// printMarkdown 用 glamour 渲染 markdown，--raw 或渲染失败时原样输出
func printMarkdown(w io.Writer, md string) error {
	if raw {
		_, err := fmt.Fprintln(w, md)
		return err
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err == nil {
		var out string
		if out, err = r.Render(md); err == nil {
			_, err = fmt.Fprint(w, out)
			return err
		}
	}
	_, err = fmt.Fprintln(w, md)
	return err
}
