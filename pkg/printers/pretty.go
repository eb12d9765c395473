package printers

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"
	"github.com/muesli/reflow/indent"
	"github.com/muesli/reflow/wordwrap"

	"tableflip.dev/newday/pkg/day"
	"tableflip.dev/newday/pkg/selector"
	"tableflip.dev/newday/pkg/task"
)

// idWidth is the column reserved for ids when ShowID is set.
const idWidth = 28

// PrettyPrint renders planner data for a terminal.
type PrettyPrint struct {
	ShowID bool
	// Width bounds wrapped notes; 80 when zero.
	Width int
	// Out defaults to color.Output.
	Out io.Writer
}

func (pp *PrettyPrint) out() io.Writer {
	if pp.Out != nil {
		return pp.Out
	}
	return color.Output
}

func (pp *PrettyPrint) width() int {
	if pp.Width > 0 {
		return pp.Width
	}
	return 80
}

func (pp *PrettyPrint) gutter() string {
	if pp.ShowID {
		return strings.Repeat(" ", idWidth)
	}
	return ""
}

func (pp *PrettyPrint) NewLine() {
	_, _ = fmt.Fprintln(pp.out())
}

func (pp *PrettyPrint) Title(title string) {
	t := color.New(color.Bold, color.Underline)
	_, _ = fmt.Fprint(pp.out(), pp.gutter())
	_, _ = t.Fprintln(pp.out(), title)
}

func (pp *PrettyPrint) TitleWithCount(title string, count int) {
	t := color.New(color.Bold)
	c := color.New(color.Faint)
	_, _ = fmt.Fprint(pp.out(), pp.gutter())
	_, _ = t.Fprint(pp.out(), title)
	switch count {
	case 1:
		_, _ = c.Fprintln(pp.out(), " - 1 task")
	default:
		_, _ = c.Fprintf(pp.out(), " - %d tasks\n", count)
	}
}

// DayView prints every category of a day.
func (pp *PrettyPrint) DayView(view selector.DayView) {
	pp.Title(view.Day.Label())
	pp.NewLine()
	for _, sec := range view.Sections {
		pp.TitleWithCount(sec.Title, len(sec.Tasks))
		pp.Tasks(sec.Tasks...)
	}
}

// Tasks prints one line per task followed by its wrapped notes.
func (pp *PrettyPrint) Tasks(tasks ...task.Task) {
	w := pp.out()
	if len(tasks) == 0 {
		f := color.New(color.Faint, color.Italic)
		_, _ = fmt.Fprint(w, pp.gutter())
		_, _ = f.Fprint(w, "  none\n\n")
		return
	}

	y := color.New(color.FgHiYellow, color.Italic, color.Faint)
	done := color.New(color.Faint, color.CrossedOut)
	faint := color.New(color.Faint)
	for _, tk := range tasks {
		if pp.ShowID {
			_, _ = y.Fprint(w, tk.ID)
			_, _ = fmt.Fprint(w, strings.Repeat(" ", max(1, idWidth-len(tk.ID))))
		}
		text := tk.Text
		if text == "" {
			text = faint.Sprint("(empty)")
		}
		if tk.Complete {
			_, _ = fmt.Fprintf(w, "  %s %s\n", "[x]", done.Sprint(text))
		} else {
			_, _ = fmt.Fprintf(w, "  %s %s\n", "[ ]", text)
		}
		if tk.Notes != "" {
			prefix := len(pp.gutter()) + 6
			if pp.width()-prefix < 20 {
				prefix = 6
			}
			wrapped := wordwrap.String(tk.Notes, max(1, pp.width()-prefix))
			_, _ = faint.Fprintln(w, indent.String(wrapped, uint(prefix)))
		}
	}
	_, _ = fmt.Fprintln(w)
}

// Days prints a table of days, marking the current one.
func (pp *PrettyPrint) Days(days []day.Day, currentID string) {
	bold := color.New(color.Bold)
	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.AddRow("", bold.Sprint("ID"), bold.Sprint("Day"), bold.Sprint("Created"))
	for _, d := range days {
		marker := ""
		if d.ID == currentID {
			marker = color.New(color.FgGreen).Sprint("*")
		}
		tbl.AddRow(marker, d.ID, d.Label(), d.Created.Local().Format("15:04:05"))
	}
	_, _ = fmt.Fprintln(pp.out(), tbl)
}
