package printers

import (
	"fmt"

	"github.com/fatih/color"

	"tableflip.dev/newday/pkg/app"
)

// Report prints completed tasks grouped by category.
func (pp *PrettyPrint) Report(res app.ReportResult) {
	w := pp.out()
	since := res.Since.Local().Format("2006-01-02 15:04")
	until := res.Until.Local().Format("2006-01-02 15:04")
	pp.Title(fmt.Sprintf("Completed %s → %s", since, until))

	if res.Total == 0 {
		f := color.New(color.Faint, color.Italic)
		_, _ = f.Fprintln(w, "  No completed tasks in this window.")
		_, _ = fmt.Fprintln(w)
		return
	}
	pp.NewLine()
	for _, sec := range res.Sections {
		pp.TitleWithCount(sec.Type.Title(), len(sec.Tasks))
		pp.Tasks(sec.Tasks...)
	}
}
