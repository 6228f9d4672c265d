package help

import (
	"fmt"

	"github.com/sjzar/advshortcut/internal/ui/style"

	"github.com/rivo/tview"
)

const (
	Title     = "help"
	ShowTitle = "Help"
	Content   = `[yellow]advshortcut[white]

A shortcut is a named list of actions run in order: launch a program,
kill processes, open a folder, open a URL or wait. Shortcuts are kept in
groups that can be collapsed and reordered.

[green]Navigation:[white]
• [yellow]←→[white] switch between the Shortcuts, Groups, Update, Settings and Help tabs
• [yellow]↑↓[white] move between items
• [yellow]Enter[white] select
• [yellow]Esc[white] close a dialog
• [yellow]Ctrl+C[white] quit

[green]Shortcuts tab:[white]
• [yellow]Enter[white] on a shortcut runs it, on a group header collapses or expands it
• [yellow]n[white] new shortcut, [yellow]e[white] edit, [yellow]d[white] delete
• [yellow][[white] and [yellow]][white] move the shortcut up or down inside its group

[green]Groups tab:[white]
• [yellow]Enter[white] collapse or expand
• [yellow]n[white] new group, [yellow]e[white] rename, [yellow]d[white] delete
• [yellow][[white] and [yellow]][white] move the group
The default group cannot be deleted; shortcuts of a deleted group move to it.

[green]Command line:[white]
• [yellow]advshortcut --execute-shortcut <id>[white] runs a shortcut at startup
• [yellow]--close-after-execution[white] exits when it is done, 0 on success and 1 on failure
• [yellow]--show-progress[white] shows the progress view while it runs

[green]HTTP API:[white]
• Shortcuts: [yellow]GET http://127.0.0.1:5030/api/v1/data[white]
• Run: [yellow]POST http://127.0.0.1:5030/api/v1/shortcuts/<id>/execute[white]
• Events: [yellow]ws://127.0.0.1:5030/api/v1/events[white]
• MCP: [yellow]http://127.0.0.1:5030/mcp[white]

[green]Data:[white]
Shortcuts and groups are saved in the data directory shown in the info
bar. A snapshot is kept before every save; see [yellow]advshortcut data --help[white].
`
)

type Help struct {
	*tview.TextView
	title string
}

func New() *Help {
	help := &Help{
		TextView: tview.NewTextView(),
		title:    Title,
	}

	help.SetDynamicColors(true)
	help.SetRegions(true)
	help.SetWrap(true)
	help.SetTextAlign(tview.AlignLeft)
	help.SetBorder(true)
	help.SetBorderColor(style.BorderColor)
	help.SetTitle(ShowTitle)

	fmt.Fprint(help, Content)

	return help
}
