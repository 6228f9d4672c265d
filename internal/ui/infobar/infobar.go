package infobar

import (
	"fmt"

	"github.com/sjzar/advshortcut/internal/ui/style"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

const (
	Title = "infobar"
)

// InfoBarViewHeight info bar height.
const (
	InfoBarViewHeight = 5
	versionRow        = 0
	dataRow           = 1
	storageRow        = 2
	httpServerRow     = 3
	lastRunRow        = 4

	labelCol1 = 0
	valueCol1 = 1
	labelCol2 = 2
	valueCol2 = 3
)

// InfoBar implements the info bar primitive.
type InfoBar struct {
	*tview.Box
	title string
	table *tview.Table
}

// New returns info bar view.
func New() *InfoBar {
	table := tview.NewTable()
	headerColor := style.InfoBarItemFgColor

	label := func(row, col int, text string) {
		table.SetCell(row, col, tview.NewTableCell(fmt.Sprintf(" [%s::]%s", headerColor, text)))
		table.SetCell(row, col+1, tview.NewTableCell(""))
	}

	label(versionRow, labelCol1, "Version:")
	label(versionRow, labelCol2, "Platform:")
	label(dataRow, labelCol1, "Data Usage:")
	label(dataRow, labelCol2, "Data Dir:")
	label(storageRow, labelCol1, "Storage:")
	label(storageRow, labelCol2, "Data File:")
	label(httpServerRow, labelCol1, "HTTP Server:")
	label(httpServerRow, labelCol2, "Update:")
	label(lastRunRow, labelCol1, "Last Run:")

	return &InfoBar{
		Box:   tview.NewBox(),
		title: Title,
		table: table,
	}
}

func (info *InfoBar) UpdateBasicInfo(version, platform string) {
	info.table.GetCell(versionRow, valueCol1).SetText(version)
	info.table.GetCell(versionRow, valueCol2).SetText(platform)
}

func (info *InfoBar) UpdateDataUsageDir(dataUsage string, dataDir string) {
	info.table.GetCell(dataRow, valueCol1).SetText(dataUsage)
	info.table.GetCell(dataRow, valueCol2).SetText(dataDir)
}

func (info *InfoBar) UpdateStorage(kind, path string) {
	info.table.GetCell(storageRow, valueCol1).SetText(kind)
	info.table.GetCell(storageRow, valueCol2).SetText(path)
}

// UpdateHTTPServer updates HTTP Server value.
func (info *InfoBar) UpdateHTTPServer(server string) {
	info.table.GetCell(httpServerRow, valueCol1).SetText(server)
}

func (info *InfoBar) UpdateUpdateStatus(status string) {
	info.table.GetCell(httpServerRow, valueCol2).SetText(status)
}

func (info *InfoBar) UpdateLastRun(summary string) {
	info.table.GetCell(lastRunRow, valueCol1).SetText(summary)
}

// Draw draws this primitive onto the screen.
func (info *InfoBar) Draw(screen tcell.Screen) {
	info.Box.DrawForSubclass(screen, info)
	info.Box.SetBorder(false)

	x, y, width, height := info.GetInnerRect()

	info.table.SetRect(x, y, width, height)
	info.table.SetBorder(false)
	info.table.Draw(screen)
}
