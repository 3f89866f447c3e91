// Command rewinddemo is a small terminal program exercising a Sequence
// of strings and a Cell holding a status line, driven through a History
// with Ctrl-Z/Ctrl-Y bound to undo/redo.
package main

import (
	"fmt"
	"os"

	"github.com/gdamore/tcell/v2"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/dshills/rewind"
)

type model struct {
	history *rewind.History
	items   *rewind.Sequence[string]
	status  *rewind.Cell[string]
	cursor  int
}

func newModel() *model {
	return &model{
		history: rewind.NewHistory(rewind.WithSizeLimit(200)),
		items:   rewind.NewSequence([]string{"milk", "eggs", "bread"}, false),
		status:  rewind.NewCell("ready"),
	}
}

func (m *model) addItem(text string) {
	m.history.BeginCommand("add-item")
	m.items.Add(text)
	m.status.Set(fmt.Sprintf("added %q", text))
	m.history.EndCommand(false)
}

func (m *model) removeSelected() {
	if m.items.Len() == 0 {
		return
	}
	m.history.BeginCommand("remove-item")
	if removed, err := m.items.Get(m.cursor); err == nil {
		m.items.RemoveAt(m.cursor)
		m.status.Set(fmt.Sprintf("removed %q", removed))
	}
	m.history.EndCommand(false)
	if m.cursor >= m.items.Len() && m.cursor > 0 {
		m.cursor--
	}
}

func (m *model) undo() {
	if err := m.history.Undo(); err == nil {
		m.status.Set("undid last change")
	}
}

func (m *model) redo() {
	if err := m.history.Redo(); err == nil {
		m.status.Set("redid last change")
	}
}

func (m *model) draw(screen tcell.Screen) {
	screen.Clear()
	w, h := screen.Size()

	headerStyle := tcell.StyleDefault.Bold(true)
	drawText(screen, 0, 0, w, headerStyle, "rewind demo — arrows move, a=add, d=delete, ^Z=undo, ^Y=redo, q=quit")

	accent, _ := colorful.Hex("#3fa7d6")
	r, g, b := accent.RGB255()
	itemStyle := tcell.StyleDefault.Foreground(tcell.NewRGBColor(int32(r), int32(g), int32(b)))

	items := m.items.ToArray()
	for i, item := range items {
		style := itemStyle
		prefix := "  "
		if i == m.cursor {
			style = style.Reverse(true)
			prefix = "> "
		}
		drawText(screen, 0, 2+i, w, style, prefix+item)
	}

	statusLine := fmt.Sprintf("[%d/%d] %s", m.history.Position()+1, m.history.Count(), m.status.Get())
	drawText(screen, 0, h-1, w, tcell.StyleDefault.Dim(true), statusLine)

	screen.Show()
}

func drawText(screen tcell.Screen, x, y, maxWidth int, style tcell.Style, text string) {
	col := x
	for _, r := range text {
		if col >= maxWidth {
			break
		}
		screen.SetContent(col, y, r, nil, style)
		col++
	}
}

func run() error {
	screen, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err := screen.Init(); err != nil {
		return err
	}
	defer screen.Fini()

	m := newModel()
	m.draw(screen)

	for {
		ev := screen.PollEvent()
		switch ev := ev.(type) {
		case *tcell.EventResize:
			screen.Sync()
		case *tcell.EventKey:
			switch {
			case ev.Key() == tcell.KeyCtrlC, ev.Rune() == 'q':
				return nil
			case ev.Key() == tcell.KeyCtrlZ:
				m.undo()
			case ev.Key() == tcell.KeyCtrlY:
				m.redo()
			case ev.Key() == tcell.KeyUp:
				if m.cursor > 0 {
					m.cursor--
				}
			case ev.Key() == tcell.KeyDown:
				if m.cursor < m.items.Len()-1 {
					m.cursor++
				}
			case ev.Rune() == 'a':
				m.addItem(fmt.Sprintf("item-%d", m.items.Len()+1))
			case ev.Rune() == 'd':
				m.removeSelected()
			}
		}
		m.draw(screen)
	}
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "rewinddemo:", err)
		os.Exit(1)
	}
}
