// Package tui renders the live grid-engine state to a terminal, mirroring
// an attached Launchpad-class controller with a keyboard-driven fallback.
// Adapted from the teacher's tui/model.go bubbletea shape.
package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"gridloop/config"
	"gridloop/grid"
	"gridloop/host"
	"gridloop/midi"
	"gridloop/theme"
	"gridloop/widgets"
)

// modeKeys maps keyboard shortcuts to the 8 fixed mode buttons, in the
// order grid.ModeButton enumerates them.
var modeKeys = map[string]grid.ModeButton{
	"l": grid.ModeLoop,
	"f": grid.ModeFlatten,
	"u": grid.ModeUndo,
	"y": grid.ModeRedo,
	"h": grid.ModeHold,
	"s": grid.ModeSuppress,
	"c": grid.ModeScale,
	"v": grid.ModeSelect,
}

// Model is the bubbletea root model. It never mutates the engine directly;
// every input is forwarded to Host's dispatch loop over a channel.
type Model struct {
	Host   *host.Host
	Config *config.Config
	Theme  *theme.Theme

	cursorRow, cursorCol int
	heldModes            map[grid.ModeButton]bool
	quitting             bool
}

// UpdateMsg signals a new ViewState is available from Host.
type UpdateMsg struct{}

// RescanResultMsg carries the outcome of a background device rescan.
type RescanResultMsg struct {
	controllerID string
	err          error
}

// NewModel builds a Model bound to an already-running Host.
func NewModel(h *host.Host, cfg *config.Config, th *theme.Theme) Model {
	return Model{
		Host:      h,
		Config:    cfg,
		Theme:     th,
		heldModes: make(map[grid.ModeButton]bool),
	}
}

// ListenForUpdates blocks on Host.UpdateChan and turns it into a tea.Msg,
// re-armed every time it fires (the teacher's ListenForUpdates shape).
func ListenForUpdates(h *host.Host) tea.Cmd {
	return func() tea.Msg {
		<-h.UpdateChan
		return UpdateMsg{}
	}
}

func (m Model) Init() tea.Cmd {
	return ListenForUpdates(m.Host)
}

// rescan runs Host.Rescan in the background, per bubbletea's tea.Cmd
// convention for anything that blocks (port enumeration can take a while).
func rescan(h *host.Host) tea.Cmd {
	return func() tea.Msg {
		id, err := h.Rescan()
		return RescanResultMsg{controllerID: id, err: err}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.quitting = true
			m.Host.Stop()
			return m, tea.Quit

		case "up", "k":
			m.cursorRow = min(m.cursorRow+1, 7)
		case "down", "j":
			m.cursorRow = max(m.cursorRow-1, 0)
		case "left":
			m.cursorCol = max(m.cursorCol-1, 0)
		case "right":
			m.cursorCol = min(m.cursorCol+1, 7)

		case " ", "enter":
			id := m.cursorRow*8 + m.cursorCol
			m.Host.KeyPad <- midi.PadEvent{ID: id, Velocity: 100, On: true}
			m.Host.KeyPad <- midi.PadEvent{ID: id, Velocity: 0, On: false}

		case "1", "2", "3", "4", "5", "6", "7", "8":
			idx := int(msg.String()[0] - '1')
			m.Host.KeyRate <- midi.RateEvent{Index: idx, Pressed: true}
			m.Host.KeyRate <- midi.RateEvent{Index: idx, Pressed: false}

		case "l", "f", "u", "y", "h", "s", "c", "v":
			button := modeKeys[msg.String()]
			pressed := !m.heldModes[button]
			m.heldModes[button] = pressed
			m.Host.KeyMode <- midi.ModeEvent{Mode: int(button), Pressed: pressed}

		case "r":
			m.Host.SetStatus("rescanning...")
			return m, rescan(m.Host)
		}

	case UpdateMsg:
		return m, ListenForUpdates(m.Host)

	case RescanResultMsg:
		if msg.err != nil {
			m.Host.SetStatus(fmt.Sprintf("no device: %v", msg.err))
		} else {
			m.Host.SetStatus(fmt.Sprintf("connected: %s", msg.controllerID))
		}
	}

	return m, nil
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	v := m.Host.View()

	headerStyle := lipgloss.NewStyle().Foreground(m.Theme.Accent())
	dimStyle := lipgloss.NewStyle().Foreground(m.Theme.Muted())
	statusStyle := lipgloss.NewStyle().Foreground(m.Theme.FG()).Background(m.Theme.Muted()).Padding(0, 1)

	clockState := "free"
	if v.ClockLocked {
		clockState = "locked"
	}
	deviceStatus := " [no ctrl - r:scan]"
	if v.ControllerID != "" {
		deviceStatus = fmt.Sprintf(" [%s]", v.ControllerID)
	}

	header := headerStyle.Render(fmt.Sprintf(
		"gridloop  clock:%s  pos:%d/%d  rate:%d%s",
		clockState, v.PositionTicks, v.LoopTicks, v.RateIndex, deviceStatus))

	layout := widgets.LaunchpadLayout{}
	for row := 0; row < 8; row++ {
		for col := 0; col < 8; col++ {
			id := row*8 + col
			layout.Grid[row][col] = widgets.PadConfig{Color: padRGB(m.Theme, v.GridColors[id])}
		}
	}
	for i := 0; i < 8; i++ {
		color := [3]uint8{40, 40, 40}
		if i == v.RateIndex && v.Repeating {
			color = [3]uint8{220, 200, 40}
		}
		layout.RightCol[i] = widgets.PadConfig{Color: color}
	}

	gridView := widgets.RenderLaunchpad(layout)
	cursorLine := dimStyle.Render(fmt.Sprintf("cursor: row %d col %d", m.cursorRow, m.cursorCol))

	modeFlags := []string{}
	if v.Holding {
		modeFlags = append(modeFlags, "HOLD")
	}
	if v.Suppressing {
		modeFlags = append(modeFlags, "SUPPRESS")
	}
	if v.Selecting {
		modeFlags = append(modeFlags, "SELECT")
	}
	if v.SelectingScale {
		modeFlags = append(modeFlags, "SCALE")
	}
	help := dimStyle.Render("jk/arrows:move  space:hit  1-8:rate  l:loop f:flatten u:undo y:redo h:hold s:suppress c:scale v:select  r:scan  q:quit")

	var out strings.Builder
	out.WriteString("\n")
	out.WriteString(header)
	out.WriteString("\n\n")
	out.WriteString(gridView)
	out.WriteString("\n")
	out.WriteString(cursorLine)
	if len(modeFlags) > 0 {
		out.WriteString("\n")
		out.WriteString(dimStyle.Render(strings.Join(modeFlags, " ")))
	}
	out.WriteString("\n\n")
	out.WriteString(help)

	if v.StatusMsg != "" {
		out.WriteString("\n")
		out.WriteString(statusStyle.Render(v.StatusMsg))
	}

	return out.String()
}

// padRGB maps a grid.Color (Launchpad Programmer-mode velocity byte) to an
// approximate RGB triple for terminal rendering, since the real palette is
// a device-side lookup table the TUI can't query directly.
func padRGB(th *theme.Theme, c grid.Color) [3]uint8 {
	switch c {
	case grid.ColorOff:
		return th.RGB(0.0)
	case grid.ColorRedLow, grid.ColorRedMed, grid.ColorRed:
		return th.RGB(0.8)
	case grid.ColorGreenLow, grid.ColorGreenMed, grid.ColorGreen:
		return th.RGB(0.2)
	case grid.ColorOrangeLow, grid.ColorOrangeMed, grid.ColorOrange:
		return th.RGB(0.6)
	case grid.ColorLimeLow, grid.ColorLime:
		return th.RGB(0.3)
	case grid.ColorYellowMed, grid.ColorYellow:
		return th.RGB(1.0)
	default:
		return th.RGB(0.0)
	}
}
