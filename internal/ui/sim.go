package ui

import (
	"context"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/dogi/pISO/internal/display"
	"github.com/dogi/pISO/internal/menu"
	"github.com/dogi/pISO/internal/sysinfo"
	"github.com/dogi/pISO/internal/vdrive"
	"github.com/dogi/pISO/internal/version"
)

// Simulator panel geometry matches the hardware OLED.
const (
	simWidth  = 128
	simHeight = 64
)

// statsTickMsg refreshes the host stats row.
type statsTickMsg time.Time

// simScreen selects what the simulated panel shows.
type simScreen int

const (
	screenMenu   simScreen = iota // Root menu with drives, stats, about
	screenPicker                  // Size dial for a new drive
)

// SimModel drives the registry from a terminal instead of the OLED and
// buttons. It implements tea.Model; every frame is rendered into the
// same bitmap the hardware gets and drawn with half-block runes, so the
// simulator shows exactly what the panel would.
type SimModel struct {
	ctx    context.Context
	reg    *vdrive.Registry
	root   *menu.List
	stats  *statsItem
	ts     display.Typesetter
	hidden map[vdrive.VolumeID]bool
	status *statusLine
	log    zerolog.Logger

	screen simScreen
	picker pickerState
	step   uint64

	width  int
	height int
}

// NewSim builds the simulator on top of pool. Drive rows toggle a
// simulated export flag; the size dial steps by step bytes.
func NewSim(ctx context.Context, pool vdrive.Pool, step uint64, log zerolog.Logger) (SimModel, error) {
	status := &statusLine{}
	hidden := make(map[vdrive.VolumeID]bool)
	action := func(ctx context.Context, d vdrive.Info) (bool, error) {
		hidden[d.ID] = !hidden[d.ID]
		if hidden[d.ID] {
			status.set(d.Name+" hidden", false)
		} else {
			status.set(d.Name+" exported", false)
		}
		return true, nil
	}
	ts := display.Font5x7{}
	reg, err := vdrive.NewRegistry(ctx, pool, vdrive.Options{
		Typesetter: ts,
		Action:     action,
		Logger:     log,
	})
	if err != nil {
		return SimModel{}, err
	}
	root, stats := newRoot(reg, ts)
	stats.SetSnapshot(sysinfo.Collect(ctx))
	return SimModel{
		ctx:    ctx,
		reg:    reg,
		root:   root,
		stats:  stats,
		ts:     ts,
		hidden: hidden,
		status: status,
		log:    log,
		screen: screenMenu,
		step:   step,
		width:  100,
		height: 30,
	}, nil
}

// Init implements tea.Model.
func (m SimModel) Init() tea.Cmd {
	return statsTick()
}

func statsTick() tea.Cmd {
	return tea.Tick(statsInterval, func(t time.Time) tea.Msg {
		return statsTickMsg(t)
	})
}

// Update implements tea.Model.
func (m SimModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case statsTickMsg:
		m.stats.SetSnapshot(sysinfo.Collect(m.ctx))
		return m, statsTick()

	case tea.KeyMsg:
		if m.screen == screenPicker {
			return m.updatePicker(msg)
		}
		return m.updateMenu(msg)
	}
	return m, nil
}

func (m SimModel) updateMenu(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit

	case "up", "k":
		m.root.Prev()

	case "down", "j":
		m.root.Next()

	case "r":
		m.rescan()

	case "enter", " ":
		if m.root.FocusIndex() == 0 && m.reg.CreateFocused() {
			m.picker = newPickerState(m.step, m.reg.FreeCapacity())
			m.screen = screenPicker
			return m, nil
		}
		if _, err := m.root.Activate(m.ctx); err != nil {
			m.log.Warn().Err(err).Msg("activation failed")
			m.status.set(statusForError(err), true)
		}
	}
	return m, nil
}

func (m SimModel) updatePicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit

	case "esc", "q":
		m.screen = screenMenu

	case "up", "k":
		m.picker.up()

	case "down", "j":
		m.picker.down()

	case "enter", " ":
		m.screen = screenMenu
		if m.picker.cancel {
			return m, nil
		}
		info, err := m.reg.AddDrive(m.ctx, "", m.picker.size)
		if err != nil {
			m.log.Warn().Err(err).Msg("create failed")
			m.status.set(statusForError(err), true)
			return m, nil
		}
		m.status.set("created "+info.Name, false)
	}
	return m, nil
}

func (m SimModel) rescan() {
	if err := m.reg.Rebuild(m.ctx); err != nil {
		if errors.Is(err, vdrive.ErrCorruptVolume) {
			m.log.Warn().Err(err).Msg("rescan skipped corrupt volumes")
			m.status.set("skipped corrupt volume", true)
		} else {
			m.log.Error().Err(err).Msg("rescan failed")
			m.status.set("pool unavailable", true)
			return
		}
	} else {
		m.status.set("rescanned", false)
	}
	known := make(map[vdrive.VolumeID]bool, m.reg.Len())
	for _, d := range m.reg.Drives() {
		known[d.ID] = true
	}
	for id := range m.hidden {
		if !known[id] {
			delete(m.hidden, id)
		}
	}
}

// View implements tea.Model.
func (m SimModel) View() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render(version.GetAppTitle()) + "\n\n")
	s.WriteString(panelStyle.Render(m.renderPanel()) + "\n")

	if m.status.active() {
		if m.status.isErr {
			s.WriteString(errorStyle.Render(m.status.text) + "\n")
		} else {
			s.WriteString(okStyle.Render(m.status.text) + "\n")
		}
	}

	s.WriteString(m.renderHelp())

	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, s.String())
}

func (m SimModel) renderPanel() string {
	frame := display.NewBitmap(simWidth, simHeight)
	switch m.screen {
	case screenPicker:
		frame.Blit(m.picker.frame(m.ts), 0, 0)
	default:
		frame.Blit(m.root.Render(true), 0, 0)
	}
	return renderBitmap(frame)
}

func (m SimModel) renderHelp() string {
	if m.screen == screenPicker {
		return helpStyle.Render("↑/↓: size • enter: confirm • esc: back")
	}
	return helpStyle.Render("↑/↓: navigate • enter: select • r: rescan • q: quit")
}

// renderBitmap packs two pixel rows into every terminal line with
// half-block runes.
func renderBitmap(b *display.Bitmap) string {
	lines := make([]string, 0, b.Height()/2)
	for y := 0; y < b.Height(); y += 2 {
		var row strings.Builder
		for x := 0; x < b.Width(); x++ {
			top := b.On(x, y)
			bottom := b.On(x, y+1)
			switch {
			case top && bottom:
				row.WriteRune('█')
			case top:
				row.WriteRune('▀')
			case bottom:
				row.WriteRune('▄')
			default:
				row.WriteRune(' ')
			}
		}
		lines = append(lines, row.String())
	}
	return strings.Join(lines, "\n")
}
