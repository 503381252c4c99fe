package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/1broseidon/webshim/internal/ipc"
)

var (
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(12)
	valueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("15"))
	topStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("62"))
	errStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)

	sectionStyle = lipgloss.NewStyle().
			Padding(1, 2)
)

// renderStatusBar renders the connection status bar.
func renderStatusBar(connected bool, st *ipc.StatusData, width int) string {
	var status string
	if connected && st != nil {
		color := lipgloss.Color("42")
		if st.State != "running" {
			color = lipgloss.Color("214")
		}
		dot := lipgloss.NewStyle().Foreground(color).Render("●")
		parts := []string{dot + " " + st.State, "mode:" + st.Mode}
		if st.Animating {
			parts = append(parts, "animating")
		}
		status = strings.Join(parts, "  ")
	} else {
		dot := lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Render("●")
		status = dot + " webshim not running"
	}

	style := lipgloss.NewStyle().
		Width(width).
		Background(lipgloss.Color("235")).
		Foreground(lipgloss.Color("250")).
		Padding(0, 1)
	return style.Render(status)
}

func row(label, value string) string {
	return lipgloss.JoinHorizontal(lipgloss.Top, labelStyle.Render(label), valueStyle.Render(value))
}

// renderDetails renders the viewport, counters and view list.
func renderDetails(st *ipc.StatusData, views []ipc.ViewInfo, fps float64, width int) string {
	vp := st.Viewport
	lines := []string{
		row("viewport", fmt.Sprintf("%dx%d @%gx", vp.Size.X, vp.Size.Y, vp.HiDPIScale)),
		row("screen", fmt.Sprintf("%dx%d (avail %dx%d)", vp.Screen.X, vp.Screen.Y, vp.AvailableScreen.X, vp.AvailableScreen.Y)),
		row("frames", fmt.Sprintf("%d (%.1f fps, %d dropped)", st.Frames, fps, st.Dropped)),
		row("submits", fmt.Sprintf("%d", st.Submits)),
		row("wakes", fmt.Sprintf("%d", st.Wakes)),
		row("uptime", (time.Duration(st.UptimeSeconds) * time.Second).String()),
		"",
	}

	if len(views) == 0 {
		lines = append(lines, labelStyle.Render("no views"))
	}
	for _, v := range views {
		label := fmt.Sprintf("view %d", v.ID)
		if !v.Top {
			lines = append(lines, row(label, ""))
			continue
		}
		desc := v.Title
		if v.URL != "" {
			desc = strings.TrimSpace(desc + "  " + v.URL)
		}
		lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top, labelStyle.Render(label), topStyle.Render("▶ "+desc)))
	}

	return sectionStyle.Width(width).Render(strings.Join(lines, "\n"))
}

// renderPlaceholder renders centered placeholder content.
func renderPlaceholder(msg string, width, height int) string {
	style := lipgloss.NewStyle().
		Width(width).
		Height(height).
		Foreground(lipgloss.Color("241")).
		Align(lipgloss.Center, lipgloss.Center)
	return style.Render(msg)
}

// renderHelpBar renders the bottom help/keybinding bar.
func renderHelpBar(width int) string {
	help := "r: refresh  x: close window  q/ctrl-c: quit"
	style := lipgloss.NewStyle().
		Width(width).
		Foreground(lipgloss.Color("241")).
		Padding(0, 1)
	return style.Render(help)
}
