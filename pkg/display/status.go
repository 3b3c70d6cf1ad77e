package display

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"gopkg.in/yaml.v3"

	"github.com/deskctl/deskctl/pkg/errors"
	"github.com/deskctl/deskctl/pkg/supervisor"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true)
	labelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("6")).Width(10)
	runningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Bold(true)
	stoppedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
	mutedStyle   = lipgloss.NewStyle().Faint(true)
)

// RenderStatus renders a session status in the requested format. Colored
// only applies to the text format.
func RenderStatus(st *supervisor.Status, format Format, colored bool) (string, error) {
	switch format {
	case FormatJSON:
		out, err := json.MarshalIndent(st, "", "  ")
		if err != nil {
			return "", errors.Wrap(err, errors.ErrInternal, "failed to marshal status")
		}
		return string(out) + "\n", nil
	case FormatYAML:
		out, err := yaml.Marshal(st)
		if err != nil {
			return "", errors.Wrap(err, errors.ErrInternal, "failed to marshal status")
		}
		return string(out), nil
	default:
		return renderStatusText(st, colored), nil
	}
}

func renderStatusText(st *supervisor.Status, colored bool) string {
	var b strings.Builder

	row := func(label, value string) {
		if colored {
			b.WriteString(labelStyle.Render(label) + " " + value + "\n")
		} else {
			b.WriteString(fmt.Sprintf("%-10s %s\n", label, value))
		}
	}

	title := fmt.Sprintf("Desktop session %s", st.Display)
	state := "stopped"
	if st.Running {
		state = "running"
	}

	if colored {
		b.WriteString(titleStyle.Render(title) + "\n")
		if st.Running {
			row("state", runningStyle.Render(state))
		} else {
			row("state", stoppedStyle.Render(state))
		}
	} else {
		b.WriteString(title + "\n")
		row("state", state)
	}

	if st.Name != "" {
		row("name", st.Name)
	}
	if st.User != "" {
		row("user", st.User)
	}

	if st.Running {
		row("pid", fmt.Sprintf("%d", st.PID))
		if up := st.Uptime(); up > 0 {
			row("uptime", formatDuration(up))
		}
		row("cpu", fmt.Sprintf("%.1f%%", st.CPUPct))
		if st.RSSBytes > 0 {
			row("memory", formatBytes(st.RSSBytes))
		}
	} else if colored {
		b.WriteString(mutedStyle.Render("Use 'deskctl start' to launch it.") + "\n")
	}

	return b.String()
}

// formatDuration prints a duration in the largest two useful units.
func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	switch {
	case d >= 24*time.Hour:
		days := d / (24 * time.Hour)
		hours := (d % (24 * time.Hour)) / time.Hour
		return fmt.Sprintf("%dd%dh", days, hours)
	case d >= time.Hour:
		return fmt.Sprintf("%dh%dm", d/time.Hour, (d%time.Hour)/time.Minute)
	case d >= time.Minute:
		return fmt.Sprintf("%dm%ds", d/time.Minute, (d%time.Minute)/time.Second)
	default:
		return fmt.Sprintf("%ds", d/time.Second)
	}
}

// formatBytes prints a byte count in binary units.
func formatBytes(n uint64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := uint64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
