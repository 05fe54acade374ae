// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/Thermoquad/conterm/pkg/conterm"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

const (
	monitorMaxLogLines = 500
	monitorTopKeys     = 8
	monitorBarWidth    = 30
)

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Live key statistics in a terminal UI",
	Long: `Decode the console key stream and show live statistics: event and unknown
rates, a per-key histogram and a scrolling log of recent keys.

The monitor needs this terminal for its own display, so it cannot be used
with --stdin.`,
	RunE: runMonitor,
}

func init() {
	rootCmd.AddCommand(monitorCmd)
}

// Messages
type monitorTickMsg time.Time
type keyEventMsg struct {
	at  time.Time
	ev  conterm.KeyEvent
	raw []byte
}
type streamEndMsg struct {
	err error
}

type monitorKeyMap struct {
	Quit  key.Binding
	Reset key.Binding
}

var monitorKeys = monitorKeyMap{
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
	Reset: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "reset stats"),
	),
}

// monitorModel is the live statistics TUI
type monitorModel struct {
	connInfo string
	stats    *conterm.Statistics
	logView  viewport.Model
	logLines []string
	width    int
	height   int
	ended    bool
	endErr   error
	quitting bool
}

func newMonitorModel(connInfo string) monitorModel {
	return monitorModel{
		connInfo: connInfo,
		stats:    conterm.NewStatistics(),
		logView:  viewport.New(76, 10),
		width:    80,
		height:   24,
	}
}

func (m monitorModel) Init() tea.Cmd {
	return tea.Batch(
		monitorTickCmd(),
		tea.EnterAltScreen,
	)
}

func monitorTickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return monitorTickMsg(t)
	})
}

func (m monitorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, monitorKeys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, monitorKeys.Reset):
			m.stats.Reset()
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resizeLog()

	case monitorTickMsg:
		m.stats.CalculateRates()
		return m, monitorTickCmd()

	case keyEventMsg:
		m.stats.Record(msg.ev, msg.raw)
		m.addLogLine(conterm.FormatEventAt(msg.at, msg.ev, msg.raw))
		return m, nil

	case streamEndMsg:
		m.ended = true
		m.endErr = msg.err
		if msg.err != nil && !endOfStream(msg.err) {
			m.addLogLine(fmt.Sprintf("read error: %v\n", msg.err))
		} else {
			m.addLogLine("connection closed\n")
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.logView, cmd = m.logView.Update(msg)
	return m, cmd
}

// addLogLine appends a line, keeps the log bounded and follows the tail
// unless the user has scrolled up
func (m *monitorModel) addLogLine(line string) {
	follow := m.logView.AtBottom()
	m.logLines = append(m.logLines, strings.TrimRight(line, "\n"))
	if len(m.logLines) > monitorMaxLogLines {
		m.logLines = m.logLines[len(m.logLines)-monitorMaxLogLines:]
	}
	m.logView.SetContent(strings.Join(m.logLines, "\n"))
	if follow {
		m.logView.GotoBottom()
	}
}

// resizeLog gives the event log whatever the stats panels leave over
func (m *monitorModel) resizeLog() {
	logHeight := m.height - 18 - monitorTopKeys
	if logHeight < 5 {
		logHeight = 5
	}
	m.logView.Width = m.width - 4
	m.logView.Height = logHeight
}

// histogram renders TopKeys as horizontal bars
func histogram(stats *conterm.Statistics, n, width int) []string {
	top := stats.TopKeys(n)
	if len(top) == 0 {
		return nil
	}
	peak := top[0].Count
	lines := make([]string, 0, len(top))
	for _, kc := range top {
		bar := int(kc.Count * uint64(width) / peak)
		if bar == 0 {
			bar = 1
		}
		lines = append(lines, fmt.Sprintf("%-10s %s %d", kc.Key, strings.Repeat("█", bar), kc.Count))
	}
	return lines
}

func (m monitorModel) View() string {
	if m.quitting {
		return "Shutting down...\n"
	}

	// Styles
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("12")).
		Background(lipgloss.Color("235")).
		Padding(0, 1)

	headerStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241"))

	labelStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("12")).
		Bold(true)

	valueStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("10"))

	errorStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("9")).
		Bold(true)

	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1)

	var s strings.Builder
	s.WriteString(titleStyle.Render("CONTERM - KEY MONITOR"))
	s.WriteString("\n")
	s.WriteString(headerStyle.Render(fmt.Sprintf("%s | %s, %s",
		m.connInfo, monitorKeys.Quit.Help().Desc, monitorKeys.Reset.Help().Desc)))
	s.WriteString("\n")
	if m.ended {
		s.WriteString(errorStyle.Render("Stream ended"))
	}
	s.WriteString("\n")

	// Statistics
	st := m.stats
	statsContent := strings.Builder{}
	statsContent.WriteString(fmt.Sprintf("%s %s   %s %s   %s %s\n",
		labelStyle.Render("Events:"), valueStyle.Render(fmt.Sprintf("%d", st.TotalEvents)),
		labelStyle.Render("Bytes:"), valueStyle.Render(fmt.Sprintf("%d", st.BytesConsumed)),
		labelStyle.Render("Unknown:"), func() string {
			if st.Unknown > 0 {
				return errorStyle.Render(fmt.Sprintf("%d", st.Unknown))
			}
			return valueStyle.Render("0")
		}(),
	))
	statsContent.WriteString(fmt.Sprintf("%s %d   %s %d   %s %d   %s %d   %s %d\n",
		labelStyle.Render("Printable:"), st.Printable,
		labelStyle.Render("Control:"), st.Control,
		labelStyle.Render("Nav:"), st.Navigation,
		labelStyle.Render("Esc:"), st.Escapes,
		labelStyle.Render("Multi-byte:"), st.EscapeSequences,
	))
	statsContent.WriteString(fmt.Sprintf("%s %s   %s %s",
		labelStyle.Render("Key Rate:"), valueStyle.Render(fmt.Sprintf("%.1f keys/s", st.EventRate)),
		labelStyle.Render("Unknown Rate:"), valueStyle.Render(fmt.Sprintf("%.1f keys/s", st.UnknownRate)),
	))
	s.WriteString(boxStyle.Render(statsContent.String()))
	s.WriteString("\n")

	// Histogram
	s.WriteString(labelStyle.Render("Top Keys:"))
	s.WriteString("\n")
	bars := histogram(st, monitorTopKeys, monitorBarWidth)
	if len(bars) == 0 {
		s.WriteString(boxStyle.Render(headerStyle.Render("(no keys yet)")))
	} else {
		s.WriteString(boxStyle.Render(strings.Join(bars, "\n")))
	}
	s.WriteString("\n")

	// Event log
	s.WriteString(labelStyle.Render("Recent Keys:"))
	s.WriteString("\n")
	s.WriteString(boxStyle.Width(m.width - 2).Render(m.logView.View()))

	return s.String()
}

func runMonitor(cmd *cobra.Command, args []string) error {
	if useStdin {
		return fmt.Errorf("monitor cannot use --stdin; use keylog --stdin instead")
	}

	conn, connInfo, err := OpenConnection()
	if err != nil {
		return err
	}
	defer conn.Close()

	src := newByteSource(conn)
	session := conterm.NewSession(src, conn, sessionConfig())

	p := tea.NewProgram(newMonitorModel(connInfo))

	// Key reader goroutine
	go func() {
		for {
			ev := session.ReadKey(true)
			if ev.IsNoData() {
				if err := src.Err(); err != nil {
					p.Send(streamEndMsg{err: err})
					return
				}
				continue
			}
			raw := append([]byte(nil), session.Decoder.Raw()...)
			p.Send(keyEventMsg{at: time.Now(), ev: ev, raw: raw})
		}
	}()

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %v", err)
	}
	log.Printf("Monitor finished")
	return nil
}
