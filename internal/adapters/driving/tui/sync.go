// Package tui renders a live progress view for batch syncs.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/opus/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/opus/internal/core/domain"
	"github.com/custodia-labs/opus/internal/core/ports/driving"
)

const maxBarWidth = 60

// ProgressMsg reports that done of total tracks have been processed.
type ProgressMsg struct {
	Done  int
	Total int
}

// DoneMsg reports the end of a sync.
type DoneMsg struct {
	Report domain.SyncReport
	Err    error
}

// SyncModel is the bubbletea model of a running sync.
type SyncModel struct {
	styles *styles.Styles
	keys   KeyMap
	bar    progress.Model
	cancel context.CancelFunc

	done       int
	total      int
	finished   bool
	cancelling bool
	report     domain.SyncReport
	err        error
}

// NewSyncModel creates a model for a batch of total tracks. cancel is called
// when the user asks to stop.
func NewSyncModel(total int, cancel context.CancelFunc, s *styles.Styles) *SyncModel {
	if s == nil {
		s = styles.DefaultStyles()
	}
	theme := s.Theme()

	return &SyncModel{
		styles: s,
		keys:   DefaultKeyMap(),
		bar: progress.New(
			progress.WithGradient(string(theme.BarStart), string(theme.BarEnd)),
			progress.WithWidth(maxBarWidth),
			progress.WithoutPercentage(),
		),
		cancel: cancel,
		total:  total,
	}
}

// Init implements tea.Model.
func (m *SyncModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *SyncModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Cancel) && !m.cancelling && !m.finished {
			m.cancelling = true
			if m.cancel != nil {
				m.cancel()
			}
		}
	case tea.WindowSizeMsg:
		m.bar.Width = min(maxBarWidth, max(10, msg.Width-20))
	case ProgressMsg:
		m.done = msg.Done
		m.total = msg.Total
	case DoneMsg:
		m.finished = true
		m.report = msg.Report
		m.err = msg.Err
		return m, tea.Quit
	}
	return m, nil
}

// View implements tea.Model.
func (m *SyncModel) View() string {
	if m.finished {
		return m.summary() + "\n"
	}

	var b strings.Builder
	b.WriteString(m.styles.Title.Render(fmt.Sprintf("Syncing %d tracks", m.total)))
	b.WriteString("\n\n  ")
	b.WriteString(m.bar.ViewAs(m.Percent()))
	b.WriteString(m.styles.Muted.Render(fmt.Sprintf("  %d/%d", m.done, m.total)))
	b.WriteString("\n\n  ")
	if m.cancelling {
		b.WriteString(m.styles.Warning.Render("Cancelling after the current track..."))
	} else {
		b.WriteString(m.styles.Help.Render(m.keys.Cancel.Help().Key + " " + m.keys.Cancel.Help().Desc))
	}
	b.WriteString("\n")
	return b.String()
}

// Percent returns the completed fraction in [0,1].
func (m *SyncModel) Percent() float64 {
	if m.total <= 0 {
		return 0
	}
	return float64(m.done) / float64(m.total)
}

func (m *SyncModel) summary() string {
	if m.err != nil {
		return m.styles.Error.Render(fmt.Sprintf("Sync stopped after %d/%d tracks: %v", m.done, m.total, m.err))
	}
	r := m.report
	return m.styles.Success.Render(fmt.Sprintf("Processed %d tracks:", r.TotalProcessed)) +
		fmt.Sprintf(" %d added, %d existing, %d skipped.", r.Added, r.Existing, r.Skipped)
}

type syncResult struct {
	report domain.SyncReport
	err    error
}

// RunSync runs a sync behind the progress view and returns its report.
// Cancelling from the view cancels the sync's context.
func RunSync(
	ctx context.Context,
	svc driving.SyncService,
	tracks []domain.TrackInput,
	opts ...tea.ProgramOption,
) (domain.SyncReport, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(NewSyncModel(len(tracks), cancel, nil), opts...)

	results := make(chan syncResult, 1)
	go func() {
		report, err := svc.SyncWithProgress(ctx, tracks, func(done, total int) {
			p.Send(ProgressMsg{Done: done, Total: total})
		})
		p.Send(DoneMsg{Report: report, Err: err})
		results <- syncResult{report: report, err: err}
	}()

	if _, err := p.Run(); err != nil {
		cancel()
		<-results
		return domain.SyncReport{}, fmt.Errorf("running progress view: %w", err)
	}

	res := <-results
	return res.report, res.err
}
