package state

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// CatalogStatsMsg notifies subscribers that the root status line was
// refreshed using the latest catalog statistics.
type CatalogStatsMsg struct {
	Line string
}

// CatalogHeartbeatCmd polls the catalog service for lightweight statistics,
// updates the shared root status line, and returns a message that consumers
// can use to trigger rerenders.
func (s *State) CatalogHeartbeatCmd() tea.Cmd {
	if s == nil {
		return nil
	}

	return func() tea.Msg {
		line := formatCatalogStatus(s.Catalog)
		s.RootStatus.Set(line)
		return CatalogStatsMsg{Line: line}
	}
}

func formatCatalogStatus(svc CatalogService) string {
	if svc == nil {
		return ""
	}

	stats := svc.Stats()
	parts := []string{
		fmt.Sprintf("Catalog: %d models", stats.Records),
		fmt.Sprintf("pending %d", stats.Pending),
	}
	if !stats.LastRebuild.IsZero() {
		parts = append(parts, fmt.Sprintf("rebuilt %s", formatRebuildTime(stats.LastRebuild)))
	}

	return strings.Join(parts, " · ")
}

func formatRebuildTime(t time.Time) string {
	return t.Local().Format("15:04")
}
