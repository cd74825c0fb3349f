package server

import (
	"github.com/ironsheep/vision-demo-mcp/internal/events"
)

// logLevels maps toast severities onto MCP logging levels.
var logLevels = map[events.Severity]string{
	events.SeverityInfo:    "info",
	events.SeveritySuccess: "notice",
	events.SeverityError:   "error",
}

func (s *Server) forwardNotification(n events.Notification) {
	level, ok := logLevels[n.Severity]
	if !ok {
		level = "info"
	}
	s.notify("notifications/message", map[string]interface{}{
		"level":  level,
		"logger": ServerName,
		"data": map[string]interface{}{
			"message":          n.Message,
			"severity":         n.Severity,
			"dismiss_after_ms": n.DismissAfterMS,
		},
	})
}

// forwardProgress reports pipeline progress against the token of the
// current tools/call. Without a token the client did not ask for progress.
func (s *Server) forwardProgress(p events.Progress) {
	s.tokenMu.Lock()
	token := s.progressToken
	s.tokenMu.Unlock()
	if token == nil {
		return
	}

	s.notify("notifications/progress", map[string]interface{}{
		"progressToken": token,
		"progress":      p.Percent,
		"total":         100,
		"message":       p.Label,
	})
}

func (s *Server) setProgressToken(token interface{}) {
	s.tokenMu.Lock()
	s.progressToken = token
	s.tokenMu.Unlock()
}
