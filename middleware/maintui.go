package middleware

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	bm "github.com/charmbracelet/wish/bubbletea"
	"github.com/lens-forum/app/ui"
	"github.com/lens-forum/app/ui/common"
)

// MainTui serves the forum TUI. env is shared by every session; only the
// account differs.
func MainTui(env common.Env) wish.Middleware {
	teaHandler := func(s ssh.Session) (tea.Model, []tea.ProgramOption) {
		pty, _, active := s.Pty()
		if !active {
			wish.Fatalln(s, "no active terminal, skipping")
			return nil, nil
		}

		sessionEnv := env
		sessionEnv.Account = AccountFromContext(s.Context())
		m := ui.NewModel(sessionEnv, pty.Window.Width, pty.Window.Height)
		return m, []tea.ProgramOption{tea.WithAltScreen()}
	}
	return bm.Middleware(teaHandler)
}
