package tui

import (
	"context"
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"tickethub-cli/service"
)

type loginForm struct {
	email      textinput.Model
	password   textinput.Model
	onPassword bool
	message    string
	pending    bool
}

func newLoginForm() loginForm {
	email := textinput.New()
	email.Placeholder = "you@example.com"
	email.Prompt = "Email:    "
	email.CharLimit = 128

	password := textinput.New()
	password.Placeholder = "password"
	password.Prompt = "Password: "
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '*'

	return loginForm{email: email, password: password}
}

func (f *loginForm) focus() tea.Cmd {
	if f.onPassword {
		f.email.Blur()
		f.password.Focus()
	} else {
		f.password.Blur()
		f.email.Focus()
	}
	return textinput.Blink
}

func (f loginForm) view() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Log in"))
	b.WriteString("\n\n")
	b.WriteString(f.email.View() + "\n")
	b.WriteString(f.password.View() + "\n")
	if f.pending {
		b.WriteString("\n" + hint("Logging in..."))
	}
	if f.message != "" {
		b.WriteString("\n" + errorStyle.Render(f.message))
	}
	return b.String()
}

func (m appModel) updateLogin(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.login.pending {
		return m, nil
	}
	switch msg.String() {
	case "tab", "shift+tab", "up", "down":
		m.login.onPassword = !m.login.onPassword
		cmd := m.login.focus()
		return m, cmd
	case "enter":
		if !m.login.onPassword {
			m.login.onPassword = true
			cmd := m.login.focus()
			return m, cmd
		}
		email := strings.TrimSpace(m.login.email.Value())
		password := m.login.password.Value()
		if email == "" || password == "" {
			m.login.message = "Email and password are required"
			return m, nil
		}
		m.login.message = ""
		m.login.pending = true
		manager := m.deps.Auth
		return m, func() tea.Msg {
			session, err := manager.Login(context.Background(), email, password)
			return loginMsg{session: session, err: err}
		}
	}

	var cmd tea.Cmd
	if m.login.onPassword {
		m.login.password, cmd = m.login.password.Update(msg)
	} else {
		m.login.email, cmd = m.login.email.Update(msg)
	}
	return m, cmd
}

func loginErrorMessage(err error) string {
	if service.IsUnauthorized(err) {
		return "Invalid email or password"
	}
	var apiErr *service.APIError
	if errors.As(err, &apiErr) && apiErr.Message() != "" {
		return apiErr.Message()
	}
	return err.Error()
}
