package login

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/deemkeen/plaza/api"
	"github.com/deemkeen/plaza/domain"
	"github.com/deemkeen/plaza/ui/common"
	"github.com/deemkeen/plaza/util"
	"log"
)

var (
	Style = lipgloss.NewStyle().Height(25).Width(80).
		Align(lipgloss.Center, lipgloss.Center).
		BorderStyle(lipgloss.ThickBorder()).
		Margin(0, 3)
)

type Model struct {
	Username textinput.Model
	Password textinput.Model
	Step     int // 0=username, 1=password
	Busy     bool
	Error    string
	client   *api.Client
}

func InitialModel(client *api.Client) Model {
	username := textinput.New()
	username.Placeholder = "username"
	username.Focus()
	username.CharLimit = 50
	username.Width = 30

	password := textinput.New()
	password.Placeholder = "password"
	password.CharLimit = 100
	password.Width = 30
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '*'

	return Model{
		Username: username,
		Password: password,
		Step:     0,
		client:   client,
	}
}

func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case loginResultMsg:
		m.Busy = false
		if msg.err != nil {
			m.Error = loginErrorText(msg.err)
			m.Password.SetValue("")
			m.Step = 0
			m.Username.Focus()
			m.Password.Blur()
			return m, nil
		}
		m.Error = ""
		return m, func() tea.Msg {
			return common.SessionStartedMsg{Session: msg.session}
		}

	case tea.KeyMsg:
		if m.Busy {
			return m, nil
		}
		switch msg.String() {
		case "enter":
			if m.Step == 0 {
				if strings.TrimSpace(m.Username.Value()) == "" {
					m.Error = "Please enter a username"
					return m, nil
				}
				m.Step = 1
				m.Error = ""
				m.Password.Focus()
				m.Username.Blur()
				return m, nil
			}
			if m.Password.Value() == "" {
				m.Error = "Please enter a password"
				return m, nil
			}
			m.Busy = true
			m.Error = ""
			return m, loginCmd(m.client, strings.TrimSpace(m.Username.Value()), m.Password.Value())
		case "esc":
			m.Step = 0
			m.Error = ""
			m.Password.SetValue("")
			m.Username.Focus()
			m.Password.Blur()
			return m, nil
		}
	}

	switch m.Step {
	case 0:
		m.Username, cmd = m.Username.Update(msg)
	case 1:
		m.Password, cmd = m.Password.Update(msg)
	}

	return m, cmd
}

func (m Model) View() string {
	var prompt string
	var input string
	var help string

	switch m.Step {
	case 0:
		prompt = "Log in to your account:"
		input = m.Username.View()
		help = "(enter to continue, ctrl-r to register, ctrl-c to quit)"
	case 1:
		prompt = fmt.Sprintf("Username: %s\n\nPassword:", m.Username.Value())
		input = m.Password.View()
		help = "(enter to log in, esc to go back, ctrl-c to quit)"
	}

	status := ""
	if m.Busy {
		status = "\n\nLogging in..."
	}
	if m.Error != "" {
		status = "\n\n" + common.ErrorStyle.Render(m.Error)
	}

	return fmt.Sprintf(
		"Welcome to PLAZA v%s\n\n%s\n\n%s\n\n%s%s",
		util.GetVersion(),
		prompt,
		input,
		help,
		status,
	) + "\n"
}

// ViewWithWidth renders the view centered with a border, sized to the terminal.
func (m Model) ViewWithWidth(termWidth, termHeight int) string {
	contentWidth := termWidth - 8
	if contentWidth < 40 {
		contentWidth = 40
	}

	bordered := Style.Width(contentWidth).Render(m.View())
	return lipgloss.Place(termWidth, termHeight, lipgloss.Center, lipgloss.Center, bordered)
}

// loginResultMsg is sent when the login call completes
type loginResultMsg struct {
	session domain.Session
	err     error
}

func loginCmd(client *api.Client, username, password string) tea.Cmd {
	return func() tea.Msg {
		sess, err := client.Login(context.Background(), username, password)
		if err != nil {
			log.Printf("Login failed for %s: %v", username, err)
			return loginResultMsg{err: err}
		}
		return loginResultMsg{session: *sess}
	}
}

func loginErrorText(err error) string {
	if api.IsUnauthorized(err) {
		return "Invalid username or password"
	}
	return fmt.Sprintf("Login failed: %v", err)
}
