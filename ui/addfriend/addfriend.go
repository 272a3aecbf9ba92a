package addfriend

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/deemkeen/plaza/api"
	"github.com/deemkeen/plaza/data"
	"github.com/deemkeen/plaza/domain"
	"github.com/deemkeen/plaza/ui/common"
	"log"
)

var (
	Style = lipgloss.NewStyle().
		Padding(1, 2).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("63"))
)

type Model struct {
	TextInput textinput.Model
	Status    string
	Error     string
	me        domain.User
	stores    *data.Stores
}

func InitialModel(me domain.User, stores *data.Stores) Model {
	ti := textinput.New()
	ti.Placeholder = "username"
	ti.Focus()
	ti.CharLimit = 50
	ti.Width = 30

	return Model{
		TextInput: ti,
		me:        me,
		stores:    stores,
	}
}

func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case requestSentMsg:
		if msg.err != nil {
			m.Error = msg.err.Error()
			m.Status = ""
			return m, nil
		}
		m.Status = fmt.Sprintf("✓ Sent friend request to @%s", msg.username)
		m.Error = ""
		m.TextInput.SetValue("")
		return m, func() tea.Msg { return common.FriendshipsChangedMsg{} }

	case tea.KeyMsg:
		switch msg.String() {
		case "enter":
			input := strings.TrimSpace(m.TextInput.Value())
			if input == "" {
				m.Error = "Please enter a username"
				return m, nil
			}
			input = strings.TrimPrefix(input, "@")
			if input == m.me.Username {
				m.Error = "You cannot befriend yourself"
				return m, nil
			}

			m.Status = fmt.Sprintf("Sending request to @%s...", input)
			m.Error = ""
			return m, sendRequest(m.stores, m.me, input)
		case "esc":
			m.TextInput.SetValue("")
			m.Status = ""
			m.Error = ""
			return m, nil
		}
	}

	m.TextInput, cmd = m.TextInput.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	var s strings.Builder

	s.WriteString(common.CaptionStyle.Render("add friend"))
	s.WriteString("\n\n")
	s.WriteString("Enter the username you want to befriend:\n\n")
	s.WriteString(m.TextInput.View())
	s.WriteString("\n\n")

	if m.Status != "" {
		s.WriteString(common.StatusStyle.Render(m.Status))
		s.WriteString("\n")
	}

	if m.Error != "" {
		s.WriteString(common.ErrorStyle.Render(m.Error))
		s.WriteString("\n")
	}

	s.WriteString("\n")
	s.WriteString(common.HelpStyle.Render("enter: send request • esc: clear • tab: switch view"))

	return s.String()
}

// requestSentMsg is sent when the friend request call settled
type requestSentMsg struct {
	username string
	err      error
}

func sendRequest(stores *data.Stores, me domain.User, username string) tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()

		target, err := stores.Users.ByUsername(ctx, username)
		if err != nil {
			if api.IsNotFound(err) {
				return requestSentMsg{err: fmt.Errorf("user @%s does not exist", username)}
			}
			log.Printf("Failed to look up user %s: %v", username, err)
			return requestSentMsg{err: fmt.Errorf("lookup failed: %w", err)}
		}

		friendships, err := stores.Friendships.ForUser(ctx, me.Id)
		if err != nil {
			log.Printf("Failed to load friendships of %d: %v", me.Id, err)
			return requestSentMsg{err: fmt.Errorf("could not load friendships: %w", err)}
		}
		if domain.HasOpenFriendship(friendships, me.Id, target.Id) {
			return requestSentMsg{err: fmt.Errorf("there is already a friendship or open request with @%s", username)}
		}

		if _, err := stores.Friendships.Request(ctx, me, target); err != nil {
			log.Printf("Failed to send friend request to %s: %v", username, err)
			return requestSentMsg{err: fmt.Errorf("request failed: %w", err)}
		}

		return requestSentMsg{username: username}
	}
}
