package register

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
	Username    textinput.Model
	Email       textinput.Model
	Password    textinput.Model
	Confirm     textinput.Model
	DisplayName textinput.Model
	Bio         textinput.Model
	Step        int // 0=username, 1=email, 2=password, 3=confirm, 4=display name, 5=bio
	Busy        bool
	Error       string
	client      *api.Client
}

func InitialModel(client *api.Client) Model {
	username := textinput.New()
	username.Placeholder = "ElonMusk666"
	username.Focus()
	username.CharLimit = 50
	username.Width = 30

	email := textinput.New()
	email.Placeholder = "elon@example.com"
	email.CharLimit = 100
	email.Width = 40

	password := textinput.New()
	password.Placeholder = "password"
	password.CharLimit = 100
	password.Width = 30
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '*'

	confirm := textinput.New()
	confirm.Placeholder = "repeat password"
	confirm.CharLimit = 100
	confirm.Width = 30
	confirm.EchoMode = textinput.EchoPassword
	confirm.EchoCharacter = '*'

	displayName := textinput.New()
	displayName.Placeholder = "John Doe"
	displayName.CharLimit = 50
	displayName.Width = 50

	bio := textinput.New()
	bio.Placeholder = "CEO of X, Tesla, SpaceX..."
	bio.CharLimit = 200
	bio.Width = 60

	return Model{
		Username:    username,
		Email:       email,
		Password:    password,
		Confirm:     confirm,
		DisplayName: displayName,
		Bio:         bio,
		Step:        0,
		client:      client,
	}
}

func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m *Model) focusStep() {
	inputs := []*textinput.Model{&m.Username, &m.Email, &m.Password, &m.Confirm, &m.DisplayName, &m.Bio}
	for i, in := range inputs {
		if i == m.Step {
			in.Focus()
		} else {
			in.Blur()
		}
	}
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case registerResultMsg:
		m.Busy = false
		if msg.err != nil {
			m.Error = registerErrorText(msg.err)
			m.Step = 0
			m.focusStep()
			return m, nil
		}
		return m, tea.Batch(
			func() tea.Msg {
				return common.NoticeMsg{Text: fmt.Sprintf("Account @%s created, you can log in now", msg.user.Username)}
			},
			func() tea.Msg { return common.LoginView },
		)

	case tea.KeyMsg:
		if m.Busy {
			return m, nil
		}
		switch msg.String() {
		case "enter":
			switch m.Step {
			case 0:
				if strings.TrimSpace(m.Username.Value()) == "" {
					m.Error = "Please choose a username"
					return m, nil
				}
			case 1:
				if strings.TrimSpace(m.Email.Value()) == "" {
					m.Error = "Please enter an email address"
					return m, nil
				}
			case 2:
				if m.Password.Value() == "" {
					m.Error = "Please choose a password"
					return m, nil
				}
			case 3:
				if m.Confirm.Value() != m.Password.Value() {
					m.Error = "Passwords do not match"
					m.Confirm.SetValue("")
					return m, nil
				}
			}
			if m.Step < 5 {
				m.Step++
				m.Error = ""
				m.focusStep()
				return m, nil
			}
			m.Busy = true
			m.Error = ""
			req := domain.UserRequest{
				Username:    strings.TrimSpace(m.Username.Value()),
				Email:       strings.TrimSpace(m.Email.Value()),
				Password:    m.Password.Value(),
				DisplayName: strings.TrimSpace(m.DisplayName.Value()),
				Bio:         strings.TrimSpace(m.Bio.Value()),
			}
			return m, registerCmd(m.client, req)
		case "esc":
			if m.Step > 0 {
				m.Step--
				m.Error = ""
				m.focusStep()
			}
			return m, nil
		}
	}

	switch m.Step {
	case 0:
		m.Username, cmd = m.Username.Update(msg)
	case 1:
		m.Email, cmd = m.Email.Update(msg)
	case 2:
		m.Password, cmd = m.Password.Update(msg)
	case 3:
		m.Confirm, cmd = m.Confirm.Update(msg)
	case 4:
		m.DisplayName, cmd = m.DisplayName.Update(msg)
	case 5:
		m.Bio, cmd = m.Bio.Update(msg)
	}

	return m, cmd
}

func (m Model) View() string {
	var prompt string
	var input string
	var help string

	switch m.Step {
	case 0:
		prompt = "Choose a username, please choose wisely!"
		input = m.Username.View()
		help = "(enter to continue, ctrl-c to quit)"
	case 1:
		prompt = fmt.Sprintf("Username: %s\n\nYour email address:", m.Username.Value())
		input = m.Email.View()
		help = "(enter to continue, esc to go back)"
	case 2:
		prompt = "Choose a password:"
		input = m.Password.View()
		help = "(enter to continue, esc to go back)"
	case 3:
		prompt = "Repeat the password:"
		input = m.Confirm.View()
		help = "(enter to continue, esc to go back)"
	case 4:
		prompt = "Choose your display name (optional):"
		input = m.DisplayName.View()
		help = "(enter to continue, leave empty to skip)"
	case 5:
		prompt = fmt.Sprintf("Username: %s\nDisplay name: %s\n\nWrite a short bio (optional):",
			m.Username.Value(),
			m.DisplayName.Value())
		input = m.Bio.View()
		help = "(enter to register, esc to go back)"
	}

	status := ""
	if m.Busy {
		status = "\n\nCreating account..."
	}
	if m.Error != "" {
		status = "\n\n" + common.ErrorStyle.Render(m.Error)
	}

	return fmt.Sprintf(
		"Register on PLAZA v%s\n\n%s\n\n%s\n\n%s%s",
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

// registerResultMsg is sent when the register call completes
type registerResultMsg struct {
	user domain.User
	err  error
}

func registerCmd(client *api.Client, req domain.UserRequest) tea.Cmd {
	return func() tea.Msg {
		user, err := client.Register(context.Background(), req)
		if err != nil {
			log.Printf("Registration failed for %s: %v", req.Username, err)
			return registerResultMsg{err: err}
		}
		return registerResultMsg{user: user}
	}
}

func registerErrorText(err error) string {
	if api.IsConflict(err) {
		return "Username or email is already taken"
	}
	return fmt.Sprintf("Registration failed: %v", err)
}
