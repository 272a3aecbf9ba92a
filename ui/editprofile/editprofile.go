package editprofile

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/deemkeen/plaza/data"
	"github.com/deemkeen/plaza/domain"
	"github.com/deemkeen/plaza/ui/common"
	"log"
)

type Model struct {
	DisplayName textinput.Model
	Bio         textinput.Model
	Email       textinput.Model
	Step        int // 0=display name, 1=bio, 2=email
	Busy        bool
	Status      string
	Error       string
	me          domain.User
	stores      *data.Stores
}

func InitialModel(me domain.User, stores *data.Stores) Model {
	displayName := textinput.New()
	displayName.Placeholder = "John Doe"
	displayName.SetValue(me.DisplayName)
	displayName.Focus()
	displayName.CharLimit = 50
	displayName.Width = 50

	bio := textinput.New()
	bio.Placeholder = "tell the plaza about yourself"
	bio.SetValue(me.Bio)
	bio.CharLimit = 200
	bio.Width = 60

	email := textinput.New()
	email.Placeholder = "you@example.com"
	email.SetValue(me.Email)
	email.CharLimit = 100
	email.Width = 40

	return Model{
		DisplayName: displayName,
		Bio:         bio,
		Email:       email,
		Step:        0,
		me:          me,
		stores:      stores,
	}
}

func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m *Model) focusStep() {
	inputs := []*textinput.Model{&m.DisplayName, &m.Bio, &m.Email}
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
	case profileSavedMsg:
		m.Busy = false
		if msg.err != nil {
			m.Error = fmt.Sprintf("Could not save profile: %v", msg.err)
			return m, nil
		}
		m.Error = ""
		m.Status = "✓ Profile saved"
		m.me = msg.user
		return m, func() tea.Msg {
			return common.NoticeMsg{Text: "Profile updated"}
		}

	case tea.KeyMsg:
		if m.Busy {
			return m, nil
		}
		switch msg.String() {
		case "enter":
			if m.Step < 2 {
				m.Step++
				m.Status = ""
				m.focusStep()
				return m, nil
			}
			if strings.TrimSpace(m.Email.Value()) == "" {
				m.Error = "Email cannot be empty"
				return m, nil
			}
			m.Busy = true
			m.Error = ""
			m.Status = "Saving..."
			req := domain.UserRequest{
				Username:    m.me.Username,
				Email:       strings.TrimSpace(m.Email.Value()),
				DisplayName: strings.TrimSpace(m.DisplayName.Value()),
				Bio:         strings.TrimSpace(m.Bio.Value()),
			}
			return m, saveProfile(m.stores, m.me.Id, req)
		case "esc":
			if m.Step > 0 {
				m.Step--
				m.focusStep()
			}
			return m, nil
		}
	}

	switch m.Step {
	case 0:
		m.DisplayName, cmd = m.DisplayName.Update(msg)
	case 1:
		m.Bio, cmd = m.Bio.Update(msg)
	case 2:
		m.Email, cmd = m.Email.Update(msg)
	}

	return m, cmd
}

func (m Model) View() string {
	var s strings.Builder

	s.WriteString(common.CaptionStyle.Render("edit profile"))
	s.WriteString("\n\n")

	var prompt, input, help string
	switch m.Step {
	case 0:
		prompt = "Display name:"
		input = m.DisplayName.View()
		help = "(enter to continue)"
	case 1:
		prompt = "Bio:"
		input = m.Bio.View()
		help = "(enter to continue, esc to go back)"
	case 2:
		prompt = "Email:"
		input = m.Email.View()
		help = "(enter to save, esc to go back)"
	}

	s.WriteString(prompt + "\n\n" + input + "\n\n" + help + "\n\n")

	if m.Status != "" {
		s.WriteString(common.StatusStyle.Render(m.Status))
		s.WriteString("\n")
	}
	if m.Error != "" {
		s.WriteString(common.ErrorStyle.Render(m.Error))
		s.WriteString("\n")
	}

	return s.String()
}

// profileSavedMsg is sent when the update call settled
type profileSavedMsg struct {
	user domain.User
	err  error
}

func saveProfile(stores *data.Stores, userId int64, req domain.UserRequest) tea.Cmd {
	return func() tea.Msg {
		user, err := stores.Users.UpdateProfile(context.Background(), userId, req)
		if err != nil {
			log.Printf("Failed to update profile of %d: %v", userId, err)
			return profileSavedMsg{err: err}
		}
		return profileSavedMsg{user: user}
	}
}
