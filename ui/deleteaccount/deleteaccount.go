package deleteaccount

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/deemkeen/plaza/data"
	"github.com/deemkeen/plaza/domain"
	"github.com/deemkeen/plaza/ui/common"
	"log"
)

var (
	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(common.COLOR_RED)).
			Bold(true)

	confirmStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(common.COLOR_BLUE))

	instructionStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color(common.COLOR_DARK_GREY))
)

type Model struct {
	ConfirmStep    int // 0 = initial, 1 = final confirmation
	Status         string
	Error          string
	DeletionStatus string
	ShowByeBye     bool
	me             domain.User
	stores         *data.Stores
}

func InitialModel(me domain.User, stores *data.Stores) Model {
	return Model{
		ConfirmStep: 0,
		me:          me,
		stores:      stores,
	}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case clearStatusMsg:
		m.Status = ""
		m.Error = ""
		return m, nil

	case showByeByeMsg:
		m.ShowByeBye = true
		return m, tea.Tick(2*time.Second, func(t time.Time) tea.Msg {
			return tea.Quit()
		})

	case deleteAccountResultMsg:
		if msg.err != nil {
			m.Error = fmt.Sprintf("Failed to delete account: %v", msg.err)
			m.ConfirmStep = 0
		} else {
			m.DeletionStatus = "completed"
			return m, tea.Tick(2*time.Second, func(t time.Time) tea.Msg {
				return showByeByeMsg{}
			})
		}
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "y", "Y":
			if m.ConfirmStep == 0 {
				m.ConfirmStep = 1
				m.Status = ""
				return m, nil
			} else if m.ConfirmStep == 1 {
				m.Status = "Deleting account..."
				return m, deleteAccountCmd(m.stores, m.me.Id)
			}
		case "n", "N", "esc":
			m.ConfirmStep = 0
			m.Status = "Deletion cancelled"
			m.Error = ""
			return m, clearStatusAfter(2 * time.Second)
		}
	}

	return m, nil
}

func (m Model) View() string {
	var s strings.Builder

	s.WriteString(common.CaptionStyle.Render("delete account"))
	s.WriteString("\n\n")

	if m.ShowByeBye {
		byeStyle := lipgloss.NewStyle().
			Foreground(lipgloss.Color(common.COLOR_GREEN)).
			Bold(true).
			Align(lipgloss.Center)
		s.WriteString("\n\n")
		s.WriteString(byeStyle.Render("Bye bye!"))
		s.WriteString("\n\n")
		return s.String()
	}

	if m.DeletionStatus == "completed" {
		s.WriteString(confirmStyle.Render("✓ Account deleted successfully"))
		s.WriteString("\n\n")
		s.WriteString(instructionStyle.Render("Logging out..."))
		return s.String()
	}

	if m.ConfirmStep == 0 {
		s.WriteString(warningStyle.Render("⚠ WARNING: This will permanently delete your account!"))
		s.WriteString("\n\n")
		s.WriteString("The following data will be deleted:\n")
		s.WriteString("  • Your account (@" + m.me.Username + ")\n")
		s.WriteString("  • All your posts and comments\n")
		s.WriteString("  • All friendships and requests\n")
		s.WriteString("\n")
		s.WriteString(warningStyle.Render("This action CANNOT be undone!"))
		s.WriteString("\n\n")
		s.WriteString("Are you sure you want to delete your account?\n\n")
		s.WriteString(instructionStyle.Render("Press 'y' to continue or 'n'/'esc' to cancel"))
	} else if m.ConfirmStep == 1 {
		s.WriteString(warningStyle.Render("⚠ FINAL WARNING!"))
		s.WriteString("\n\n")
		s.WriteString("You are about to permanently delete account: ")
		s.WriteString(warningStyle.Render("@" + m.me.Username))
		s.WriteString("\n\n")
		s.WriteString("This is your last chance to cancel.\n")
		s.WriteString("After this, your account and all data will be gone forever.\n\n")
		s.WriteString(instructionStyle.Render("Press 'y' to DELETE PERMANENTLY or 'n'/'esc' to cancel"))
	}

	s.WriteString("\n\n")

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

// clearStatusMsg is sent after a delay to clear status/error messages
type clearStatusMsg struct{}

// showByeByeMsg is sent after deletion to show goodbye message
type showByeByeMsg struct{}

// deleteAccountResultMsg is sent when the delete operation completes
type deleteAccountResultMsg struct {
	err error
}

func clearStatusAfter(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return clearStatusMsg{}
	})
}

func deleteAccountCmd(stores *data.Stores, userId int64) tea.Cmd {
	return func() tea.Msg {
		err := stores.Users.DeleteAccount(context.Background(), userId)
		if err != nil {
			log.Printf("Failed to delete account %d: %v", userId, err)
		} else {
			log.Printf("Successfully deleted account %d", userId)
		}
		return deleteAccountResultMsg{err: err}
	}
}
