package friends

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/deemkeen/plaza/cache"
	"github.com/deemkeen/plaza/data"
	"github.com/deemkeen/plaza/domain"
	"github.com/deemkeen/plaza/ui/common"
	"log"
)

var (
	sectionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(common.COLOR_LIGHTBLUE)).
			Bold(true)

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(common.COLOR_MAGENTA)).
			Bold(true)

	pendingStyle = lipgloss.NewStyle().
			Faint(true)
)

type Model struct {
	Friendships []domain.Friendship
	Cursor      int
	Loading     bool
	Error       string
	me          domain.User
	stores      *data.Stores
	width       int
	height      int
}

func InitialModel(me domain.User, stores *data.Stores, width, height int) Model {
	return Model{
		Loading: true,
		me:      me,
		stores:  stores,
		width:   width,
		height:  height,
	}
}

func (m Model) Init() tea.Cmd {
	return loadFriendships(m.stores, m.me.Id)
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case friendshipsLoadedMsg:
		m.Loading = false
		if msg.err != nil {
			m.Error = fmt.Sprintf("Could not load friendships: %v", msg.err)
			return m, nil
		}
		m.Error = ""
		m.Friendships = msg.friendships
		if incoming := domain.IncomingPending(m.Friendships, m.me.Id); m.Cursor >= len(incoming) {
			m.Cursor = 0
		}
		return m, nil

	case friendshipAnsweredMsg:
		if msg.err != nil {
			m.Error = fmt.Sprintf("Could not answer request: %v", msg.err)
			return m, nil
		}
		m.Error = ""
		return m, loadFriendships(m.stores, m.me.Id)

	case common.FriendshipsChangedMsg:
		return m, loadFriendships(m.stores, m.me.Id)

	case tea.KeyMsg:
		incoming := domain.IncomingPending(m.Friendships, m.me.Id)
		switch msg.String() {
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
			}
		case "down", "j":
			if len(incoming) > 0 && m.Cursor < len(incoming)-1 {
				m.Cursor++
			}
		case "a", "enter":
			if m.Cursor < len(incoming) && !cache.IsPlaceholderId(incoming[m.Cursor].Id) {
				return m, answerRequest(m.stores, incoming[m.Cursor], true)
			}
		case "x":
			if m.Cursor < len(incoming) && !cache.IsPlaceholderId(incoming[m.Cursor].Id) {
				return m, answerRequest(m.stores, incoming[m.Cursor], false)
			}
		case "r":
			m.stores.Friendships.Refresh(m.me.Id)
			m.Loading = true
			return m, loadFriendships(m.stores, m.me.Id)
		case "w":
			if m.Cursor < len(incoming) {
				other := incoming[m.Cursor].OtherUser(m.me.Id)
				if other.Id > 0 {
					return m, func() tea.Msg { return common.OpenWallMsg{UserId: other.Id} }
				}
			}
		}
	}
	return m, nil
}

func (m Model) View() string {
	var s strings.Builder

	incoming := domain.IncomingPending(m.Friendships, m.me.Id)
	outgoing := domain.OutgoingPending(m.Friendships, m.me.Id)
	accepted := domain.AcceptedFriendships(m.Friendships)

	s.WriteString(common.CaptionStyle.Render(fmt.Sprintf("friends (%d)", len(accepted))))
	s.WriteString("\n\n")

	if m.Error != "" {
		s.WriteString(common.ErrorStyle.Render(m.Error))
		s.WriteString("\n\n")
	}

	if m.Loading {
		s.WriteString(common.EmptyStyle.Render("Loading..."))
		return s.String()
	}

	s.WriteString(sectionStyle.Render(fmt.Sprintf("incoming requests (%d)", len(incoming))))
	s.WriteString("\n")
	if len(incoming) == 0 {
		s.WriteString(common.EmptyStyle.Render("none"))
		s.WriteString("\n")
	} else {
		for i, f := range incoming {
			line := "@" + f.Requester.Username
			if cache.IsPlaceholderId(f.Id) {
				line = pendingStyle.Render(line + " (sending...)")
			}
			if i == m.Cursor {
				s.WriteString(selectedStyle.Render("> " + line))
			} else {
				s.WriteString("  " + line)
			}
			s.WriteString("\n")
		}
	}
	s.WriteString("\n")

	s.WriteString(sectionStyle.Render(fmt.Sprintf("sent requests (%d)", len(outgoing))))
	s.WriteString("\n")
	if len(outgoing) == 0 {
		s.WriteString(common.EmptyStyle.Render("none"))
		s.WriteString("\n")
	} else {
		for _, f := range outgoing {
			line := "  @" + f.Addressee.Username
			if cache.IsPlaceholderId(f.Id) {
				line = pendingStyle.Render(line + " (sending...)")
			}
			s.WriteString(line)
			s.WriteString("\n")
		}
	}
	s.WriteString("\n")

	s.WriteString(sectionStyle.Render(fmt.Sprintf("friends (%d)", len(accepted))))
	s.WriteString("\n")
	if len(accepted) == 0 {
		s.WriteString(common.EmptyStyle.Render("No friends yet. Send a request!"))
		s.WriteString("\n")
	} else {
		for _, f := range accepted {
			other := f.OtherUser(m.me.Id)
			s.WriteString("  @" + other.Username)
			if other.DisplayName != "" {
				s.WriteString(" (" + other.DisplayName + ")")
			}
			s.WriteString("\n")
		}
	}

	return s.String()
}

// friendshipsLoadedMsg is sent when the friendship collection is loaded
type friendshipsLoadedMsg struct {
	friendships []domain.Friendship
	err         error
}

// friendshipAnsweredMsg is sent when an accept/reject call settled
type friendshipAnsweredMsg struct {
	err error
}

func loadFriendships(stores *data.Stores, userId int64) tea.Cmd {
	return func() tea.Msg {
		list, err := stores.Friendships.ForUser(context.Background(), userId)
		if err != nil {
			log.Printf("Failed to load friendships of %d: %v", userId, err)
			return friendshipsLoadedMsg{err: err}
		}
		return friendshipsLoadedMsg{friendships: list}
	}
}

func answerRequest(stores *data.Stores, f domain.Friendship, accept bool) tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		var err error
		if accept {
			_, err = stores.Friendships.Accept(ctx, f)
		} else {
			_, err = stores.Friendships.Reject(ctx, f)
		}
		if err != nil {
			log.Printf("Failed to answer friendship %d: %v", f.Id, err)
		}
		return friendshipAnsweredMsg{err: err}
	}
}
