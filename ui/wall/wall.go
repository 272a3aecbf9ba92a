package wall

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/deemkeen/plaza/api"
	"github.com/deemkeen/plaza/cache"
	"github.com/deemkeen/plaza/data"
	"github.com/deemkeen/plaza/domain"
	"github.com/deemkeen/plaza/ui/common"
	"github.com/deemkeen/plaza/ui/feed"
	"log"
)

var (
	profileStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(common.COLOR_LIGHTBLUE)).
			Padding(0, 1)

	bioStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(common.COLOR_GREY))
)

type Model struct {
	UserId   int64
	User     domain.User
	Friends  int
	Page     domain.Page[domain.Post]
	Cursor   int
	Loading  bool
	NotFound bool
	Error    string
	me       domain.User
	stores   *data.Stores
	width    int
	height   int
}

func InitialModel(userId int64, me domain.User, stores *data.Stores, width, height int) Model {
	return Model{
		UserId:  userId,
		Page:    domain.EmptyPage[domain.Post](0, stores.Posts.PageSize()),
		Loading: true,
		me:      me,
		stores:  stores,
		width:   width,
		height:  height,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		loadProfile(m.stores, m.UserId),
		loadWallPage(m.stores, m.UserId, 0),
	)
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case profileLoadedMsg:
		if msg.userId != m.UserId {
			return m, nil
		}
		if msg.err != nil {
			if api.IsNotFound(msg.err) {
				m.NotFound = true
				m.Loading = false
				return m, nil
			}
			m.Error = fmt.Sprintf("Could not load profile: %v", msg.err)
			return m, nil
		}
		m.User = msg.user
		m.Friends = msg.friends
		return m, nil

	case wallPageLoadedMsg:
		if msg.userId != m.UserId {
			return m, nil
		}
		m.Loading = false
		if msg.err != nil {
			if !m.NotFound {
				m.Error = fmt.Sprintf("Could not load posts: %v", msg.err)
			}
			return m, nil
		}
		m.Error = ""
		m.Page = msg.page
		if m.Cursor >= len(m.Page.Content) {
			m.Cursor = 0
		}
		return m, nil

	case postDeletedMsg:
		if msg.err != nil {
			m.Error = fmt.Sprintf("Could not delete post: %v", msg.err)
			return m, nil
		}
		return m, loadWallPage(m.stores, m.UserId, m.Page.Number)

	case common.PostsChangedMsg:
		return m, loadWallPage(m.stores, m.UserId, m.Page.Number)

	case tea.KeyMsg:
		if m.NotFound {
			if msg.String() == "esc" || msg.String() == "enter" {
				return m, func() tea.Msg { return common.FeedView }
			}
			return m, nil
		}
		switch msg.String() {
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
			}
		case "down", "j":
			if len(m.Page.Content) > 0 && m.Cursor < len(m.Page.Content)-1 {
				m.Cursor++
			}
		case "n", "right":
			if m.Page.HasNext() && !m.Loading {
				m.Loading = true
				m.Cursor = 0
				return m, loadWallPage(m.stores, m.UserId, m.Page.Number+1)
			}
		case "p", "left":
			if m.Page.HasPrev() && !m.Loading {
				m.Loading = true
				m.Cursor = 0
				return m, loadWallPage(m.stores, m.UserId, m.Page.Number-1)
			}
		case "r":
			m.stores.Posts.RefreshWall(m.UserId)
			m.Loading = true
			return m, tea.Batch(
				loadProfile(m.stores, m.UserId),
				loadWallPage(m.stores, m.UserId, m.Page.Number),
			)
		case "d":
			if post, ok := m.selected(); ok && post.Author.Id == m.me.Id && !cache.IsPlaceholderId(post.Id) {
				return m, deletePost(m.stores, post)
			}
		case "e":
			if post, ok := m.selected(); ok && post.Author.Id == m.me.Id && !cache.IsPlaceholderId(post.Id) {
				return m, func() tea.Msg { return common.EditPostMsg{Post: post} }
			}
		case "c":
			if post, ok := m.selected(); ok && !cache.IsPlaceholderId(post.Id) {
				return m, func() tea.Msg { return common.OpenCommentsMsg{Post: post} }
			}
		case "o":
			if m.UserId == m.me.Id {
				return m, func() tea.Msg { return common.WritePostView }
			}
		case "ctrl+e":
			if m.UserId == m.me.Id {
				return m, func() tea.Msg { return common.EditProfileView }
			}
		case "esc":
			return m, func() tea.Msg { return common.FeedView }
		}
	}
	return m, nil
}

func (m Model) selected() (domain.Post, bool) {
	if m.Cursor < 0 || m.Cursor >= len(m.Page.Content) {
		return domain.Post{}, false
	}
	return m.Page.Content[m.Cursor], true
}

func (m Model) View() string {
	var s strings.Builder

	if m.NotFound {
		s.WriteString(common.CaptionStyle.Render("wall"))
		s.WriteString("\n\n")
		s.WriteString(common.EmptyStyle.Render("This user does not exist (anymore)."))
		s.WriteString("\n\n")
		s.WriteString(common.HelpStyle.Render("esc: back to feed"))
		return s.String()
	}

	caption := fmt.Sprintf("wall of @%s", m.User.Username)
	if m.User.Username == "" {
		caption = "wall"
	}
	s.WriteString(common.CaptionStyle.Render(caption))
	s.WriteString("\n\n")

	if m.User.Id != 0 {
		profile := fmt.Sprintf("%s\n%d friends", m.User.Handle(), m.Friends)
		if m.User.Bio != "" {
			profile += "\n" + bioStyle.Render(m.User.Bio)
		}
		s.WriteString(profileStyle.Render(profile))
		s.WriteString("\n\n")
	}

	if m.Error != "" {
		s.WriteString(common.ErrorStyle.Render(m.Error))
		s.WriteString("\n\n")
	}

	if m.Loading && len(m.Page.Content) == 0 {
		s.WriteString(common.EmptyStyle.Render("Loading..."))
		return s.String()
	}

	if len(m.Page.Content) == 0 {
		s.WriteString(common.EmptyStyle.Render("No posts on this wall yet."))
	} else {
		s.WriteString(fmt.Sprintf("page %d/%d, %d posts\n\n",
			m.Page.Number+1, maxInt(m.Page.TotalPages, 1), m.Page.TotalElements))
		for i, post := range m.Page.Content {
			s.WriteString(feed.RenderPost(post, i == m.Cursor, m.me.Id))
			s.WriteString("\n\n")
		}
	}

	return s.String()
}

// profileLoadedMsg is sent when the wall owner's profile is loaded
type profileLoadedMsg struct {
	userId  int64
	user    domain.User
	friends int
	err     error
}

// postDeletedMsg is sent when the delete call settled
type postDeletedMsg struct {
	err error
}

// wallPageLoadedMsg is sent when a wall page is loaded
type wallPageLoadedMsg struct {
	userId int64
	page   domain.Page[domain.Post]
	err    error
}

func loadProfile(stores *data.Stores, userId int64) tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		user, err := stores.Users.ById(ctx, userId)
		if err != nil {
			log.Printf("Failed to load profile %d: %v", userId, err)
			return profileLoadedMsg{userId: userId, err: err}
		}
		friendships, err := stores.Friendships.ForUser(ctx, userId)
		if err != nil {
			log.Printf("Failed to load friendships of %d: %v", userId, err)
			return profileLoadedMsg{userId: userId, user: user}
		}
		return profileLoadedMsg{
			userId:  userId,
			user:    user,
			friends: domain.AcceptedCount(friendships),
		}
	}
}

func loadWallPage(stores *data.Stores, userId int64, page int) tea.Cmd {
	return func() tea.Msg {
		p, err := stores.Posts.WallPage(context.Background(), userId, page)
		if err != nil {
			log.Printf("Failed to load wall page %d of %d: %v", page, userId, err)
			return wallPageLoadedMsg{userId: userId, err: err}
		}
		return wallPageLoadedMsg{userId: userId, page: p}
	}
}

func deletePost(stores *data.Stores, post domain.Post) tea.Cmd {
	return func() tea.Msg {
		err := stores.Posts.Delete(context.Background(), post)
		if err != nil {
			log.Printf("Failed to delete post %d: %v", post.Id, err)
		}
		return postDeletedMsg{err: err}
	}
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
