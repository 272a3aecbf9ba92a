package feed

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
	"github.com/deemkeen/plaza/util"
	"log"
)

var (
	timeStyle = lipgloss.NewStyle().
			Align(lipgloss.Left).
			Foreground(lipgloss.Color(common.COLOR_PURPLE))

	authorStyle = lipgloss.NewStyle().
			Align(lipgloss.Left).
			Foreground(lipgloss.Color(common.COLOR_LIGHTBLUE)).
			Bold(true)

	contentStyle = lipgloss.NewStyle().
			Align(lipgloss.Left)

	pendingStyle = lipgloss.NewStyle().
			Align(lipgloss.Left).
			Faint(true)

	selectedStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(lipgloss.Color(common.COLOR_MAGENTA)).
			PaddingLeft(1)
)

type Model struct {
	Page    domain.Page[domain.Post]
	Cursor  int
	Loading bool
	Error   string
	me      domain.User
	stores  *data.Stores
	width   int
	height  int
}

func InitialModel(me domain.User, stores *data.Stores, width, height int) Model {
	return Model{
		Page:   domain.EmptyPage[domain.Post](0, stores.Posts.PageSize()),
		me:     me,
		stores: stores,
		width:  width,
		height: height,
	}
}

func (m Model) Init() tea.Cmd {
	return loadPage(m.stores, 0)
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case pageLoadedMsg:
		m.Loading = false
		if msg.err != nil {
			m.Error = fmt.Sprintf("Could not load feed: %v", msg.err)
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
		return m, loadPage(m.stores, m.Page.Number)

	case common.PostsChangedMsg:
		return m, loadPage(m.stores, m.Page.Number)

	case tea.KeyMsg:
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
				return m, loadPage(m.stores, m.Page.Number+1)
			}
		case "p", "left":
			if m.Page.HasPrev() && !m.Loading {
				m.Loading = true
				m.Cursor = 0
				return m, loadPage(m.stores, m.Page.Number-1)
			}
		case "r":
			m.stores.Posts.RefreshFeed()
			m.Loading = true
			return m, loadPage(m.stores, m.Page.Number)
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
		case "w":
			if post, ok := m.selected(); ok && post.Author.Id > 0 {
				return m, func() tea.Msg { return common.OpenWallMsg{UserId: post.Author.Id} }
			}
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

	caption := fmt.Sprintf("feed (page %d/%d, %d posts)",
		m.Page.Number+1, max(m.Page.TotalPages, 1), m.Page.TotalElements)
	if m.Loading {
		caption += " loading..."
	}
	s.WriteString(common.CaptionStyle.Render(caption))
	s.WriteString("\n\n")

	if m.Error != "" {
		s.WriteString(common.ErrorStyle.Render(m.Error))
		s.WriteString("\n\n")
	}

	if len(m.Page.Content) == 0 {
		s.WriteString(common.EmptyStyle.Render("Nothing here yet.\nWrite your first post!"))
	} else {
		for i, post := range m.Page.Content {
			s.WriteString(RenderPost(post, i == m.Cursor, m.me.Id))
			s.WriteString("\n\n")
		}
	}

	return s.String()
}

// RenderPost renders a single post row, shared with the wall view.
func RenderPost(post domain.Post, selected bool, meId int64) string {
	timeStr := timeStyle.Render(util.FormatRelativeTime(post.CreatedAt))
	author := "@" + post.Author.Username
	if post.Author.Id == meId {
		author += " (you)"
	}
	authorStr := authorStyle.Render(author)
	content := contentStyle.Render(util.Truncate(post.Content, 150))

	if cache.IsPlaceholderId(post.Id) {
		timeStr = pendingStyle.Render("sending...")
		content = pendingStyle.Render(util.Truncate(post.Content, 150))
	}

	row := lipgloss.JoinVertical(lipgloss.Left, timeStr, authorStr, content)
	if selected {
		return selectedStyle.Render(row)
	}
	return row
}

// pageLoadedMsg is sent when a feed page is loaded
type pageLoadedMsg struct {
	page domain.Page[domain.Post]
	err  error
}

// postDeletedMsg is sent when the delete call settled
type postDeletedMsg struct {
	err error
}

func loadPage(stores *data.Stores, page int) tea.Cmd {
	return func() tea.Msg {
		p, err := stores.Posts.FeedPage(context.Background(), page)
		if err != nil {
			log.Printf("Failed to load feed page %d: %v", page, err)
			return pageLoadedMsg{err: err}
		}
		return pageLoadedMsg{page: p}
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

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
