package comments

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
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
	postStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(common.COLOR_LIGHTBLUE)).
			Padding(0, 1)

	authorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(common.COLOR_LIGHTBLUE)).
			Bold(true)

	timeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(common.COLOR_PURPLE))

	pendingStyle = lipgloss.NewStyle().
			Faint(true)
)

type Model struct {
	Post     domain.Post
	Comments []domain.Comment
	Input    textinput.Model
	Offset   int
	Loading  bool
	Error    string
	me       domain.User
	stores   *data.Stores
	width    int
	height   int
}

func InitialModel(post domain.Post, me domain.User, stores *data.Stores, width, height int) Model {
	ti := textinput.New()
	ti.Placeholder = "write a comment"
	ti.Focus()
	ti.CharLimit = 300
	ti.Width = 50

	return Model{
		Post:    post,
		Input:   ti,
		Loading: true,
		me:      me,
		stores:  stores,
		width:   width,
		height:  height,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, loadComments(m.stores, m.Post.Id))
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case commentsLoadedMsg:
		if msg.postId != m.Post.Id {
			return m, nil
		}
		m.Loading = false
		if msg.err != nil {
			m.Error = fmt.Sprintf("Could not load comments: %v", msg.err)
			return m, nil
		}
		m.Error = ""
		m.Comments = msg.comments
		return m, nil

	case commentAddedMsg:
		if msg.postId != m.Post.Id {
			return m, nil
		}
		if msg.err != nil {
			m.Error = fmt.Sprintf("Could not add comment: %v", msg.err)
			return m, nil
		}
		m.Error = ""
		return m, loadComments(m.stores, m.Post.Id)

	case tea.KeyMsg:
		switch msg.String() {
		case "enter":
			text := util.NormalizeInput(m.Input.Value())
			if text == "" {
				return m, nil
			}
			m.Input.SetValue("")
			return m, addComment(m.stores, m.Post.Id, m.me, text)
		case "esc":
			return m, func() tea.Msg { return common.FeedView }
		case "ctrl+r":
			m.stores.Comments.Refresh(m.Post.Id)
			m.Loading = true
			return m, loadComments(m.stores, m.Post.Id)
		case "up":
			if m.Offset > 0 {
				m.Offset--
			}
			return m, nil
		case "down":
			if len(m.Comments) > 0 && m.Offset < len(m.Comments)-1 {
				m.Offset++
			}
			return m, nil
		}
	}

	m.Input, cmd = m.Input.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	var s strings.Builder

	s.WriteString(common.CaptionStyle.Render(fmt.Sprintf("comments (%d)", len(m.Comments))))
	s.WriteString("\n\n")

	post := fmt.Sprintf("%s\n%s",
		authorStyle.Render("@"+m.Post.Author.Username),
		util.Truncate(m.Post.Content, 150))
	s.WriteString(postStyle.Render(post))
	s.WriteString("\n\n")

	if m.Error != "" {
		s.WriteString(common.ErrorStyle.Render(m.Error))
		s.WriteString("\n\n")
	}

	if m.Loading {
		s.WriteString(common.EmptyStyle.Render("Loading comments..."))
		s.WriteString("\n\n")
	} else if len(m.Comments) == 0 {
		s.WriteString(common.EmptyStyle.Render("No comments yet. Be the first!"))
		s.WriteString("\n\n")
	} else {
		itemsPerPage := 8
		start := m.Offset
		end := start + itemsPerPage
		if end > len(m.Comments) {
			end = len(m.Comments)
		}
		for i := start; i < end; i++ {
			c := m.Comments[i]
			when := timeStyle.Render(util.FormatRelativeTime(c.Timestamp))
			who := authorStyle.Render("@" + c.User.Username)
			text := util.Truncate(c.CommentText, 150)
			if cache.IsPlaceholderId(c.Id) {
				when = pendingStyle.Render("sending...")
				text = pendingStyle.Render(text)
			}
			s.WriteString(lipgloss.JoinVertical(lipgloss.Left, when, who, text))
			s.WriteString("\n\n")
		}
	}

	s.WriteString(m.Input.View())
	s.WriteString("\n")

	return s.String()
}

// commentsLoadedMsg is sent when a post's thread is loaded
type commentsLoadedMsg struct {
	postId   int64
	comments []domain.Comment
	err      error
}

// commentAddedMsg is sent when the add call settled
type commentAddedMsg struct {
	postId int64
	err    error
}

func loadComments(stores *data.Stores, postId int64) tea.Cmd {
	return func() tea.Msg {
		list, err := stores.Comments.ForPost(context.Background(), postId)
		if err != nil {
			log.Printf("Failed to load comments of post %d: %v", postId, err)
			return commentsLoadedMsg{postId: postId, err: err}
		}
		return commentsLoadedMsg{postId: postId, comments: list}
	}
}

func addComment(stores *data.Stores, postId int64, author domain.User, text string) tea.Cmd {
	return func() tea.Msg {
		_, err := stores.Comments.Add(context.Background(), postId, author, text)
		if err != nil {
			log.Printf("Failed to comment on post %d: %v", postId, err)
		}
		return commentAddedMsg{postId: postId, err: err}
	}
}
