package writepost

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/deemkeen/plaza/data"
	"github.com/deemkeen/plaza/domain"
	"github.com/deemkeen/plaza/ui/common"
	"github.com/deemkeen/plaza/util"
	"log"
)

const MaxLetters = 500

type Model struct {
	Textarea    textarea.Model
	Editing     *domain.Post
	Err         util.ErrMsg
	me          domain.User
	stores      *data.Stores
	lettersLeft int
	width       int
}

func InitialModel(contentWidth int, me domain.User, stores *data.Stores) Model {
	width := common.DefaultComposeWidth(contentWidth)
	ti := textarea.New()
	ti.Placeholder = "what's on your mind?"
	ti.CharLimit = MaxLetters
	ti.ShowLineNumbers = false
	ti.SetWidth(30)

	return Model{
		Textarea:    ti,
		Err:         nil,
		me:          me,
		stores:      stores,
		lettersLeft: MaxLetters,
		width:       width,
	}
}

func savePostCmd(stores *data.Stores, me domain.User, editing *domain.Post, content string) tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		var err error
		if editing != nil {
			_, err = stores.Posts.Edit(ctx, *editing, content)
		} else {
			_, err = stores.Posts.Create(ctx, me, content)
		}
		if err != nil {
			log.Printf("Post could not be saved: %v", err)
			return common.NoticeMsg{Text: fmt.Sprintf("Post could not be saved: %v", err), IsError: true}
		}
		return common.PostsChangedMsg{}
	}
}

func (m Model) Init() tea.Cmd {
	return textarea.Blink
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case common.EditPostMsg:
		post := msg.Post
		m.Editing = &post
		m.Textarea.SetValue(post.Content)
		return m, m.Textarea.Focus()

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlA:
			if m.Textarea.Focused() {
				m.Textarea.Blur()
			}
		case tea.KeyEsc:
			if m.Editing != nil {
				m.Editing = nil
				m.Textarea.SetValue("")
			}
			return m, nil
		case tea.KeyCtrlS:
			value := util.NormalizeInput(m.Textarea.Value())
			if value == "" {
				return m, nil
			}
			editing := m.Editing
			m.Editing = nil
			m.Textarea.SetValue("")
			return m, savePostCmd(m.stores, m.me, editing, value)
		case tea.KeyCtrlC:
			return m, tea.Quit
		default:
			if !m.Textarea.Focused() {
				cmd = m.Textarea.Focus()
				cmds = append(cmds, cmd)
			}
		}

	case util.ErrMsg:
		m.Err = msg
		return m, nil
	}

	m.Textarea, cmd = m.Textarea.Update(msg)
	m.lettersLeft = m.CharCount()
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

func (m Model) CharCount() int {
	return m.Textarea.CharLimit - m.Textarea.Length() + m.Textarea.LineCount() - 1
}

func (m Model) View() string {
	styledTextarea := lipgloss.NewStyle().PaddingLeft(5).PaddingRight(5).Margin(2).Render(m.Textarea.View())
	help := fmt.Sprintf("characters left: %d\n\nsubmit: ctrl+s", m.lettersLeft)
	if m.Editing != nil {
		help += " • cancel edit: esc"
	}
	charsLeft := common.HelpStyle.PaddingLeft(7).Render(help)

	title := "new post"
	if m.Editing != nil {
		title = fmt.Sprintf("edit post #%d", m.Editing.Id)
	}
	caption := common.CaptionStyle.PaddingLeft(7).Render(title)

	return fmt.Sprintf("%s\n\n%s\n\n%s", caption, styledTextarea, charsLeft)
}
