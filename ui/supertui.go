package ui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/deemkeen/plaza/api"
	"github.com/deemkeen/plaza/data"
	"github.com/deemkeen/plaza/domain"
	"github.com/deemkeen/plaza/ui/addfriend"
	"github.com/deemkeen/plaza/ui/comments"
	"github.com/deemkeen/plaza/ui/common"
	"github.com/deemkeen/plaza/ui/deleteaccount"
	"github.com/deemkeen/plaza/ui/editprofile"
	"github.com/deemkeen/plaza/ui/feed"
	"github.com/deemkeen/plaza/ui/friends"
	"github.com/deemkeen/plaza/ui/header"
	"github.com/deemkeen/plaza/ui/login"
	"github.com/deemkeen/plaza/ui/register"
	"github.com/deemkeen/plaza/ui/wall"
	"github.com/deemkeen/plaza/ui/writepost"
	"github.com/deemkeen/plaza/util"
	"time"
)

var (
	modelStyle = lipgloss.NewStyle().
			Align(lipgloss.Top, lipgloss.Top).
			BorderStyle(lipgloss.HiddenBorder()).MarginLeft(1)
	focusedModelStyle = lipgloss.NewStyle().
				Align(lipgloss.Top, lipgloss.Top).
				BorderStyle(lipgloss.NormalBorder()).
				BorderForeground(lipgloss.Color(common.COLOR_LIGHTBLUE)).MarginLeft(1)
)

type MainModel struct {
	width  int
	height int
	conf   *util.AppConfig
	client *api.Client
	stores *data.Stores
	me     domain.User
	state  common.SessionState

	notice        string
	noticeIsError bool

	headerModel      header.Model
	loginModel       login.Model
	registerModel    register.Model
	feedModel        feed.Model
	wallModel        wall.Model
	writeModel       writepost.Model
	commentsModel    comments.Model
	friendsModel     friends.Model
	addFriendModel   addfriend.Model
	editProfileModel editprofile.Model
	deleteModel      deleteaccount.Model
}

func NewModel(conf *util.AppConfig, client *api.Client, stores *data.Stores, width, height int) MainModel {

	width = common.DefaultWindowWidth(width)
	height = common.DefaultWindowHeight(height)

	m := MainModel{
		conf:   conf,
		client: client,
		stores: stores,
		width:  width,
		height: height,
		state:  common.LoginView,
	}
	m.loginModel = login.InitialModel(client)
	m.registerModel = register.InitialModel(client)

	if sess := client.Session(); sess != nil {
		m.me = sess.User
		m.state = common.FeedView
		m.initContentModels()
	}

	return m
}

func (m *MainModel) initContentModels() {
	m.headerModel = header.Model{Width: m.width, User: &m.me, ServerUrl: m.conf.Conf.ServerUrl}
	m.feedModel = feed.InitialModel(m.me, m.stores, m.width, m.height)
	m.wallModel = wall.InitialModel(m.me.Id, m.me, m.stores, m.width, m.height)
	m.commentsModel = comments.InitialModel(domain.Post{}, m.me, m.stores, m.width, m.height)
	m.writeModel = writepost.InitialModel(m.width, m.me, m.stores)
	m.friendsModel = friends.InitialModel(m.me, m.stores, m.width, m.height)
	m.addFriendModel = addfriend.InitialModel(m.me, m.stores)
	m.editProfileModel = editprofile.InitialModel(m.me, m.stores)
	m.deleteModel = deleteaccount.InitialModel(m.me, m.stores)
}

func (m MainModel) loggedIn() bool {
	return m.state != common.LoginView && m.state != common.RegisterView
}

func (m MainModel) Init() tea.Cmd {
	if m.loggedIn() {
		return tea.Batch(m.feedModel.Init(), m.friendsModel.Init())
	}
	return m.loginModel.Init()
}

// noticeClearMsg is sent after a delay to clear the footer notice
type noticeClearMsg struct{}

func clearNoticeAfter(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return noticeClearMsg{}
	})
}

func (m MainModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.headerModel.Width = msg.Width
		return m, nil

	case common.SessionStartedMsg:
		m.me = msg.Session.User
		m.state = common.FeedView
		m.notice = ""
		m.initContentModels()
		return m, tea.Batch(m.feedModel.Init(), m.friendsModel.Init())

	case common.SessionEndedMsg:
		// Drop every cached collection of the previous user.
		m.stores = data.NewStores(m.client, m.conf.Conf.PageSize)
		m.state = common.LoginView
		m.loginModel = login.InitialModel(m.client)
		m.registerModel = register.InitialModel(m.client)
		m.notice = msg.Reason
		m.noticeIsError = false
		return m, m.loginModel.Init()

	case common.NoticeMsg:
		m.notice = msg.Text
		m.noticeIsError = msg.IsError
		return m, clearNoticeAfter(4 * time.Second)

	case noticeClearMsg:
		m.notice = ""
		return m, nil

	case common.SessionState:
		m.state = msg
		return m, getViewInitCmd(msg, &m)

	case common.EditPostMsg:
		m.writeModel, cmd = m.writeModel.Update(msg)
		m.state = common.WritePostView
		return m, cmd

	case common.OpenWallMsg:
		m.wallModel = wall.InitialModel(msg.UserId, m.me, m.stores, m.width, m.height)
		m.state = common.WallView
		return m, m.wallModel.Init()

	case common.OpenCommentsMsg:
		m.commentsModel = comments.InitialModel(msg.Post, m.me, m.stores, m.width, m.height)
		m.state = common.CommentsView
		return m, m.commentsModel.Init()

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "ctrl+r":
			if m.state == common.LoginView {
				m.state = common.RegisterView
				m.registerModel = register.InitialModel(m.client)
				return m, m.registerModel.Init()
			}
			if m.state == common.RegisterView {
				m.state = common.LoginView
				return m, m.loginModel.Init()
			}
		case "ctrl+l":
			if m.loggedIn() {
				m.client.Logout()
				return m, func() tea.Msg {
					return common.SessionEndedMsg{Reason: "Logged out"}
				}
			}
		case "tab":
			if m.loggedIn() {
				oldState := m.state
				switch m.state {
				case common.FeedView:
					m.state = common.WritePostView
				case common.WritePostView:
					m.state = common.FriendsView
				case common.FriendsView:
					m.state = common.AddFriendView
				case common.AddFriendView:
					m.state = common.EditProfileView
				case common.EditProfileView:
					m.state = common.DeleteAccountView
				default:
					m.state = common.FeedView
				}
				if oldState != m.state {
					cmds = append(cmds, getViewInitCmd(m.state, &m))
				}
			}
		case "shift+tab":
			if m.loggedIn() {
				oldState := m.state
				switch m.state {
				case common.FeedView:
					m.state = common.DeleteAccountView
				case common.WritePostView:
					m.state = common.FeedView
				case common.FriendsView:
					m.state = common.WritePostView
				case common.AddFriendView:
					m.state = common.FriendsView
				case common.EditProfileView:
					m.state = common.AddFriendView
				case common.DeleteAccountView:
					m.state = common.EditProfileView
				default:
					m.state = common.FeedView
				}
				if oldState != m.state {
					cmds = append(cmds, getViewInitCmd(m.state, &m))
				}
			}
		}
	}

	// Route non-keyboard messages to every sub-model so loader results
	// always reach their destination. Keyboard input only goes to the
	// focused view below.
	if _, isKeyMsg := msg.(tea.KeyMsg); !isKeyMsg {
		if m.loggedIn() {
			m.headerModel, _ = m.headerModel.Update(msg)
			m.feedModel, cmd = m.feedModel.Update(msg)
			cmds = append(cmds, cmd)
			m.wallModel, cmd = m.wallModel.Update(msg)
			cmds = append(cmds, cmd)
			m.writeModel, cmd = m.writeModel.Update(msg)
			cmds = append(cmds, cmd)
			m.commentsModel, cmd = m.commentsModel.Update(msg)
			cmds = append(cmds, cmd)
			m.friendsModel, cmd = m.friendsModel.Update(msg)
			cmds = append(cmds, cmd)
			m.addFriendModel, cmd = m.addFriendModel.Update(msg)
			cmds = append(cmds, cmd)
			m.editProfileModel, cmd = m.editProfileModel.Update(msg)
			cmds = append(cmds, cmd)
			m.deleteModel, cmd = m.deleteModel.Update(msg)
			cmds = append(cmds, cmd)
		} else {
			m.loginModel, cmd = m.loginModel.Update(msg)
			cmds = append(cmds, cmd)
			m.registerModel, cmd = m.registerModel.Update(msg)
			cmds = append(cmds, cmd)
		}
	}

	if _, ok := msg.(tea.KeyMsg); ok {
		switch m.state {
		case common.LoginView:
			m.loginModel, cmd = m.loginModel.Update(msg)
		case common.RegisterView:
			m.registerModel, cmd = m.registerModel.Update(msg)
		case common.FeedView:
			m.feedModel, cmd = m.feedModel.Update(msg)
		case common.WallView:
			m.wallModel, cmd = m.wallModel.Update(msg)
		case common.WritePostView:
			m.writeModel, cmd = m.writeModel.Update(msg)
		case common.CommentsView:
			m.commentsModel, cmd = m.commentsModel.Update(msg)
		case common.FriendsView:
			m.friendsModel, cmd = m.friendsModel.Update(msg)
		case common.AddFriendView:
			m.addFriendModel, cmd = m.addFriendModel.Update(msg)
		case common.EditProfileView:
			m.editProfileModel, cmd = m.editProfileModel.Update(msg)
		case common.DeleteAccountView:
			m.deleteModel, cmd = m.deleteModel.Update(msg)
		}
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m MainModel) View() string {

	if m.state == common.LoginView {
		s := m.loginModel.ViewWithWidth(m.width, m.height)
		if m.notice != "" {
			s += "\n" + m.noticeLine()
		}
		return s
	}
	if m.state == common.RegisterView {
		return m.registerModel.ViewWithWidth(m.width, m.height)
	}

	var s string

	availableHeight := m.height - 10
	leftPanelWidth := m.width / 3
	rightPanelWidth := m.width - leftPanelWidth - 6

	composeStyleStr := lipgloss.NewStyle().
		MaxHeight(availableHeight).
		Height(availableHeight).
		Width(leftPanelWidth).
		MaxWidth(leftPanelWidth).
		Render(m.writeModel.View())

	rightStyleStr := lipgloss.NewStyle().
		MaxHeight(availableHeight).
		Height(availableHeight).
		Width(rightPanelWidth).
		MaxWidth(rightPanelWidth).
		Margin(1).
		Render(m.currentRightView())

	navContainer := lipgloss.NewStyle().Render(m.headerModel.View())
	s += navContainer + "\n"

	if m.state == common.WritePostView {
		s += lipgloss.JoinHorizontal(lipgloss.Top,
			focusedModelStyle.Render(composeStyleStr),
			modelStyle.Render(rightStyleStr))
	} else {
		s += lipgloss.JoinHorizontal(lipgloss.Top,
			modelStyle.Render(composeStyleStr),
			focusedModelStyle.Render(rightStyleStr))
	}

	if m.notice != "" {
		s += "\n" + m.noticeLine()
	}

	s += common.HelpStyle.Render(fmt.Sprintf(
		"\nfocused > %s\t\tkeys > tab: next • shift+tab: prev • %s • ctrl-l: logout • ctrl-c: exit",
		m.currentFocusedModel(), m.viewCommands()))
	return lipgloss.NewStyle().Render(s)
}

func (m MainModel) noticeLine() string {
	if m.noticeIsError {
		return common.ErrorStyle.Padding(0, 2).Render(m.notice)
	}
	return common.StatusStyle.Padding(0, 2).Render(m.notice)
}

func (m MainModel) currentRightView() string {
	switch m.state {
	case common.WallView:
		return m.wallModel.View()
	case common.CommentsView:
		return m.commentsModel.View()
	case common.FriendsView:
		return m.friendsModel.View()
	case common.AddFriendView:
		return m.addFriendModel.View()
	case common.EditProfileView:
		return m.editProfileModel.View()
	case common.DeleteAccountView:
		return m.deleteModel.View()
	default:
		return m.feedModel.View()
	}
}

func (m MainModel) currentFocusedModel() string {
	switch m.state {
	case common.FeedView:
		return "feed"
	case common.WallView:
		return "wall"
	case common.WritePostView:
		return "new post"
	case common.CommentsView:
		return "comments"
	case common.FriendsView:
		return "friends"
	case common.AddFriendView:
		return "add friend"
	case common.EditProfileView:
		return "edit profile"
	case common.DeleteAccountView:
		return "delete account"
	default:
		return "login"
	}
}

func (m MainModel) viewCommands() string {
	switch m.state {
	case common.FeedView:
		return "↑/↓: select • n/p: page • r: reload • c: comments • w: wall • e: edit • d: delete"
	case common.WallView:
		return "↑/↓: select • n/p: page • r: reload • c: comments • e/d: edit/delete own • esc: back"
	case common.WritePostView:
		return "ctrl+s: submit"
	case common.CommentsView:
		return "enter: comment • ↑/↓: scroll • esc: back"
	case common.FriendsView:
		return "↑/↓: select • a: accept • x: reject • w: wall • r: reload"
	case common.AddFriendView:
		return "enter: send request"
	case common.EditProfileView:
		return "enter: next/save"
	case common.DeleteAccountView:
		return "y/n: confirm"
	default:
		return " "
	}
}

// getViewInitCmd returns the init command for a view to reload its data
func getViewInitCmd(state common.SessionState, m *MainModel) tea.Cmd {
	switch state {
	case common.FeedView:
		return m.feedModel.Init()
	case common.WallView:
		return m.wallModel.Init()
	case common.CommentsView:
		return m.commentsModel.Init()
	case common.FriendsView:
		return m.friendsModel.Init()
	case common.WritePostView:
		return m.writeModel.Init()
	default:
		return nil
	}
}
