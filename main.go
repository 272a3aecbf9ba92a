package main

import (
	"fmt"
	"log"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/deemkeen/plaza/api"
	"github.com/deemkeen/plaza/data"
	"github.com/deemkeen/plaza/store"
	"github.com/deemkeen/plaza/ui"
	"github.com/deemkeen/plaza/ui/common"
	"github.com/deemkeen/plaza/util"
)

func main() {

	conf, err := util.ReadConf()
	if err != nil {
		log.Fatalln(err)
	}

	logFile, err := tea.LogToFile(util.ResolveFilePath("plaza.log"), "plaza")
	if err != nil {
		log.Fatalln(err)
	}
	defer logFile.Close()

	log.Println("Configuration: ")
	log.Println(util.PrettyPrint(conf))

	st, err := store.Open(util.ResolveFilePath("session.db"))
	if err != nil {
		log.Fatalln(err)
	}
	defer st.Close()

	client := api.NewClient(conf, st)

	sess, err := st.Load()
	if err != nil {
		log.Printf("Could not load saved session: %v", err)
	}
	if sess != nil {
		client.RestoreSession(sess)
		log.Printf("Restored session of @%s", sess.User.Username)
	}

	stores := data.NewStores(client, conf.Conf.PageSize)

	m := ui.NewModel(conf, client, stores, 120, 40)
	p := tea.NewProgram(m, tea.WithAltScreen())

	// A failed token refresh kicks the user back to the login screen,
	// no matter which view is open.
	client.OnSessionExpired = func() {
		p.Send(common.SessionEndedMsg{Reason: "Session expired, please log in again"})
	}

	if _, err := p.Run(); err != nil {
		fmt.Printf("there's been an error: %v", err)
		os.Exit(1)
	}
}
