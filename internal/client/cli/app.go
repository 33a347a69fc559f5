// Package cli implements the interactive client: a small REPL over the
// Messenger session wrapper.
package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"distsocial/internal/client"
	"distsocial/internal/client/config"
	"distsocial/internal/protocol"
)

// messenger is the slice of the client.Messenger surface the CLI needs.
// Tests substitute a stub.
type messenger interface {
	StartSession(username, password string) (string, error)
	Post(entry string) (string, error)
	UpdateBio(entry string) (string, error)
	Send(entry, recipient string) error
	RetrieveNew() ([]protocol.Message, error)
	RetrieveAll() ([]protocol.Message, error)
	Token() string
	Close() error
}

type App struct {
	config    *config.Config
	messenger messenger
	reader    *bufio.Reader
	out       io.Writer
}

func NewApp(c *config.Config) *App {
	return &App{
		config:    c,
		messenger: client.NewMessenger(c.ServerEndpointAddr),
		reader:    bufio.NewReader(os.Stdin),
		out:       os.Stdout,
	}
}

func (app *App) Run() {
	defer app.messenger.Close()
	fmt.Fprintf(app.out, "Connected commands start with 'join'. Type 'help' for the full list.\n")
	runREPL(app, app.reader, app.out)
}

func (app *App) isJoined() bool {
	return app.messenger.Token() != ""
}

// Join prompts for credentials and starts (or restarts) the session.
func (app *App) Join() error {
	username, err := GetSimpleText(app.reader, "Enter username", app.out)
	if err != nil {
		return err
	}
	password, err := GetPassword(app.out)
	if err != nil {
		return err
	}

	msg, err := app.messenger.StartSession(username, password)
	if err != nil {
		fmt.Fprintf(app.out, "ERROR: %v\n", err)
		return err
	}
	fmt.Fprintln(app.out, msg)
	return nil
}

func (app *App) Post(entry string) error {
	msg, err := app.messenger.Post(entry)
	if err != nil {
		fmt.Fprintf(app.out, "ERROR: %v\n", err)
		return err
	}
	fmt.Fprintln(app.out, msg)
	return nil
}

func (app *App) Bio(entry string) error {
	msg, err := app.messenger.UpdateBio(entry)
	if err != nil {
		fmt.Fprintf(app.out, "ERROR: %v\n", err)
		return err
	}
	fmt.Fprintln(app.out, msg)
	return nil
}

func (app *App) Send(recipient, entry string) error {
	if err := app.messenger.Send(entry, recipient); err != nil {
		fmt.Fprintf(app.out, "ERROR: %v\n", err)
		return err
	}
	fmt.Fprintf(app.out, "Sent to %s.\n", recipient)
	return nil
}

func (app *App) New() error {
	msgs, err := app.messenger.RetrieveNew()
	if err != nil {
		fmt.Fprintf(app.out, "ERROR: %v\n", err)
		return err
	}
	app.printMessages(msgs)
	return nil
}

func (app *App) All() error {
	msgs, err := app.messenger.RetrieveAll()
	if err != nil {
		fmt.Fprintf(app.out, "ERROR: %v\n", err)
		return err
	}
	app.printMessages(msgs)
	return nil
}

func (app *App) printMessages(msgs []protocol.Message) {
	if len(msgs) == 0 {
		fmt.Fprintln(app.out, "No messages.")
		return
	}
	for _, m := range msgs {
		if m.From != "" {
			fmt.Fprintf(app.out, "[%s] from %s: %s\n", m.Timestamp, m.From, m.Entry)
		} else {
			fmt.Fprintf(app.out, "[%s] to %s: %s\n", m.Timestamp, m.Recipient, m.Entry)
		}
	}
}
