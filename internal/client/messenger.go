// Package client implements the conforming protocol client: a thin session
// wrapper over the line codec. A Messenger holds at most one live connection
// and one token; StartSession replaces both.
package client

import (
	"fmt"
	"net"
	"time"

	"distsocial/internal/common"
	"distsocial/internal/protocol"
)

// ServerError carries an error response produced by the server for a request
// that was delivered and answered.
type ServerError struct {
	Message string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("server: %s", e.Message)
}

// Messenger drives one session against the messaging server:
// connect, join, then any number of send/retrieve calls with the issued
// token, all over the same connection.
type Messenger struct {
	addr  string
	conn  net.Conn
	codec *protocol.Codec
	token string
}

func NewMessenger(addr string) *Messenger {
	return &Messenger{addr: addr}
}

// Connect opens the transport, replacing any previous connection. The token,
// if any, is discarded: the server invalidates the old session when the old
// connection goes away.
func (m *Messenger) Connect() error {
	if m.conn != nil {
		m.conn.Close()
	}
	m.token = ""

	conn, err := net.DialTimeout("tcp", m.addr, 5*time.Second)
	if err != nil {
		return fmt.Errorf("connect %s: %w", m.addr, err)
	}
	m.conn = conn
	m.codec = protocol.NewCodec(conn)
	return nil
}

// Join authenticates (or registers) username over the open connection and
// stores the issued token for subsequent calls. Returns the server's welcome
// message.
func (m *Messenger) Join(username, password string) (string, error) {
	resp, err := m.roundTrip(protocol.NewJoinRequest(username, password, m.token))
	if err != nil {
		return "", err
	}
	m.token = resp.Token
	return resp.Message, nil
}

// StartSession composes Connect and Join, re-establishing both the transport
// and the token.
func (m *Messenger) StartSession(username, password string) (string, error) {
	if err := m.Connect(); err != nil {
		return "", err
	}
	return m.Join(username, password)
}

// Send delivers one direct message to recipient. The timestamp sent along is
// advisory only; the server stamps with its own clock.
func (m *Messenger) Send(entry, recipient string) error {
	_, err := m.roundTrip(protocol.NewDirectMessageRequest(m.token, entry, recipient, common.Timestamp()))
	return err
}

// RetrieveNew fetches unread messages, oldest first. The server marks them
// read, so a repeat call returns an empty list.
func (m *Messenger) RetrieveNew() ([]protocol.Message, error) {
	return m.retrieve(protocol.FetchNew)
}

// RetrieveAll fetches the full mailbox, sent copies included, oldest first.
func (m *Messenger) RetrieveAll() ([]protocol.Message, error) {
	return m.retrieve(protocol.FetchAll)
}

func (m *Messenger) retrieve(what string) ([]protocol.Message, error) {
	resp, err := m.roundTrip(protocol.NewFetchRequest(m.token, what))
	if err != nil {
		return nil, err
	}
	if !resp.HasMessages {
		return nil, protocol.ErrMalformedResponse
	}
	return resp.Messages, nil
}

// Post publishes entry to the author's list and the global feed.
func (m *Messenger) Post(entry string) (string, error) {
	resp, err := m.roundTrip(protocol.NewPostRequest(m.token, entry, common.Timestamp()))
	if err != nil {
		return "", err
	}
	return resp.Message, nil
}

// UpdateBio replaces the user's bio.
func (m *Messenger) UpdateBio(entry string) (string, error) {
	resp, err := m.roundTrip(protocol.NewBioRequest(m.token, entry, common.Timestamp()))
	if err != nil {
		return "", err
	}
	return resp.Message, nil
}

// Token returns the active session token, empty before a successful join.
func (m *Messenger) Token() string {
	return m.token
}

// Close releases the transport. The server tears the session down on its own.
func (m *Messenger) Close() error {
	if m.conn == nil {
		return nil
	}
	err := m.conn.Close()
	m.conn = nil
	m.codec = nil
	m.token = ""
	return err
}

func (m *Messenger) roundTrip(req any) (*protocol.ServerResponse, error) {
	if m.codec == nil {
		return nil, fmt.Errorf("not connected")
	}
	if err := m.codec.Send(req); err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	resp, err := m.codec.ReadResponse()
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if !resp.OK() {
		return nil, &ServerError{Message: resp.Message}
	}
	return resp, nil
}
