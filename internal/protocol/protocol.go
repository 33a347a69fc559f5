// Package protocol defines the wire format of the messaging service: one JSON
// object per line, a request followed by exactly one response on the same
// connection. Both the server and any conforming client build on this package.
package protocol

import "errors"

// Response status values.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// Literal arguments for the directmessage command.
const (
	FetchNew = "new"
	FetchAll = "all"
)

// ErrMalformedResponse is returned when a server line does not carry a
// response object.
var ErrMalformedResponse = errors.New("malformed server response")

// JoinCredentials is the argument object of the join command. Token carries
// whatever token the client currently holds; first-time clients send "".
type JoinCredentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Token    string `json:"token"`
}

// JoinRequest is the only command accepted before a session exists.
type JoinRequest struct {
	Join JoinCredentials `json:"join"`
}

// TimestampedEntry is the argument object of the bio and post commands.
// The timestamp is required by the schema but the server discards it and
// stamps with its own clock.
type TimestampedEntry struct {
	Entry     string `json:"entry"`
	Timestamp string `json:"timestamp"`
}

type BioRequest struct {
	Token string           `json:"token"`
	Bio   TimestampedEntry `json:"bio"`
}

type PostRequest struct {
	Token string           `json:"token"`
	Post  TimestampedEntry `json:"post"`
}

// DirectMessage is the argument object of a directmessage send.
type DirectMessage struct {
	Entry     string `json:"entry"`
	Recipient string `json:"recipient"`
	Timestamp string `json:"timestamp"`
}

type DirectMessageRequest struct {
	Token         string        `json:"token"`
	DirectMessage DirectMessage `json:"directmessage"`
}

// FetchRequest retrieves mailbox contents; DirectMessage is the literal
// FetchNew or FetchAll.
type FetchRequest struct {
	Token         string `json:"token"`
	DirectMessage string `json:"directmessage"`
}

// Message is one mailbox item as it appears on the wire. Exactly one of From
// and Recipient is set: From on received messages, Recipient on sent copies.
type Message struct {
	From      string `json:"from,omitempty"`
	Recipient string `json:"recipient,omitempty"`
	Entry     string `json:"entry"`
	Timestamp string `json:"timestamp"`
}

func NewJoinRequest(username, password, token string) JoinRequest {
	return JoinRequest{Join: JoinCredentials{Username: username, Password: password, Token: token}}
}

func NewBioRequest(token, entry, timestamp string) BioRequest {
	return BioRequest{Token: token, Bio: TimestampedEntry{Entry: entry, Timestamp: timestamp}}
}

func NewPostRequest(token, entry, timestamp string) PostRequest {
	return PostRequest{Token: token, Post: TimestampedEntry{Entry: entry, Timestamp: timestamp}}
}

func NewDirectMessageRequest(token, entry, recipient, timestamp string) DirectMessageRequest {
	return DirectMessageRequest{
		Token:         token,
		DirectMessage: DirectMessage{Entry: entry, Recipient: recipient, Timestamp: timestamp},
	}
}

func NewFetchRequest(token, what string) FetchRequest {
	return FetchRequest{Token: token, DirectMessage: what}
}
