package tcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"distsocial/internal/common"
	"distsocial/internal/protocol"
	"distsocial/internal/server/storage"
)

// Wire-level error and confirmation texts. Clients match on these, so they
// are part of the protocol.
const (
	msgBadJSON        = "Incorrectly formatted JSON message."
	msgInvalidCommand = "Invalid command."
	msgMissingToken   = "Missing token."
	msgInvalidToken   = "Invalid user token."
	msgInternal       = "Unable to process request."

	msgJoinBadShape      = "Incorrectly formatted join command."
	msgJoinExtraFields   = "Extra fields provided to join command object."
	msgJoinMissingFields = "Missing required fields for join command object."
	msgAlreadyJoined     = "User already joined on the active session."

	msgBioBadShape      = "Incorrectly formatted bio command."
	msgBioExtraFields   = "Extra fields provided to bio command object."
	msgBioMissingFields = "Missing required fields for bio command object."

	msgPostBadShape      = "Incorrectly formatted post command."
	msgPostExtraFields   = "Extra fields provided to post command object."
	msgPostMissingFields = "Missing required fields for post command."

	msgDMBadShape      = "Incorrectly formatted directmessage command."
	msgDMBadFields     = "Incorrect fields provided to directmessage command object."
	msgDMMissingFields = "Missing required fields for directmessage command."
	msgDMSent          = "Direct message sent"
	msgDMSendFailed    = "Unable to send direct message"
)

// handleJoin creates or authenticates a user record and opens the session.
// The connection may join once; a second join is rejected without touching
// the active session.
func (c *conn) handleJoin(ctx context.Context, raw map[string]json.RawMessage) protocol.Response {
	if len(raw) != 1 {
		return protocol.Error(msgJoinBadShape)
	}
	fields, ok := decodeObject(raw["join"])
	if !ok {
		return protocol.Error(msgJoinBadShape)
	}
	if len(fields) > 3 {
		return protocol.Error(msgJoinExtraFields)
	}
	if !hasAll(fields, "username", "password", "token") {
		return protocol.Error(msgJoinMissingFields)
	}
	if c.token != "" {
		return protocol.Error(msgAlreadyJoined)
	}
	username, uok := decodeString(fields["username"])
	password, pok := decodeString(fields["password"])
	if !uok || !pok {
		return protocol.Error(msgJoinMissingFields)
	}
	// the token field is required by the schema but carries no meaning here

	user, created, err := c.srv.store.GetOrCreateUser(username, password)
	if err != nil {
		c.logger.Error(ctx, "join failed", "error", err)
		return protocol.Error(msgInternal)
	}
	if !created && user.Password != password {
		return protocol.Error(fmt.Sprintf("Incorrect password for the user %s", username))
	}

	c.token = c.srv.sessions.Register(username)
	c.logger = c.logger.With("user", username)
	c.logger.Info(ctx, "user joined", "new", created)

	if created {
		return protocol.OkToken(fmt.Sprintf("Welcome to Distributed Social, %s!", username), c.token)
	}
	return protocol.OkToken(fmt.Sprintf("Welcome back, %s!", username), c.token)
}

// authorize checks the request token against the connection's own session.
// Both checks are required: equality guards against tokens replayed from
// other connections, the registry lookup against sessions that already ended.
func (c *conn) authorize(tokenRaw json.RawMessage) (string, bool) {
	token, ok := decodeString(tokenRaw)
	if !ok || token == "" || token != c.token {
		return "", false
	}
	return c.srv.sessions.Lookup(token)
}

func (c *conn) handleBio(ctx context.Context, raw map[string]json.RawMessage) protocol.Response {
	if !hasKey(raw, "token") {
		return protocol.Error(msgMissingToken)
	}
	if len(raw) != 2 {
		return protocol.Error(msgBioBadShape)
	}
	fields, ok := decodeObject(raw["bio"])
	if !ok {
		return protocol.Error(msgBioBadShape)
	}
	if len(fields) > 2 {
		return protocol.Error(msgBioExtraFields)
	}
	if !hasAll(fields, "entry", "timestamp") {
		return protocol.Error(msgBioMissingFields)
	}
	entry, ok := decodeString(fields["entry"])
	if !ok {
		return protocol.Error(msgBioMissingFields)
	}
	username, ok := c.authorize(raw["token"])
	if !ok {
		return protocol.Error(msgInvalidToken)
	}

	// client timestamp is discarded, the server clock is authoritative
	if err := c.srv.store.UpdateBio(username, entry, common.Timestamp()); err != nil {
		c.logger.Error(ctx, "bio update failed", "error", err)
		return protocol.Error(msgInternal)
	}
	return protocol.Ok(fmt.Sprintf("Bio for %s updated.", username))
}

func (c *conn) handlePost(ctx context.Context, raw map[string]json.RawMessage) protocol.Response {
	if !hasKey(raw, "token") {
		return protocol.Error(msgMissingToken)
	}
	if len(raw) != 2 {
		return protocol.Error(msgPostBadShape)
	}
	fields, ok := decodeObject(raw["post"])
	if !ok {
		return protocol.Error(msgPostBadShape)
	}
	if len(fields) > 2 {
		return protocol.Error(msgPostExtraFields)
	}
	if !hasAll(fields, "entry", "timestamp") {
		return protocol.Error(msgPostMissingFields)
	}
	entry, ok := decodeString(fields["entry"])
	if !ok {
		return protocol.Error(msgPostMissingFields)
	}
	username, ok := c.authorize(raw["token"])
	if !ok {
		return protocol.Error(msgInvalidToken)
	}

	if err := c.srv.store.CreatePost(username, entry, common.Timestamp()); err != nil {
		c.logger.Error(ctx, "post creation failed", "error", err)
		return protocol.Error(msgInternal)
	}
	return protocol.Ok(fmt.Sprintf("Post created by %s", username))
}

// handleDirectMessage serves the three argument forms: an object sends a
// message, the literals "new" and "all" retrieve the mailbox.
func (c *conn) handleDirectMessage(ctx context.Context, raw map[string]json.RawMessage) protocol.Response {
	if !hasKey(raw, "token") {
		return protocol.Error(msgMissingToken)
	}
	if len(raw) != 2 {
		return protocol.Error(msgDMBadShape)
	}

	arg := raw["directmessage"]

	var literal string
	if err := json.Unmarshal(arg, &literal); err == nil {
		if literal != protocol.FetchNew && literal != protocol.FetchAll {
			return protocol.Error(msgDMBadFields)
		}
		username, ok := c.authorize(raw["token"])
		if !ok {
			return protocol.Error(msgInvalidToken)
		}

		var entries []storage.MailboxEntry
		var err error
		if literal == protocol.FetchNew {
			entries, err = c.srv.store.ReadNewMessages(username)
		} else {
			entries, err = c.srv.store.ReadAllMessages(username)
		}
		if err != nil {
			c.logger.Error(ctx, "mailbox retrieval failed", "error", err)
			return protocol.Error(msgInternal)
		}
		return protocol.OkMessages(toWire(entries))
	}

	fields, ok := decodeObject(arg)
	if !ok {
		return protocol.Error(msgDMBadFields)
	}
	if len(fields) != 3 {
		return protocol.Error(msgDMBadFields)
	}
	if !hasAll(fields, "entry", "recipient", "timestamp") {
		return protocol.Error(msgDMMissingFields)
	}
	entry, eok := decodeString(fields["entry"])
	recipient, rok := decodeString(fields["recipient"])
	if !eok || !rok {
		return protocol.Error(msgDMMissingFields)
	}
	username, ok := c.authorize(raw["token"])
	if !ok {
		return protocol.Error(msgInvalidToken)
	}

	err := c.srv.store.SendMessage(username, recipient, entry, common.Timestamp())
	switch {
	case err == nil:
		return protocol.Ok(msgDMSent)
	case errors.Is(err, common.ErrUnknownUser), errors.Is(err, common.ErrUnknownRecipient):
		return protocol.Error(msgDMSendFailed)
	default:
		c.logger.Error(ctx, "direct message send failed", "error", err)
		return protocol.Error(msgInternal)
	}
}

// toWire drops the status field, leaving the published listing shape.
func toWire(entries []storage.MailboxEntry) []protocol.Message {
	out := make([]protocol.Message, 0, len(entries))
	for _, e := range entries {
		out = append(out, protocol.Message{
			From:      e.From,
			Recipient: e.Recipient,
			Entry:     e.Entry,
			Timestamp: e.Timestamp,
		})
	}
	return out
}
