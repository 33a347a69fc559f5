package protocol

import (
	"encoding/json"
	"fmt"
)

// Response is the envelope the server writes back, one per request. The
// response body shape depends on the command: a mailbox listing carries
// "messages", a successful join carries "token", everything else carries just
// "message".
type Response struct {
	Response any `json:"response"`
}

type statusBody struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type tokenBody struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	Token   string `json:"token"`
}

type listBody struct {
	Type     string    `json:"type"`
	Messages []Message `json:"messages"`
}

// Ok builds a plain success response.
func Ok(message string) Response {
	return Response{Response: statusBody{Type: StatusOK, Message: message}}
}

// Error builds an error response.
func Error(message string) Response {
	return Response{Response: statusBody{Type: StatusError, Message: message}}
}

// OkToken builds the response to a successful join.
func OkToken(message, token string) Response {
	return Response{Response: tokenBody{Type: StatusOK, Message: message, Token: token}}
}

// OkMessages builds a mailbox listing response. The messages field is always
// present, even when the mailbox is empty.
func OkMessages(msgs []Message) Response {
	if msgs == nil {
		msgs = []Message{}
	}
	return Response{Response: listBody{Type: StatusOK, Messages: msgs}}
}

// ServerResponse is the client-side view of a decoded response line.
// HasMessages distinguishes an absent messages field from an empty listing.
type ServerResponse struct {
	Type        string
	Message     string
	Token       string
	Messages    []Message
	HasMessages bool
}

// OK reports whether the response status is "ok".
func (r *ServerResponse) OK() bool {
	return r.Type == StatusOK
}

type responseEnvelope struct {
	Response *struct {
		Type     string          `json:"type"`
		Message  string          `json:"message"`
		Token    string          `json:"token"`
		Messages json.RawMessage `json:"messages"`
	} `json:"response"`
}

// DecodeResponse parses one response line received from the server.
func DecodeResponse(line string) (*ServerResponse, error) {
	var env responseEnvelope
	if err := json.Unmarshal([]byte(line), &env); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if env.Response == nil {
		return nil, ErrMalformedResponse
	}

	resp := &ServerResponse{
		Type:    env.Response.Type,
		Message: env.Response.Message,
		Token:   env.Response.Token,
	}
	if env.Response.Messages != nil {
		resp.HasMessages = true
		if err := json.Unmarshal(env.Response.Messages, &resp.Messages); err != nil {
			return nil, fmt.Errorf("decode messages: %w", err)
		}
	}
	return resp, nil
}
