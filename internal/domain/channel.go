package domain

import "context"

// InboundMessage is a message received from a channel (user input).
type InboundMessage struct {
	SessionID   string
	Content     string
	Caption     string // media caption, used when Content is empty
	ChannelName string

	SenderID   string `json:"sender_id,omitempty"`
	SenderName string `json:"sender_name,omitempty"`
}

// OutboundMessage is a message sent to a channel (pipeline response).
type OutboundMessage struct {
	SessionID string
	Content   string
	IsError   bool
}

// MessageHandler is a callback the channel invokes when it receives input.
type MessageHandler func(ctx context.Context, msg InboundMessage) error

// Channel is the interface for user-facing I/O adapters.
type Channel interface {
	Start(ctx context.Context, handler MessageHandler) error
	Stop(ctx context.Context) error
	Send(ctx context.Context, msg OutboundMessage) error
	Name() string
}
