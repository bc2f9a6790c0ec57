// Package domain contains conference entities without transport logic.
package domain

import (
	"errors"

	"github.com/google/uuid"
)

const (
	MaxIdentityLen = 64
	MaxRoomLen     = 64
)

var (
	ErrIdentityEmpty   = errors.New("identity empty")
	ErrIdentityTooLong = errors.New("identity too long")
	ErrRoomEmpty       = errors.New("room empty")
	ErrRoomTooLong     = errors.New("room too long")
)

type (
	// EndpointID is a participant identifier as known to the media mixer.
	EndpointID string
	RoomID     string
	// StreamID is the server-assigned identifier of a remote media stream.
	StreamID   string
)

// NewIdentity is used when the operator did not configure one.
func NewIdentity() EndpointID {
	return EndpointID(uuid.NewString())
}

func ParseIdentity(s string) (EndpointID, error) {
	if len(s) == 0 {
		return "", ErrIdentityEmpty
	}
	if len(s) > MaxIdentityLen {
		return "", ErrIdentityTooLong
	}
	return EndpointID(s), nil
}

func ParseRoom(s string) (RoomID, error) {
	if len(s) == 0 {
		return "", ErrRoomEmpty
	}
	if len(s) > MaxRoomLen {
		return "", ErrRoomTooLong
	}
	return RoomID(s), nil
}
