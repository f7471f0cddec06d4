package services

import (
	"chatroom/runtime"
)

type IRoomService interface {
	JoinRoom(name string) (*runtime.RoomHandle, error)
}

// RoomService sits between the transport and the runtime. Joining a room
// activates it on first contact; the returned handle is how the transport
// feeds attach/detach and raw payloads into the room actor.
type RoomService struct {
	host *runtime.Host
}

func NewRoomService(host *runtime.Host) *RoomService {
	return &RoomService{host: host}
}

func (s *RoomService) JoinRoom(name string) (*runtime.RoomHandle, error) {
	return s.host.Room(name)
}
