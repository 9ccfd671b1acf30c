package domain

import (
	"errors"
	"sync"
)

var (
	ErrUserAlreadyJoined   = errors.New("user already joined")
	ErrMembersLimitReached = errors.New("members limit reached")
	ErrQueueLimitReached   = errors.New("queue limit reached")
	ErrEmptyQueue          = errors.New("queue is empty")
)

// MediaRef is an opaque reference to a playable item. The server never
// resolves it; clients know how to turn {type, id} into an actual player.
type MediaRef struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

type User struct {
	ConnectionID string `json:"connection_id"`
	DisplayName  string `json:"display_name"`
}

// State is the full authoritative snapshot of a room, sent to a joining
// member so it can reconstruct playback without replaying history.
type State struct {
	RoomCode     string     `json:"room_code"`
	HostID       string     `json:"host_id"`
	Media        *MediaRef  `json:"media"`
	Queue        []MediaRef `json:"queue"`
	CurrentIndex int        `json:"current_index"`
	IsPlaying    bool       `json:"is_playing"`
	CurrentTime  float64    `json:"current_time"`
	Users        []User     `json:"users"`
}

// Room is the authoritative state of one session. All mutations for a room
// are serialized under its mutex: callers take Lock before invoking any
// method below and hold it until the resulting fan-out set is captured.
type Room struct {
	mu sync.Mutex

	code         string
	hostID       string
	queue        []MediaRef
	currentIndex int
	media        *MediaRef
	isPlaying    bool
	currentTime  float64
	users        []User
	closed       bool

	membersLimit int
	queueLimit   int
}

func NewRoom(code string, host User, membersLimit, queueLimit int) *Room {
	return &Room{
		code:         code,
		hostID:       host.ConnectionID,
		users:        []User{host},
		queue:        []MediaRef{},
		membersLimit: membersLimit,
		queueLimit:   queueLimit,
	}
}

func (r *Room) Lock()   { r.mu.Lock() }
func (r *Room) Unlock() { r.mu.Unlock() }

// Close marks the room dead. Operations that raced the deletion observe the
// flag after taking the lock and treat the room as not found.
func (r *Room) Close()       { r.closed = true }
func (r *Room) Closed() bool { return r.closed }

func (r *Room) Code() string   { return r.code }
func (r *Room) HostID() string { return r.hostID }

func (r *Room) IsHost(connectionID string) bool {
	return r.hostID == connectionID
}

func (r *Room) HasUser(connectionID string) bool {
	for _, user := range r.users {
		if user.ConnectionID == connectionID {
			return true
		}
	}

	return false
}

func (r *Room) DisplayNameOf(connectionID string) (string, bool) {
	for _, user := range r.users {
		if user.ConnectionID == connectionID {
			return user.DisplayName, true
		}
	}

	return "", false
}

// Users returns the member list in join order.
func (r *Room) Users() []User {
	users := make([]User, len(r.users))
	copy(users, r.users)
	return users
}

func (r *Room) AddUser(user User) error {
	if r.HasUser(user.ConnectionID) {
		return ErrUserAlreadyJoined
	}

	if r.membersLimit > 0 && len(r.users) >= r.membersLimit {
		return ErrMembersLimitReached
	}

	r.users = append(r.users, user)
	return nil
}

// RemoveUser removes the user with the given connection id. If the departing
// user was the host and members remain, the first remaining member in join
// order is promoted - a room is never left host-less. Reports the removed
// user and whether the room is now empty (the caller must then delete it).
func (r *Room) RemoveUser(connectionID string) (User, bool, bool) {
	for i, user := range r.users {
		if user.ConnectionID != connectionID {
			continue
		}

		r.users = append(r.users[:i], r.users[i+1:]...)

		if len(r.users) == 0 {
			return user, true, true
		}

		if r.hostID == connectionID {
			r.hostID = r.users[0].ConnectionID
		}

		return user, true, false
	}

	return User{}, false, false
}

func (r *Room) State() State {
	return State{
		RoomCode:     r.code,
		HostID:       r.hostID,
		Media:        r.media,
		Queue:        r.Queue(),
		CurrentIndex: r.currentIndex,
		IsPlaying:    r.isPlaying,
		CurrentTime:  r.currentTime,
		Users:        r.Users(),
	}
}
