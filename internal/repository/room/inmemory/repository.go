// Package inmemory holds the room registry: the single authoritative mapping
// of room code to room entity. Rooms live only in process memory; surviving a
// restart is explicitly not a goal.
package inmemory

import (
	"errors"
	"log/slog"
	"sync"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/watchroom/server/internal/domain"
	"github.com/watchroom/server/pkg/randstr"
)

var (
	ErrRoomNotFound = errors.New("room not found")
	// ErrCodeSpaceExhausted means code generation kept colliding for the
	// whole retry budget. With the default charset and length that is not a
	// plausible random outcome - it signals a misconfigured code length.
	ErrCodeSpaceExhausted = errors.New("room code space exhausted")
)

// codeCharset deliberately drops 0/O/1/I: codes are meant to be read out
// loud and typed.
const codeCharset = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

const maxCodeAttempts = 100

type iGenerator interface {
	GenerateRandomString(length int) string
}

type Config struct {
	CodeLength   int
	MembersLimit int
	QueueLimit   int
}

type repo struct {
	rooms     map[string]*domain.Room
	mu        sync.RWMutex
	generator iGenerator
	cfg       Config
	logger    *slog.Logger
}

func NewRepo(cfg Config, logger *slog.Logger) *repo {
	return &repo{
		rooms:     make(map[string]*domain.Room),
		generator: randstr.New([]byte(codeCharset)),
		cfg:       cfg,
		logger:    logger,
	}
}

// CreateRoom generates a code not present in the registry and inserts a new
// room with host as its sole member. Generation and insertion happen under
// one lock, so two concurrent creates can never both claim the same code.
func (r *repo) CreateRoom(host domain.User) (*domain.Room, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		code := r.generator.GenerateRandomString(r.cfg.CodeLength)
		if _, taken := r.rooms[code]; taken {
			r.logger.Warn("room code collision", "code", code, "attempt", attempt)
			continue
		}

		room := domain.NewRoom(code, host, r.cfg.MembersLimit, r.cfg.QueueLimit)
		r.rooms[code] = room
		return room, nil
	}

	return nil, ErrCodeSpaceExhausted
}

func (r *repo) GetRoom(code string) (*domain.Room, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	room, ok := r.rooms[code]
	if !ok {
		return nil, ErrRoomNotFound
	}

	return room, nil
}

func (r *repo) DeleteRoom(code string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.rooms[code]; !ok {
		return ErrRoomNotFound
	}

	delete(r.rooms, code)
	return nil
}

func (r *repo) HasRoom(code string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.rooms[code]
	return ok
}

// RoomCodes returns the active codes in stable order.
func (r *repo) RoomCodes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	codes := maps.Keys(r.rooms)
	slices.Sort(codes)
	return codes
}
