package controller

import (
	"github.com/watchroom/server/pkg/wsrouter"
)

func (c controller) getWSRouter() *wsrouter.WSRouter {
	mux := wsrouter.New(c.sendError)

	mux.Handle("ALIVE", c.handleAlive)

	// room lifecycle
	mux.Handle("CREATE_ROOM", c.handleCreateRoom)
	mux.Handle("JOIN_ROOM", c.handleJoinRoom)

	// queue
	mux.Handle("LOAD_MEDIA", c.handleLoadMedia)
	mux.Handle("NEXT_VIDEO", c.handleNextMedia)
	mux.Handle("PREV_VIDEO", c.handlePrevMedia)

	// playback
	mux.Handle("PLAY", c.handlePlay)
	mux.Handle("PAUSE", c.handlePause)
	mux.Handle("SEEK", c.handleSeek)

	// chat
	mux.Handle("SEND_CHAT", c.handleSendChat)

	// call signaling, relayed to one peer
	mux.Handle("VOICE_OFFER", c.handleSignal(eventVoiceOffer))
	mux.Handle("VOICE_ANSWER", c.handleSignal(eventVoiceAnswer))
	mux.Handle("ICE_CANDIDATE", c.handleSignal(eventIceCandidate))

	return mux
}
