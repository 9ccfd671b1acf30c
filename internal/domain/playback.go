package domain

func (r *Room) IsPlaying() bool { return r.isPlaying }

func (r *Room) CurrentTime() float64 { return r.currentTime }

// Play records the host-reported position and marks the room playing. The
// position is trusted verbatim; the server does not re-measure elapsed time.
func (r *Room) Play(currentTime float64) {
	r.isPlaying = true
	r.currentTime = currentTime
}

// Pause freezes playback at whatever position was last recorded.
func (r *Room) Pause() {
	r.isPlaying = false
}

func (r *Room) Seek(newTime float64) {
	r.currentTime = newTime
}
