package domain

// Queue returns a copy of the media queue.
func (r *Room) Queue() []MediaRef {
	queue := make([]MediaRef, len(r.queue))
	copy(queue, r.queue)
	return queue
}

func (r *Room) CurrentIndex() int { return r.currentIndex }

func (r *Room) Media() *MediaRef { return r.media }

// LoadMedia either appends media to the queue, leaving the active item
// untouched, or replaces the whole queue with the single given item and makes
// it active.
func (r *Room) LoadMedia(media MediaRef, addToQueue bool) error {
	if addToQueue {
		if r.queueLimit > 0 && len(r.queue) >= r.queueLimit {
			return ErrQueueLimitReached
		}

		r.queue = append(r.queue, media)
		return nil
	}

	r.queue = []MediaRef{media}
	r.currentIndex = 0
	r.media = &media
	return nil
}

// Advance moves the queue cursor by delta with modular wraparound in both
// directions, makes the item at the new index active, and resets playback to
// a paused position zero.
func (r *Room) Advance(delta int) error {
	n := len(r.queue)
	if n == 0 {
		return ErrEmptyQueue
	}

	r.currentIndex = ((r.currentIndex+delta)%n + n) % n
	media := r.queue[r.currentIndex]
	r.media = &media
	r.currentTime = 0
	r.isPlaying = false
	return nil
}
