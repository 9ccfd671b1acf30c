// Package synctime holds the timestamp arithmetic shared by the server and
// its clients. Every playback-control broadcast carries the server's
// wall-clock send time in milliseconds; receivers use the elapsed time since
// that stamp to agree on a playback position. The protocol does not measure
// round-trip time, so it cannot correct for asymmetric latency - all it
// guarantees is that every receiver applies the same formula to the same
// (position, timestamp) pair.
package synctime

import "time"

// NowMs returns the current wall-clock time in milliseconds since epoch,
// the unit used for every timestamp on the wire.
func NowMs() int64 {
	return time.Now().UnixMilli()
}

// Offset returns the elapsed seconds between a server timestamp and the
// receiver's local clock.
func Offset(timestampMs, localNowMs int64) float64 {
	return float64(localNowMs-timestampMs) / 1000
}

// PlayTarget computes the position a receiver should start playing at:
// the host-reported position plus the time the event spent in flight.
func PlayTarget(currentTime float64, timestampMs, localNowMs int64) float64 {
	return currentTime + Offset(timestampMs, localNowMs)
}

// SeekTarget computes the position a receiver should seek to. The offset is
// not applied: agreement on newTime is what produces sync, and clients that
// want in-flight compensation can add Offset by convention.
func SeekTarget(newTime float64) float64 {
	return newTime
}
