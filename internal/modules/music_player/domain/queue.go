package domain

// Queue is an append-only list of tracks with a cursor marking how many have been consumed.
// Tracks are never reordered or removed and the cursor only moves forward until Reset.
type Queue struct {
	tracks []Track
	cursor int
}

// NewQueue creates an empty Queue.
func NewQueue() Queue {
	return Queue{}
}

// Enqueue appends tracks in order. It never starts playback.
func (q *Queue) Enqueue(tracks ...Track) {
	q.tracks = append(q.tracks, tracks...)
}

// HasPending returns true if at least one track sits at or after the cursor.
func (q *Queue) HasPending() bool {
	return q.cursor < len(q.tracks)
}

// DequeueNext returns the track at the cursor and advances it.
// The second return value is false when nothing is pending.
func (q *Queue) DequeueNext() (Track, bool) {
	if !q.HasPending() {
		return Track{}, false
	}
	track := q.tracks[q.cursor]
	q.cursor++
	return track, true
}

// PeekPage returns up to count tracks starting at offset, counting from the first track ever
// enqueued. Out-of-range offsets yield an empty slice.
func (q *Queue) PeekPage(offset, count int) []Track {
	if offset < 0 || count <= 0 || offset >= len(q.tracks) {
		return []Track{}
	}
	end := min(offset+count, len(q.tracks))

	page := make([]Track, end-offset)
	copy(page, q.tracks[offset:end])
	return page
}

// Len returns the number of tracks ever enqueued, played or not.
func (q *Queue) Len() int {
	return len(q.tracks)
}

// Pending returns the number of tracks not yet dequeued.
func (q *Queue) Pending() int {
	return len(q.tracks) - q.cursor
}

// Cursor returns the number of tracks already dequeued.
func (q *Queue) Cursor() int {
	return q.cursor
}

// IndexOf returns the position of the entry with the given ID, or -1.
func (q *Queue) IndexOf(id TrackID) int {
	for i, t := range q.tracks {
		if t.ID == id {
			return i
		}
	}
	return -1
}

// Reset drops every track and rewinds the cursor. Only used on session teardown.
func (q *Queue) Reset() {
	q.tracks = nil
	q.cursor = 0
}

// Clone returns an independent copy for read-only rendering.
func (q *Queue) Clone() Queue {
	tracks := make([]Track, len(q.tracks))
	copy(tracks, q.tracks)
	return Queue{tracks: tracks, cursor: q.cursor}
}
