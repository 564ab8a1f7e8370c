package domain

import "time"

// QueueRow is one display line of a queue page.
type QueueRow struct {
	Position  int // 1-based, counted from the first track ever enqueued
	Track     Track
	Duration  string
	IsCurrent bool
}

// QueuePage is a rendered window over a session's queue.
type QueuePage struct {
	Rows        []QueueRow
	PageIndex   int // 0-based
	TotalPages  int
	TotalTracks int
}

// RenderQueuePage builds the display rows for page pageIndex (0-based) of size pageSize.
// The row whose entry is the now-playing track shows the remaining time with a "left" marker.
// Inputs are not modified. Pages past the end have no rows.
func RenderQueuePage(
	queue Queue,
	nowPlaying NowPlaying,
	pageIndex, pageSize int,
	now time.Time,
) QueuePage {
	if pageSize <= 0 {
		pageSize = 1
	}

	page := QueuePage{
		Rows:        []QueueRow{},
		PageIndex:   pageIndex,
		TotalPages:  TotalPages(queue.Len(), pageSize),
		TotalTracks: queue.Len(),
	}
	if pageIndex < 0 {
		return page
	}

	current, playing := nowPlaying.Current()
	offset := pageIndex * pageSize

	for i, track := range queue.PeekPage(offset, pageSize) {
		row := QueueRow{
			Position: offset + i + 1,
			Track:    track,
			Duration: track.FormattedDuration(),
		}
		if playing && track.ID == current.ID {
			row.IsCurrent = true
			row.Duration = track.FormattedRemaining(nowPlaying.Elapsed(now))
		}
		page.Rows = append(page.Rows, row)
	}

	return page
}

// DefaultPageIndex returns the page holding the current track, or the page holding the next
// pending track when idle.
func DefaultPageIndex(queue Queue, nowPlaying NowPlaying, pageSize int) int {
	if pageSize <= 0 || queue.Len() == 0 {
		return 0
	}

	index := queue.Cursor()
	if current, ok := nowPlaying.Current(); ok {
		if i := queue.IndexOf(current.ID); i >= 0 {
			index = i
		}
	}
	index = min(index, queue.Len()-1)

	return index / pageSize
}

// TotalPages returns the number of pages needed for n tracks. An empty queue has one page.
func TotalPages(n, pageSize int) int {
	if n <= 0 || pageSize <= 0 {
		return 1
	}
	return (n + pageSize - 1) / pageSize
}
