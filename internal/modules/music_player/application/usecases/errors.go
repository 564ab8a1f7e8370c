package usecases

import (
	"errors"
	"fmt"
)

// Error categories. Concrete errors below are joined onto one of them, so callers can
// test either the specific condition or its category with errors.Is.
var (
	// ErrUserInput marks failures caused by the request itself. They are safe to show to users.
	ErrUserInput = errors.New("invalid request")

	// ErrServiceUnavailable marks failures of an external collaborator such as the voice
	// gateway or the track backend.
	ErrServiceUnavailable = errors.New("service unavailable")
)

// Errors for the music player module.
var (
	// ErrNotConnected is returned when an operation requires the bot to be in a voice channel.
	ErrNotConnected = userInputError("not connected to a voice channel")

	// ErrUserNotInVoice is returned when the user is not in a voice channel.
	ErrUserNotInVoice = userInputError("you must be in a voice channel")

	// ErrNotPlaying is returned when no track is currently playing.
	ErrNotPlaying = userInputError("nothing is currently playing")

	// ErrAlreadyPaused is returned when trying to pause while already paused.
	ErrAlreadyPaused = userInputError("playback is already paused")

	// ErrNotPaused is returned when trying to resume while not paused.
	ErrNotPaused = userInputError("playback is not paused")

	// ErrNoResults is returned when a search yields no results.
	ErrNoResults = userInputError("no results found")

	// ErrEmptyQuery is returned when a play request has no query.
	ErrEmptyQuery = userInputError("query must not be empty")

	// ErrInvalidPage is returned when a queue page past the end is requested.
	ErrInvalidPage = userInputError("invalid queue page")

	// ErrLoadFailed is returned when the track backend fails.
	ErrLoadFailed = serviceError("failed to load tracks")

	// ErrJoinFailed is returned when connecting to a voice channel fails.
	ErrJoinFailed = serviceError("failed to join voice channel")
)

// ErrorKind groups errors by how they should be reported.
type ErrorKind int

const (
	ErrorKindInternal ErrorKind = iota
	ErrorKindUserInput
	ErrorKindServiceUnavailable
)

// ClassifyError returns the category of err.
func ClassifyError(err error) ErrorKind {
	switch {
	case errors.Is(err, ErrUserInput):
		return ErrorKindUserInput
	case errors.Is(err, ErrServiceUnavailable):
		return ErrorKindServiceUnavailable
	default:
		return ErrorKindInternal
	}
}

// categorised is a sentinel that also matches its category.
type categorised struct {
	msg      string
	category error
}

func (e *categorised) Error() string { return e.msg }

func (e *categorised) Is(target error) bool { return target == e.category }

func userInputError(msg string) error {
	return &categorised{msg: msg, category: ErrUserInput}
}

func serviceError(msg string) error {
	return &categorised{msg: msg, category: ErrServiceUnavailable}
}

// wrapService attaches the cause to a service sentinel so both stay matchable.
func wrapService(sentinel, cause error) error {
	return fmt.Errorf("%w: %w", sentinel, cause)
}
