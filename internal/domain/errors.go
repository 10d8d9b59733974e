package domain

import "errors"

var (
	// ErrInvalidState is returned when an operation is attempted in a
	// session status (or track outcome) that does not allow it.
	ErrInvalidState = errors.New("operation not allowed in current state")
	// ErrAnswerNotFound indicates a selected answer ID is not in the
	// active track's catalog (UI/catalog desync).
	ErrAnswerNotFound = errors.New("answer not in current catalog")
	// ErrTrackNotFound indicates a submitted track ID is unknown.
	ErrTrackNotFound = errors.New("track not found")
	// ErrGameNotFound indicates the game definition could not be loaded.
	ErrGameNotFound = errors.New("game not found")
	// ErrSessionNotFound is returned when a play session has not been started.
	ErrSessionNotFound = errors.New("game session not found")
	// ErrNetworkFailure wraps transport errors from the scoring backend.
	ErrNetworkFailure = errors.New("scoring backend unreachable")
)
