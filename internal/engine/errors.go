package engine

import "errors"

var (
	// ErrAlreadyTracking rejects start() while a session is live. Existing
	// session state is untouched.
	ErrAlreadyTracking = errors.New("a trip is already being tracked")

	// ErrPermissionDenied means a required location capability was refused;
	// start fails closed with no partial state.
	ErrPermissionDenied = errors.New("location permission denied")

	// ErrBackgroundPermissionDenied names the background capability
	// specifically, since foreground-only tracking may still be possible.
	ErrBackgroundPermissionDenied = errors.New("background location permission denied")

	// ErrNoMileageRate means the deduction rate was not configured. The rate
	// is injected, versioned configuration; tracking without it would write
	// unusable records.
	ErrNoMileageRate = errors.New("mileage rate not configured")

	// ErrNotTracking means the operation needs a live session and none
	// exists.
	ErrNotTracking = errors.New("no trip is being tracked")

	// ErrNothingHeld means there is no retained trip record to resubmit or
	// discard.
	ErrNothingHeld = errors.New("no held trip record")
)
