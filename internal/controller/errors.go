package controller

import "github.com/rotisserie/eris"

// Rejections and terminal outcomes of a command. Every one of them leaves
// the session store and the spreadsheet as they were before the command.
var (
	ErrNotInDesignatedChannel = eris.New("command must be run in the designated channel")
	ErrNotConfigured          = eris.New("guild has not completed setup")
	ErrGameAlreadyActive      = eris.New("a game is already active")
	ErrSetupPending           = eris.New("another game setup is in progress")
	ErrNoActiveGame           = eris.New("no active game")
	ErrEmptyRoster            = eris.New("no known players or commanders")
	ErrCancelled              = eris.New("cancelled by user")
	ErrTimedOut               = eris.New("timed out waiting for reply")
	ErrBackendWrite           = eris.New("spreadsheet backend failure")
)

// BackendError is a failed spreadsheet call. It matches ErrBackendWrite
// under errors.Is and unwraps to the cause.
type BackendError struct {
	Op  string
	Err error
}

func (e *BackendError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *BackendError) Unwrap() error {
	return e.Err
}

func (e *BackendError) Is(target error) bool {
	return target == ErrBackendWrite
}
