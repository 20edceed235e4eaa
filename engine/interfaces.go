package engine

import "rtcfix/transfer"

// Presenter renders scenes. Present is called every tick and must not wait for drawing to
// finish.
type Presenter interface {
	Present(scene transfer.Scene)
}

// ProgressPresenter is optionally implemented by a Presenter that can show transfer progress.
type ProgressPresenter interface {
	PresentProgress(sent, total int)
}

// Input yields the user's confirmation as an edge: true once per press.
type Input interface {
	Confirmed() bool
}

// Restarter resets the device once the transfer is acknowledged.
type Restarter interface {
	Restart()
}

type RestarterFunc func()

func (f RestarterFunc) Restart() { f() }
