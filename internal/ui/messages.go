package ui

import (
	"time"

	"artassist/internal/poll"
	"artassist/internal/progress"
)

// tickMsg drives the fixed-interval poll.
type tickMsg time.Time

// pollMsg carries one poll result plus the server reachability probe.
type pollMsg struct {
	Display  poll.Display
	ServerOK bool
}

type batchUpdateMsg struct {
	U progress.Update
}

type batchImageMsg struct {
	I progress.ImageDone
}

type batchResultMsg struct {
	R progress.Result
}
