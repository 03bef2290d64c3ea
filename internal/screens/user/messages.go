package user

import (
	"github.com/mirrorsensei/sensei/internal/study"
)

// studyDoneMsg carries the main response for a submitted query.
type studyDoneMsg struct {
	Text string
	Err  error
}

// translateDoneMsg carries a translation result.
type translateDoneMsg struct {
	Text string
	Err  error
}

// qaDoneMsg carries an instant Q&A answer.
type qaDoneMsg struct {
	Text string
	Err  error
}

// historyLoadedMsg carries the history window for Search.
type historyLoadedMsg struct {
	Search string
	Items  []study.HistoryItem
	Err    error
}
