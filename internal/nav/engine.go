package nav

import (
	"unicode"

	"github.com/JohnDeved/mediaseek/internal/catalog"
)

// Key is a logical key, already decoded from the terminal.
type Key int

const (
	KeyNone Key = iota
	KeyRune
	KeyBackspace
	KeyLeft
	KeyRight
	KeyUp
	KeyDown
	KeyEnter
	KeyEsc
	// KeyQuit ends the session from any screen, even mid-fetch.
	KeyQuit
)

// Event is an input to Update.
type Event interface {
	event()
}

// KeyEvent is a key press. Rune is only meaningful for KeyRune.
type KeyEvent struct {
	Key  Key
	Rune rune
}

// SearchDone completes a FetchSearch.
type SearchDone struct {
	ID      uint64
	Results []catalog.SearchResult
	Err     error
}

// DetailsDone completes a FetchDetails.
type DetailsDone struct {
	ID      uint64
	Details *catalog.DetailResponse
	Err     error
}

// FilesDone completes a FetchFiles.
type FilesDone struct {
	ID    uint64
	Files []catalog.FileItem
	Err   error
}

func (KeyEvent) event()    {}
func (SearchDone) event()  {}
func (DetailsDone) event() {}
func (FilesDone) event()   {}

// Update applies ev to s and returns the next state plus the fetch to run, if any.
// Input/state pairs without a transition leave the state unchanged.
func Update(s State, ev Event) (State, *Fetch) {
	if s.Done {
		return s, nil
	}

	switch ev := ev.(type) {
	case KeyEvent:
		return handleKey(s, ev)
	case SearchDone:
		return completeSearch(s, ev), nil
	case DetailsDone:
		return completeDetails(s, ev), nil
	case FilesDone:
		return completeFiles(s, ev), nil
	}
	return s, nil
}

func handleKey(s State, ev KeyEvent) (State, *Fetch) {
	if ev.Key == KeyQuit {
		s.Pending = nil
		s.Done = true
		return s, nil
	}

	// Keys typed while a fetch is outstanding are dropped, except Esc which
	// abandons the fetch and leaves the screen as it was.
	if s.Pending != nil {
		if ev.Key == KeyEsc {
			s.Pending = nil
		}
		return s, nil
	}

	s.Err = nil

	switch sc := s.Screen.(type) {
	case Query:
		return queryKey(s, ev)
	case Results:
		return resultsKey(s, sc, ev)
	case Downloads:
		return downloadsKey(s, sc, ev)
	case Files:
		return filesKey(s, sc, ev)
	}
	return s, nil
}

func queryKey(s State, ev KeyEvent) (State, *Fetch) {
	switch ev.Key {
	case KeyRune:
		if isPrintable(ev.Rune) {
			s.Field.Insert(ev.Rune)
		}
	case KeyBackspace:
		s.Field.DeleteBackward()
	case KeyLeft:
		s.Field.MoveLeft()
	case KeyRight:
		s.Field.MoveRight()
	case KeyEnter:
		return issue(s, FetchSearch, s.Field.Value())
	case KeyEsc:
		s.Done = true
	}
	return s, nil
}

func resultsKey(s State, sc Results, ev KeyEvent) (State, *Fetch) {
	switch ev.Key {
	case KeyUp:
		sc.Selected = moveSelection(sc.Selected, -1, len(s.Results))
		s.Screen = sc
	case KeyDown:
		sc.Selected = moveSelection(sc.Selected, 1, len(s.Results))
		s.Screen = sc
	case KeyEnter:
		if sc.Selected < 0 || sc.Selected >= len(s.Results) {
			return s, nil
		}
		return issue(s, FetchDetails, s.Results[sc.Selected].Path)
	case KeyEsc:
		s.Results = nil
		s.Details = nil
		s.Files = nil
		s.Screen = Query{}
	}
	return s, nil
}

func downloadsKey(s State, sc Downloads, ev KeyEvent) (State, *Fetch) {
	items := s.DownloadItems()
	switch ev.Key {
	case KeyUp:
		sc.Selected = moveSelection(sc.Selected, -1, len(items))
		s.Screen = sc
	case KeyDown:
		sc.Selected = moveSelection(sc.Selected, 1, len(items))
		s.Screen = sc
	case KeyEnter:
		if sc.Selected < 0 || sc.Selected >= len(items) {
			return s, nil
		}
		return issue(s, FetchFiles, items[sc.Selected].DownloadKey)
	case KeyEsc:
		s.Screen = Results{Selected: clampIndex(sc.ResultIndex, len(s.Results))}
	}
	return s, nil
}

func filesKey(s State, sc Files, ev KeyEvent) (State, *Fetch) {
	switch ev.Key {
	case KeyUp:
		sc.Selected = moveSelection(sc.Selected, -1, len(s.Files))
		s.Screen = sc
	case KeyDown:
		sc.Selected = moveSelection(sc.Selected, 1, len(s.Files))
		s.Screen = sc
	case KeyEsc:
		s.Files = nil
		s.Screen = Downloads{
			Selected:    clampIndex(sc.DownloadIndex, len(s.DownloadItems())),
			ResultIndex: sc.ResultIndex,
		}
	}
	return s, nil
}

func issue(s State, kind FetchKind, arg string) (State, *Fetch) {
	s.seq++
	f := &Fetch{ID: s.seq, Kind: kind, Arg: arg}
	s.Pending = f
	return s, f
}

// accept reports whether a completion answers the outstanding fetch.
// Completions for abandoned or superseded fetches are ignored.
func accept(s State, id uint64, kind FetchKind) bool {
	return s.Pending != nil && s.Pending.ID == id && s.Pending.Kind == kind
}

func completeSearch(s State, ev SearchDone) State {
	if !accept(s, ev.ID, FetchSearch) {
		return s
	}
	s.Pending = nil
	if ev.Err != nil {
		s.Err = ev.Err
		return s
	}
	s.Results = ev.Results
	s.Details = nil
	s.Files = nil
	s.Screen = Results{Selected: 0}
	return s
}

func completeDetails(s State, ev DetailsDone) State {
	if !accept(s, ev.ID, FetchDetails) {
		return s
	}
	s.Pending = nil
	if ev.Err != nil {
		s.Err = ev.Err
		return s
	}
	sc, ok := s.Screen.(Results)
	if !ok {
		return s
	}
	details := ev.Details
	if details == nil {
		details = &catalog.DetailResponse{}
	}
	s.Details = details
	s.Files = nil
	s.Screen = Downloads{Selected: 0, ResultIndex: sc.Selected}
	return s
}

func completeFiles(s State, ev FilesDone) State {
	if !accept(s, ev.ID, FetchFiles) {
		return s
	}
	s.Pending = nil
	if ev.Err != nil {
		s.Err = ev.Err
		return s
	}
	sc, ok := s.Screen.(Downloads)
	if !ok {
		return s
	}
	s.Files = ev.Files
	s.Screen = Files{Selected: 0, ResultIndex: sc.ResultIndex, DownloadIndex: sc.Selected}
	return s
}

// moveSelection moves sel by delta, saturating at both ends of a list of n rows.
func moveSelection(sel, delta, n int) int {
	if n == 0 {
		return 0
	}
	return clampIndex(sel+delta, n)
}

func clampIndex(i, n int) int {
	if i >= n {
		i = n - 1
	}
	if i < 0 {
		i = 0
	}
	return i
}

func isPrintable(r rune) bool {
	return r != 0 && unicode.IsPrint(r)
}
