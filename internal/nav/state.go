// Package nav holds the session state of the catalog browser and the pure
// transition function that advances it one event at a time.
//
// Nothing in this package performs I/O. Update returns at most one Fetch that
// the caller executes; the outcome comes back as a SearchDone, DetailsDone or
// FilesDone event.
package nav

import (
	"github.com/JohnDeved/mediaseek/internal/catalog"
	"github.com/JohnDeved/mediaseek/internal/textfield"
)

// Screen is the active UI mode. Exactly one is active at a time.
type Screen interface {
	screen()
}

// Query is the query-entry screen.
type Query struct{}

// Results lists search results.
type Results struct {
	Selected int
}

// Downloads lists the download sources of the result at ResultIndex.
type Downloads struct {
	Selected    int
	ResultIndex int
}

// Files lists the files of the download source at DownloadIndex.
type Files struct {
	Selected      int
	ResultIndex   int
	DownloadIndex int
}

func (Query) screen()     {}
func (Results) screen()   {}
func (Downloads) screen() {}
func (Files) screen()     {}

// FetchKind names the catalog operation a Fetch asks for.
type FetchKind int

const (
	FetchSearch FetchKind = iota + 1
	FetchDetails
	FetchFiles
)

func (k FetchKind) String() string {
	switch k {
	case FetchSearch:
		return "search"
	case FetchDetails:
		return "details"
	case FetchFiles:
		return "download"
	default:
		return "unknown"
	}
}

// Fetch is a catalog request the caller must run.
// Arg is the query, the result path or the download key depending on Kind.
type Fetch struct {
	ID   uint64
	Kind FetchKind
	Arg  string
}

// State is the whole session. Update never mutates a State it was given;
// slices held by a State are replaced, not written through.
type State struct {
	Field   textfield.Field
	Screen  Screen
	Results []catalog.SearchResult
	Details *catalog.DetailResponse
	Files   []catalog.FileItem

	// Pending is the outstanding fetch, nil when idle. It doubles as the loading flag.
	Pending *Fetch
	// Err is the last fetch failure, shown inline until the next key press.
	Err error
	// Done is set once the session should end.
	Done bool

	seq uint64
}

// New returns the initial state: an empty query of at most queryLimit runes.
func New(queryLimit int) State {
	return State{
		Field:  textfield.New(queryLimit),
		Screen: Query{},
	}
}

// Loading reports whether a fetch is outstanding.
func (s State) Loading() bool {
	return s.Pending != nil
}

// DownloadItems returns the download sources of the stored details.
func (s State) DownloadItems() []catalog.DownloadItem {
	if s.Details == nil {
		return nil
	}
	return s.Details.DownloadItems
}

// Selection returns the highlighted row of the active list screen.
// ok is false on the Query screen and for empty lists.
func (s State) Selection() (index int, ok bool) {
	switch sc := s.Screen.(type) {
	case Results:
		return sc.Selected, len(s.Results) > 0
	case Downloads:
		return sc.Selected, len(s.DownloadItems()) > 0
	case Files:
		return sc.Selected, len(s.Files) > 0
	}
	return 0, false
}

// SelectedResult returns the search result the current drill-down started from.
func (s State) SelectedResult() (catalog.SearchResult, bool) {
	idx := -1
	switch sc := s.Screen.(type) {
	case Results:
		idx = sc.Selected
	case Downloads:
		idx = sc.ResultIndex
	case Files:
		idx = sc.ResultIndex
	}
	if idx < 0 || idx >= len(s.Results) {
		return catalog.SearchResult{}, false
	}
	return s.Results[idx], true
}

// SelectedDownload returns the download source the Files screen was opened from,
// or the highlighted one on the Downloads screen.
func (s State) SelectedDownload() (catalog.DownloadItem, bool) {
	items := s.DownloadItems()
	idx := -1
	switch sc := s.Screen.(type) {
	case Downloads:
		idx = sc.Selected
	case Files:
		idx = sc.DownloadIndex
	}
	if idx < 0 || idx >= len(items) {
		return catalog.DownloadItem{}, false
	}
	return items[idx], true
}
