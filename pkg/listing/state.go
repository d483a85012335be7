package listing

// State is the mutable query state behind one collection view. It owns the
// two rules that are easy to get wrong in every table UI: toggling a sort
// re-clicks flip direction, new columns start ascending; and any change that
// alters the result set size (search, status, page size) resets the offset
// back to the first page.
type State struct {
	q Query
}

// NewState returns a State producing the zero Query (first page, default
// limit, newest first).
func NewState() *State {
	return &State{}
}

// Query returns the current query, normalized.
func (s *State) Query() Query {
	return s.q.Normalize()
}

// ToggleSort applies a click on a column header. Clicking the current sort
// column flips the direction; clicking a different column selects it with
// ascending direction.
func (s *State) ToggleSort(column string) {
	if s.q.OrderBy == column {
		if s.q.Dir == Asc {
			s.q.Dir = Desc
		} else {
			s.q.Dir = Asc
		}
		return
	}
	s.q.OrderBy = column
	s.q.Dir = Asc
}

// SetSearch replaces the free-text filter and resets to the first page.
func (s *State) SetSearch(search string) {
	if s.q.Search == search {
		return
	}
	s.q.Search = search
	s.q.Skip = 0
}

// SetStatus replaces the status filter and resets to the first page.
func (s *State) SetStatus(status string) {
	if s.q.Status == status {
		return
	}
	s.q.Status = status
	s.q.Skip = 0
}

// SetLimit changes the page size and resets to the first page.
func (s *State) SetLimit(limit int) {
	if s.q.Limit == limit {
		return
	}
	s.q.Limit = limit
	s.q.Skip = 0
}

// NextPage advances the offset by one page.
func (s *State) NextPage() {
	s.q = s.q.Normalize()
	s.q.Skip += s.q.Limit
}

// PrevPage moves the offset back by one page, stopping at the first.
func (s *State) PrevPage() {
	s.q = s.q.Normalize()
	s.q.Skip -= s.q.Limit
	if s.q.Skip < 0 {
		s.q.Skip = 0
	}
}
