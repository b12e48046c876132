// Package filter implements the text + category filter over the post list.
//
// Filter state moves through pure transitions: Reduce never mutates its
// input, and Apply is a function of (posts, state) only.
package filter

import "strings"

// State is the active filter. The zero value means "no filter".
type State struct {
	Query     string `json:"query"`
	Primary   string `json:"primary"`
	Secondary string `json:"secondary"`
}

// IsZero reports whether no filter is active.
func (s State) IsZero() bool {
	return s == State{}
}

// Action is a user-driven transition of the filter state.
type Action interface {
	apply(State) State
}

// SetCategory replaces the category selection.
type SetCategory struct {
	Primary   string
	Secondary string
}

func (a SetCategory) apply(s State) State {
	s.Primary = a.Primary
	s.Secondary = a.Secondary
	return s
}

// ClearCategory resets the category selection, keeping the text query.
type ClearCategory struct{}

func (ClearCategory) apply(s State) State {
	s.Primary = ""
	s.Secondary = ""
	return s
}

// TextInput replaces the text query. The query is stored lower-cased.
type TextInput struct {
	Text string
}

func (a TextInput) apply(s State) State {
	s.Query = strings.ToLower(a.Text)
	return s
}

// Reduce returns the state after applying a. A nil action leaves s unchanged.
func Reduce(s State, a Action) State {
	if a == nil {
		return s
	}
	return a.apply(s)
}
