package search

import "errors"

var (
	// ErrEmptyPopulation is returned when selection runs on a population with no melodies.
	ErrEmptyPopulation = errors.New("population is empty")
	// ErrInsufficientWinners means selection produced fewer than two parents.
	ErrInsufficientWinners = errors.New("fewer than two winners to breed from")
	// ErrInvalidWinnerIndex means a judge answered something other than 0 or 1.
	ErrInvalidWinnerIndex = errors.New("judge returned an invalid winner index")
	// ErrInvalidParameter covers negative sizes, budgets and cooling schedules.
	ErrInvalidParameter = errors.New("invalid search parameter")
)
