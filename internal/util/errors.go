package util

import "errors"

var (
	ErrSessionNotFound    = errors.New("session not found")
	ErrSectionRegression  = errors.New("cannot return to previous section")
	ErrUnknownSection     = errors.New("unknown quiz section")
	ErrGoalRequired       = errors.New("goal required for this section")
	ErrNotSessionOwner    = errors.New("not authorized to delete this session")
	ErrChartNotConfigured = errors.New("no chart configured for calorie value")
	ErrChartDuplicate     = errors.New("chart with this value already exists")
	ErrChartNotFound      = errors.New("chart not found")
)
