package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestFollowUpClassify(t *testing.T) {
	now := time.Date(2026, 3, 15, 10, 30, 0, 0, time.UTC)

	cases := []struct {
		name      string
		due       time.Time
		completed bool
		want      string
	}{
		{"due tomorrow", day(2026, 3, 16), false, FollowUpPending},
		{"due today", day(2026, 3, 15), false, FollowUpPending},
		{"due yesterday", day(2026, 3, 14), false, FollowUpOverdue},
		{"overdue but completed", day(2026, 3, 1), true, FollowUpCompleted},
		{"future and completed", day(2026, 4, 1), true, FollowUpCompleted},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			task := &FollowUpTask{DueDate: tc.due, IsCompleted: tc.completed}
			assert.Equal(t, tc.want, task.Classify(now))
		})
	}
}

func TestFollowUpDaysOverdue(t *testing.T) {
	now := time.Date(2026, 3, 15, 23, 45, 0, 0, time.UTC)

	task := &FollowUpTask{DueDate: day(2026, 3, 12)}
	assert.Equal(t, 3, task.DaysOverdue(now))

	task = &FollowUpTask{DueDate: day(2026, 3, 15)}
	assert.Equal(t, 0, task.DaysOverdue(now))

	task = &FollowUpTask{DueDate: day(2026, 3, 20)}
	assert.Equal(t, -5, task.DaysOverdue(now))
}

func TestNewFileNumber(t *testing.T) {
	now := time.Date(2026, 3, 15, 9, 0, 0, 0, time.UTC)
	fn := NewFileNumber(now)

	assert.Regexp(t, `^FN-20260315-\d{4}$`, fn)
}
