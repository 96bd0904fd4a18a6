package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClinicCanTransitionTo(t *testing.T) {
	cases := []struct {
		from    ClinicStatus
		to      ClinicStatus
		allowed bool
	}{
		{ClinicStatusPending, ClinicStatusActive, true},
		{ClinicStatusPending, ClinicStatusRejected, true},
		{ClinicStatusPending, ClinicStatusSuspended, false},
		{ClinicStatusActive, ClinicStatusSuspended, true},
		{ClinicStatusActive, ClinicStatusRejected, false},
		{ClinicStatusActive, ClinicStatusPending, false},
		{ClinicStatusSuspended, ClinicStatusActive, true},
		{ClinicStatusSuspended, ClinicStatusRejected, false},
		{ClinicStatusRejected, ClinicStatusActive, false},
		{ClinicStatusRejected, ClinicStatusPending, false},
	}

	for _, tc := range cases {
		c := &Clinic{Status: tc.from}
		assert.Equal(t, tc.allowed, c.CanTransitionTo(tc.to), "%s -> %s", tc.from, tc.to)
	}
}
