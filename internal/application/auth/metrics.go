package auth

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	loginAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lockgate_login_attempts_total",
			Help: "Login attempts by outcome",
		},
		[]string{"outcome"},
	)
	lockouts = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "lockgate_lockouts_total",
			Help: "Accounts locked after exceeding the failure threshold",
		},
	)
	registrations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lockgate_registrations_total",
			Help: "Registration attempts by outcome",
		},
		[]string{"outcome"},
	)
)
