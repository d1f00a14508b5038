package model

import (
	"github.com/LeonardoBeccarini/earthing_monitor/internal/model/entities"
	"github.com/LeonardoBeccarini/earthing_monitor/internal/model/messages"
)

// Alias per esporre tipi comuni ai servizi

type (
	Reading       = entities.Reading
	Verdict       = entities.Verdict
	Connectivity  = entities.Connectivity
	SafetyState   = entities.SafetyState
	StatusPayload = messages.StatusPayload
	AlarmEvent    = messages.AlarmEvent
)

const (
	Disconnected = entities.Disconnected
	Connected    = entities.Connected

	StateSafe  = entities.StateSafe
	StateAlert = entities.StateAlert
)
