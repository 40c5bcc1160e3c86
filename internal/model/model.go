package model

import (
	"github.com/geodetica/fdemsurvey/internal/model/entities"
	"github.com/geodetica/fdemsurvey/internal/model/messages"
)

// Alias per esporre i tipi comuni ai servizi

type (
	EvaluationRequest   = messages.EvaluationRequest
	ContrastResultEvent = messages.ContrastResultEvent
	SolverFaultEvent    = messages.SolverFaultEvent
	ChannelOutcome      = messages.ChannelOutcome
	ResponsePPM         = messages.ResponsePPM
	SoilProfile         = entities.SoilProfile
	Layer               = entities.Layer
	SensorConfig        = entities.SensorConfig
	CoilOrientation     = entities.CoilOrientation
)

const (
	OrientationHCP = entities.OrientationHCP
	OrientationVCP = entities.OrientationVCP
	OrientationPRP = entities.OrientationPRP
)
