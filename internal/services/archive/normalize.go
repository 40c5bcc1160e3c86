package archive

import (
	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

const (
	MeasurementEvaluation = "fdem_evaluation"
	MeasurementFault      = "fdem_solver_fault"
)

// EventToPoint normalizza un ArchivedEvent in un *write.Point per InfluxDB.
func EventToPoint(evt ArchivedEvent) *write.Point {
	// Tag (solo stringhe)
	tags := map[string]string{
		"source_service": evt.SourceService,
		"severity":       evt.Severity,
	}
	if evt.SurveyID != "" {
		tags["survey_id"] = evt.SurveyID
	}
	if evt.RequestID != "" {
		tags["request_id"] = evt.RequestID
	}

	fields := map[string]interface{}{}
	for k, v := range evt.Fields {
		fields[k] = v
	}
	// almeno un field, altrimenti Influx rifiuta il punto
	if len(fields) == 0 {
		fields["count"] = int64(1)
	}

	measurement := MeasurementEvaluation
	if evt.EventType == EventTypeFault {
		measurement = MeasurementFault
	}
	return influxdb2.NewPoint(measurement, tags, fields, evt.Timestamp)
}
