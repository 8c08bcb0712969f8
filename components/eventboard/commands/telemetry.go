package commands

import (
	"context"

	"github.com/goliatone/go-eventboard/components/eventboard"
)

// Telemetry is the board's telemetry sink; commands report to the same one
// the controller uses.
type Telemetry = eventboard.Telemetry

// commandTelemetry stamps every record with the command that produced it. A
// nil sink drops records.
type commandTelemetry struct {
	sink    Telemetry
	command string
}

func newCommandTelemetry(sink Telemetry, command string) commandTelemetry {
	return commandTelemetry{sink: sink, command: command}
}

func (t commandTelemetry) Record(ctx context.Context, event string, payload map[string]any) {
	if t.sink == nil {
		return
	}
	tagged := make(map[string]any, len(payload)+1)
	for key, value := range payload {
		tagged[key] = value
	}
	tagged["command"] = t.command
	t.sink.Record(ctx, event, tagged)
}
