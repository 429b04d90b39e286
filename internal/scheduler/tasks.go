package scheduler

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const TaskGeocodeEvent = "agenda.event.geocode"

type GeocodeEventPayload struct {
	EventID string `json:"eventId"`
}

func NewGeocodeEventTask(payload GeocodeEventPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskGeocodeEvent, data), nil
}

func ParseGeocodeEventPayload(task *asynq.Task) (GeocodeEventPayload, error) {
	var payload GeocodeEventPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return GeocodeEventPayload{}, err
	}
	return payload, nil
}
