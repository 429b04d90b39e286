package scheduler

import (
	"context"
	"errors"
	"testing"

	"evntly_backend/platform/apperr"
	"evntly_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

type fakeGeocoder struct {
	calls []uuid.UUID
	err   error
}

func (f *fakeGeocoder) GeocodeEvent(_ context.Context, eventID uuid.UUID) error {
	f.calls = append(f.calls, eventID)
	return f.err
}

func TestHandleGeocodeEvent(t *testing.T) {
	eventID := uuid.New()
	task, err := NewGeocodeEventTask(GeocodeEventPayload{EventID: eventID.String()})
	if err != nil {
		t.Fatalf("build task: %v", err)
	}

	tests := []struct {
		name      string
		geoErr    error
		wantErr   bool
		wantCalls int
	}{
		{name: "success", wantCalls: 1},
		{name: "event deleted meanwhile", geoErr: apperr.NotFound("event not found"), wantCalls: 1},
		{name: "provider failure is retried", geoErr: errors.New("upstream down"), wantErr: true, wantCalls: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			geocoder := &fakeGeocoder{err: tt.geoErr}
			w := &Worker{geocoder: geocoder, log: logger.Discard()}

			err := w.handleGeocodeEvent(context.Background(), task)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if len(geocoder.calls) != tt.wantCalls || geocoder.calls[0] != eventID {
				t.Fatalf("unexpected calls %v", geocoder.calls)
			}
		})
	}
}

func TestHandleGeocodeEventSkipsRetryOnBadPayload(t *testing.T) {
	geocoder := &fakeGeocoder{}
	w := &Worker{geocoder: geocoder, log: logger.Discard()}

	err := w.handleGeocodeEvent(context.Background(), asynq.NewTask(TaskGeocodeEvent, []byte(`{"eventId":"not-a-uuid"}`)))
	if !errors.Is(err, asynq.SkipRetry) {
		t.Fatalf("expected SkipRetry, got %v", err)
	}
	if len(geocoder.calls) != 0 {
		t.Fatalf("geocoder must not be called")
	}
}

func TestGeocodeEventPayloadRoundTrip(t *testing.T) {
	task, err := NewGeocodeEventTask(GeocodeEventPayload{EventID: "abc"})
	if err != nil {
		t.Fatalf("build task: %v", err)
	}
	if task.Type() != TaskGeocodeEvent {
		t.Fatalf("task type = %q", task.Type())
	}
	payload, err := ParseGeocodeEventPayload(task)
	if err != nil || payload.EventID != "abc" {
		t.Fatalf("payload = %+v, err = %v", payload, err)
	}
}
