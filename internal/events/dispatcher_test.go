package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDispatcher_DeliversByTypeAndSurvivesHandlerErrors(t *testing.T) {
	d := NewInMemoryDispatcher(nil)
	var got []string

	d.Subscribe(EventProductCreated, func(context.Context, Event) error {
		got = append(got, "first")
		return errors.New("boom")
	})
	d.Subscribe(EventProductCreated, func(_ context.Context, e Event) error {
		got = append(got, "second:"+e.SubjectID)
		return nil
	})
	d.Subscribe(EventProductDeleted, func(context.Context, Event) error {
		got = append(got, "deleted")
		return nil
	})

	err := d.Publish(context.Background(), Event{ID: "e1", Type: EventProductCreated, SubjectID: "p1"})
	assert.NoError(t, err)
	assert.Equal(t, []string{"first", "second:p1"}, got)
}
