package app

import (
	"context"
	"errors"
	"testing"

	cloudevents "github.com/cloudevents/sdk-go/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubjectFiltersByEventType(t *testing.T) {
	subject := NewStdSubject(&testLogger{})

	var all, filtered []string
	require.NoError(t, subject.RegisterObserver(NewFunctionalObserver("all", func(_ context.Context, e cloudevents.Event) error {
		all = append(all, e.Type())
		return nil
	})))
	require.NoError(t, subject.RegisterObserver(NewFunctionalObserver("filtered", func(_ context.Context, e cloudevents.Event) error {
		filtered = append(filtered, e.Type())
		return nil
	}), "wanted"))

	ctx := context.Background()
	require.NoError(t, subject.NotifyObservers(ctx, NewCloudEvent("wanted", "test", nil, nil)))
	require.NoError(t, subject.NotifyObservers(ctx, NewCloudEvent("ignored", "test", nil, nil)))

	assert.Equal(t, []string{"wanted", "ignored"}, all)
	assert.Equal(t, []string{"wanted"}, filtered)
}

func TestSubjectObserverErrorsDoNotStopDelivery(t *testing.T) {
	logger := &testLogger{}
	subject := NewStdSubject(logger)

	delivered := false
	require.NoError(t, subject.RegisterObserver(NewFunctionalObserver("failing", func(context.Context, cloudevents.Event) error {
		return errors.New("nope")
	})))
	require.NoError(t, subject.RegisterObserver(NewFunctionalObserver("ok", func(context.Context, cloudevents.Event) error {
		delivered = true
		return nil
	})))

	require.NoError(t, subject.NotifyObservers(context.Background(), NewCloudEvent("x", "test", nil, nil)))
	assert.True(t, delivered)
	assert.Contains(t, logger.entries, "WARN: Observer failed to handle event")
}

func TestSubjectRegistration(t *testing.T) {
	subject := NewStdSubject(&testLogger{})
	observer := NewFunctionalObserver("one", func(context.Context, cloudevents.Event) error { return nil })

	require.NoError(t, subject.RegisterObserver(observer, "a"))
	require.NoError(t, subject.RegisterObserver(observer, "a", "b"))
	infos := subject.GetObservers()
	require.Len(t, infos, 1)
	assert.Equal(t, "one", infos[0].ID)
	assert.Equal(t, []string{"a", "b"}, infos[0].EventTypes)

	require.NoError(t, subject.UnregisterObserver(observer))
	require.NoError(t, subject.UnregisterObserver(observer))
	assert.Empty(t, subject.GetObservers())

	assert.ErrorIs(t, subject.RegisterObserver(nil), ErrObserverNil)
}

func TestNewCloudEvent(t *testing.T) {
	event := NewCloudEvent("com.fibonacci.test", "unit", map[string]any{"index": 10}, map[string]any{"strategy": "iterative"})

	require.NoError(t, event.Validate())
	assert.Equal(t, "com.fibonacci.test", event.Type())
	assert.Equal(t, "unit", event.Source())
	assert.NotEmpty(t, event.ID())
	assert.Equal(t, "iterative", event.Extensions()["strategy"])

	var data map[string]any
	require.NoError(t, event.DataAs(&data))
	assert.EqualValues(t, 10, data["index"])

	other := NewCloudEvent("com.fibonacci.test", "unit", nil, nil)
	assert.NotEqual(t, event.ID(), other.ID())
}
