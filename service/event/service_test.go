package event

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/evalrt/service/messaging"
	"github.com/viant/evalrt/service/messaging/fs"
)

func TestService_Mirror(t *testing.T) {
	var testCases = []struct {
		description string
		vendor      messaging.Vendor
		options     func(t *testing.T) []Option
	}{
		{
			description: "memory",
			vendor:      messaging.VendorMemory,
			options:     func(t *testing.T) []Option { return nil },
		},
		{
			description: "fs",
			vendor:      messaging.VendorFS,
			options: func(t *testing.T) []Option {
				baseURL := t.TempDir()
				return []Option{
					WithPollInterval(5 * time.Millisecond),
					WithNewFsQueueConfig(func(name string) fs.QueueConfig {
						return fs.QueueConfig{BasePath: baseURL + "/" + name, MaxRetries: 1}
					}),
				}
			},
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.description, func(t *testing.T) {
			service, err := New(testCase.vendor, testCase.options(t)...)
			require.NoError(t, err)
			defer service.Close()
			assert.Equal(t, testCase.vendor, service.Vendor())

			observed := make(chan *Event, 10)
			service.SetListener(context.Background(), func(event *Event) { observed <- event })
			handled := 0
			service.Register(TypeEvaluatorAllocated, func(ctx context.Context, event *Event) error {
				handled++
				return nil
			})

			require.NoError(t, service.Dispatch(context.Background(), NewEvent(&Context{Type: TypeEvaluatorAllocated, EvaluatorID: "E1"}, nil)))
			assert.Equal(t, 1, handled)
			select {
			case event := <-observed:
				assert.Equal(t, TypeEvaluatorAllocated, event.Type())
				assert.Equal(t, "E1", event.Context.EvaluatorID)
			case <-time.After(2 * time.Second):
				t.Fatal("mirrored event was not observed")
			}
		})
	}
}

func TestNew_Errors(t *testing.T) {
	_, err := New("kafka")
	assert.Error(t, err)
	_, err = New(messaging.VendorFS)
	assert.Error(t, err)
}
