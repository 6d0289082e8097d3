package openai

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockChatAPI struct {
	mock.Mock
}

func (m *MockChatAPI) CreateChatCompletion(ctx context.Context, prompt string, temperature float32) (string, error) {
	args := m.Called(ctx, prompt, temperature)
	return args.String(0), args.Error(1)
}

// slowChatAPI records the peak number of overlapping calls
type slowChatAPI struct {
	inFlight atomic.Int32
	peak     atomic.Int32
	delay    time.Duration
}

func (s *slowChatAPI) CreateChatCompletion(ctx context.Context, prompt string, temperature float32) (string, error) {
	n := s.inFlight.Add(1)
	defer s.inFlight.Add(-1)
	for {
		p := s.peak.Load()
		if n <= p || s.peak.CompareAndSwap(p, n) {
			break
		}
	}
	time.Sleep(s.delay)
	return "ok", nil
}

func TestGateway_Complete_ReturnsModelText(t *testing.T) {
	api := new(MockChatAPI)
	api.On("CreateChatCompletion", mock.Anything, "prompt", float32(0.7)).Return("Revenue grew 12%. CONFIDENCE: 0.8", nil)

	gw := NewGatewayWithAPI(api, 2, 0)
	out := gw.Complete(context.Background(), "prompt", 0.7)

	assert.Equal(t, "Revenue grew 12%. CONFIDENCE: 0.8", out)
	assert.False(t, IsErrorText(out))
	api.AssertExpectations(t)
}

func TestGateway_Complete_CapturesFailureAsText(t *testing.T) {
	api := new(MockChatAPI)
	api.On("CreateChatCompletion", mock.Anything, "prompt", float32(0.3)).Return("", errors.New("401 unauthorized")).Once()

	gw := NewGatewayWithAPI(api, 2, 0)
	out := gw.Complete(context.Background(), "prompt", 0.3)

	assert.Equal(t, "ERROR: 401 unauthorized", out)
	assert.True(t, IsErrorText(out))
	api.AssertNumberOfCalls(t, "CreateChatCompletion", 1)
}

func TestGateway_Complete_CancelledWhileWaitingForSlot(t *testing.T) {
	api := &slowChatAPI{delay: 200 * time.Millisecond}
	gw := NewGatewayWithAPI(api, 1, 0)

	go gw.Complete(context.Background(), "first", 0.7)
	time.Sleep(20 * time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	out := gw.Complete(ctx, "second", 0.9)

	assert.True(t, IsErrorText(out))
	assert.Contains(t, out, "waiting for llm slot")
}

func TestGateway_BoundsConcurrentCalls(t *testing.T) {
	api := &slowChatAPI{delay: 30 * time.Millisecond}
	gw := NewGatewayWithAPI(api, 2, 0)

	var wg sync.WaitGroup
	for i := 0; i < 6; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			gw.Complete(context.Background(), "prompt", 0.7)
		}()
	}
	wg.Wait()

	assert.LessOrEqual(t, api.peak.Load(), int32(2))
	assert.GreaterOrEqual(t, api.peak.Load(), int32(1))
}

func TestNewGatewayWithAPI_RateLimit(t *testing.T) {
	gw := NewGatewayWithAPI(new(MockChatAPI), 0, 0.5)

	assert.Nil(t, gw.slots)
	assert.NotNil(t, gw.limiter)
	assert.Equal(t, 1, gw.limiter.Burst())
}

func TestNewChatAdapter_DefaultMaxTokens(t *testing.T) {
	adapter := NewChatAdapter(NewAPIClient("key", ""), "z-ai/glm4.7", 0)

	assert.Equal(t, DefaultMaxTokens, adapter.maxTokens)
	assert.Equal(t, "z-ai/glm4.7", adapter.model)
}
