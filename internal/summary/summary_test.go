package summary

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/tmc/langchaingo/llms"

	"nosybot/internal/model"
)

// Фейковая модель вместо реального эндпоинта
type fakeModel struct {
	response *llms.ContentResponse
	err      error
	received []llms.MessageContent
}

func (f *fakeModel) GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	f.received = messages
	return f.response, f.err
}

func (f *fakeModel) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return "", errors.New("not implemented")
}

func textResponse(content string) *llms.ContentResponse {
	return &llms.ContentResponse{
		Choices: []*llms.ContentChoice{{Content: content}},
	}
}

func TestClient_Summarize(t *testing.T) {
	// Arrange
	fake := &fakeModel{response: textResponse("  Great week!  ")}
	client := &Client{llm: fake}
	tasks := []model.Task{
		{Description: "Ship release"},
		{Description: "Fix flaky test"},
	}

	// Act
	recap, err := client.Summarize(context.Background(), tasks)

	// Assert
	assert.NoError(t, err)
	assert.Equal(t, "Great week!", recap)
	// Модель получает маркированный список задач
	assert.Len(t, fake.received, 2)
	human := fake.received[1].Parts[0].(llms.TextContent).Text
	assert.Contains(t, human, "- Ship release")
	assert.Contains(t, human, "- Fix flaky test")
}

func TestClient_Summarize_NoContent(t *testing.T) {
	// Arrange
	fake := &fakeModel{response: &llms.ContentResponse{}}
	client := &Client{llm: fake}

	// Act
	_, err := client.Summarize(context.Background(), []model.Task{{Description: "A"}})

	// Assert
	assert.ErrorIs(t, err, ErrNoContent)
}

func TestClient_Summarize_ModelError(t *testing.T) {
	// Arrange
	fake := &fakeModel{err: errors.New("model overloaded")}
	client := &Client{llm: fake}

	// Act
	_, err := client.Summarize(context.Background(), []model.Task{{Description: "A"}})

	// Assert
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "summarization failed")
}

func TestClient_Complete(t *testing.T) {
	// Arrange
	fake := &fakeModel{response: textResponse("Hello!")}
	client := &Client{llm: fake}

	// Act
	resp, err := client.Complete(context.Background(), "Say hello")

	// Assert
	assert.NoError(t, err)
	assert.Equal(t, "Hello!", resp)
}

func TestBulletList(t *testing.T) {
	tasks := []model.Task{
		{Description: "Ship release"},
		{Description: "Write retro notes"},
	}
	assert.Equal(t, "- Ship release\n- Write retro notes\n", BulletList(tasks))
}

func TestWrapDigest(t *testing.T) {
	end := time.Date(2025, 6, 8, 20, 0, 0, 0, time.UTC)
	start := end.AddDate(0, 0, -7)

	wrapped := WrapDigest("Nice week.", start, end, 3)

	assert.True(t, strings.HasPrefix(wrapped, "📬 Your recap for Jun 1 – Jun 8, 2025"))
	assert.Contains(t, wrapped, "Nice week.")
	assert.Contains(t, wrapped, "Completed: 3 tasks")

	single := WrapDigest("One thing.", start, end, 1)
	assert.Contains(t, single, "Completed: 1 task")
}
