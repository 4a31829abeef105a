package scheduler

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"nosybot/internal/config"
	"nosybot/internal/model"

	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

// Мок читающей стороны движка
type MockLister struct {
	mock.Mock
}

func (m *MockLister) ListAllOwners(ctx context.Context) ([]int64, error) {
	args := m.Called(ctx)
	return args.Get(0).([]int64), args.Error(1)
}

func (m *MockLister) ListActive(ctx context.Context, userID int64) ([]model.Task, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]model.Task), args.Error(1)
}

func (m *MockLister) ListCompletedInRange(ctx context.Context, userID int64, start, end time.Time) ([]model.Task, error) {
	args := m.Called(ctx, userID, start, end)
	return args.Get(0).([]model.Task), args.Error(1)
}

// Мок доставки сообщений
type MockSender struct {
	mock.Mock
}

func (m *MockSender) Send(userID int64, text string) error {
	args := m.Called(userID, text)
	return args.Error(0)
}

// Мок суммаризатора
type MockSummarizer struct {
	mock.Mock
}

func (m *MockSummarizer) Summarize(ctx context.Context, tasks []model.Task) (string, error) {
	args := m.Called(ctx, tasks)
	return args.String(0), args.Error(1)
}

func testConfig() *config.Config {
	return &config.Config{
		CheckinIntervalMin:  30,
		CheckinStartHour:    9,
		CheckinEndHour:      17,
		CheckinStartWeekday: time.Monday,
		CheckinEndWeekday:   time.Friday,
		DailySkipWeekday:    time.Sunday,
		DigestWeekday:       time.Sunday,
	}
}

func setupScheduler(at time.Time) (*Scheduler, *MockLister, *MockSender, *MockSummarizer) {
	engine := new(MockLister)
	sender := new(MockSender)
	summarizer := new(MockSummarizer)
	s := New(engine, sender, summarizer, testConfig(), zap.NewNop().Sugar())
	s.now = func() time.Time { return at }
	return s, engine, sender, summarizer
}

func TestCheckIn_OutsideWindow(t *testing.T) {
	cases := []struct {
		name string
		at   time.Time
	}{
		// Суббота в рабочие часы
		{"weekend", time.Date(2025, 6, 7, 10, 0, 0, 0, time.UTC)},
		// Понедельник до начала окна
		{"too early", time.Date(2025, 6, 2, 8, 59, 0, 0, time.UTC)},
		// Понедельник после конца окна, верхняя граница исключена
		{"too late", time.Date(2025, 6, 2, 17, 0, 0, 0, time.UTC)},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			// Arrange
			s, engine, sender, _ := setupScheduler(tc.at)

			// Act
			s.CheckIn()

			// Assert: дешёвый ранний выход, владельцы даже не перечисляются
			engine.AssertNotCalled(t, "ListAllOwners")
			sender.AssertNotCalled(t, "Send")
		})
	}
}

func TestCheckIn_WeekdayBoundsFollowConfig(t *testing.T) {
	// Arrange: суббота в рабочие часы, но окно расширено до субботы
	saturday := time.Date(2025, 6, 7, 10, 0, 0, 0, time.UTC)
	s, engine, sender, _ := setupScheduler(saturday)
	s.cfg.CheckinEndWeekday = time.Saturday

	engine.On("ListAllOwners", mock.Anything).Return([]int64{1}, nil)
	engine.On("ListActive", mock.Anything, int64(1)).Return([]model.Task{}, nil)
	sender.On("Send", int64(1), mock.Anything).Return(nil)

	// Act
	s.CheckIn()

	// Assert: день входит в настроенный диапазон, рассылка идёт
	sender.AssertNumberOfCalls(t, "Send", 1)
}

func TestCheckIn_InsideWindow(t *testing.T) {
	// Arrange: понедельник 10:00
	s, engine, sender, _ := setupScheduler(time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC))

	engine.On("ListAllOwners", mock.Anything).Return([]int64{1, 2}, nil)
	engine.On("ListActive", mock.Anything, int64(1)).
		Return([]model.Task{{ID: 5, UserID: 1, Description: "Buy milk", State: model.StateTodo}}, nil)
	engine.On("ListActive", mock.Anything, int64(2)).
		Return([]model.Task{}, nil)
	sender.On("Send", int64(1), mock.MatchedBy(func(text string) bool {
		return strings.Contains(text, "Buy milk")
	})).Return(nil)
	sender.On("Send", int64(2), mock.Anything).Return(nil)

	// Act
	s.CheckIn()

	// Assert: по одному сообщению на владельца
	sender.AssertNumberOfCalls(t, "Send", 2)
	engine.AssertExpectations(t)
}

func TestCheckIn_DeliveryFailureDoesNotAbortBatch(t *testing.T) {
	// Arrange
	s, engine, sender, _ := setupScheduler(time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC))

	engine.On("ListAllOwners", mock.Anything).Return([]int64{1, 2, 3}, nil)
	engine.On("ListActive", mock.Anything, mock.Anything).Return([]model.Task{}, nil)
	sender.On("Send", int64(1), mock.Anything).Return(errors.New("blocked by user"))
	sender.On("Send", int64(2), mock.Anything).Return(nil)
	sender.On("Send", int64(3), mock.Anything).Return(nil)

	// Act
	s.CheckIn()

	// Assert: сбой доставки одному владельцу не прерывает рассылку
	sender.AssertNumberOfCalls(t, "Send", 3)
}

func TestDailyReminder_SkippedOnConfiguredWeekday(t *testing.T) {
	// Arrange: воскресенье
	s, engine, sender, _ := setupScheduler(time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC))

	// Act
	s.DailyReminder()

	// Assert
	engine.AssertNotCalled(t, "ListAllOwners")
	sender.AssertNotCalled(t, "Send")
}

func TestDailyReminder_SendsToEveryOwner(t *testing.T) {
	// Arrange: понедельник
	s, engine, sender, _ := setupScheduler(time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC))

	engine.On("ListAllOwners", mock.Anything).Return([]int64{1, 2}, nil)
	sender.On("Send", int64(1), mock.Anything).Return(nil)
	sender.On("Send", int64(2), mock.Anything).Return(nil)

	// Act
	s.DailyReminder()

	// Assert
	sender.AssertNumberOfCalls(t, "Send", 2)
}

func TestWeeklyDigest(t *testing.T) {
	// Arrange: воскресенье вечером
	now := time.Date(2025, 6, 8, 20, 0, 0, 0, time.UTC)
	weekAgo := now.AddDate(0, 0, -7)
	s, engine, sender, summarizer := setupScheduler(now)

	completed := []model.Task{
		{ID: 1, UserID: 1, Description: "Ship release", State: model.StateDone},
		{ID: 2, UserID: 1, Description: "Write retro notes", State: model.StateDone},
		{ID: 3, UserID: 1, Description: "Fix flaky test", State: model.StateDone},
	}

	engine.On("ListAllOwners", mock.Anything).Return([]int64{1, 2}, nil)
	engine.On("ListCompletedInRange", mock.Anything, int64(1), weekAgo, now).
		Return(completed, nil)
	// Владелец без выполненных задач — без сообщения
	engine.On("ListCompletedInRange", mock.Anything, int64(2), weekAgo, now).
		Return([]model.Task{}, nil)
	summarizer.On("Summarize", mock.Anything, completed).
		Return("You had a great week shipping the release.", nil)
	sender.On("Send", int64(1), mock.MatchedBy(func(text string) bool {
		// Сообщение несёт количество выполненных задач
		return strings.Contains(text, "Completed: 3 tasks")
	})).Return(nil)

	// Act
	s.WeeklyDigest()

	// Assert: ровно одно сообщение, только первому владельцу
	sender.AssertNumberOfCalls(t, "Send", 1)
	engine.AssertExpectations(t)
	summarizer.AssertExpectations(t)
}

func TestWeeklyDigest_SummarizationFailureSkipsOwner(t *testing.T) {
	// Arrange
	now := time.Date(2025, 6, 8, 20, 0, 0, 0, time.UTC)
	weekAgo := now.AddDate(0, 0, -7)
	s, engine, sender, summarizer := setupScheduler(now)

	tasks1 := []model.Task{{ID: 1, UserID: 1, Description: "A", State: model.StateDone}}
	tasks2 := []model.Task{{ID: 2, UserID: 2, Description: "B", State: model.StateDone}}

	engine.On("ListAllOwners", mock.Anything).Return([]int64{1, 2}, nil)
	engine.On("ListCompletedInRange", mock.Anything, int64(1), weekAgo, now).Return(tasks1, nil)
	engine.On("ListCompletedInRange", mock.Anything, int64(2), weekAgo, now).Return(tasks2, nil)
	summarizer.On("Summarize", mock.Anything, tasks1).Return("", errors.New("model overloaded"))
	summarizer.On("Summarize", mock.Anything, tasks2).Return("Nice week.", nil)
	sender.On("Send", int64(2), mock.Anything).Return(nil)

	// Act
	s.WeeklyDigest()

	// Assert: сбой суммаризации у первого не мешает второму
	sender.AssertNumberOfCalls(t, "Send", 1)
	sender.AssertNotCalled(t, "Send", int64(1), mock.Anything)
}
