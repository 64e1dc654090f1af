package delivery

import (
	"context"
	"errors"
	"testing"

	"contentbot/internal/menu"
	"contentbot/internal/state"
	"contentbot/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	tele "gopkg.in/telebot.v3"
)

const (
	userID int64 = 7
	chatID int64 = 7
)

func callbackTarget() Target {
	return Target{UserID: userID, ChatID: chatID, MessageID: 100, CallbackID: "cb-1"}
}

func TestStrategy_Render(t *testing.T) {
	tests := []struct {
		name          string
		target        Target
		setupMock     func(m *testutil.MockMessenger)
		expected      Result
		expectedMsgID int
	}{
		{
			name:   "edit in place",
			target: callbackTarget(),
			setupMock: func(m *testutil.MockMessenger) {
				m.On("Edit", chatID, 100, mock.Anything, mock.Anything).Return(nil)
				m.On("Respond", "cb-1", "").Return(nil)
			},
			expected:      Result{Success: true, Action: ActionEdited, MessageID: 100},
			expectedMsgID: 100,
		},
		{
			name:   "not modified counts as success",
			target: callbackTarget(),
			setupMock: func(m *testutil.MockMessenger) {
				m.On("Edit", chatID, 100, mock.Anything, mock.Anything).Return(tele.ErrMessageNotModified)
				m.On("Respond", "cb-1", "").Return(nil)
			},
			expected:      Result{Success: true, Action: ActionUnchanged, MessageID: 100},
			expectedMsgID: 100,
		},
		{
			name:   "edit fails, sends new",
			target: callbackTarget(),
			setupMock: func(m *testutil.MockMessenger) {
				m.On("Edit", chatID, 100, mock.Anything, mock.Anything).Return(errors.New("message to edit not found"))
				m.On("Respond", "cb-1", "").Return(nil)
				m.On("Send", chatID, mock.Anything, mock.AnythingOfType("*telebot.SendOptions")).Return(101, nil)
			},
			expected:      Result{Success: true, Action: ActionSent, MessageID: 101},
			expectedMsgID: 101,
		},
		{
			name:   "text command always sends",
			target: Target{UserID: userID, ChatID: chatID},
			setupMock: func(m *testutil.MockMessenger) {
				m.On("Send", chatID, mock.Anything, mock.AnythingOfType("*telebot.SendOptions")).Return(55, nil)
			},
			expected:      Result{Success: true, Action: ActionSent, MessageID: 55},
			expectedMsgID: 55,
		},
		{
			name:   "everything fails, plain apology",
			target: callbackTarget(),
			setupMock: func(m *testutil.MockMessenger) {
				m.On("Edit", chatID, 100, mock.Anything, mock.Anything).Return(errors.New("bad request"))
				m.On("Respond", "cb-1", "").Return(nil)
				m.On("Send", chatID, "*Menu*", mock.Anything).Return(0, errors.New("can't parse entities")).Once()
				m.On("Send", chatID, Apology, (*tele.SendOptions)(nil)).Return(102, nil).Once()
			},
			expected:      Result{Success: false, Action: ActionFallback, MessageID: 102},
			expectedMsgID: 102,
		},
		{
			name:   "apology fails too",
			target: Target{UserID: userID, ChatID: chatID},
			setupMock: func(m *testutil.MockMessenger) {
				m.On("Send", chatID, mock.Anything, mock.Anything).Return(0, errors.New("network down"))
			},
			expected: Result{Success: false, Action: ActionFailed},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			messenger := new(testutil.MockMessenger)
			tt.setupMock(messenger)
			store := state.NewStore()
			store.Init(userID)
			s := NewStrategy(messenger, store, testutil.NewTestLogger())

			res := s.Render(tt.target, menu.Menu{Text: "*Menu*", Keyboard: [][]menu.Button{{menu.MainButton()}}})

			assert.Equal(t, tt.expected, res)
			st, _ := store.Get(userID)
			assert.Equal(t, tt.expectedMsgID, st.Navigation.MessageID)
			messenger.AssertExpectations(t)
		})
	}
}

func TestStrategy_AckedCallbackIsNotAnsweredTwice(t *testing.T) {
	messenger := new(testutil.MockMessenger)
	messenger.On("Edit", chatID, 100, mock.Anything, mock.Anything).Return(nil)
	s := NewStrategy(messenger, nil, nil)

	target := callbackTarget()
	target.Acked = true
	res := s.Render(target, menu.Main(""))

	assert.True(t, res.Success)
	messenger.AssertNotCalled(t, "Respond", mock.Anything, mock.Anything)
}

func TestOptions(t *testing.T) {
	opts := Options(menu.Menu{Text: "x"})
	assert.Equal(t, tele.ModeMarkdown, opts.ParseMode)
	assert.Nil(t, opts.ReplyMarkup)

	opts = Options(menu.Main(""))
	if assert.NotNil(t, opts.ReplyMarkup) {
		assert.Len(t, opts.ReplyMarkup.InlineKeyboard, 2)
	}
}

func TestIsNotModified(t *testing.T) {
	assert.True(t, IsNotModified(tele.ErrMessageNotModified))
	assert.True(t, IsNotModified(errors.New("telegram: Bad Request: message is not modified (400)")))
	assert.False(t, IsNotModified(errors.New("message to edit not found")))
	assert.False(t, IsNotModified(nil))
}

func TestAdminNotifier_Notify(t *testing.T) {
	messenger := new(testutil.MockMessenger)
	messenger.On("Send", int64(99), "hello", mock.AnythingOfType("*telebot.SendOptions")).Return(1, nil).Once()
	messenger.On("Send", int64(99), "fail", mock.Anything).Return(0, errors.New("blocked")).Once()

	n := NewAdminNotifier(messenger, 99, nil)

	assert.NoError(t, n.Notify(context.Background(), "hello"))
	assert.Error(t, n.Notify(context.Background(), "fail"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, n.Notify(ctx, "late"), context.Canceled)
	messenger.AssertExpectations(t)
}

func TestStrategy_Render_UnparseableTextSentPlain(t *testing.T) {
	messenger := new(testutil.MockMessenger)
	strategy := NewStrategy(messenger, state.NewStore(), testutil.NewTestLogger())

	messenger.On("Send", chatID, "_e.g. fintech\\_app_", mock.MatchedBy(func(opts *tele.SendOptions) bool {
		return opts.ParseMode == tele.ModeDefault
	})).Return(56, nil)

	res := strategy.Render(Target{UserID: userID, ChatID: chatID}, menu.Menu{Text: "_e.g. fintech\\_app_"})

	assert.Equal(t, Result{Success: true, Action: ActionSent, MessageID: 56}, res)
	messenger.AssertExpectations(t)
}
