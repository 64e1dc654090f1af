package testutil

import (
	"context"
	"time"

	"contentbot/internal/domain"

	"github.com/stretchr/testify/mock"
	tele "gopkg.in/telebot.v3"
)

// MockContentStore is a mock for repository.ContentStore
type MockContentStore struct {
	mock.Mock
}

func (m *MockContentStore) GetContent(ctx context.Context) (*domain.ContentSnapshot, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ContentSnapshot), args.Error(1)
}

func (m *MockContentStore) UpdateContent(ctx context.Context, doc domain.Document) error {
	args := m.Called(ctx, doc)
	return args.Error(0)
}

// MockBackupRepository is a mock for repository.BackupRepository
type MockBackupRepository struct {
	mock.Mock
}

func (m *MockBackupRepository) CreateBackup(ctx context.Context, filename string, data []byte) (*domain.Backup, error) {
	args := m.Called(ctx, filename, data)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Backup), args.Error(1)
}

func (m *MockBackupRepository) ListBackups(ctx context.Context, limit int) ([]domain.Backup, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Backup), args.Error(1)
}

func (m *MockBackupRepository) LoadBackup(ctx context.Context, version int) (*domain.Backup, error) {
	args := m.Called(ctx, version)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Backup), args.Error(1)
}

func (m *MockBackupRepository) GetBackup(ctx context.Context, id int64) (*domain.Backup, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Backup), args.Error(1)
}

func (m *MockBackupRepository) CountBackups(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

// MockVisitSource is a mock for repository.VisitSource
type MockVisitSource struct {
	mock.Mock
}

func (m *MockVisitSource) GetRecentVisits(ctx context.Context, since, until time.Time) ([]domain.Visit, error) {
	args := m.Called(ctx, since, until)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Visit), args.Error(1)
}

func (m *MockVisitSource) TestConnection(ctx context.Context) (*domain.SiteInfo, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SiteInfo), args.Error(1)
}

// MockMessenger is a mock for delivery.Messenger
type MockMessenger struct {
	mock.Mock
}

func (m *MockMessenger) Send(chatID int64, text string, opts *tele.SendOptions) (int, error) {
	args := m.Called(chatID, text, opts)
	return args.Int(0), args.Error(1)
}

func (m *MockMessenger) Edit(chatID int64, messageID int, text string, opts *tele.SendOptions) error {
	args := m.Called(chatID, messageID, text, opts)
	return args.Error(0)
}

func (m *MockMessenger) Delete(chatID int64, messageID int) error {
	args := m.Called(chatID, messageID)
	return args.Error(0)
}

func (m *MockMessenger) Respond(callbackID, text string) error {
	args := m.Called(callbackID, text)
	return args.Error(0)
}

// MockNotifier is a mock for monitor.Notifier
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Notify(ctx context.Context, text string) error {
	args := m.Called(ctx, text)
	return args.Error(0)
}

// MockCompanyResolver is a mock for monitor.CompanyResolver
type MockCompanyResolver struct {
	mock.Mock
}

func (m *MockCompanyResolver) ResolveCompany(ctx context.Context, code string) (string, error) {
	args := m.Called(ctx, code)
	return args.String(0), args.Error(1)
}
