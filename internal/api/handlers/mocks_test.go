package handlers_test

import (
	"context"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/mock"

	"github.com/vibhu2208/Aadhar-Homes/internal/models"
	"github.com/vibhu2208/Aadhar-Homes/internal/query"
	"github.com/vibhu2208/Aadhar-Homes/internal/services"
	"github.com/vibhu2208/Aadhar-Homes/internal/storage"
	"github.com/vibhu2208/Aadhar-Homes/internal/utils"
)

// --- Mocks ---

// MockListingService implements services.IListingService.
type MockListingService struct {
	mock.Mock
}

func (m *MockListingService) List(ctx context.Context, category models.Category, params services.ListParams) ([]models.Listing, int64, error) {
	args := m.Called(ctx, category, params)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]models.Listing), args.Get(1).(int64), args.Error(2)
}

func (m *MockListingService) Search(ctx context.Context, category models.Category, q string, page query.Page) ([]models.Listing, int64, error) {
	args := m.Called(ctx, category, q, page)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]models.Listing), args.Get(1).(int64), args.Error(2)
}

func (m *MockListingService) Upcoming(ctx context.Context, limit int) ([]models.Listing, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Listing), args.Error(1)
}

func (m *MockListingService) FindByID(ctx context.Context, category models.Category, id utils.SixID) (*models.Listing, error) {
	args := m.Called(ctx, category, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Listing), args.Error(1)
}

func (m *MockListingService) Create(ctx context.Context, category models.Category, listing *models.Listing) (*models.Listing, error) {
	args := m.Called(ctx, category, listing)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Listing), args.Error(1)
}

func (m *MockListingService) Update(ctx context.Context, category models.Category, id utils.SixID, updates map[string]interface{}) (*models.Listing, error) {
	args := m.Called(ctx, category, id, updates)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Listing), args.Error(1)
}

func (m *MockListingService) Delete(ctx context.Context, category models.Category, id utils.SixID) error {
	args := m.Called(ctx, category, id)
	return args.Error(0)
}

func (m *MockListingService) Stats(ctx context.Context, category models.Category) (*models.ListingStats, error) {
	args := m.Called(ctx, category)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ListingStats), args.Error(1)
}

func (m *MockListingService) RefreshStats(ctx context.Context, category models.Category) (*models.ListingStats, error) {
	args := m.Called(ctx, category)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ListingStats), args.Error(1)
}

func (m *MockListingService) SetThumbnail(ctx context.Context, category models.Category, id utils.SixID, asset models.MediaAsset) error {
	args := m.Called(ctx, category, id, asset)
	return args.Error(0)
}

// MockAccountService implements services.IAccountService.
type MockAccountService struct {
	mock.Mock
}

func (m *MockAccountService) Register(ctx context.Context, params services.RegisterParams) (*models.Account, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Account), args.Error(1)
}

func (m *MockAccountService) Authenticate(ctx context.Context, email, password string) (*models.Account, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Account), args.Error(1)
}

func (m *MockAccountService) FindByID(ctx context.Context, id utils.SixID) (*models.Account, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Account), args.Error(1)
}

// MockMediaStorage implements storage.IMediaStorage.
type MockMediaStorage struct {
	mock.Mock
}

func (m *MockMediaStorage) PresignUpload(ctx context.Context, folder, filename, contentType string) (*storage.UploadTicket, error) {
	args := m.Called(ctx, folder, filename, contentType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*storage.UploadTicket), args.Error(1)
}

func (m *MockMediaStorage) PutObject(ctx context.Context, key, contentType string, body []byte) error {
	args := m.Called(ctx, key, contentType, body)
	return args.Error(0)
}

func (m *MockMediaStorage) PublicURL(key string) string {
	args := m.Called(key)
	return args.String(0)
}

// MockTaskEnqueuer implements handlers.TaskEnqueuer.
type MockTaskEnqueuer struct {
	mock.Mock
}

func (m *MockTaskEnqueuer) Enqueue(task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	args := m.Called(task, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*asynq.TaskInfo), args.Error(1)
}
