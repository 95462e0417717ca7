package usecase

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/vadimbarashkov/url-shortener-kv/internal/adapter/kv/memory"
	"github.com/vadimbarashkov/url-shortener-kv/internal/adapter/repository/kvstore"
	"github.com/vadimbarashkov/url-shortener-kv/internal/codec"
	"github.com/vadimbarashkov/url-shortener-kv/internal/entity"
	"github.com/vadimbarashkov/url-shortener-kv/internal/serial"
)

type mockURLRepository struct {
	mock.Mock
}

func (m *mockURLRepository) Save(ctx context.Context, serial uint64, url string) error {
	args := m.Called(ctx, serial, url)
	return args.Error(0)
}

func (m *mockURLRepository) RetrieveBySerial(ctx context.Context, serial uint64) (string, error) {
	args := m.Called(ctx, serial)
	return args.String(0), args.Error(1)
}

type mockSerialSource struct {
	mock.Mock
}

func (m *mockSerialSource) NextSerial(ctx context.Context) (uint64, error) {
	args := m.Called(ctx)
	return args.Get(0).(uint64), args.Error(1)
}

type URLUseCaseTestSuite struct {
	suite.Suite
	errUnknown  error
	urlRepoMock *mockURLRepository
	serialsMock *mockSerialSource
	uc          *URLUseCase
}

func (suite *URLUseCaseTestSuite) SetupSuite() {
	suite.errUnknown = errors.New("unknown error")
}

func (suite *URLUseCaseTestSuite) SetupSubTest() {
	suite.urlRepoMock = new(mockURLRepository)
	suite.serialsMock = new(mockSerialSource)
	suite.uc = New(7, suite.urlRepoMock, suite.serialsMock)
}

func (suite *URLUseCaseTestSuite) TearDownSubTest() {
	suite.urlRepoMock.AssertExpectations(suite.T())
	suite.serialsMock.AssertExpectations(suite.T())
}

func (suite *URLUseCaseTestSuite) TestShortenURL() {
	suite.Run("empty url", func() {
		for _, url := range []string{"", "   ", "\t\n"} {
			mapping, err := suite.uc.ShortenURL(context.Background(), url)

			suite.ErrorIs(err, entity.ErrInvalidArguments)
			suite.Nil(mapping)
		}
	})

	suite.Run("allocation error", func() {
		suite.serialsMock.
			On("NextSerial", context.Background()).
			Once().
			Return(uint64(0), suite.errUnknown)

		mapping, err := suite.uc.ShortenURL(context.Background(), "https://example.com")

		suite.ErrorIs(err, suite.errUnknown)
		suite.Nil(mapping)
	})

	suite.Run("save error", func() {
		suite.serialsMock.
			On("NextSerial", context.Background()).
			Once().
			Return(uint64(1), nil)
		suite.urlRepoMock.
			On("Save", context.Background(), uint64(1), "https://example.com").
			Once().
			Return(fmt.Errorf("wrapped: %w", entity.ErrStore))

		mapping, err := suite.uc.ShortenURL(context.Background(), "https://example.com")

		suite.ErrorIs(err, entity.ErrStore)
		suite.Nil(mapping)
	})

	suite.Run("success", func() {
		suite.serialsMock.
			On("NextSerial", context.Background()).
			Once().
			Return(uint64(62), nil)
		suite.urlRepoMock.
			On("Save", context.Background(), uint64(62), "https://example.com").
			Once().
			Return(nil)

		mapping, err := suite.uc.ShortenURL(context.Background(), "https://example.com")

		suite.NoError(err)
		suite.Equal(&entity.Mapping{Serial: 62, Code: "0000010", URL: "https://example.com"}, mapping)
	})
}

func (suite *URLUseCaseTestSuite) TestResolveShortCode() {
	suite.Run("invalid codes", func() {
		for _, code := range []string{"", "0", "0000000", "abc-12", "lYGhA16ahyg"} {
			res, err := suite.uc.ResolveShortCode(context.Background(), code)

			suite.NoError(err)
			suite.Equal(entity.ResolutionInvalid, res.Kind, code)
			suite.NotEmpty(res.Reason)
			suite.Empty(res.URL)
		}
	})

	suite.Run("not found", func() {
		suite.urlRepoMock.
			On("RetrieveBySerial", context.Background(), uint64(2020598544545)).
			Once().
			Return("", fmt.Errorf("wrapped: %w", entity.ErrURLNotFound))

		res, err := suite.uc.ResolveShortCode(context.Background(), "zzzzzzz")

		suite.NoError(err)
		suite.Equal(entity.NotFound(), res)
	})

	suite.Run("store error", func() {
		suite.urlRepoMock.
			On("RetrieveBySerial", context.Background(), uint64(1)).
			Once().
			Return("", fmt.Errorf("wrapped: %w", entity.ErrStore))

		_, err := suite.uc.ResolveShortCode(context.Background(), "0000001")

		suite.ErrorIs(err, entity.ErrStore)
	})

	suite.Run("leading zeros are ignored", func() {
		suite.urlRepoMock.
			On("RetrieveBySerial", context.Background(), uint64(62)).
			Twice().
			Return("https://example.com", nil)

		for _, code := range []string{"10", "0000010"} {
			res, err := suite.uc.ResolveShortCode(context.Background(), code)

			suite.NoError(err)
			suite.Equal(entity.Redirect("https://example.com"), res)
		}
	})
}

func TestURLUseCase(t *testing.T) {
	suite.Run(t, new(URLUseCaseTestSuite))
}

func newMemoryUseCase() *URLUseCase {
	repo := kvstore.NewURLRepository(memory.New(), kvstore.WithPageSize(3))
	return New(DefaultMinCodeWidth, repo, serial.NewScanner(repo, serial.DefaultInitial))
}

func TestURLUseCase_EndToEnd(t *testing.T) {
	ctx := context.Background()
	uc := newMemoryUseCase()

	a, err := uc.ShortenURL(ctx, "https://a.example")
	require.NoError(t, err)
	require.Equal(t, "0000001", a.Code)

	b, err := uc.ShortenURL(ctx, "https://b.example")
	require.NoError(t, err)
	require.Equal(t, "0000002", b.Code)

	for i := 0; i < 2; i++ {
		res, err := uc.ResolveShortCode(ctx, a.Code)
		require.NoError(t, err)
		require.Equal(t, entity.Redirect("https://a.example"), res)
	}

	res, err := uc.ResolveShortCode(ctx, "2")
	require.NoError(t, err)
	require.Equal(t, entity.Redirect("https://b.example"), res)

	res, err = uc.ResolveShortCode(ctx, "zzzzzzz")
	require.NoError(t, err)
	require.Equal(t, entity.NotFound(), res)
}

func TestURLUseCase_SequentialCreatesAreMonotonic(t *testing.T) {
	ctx := context.Background()
	uc := newMemoryUseCase()

	prev := serial.DefaultInitial - 1
	for i := 0; i < 100; i++ {
		m, err := uc.ShortenURL(ctx, fmt.Sprintf("https://example.com/%d", i))
		require.NoError(t, err)
		require.Equal(t, prev+1, m.Serial)

		decoded, err := codec.Decode(m.Code)
		require.NoError(t, err)
		require.Equal(t, m.Serial, decoded)

		prev = m.Serial
	}
}
