package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/vadimbarashkov/url-shortener-kv/internal/codec"
	"github.com/vadimbarashkov/url-shortener-kv/internal/entity"
)

// DefaultMinCodeWidth is the shortest code handed out.
const DefaultMinCodeWidth = 7

type urlRepository interface {
	Save(ctx context.Context, serial uint64, url string) error
	RetrieveBySerial(ctx context.Context, serial uint64) (string, error)
}

type serialSource interface {
	NextSerial(ctx context.Context) (uint64, error)
}

type URLUseCase struct {
	minCodeWidth int
	urlRepo      urlRepository
	serials      serialSource
}

func New(minCodeWidth int, urlRepo urlRepository, serials serialSource) *URLUseCase {
	if minCodeWidth <= 0 {
		minCodeWidth = DefaultMinCodeWidth
	}

	return &URLUseCase{
		minCodeWidth: minCodeWidth,
		urlRepo:      urlRepo,
		serials:      serials,
	}
}

// ShortenURL assigns the next serial to originalURL and stores the mapping.
func (uc *URLUseCase) ShortenURL(ctx context.Context, originalURL string) (*entity.Mapping, error) {
	const op = "usecase.URLUseCase.ShortenURL"

	if strings.TrimSpace(originalURL) == "" {
		return nil, fmt.Errorf("%s: url is empty: %w", op, entity.ErrInvalidArguments)
	}

	serial, err := uc.serials.NextSerial(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to allocate serial: %w", op, err)
	}

	if err := uc.urlRepo.Save(ctx, serial, originalURL); err != nil {
		return nil, fmt.Errorf("%s: failed to save mapping: %w", op, err)
	}

	return &entity.Mapping{
		Serial: serial,
		Code:   codec.ZeroFill(codec.Encode(serial), uc.minCodeWidth),
		URL:    originalURL,
	}, nil
}

// ResolveShortCode looks up the URL behind code. The returned error is non-nil
// only when the store fails; unknown and malformed codes are reported through
// the Resolution kind.
func (uc *URLUseCase) ResolveShortCode(ctx context.Context, code string) (entity.Resolution, error) {
	const op = "usecase.URLUseCase.ResolveShortCode"

	serial, err := codec.Decode(code)
	if err != nil {
		return entity.Invalid(invalidReason(err)), nil
	}

	url, err := uc.urlRepo.RetrieveBySerial(ctx, serial)
	if err != nil {
		if errors.Is(err, entity.ErrURLNotFound) {
			return entity.NotFound(), nil
		}

		return entity.Resolution{}, fmt.Errorf("%s: failed to resolve short code: %w", op, err)
	}

	return entity.Redirect(url), nil
}

func invalidReason(err error) string {
	if errors.Is(err, codec.ErrEncodingOverflow) {
		return "code is out of range"
	}

	return "code must be a non-zero base-62 value"
}
