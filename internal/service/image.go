package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/pageza/foodgram/backend/config"
	"github.com/pageza/foodgram/backend/internal/logging"
	"github.com/pageza/foodgram/backend/internal/metrics"
)

// MaxImageBytes caps the decoded size of an uploaded image
const MaxImageBytes = 5 << 20

var dataURIPattern = regexp.MustCompile(`^data:(image/[a-zA-Z0-9.+-]+);base64,(.+)$`)

var imageExtensions = map[string]string{
	"image/png":  "png",
	"image/jpeg": "jpg",
	"image/gif":  "gif",
	"image/webp": "webp",
}

// ImageStore persists image bytes and returns their public URL
type ImageStore interface {
	Name() string
	Put(ctx context.Context, key string, data []byte, contentType string) (string, error)
}

// ImageService turns data-URI images into stored files
type ImageService struct {
	store ImageStore
}

// NewImageService creates a new ImageService instance
func NewImageService(store ImageStore) *ImageService {
	return &ImageService{store: store}
}

// DecodeDataURI returns the bytes and MIME type of a base64 data URI image
func DecodeDataURI(value string) ([]byte, string, error) {
	m := dataURIPattern.FindStringSubmatch(strings.TrimSpace(value))
	if m == nil {
		return nil, "", NewValidationError("image", "image must be a base64 data URI")
	}

	contentType := strings.ToLower(m[1])
	if _, ok := imageExtensions[contentType]; !ok {
		return nil, "", NewValidationError("image", "unsupported image type "+contentType)
	}

	data, err := base64.StdEncoding.DecodeString(m[2])
	if err != nil {
		return nil, "", NewValidationError("image", "image is not valid base64")
	}
	if len(data) == 0 {
		return nil, "", NewValidationError("image", "image is empty")
	}
	if len(data) > MaxImageBytes {
		return nil, "", NewValidationError("image", "image is too large")
	}

	// The declared type must match the content.
	if sniffed := http.DetectContentType(data); sniffed != contentType {
		return nil, "", NewValidationError("image", "image content does not match "+contentType)
	}

	return data, contentType, nil
}

// SaveDataURI decodes and stores the image, returning its URL
func (s *ImageService) SaveDataURI(ctx context.Context, value string) (string, error) {
	data, contentType, err := DecodeDataURI(value)
	if err != nil {
		return "", err
	}

	key := path.Join("recipes", "images", uuid.NewString()+"."+imageExtensions[contentType])
	url, err := s.store.Put(ctx, key, data, contentType)
	metrics.RecordImageUpload(s.store.Name(), err)
	if err != nil {
		return "", fmt.Errorf("failed to store image: %w", err)
	}

	logging.Ctx(ctx).Debug().Str("key", key).Str("store", s.store.Name()).Msg("image stored")
	return url, nil
}

// S3Store uploads images to an S3 bucket behind a circuit breaker
type S3Store struct {
	s3Config *config.S3Config
	cb       *gobreaker.CircuitBreaker[string]
}

func NewS3Store(s3Config *config.S3Config) *S3Store {
	const name = "s3-images"
	metrics.SetCircuitBreakerState(name, gobreaker.StateClosed)

	cb := gobreaker.NewCircuitBreaker[string](gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state change")
			metrics.SetCircuitBreakerState(name, to)
		},
	})

	return &S3Store{s3Config: s3Config, cb: cb}
}

func (s *S3Store) Name() string {
	return "s3"
}

// Put uploads image data to S3 and returns the public URL
func (s *S3Store) Put(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	return s.cb.Execute(func() (string, error) {
		_, err := s.s3Config.Client.PutObject(ctx, &s3.PutObjectInput{
			Bucket:      aws.String(s.s3Config.BucketName),
			Key:         aws.String(key),
			Body:        bytes.NewReader(data),
			ContentType: aws.String(contentType),
		})
		if err != nil {
			return "", fmt.Errorf("failed to upload to S3: %w", err)
		}
		return s.s3Config.ObjectURL(key), nil
	})
}

// LocalStore writes images below a directory served at baseURL
type LocalStore struct {
	dir     string
	baseURL string
}

func NewLocalStore(dir, baseURL string) *LocalStore {
	return &LocalStore{dir: dir, baseURL: strings.TrimRight(baseURL, "/")}
}

func (s *LocalStore) Name() string {
	return "local"
}

func (s *LocalStore) Put(_ context.Context, key string, data []byte, _ string) (string, error) {
	target := filepath.Join(s.dir, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return "", fmt.Errorf("failed to create media directory: %w", err)
	}
	if err := os.WriteFile(target, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write image: %w", err)
	}
	return s.baseURL + "/" + key, nil
}
