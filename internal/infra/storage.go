package infra

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"crmseguros/internal/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/rs/zerolog/log"
)

// ErrArchivoNoEncontrado is returned when the requested object does not exist.
var ErrArchivoNoEncontrado = errors.New("archivo no encontrado")

// ObjectInfo describes one stored document.
type ObjectInfo struct {
	Key          string
	Size         int64
	LastModified time.Time
}

// FileStore is the document storage used by policies and clients.
// Keys follow {entityId}/{filename}.
type FileStore interface {
	ListFiles(ctx context.Context, prefix string) ([]ObjectInfo, error)
	UploadFile(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	DownloadFile(ctx context.Context, key string) (io.ReadCloser, error)
}

// ── S3 ───────────────────────────────────────────────────────────────────────

type s3Store struct {
	client *s3.Client
	bucket string
	cb     *CircuitBreaker
}

// NewS3FileStore builds a FileStore on S3 or an S3-compatible endpoint (MinIO).
// Static credentials are used when S3_ACCESS_KEY_ID is set, otherwise the
// default AWS credential chain.
func NewS3FileStore(ctx context.Context, cfg *config.Config) (FileStore, error) {
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.S3Region)}
	if cfg.S3AccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.S3AccessKeyID, cfg.S3SecretAccessKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("cargar configuración aws: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3Endpoint)
			o.UsePathStyle = true
		}
	})

	log.Info().Str("bucket", cfg.S3Bucket).Msg("Almacenamiento S3 configurado")
	return &s3Store{client: client, bucket: cfg.S3Bucket, cb: NewCircuitBreaker(DefaultCBConfig())}, nil
}

func esNoEncontrado(err error) bool {
	var nsk *types.NoSuchKey
	var nf *types.NotFound
	return errors.As(err, &nsk) || errors.As(err, &nf)
}

func (s *s3Store) ListFiles(ctx context.Context, prefix string) ([]ObjectInfo, error) {
	var out []ObjectInfo
	err := s.cb.Execute(func() error {
		out = out[:0]
		p := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
			Bucket: aws.String(s.bucket),
			Prefix: aws.String(prefix),
		})
		for p.HasMorePages() {
			page, err := p.NextPage(ctx)
			if err != nil {
				return err
			}
			for _, obj := range page.Contents {
				info := ObjectInfo{Key: aws.ToString(obj.Key), Size: aws.ToInt64(obj.Size)}
				if obj.LastModified != nil {
					info.LastModified = *obj.LastModified
				}
				out = append(out, info)
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("listar archivos %s: %w", prefix, err)
	}
	return out, nil
}

func (s *s3Store) UploadFile(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	err := s.cb.Execute(func() error {
		_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
			Bucket:        aws.String(s.bucket),
			Key:           aws.String(key),
			Body:          r,
			ContentLength: aws.Int64(size),
			ContentType:   aws.String(contentType),
		})
		return err
	})
	if err != nil {
		return fmt.Errorf("subir archivo %s: %w", key, err)
	}
	return nil
}

func (s *s3Store) DownloadFile(ctx context.Context, key string) (io.ReadCloser, error) {
	var body io.ReadCloser
	err := s.cb.Execute(func() error {
		res, err := s.client.GetObject(ctx, &s3.GetObjectInput{
			Bucket: aws.String(s.bucket),
			Key:    aws.String(key),
		})
		if err != nil {
			return err
		}
		body = res.Body
		return nil
	}, esNoEncontrado)
	if err != nil {
		if esNoEncontrado(err) {
			return nil, ErrArchivoNoEncontrado
		}
		return nil, fmt.Errorf("descargar archivo %s: %w", key, err)
	}
	return body, nil
}

// BreakerState exposes the breaker state for /health.
func (s *s3Store) BreakerState() CBState { return s.cb.State() }
