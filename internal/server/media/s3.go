package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dmitrijs2005/accountkeeper/internal/common"
	"github.com/dmitrijs2005/accountkeeper/internal/filex"
	"github.com/dmitrijs2005/accountkeeper/internal/logging"
	"github.com/samber/oops"
	"github.com/sethvargo/go-retry"
)

// S3Config describes the bucket uploads go to. AccessKey/SecretKey are the
// MinIO root user and password in local setups.
type S3Config struct {
	Region       string
	AccessKey    string
	SecretKey    string
	Bucket       string
	BaseEndpoint string
	PublicURL    string

	// Retries is the number of additional PutObject attempts after the first.
	Retries    uint64
	RetryDelay time.Duration
}

type objectPutter interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) objectPutter {
		return s3.NewFromConfig(cfg, optFns...)
	}
)

type S3Uploader struct {
	client objectPutter
	cfg    S3Config
	log    logging.Logger
	now    func() time.Time
}

func NewS3Uploader(ctx context.Context, cfg S3Config, log logging.Logger) (*S3Uploader, error) {
	if cfg.Bucket == "" {
		return nil, oops.Code("MEDIA_CONFIG_INVALID").Errorf("s3 bucket is required")
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = 200 * time.Millisecond
	}

	awsCfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(cfg.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKey,
			cfg.SecretKey,
			"",
		)),
	)
	if err != nil {
		return nil, oops.Code("MEDIA_CONFIG_INVALID").With("operation", "load aws config").Wrap(err)
	}

	client := newS3ClientFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(cfg.BaseEndpoint)
			o.UsePathStyle = true
		}
	})

	return newS3Uploader(client, cfg, log), nil
}

func newS3Uploader(client objectPutter, cfg S3Config, log logging.Logger) *S3Uploader {
	return &S3Uploader{client: client, cfg: cfg, log: log.With("module", "media"), now: time.Now}
}

// Upload stores the file at localPath and returns its URL. Failures carry
// common.ErrUploadFailed.
func (u *S3Uploader) Upload(ctx context.Context, localPath string) (string, error) {
	file := filex.NewLocalFile(localPath)
	defer func() {
		if err := file.Release(); err != nil {
			u.log.Warn(ctx, "release staged file", "path", localPath, "error", err)
		}
	}()

	if localPath == "" {
		return "", uploadFailed(errors.New("no local file"), "")
	}

	data, err := os.ReadFile(localPath)
	if err != nil {
		return "", uploadFailed(err, "")
	}

	key := storageKey(u.now(), localPath)
	contentType := detectContentType(data)

	backoff := retry.WithMaxRetries(u.cfg.Retries, retry.NewExponential(u.cfg.RetryDelay))
	attempt := 0
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		_, err := u.client.PutObject(ctx, &s3.PutObjectInput{
			Bucket:        aws.String(u.cfg.Bucket),
			Key:           aws.String(key),
			Body:          bytes.NewReader(data),
			ContentType:   aws.String(contentType),
			ContentLength: aws.Int64(int64(len(data))),
		})
		if err != nil {
			u.log.Warn(ctx, "put object failed", "key", key, "attempt", attempt, "error", err)
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		return "", uploadFailed(err, key)
	}

	location, err := objectURL(u.cfg.PublicURL, u.cfg.BaseEndpoint, u.cfg.Bucket, u.cfg.Region, key)
	if err != nil {
		return "", uploadFailed(err, key)
	}

	u.log.Debug(ctx, "object stored", "key", key, "content_type", contentType, "size", len(data))
	return location, nil
}

func uploadFailed(err error, key string) error {
	return oops.Code("MEDIA_UPLOAD_FAILED").
		With("key", key).
		Wrap(fmt.Errorf("%w: %w", common.ErrUploadFailed, err))
}
