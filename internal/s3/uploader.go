// internal/s3/uploader.go
package s3

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"
	"time"

	"waste-docket-api-server/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DownloadLinkTTL is the lifetime of a pre-signed download link.
const DownloadLinkTTL = 10 * time.Minute

type Uploader struct {
	Client           *s3.Client
	Presigner        *s3.PresignClient
	Bucket           string
	Region           string
	CloudFrontDomain string
	Log              *zap.Logger
}

// NewUploader builds the client from static keys when they are configured,
// otherwise from the default AWS credential chain. A non-empty bucket
// overrides cfg.Bucket.
func NewUploader(ctx context.Context, cfg config.S3Config, bucket string, log *zap.Logger) (*Uploader, error) {
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")))
	}
	sdkConfig, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	if bucket == "" {
		bucket = cfg.Bucket
	}
	return New(s3.NewFromConfig(sdkConfig), bucket, cfg.Region, cfg.CloudFrontDomain, log), nil
}

func New(client *s3.Client, bucket, region, cloudFrontDomain string, log *zap.Logger) *Uploader {
	if log == nil {
		log = zap.NewNop()
	}
	return &Uploader{
		Client:           client,
		Presigner:        s3.NewPresignClient(client),
		Bucket:           bucket,
		Region:           region,
		CloudFrontDomain: cloudFrontDomain,
		Log:              log.With(zap.String("component", "s3")),
	}
}

// ObjectKey builds a collision-free key under prefix that keeps the file's base name.
func ObjectKey(prefix, fileName string) string {
	base := path.Base(strings.ReplaceAll(fileName, "\\", "/"))
	if base == "." || base == "/" {
		base = "file"
	}
	return path.Join(prefix, uuid.NewString()+"-"+base)
}

// UploadFile uploads a file to S3 and returns its URL.
func (u *Uploader) UploadFile(ctx context.Context, file io.Reader, objectKey, contentType string) (string, error) {
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	_, err := u.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(u.Bucket),
		Key:         aws.String(objectKey),
		Body:        file,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		u.Log.Error("upload failed", zap.String("key", objectKey), zap.Error(err))
		return "", fmt.Errorf("failed to upload file to S3: %w", err)
	}
	return u.PublicURL(objectKey), nil
}

// PublicURL prefers the CloudFront domain and falls back to the S3 URL.
func (u *Uploader) PublicURL(objectKey string) string {
	if u.CloudFrontDomain != "" {
		return fmt.Sprintf("https://%s/%s", u.CloudFrontDomain, objectKey)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", u.Bucket, u.Region, objectKey)
}

// KeyFromURL recovers the object key from a URL returned by UploadFile.
// Anything that does not parse as an absolute URL is taken to be a key already.
func KeyFromURL(raw string) string {
	parsed, err := url.Parse(raw)
	if err != nil || parsed.Host == "" {
		return raw
	}
	return strings.TrimPrefix(parsed.Path, "/")
}

// GenerateDownloadLink pre-signs a GET for the object, valid for DownloadLinkTTL.
// objectRef may be a key or a URL returned by UploadFile.
func (u *Uploader) GenerateDownloadLink(ctx context.Context, objectRef, contentType string) (string, error) {
	input := &s3.GetObjectInput{
		Bucket: aws.String(u.Bucket),
		Key:    aws.String(KeyFromURL(objectRef)),
	}
	if contentType != "" {
		input.ResponseContentType = aws.String(contentType)
	}
	req, err := u.Presigner.PresignGetObject(ctx, input, s3.WithPresignExpires(DownloadLinkTTL))
	if err != nil {
		return "", fmt.Errorf("failed to presign download: %w", err)
	}
	return req.URL, nil
}

func (u *Uploader) DeleteObject(ctx context.Context, objectKey string) error {
	_, err := u.Client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(u.Bucket),
		Key:    aws.String(KeyFromURL(objectKey)),
	})
	if err != nil {
		u.Log.Error("delete failed", zap.String("key", objectKey), zap.Error(err))
		return fmt.Errorf("failed to delete object from S3: %w", err)
	}
	return nil
}
