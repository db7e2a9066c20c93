package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/stockkeeper/internal/common"
	sc "github.com/dmitrijs2005/stockkeeper/internal/server/config"
	"github.com/dmitrijs2005/stockkeeper/internal/server/models"
	"github.com/google/uuid"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// PresignExpiry is how long presigned image URLs stay valid.
const PresignExpiry = 15 * time.Minute

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return s3.NewPresignClient(c)
	}

	presignPutObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignPutObject(ctx, in, optFns...)
	}
	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignGetObject(ctx, in, optFns...)
	}
)

// ImageService hands out presigned object-storage URLs for product images.
// Image bytes never pass through the server.
type ImageService struct {
	config *sc.Config
	now    func() time.Time
}

func NewImageService(config *sc.Config) *ImageService {
	return &ImageService{config: config, now: time.Now}
}

func userImagePrefix(userID string) string {
	return "products/" + userID + "/"
}

// ImageStorageKey returns a fresh object key under the user's prefix:
// products/<user>/<yyyy>/<mm>/<uuid>.
func ImageStorageKey(userID string, d time.Time) string {
	return fmt.Sprintf("%s%04d/%02d/%v", userImagePrefix(userID), d.Year(), int(d.Month()), uuid.New())
}

func (s *ImageService) getPresignClient(ctx context.Context) (*s3.PresignClient, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(s.config.S3Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			s.config.S3RootUser,
			s.config.S3RootPassword,
			"",
		)))
	if err != nil {
		return nil, err
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(s.config.S3BaseEndpoint)
		o.UsePathStyle = true
	})

	return newS3PresignClient(client), nil
}

// UploadURL presigns a PUT for a new image key owned by userID.
func (s *ImageService) UploadURL(ctx context.Context, userID, contentType string) (*models.ImageUpload, error) {
	if userID == "" {
		return nil, common.ErrUnauthorized
	}
	contentType = strings.TrimSpace(contentType)
	if contentType != "" && !strings.HasPrefix(contentType, "image/") {
		return nil, common.Invalid("Only image uploads are allowed")
	}

	presignClient, err := s.getPresignClient(ctx)
	if err != nil {
		return nil, err
	}

	bucket := s.config.S3Bucket
	now := s.now()
	key := ImageStorageKey(userID, now)

	in := &s3.PutObjectInput{
		Bucket: &bucket,
		Key:    &key,
	}
	if contentType != "" {
		in.ContentType = aws.String(contentType)
	}

	req, err := presignPutObject(presignClient, ctx, in, s3.WithPresignExpires(PresignExpiry))
	if err != nil {
		return nil, err
	}

	return &models.ImageUpload{Key: key, URL: req.URL, ExpiresAt: now.Add(PresignExpiry)}, nil
}

// DownloadURL presigns a GET for key, which must lie under userID's prefix.
func (s *ImageService) DownloadURL(ctx context.Context, userID, key string) (string, error) {
	if userID == "" || !strings.HasPrefix(key, userImagePrefix(userID)) || strings.Contains(key, "..") {
		return "", common.ErrForbidden
	}

	presignClient, err := s.getPresignClient(ctx)
	if err != nil {
		return "", err
	}

	bucket := s.config.S3Bucket

	req, err := presignGetObject(presignClient, ctx, &s3.GetObjectInput{
		Bucket: &bucket,
		Key:    &key,
	}, s3.WithPresignExpires(PresignExpiry))
	if err != nil {
		return "", err
	}

	return req.URL, nil
}
