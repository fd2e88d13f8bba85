package utils

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"mime"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// ObjectPutter is the subset of the S3 client the uploader needs.
type ObjectPutter interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// ImageUploader stores dish pictures and returns the public URL used as Dish.Image.
type ImageUploader struct {
	client    ObjectPutter
	bucket    string
	publicURL string
	now       func() time.Time
}

func NewImageUploader(client ObjectPutter, bucket, publicURL string) *ImageUploader {
	return &ImageUploader{
		client:    client,
		bucket:    bucket,
		publicURL: strings.TrimRight(publicURL, "/"),
		now:       time.Now,
	}
}

// NewS3ImageUploader loads the default AWS config for region.
func NewS3ImageUploader(ctx context.Context, region, bucket, publicURL string) (*ImageUploader, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load AWS config for S3: %w", err)
	}
	return NewImageUploader(s3.NewFromConfig(cfg), bucket, publicURL), nil
}

// DecodeDataURI splits "data:<mime>;base64,<data>" into content type, file
// extension and raw bytes.
func DecodeDataURI(dataURI string) (contentType, ext string, data []byte, err error) {
	meta, payload, found := strings.Cut(dataURI, ",")
	if !found || !strings.HasPrefix(meta, "data:") || !strings.HasSuffix(meta, ";base64") {
		return "", "", nil, fmt.Errorf("invalid base64 image")
	}
	contentType = strings.TrimSuffix(strings.TrimPrefix(meta, "data:"), ";base64")
	if !strings.HasPrefix(contentType, "image/") {
		return "", "", nil, fmt.Errorf("unsupported content type %q", contentType)
	}

	switch contentType {
	case "image/jpeg", "image/jpg":
		ext = ".jpg"
	default:
		if exts, _ := mime.ExtensionsByType(contentType); len(exts) > 0 {
			ext = exts[0]
		} else {
			ext = "." + strings.TrimPrefix(contentType, "image/")
		}
	}

	data, err = base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", "", nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return contentType, ext, data, nil
}

// UploadDishImage stores the image under dish-images/{userID}/ and returns its URL.
func (u *ImageUploader) UploadDishImage(ctx context.Context, userID, dataURI string) (string, error) {
	contentType, ext, data, err := DecodeDataURI(dataURI)
	if err != nil {
		return "", err
	}

	key := fmt.Sprintf("dish-images/%s/%d%s", userID, u.now().UnixNano(), ext)
	_, err = u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(u.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
		ACL:         s3types.ObjectCannedACLPublicRead,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to S3: %w", err)
	}
	return fmt.Sprintf("%s/%s", u.publicURL, key), nil
}
