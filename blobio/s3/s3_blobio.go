package s3

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"path"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/xxxsen/common/logutil"
	commonutils "github.com/xxxsen/common/utils"
	"github.com/xxxsen/davbox/blobio"
	"go.uber.org/zap"
)

type config struct {
	Endpoint  string `json:"endpoint"`
	Region    string `json:"region"`
	Bucket    string `json:"bucket"`
	Prefix    string `json:"prefix"`
	AccessKey string `json:"access_key"`
	SecretKey string `json:"secret_key"`
}

type s3BlobIO struct {
	client *s3.Client
	bucket string
	prefix string
}

func New(ctx context.Context, c *config) (blobio.IBlobIO, error) {
	if len(c.Bucket) == 0 {
		return nil, fmt.Errorf("no s3 bucket provided")
	}
	if len(c.Region) == 0 {
		c.Region = "us-east-1"
	}
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(c.Region),
	}
	if len(c.AccessKey) > 0 {
		opts = append(opts, awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(c.AccessKey, c.SecretKey, "")))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config failed, err:%w", err)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = true
		if len(c.Endpoint) > 0 {
			o.BaseEndpoint = aws.String(c.Endpoint)
		}
	})
	return &s3BlobIO{client: client, bucket: c.Bucket, prefix: c.Prefix}, nil
}

func (s *s3BlobIO) Name() string {
	return "s3"
}

func (s *s3BlobIO) objectKey(key string) string {
	if len(s.prefix) == 0 {
		return key
	}
	return path.Join(s.prefix, key)
}

func (s *s3BlobIO) Write(ctx context.Context, key string, r io.Reader, size int64) error {
	input := &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.objectKey(key)),
		Body:   r,
	}
	if size >= 0 {
		input.ContentLength = aws.Int64(size)
	}
	start := time.Now()
	if _, err := s.client.PutObject(ctx, input); err != nil {
		return fmt.Errorf("put object:%s failed, err:%w", key, err)
	}
	logutil.GetLogger(ctx).Debug("s3 put object", zap.String("key", key), zap.Int64("size", size), zap.Duration("cost", time.Since(start)))
	return nil
}

func (s *s3BlobIO) Read(ctx context.Context, key string) (io.ReadCloser, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.objectKey(key)),
	})
	if err != nil {
		return nil, convErr(key, err)
	}
	return out.Body, nil
}

func (s *s3BlobIO) Copy(ctx context.Context, src, dst string) error {
	_, err := s.client.CopyObject(ctx, &s3.CopyObjectInput{
		Bucket:     aws.String(s.bucket),
		Key:        aws.String(s.objectKey(dst)),
		CopySource: aws.String(url.PathEscape(s.bucket + "/" + s.objectKey(src))),
	})
	if err != nil {
		return convErr(src, err)
	}
	return nil
}

func (s *s3BlobIO) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.objectKey(key)),
	})
	if err != nil {
		return fmt.Errorf("delete object:%s failed, err:%w", key, err)
	}
	return nil
}

func (s *s3BlobIO) Stat(ctx context.Context, key string) (*blobio.BlobInfo, error) {
	out, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.objectKey(key)),
	})
	if err != nil {
		return nil, convErr(key, err)
	}
	info := &blobio.BlobInfo{
		Size: aws.ToInt64(out.ContentLength),
	}
	if out.LastModified != nil {
		info.Mtime = *out.LastModified
	}
	return info, nil
}

func convErr(key string, err error) error {
	var nsk *types.NoSuchKey
	var nf *types.NotFound
	if errors.As(err, &nsk) || errors.As(err, &nf) {
		return fmt.Errorf("key:%s, %w", key, blobio.ErrNotFound)
	}
	return fmt.Errorf("access object:%s failed, err:%w", key, err)
}

func create(args interface{}) (blobio.IBlobIO, error) {
	c := &config{}
	if err := commonutils.ConvStructJson(args, c); err != nil {
		return nil, err
	}
	return New(context.Background(), c)
}

func init() {
	blobio.Register("s3", create)
}
