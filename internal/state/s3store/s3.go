// Package s3store keeps the application document as a JSON object in an
// S3-compatible bucket (AWS or MinIO).
package s3store

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/dmitrijs2005/contactkeeper/internal/models"
	"github.com/dmitrijs2005/contactkeeper/internal/state"
)

const maxRetries = 5

var ErrTooManyConflicts = errors.New("state object kept changing during update")

// ObjectClient is the part of *s3.Client the store uses.
type ObjectClient interface {
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type Options struct {
	Bucket   string
	Region   string
	Endpoint string
	User     string
	Password string
	Key      string
}

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) ObjectClient {
		return s3.NewFromConfig(cfg, optFns...)
	}
)

type Store struct {
	client ObjectClient
	bucket string
	key    string
}

// Open builds an S3 client from static credentials. A non-empty Endpoint
// switches to path-style addressing, which MinIO needs.
func Open(ctx context.Context, o Options) (*Store, error) {
	opts := []func(*config.LoadOptions) error{config.WithRegion(o.Region)}
	if o.User != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(o.User, o.Password, "")))
	}
	cfg, err := loadDefaultAWSConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := newS3ClientFromConfig(cfg, func(so *s3.Options) {
		if o.Endpoint != "" {
			so.BaseEndpoint = aws.String(o.Endpoint)
			so.UsePathStyle = true
		}
	})
	return New(client, o.Bucket, o.Key), nil
}

func New(client ObjectClient, bucket, key string) *Store {
	if key == "" {
		key = state.DefaultKey
	}
	return &Store{client: client, bucket: bucket, key: key + ".json"}
}

func (s *Store) Load(ctx context.Context) (*models.AppState, error) {
	data, _, err := s.get(ctx)
	if err != nil {
		return nil, err
	}
	return state.Decode(data)
}

func (s *Store) Save(ctx context.Context, st *models.AppState) error {
	data, err := state.Encode(st)
	if err != nil {
		return err
	}
	return s.put(ctx, data, nil)
}

// Update writes conditionally on the ETag that was read (If-None-Match: *
// when the object did not exist) and retries on 412.
func (s *Store) Update(ctx context.Context, fn func(*models.AppState) error) error {
	for i := 0; i < maxRetries; i++ {
		data, etag, err := s.get(ctx)
		if err != nil {
			return err
		}
		st, err := state.Decode(data)
		if err != nil {
			return err
		}
		if err := fn(st); err != nil {
			return err
		}
		out, err := state.Encode(st)
		if err != nil {
			return err
		}

		cond := func(in *s3.PutObjectInput) {
			if etag == "" {
				in.IfNoneMatch = aws.String("*")
			} else {
				in.IfMatch = aws.String(etag)
			}
		}
		err = s.put(ctx, out, cond)
		if isPreconditionFailed(err) {
			continue
		}
		return err
	}
	return ErrTooManyConflicts
}

func (s *Store) Close() error { return nil }

func (s *Store) get(ctx context.Context) ([]byte, string, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key),
	})
	if err != nil {
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			return nil, "", nil
		}
		return nil, "", fmt.Errorf("failed to get state[%s]: %w", s.key, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read state[%s]: %w", s.key, err)
	}
	return data, aws.ToString(out.ETag), nil
}

func (s *Store) put(ctx context.Context, data []byte, cond func(*s3.PutObjectInput)) error {
	in := &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(s.key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String("application/json"),
	}
	if cond != nil {
		cond(in)
	}
	if _, err := s.client.PutObject(ctx, in); err != nil {
		return fmt.Errorf("failed to put state[%s]: %w", s.key, err)
	}
	return nil
}

func isPreconditionFailed(err error) bool {
	var apiErr smithy.APIError
	return errors.As(err, &apiErr) && apiErr.ErrorCode() == "PreconditionFailed"
}
