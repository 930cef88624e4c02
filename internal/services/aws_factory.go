package services

import (
	"context"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3API is the part of the AWS SDK S3 client used by AWSStorageClient. It
// also satisfies the SDK paginator interfaces.
type S3API interface {
	ListBuckets(ctx context.Context, params *s3.ListBucketsInput, optFns ...func(*s3.Options)) (*s3.ListBucketsOutput, error)
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

var _ S3API = &s3.Client{}

// AWSStorageClient implements StorageClient with aws-sdk-go-v2.
type AWSStorageClient struct {
	client S3API
}

var _ StorageClient = (*AWSStorageClient)(nil)

// NewAWSStorageClient wraps an existing SDK client.
func NewAWSStorageClient(client S3API) *AWSStorageClient {
	return &AWSStorageClient{client: client}
}

func (c *AWSStorageClient) ListBuckets(ctx context.Context) ([]BucketInfo, error) {
	buckets := []BucketInfo{}
	paginator := s3.NewListBucketsPaginator(c.client, &s3.ListBucketsInput{})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, classifyAWSError("list buckets", err)
		}
		for _, b := range page.Buckets {
			buckets = append(buckets, BucketInfo{
				Name:         aws.ToString(b.Name),
				CreationDate: aws.ToTime(b.CreationDate),
			})
		}
	}
	return buckets, nil
}

func (c *AWSStorageClient) ListObjects(ctx context.Context, bucketName string) ([]ObjectInfo, error) {
	objects := []ObjectInfo{}
	paginator := s3.NewListObjectsV2Paginator(c.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(bucketName),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, classifyAWSError("list objects", err)
		}
		for _, obj := range page.Contents {
			objects = append(objects, ObjectInfo{
				Key:          aws.ToString(obj.Key),
				Size:         aws.ToInt64(obj.Size),
				LastModified: aws.ToTime(obj.LastModified),
				ETag:         aws.ToString(obj.ETag),
			})
		}
	}
	return objects, nil
}

func (c *AWSStorageClient) GetObject(ctx context.Context, bucketName, key string) (io.ReadCloser, ObjectInfo, error) {
	out, err := c.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucketName),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, ObjectInfo{}, classifyAWSError("get object", err)
	}
	size := int64(-1)
	if out.ContentLength != nil {
		size = *out.ContentLength
	}
	return out.Body, ObjectInfo{
		Key:          key,
		Size:         size,
		LastModified: aws.ToTime(out.LastModified),
		ETag:         aws.ToString(out.ETag),
		ContentType:  aws.ToString(out.ContentType),
	}, nil
}

// AWSFactory builds aws-sdk-go-v2 clients bound to one region. Endpoint is
// optional and switches to path-style addressing for S3-compatible servers.
type AWSFactory struct {
	Region   string
	Endpoint string
}

func (f *AWSFactory) NewClient(creds Credentials) (StorageClient, error) {
	cfg, err := config.LoadDefaultConfig(context.Background(),
		config.WithRegion(f.Region),
		config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(creds.AccessKey, creds.SecretKey, "")),
	)
	if err != nil {
		return nil, err
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if f.Endpoint != "" {
			o.BaseEndpoint = aws.String(endpointURL(f.Endpoint))
			o.UsePathStyle = true
		}
	})
	return NewAWSStorageClient(client), nil
}

// endpointURL adds a scheme to a bare "host:port" endpoint.
func endpointURL(endpoint string) string {
	if strings.Contains(endpoint, "://") {
		return endpoint
	}
	if shouldUseSSL(endpoint) {
		return "https://" + endpoint
	}
	return "http://" + endpoint
}
