package utils

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
)

// S3Config holds the object storage connection settings. Lease
// documents (signed PDFs, move-in checklists) live in a private bucket.
type S3Config struct {
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	Endpoint  string
}

type DocumentStore struct {
	client *s3.S3
	bucket string
}

func NewDocumentStore(cfg S3Config) (*DocumentStore, error) {
	if cfg.Bucket == "" || cfg.AccessKey == "" || cfg.SecretKey == "" {
		return nil, fmt.Errorf("s3: access key, secret key and bucket are required")
	}
	sess, err := session.NewSession(&aws.Config{
		Region:      aws.String(cfg.Region),
		Endpoint:    aws.String(cfg.Endpoint),
		Credentials: credentials.NewStaticCredentials(cfg.AccessKey, cfg.SecretKey, ""),
	})
	if err != nil {
		return nil, fmt.Errorf("s3 session: %w", err)
	}
	return &DocumentStore{client: s3.New(sess), bucket: cfg.Bucket}, nil
}

// UploadLeaseDocument stores a document under leases/<leaseID>/<name>
// and returns the object key. The bucket stays private; access goes
// through presigned URLs.
func (d *DocumentStore) UploadLeaseDocument(leaseID, name string, file []byte) (string, error) {
	key := fmt.Sprintf("leases/%s/%s", leaseID, name)
	contentType := http.DetectContentType(file)

	_, err := d.client.PutObject(&s3.PutObjectInput{
		Bucket:        aws.String(d.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(file),
		ContentLength: aws.Int64(int64(len(file))),
		ContentType:   aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("unable to upload document: %w", err)
	}
	return key, nil
}

// PresignedURL returns a time-limited download link for a stored
// document.
func (d *DocumentStore) PresignedURL(key string, expiry time.Duration) (string, error) {
	req, _ := d.client.GetObjectRequest(&s3.GetObjectInput{
		Bucket: aws.String(d.bucket),
		Key:    aws.String(key),
	})
	url, err := req.Presign(expiry)
	if err != nil {
		return "", fmt.Errorf("presign document: %w", err)
	}
	return url, nil
}
