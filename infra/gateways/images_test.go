package gateways

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
)

type putterMock struct {
	input *s3.PutObjectInput
	body  string
	err   error
}

func (p *putterMock) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	p.input = params
	data, _ := io.ReadAll(params.Body)
	p.body = string(data)
	if p.err != nil {
		return nil, p.err
	}
	return &s3.PutObjectOutput{}, nil
}

func TestImageStoreS3_Put(t *testing.T) {
	putter := &putterMock{}
	store := &ImageStoreS3{client: putter, cfg: S3Config{Bucket: "closet", Region: "eu-west-1"}}

	location, err := store.Put(context.Background(), "instruments/1/abc", strings.NewReader("png"), "image/png")
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if *putter.input.Bucket != "closet" || *putter.input.Key != "instruments/1/abc" {
		t.Fatalf("expected closet/instruments/1/abc, got %s/%s", *putter.input.Bucket, *putter.input.Key)
	}
	if *putter.input.ContentType != "image/png" {
		t.Fatalf("expected image/png, got %s", *putter.input.ContentType)
	}
	if putter.body != "png" {
		t.Fatalf("expected body png, got %q", putter.body)
	}
	if location != "https://closet.s3.eu-west-1.amazonaws.com/instruments/1/abc" {
		t.Fatalf("unexpected url %s", location)
	}
}

func TestImageStoreS3_PutError(t *testing.T) {
	putter := &putterMock{err: errors.New("denied")}
	store := &ImageStoreS3{client: putter, cfg: S3Config{Bucket: "closet", Region: "eu-west-1"}}

	_, err := store.Put(context.Background(), "k", strings.NewReader(""), "")
	if !errors.Is(err, putter.err) {
		t.Fatalf("expected wrapped denied error, got %v", err)
	}
	if putter.input.ContentType != nil {
		t.Fatalf("expected no content type, got %s", *putter.input.ContentType)
	}
}

func TestImageStoreS3_ObjectURL(t *testing.T) {
	cases := []struct {
		cfg  S3Config
		want string
	}{
		{S3Config{Bucket: "b", Region: "us-east-1"}, "https://b.s3.us-east-1.amazonaws.com/a/b%20c"},
		{S3Config{Bucket: "b", Endpoint: "http://minio:9000/", PathStyle: true}, "http://minio:9000/b/a/b%20c"},
		{S3Config{Bucket: "b", Endpoint: "https://objects.example.com"}, "https://b.objects.example.com/a/b%20c"},
	}
	for _, c := range cases {
		store := &ImageStoreS3{cfg: c.cfg}
		if got := store.objectURL("a/b c"); got != c.want {
			t.Fatalf("expected %s, got %s", c.want, got)
		}
	}
}

func TestImageStoreMemory_Put(t *testing.T) {
	store := NewImageStoreMemory("memory://images")

	location, err := store.Put(context.Background(), "instruments/2/x", strings.NewReader("jpg"), "image/jpeg")
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if location != "memory://images/instruments/2/x" {
		t.Fatalf("unexpected url %s", location)
	}
	body, contentType, ok := store.Get("instruments/2/x")
	if !ok || string(body) != "jpg" || contentType != "image/jpeg" {
		t.Fatalf("expected stored jpg, got %q %q %v", body, contentType, ok)
	}
}

func TestNewImageStoreS3(t *testing.T) {
	if _, err := NewImageStoreS3(context.Background(), S3Config{}); err == nil {
		t.Fatalf("expected bucket required error")
	}
	store, err := NewImageStoreS3(context.Background(), S3Config{
		Bucket:          "closet",
		Endpoint:        "http://minio:9000",
		PathStyle:       true,
		AccessKeyID:     "AKIA",
		SecretAccessKey: "SECRET",
	})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if store.cfg.Region != "us-east-1" {
		t.Fatalf("expected default region, got %s", store.cfg.Region)
	}
}
