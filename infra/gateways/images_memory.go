package gateways

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/giovaniif/instrument-closet/protocols"
)

type storedImage struct {
	Body        []byte
	ContentType string
}

type ImageStoreMemory struct {
	mutex   sync.RWMutex
	baseURL string
	images  map[string]storedImage
}

func NewImageStoreMemory(baseURL string) *ImageStoreMemory {
	return &ImageStoreMemory{baseURL: baseURL, images: make(map[string]storedImage)}
}

func (s *ImageStoreMemory) Put(ctx context.Context, key string, body io.Reader, contentType string) (string, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return "", fmt.Errorf("read image %s: %w", key, err)
	}
	s.mutex.Lock()
	s.images[key] = storedImage{Body: data, ContentType: contentType}
	s.mutex.Unlock()
	return s.baseURL + "/" + key, nil
}

func (s *ImageStoreMemory) Get(key string) ([]byte, string, bool) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	image, ok := s.images[key]
	return image.Body, image.ContentType, ok
}

var _ protocols.ImageStore = (*ImageStoreMemory)(nil)
