package testsupport

import (
	"context"
	"sync"
	"time"

	"github.com/yungbote/learnhub-backend/internal/platform/gcp"
	"github.com/yungbote/learnhub-backend/internal/platform/openai"
)

// FakeText returns Out (or Err) from GenerateJSON and records prompts.
type FakeText struct {
	Out map[string]any
	Err error

	mu    sync.Mutex
	Users []string
}

func (f *FakeText) Name() string { return "fake" }

func (f *FakeText) GenerateJSON(ctx context.Context, system, user string) (map[string]any, error) {
	f.mu.Lock()
	f.Users = append(f.Users, user)
	f.mu.Unlock()
	if f.Err != nil {
		return nil, f.Err
	}
	return f.Out, nil
}

// FakeImage answers every prompt with the prompt bytes behind a PNG signature.
type FakeImage struct {
	Err error

	mu      sync.Mutex
	Prompts []string
}

func (f *FakeImage) Name() string { return "fake" }

func (f *FakeImage) GenerateImage(ctx context.Context, prompt string) (openai.ImageGeneration, error) {
	f.mu.Lock()
	f.Prompts = append(f.Prompts, prompt)
	f.mu.Unlock()
	if f.Err != nil {
		return openai.ImageGeneration{}, f.Err
	}
	return openai.ImageGeneration{Bytes: append([]byte("\x89PNG"), prompt...), MimeType: "image/png"}, nil
}

type FakeSpeech struct {
	Err error

	mu    sync.Mutex
	Texts []string
}

func (f *FakeSpeech) Name() string { return "fake" }

func (f *FakeSpeech) Synthesize(ctx context.Context, text string) (openai.Speech, error) {
	f.mu.Lock()
	f.Texts = append(f.Texts, text)
	f.mu.Unlock()
	if f.Err != nil {
		return openai.Speech{}, f.Err
	}
	return openai.Speech{Bytes: append([]byte("RIFF"), text...), MimeType: "audio/wav"}, nil
}

// FailingBlobStore rejects every write.
type FailingBlobStore struct {
	Err error
}

func (f FailingBlobStore) Put(ctx context.Context, data []byte, key, mimeType string) (gcp.Stored, error) {
	return gcp.Stored{}, f.Err
}

func (f FailingBlobStore) SignedURL(ctx context.Context, key string, ttl time.Duration) (string, error) {
	return "", f.Err
}
