package archive

import (
	"context"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/frontdesk-ai/platform/internal/conversation"
	"github.com/frontdesk-ai/platform/pkg/logging"
)

type fakeS3 struct {
	puts []*s3.PutObjectInput
	err  error
}

func (f *fakeS3) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.puts = append(f.puts, in)
	if f.err != nil {
		return nil, f.err
	}
	return &s3.PutObjectOutput{}, nil
}

func TestArchiveWritesTranscript(t *testing.T) {
	client := &fakeS3{}
	a := NewArchiver(client, "frontdesk-transcripts", logging.Default())
	require.NotNil(t, a)

	mem := conversation.NewMemory("biz-1")
	mem.Remembered.Name = "Alex Rivera"
	mem.Remembered.Phone = "5551234567"
	mem.TurnCount = 4
	mem.Append(conversation.SpeakerCaller, "table for two on monday")
	mem.Append(conversation.SpeakerAgent, "You're all set, Alex. We have you down for Monday, June 2 at 2 pm. We'll see you then!")

	require.NoError(t, a.Archive(context.Background(), "biz-1", mem))

	require.Len(t, client.puts, 1)
	put := client.puts[0]
	assert.Equal(t, "frontdesk-transcripts", aws.ToString(put.Bucket))
	assert.Contains(t, aws.ToString(put.Key), "transcripts/biz-1/")

	body, err := io.ReadAll(put.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "table for two on monday")
	assert.Contains(t, string(body), `"booked":true`)
	// The full phone number never lands in the archive.
	assert.NotContains(t, string(body), "5551234567")
	assert.Contains(t, string(body), "***4567")
}

func TestNewArchiverOptional(t *testing.T) {
	assert.Nil(t, NewArchiver(nil, "bucket", logging.Default()))
	assert.Nil(t, NewArchiver(&fakeS3{}, "", logging.Default()))

	var a *Archiver
	assert.NoError(t, a.Archive(context.Background(), "biz-1", conversation.NewMemory("biz-1")))
}
