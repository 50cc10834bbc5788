// Package archive persists completed call transcripts to S3.
package archive

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/bytedance/sonic"
	"github.com/google/uuid"

	"github.com/frontdesk-ai/platform/internal/conversation"
	"github.com/frontdesk-ai/platform/pkg/logging"
)

// S3Client interface for S3 operations (allows mocking in tests)
type S3Client interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Archiver writes one JSON object per finished call under
// transcripts/<business>/<date>/<id>.json.
type Archiver struct {
	s3     S3Client
	bucket string
	logger *logging.Logger
	now    func() time.Time
}

// NewArchiver creates an archiver. Returns nil when no bucket is configured
// so callers can treat archiving as optional.
func NewArchiver(client S3Client, bucket string, logger *logging.Logger) *Archiver {
	if client == nil || bucket == "" {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Archiver{
		s3:     client,
		bucket: bucket,
		logger: logger,
		now:    time.Now,
	}
}

// archivedCall is the stored form of one call.
type archivedCall struct {
	BusinessID  string               `json:"business_id"`
	CallerName  string               `json:"caller_name,omitempty"`
	CallerPhone string               `json:"phone_redacted,omitempty"`
	TurnCount   int                  `json:"turn_count"`
	Booked      bool                 `json:"booked"`
	Transcript  []archivedTranscript `json:"transcript"`
	ArchivedAt  time.Time            `json:"archived_at"`
}

type archivedTranscript struct {
	Speaker string `json:"speaker"`
	Text    string `json:"text"`
}

// Archive writes the transcript for a finished call.
func (a *Archiver) Archive(ctx context.Context, businessID string, mem conversation.Memory) error {
	if a == nil {
		return nil
	}

	call := archivedCall{
		BusinessID:  businessID,
		CallerName:  mem.Remembered.Name,
		CallerPhone: redactPhone(mem.Remembered.Phone),
		TurnCount:   mem.TurnCount,
		ArchivedAt:  a.now().UTC(),
	}
	for _, e := range mem.Transcript {
		call.Transcript = append(call.Transcript, archivedTranscript{
			Speaker: string(e.Speaker),
			Text:    e.Text,
		})
	}
	call.Booked = conversation.TranscriptConfirmed(&mem)

	body, err := sonic.Marshal(call)
	if err != nil {
		return fmt.Errorf("archive: marshal call: %w", err)
	}

	key := fmt.Sprintf("transcripts/%s/%s/%s.json",
		businessID, call.ArchivedAt.Format("2006-01-02"), uuid.NewString())

	_, err = a.s3.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("archive: put transcript: %w", err)
	}

	a.logger.Info("transcript archived", "business_id", businessID, "key", key, "turns", mem.TurnCount)
	return nil
}

// redactPhone keeps only the last four digits.
func redactPhone(phone string) string {
	if len(phone) <= 4 {
		return phone
	}
	return "***" + phone[len(phone)-4:]
}
