package repository

import (
	"context"
	"fmt"
	"net/url"
	"time"

	authdomain "genius-keeper-backend/internal/auth/domain"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const fcmTokensCollection = "fcmTokens"

type firestoreFCMTokenRepository struct {
	client *firestore.Client
}

// NewFirestoreFCMTokenRepository keeps tokens in users/{uid}/fcmTokens with
// the escaped token value as document id, so re-registration overwrites.
func NewFirestoreFCMTokenRepository(client *firestore.Client) FCMTokenRepository {
	return &firestoreFCMTokenRepository{client: client}
}

func (r *firestoreFCMTokenRepository) tokens(userID string) *firestore.CollectionRef {
	return r.client.Collection(usersCollection).Doc(userID).Collection(fcmTokensCollection)
}

// tokenDocID escapes characters Firestore does not allow in ids; SNS
// endpoint ARNs contain slashes.
func tokenDocID(token string) string {
	return url.PathEscape(token)
}

func (r *firestoreFCMTokenRepository) SaveToken(ctx context.Context, userID, token, deviceInfo string, metadata map[string]string) error {
	ref := r.tokens(userID).Doc(tokenDocID(token))
	now := time.Now()

	createdAt := now
	if snap, err := ref.Get(ctx); err == nil {
		var existing authdomain.FCMToken
		if err := snap.DataTo(&existing); err == nil && !existing.CreatedAt.IsZero() {
			createdAt = existing.CreatedAt
		}
	} else if status.Code(err) != codes.NotFound {
		return err
	}

	_, err := ref.Set(ctx, authdomain.FCMToken{
		UserID:     userID,
		Token:      token,
		DeviceInfo: deviceInfo,
		Metadata:   toJSONMap(metadata),
		CreatedAt:  createdAt,
		UpdatedAt:  now,
	})
	return err
}

func (r *firestoreFCMTokenRepository) GetTokensByUserID(ctx context.Context, userID string) ([]authdomain.FCMToken, error) {
	iter := r.tokens(userID).Documents(ctx)
	defer iter.Stop()

	var tokens []authdomain.FCMToken
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}
		var t authdomain.FCMToken
		if err := doc.DataTo(&t); err != nil {
			return nil, err
		}
		t.ID = doc.Ref.ID
		if t.Token == "" {
			if unescaped, err := url.PathUnescape(doc.Ref.ID); err == nil {
				t.Token = unescaped
			}
		}
		t.UserID = userID
		tokens = append(tokens, t)
	}
	return tokens, nil
}

func (r *firestoreFCMTokenRepository) DeleteToken(ctx context.Context, userID, token string) error {
	_, err := r.tokens(userID).Doc(tokenDocID(token)).Delete(ctx)
	return err
}

func (r *firestoreFCMTokenRepository) DeleteTokensByUserID(ctx context.Context, userID string) error {
	refs, err := r.tokens(userID).DocumentRefs(ctx).GetAll()
	if err != nil {
		return err
	}
	bw := r.client.BulkWriter(ctx)
	jobs := make([]writeJob, 0, len(refs))
	for _, ref := range refs {
		job, err := bw.Delete(ref)
		if err != nil {
			bw.End()
			return err
		}
		jobs = append(jobs, job)
	}
	bw.End()
	return firstJobError(jobs)
}

// writeJob is the result side of a *firestore.BulkWriterJob.
type writeJob interface {
	Results() (*firestore.WriteResult, error)
}

// firstJobError waits for every job and returns the first failure.
func firstJobError(jobs []writeJob) error {
	var first error
	for _, job := range jobs {
		if _, err := job.Results(); err != nil && first == nil {
			first = fmt.Errorf("delete token: %w", err)
		}
	}
	return first
}
