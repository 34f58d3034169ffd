package repository

import (
	"errors"
	"testing"

	"cloud.google.com/go/firestore"
)

type stubJob struct {
	err    error
	waited *int
}

func (j stubJob) Results() (*firestore.WriteResult, error) {
	*j.waited++
	if j.err != nil {
		return nil, j.err
	}
	return &firestore.WriteResult{}, nil
}

func TestFirstJobError(t *testing.T) {
	t.Parallel()

	waited := 0
	denied := errors.New("permission denied")
	jobs := []writeJob{
		stubJob{waited: &waited},
		stubJob{err: denied, waited: &waited},
		stubJob{err: errors.New("deadline exceeded"), waited: &waited},
	}

	err := firstJobError(jobs)
	if !errors.Is(err, denied) {
		t.Fatalf("err = %v, want the first failed delete", err)
	}
	if waited != len(jobs) {
		t.Errorf("waited on %d jobs, want %d", waited, len(jobs))
	}

	waited = 0
	if err := firstJobError([]writeJob{stubJob{waited: &waited}}); err != nil {
		t.Errorf("all deletes succeeded, got %v", err)
	}
}
