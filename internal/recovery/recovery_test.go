package recovery

import (
	"context"
	"errors"
	"testing"

	"github.com/sivacor/sivacor-cli/internal/models"
)

type fakeRecoveryService struct {
	byID       map[string]*models.Submission
	byName     map[string]*models.Submission
	latest     *models.Submission
	latestErr  error
	latestHits int
}

func (f *fakeRecoveryService) GetSubmission(ctx context.Context, id string) (*models.Submission, error) {
	if sub, ok := f.byID[id]; ok {
		return sub, nil
	}
	return nil, errors.New("not found")
}

func (f *fakeRecoveryService) FindSubmissionByName(ctx context.Context, name string) (*models.Submission, error) {
	if sub, ok := f.byName[name]; ok {
		return sub, nil
	}
	return nil, errors.New("not found")
}

func (f *fakeRecoveryService) LatestSubmission(ctx context.Context) (*models.Submission, error) {
	f.latestHits++
	if f.latestErr != nil {
		return nil, f.latestErr
	}
	return f.latest, nil
}

func TestResolve(t *testing.T) {
	explicit := &models.Submission{ID: "sub-explicit", Name: "explicit"}
	named := &models.Submission{ID: "sub-named", Name: "experiment-42"}
	latest := &models.Submission{ID: "sub-latest", Name: "latest"}

	tests := []struct {
		name       string
		id         string
		subName    string
		svc        *fakeRecoveryService
		want       string
		wantLatest int
	}{
		{
			name: "explicit id hit",
			id:   "sub-explicit",
			svc: &fakeRecoveryService{
				byID:   map[string]*models.Submission{"sub-explicit": explicit},
				latest: latest,
			},
			want:       "sub-explicit",
			wantLatest: 0,
		},
		{
			name:       "explicit id miss falls back to latest",
			id:         "gone",
			svc:        &fakeRecoveryService{latest: latest},
			want:       "sub-latest",
			wantLatest: 1,
		},
		{
			name:    "name hit",
			subName: "experiment-42",
			svc: &fakeRecoveryService{
				byName: map[string]*models.Submission{"experiment-42": named},
				latest: latest,
			},
			want:       "sub-named",
			wantLatest: 0,
		},
		{
			name:       "name miss falls back to latest",
			subName:    "gone",
			svc:        &fakeRecoveryService{latest: latest},
			want:       "sub-latest",
			wantLatest: 1,
		},
		{
			name:       "no hint uses latest",
			svc:        &fakeRecoveryService{latest: latest},
			want:       "sub-latest",
			wantLatest: 1,
		},
		{
			name:       "total failure means no prior job",
			svc:        &fakeRecoveryService{latestErr: errors.New("boom")},
			want:       "",
			wantLatest: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Resolve(context.Background(), tt.svc, tt.id, tt.subName, nil)

			if tt.want == "" {
				if got != nil {
					t.Fatalf("got %+v, want nil", got)
				}
			} else if got == nil || got.ID != tt.want {
				t.Fatalf("got %+v, want id %s", got, tt.want)
			}
			if tt.svc.latestHits != tt.wantLatest {
				t.Errorf("latest lookups = %d, want %d", tt.svc.latestHits, tt.wantLatest)
			}
		})
	}
}
