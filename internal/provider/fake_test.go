package provider

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

var errBoom = errors.New("boom")

// fakeAPI is an in-memory ManagementAPI.
type fakeAPI struct {
	mu sync.Mutex

	credentials []DeviceCredential
	tokenErr    error
	listErr     error
	deleteErr   func(id string) error
	updateErr   error
	listGate    chan struct{}

	listedPages   []int
	deleteCalls   map[string]int
	deleted       []string
	updated       map[string]UserAttributes
	deletedUsers  []string
	recent        RecentUsers
	recentCount   int
	tokenRequests int
}

func newFakeAPI(n int) *fakeAPI {
	f := &fakeAPI{deleteCalls: map[string]int{}, updated: map[string]UserAttributes{}}
	for i := range n {
		f.credentials = append(f.credentials, DeviceCredential{
			ID:   fmt.Sprintf("dcr_%03d", i),
			Type: CredentialTypeRefreshToken,
		})
	}

	return f
}

func (f *fakeAPI) AcquireManagementToken(_ context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.tokenRequests++
	if f.tokenErr != nil {
		return "", f.tokenErr
	}

	return "token", nil
}

func (f *fakeAPI) UpdateUserAttributes(_ context.Context, subjectID string, attrs UserAttributes) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.updateErr != nil {
		return f.updateErr
	}

	f.updated[subjectID] = attrs

	return nil
}

func (f *fakeAPI) DeleteUser(_ context.Context, subjectID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.deletedUsers = append(f.deletedUsers, subjectID)

	return nil
}

func (f *fakeAPI) ListDeviceCredentials(
	ctx context.Context,
	_, _ string,
	page, perPage int,
) ([]DeviceCredential, bool, error) {
	if f.listGate != nil {
		select {
		case <-f.listGate:
		case <-ctx.Done():
			return nil, false, ctx.Err()
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.listErr != nil {
		return nil, false, f.listErr
	}

	// the provider keeps its list stable while we delete, like an offset based listing
	start := min(page*perPage, len(f.credentials))
	end := min(start+perPage, len(f.credentials))
	out := append([]DeviceCredential(nil), f.credentials[start:end]...)

	f.listedPages = append(f.listedPages, len(out))

	return out, len(out) >= perPage, nil
}

func (f *fakeAPI) DeleteDeviceCredential(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.deleteCalls[id]++

	if f.deleteErr != nil {
		if err := f.deleteErr(id); err != nil {
			return err
		}
	}

	f.deleted = append(f.deleted, id)

	return nil
}

func (f *fakeAPI) ListRecentUsers(_ context.Context, count int) (RecentUsers, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.recentCount = count

	return f.recent, nil
}
