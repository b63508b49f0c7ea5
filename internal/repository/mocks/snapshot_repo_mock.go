package mocks

import (
	"LeaveAMark/internal/model"
	"context"
	"sync"
	"time"
)

// UpsertCall records parameters passed to UpsertSnapshot
type UpsertCall struct {
	ClusterID string
	Date      time.Time
}

// MockSnapshotRepo is an in-memory implementation of repository.SnapshotRepo keyed by (cluster, date)
type MockSnapshotRepo struct {
	mu        sync.RWMutex
	snapshots map[string]*model.Snapshot
	nextID    uint64

	// FailClusters 对指定聚类的 Upsert 返回错误
	FailClusters map[string]error
	DeleteErr    error

	UpsertCalls []UpsertCall
}

func NewMockSnapshotRepo() *MockSnapshotRepo {
	return &MockSnapshotRepo{
		snapshots:    make(map[string]*model.Snapshot),
		FailClusters: make(map[string]error),
		UpsertCalls:  make([]UpsertCall, 0),
	}
}

func snapshotKey(clusterID string, date time.Time) string {
	return clusterID + "|" + date.Format(time.DateOnly)
}

func (m *MockSnapshotRepo) UpsertSnapshot(_ context.Context, snapshot *model.Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.UpsertCalls = append(m.UpsertCalls, UpsertCall{ClusterID: snapshot.LocationClusterID, Date: snapshot.SnapshotDate})
	if err, ok := m.FailClusters[snapshot.LocationClusterID]; ok {
		return err
	}

	key := snapshotKey(snapshot.LocationClusterID, snapshot.SnapshotDate)
	cp := *snapshot
	if existing, ok := m.snapshots[key]; ok {
		cp.ID = existing.ID
	} else {
		m.nextID++
		cp.ID = m.nextID
	}
	m.snapshots[key] = &cp
	return nil
}

func (m *MockSnapshotRepo) GetLatestByCluster(_ context.Context, clusterID string, now time.Time) (*model.Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var latest *model.Snapshot
	for _, s := range m.snapshots {
		if s.LocationClusterID != clusterID || !s.ExpiresAt.After(now) {
			continue
		}
		if latest == nil || s.SnapshotDate.After(latest.SnapshotDate) {
			latest = s
		}
	}
	if latest == nil {
		return nil, nil
	}
	cp := *latest
	return &cp, nil
}

func (m *MockSnapshotRepo) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.DeleteErr != nil {
		return 0, m.DeleteErr
	}
	var deleted int64
	for key, s := range m.snapshots {
		if s.ExpiresAt.Before(now) {
			delete(m.snapshots, key)
			deleted++
		}
	}
	return deleted, nil
}

// All 返回全部快照副本
func (m *MockSnapshotRepo) All() []*model.Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*model.Snapshot, 0, len(m.snapshots))
	for _, s := range m.snapshots {
		cp := *s
		out = append(out, &cp)
	}
	return out
}

// SetData 直接写入测试数据
func (m *MockSnapshotRepo) SetData(snapshots ...*model.Snapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range snapshots {
		m.nextID++
		cp := *s
		cp.ID = m.nextID
		m.snapshots[snapshotKey(s.LocationClusterID, s.SnapshotDate)] = &cp
	}
}
