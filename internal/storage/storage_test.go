package storage

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/lugondev/go-ammcore/internal/oplog"
	"github.com/lugondev/go-ammcore/pkg/types"
)

func TestOperationLogModelRoundTrip(t *testing.T) {
	pool := types.Pubkey{1, 2, 3}
	entry := &oplog.Entry{
		ID:        uuid.New(),
		Pool:      pool,
		LogType:   oplog.LogTypeSwapBaseIn,
		Data:      []byte{3, 100, 0, 0, 0, 0, 0, 0, 0},
		Succeeded: true,
		CreatedAt: time.Now().UTC().Truncate(time.Microsecond),
	}

	m := FromEntry(entry)
	if m.Pool != pool.String() || m.LogType != int16(oplog.LogTypeSwapBaseIn) {
		t.Errorf("model = %+v", m)
	}

	back, err := m.ToEntry()
	if err != nil {
		t.Fatalf("ToEntry() error = %v", err)
	}
	if back.ID != entry.ID || back.Pool != entry.Pool || back.LogType != entry.LogType ||
		!back.CreatedAt.Equal(entry.CreatedAt) {
		t.Errorf("round trip = %+v, want %+v", back, entry)
	}
}

func TestOperationLogModelRejectsBadRow(t *testing.T) {
	m := &OperationLogModel{ID: "not-a-uuid", Pool: types.Pubkey{}.String()}
	if _, err := m.ToEntry(); err == nil {
		t.Fatal("ToEntry() accepted a malformed id")
	}

	m = &OperationLogModel{ID: uuid.NewString(), Pool: "!!bad"}
	if _, err := m.ToEntry(); err == nil {
		t.Fatal("ToEntry() accepted a malformed pool key")
	}
}
