package oplog

import (
	"context"
	"errors"
	"testing"

	"github.com/lugondev/go-ammcore/pkg/types"
)

type captureRepo struct {
	entries []*Entry
	saveErr error
}

func (c *captureRepo) SaveEntry(ctx context.Context, entry *Entry) error {
	if c.saveErr != nil {
		return c.saveErr
	}
	c.entries = append(c.entries, entry)
	return nil
}

func (c *captureRepo) ListEntriesByPool(ctx context.Context, pool types.Pubkey, limit int) ([]*Entry, error) {
	return c.entries, nil
}

func TestEncodeLayouts(t *testing.T) {
	tests := []struct {
		name    string
		record  Record
		wantLen int
	}{
		// 1 + 3*8 + 3*8 + 2*16 + 3*8 = 105
		{"deposit", &DepositLog{LogType: uint8(LogTypeDeposit)}, 105},
		// 1 + 8 + 4*8 + 2*16 + 2*8 = 89
		{"withdraw", &WithdrawLog{LogType: uint8(LogTypeWithdraw)}, 89},
		// 1 + 7*8 = 57
		{"swap base in", &SwapBaseInLog{LogType: uint8(LogTypeSwapBaseIn)}, 57},
		{"swap base out", &SwapBaseOutLog{LogType: uint8(LogTypeSwapBaseOut)}, 57},
		// 1 + 8 + 1 + 1 + 4*8 + 32 = 75
		{"init", &InitLog{LogType: uint8(LogTypeInit)}, 75},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := Encode(tt.record)
			if err != nil {
				t.Fatalf("Encode() error = %v", err)
			}
			if len(data) != tt.wantLen {
				t.Errorf("len = %d, want %d", len(data), tt.wantLen)
			}
			if data[0] != byte(tt.record.Type()) {
				t.Errorf("log type byte = %d, want %d", data[0], tt.record.Type())
			}
		})
	}
}

func TestRecorderPersists(t *testing.T) {
	repo := &captureRepo{}
	rec := NewRecorder(repo)
	pool := types.Pubkey{1}

	rec.Record(context.Background(), pool, &SwapBaseInLog{
		LogType:  uint8(LogTypeSwapBaseIn),
		AmountIn: 100,
	}, true)

	if len(repo.entries) != 1 {
		t.Fatalf("entries = %d, want 1", len(repo.entries))
	}
	entry := repo.entries[0]
	if entry.Pool != pool || entry.LogType != LogTypeSwapBaseIn || !entry.Succeeded {
		t.Errorf("entry = %+v", entry)
	}
	if entry.ID.String() == "00000000-0000-0000-0000-000000000000" {
		t.Error("entry ID not assigned")
	}
}

func TestRecorderSwallowsRepoFailure(t *testing.T) {
	repo := &captureRepo{saveErr: errors.New("db down")}
	rec := NewRecorder(repo)

	// Must not panic or surface the error.
	rec.Record(context.Background(), types.Pubkey{1}, &DepositLog{LogType: uint8(LogTypeDeposit)}, false)
}

func TestRecorderNilRepo(t *testing.T) {
	rec := NewRecorder(nil)
	rec.Record(context.Background(), types.Pubkey{1}, &WithdrawLog{LogType: uint8(LogTypeWithdraw)}, true)
}
