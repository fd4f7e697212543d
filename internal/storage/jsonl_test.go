package storage

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"ammCore/internal/model"
)

func TestJsonlJournalAppend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "journal.jsonl")
	journal := NewJsonlJournal(path)

	first := model.OperationRecord{
		Timestamp:   1700000000,
		Operation:   model.OpAddLiquidity,
		PoolID:      "0xabc",
		User:        "alice",
		AmountX:     100,
		AmountY:     400,
		Shares:      200,
		ReserveX:    100,
		ReserveY:    400,
		TotalShares: 200,
		RecordedAt:  "2024-01-01T00:00:00Z",
	}
	second := model.OperationRecord{
		Timestamp:   1700000060,
		Operation:   model.OpSwap,
		PoolID:      "0xabc",
		User:        "bob",
		Direction:   model.XForY,
		AmountIn:    10,
		AmountOut:   35,
		ReserveX:    110,
		ReserveY:    365,
		TotalShares: 200,
		RecordedAt:  "2024-01-01T00:01:00Z",
	}

	if err := journal.Append(first); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := journal.Append(second); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := journal.Append(); err != nil {
		t.Fatalf("empty append: %v", err)
	}

	file, err := os.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer file.Close()

	var got []model.OperationRecord
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		var rec model.OperationRecord
		if err := json.Unmarshal(scanner.Bytes(), &rec); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		got = append(got, rec)
	}

	want := []model.OperationRecord{first, second}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("journal mismatch: %+v != %+v", got, want)
	}
}
