package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"testing"

	"ammCore/internal/model"
)

func TestBookTransfer(t *testing.T) {
	ctx := context.Background()
	book := NewBook()

	if err := book.Mint(ctx, "usdc", "alice", 100); err != nil {
		t.Fatalf("mint: %v", err)
	}
	if err := book.Transfer(ctx, "usdc", "alice", "pool", 60); err != nil {
		t.Fatalf("transfer: %v", err)
	}

	alice, _ := book.Balance(ctx, "usdc", "alice")
	pool, _ := book.Balance(ctx, "usdc", "pool")
	if alice != 40 || pool != 60 {
		t.Fatalf("balances mismatch: alice=%d pool=%d", alice, pool)
	}

	if err := book.Transfer(ctx, "usdc", "alice", "pool", 41); !errors.Is(err, model.ErrInsufficientFunds) {
		t.Fatalf("expected insufficient funds, got %v", err)
	}
}

func TestBookSelfTransfer(t *testing.T) {
	ctx := context.Background()
	book := NewBook()
	if err := book.Mint(ctx, "usdc", "pool", 100); err != nil {
		t.Fatalf("mint: %v", err)
	}

	if err := book.Transfer(ctx, "usdc", "pool", "pool", 60); !errors.Is(err, model.ErrSelfTransfer) {
		t.Fatalf("expected self transfer error, got %v", err)
	}
	if bal, _ := book.Balance(ctx, "usdc", "pool"); bal != 100 {
		t.Fatalf("balance changed: %d", bal)
	}
}

func TestBookBurn(t *testing.T) {
	ctx := context.Background()
	book := NewBook()

	if err := book.Mint(ctx, "share", "alice", 10); err != nil {
		t.Fatalf("mint: %v", err)
	}
	if err := book.Burn(ctx, "share", "alice", 11); !errors.Is(err, model.ErrInsufficientFunds) {
		t.Fatalf("expected insufficient funds, got %v", err)
	}
	if err := book.Burn(ctx, "share", "alice", 10); err != nil {
		t.Fatalf("burn: %v", err)
	}
	if bal, _ := book.Balance(ctx, "share", "alice"); bal != 0 {
		t.Fatalf("balance after burn: %d", bal)
	}
}

func TestBookMintOverflow(t *testing.T) {
	ctx := context.Background()
	book := NewBook()

	if err := book.Mint(ctx, "usdc", "alice", math.MaxUint64); err != nil {
		t.Fatalf("mint: %v", err)
	}
	if err := book.Mint(ctx, "usdc", "alice", 1); !errors.Is(err, model.ErrOverflow) {
		t.Fatalf("expected overflow, got %v", err)
	}
}

func TestBookCloneIsIndependent(t *testing.T) {
	ctx := context.Background()
	book := NewBook()
	_ = book.Mint(ctx, "usdc", "alice", 5)

	clone := book.Clone()
	_ = clone.Mint(ctx, "usdc", "alice", 5)

	if bal, _ := book.Balance(ctx, "usdc", "alice"); bal != 5 {
		t.Fatalf("original mutated through clone: %d", bal)
	}
}

func TestBookJSON(t *testing.T) {
	ctx := context.Background()
	book := NewBook()
	_ = book.Mint(ctx, "usdc", "alice", 7)

	data, err := json.Marshal(book)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	decoded := NewBook()
	if err := json.Unmarshal(data, decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if bal, _ := decoded.Balance(ctx, "usdc", "alice"); bal != 7 {
		t.Fatalf("decoded balance: %d", bal)
	}
}

func TestApplyStopsAtFirstFailure(t *testing.T) {
	ctx := context.Background()
	book := NewBook()
	_ = book.Mint(ctx, "usdc", "alice", 10)

	err := Apply(ctx, book, []model.Transfer{
		{Kind: model.KindTransfer, Asset: "usdc", From: "alice", To: "pool", Amount: 10},
		{Kind: model.KindTransfer, Asset: "weth", From: "alice", To: "pool", Amount: 1},
		{Kind: model.KindMint, Asset: "share", To: "alice", Amount: 3},
	})
	if !errors.Is(err, model.ErrInsufficientFunds) {
		t.Fatalf("expected insufficient funds, got %v", err)
	}
	if bal, _ := book.Balance(ctx, "share", "alice"); bal != 0 {
		t.Fatalf("mint applied after failure")
	}
}
