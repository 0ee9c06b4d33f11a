package gateway

import "testing"

func TestIsFatalDetectsBalanceError(t *testing.T) {
	if !IsFatal("Error: not enough balance / allowance") {
		t.Fatal("expected balance error to be fatal")
	}
}

func TestIsFatalDetectsAllowanceError(t *testing.T) {
	if !IsFatal("insufficient ALLOWANCE for spender") {
		t.Fatal("expected allowance error to be fatal")
	}
}

func TestIsFatalIsCaseInsensitive(t *testing.T) {
	if !IsFatal("NOT ENOUGH BALANCE") {
		t.Fatal("expected case-insensitive match")
	}
}

func TestIsFatalReturnsFalseForOtherErrors(t *testing.T) {
	if IsFatal("order book moved, price no longer valid") {
		t.Fatal("expected non-balance error to be transient")
	}
}

func TestIsFatalReturnsFalseForEmptyMessage(t *testing.T) {
	if IsFatal("") {
		t.Fatal("expected empty message to be transient")
	}
}
