package result

import (
	"errors"
	"testing"
)

func TestOk(t *testing.T) {
	r := Ok(42)
	if !r.Success || r.Value != 42 || len(r.Errors) != 0 {
		t.Fatalf("Ok() = %+v", r)
	}
}

func TestFail(t *testing.T) {
	r := Fail[int]("boom")
	if r.Success || len(r.Errors) != 1 || r.Errors[0] != "boom" {
		t.Fatalf("Fail() = %+v", r)
	}
}

func TestWarn(t *testing.T) {
	r := Ok("x").Warn("careful")
	if !r.Success || len(r.Warnings) != 1 || r.Warnings[0] != "careful" {
		t.Fatalf("Warn() = %+v", r)
	}
}

func TestWithError(t *testing.T) {
	r := Ok("x").WithError(errors.New("bad"))
	if r.Success || len(r.Errors) != 1 || r.Errors[0] != "bad" {
		t.Fatalf("WithError() = %+v", r)
	}
}

func TestMerge(t *testing.T) {
	outer := Ok([]int{1, 2})
	inner := Fail[string]("nested failure").Warn("nested warning")

	merged := Merge(outer, inner)
	if merged.Success {
		t.Error("expected merged result to be unsuccessful")
	}
	if len(merged.Errors) != 1 || merged.Errors[0] != "nested failure" {
		t.Errorf("unexpected errors: %v", merged.Errors)
	}
	if len(merged.Warnings) != 1 || merged.Warnings[0] != "nested warning" {
		t.Errorf("unexpected warnings: %v", merged.Warnings)
	}
	if len(merged.Value) != 2 {
		t.Errorf("expected merge to preserve outer value, got %v", merged.Value)
	}
}
