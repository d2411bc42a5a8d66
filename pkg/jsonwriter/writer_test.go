// Copyright 2026 The OPA Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package jsonwriter

import (
	"math"
	"strconv"
	"testing"
)

func mustGet(t *testing.T, w *Writer) string {
	t.Helper()
	out, err := w.Get()
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	return out
}

func TestWriteScalarAtTopLevel(t *testing.T) {
	w, err := New()
	if err != nil {
		t.Fatal(err)
	}
	w.Int(55, "")
	if got := mustGet(t, w); got != "55" {
		t.Fatalf("Get() = %q, want %q", got, "55")
	}
}

func TestWriteArray(t *testing.T) {
	w, err := New()
	if err != nil {
		t.Fatal(err)
	}
	w.ArrayBegin("")
	w.Int(1, "")
	w.Int(2, "")
	w.Int(3, "")
	w.ArrayEnd()

	if got := mustGet(t, w); got != "[1,2,3]" {
		t.Fatalf("Get() = %q, want %q", got, "[1,2,3]")
	}
}

func TestWriteObject(t *testing.T) {
	w, err := New()
	if err != nil {
		t.Fatal(err)
	}
	w.ObjectBegin("")
	w.Int(1, "a")
	w.String("x", "b")
	w.Bool(true, "c")
	w.ObjectEnd()

	if got := mustGet(t, w); got != `{"a":1,"b":"x","c":true}` {
		t.Fatalf("Get() = %q, want %q", got, `{"a":1,"b":"x","c":true}`)
	}
}

func TestWriteEscapesString(t *testing.T) {
	w, err := New()
	if err != nil {
		t.Fatal(err)
	}
	w.String("line1\nline2\t\"quoted\"", "")
	got := mustGet(t, w)
	want := `"line1\nline2\t\"quoted\""`
	if got != want {
		t.Fatalf("Get() = %q, want %q", got, want)
	}
}

func TestBeginResetsForReuse(t *testing.T) {
	w, err := New()
	if err != nil {
		t.Fatal(err)
	}
	w.Int(1, "")
	if _, err := w.Get(); err != nil {
		t.Fatal(err)
	}

	w.Begin()
	w.Int(2, "")
	if got := mustGet(t, w); got != "2" {
		t.Fatalf("Get() after Begin = %q, want %q", got, "2")
	}
}

func TestNameOutsideObjectIsRejected(t *testing.T) {
	w, err := New()
	if err != nil {
		t.Fatal(err)
	}
	w.Int(1, "bogus") // a name at the top level is a structural violation
	if _, err := w.Get(); err == nil {
		t.Fatal("expected a name at the top level to set the sticky error")
	}
}

func TestValueWithoutNameInsideObjectIsRejected(t *testing.T) {
	w, err := New()
	if err != nil {
		t.Fatal(err)
	}
	w.ObjectBegin("")
	w.Int(1, "") // a value without a name inside an object is a structural violation
	w.ObjectEnd()
	if _, err := w.Get(); err == nil {
		t.Fatal("expected a value without a name inside an object to set the sticky error")
	}
}

func TestUnbalancedEndIsRejected(t *testing.T) {
	w, err := New()
	if err != nil {
		t.Fatal(err)
	}
	w.ArrayBegin("")
	w.ObjectEnd() // wrong closer for the open array
	if _, err := w.Get(); err == nil {
		t.Fatal("expected a mismatched container end to set the sticky error")
	}
}

func TestStickyErrorMakesSubsequentCallsNoOps(t *testing.T) {
	w, err := New()
	if err != nil {
		t.Fatal(err)
	}
	w.Int(1, "bogus") // trips the sticky error
	before := w.pos

	w.String("more", "also-bogus") // should be a no-op once the flag is set
	_, gotErr := w.Get()
	after := w.pos

	if gotErr == nil {
		t.Fatal("expected Get to keep reporting the sticky error")
	}
	if before != after {
		t.Fatalf("buffer position changed after the sticky error was set: %d -> %d", before, after)
	}
}

func TestDoubleRoundTripsWithinEpsilon(t *testing.T) {
	w, err := New()
	if err != nil {
		t.Fatal(err)
	}
	w.Double(2.5, "")
	got := mustGet(t, w)
	if f, perr := strconv.ParseFloat(got, 64); perr != nil || math.Abs(f-2.5) > 1e-6 {
		t.Fatalf("Get() = %q, want a value within 1e-6 of 2.5", got)
	}
}

func TestDoubleWithPrecision(t *testing.T) {
	w, err := New()
	if err != nil {
		t.Fatal(err)
	}
	w.DoubleWithPrecision(1.0/3.0, 2, "")
	if got := mustGet(t, w); got != "0.33" {
		t.Fatalf("Get() = %q, want %q", got, "0.33")
	}
}

func TestNestedContainers(t *testing.T) {
	w, err := New()
	if err != nil {
		t.Fatal(err)
	}
	w.ObjectBegin("")
	w.ArrayBegin("items")
	w.ObjectBegin("")
	w.Int(1, "id")
	w.ObjectEnd()
	w.ArrayEnd()
	w.ObjectEnd()

	if got := mustGet(t, w); got != `{"items":[{"id":1}]}` {
		t.Fatalf("Get() = %q, want %q", got, `{"items":[{"id":1}]}`)
	}
}
