package internal

import "testing"

func TestFakeDim(t *testing.T) {
	var fakes = []string{
		"fakeDim0",
		"fakeDim12",
		"xfakeDim3",
	}
	for i := range fakes {
		if !IsFakeDim(fakes[i]) {
			t.Error("name should be a fake dim", fakes[i])
			return
		}
	}
	var real = []string{
		"",
		"fakedim0",
		"wavelength",
	}
	for i := range real {
		if IsFakeDim(real[i]) {
			t.Error("name should not be a fake dim", real[i])
			return
		}
	}
	if FakeDimName(7) != "fakeDim7" {
		t.Error("wrong fake dim name", FakeDimName(7))
	}
}

func TestFillValueName(t *testing.T) {
	var good = []string{
		"_FillValue",
		"fillvalue",
		"FILL_VALUE",
		"Fill_Value",
	}
	for i := range good {
		if !IsFillValueName(good[i]) {
			t.Error("name should be a fill value", good[i])
			return
		}
	}
	var bad = []string{
		"fill",
		"value",
		"missing_value",
		"fill value",
	}
	for i := range bad {
		if IsFillValueName(bad[i]) {
			t.Error("name should not be a fill value", bad[i])
			return
		}
	}
}

func TestInternalName(t *testing.T) {
	if !IsInternalName("_internal_bookkeeping") {
		t.Error("underscore name should be internal")
		return
	}
	if IsInternalName("station_log") {
		t.Error("plain name should not be internal")
	}
}

func TestFillBytes(t *testing.T) {
	b := FillBytes([]byte{1, 2, 3}, 7)
	want := []byte{1, 2, 3, 1, 2, 3, 1}
	for i := range want {
		if b[i] != want[i] {
			t.Error("fill mismatch at", i, b)
			return
		}
	}
	z := FillBytes(nil, 3)
	if len(z) != 3 || z[0] != 0 || z[2] != 0 {
		t.Error("empty pattern should fill with zeros", z)
	}
	if b := FillBytes([]byte{9}, 0); len(b) != 0 {
		t.Error("zero size should be empty", b)
	}
}
