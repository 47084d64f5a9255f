package ueye_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/nasa-jpl/idslab/ids/ueye"
)

func ExampleError() {
	fmt.Println(ueye.Error(ueye.Success))
	fmt.Println(ueye.Error(ueye.InvalidMode))
	fmt.Println(ueye.Error(3000))
	// Output:
	// <nil>
	// 101 - IS_INVALID_MODE
	// 3000 - UNKNOWN_ERROR_CODE
}

func TestIsStatusThroughWrapping(t *testing.T) {
	err := fmt.Errorf("set color mode: %w", ueye.Error(ueye.InvalidMode))
	if !ueye.IsStatus(err, ueye.InvalidColorMode, ueye.InvalidMode) {
		t.Errorf("expected IsStatus to find IS_INVALID_MODE in %v", err)
	}
	if ueye.IsStatus(err, ueye.NoSuccess) {
		t.Error("IsStatus matched a status that was not present")
	}
	if ueye.IsStatus(errors.New("plain"), ueye.InvalidMode) {
		t.Error("IsStatus matched a non-driver error")
	}
}

func TestParseColorMode(t *testing.T) {
	m, err := ueye.ParseColorMode("RAW12")
	if err != nil {
		t.Fatal(err)
	}
	if m != ueye.CMSensorRaw12 {
		t.Errorf("expected RAW12 to be %d, got %d", ueye.CMSensorRaw12, m)
	}
	if m.String() != "RAW12" {
		t.Errorf("expected String() RAW12, got %s", m.String())
	}
	if _, err := ueye.ParseColorMode("RGB8"); !errors.Is(err, ueye.ErrBadEnumIndex) {
		t.Errorf("expected ErrBadEnumIndex, got %v", err)
	}
	if s := ueye.ColorMode(125).String(); s != "CM(125)" {
		t.Errorf("expected CM(125), got %s", s)
	}
}

func TestBinningMasksAreDisjoint(t *testing.T) {
	if ueye.BinningMaskHorizontal&ueye.BinningMaskVertical != 0 {
		t.Error("horizontal and vertical binning masks overlap")
	}
	h := ueye.Binning2xHorizontal | ueye.Binning3xHorizontal | ueye.Binning4xHorizontal |
		ueye.Binning5xHorizontal | ueye.Binning6xHorizontal | ueye.Binning8xHorizontal | ueye.Binning16xHorizontal
	if h != ueye.BinningMaskHorizontal {
		t.Errorf("horizontal bits %#x do not make up the mask %#x", h, ueye.BinningMaskHorizontal)
	}
}
