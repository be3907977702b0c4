package model

import "testing"

func TestQuantize_Idempotent(t *testing.T) {
	xs := []float64{0, 10, 124.9, 125, 125.1, 999.4, 10000}
	for _, x := range xs {
		once := Quantize(x, 250)
		twice := Quantize(once, 250)
		if once != twice {
			t.Errorf("Quantize(Quantize(%v,250),250) = %v, want %v", x, twice, once)
		}
	}
}

func TestTicksMillisRoundTrip(t *testing.T) {
	for _, ticks := range []uint32{0, 1, 45, 45000, 123456789} {
		ms := TicksToMillis(ticks)
		back := MillisToTicks(ms)
		diff := int64(back) - int64(ticks)
		if diff < 0 {
			diff = -diff
		}
		if diff > 1 {
			t.Errorf("round trip ticks=%d -> ms=%v -> ticks=%d, diff=%d > 1", ticks, ms, back, diff)
		}
	}
}

func TestNewSegmentKey_StableAcrossReparse(t *testing.T) {
	k1 := NewSegmentKey("00001", 45000, 45000*120)
	k2 := NewSegmentKey("00001", 45000, 45000*120)
	if k1 != k2 {
		t.Errorf("segment key not stable: %v != %v", k1, k2)
	}
}

func TestPlayItem_DurationTicks(t *testing.T) {
	pi := PlayItem{InTimeTicks: 100, OutTimeTicks: 500}
	if got := pi.DurationTicks(); got != 400 {
		t.Errorf("DurationTicks() = %d, want 400", got)
	}
}

func TestPlaylist_DurationTicksSumsPlayItems(t *testing.T) {
	p := Playlist{PlayItems: []PlayItem{
		{InTimeTicks: 0, OutTimeTicks: 45000},
		{InTimeTicks: 0, OutTimeTicks: 90000},
	}}
	if got, want := p.DurationTicks(), uint64(135000); got != want {
		t.Errorf("DurationTicks() = %d, want %d", got, want)
	}
}
