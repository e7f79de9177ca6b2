package natsadapter

import (
	"testing"
)

func TestSessionSubject(t *testing.T) {
	if got := SessionSubject("abc", KindCamera); got != "geogrid.session.abc.camera" {
		t.Errorf("unexpected subject %s", got)
	}
	if got := wildcard(KindUpdate); got != "geogrid.session.*.update" {
		t.Errorf("unexpected wildcard %s", got)
	}
}

func TestParseSubject(t *testing.T) {
	id, kind, err := parseSubject("geogrid.session.4f1c.projection")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != "4f1c" || kind != KindProjection {
		t.Errorf("expected 4f1c/projection, got %s/%s", id, kind)
	}

	for _, bad := range []string{
		"transit.vehicle.1",
		"geogrid.session.",
		"geogrid.session.abc",
		"geogrid.session..camera",
		"geogrid.session.abc.camera.extra",
	} {
		if _, _, err := parseSubject(bad); err == nil {
			t.Errorf("expected error for %q", bad)
		}
	}
}

func TestStreamsCoverEveryKind(t *testing.T) {
	covered := map[string]bool{}
	for _, s := range streams {
		for _, subj := range s.Subjects {
			covered[subj] = true
		}
	}
	for _, kind := range []string{KindUpdate, KindClosed, KindCamera, KindProjection} {
		if !covered[wildcard(kind)] {
			t.Errorf("no stream captures %s", wildcard(kind))
		}
	}
}
