package platform

import (
	"reflect"
	"testing"
)

func TestResolveMatchesKeywords(t *testing.T) {
	r := Resolver{Default: Convert}

	cases := []struct {
		name   string
		labels []string
		want   Platform
	}{
		{"mobile label", []string{"mobile", "experiment"}, Mobile},
		{"ios counts as mobile", []string{"iOS-release"}, Mobile},
		{"optimizely shorthand", []string{"optly-test"}, Optimizely},
		{"vwo", []string{"VWO", "checkout"}, VWO},
		{"case insensitive", []string{"CONVERT-exp"}, Convert},
		{"no match falls back", []string{"checkout", "urgent"}, Convert},
		{"no labels", nil, Convert},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := r.Resolve(tc.labels); got != tc.want {
				t.Fatalf("Resolve(%v): got %s want %s", tc.labels, got, tc.want)
			}
		})
	}
}

func TestResolvePriorityOrderIsFixed(t *testing.T) {
	r := Resolver{Default: Convert}
	// Labels for two platforms: the one earlier in All wins regardless of
	// label order.
	if got := r.Resolve([]string{"mobile", "convert"}); got != Convert {
		t.Fatalf("Resolve: got %s want %s", got, Convert)
	}
	if got := r.Resolve([]string{"vwo", "optimizely"}); got != Optimizely {
		t.Fatalf("Resolve: got %s want %s", got, Optimizely)
	}
}

func TestResolveDefaultIsConfigurable(t *testing.T) {
	r := Resolver{Default: VWO}
	if got := r.Resolve([]string{"unrelated"}); got != VWO {
		t.Fatalf("Resolve: got %s want %s", got, VWO)
	}
}

func TestTabNames(t *testing.T) {
	if got := Mobile.Tab(); got != "Mobile QA Pass1" {
		t.Fatalf("Tab: got %q", got)
	}
	if got := Convert.Tab(); got != "Convert QA Pass1" {
		t.Fatalf("Tab: got %q", got)
	}
}

func TestTabsToKeepAndHide(t *testing.T) {
	keep := TabsToKeep(Optimizely)
	wantKeep := []string{"Optimizely QA Pass1", "hidden", "Complexity & Risk"}
	if !reflect.DeepEqual(keep, wantKeep) {
		t.Fatalf("TabsToKeep: got %v want %v", keep, wantKeep)
	}

	hide := TabsToHide(Optimizely)
	wantHide := []string{"Convert QA Pass1", "VWO QA Pass1", "Mobile QA Pass1"}
	if !reflect.DeepEqual(hide, wantHide) {
		t.Fatalf("TabsToHide: got %v want %v", hide, wantHide)
	}
}

func TestParse(t *testing.T) {
	if p, ok := Parse("vwo"); !ok || p != VWO {
		t.Fatalf("Parse(vwo): got (%s, %v)", p, ok)
	}
	if _, ok := Parse("unknown"); ok {
		t.Fatal("Parse(unknown): expected ok=false")
	}
}
